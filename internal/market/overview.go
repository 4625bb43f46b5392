package market

import (
	"context"
	"sync"
)

// Overview is the snapshot returned by MarketOverview: a fixed set of
// token prices and DEX liquidity summaries, one slot per configured
// symbol/dex regardless of how many underlying fetches failed.
type Overview struct {
	Tokens []overviewEntry
	Dexes  []dexOverviewEntry
}

// MarketOverview fans out concurrently across the fixed overview symbol
// and DEX sets and always returns exactly len(overviewSymbols) token
// entries and len(overviewDexes) dex entries — a source failure fills
// its own slot with an error string rather than aborting the whole call.
func (a *Aggregator) MarketOverview(ctx context.Context) Overview {
	tokens := make([]overviewEntry, len(overviewSymbols))
	dexes := make([]dexOverviewEntry, len(overviewDexes))

	var wg sync.WaitGroup
	wg.Add(len(overviewSymbols) + len(overviewDexes))

	for i, symbol := range overviewSymbols {
		i, symbol := i, symbol
		go func() {
			defer wg.Done()
			rec, err := a.GetTokenPrice(ctx, symbol)
			if err != nil {
				tokens[i] = overviewEntry{Symbol: symbol, Error: err.Error()}
				return
			}
			tokens[i] = overviewEntry{Symbol: symbol, Record: rec}
		}()
	}

	for i, name := range overviewDexes {
		i, name := i, name
		go func() {
			defer wg.Done()
			snap, err := a.getDexSnapshot(ctx, name)
			if err != nil {
				dexes[i] = dexOverviewEntry{Name: name, Error: err.Error()}
				return
			}
			dexes[i] = dexOverviewEntry{Name: name, Snapshot: snap}
		}()
	}

	wg.Wait()

	return Overview{Tokens: tokens, Dexes: dexes}
}

// getDexSnapshot is deliberately minimal: none of the wired sources
// expose pool-level TVL/volume, so this returns a cached snapshot when
// one is present and otherwise an error; it fetches and synthesizes
// nothing. Dex-level aggregation beyond this is out of scope: no order
// routing.
func (a *Aggregator) getDexSnapshot(ctx context.Context, name string) (*DexSnapshot, error) {
	key := dexCacheKey(name)
	if snap, ok := a.cache.getDex(key); ok {
		return snap, nil
	}
	return nil, errDexSnapshotUnavailable(name)
}

type dexSnapshotUnavailableError string

func (e dexSnapshotUnavailableError) Error() string {
	return "market: no dex snapshot source configured for " + string(e)
}

func errDexSnapshotUnavailable(name string) error { return dexSnapshotUnavailableError(name) }
