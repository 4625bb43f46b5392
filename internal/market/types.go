// Package market implements the Market Data Aggregator: priority-ordered
// fan-out across price sources, a TTL cache, per-source rate limits, and
// decimal-normalized output records.
package market

import (
	"time"

	"github.com/shopspring/decimal"
)

// Source names the enumerated price source adapters.
type Source string

const (
	SourceJupiter     Source = "jupiter"
	SourceCoinGecko   Source = "coingecko"
	SourceBinance     Source = "binance"
	SourceCoinbase    Source = "coinbase"
	SourcePyth        Source = "pyth"
	SourceSwitchboard Source = "switchboard"
)

// PriceRecord is a normalized quote from one source.
type PriceRecord struct {
	Symbol      string
	MintAddress string
	Price       decimal.Decimal
	Volume24h   decimal.Decimal
	Change24h   decimal.Decimal
	MarketCap   *decimal.Decimal
	Timestamp   time.Time
	Source      Source
	Confidence  float64
}

// DexSnapshot is the aggregate state of one DEX venue.
type DexSnapshot struct {
	Name       string
	TVL        decimal.Decimal
	Volume24h  decimal.Decimal
	Volume7d   decimal.Decimal
	Fees24h    decimal.Decimal
	PoolsCount int
	Timestamp  time.Time
	Source     Source
}

// Quote is a pre-swap estimate.
type Quote struct {
	InputMint     string
	OutputMint    string
	InputAmount   decimal.Decimal
	ExpectedOut   decimal.Decimal
	MinimumOut    decimal.Decimal
	PriceImpactPct decimal.Decimal
	RoutePlan     []byte
}

// overviewEntry is one slot of marketOverview's result, partial failures
// surfacing as an error string rather than aborting the whole fan-out.
type overviewEntry struct {
	Symbol string
	Record *PriceRecord
	Error  string
}

type dexOverviewEntry struct {
	Name     string
	Snapshot *DexSnapshot
	Error    string
}
