package market

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/ajitpratap0/solana-guardian/internal/ratelimit"
)

// ErrAllSourcesFailed carries the last underlying error once every
// configured source has been tried and none returned a usable record.
type ErrAllSourcesFailed struct {
	Symbol    string
	LastError error
}

func (e *ErrAllSourcesFailed) Error() string {
	return fmt.Sprintf("market: all sources failed for %s: %v", e.Symbol, e.LastError)
}

func (e *ErrAllSourcesFailed) Unwrap() error { return e.LastError }

// SourceRateLimit is the operations/minute budget for one source.
type SourceRateLimit struct {
	Source              Source
	OperationsPerMinute int
	Priority            int
}

// Config constructs an Aggregator.
type Config struct {
	Sources         []Source
	RateLimits      []SourceRateLimit
	PriceCacheTTL   time.Duration
	DexCacheTTL     time.Duration
	CoinGeckoAPIKey string
	SourceTimeout   time.Duration
	Redis           *redis.Client
}

// Aggregator produces a canonical PriceRecord per token symbol, given a
// configurable ordered set of sources, each respecting its own rate
// limit, behind a TTL cache.
type Aggregator struct {
	slots []sourceSlot
	cache *cache
	rdb   *redisCache
	log   zerolog.Logger
}

// New builds an Aggregator. An empty source set is a configuration error.
func New(cfg Config, log zerolog.Logger) (*Aggregator, error) {
	if len(cfg.Sources) == 0 {
		return nil, fmt.Errorf("market: at least one source is required")
	}

	priority := map[Source]int{
		SourceJupiter: 100, SourceCoinGecko: 70, SourceBinance: 60,
		SourceCoinbase: 50, SourcePyth: 90, SourceSwitchboard: 40,
	}
	opsPerMinute := map[Source]int{
		SourceJupiter: 100, SourceCoinGecko: 50, SourceBinance: 1200,
		SourceCoinbase: 300, SourcePyth: 100, SourceSwitchboard: 100,
	}
	for _, rl := range cfg.RateLimits {
		priority[rl.Source] = rl.Priority
		opsPerMinute[rl.Source] = rl.OperationsPerMinute
	}

	timeout := cfg.SourceTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	a := &Aggregator{
		cache: newCache(cfg.PriceCacheTTL, cfg.DexCacheTTL),
		log:   log,
	}
	if cfg.Redis != nil {
		a.rdb = newRedisCache(cfg.Redis, log)
	}

	for _, src := range cfg.Sources {
		var adapter priceSource
		switch src {
		case SourceJupiter:
			adapter = newJupiterSource(timeout)
		case SourceCoinGecko:
			adapter = newCoinGeckoSource(cfg.CoinGeckoAPIKey, timeout)
		case SourceBinance:
			adapter = newBinanceSource()
		case SourceCoinbase:
			adapter = newCoinbaseSource(timeout)
		case SourcePyth:
			adapter = newPythSource(timeout)
		case SourceSwitchboard:
			adapter = newSwitchboardSource(timeout)
		default:
			return nil, fmt.Errorf("market: unknown source %q", src)
		}

		a.slots = append(a.slots, sourceSlot{
			source:   adapter,
			priority: priority[src],
			limiter:  ratelimit.NewPerMinute(opsPerMinute[src]),
		})
	}

	sort.Slice(a.slots, func(i, j int) bool { return a.slots[i].priority > a.slots[j].priority })

	return a, nil
}

// GetTokenPrice implements the §4.2 query protocol: cache check, then
// priority-ordered fan-out with per-source rate limiting.
func (a *Aggregator) GetTokenPrice(ctx context.Context, symbol string) (*PriceRecord, error) {
	key := priceCacheKey(symbol)

	if rec, ok := a.cache.getPrice(key); ok {
		return rec, nil
	}
	if a.rdb != nil {
		if rec, ok := a.rdb.getPrice(ctx, key); ok {
			a.cache.setPrice(key, rec)
			return rec, nil
		}
	}

	var lastErr error
	for _, slot := range a.slots {
		if err := slot.limiter.Acquire(ctx); err != nil {
			return nil, fmt.Errorf("market: rate limit wait cancelled: %w", err)
		}

		rec, err := slot.source.Fetch(ctx, symbol)
		if err != nil {
			lastErr = err
			a.log.Debug().Err(err).Str("source", string(slot.source.Name())).Str("symbol", symbol).Msg("source failed, trying next")
			continue
		}
		if rec == nil || !rec.Price.IsPositive() {
			lastErr = fmt.Errorf("market: source %s returned non-positive price", slot.source.Name())
			continue
		}
		if rec.Confidence == 0 {
			// Invariant: a zero-confidence record must never be cached.
			continue
		}

		a.cache.setPrice(key, rec)
		if a.rdb != nil {
			a.rdb.setPrice(key, rec, a.cache.priceTTL)
		}
		return rec, nil
	}

	return nil, &ErrAllSourcesFailed{Symbol: symbol, LastError: lastErr}
}
