package market

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/ajitpratap0/solana-guardian/internal/metrics"
)

// redisCache mirrors the local TTL cache's (get, set) shape but backs it
// with a shared Redis instance, so multiple Guardian processes see the
// same price fusion, generalized from a flat symbol/currency/price entry
// to the aggregator's own PriceRecord/DexSnapshot records. Reads and writes go through the
// instrumented client so cache hit rate is visible on the metrics server
// alongside every other Guardian signal.
type redisCache struct {
	client *metrics.RedisMetrics
	log    zerolog.Logger
}

func newRedisCache(client *redis.Client, log zerolog.Logger) *redisCache {
	return &redisCache{client: metrics.NewRedisMetrics(client), log: log}
}

func (r *redisCache) getPrice(ctx context.Context, key string) (*PriceRecord, bool) {
	cacheCtx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()

	raw, err := r.client.Get(cacheCtx, key)
	if err != nil {
		if err != redis.Nil {
			r.log.Debug().Err(err).Str("key", key).Msg("redis cache lookup failed, treating as miss")
		}
		return nil, false
	}
	var rec PriceRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		r.log.Warn().Err(err).Str("key", key).Msg("failed to unmarshal cached price record")
		return nil, false
	}
	return &rec, true
}

// setPrice writes asynchronously: a slow or unavailable Redis must never
// add latency to the caller's price lookup, so the write happens on a
// fire-and-forget goroutine.
func (r *redisCache) setPrice(key string, rec *PriceRecord, ttl time.Duration) {
	data, err := json.Marshal(rec)
	if err != nil {
		r.log.Warn().Err(err).Msg("failed to marshal price record for redis cache")
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := r.client.Set(ctx, key, data, ttl); err != nil {
			r.log.Warn().Err(err).Str("key", key).Msg("failed to write redis cache entry")
		}
	}()
}

func (r *redisCache) Health(ctx context.Context) error {
	cacheCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := r.client.Client().Ping(cacheCtx).Err(); err != nil {
		return fmt.Errorf("redis health check failed: %w", err)
	}
	return nil
}
