package market

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisCache(t *testing.T) *redisCache {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	return newRedisCache(client, zerolog.Nop())
}

func TestRedisCache_PriceRoundTrip(t *testing.T) {
	c := newTestRedisCache(t)
	rec := &PriceRecord{Symbol: "SOL", Price: decimal.NewFromInt(150)}

	c.setPrice("price:SOL", rec, time.Minute)

	require.Eventually(t, func() bool {
		_, ok := c.getPrice(context.Background(), "price:SOL")
		return ok
	}, time.Second, time.Millisecond)

	got, ok := c.getPrice(context.Background(), "price:SOL")
	require.True(t, ok)
	assert.Equal(t, rec.Symbol, got.Symbol)
	assert.True(t, rec.Price.Equal(got.Price))
}

func TestRedisCache_MissReturnsFalse(t *testing.T) {
	c := newTestRedisCache(t)

	_, ok := c.getPrice(context.Background(), "price:unknown")
	assert.False(t, ok)
}

func TestRedisCache_CorruptValueTreatedAsMiss(t *testing.T) {
	c := newTestRedisCache(t)
	require.NoError(t, c.client.Client().Set(context.Background(), "price:bad", "not-json", time.Minute).Err())

	_, ok := c.getPrice(context.Background(), "price:bad")
	assert.False(t, ok)
}

func TestRedisCache_Health(t *testing.T) {
	c := newTestRedisCache(t)

	assert.NoError(t, c.Health(context.Background()))
}

func TestRedisCache_HealthFailsWhenUnreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	c := newRedisCache(client, zerolog.Nop())

	assert.Error(t, c.Health(context.Background()))
}
