package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBucket_AcquireWithinBurst(t *testing.T) {
	b := New(10)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	for i := 0; i < 10; i++ {
		require.NoError(t, b.Acquire(ctx))
	}
}

func TestBucket_AcquireBlocksPastBurst(t *testing.T) {
	b := New(2)
	ctx := context.Background()

	require.NoError(t, b.Acquire(ctx))
	require.NoError(t, b.Acquire(ctx))

	start := time.Now()
	require.NoError(t, b.Acquire(ctx))
	assert.Greater(t, time.Since(start), 100*time.Millisecond)
}

func TestBucket_AcquireRespectsCancellation(t *testing.T) {
	b := New(1)
	ctx := context.Background()
	require.NoError(t, b.Acquire(ctx))

	cancelCtx, cancel := context.WithCancel(context.Background())
	cancel()
	err := b.Acquire(cancelCtx)
	assert.Error(t, err)
}

func TestNewPerMinute(t *testing.T) {
	b := NewPerMinute(60)
	ctx := context.Background()
	require.NoError(t, b.Acquire(ctx))
}

func TestBucket_Unlimited(t *testing.T) {
	b := New(0)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	for i := 0; i < 1000; i++ {
		require.NoError(t, b.Acquire(ctx))
	}
}
