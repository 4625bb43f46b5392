// Package ratelimit provides a per-resource token bucket used by the RPC
// gateway and the market data aggregator to bound outbound call rates.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Bucket is a token bucket sized by a requests-per-second rate with burst
// equal to that same rate. Acquire blocks the caller goroutine without
// busy-waiting until a token is available or the context is done.
type Bucket struct {
	mu          sync.Mutex
	limiter     *rate.Limiter
	windowStart time.Time
	windowCalls int
	windowLimit int
}

// New creates a Bucket that allows ratePerSecond operations per second,
// with burst capacity equal to ratePerSecond. ratePerSecond <= 0 means
// unlimited.
func New(ratePerSecond float64) *Bucket {
	if ratePerSecond <= 0 {
		return &Bucket{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	burst := int(ratePerSecond)
	if burst < 1 {
		burst = 1
	}
	return &Bucket{
		limiter:     rate.NewLimiter(rate.Limit(ratePerSecond), burst),
		windowStart: time.Now(),
		windowLimit: burst,
	}
}

// NewPerMinute creates a Bucket from an operations-per-minute figure, the
// shape the market data source rate-limit table is configured in.
func NewPerMinute(opsPerMinute int) *Bucket {
	return New(float64(opsPerMinute) / 60.0)
}

// Acquire blocks until one token is available or ctx is done. It never
// busy-waits: the underlying limiter schedules a single timer wake-up.
func (b *Bucket) Acquire(ctx context.Context) error {
	b.mu.Lock()
	b.refillWindow()
	b.mu.Unlock()
	return b.limiter.Wait(ctx)
}

// refillWindow lazily resets the rolling 1-second call counter, used only
// for the CallsInWindow introspection below; the actual throttling
// decision is delegated entirely to the wrapped rate.Limiter.
func (b *Bucket) refillWindow() {
	now := time.Now()
	if now.Sub(b.windowStart) >= time.Second {
		b.windowStart = now
		b.windowCalls = 0
	}
	b.windowCalls++
}

// CallsInWindow reports how many Acquire calls landed in the current
// rolling 1-second window. A call is counted when Acquire is entered,
// before it waits for a token.
func (b *Bucket) CallsInWindow() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.windowCalls
}
