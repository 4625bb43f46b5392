package market

import (
	"context"

	"github.com/ajitpratap0/solana-guardian/internal/ratelimit"
)

// priceSource is a source adapter implementing fetch(symbol) → PriceRecord
// | absent. Each is paired with its own rate-limit
// bucket and declared priority.
type priceSource interface {
	Name() Source
	Fetch(ctx context.Context, symbol string) (*PriceRecord, error)
}

// sourceSlot pairs one adapter with its priority and an independent
// token bucket — one bucket per source, never shared.
type sourceSlot struct {
	source   priceSource
	priority int
	limiter  *ratelimit.Bucket
}
