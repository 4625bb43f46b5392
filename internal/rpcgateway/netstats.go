package rpcgateway

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// GetNetworkStats issues its sub-queries concurrently and gathers them.
func (g *Gateway) GetNetworkStats(ctx context.Context) (NetworkStats, error) {
	stats := NetworkStats{Network: g.network}

	group, gctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		slot, err := g.getSlot(gctx)
		if err != nil {
			return fmt.Errorf("getSlot: %w", err)
		}
		stats.Slot = slot
		return nil
	})

	group.Go(func() error {
		epoch, slotIndex, slotsInEpoch, err := g.getEpochInfo(gctx)
		if err != nil {
			return fmt.Errorf("getEpochInfo: %w", err)
		}
		stats.Epoch = epoch
		stats.SlotIndex = slotIndex
		stats.SlotsInEpoch = slotsInEpoch
		return nil
	})

	group.Go(func() error {
		tps, err := g.getRecentTPS(gctx)
		if err != nil {
			return fmt.Errorf("getRecentPerformanceSamples: %w", err)
		}
		stats.TPS = tps
		return nil
	})

	group.Go(func() error {
		total, circulating, err := g.getSupply(gctx)
		if err != nil {
			return fmt.Errorf("getSupply: %w", err)
		}
		stats.TotalSupply = total
		stats.CirculatingSupply = circulating
		return nil
	})

	if err := group.Wait(); err != nil {
		return NetworkStats{}, err
	}
	return stats, nil
}

func (g *Gateway) getSlot(ctx context.Context) (uint64, error) {
	raw, err := g.invoke(ctx, rpcRequest{Method: "getSlot", Params: []any{map[string]string{"commitment": g.commitment}}, Idempotent: true})
	if err != nil {
		return 0, err
	}
	var slot uint64
	if err := json.Unmarshal(raw, &slot); err != nil {
		return 0, fmt.Errorf("parse getSlot response: %w", err)
	}
	return slot, nil
}

func (g *Gateway) getEpochInfo(ctx context.Context) (epoch, slotIndex, slotsInEpoch uint64, err error) {
	raw, err := g.invoke(ctx, rpcRequest{Method: "getEpochInfo", Params: []any{map[string]string{"commitment": g.commitment}}, Idempotent: true})
	if err != nil {
		return 0, 0, 0, err
	}
	var parsed struct {
		Epoch        uint64 `json:"epoch"`
		SlotIndex    uint64 `json:"slotIndex"`
		SlotsInEpoch uint64 `json:"slotsInEpoch"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return 0, 0, 0, fmt.Errorf("parse getEpochInfo response: %w", err)
	}
	return parsed.Epoch, parsed.SlotIndex, parsed.SlotsInEpoch, nil
}

func (g *Gateway) getRecentTPS(ctx context.Context) (float64, error) {
	raw, err := g.invoke(ctx, rpcRequest{Method: "getRecentPerformanceSamples", Params: []any{1}, Idempotent: true})
	if err != nil {
		return 0, err
	}
	var samples []struct {
		NumTransactions uint64 `json:"numTransactions"`
		SamplePeriodSecs uint64 `json:"samplePeriodSecs"`
	}
	if err := json.Unmarshal(raw, &samples); err != nil {
		return 0, fmt.Errorf("parse getRecentPerformanceSamples response: %w", err)
	}
	if len(samples) == 0 || samples[0].SamplePeriodSecs == 0 {
		return 0, nil
	}
	return float64(samples[0].NumTransactions) / float64(samples[0].SamplePeriodSecs), nil
}

func (g *Gateway) getSupply(ctx context.Context) (total, circulating decimal.Decimal, err error) {
	raw, err := g.invoke(ctx, rpcRequest{Method: "getSupply", Params: []any{map[string]string{"commitment": g.commitment}}, Idempotent: true})
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	var parsed struct {
		Value struct {
			Total       uint64 `json:"total"`
			Circulating uint64 `json:"circulating"`
		} `json:"value"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("parse getSupply response: %w", err)
	}
	div := decimal.NewFromInt(lamportsPerSOL)
	return decimal.NewFromInt(int64(parsed.Value.Total)).Div(div),
		decimal.NewFromInt(int64(parsed.Value.Circulating)).Div(div),
		nil
}
