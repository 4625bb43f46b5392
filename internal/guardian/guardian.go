// Package guardian wires the RPC Gateway, Market Data Aggregator, Swarm
// Coordinator, and their supporting infrastructure into the control loop
// described as the Guardian: on each tick, read chain and market state,
// fan a proposal out to the swarm, and act on consensus.
package guardian

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/ajitpratap0/solana-guardian/internal/alerts"
	"github.com/ajitpratap0/solana-guardian/internal/audit"
	"github.com/ajitpratap0/solana-guardian/internal/eventbus"
	"github.com/ajitpratap0/solana-guardian/internal/market"
	"github.com/ajitpratap0/solana-guardian/internal/memory"
	"github.com/ajitpratap0/solana-guardian/internal/metrics"
	"github.com/ajitpratap0/solana-guardian/internal/risk"
	"github.com/ajitpratap0/solana-guardian/internal/rpcgateway"
	"github.com/ajitpratap0/solana-guardian/internal/swarm"
)

// Config carries the glue loop's own settings, distinct from the
// components it wires together.
type Config struct {
	TickInterval          time.Duration
	TrackedSymbols        []string
	Simulation            bool
	SafeHavenAddress      string
	BypassConsensusOnExit bool
	Thresholds            risk.Thresholds
}

// Guardian is the thin loop: it owns no business logic of its own beyond
// sequencing calls to its collaborators and reacting to their outcomes.
type Guardian struct {
	cfg Config

	gateway     *rpcgateway.Gateway
	aggregator  *market.Aggregator
	coordinator *swarm.Coordinator
	assessor    *risk.Assessor
	outcomeLog  *memory.Log
	audit       *audit.Logger
	alertMgr    *alerts.Manager
	bus         *eventbus.Bus
	log         zerolog.Logger

	mu          sync.Mutex
	equityCurve []float64
	halted      bool
}

// New builds a Guardian from its already-constructed collaborators.
// Every pointer is expected to be non-nil except outcomeLog/audit/bus,
// whose nil-receiver-safe methods disable themselves when unconfigured.
func New(
	cfg Config,
	gateway *rpcgateway.Gateway,
	aggregator *market.Aggregator,
	coordinator *swarm.Coordinator,
	outcomeLog *memory.Log,
	auditLogger *audit.Logger,
	alertMgr *alerts.Manager,
	bus *eventbus.Bus,
	log zerolog.Logger,
) *Guardian {
	return &Guardian{
		cfg:         cfg,
		gateway:     gateway,
		aggregator:  aggregator,
		coordinator: coordinator,
		assessor:    risk.NewAssessor(cfg.Thresholds),
		outcomeLog:  outcomeLog,
		audit:       auditLogger,
		alertMgr:    alertMgr,
		bus:         bus,
		log:         log.With().Str("component", "guardian").Logger(),
	}
}

// Run drives the tick loop until ctx is cancelled.
func (gd *Guardian) Run(ctx context.Context) {
	ticker := time.NewTicker(gd.cfg.TickInterval)
	defer ticker.Stop()

	gd.log.Info().Dur("interval", gd.cfg.TickInterval).Msg("guardian loop started")

	for {
		select {
		case <-ctx.Done():
			gd.log.Info().Msg("guardian loop stopping")
			return
		case <-ticker.C:
			gd.Tick(ctx)
		}
	}
}

// Halted reports whether the guardian is currently refusing to propose
// or execute trade/rebalance actions following an emergency exit.
func (gd *Guardian) Halted() bool {
	gd.mu.Lock()
	defer gd.mu.Unlock()
	return gd.halted
}

// Resume clears a halt raised by a prior emergency exit, letting the loop
// propose ordinary actions again on its next tick.
func (gd *Guardian) Resume(ctx context.Context, reason string) {
	gd.mu.Lock()
	gd.halted = false
	gd.mu.Unlock()

	gd.log.Warn().Str("reason", reason).Msg("guardian resumed")
	gd.audit.LogHaltControl(ctx, false, reason)
	gd.bus.Publish("control.resumed", map[string]string{"reason": reason})
}

// Tick runs one cycle: gather chain and market state, check for an
// emergency condition, and otherwise propose a routine analysis round.
func (gd *Guardian) Tick(ctx context.Context) {
	start := time.Now()

	portfolio, err := gd.readPortfolio(ctx)
	if err != nil {
		gd.log.Error().Err(err).Msg("tick: read portfolio failed, skipping round")
		return
	}

	gd.recordEquity(portfolio)

	marketCtx := gd.fetchMarketContext(ctx)

	pctx := swarm.ProposalContext{
		MarketContext: marketCtx,
		Portfolio:     portfolio,
		Timestamp:     time.Now(),
	}

	if gd.checkEmergency(ctx, pctx) {
		gd.log.Warn().Msg("tick: emergency exit handled, skipping routine proposal")
		return
	}

	if gd.Halted() {
		gd.log.Debug().Msg("tick: guardian halted, skipping routine proposal")
		return
	}

	pctx.Kind = swarm.KindAnalysis
	outcome := gd.coordinator.ProposeAction(ctx, swarm.KindAnalysis, map[string]any{"focus": "portfolio"}, pctx)

	gd.audit.LogProposalDecided(ctx, "", outcome.Consensus, string(outcome.Decision), map[string]interface{}{
		"approval_rate": outcome.ApprovalRate,
		"total_votes":   outcome.TotalVotes,
	})
	metrics.RecordVotingResult(string(outcome.Decision))

	gd.outcomeLog.Append(ctx, memory.Outcome{
		StrategyID:      "guardian_tick",
		Timestamp:       time.Now(),
		Success:         outcome.Consensus,
		ActualProfit:    0,
		PredictedProfit: 0,
		ExecutionTimeMs: time.Since(start).Milliseconds(),
		AgentsInvolved:  voterIDs(outcome.Votes),
	})

	gd.bus.Publish("cycle.outcome", outcome)
}

// readPortfolio queries the gateway for the guardian's native balance.
// Token balances are not read: the returned Balances map is empty.
func (gd *Guardian) readPortfolio(ctx context.Context) (swarm.WalletBalance, error) {
	native, err := gd.gateway.GetBalance(ctx, "")
	if err != nil {
		return swarm.WalletBalance{}, fmt.Errorf("read native balance: %w", err)
	}
	return swarm.WalletBalance{Native: native.String(), Balances: map[string]string{}}, nil
}

// fetchMarketContext pulls the latest price for each tracked symbol.
// A source failure for one symbol is logged and skipped rather than
// aborting the whole tick — partial market context still informs a
// round better than none.
func (gd *Guardian) fetchMarketContext(ctx context.Context) []*market.PriceRecord {
	records := make([]*market.PriceRecord, 0, len(gd.cfg.TrackedSymbols))
	for _, symbol := range gd.cfg.TrackedSymbols {
		rec, err := gd.aggregator.GetTokenPrice(ctx, symbol)
		if err != nil {
			gd.log.Warn().Err(err).Str("symbol", symbol).Msg("tick: price fetch failed")
			continue
		}
		records = append(records, rec)
	}
	return records
}

func (gd *Guardian) recordEquity(portfolio swarm.WalletBalance) {
	native, err := decimal.NewFromString(portfolio.Native)
	if err != nil {
		return
	}
	value, _ := native.Float64()

	gd.mu.Lock()
	gd.equityCurve = append(gd.equityCurve, value)
	if len(gd.equityCurve) > 512 {
		gd.equityCurve = gd.equityCurve[len(gd.equityCurve)-512:]
	}
	gd.mu.Unlock()
}

func voterIDs(votes []swarm.Vote) []string {
	ids := make([]string, 0, len(votes))
	for _, v := range votes {
		ids = append(ids, v.AgentID)
	}
	return ids
}
