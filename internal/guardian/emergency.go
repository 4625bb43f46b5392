package guardian

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ajitpratap0/solana-guardian/internal/alerts"
	"github.com/ajitpratap0/solana-guardian/internal/swarm"
)

// checkEmergency evaluates the current equity curve against the
// configured drop threshold and risk ceiling. A breach raises a distinct
// exit-kind proposal, which still goes through consensus unless the
// operator has explicitly set BypassConsensusOnExit. It reports whether
// this tick was consumed by emergency handling, so the caller skips its
// routine proposal in that case.
func (gd *Guardian) checkEmergency(ctx context.Context, pctx swarm.ProposalContext) bool {
	gd.mu.Lock()
	curve := append([]float64(nil), gd.equityCurve...)
	gd.mu.Unlock()

	assessment := gd.assessor.Assess(curve)
	if !assessment.ShouldExit {
		return false
	}

	gd.log.Warn().
		Float64("current_drawdown", assessment.CurrentDrawdown).
		Float64("score", assessment.Score).
		Str("reason", assessment.Reason).
		Msg("emergency condition detected")

	pctx.Kind = swarm.KindExit
	outcome := gd.coordinator.ProposeAction(ctx, swarm.KindExit, map[string]any{"reason_code": assessment.Reason}, pctx)

	approved := outcome.Consensus || gd.cfg.BypassConsensusOnExit
	if !approved {
		gd.log.Warn().Str("reason", assessment.Reason).Msg("emergency exit proposal rejected by swarm, holding")
		alerts.AlertConsensusFailure(ctx, gd.alertMgr, string(outcome.Decision), assessment.Reason)
		return true
	}

	gd.mu.Lock()
	gd.halted = true
	gd.mu.Unlock()

	sig, execErr := gd.executeExit(ctx)

	alerts.AlertEmergencyExit(ctx, gd.alertMgr, assessment.Reason, map[string]interface{}{
		"current_drawdown": assessment.CurrentDrawdown,
		"max_drawdown":      assessment.MaxDrawdown,
		"score":             assessment.Score,
		"bypassed_consensus": !outcome.Consensus,
	})

	execSuccess := execErr == nil
	errMsg := ""
	if execErr != nil {
		errMsg = execErr.Error()
	}
	gd.audit.LogEmergencyExit(ctx, "", assessment.Reason, execSuccess, errMsg)
	alerts.AlertHalted(ctx, gd.alertMgr, true, assessment.Reason)
	gd.bus.Publish("emergency.exit", map[string]interface{}{
		"reason":    assessment.Reason,
		"success":   execSuccess,
		"signature": sig,
	})

	return true
}

// executeExit moves the guardian's native balance to the configured
// safe-haven address. In simulation mode it logs the intent without
// submitting anything on chain; without a configured destination it
// returns an error.
func (gd *Guardian) executeExit(ctx context.Context) (string, error) {
	if gd.cfg.Simulation {
		gd.log.Info().Msg("emergency exit: simulation mode, no transfer submitted")
		return "", nil
	}
	if gd.cfg.SafeHavenAddress == "" {
		return "", fmt.Errorf("emergency exit: no safe haven address configured")
	}

	native, err := gd.gateway.GetBalance(ctx, "")
	if err != nil {
		return "", fmt.Errorf("emergency exit: read balance: %w", err)
	}
	if native.LessThanOrEqual(decimal.Zero) {
		return "", nil
	}

	sig, err := gd.gateway.Transfer(ctx, gd.cfg.SafeHavenAddress, native)
	if err != nil {
		return "", fmt.Errorf("emergency exit: transfer failed: %w", err)
	}
	return sig, nil
}
