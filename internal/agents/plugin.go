package agents

import (
	"context"

	"github.com/ajitpratap0/solana-guardian/internal/swarm"
)

// Role enumerates the variants an Agent Plugin may take.
type Role string

const (
	RoleMarketAnalyzer    Role = "market_analyzer"
	RoleStrategyOptimizer Role = "strategy_optimizer"
	RoleRiskManager       Role = "risk_manager"
	RoleArbitrageAgent    Role = "arbitrage_agent"
	RoleYieldFarmer       Role = "yield_farmer"
	RolePortfolioManager  Role = "portfolio_manager"
	RoleDecisionMaker     Role = "decision_maker"
)

// EvaluationResult is what Evaluate returns: at minimum the reasoner
// fields, plus any role-specific fields a caller agrees on the shape of
// out of band (risk_level, action_type, preferred_dex, ...).
type EvaluationResult struct {
	Observation string
	Reasoning   string
	Conclusion  string
	Confidence  float64
	Extra       map[string]any
}

// Action is what Execute is asked to carry out, generally the outcome of
// a swarm round the plugin itself proposed or voted to approve.
type Action struct {
	Kind   swarm.ProposalKind
	Params map[string]any
}

// ExecutionResult is the side-effectful outcome of Execute.
type ExecutionResult struct {
	Success   bool
	Signature string
	Error     string
}

// Plugin is the uniform capability every role-specialized reasoner
// implements: initialize/evaluate/execute/cleanup, plus enough identity
// to act as a Swarm Peer.
type Plugin interface {
	ID() string
	Role() Role

	// Initialize acquires outbound resources. Idempotent.
	Initialize(ctx context.Context) error

	// Evaluate is pure w.r.t. plugin state except for logging and cache,
	// and must complete within the plugin's configured timeout.
	Evaluate(ctx context.Context, pctx swarm.ProposalContext) (EvaluationResult, error)

	// Execute is side-effectful; it may call the RPC Gateway.
	Execute(ctx context.Context, action Action) (ExecutionResult, error)

	// Cleanup releases resources. Idempotent.
	Cleanup(ctx context.Context) error
}
