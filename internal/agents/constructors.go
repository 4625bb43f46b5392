package agents

import (
	"github.com/rs/zerolog"

	"github.com/ajitpratap0/solana-guardian/internal/llm"
)

// NewMarketAnalyzer builds an evaluate-only market analysis peer.
func NewMarketAnalyzer(id string, oracle *llm.Oracle, minConfidence float64, log zerolog.Logger) *ReasonerPlugin {
	return NewReasonerPlugin(PluginConfig{ID: id, Role: RoleMarketAnalyzer, Version: "1.0.0"}, oracle, minConfidence, nil, log)
}

// NewStrategyOptimizer builds an evaluate-only execution-route optimizer peer.
func NewStrategyOptimizer(id string, oracle *llm.Oracle, minConfidence float64, log zerolog.Logger) *ReasonerPlugin {
	return NewReasonerPlugin(PluginConfig{ID: id, Role: RoleStrategyOptimizer, Version: "1.0.0"}, oracle, minConfidence, nil, log)
}

// NewRiskManager builds an evaluate-only risk assessment peer.
func NewRiskManager(id string, oracle *llm.Oracle, minConfidence float64, log zerolog.Logger) *ReasonerPlugin {
	return NewReasonerPlugin(PluginConfig{ID: id, Role: RoleRiskManager, Version: "1.0.0"}, oracle, minConfidence, nil, log)
}

// NewArbitrageAgent builds an evaluate-only cross-venue spread peer.
func NewArbitrageAgent(id string, oracle *llm.Oracle, minConfidence float64, log zerolog.Logger) *ReasonerPlugin {
	return NewReasonerPlugin(PluginConfig{ID: id, Role: RoleArbitrageAgent, Version: "1.0.0"}, oracle, minConfidence, nil, log)
}

// NewYieldFarmer builds an evaluate-only yield allocation peer.
func NewYieldFarmer(id string, oracle *llm.Oracle, minConfidence float64, log zerolog.Logger) *ReasonerPlugin {
	return NewReasonerPlugin(PluginConfig{ID: id, Role: RoleYieldFarmer, Version: "1.0.0"}, oracle, minConfidence, nil, log)
}

// NewPortfolioManager builds an evaluate-only allocation-health peer.
func NewPortfolioManager(id string, oracle *llm.Oracle, minConfidence float64, log zerolog.Logger) *ReasonerPlugin {
	return NewReasonerPlugin(PluginConfig{ID: id, Role: RolePortfolioManager, Version: "1.0.0"}, oracle, minConfidence, nil, log)
}

// NewDecisionMaker builds the decision-making peer, the one role typically
// wired with an Executor since it carries the final call forward into a
// swarm proposal's execution.
func NewDecisionMaker(id string, oracle *llm.Oracle, minConfidence float64, executor Executor, log zerolog.Logger) *ReasonerPlugin {
	return NewReasonerPlugin(PluginConfig{ID: id, Role: RoleDecisionMaker, Version: "1.0.0"}, oracle, minConfidence, executor, log)
}
