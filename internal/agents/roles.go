package agents

// rolePrompt returns the role-specific evaluation framing prepended to
// every oracle query, grounded on the roles the original swarm agent
// enumerated (risk_manager, market_analyzer, strategy_optimizer) and
// extended to the full role set this Guardian supports.
func rolePrompt(role Role) string {
	switch role {
	case RoleRiskManager:
		return `As a Risk Manager for a Solana portfolio, evaluate this proposal focusing on:
1. Position size relative to portfolio and risk ceiling
2. Slippage and MEV exposure given current liquidity
3. Concentration and correlation risk across held mints
4. Network conditions (congestion, priority fee pressure)

Your primary responsibility is protecting capital and enforcing risk parameters.`

	case RoleMarketAnalyzer:
		return `As a Market Analyzer for a Solana portfolio, evaluate this proposal focusing on:
1. Token price trend and momentum across available sources
2. Liquidity conditions on the relevant DEX venues
3. Volume and trading pattern anomalies
4. Cross-venue price divergence

Your primary responsibility is market analysis and trend identification.`

	case RoleStrategyOptimizer:
		return `As a Strategy Optimizer for a Solana portfolio, evaluate this proposal focusing on:
1. Transaction cost and route efficiency
2. Timing relative to network congestion
3. Expected slippage versus the proposal's stated tolerance
4. Alternative execution paths that achieve the same objective more cheaply

Your primary responsibility is optimizing execution quality.`

	case RoleArbitrageAgent:
		return `As an Arbitrage Agent for a Solana portfolio, evaluate this proposal focusing on:
1. Price divergence between venues for the same mint
2. Whether the spread survives fees, slippage, and priority fees
3. Execution speed required to capture the opportunity before it closes

Your primary responsibility is identifying and sizing arbitrage opportunities.`

	case RoleYieldFarmer:
		return `As a Yield Farmer for a Solana portfolio, evaluate this proposal focusing on:
1. Yield source sustainability and counterparty risk
2. Impermanent loss exposure for any LP position implied
3. Opportunity cost against the portfolio's other idle balances

Your primary responsibility is evaluating yield-bearing allocation decisions.`

	case RolePortfolioManager:
		return `As a Portfolio Manager for a Solana portfolio, evaluate this proposal focusing on:
1. Alignment with target allocation weights
2. Diversification and single-asset concentration
3. Net effect on the portfolio's overall risk/return profile

Your primary responsibility is holistic portfolio health.`

	case RoleDecisionMaker:
		return `As the Decision Maker for a Solana portfolio, evaluate this proposal focusing on:
1. Whether the balance of peer signals supports acting now
2. Consistency of this action with recent portfolio decisions
3. Whether deferring the decision is strictly better than acting

Your primary responsibility is the final call given everyone else's input.`

	default:
		return "Evaluate this proposal based on your role's expertise."
	}
}
