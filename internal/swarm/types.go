// Package swarm implements the single-round, confidence-weighted consensus
// protocol that Agent Plugins participate in as peers.
package swarm

import (
	"time"

	"github.com/google/uuid"

	"github.com/ajitpratap0/solana-guardian/internal/market"
)

// ProposalKind enumerates the kinds of action a proposal may request.
type ProposalKind string

const (
	KindAnalysis  ProposalKind = "analysis"
	KindTrade     ProposalKind = "trade"
	KindRebalance ProposalKind = "rebalance"
	KindExit      ProposalKind = "exit"
)

// VoteDecision is a peer's categorical verdict on a proposal.
type VoteDecision string

const (
	VoteApprove VoteDecision = "approve"
	VoteAbstain VoteDecision = "abstain"
	VoteReject  VoteDecision = "reject"
)

// Decision is the coordinator's final verdict on a round.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionHold    Decision = "hold"
	DecisionReject  Decision = "reject"
)

// ProposalContext is the input an agent receives when asked to evaluate.
// Recognized Parameters keys vary by Kind; see the package doc comment on
// Proposal for the enumerated shapes.
type ProposalContext struct {
	Kind          ProposalKind
	Parameters    map[string]any
	MarketContext []*market.PriceRecord
	Portfolio     WalletBalance
	Timestamp     time.Time
}

// WalletBalance is a mapping from mint address to decimal amount, plus a
// distinguished native balance normalized to whole units.
type WalletBalance struct {
	Native  string // decimal.Decimal.String(), kept as string to avoid import cycles with rpcgateway
	Balances map[string]string
}

// Proposal is the unit of work fanned out to peers in one round.
//
// Recognized Parameters by Kind:
//   trade:     {input_mint, output_mint, input_amount, max_slippage_bps}
//   rebalance: {target_weights: map[symbol]weight, summing to 1±ε}
//   exit:      {reason_code: "stop_loss" | "manual" | "volatility"}
//   analysis:  {focus: symbol | "portfolio"}
type Proposal struct {
	ID        string
	Kind      ProposalKind
	Params    map[string]any
	Context   ProposalContext
	CreatedAt time.Time
}

func newProposal(kind ProposalKind, params map[string]any, pctx ProposalContext) Proposal {
	return Proposal{
		ID:        uuid.NewString(),
		Kind:      kind,
		Params:    params,
		Context:   pctx,
		CreatedAt: time.Now(),
	}
}

// Vote is one peer's immutable verdict on a Proposal.
type Vote struct {
	AgentID    string
	Decision   VoteDecision
	Confidence float64
	Reasoning  string
}

// ProposalOutcome is the coordinator's aggregated verdict for a round.
type ProposalOutcome struct {
	Consensus    bool
	ApprovalRate float64
	TotalVotes   int
	Votes        []Vote
	Decision     Decision
	Reason       string
}
