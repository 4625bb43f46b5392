package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ajitpratap0/solana-guardian/internal/llm"
	"github.com/ajitpratap0/solana-guardian/internal/swarm"
)

// Executor carries out a side-effectful Action on behalf of a
// ReasonerPlugin. Most roles are evaluate-only; roles that can act on
// the chain set one at construction.
type Executor func(ctx context.Context, action Action) (ExecutionResult, error)

// ReasonerPlugin is the shared implementation every role variant uses: it
// asks its role-framed prompt of the LLM oracle, parses the Response
// into an EvaluationResult, and maps confidence to a swarm Vote. Role
// differences are entirely in the prompt text and, optionally, the
// Executor.
type ReasonerPlugin struct {
	*BasePlugin
	minConfidence float64
	executor      Executor
}

// NewReasonerPlugin builds a role-specialized plugin. minConfidence is
// the per-vote approve/abstain boundary the plugin applies to its own
// oracle-derived confidence, mirroring the coordinator's classification.
func NewReasonerPlugin(cfg PluginConfig, oracle *llm.Oracle, minConfidence float64, executor Executor, log zerolog.Logger) *ReasonerPlugin {
	return &ReasonerPlugin{
		BasePlugin:    NewBasePlugin(cfg, oracle, log),
		minConfidence: minConfidence,
		executor:      executor,
	}
}

var _ Plugin = (*ReasonerPlugin)(nil)
var _ swarm.Peer = (*ReasonerPlugin)(nil)

// Evaluate asks the oracle a role-framed question about the proposal
// context and returns the parsed result. It never returns an error for a
// malformed oracle reply — that's absorbed into the low-confidence
// fallback the oracle itself produces — only for a missing oracle.
func (r *ReasonerPlugin) Evaluate(ctx context.Context, pctx swarm.ProposalContext) (EvaluationResult, error) {
	start := time.Now()
	defer func() { r.RecordEvaluation(time.Since(start)) }()

	if r.Oracle() == nil {
		return EvaluationResult{}, fmt.Errorf("agents: %s has no oracle configured", r.ID())
	}

	evalCtx, cancel := context.WithTimeout(ctx, r.Timeout())
	defer cancel()

	userPrompt := buildEvaluationPrompt(pctx)
	resp := r.Oracle().Query(evalCtx, rolePrompt(r.Role()), userPrompt)

	return EvaluationResult{
		Observation: resp.Observation,
		Reasoning:   resp.Reasoning,
		Conclusion:  resp.Conclusion,
		Confidence:  resp.Confidence,
	}, nil
}

// EvaluateProposal bridges the Agent Plugin's Evaluate to the Swarm
// Coordinator's Peer contract, classifying the resulting confidence into
// a Vote the same way the coordinator's own aggregation does.
func (r *ReasonerPlugin) EvaluateProposal(ctx context.Context, p swarm.Proposal) (swarm.Vote, error) {
	result, err := r.Evaluate(ctx, p.Context)
	if err != nil {
		return swarm.Vote{AgentID: r.ID(), Decision: swarm.VoteReject, Confidence: 0, Reasoning: err.Error()}, nil
	}

	var decision swarm.VoteDecision
	switch {
	case result.Confidence >= r.minConfidence:
		decision = swarm.VoteApprove
	case result.Confidence < 0.4:
		decision = swarm.VoteReject
	default:
		decision = swarm.VoteAbstain
	}

	return swarm.Vote{
		AgentID:    r.ID(),
		Decision:   decision,
		Confidence: result.Confidence,
		Reasoning:  result.Reasoning,
	}, nil
}

// Execute delegates to the configured Executor, if any. Roles that are
// evaluate-only (e.g. market_analyzer) report an unsupported error
// instead of silently doing nothing.
func (r *ReasonerPlugin) Execute(ctx context.Context, action Action) (ExecutionResult, error) {
	if r.Halted() {
		return ExecutionResult{Success: false, Error: "plugin halted"}, nil
	}
	if r.executor == nil {
		return ExecutionResult{Success: false, Error: fmt.Sprintf("execute not supported for role %s", r.Role())}, nil
	}
	return r.executor(ctx, action)
}

func buildEvaluationPrompt(pctx swarm.ProposalContext) string {
	params, _ := json.MarshalIndent(pctx.Parameters, "", "  ")
	return fmt.Sprintf(`Proposal to evaluate:
Kind: %s
Parameters: %s

Respond in JSON with exactly these fields:
- observation: string, what you observe
- reasoning: string, your analysis
- conclusion: string, your recommendation
- confidence: float, 0 to 1`, pctx.Kind, string(params))
}
