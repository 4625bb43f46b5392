package swarm

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config carries the consensus thresholds a Coordinator enforces (spec
// defaults: minConfidence 0.7, minVotes 2, timeout 60s).
type Config struct {
	SwarmID       string
	SelfID        string
	MinConfidence float64
	MinVotes      int
	Timeout       time.Duration
}

// Coordinator orchestrates one round of confidence-weighted consensus
// over the peer set registered under its swarm id. It owns no peer
// state directly — membership lives in the shared Registry — so joining
// new peers never requires mutating an object another round is reading.
type Coordinator struct {
	registry *Registry
	cfg      Config
	log      zerolog.Logger
}

// DefaultConfig returns the documented defaults (minConfidence 0.7,
// minVotes 2, timeout 60s) for callers that don't need to override them.
// A zero-value Config (e.g. Timeout: 0) is a deliberate boundary case —
// NewCoordinator never substitutes a default on the caller's behalf.
func DefaultConfig(swarmID, selfID string) Config {
	return Config{
		SwarmID:       swarmID,
		SelfID:        selfID,
		MinConfidence: 0.7,
		MinVotes:      2,
		Timeout:       60 * time.Second,
	}
}

// NewCoordinator builds a Coordinator bound to one swarm id within
// registry. Pass a non-nil, already-constructed Registry shared by every
// peer in the swarm.
func NewCoordinator(registry *Registry, cfg Config, log zerolog.Logger) *Coordinator {
	return &Coordinator{registry: registry, cfg: cfg, log: log}
}

// JoinSwarm forms a bidirectional peer set: self and every given peer end
// up in the same swarm membership, so each can see the others on the next
// round (§4.4 topology; §9 cyclic-peer-reference note).
func (c *Coordinator) JoinSwarm(self Peer, peers ...Peer) {
	all := append([]Peer{self}, peers...)
	c.registry.Join(c.cfg.SwarmID, all...)
}

// ProposeAction runs one round: fan out to every registered peer except
// self, collect votes up to the configured timeout, and aggregate. The
// initiator never votes on its own proposal.
func (c *Coordinator) ProposeAction(ctx context.Context, kind ProposalKind, params map[string]any, pctx ProposalContext) ProposalOutcome {
	proposal := newProposal(kind, params, pctx)

	peers := c.registry.PeersExcept(c.cfg.SwarmID, c.cfg.SelfID)
	if len(peers) == 0 {
		return ProposalOutcome{Consensus: false, Decision: DecisionHold, Reason: "insufficient votes", TotalVotes: 0}
	}

	votes := make([]Vote, len(peers))

	if c.cfg.Timeout <= 0 {
		// A non-positive deadline means immediate timeout: no peer is
		// contacted at all, per the zero-deadline boundary case.
		for i, p := range peers {
			votes[i] = Vote{AgentID: p.ID(), Decision: VoteReject, Confidence: 0, Reasoning: "round deadline elapsed before dispatch"}
		}
		return aggregate(votes, c.cfg.MinConfidence, c.cfg.MinVotes)
	}

	roundCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(len(peers))
	for i, p := range peers {
		i, p := i, p
		go func() {
			defer wg.Done()
			vote, err := p.EvaluateProposal(roundCtx, proposal)
			switch {
			case roundCtx.Err() != nil:
				votes[i] = Vote{AgentID: p.ID(), Decision: VoteReject, Confidence: 0, Reasoning: "round deadline elapsed"}
			case err != nil:
				c.log.Warn().Err(err).Str("peer", p.ID()).Str("proposal", proposal.ID).Msg("peer evaluation failed, counting as reject")
				votes[i] = Vote{AgentID: p.ID(), Decision: VoteReject, Confidence: 0, Reasoning: "peer evaluation failed"}
			default:
				votes[i] = vote
			}
		}()
	}
	wg.Wait()

	return aggregate(votes, c.cfg.MinConfidence, c.cfg.MinVotes)
}
