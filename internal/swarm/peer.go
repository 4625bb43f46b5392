package swarm

import "context"

// Peer is the capability a Swarm Coordinator fans a Proposal out to. Agent
// Plugins implement this by wrapping their evaluate() operation.
type Peer interface {
	ID() string
	EvaluateProposal(ctx context.Context, p Proposal) (Vote, error)
}
