package swarm

import "sync"

// Registry holds swarm membership externally, keyed by swarm id, so that
// peers reference each other only by id rather than holding direct
// references to one another — this avoids the ownership cycles that a
// peer-to-peer adjacency model would create.
type Registry struct {
	mu     sync.RWMutex
	swarms map[string]map[string]Peer
}

// NewRegistry creates an empty swarm registry.
func NewRegistry() *Registry {
	return &Registry{swarms: make(map[string]map[string]Peer)}
}

// Join forms a bidirectional peer set under swarmID: every given peer is
// added to the same shared set, so each ends up able to see every other —
// including the initiator, which callers must pass among peers. Duplicate
// ids (by Peer.ID) are coalesced.
func (r *Registry) Join(swarmID string, peers ...Peer) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.swarms[swarmID]
	if !ok {
		set = make(map[string]Peer)
		r.swarms[swarmID] = set
	}
	for _, p := range peers {
		set[p.ID()] = p
	}
}

// PeersExcept returns every member of swarmID other than excludeID, in no
// particular order — the coordinator fans out to all of them concurrently
// and the aggregation is order-independent.
func (r *Registry) PeersExcept(swarmID, excludeID string) []Peer {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set, ok := r.swarms[swarmID]
	if !ok {
		return nil
	}
	peers := make([]Peer, 0, len(set))
	for id, p := range set {
		if id == excludeID {
			continue
		}
		peers = append(peers, p)
	}
	return peers
}

// Size reports how many peers (including the initiator) belong to swarmID.
func (r *Registry) Size(swarmID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.swarms[swarmID])
}
