package swarm

// rejectConfidenceThreshold is the per-vote boundary below which a peer's
// own confidence maps to a reject decision rather than an abstain (§4.4
// step 4's vote→decision mapping inside each peer).
const rejectConfidenceThreshold = 0.4

// classifyVote maps a raw confidence to the per-peer decision the protocol
// defines, used by Peer implementations that don't already categorize
// their own verdict.
func classifyVote(confidence, minConfidence float64) VoteDecision {
	switch {
	case confidence >= minConfidence:
		return VoteApprove
	case confidence < rejectConfidenceThreshold:
		return VoteReject
	default:
		return VoteAbstain
	}
}

// aggregate reduces a multiset of votes to a ProposalOutcome. It is a pure
// function of its inputs: deterministic given the same votes and
// thresholds, independent of the order votes arrived in.
func aggregate(votes []Vote, minConfidence float64, minVotes int) ProposalOutcome {
	totalVotes := len(votes)

	var approveConfidence, totalConfidence float64
	approveCount := 0
	for _, v := range votes {
		totalConfidence += v.Confidence
		if v.Decision == VoteApprove {
			approveConfidence += v.Confidence
			approveCount++
		}
	}

	var approvalRate float64
	if totalConfidence > 0 {
		approvalRate = approveConfidence / totalConfidence
	}

	consensus := approvalRate >= minConfidence && approveCount >= minVotes

	decision := DecisionHold
	switch {
	case consensus:
		decision = DecisionApprove
	case approvalRate < rejectConfidenceThreshold:
		decision = DecisionReject
	}

	outcome := ProposalOutcome{
		Consensus:    consensus,
		ApprovalRate: approvalRate,
		TotalVotes:   totalVotes,
		Votes:        votes,
		Decision:     decision,
	}

	if totalVotes < minVotes {
		outcome.Consensus = false
		outcome.Decision = DecisionHold
		outcome.Reason = "insufficient votes"
	}

	return outcome
}
