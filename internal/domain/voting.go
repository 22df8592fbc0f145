package domain

import "time"

// VoteType labels what a voting round decides
type VoteType string

const (
	VoteLynch VoteType = "lynch"
	VoteTrial VoteType = "trial"
)

// VoteOutcome classifies a completed round
type VoteOutcome string

const (
	VoteElimination VoteOutcome = "elimination"
	VoteTie         VoteOutcome = "tie"
	VoteNoVotes     VoteOutcome = "no_votes"
	VoteCancelled   VoteOutcome = "cancelled"
)

// Vote is one weighted ballot
type Vote struct {
	VoterID  string    `json:"voterId"`
	TargetID string    `json:"targetId"`
	Weight   int       `json:"weight"`
	CastAt   time.Time `json:"castAt"`
}

// VoteResult is the frozen result of a completed round
type VoteResult struct {
	Outcome      VoteOutcome `json:"outcome"`
	EliminatedID string      `json:"eliminatedId,omitempty"`
	TiedIDs      []string    `json:"tiedIds,omitempty"`
	VoteCount    int         `json:"voteCount"`
}

// VotingRound manages one weighted voting round: cast/recast, tally,
// completion, tie-break. The owning session serializes access.
type VotingRound struct {
	SessionID string    `json:"sessionId"`
	Type      VoteType  `json:"type"`
	StartAt   time.Time `json:"startAt"`
	Deadline  time.Time `json:"deadline"`

	eligibleVoters  map[string]bool
	eligibleTargets map[string]bool
	votes           map[string]Vote // voter id -> ballot
	tally           map[string]int  // target id -> weight sum

	completed bool
	result    *VoteResult
}

// NewVotingRound opens a round with a deadline. A zero duration leaves
// the round open until completed explicitly.
func NewVotingRound(sessionID string, voteType VoteType, duration time.Duration, voters, targets []string) *VotingRound {
	now := time.Now()
	r := &VotingRound{
		SessionID:       sessionID,
		Type:            voteType,
		StartAt:         now,
		eligibleVoters:  make(map[string]bool, len(voters)),
		eligibleTargets: make(map[string]bool, len(targets)),
		votes:           make(map[string]Vote),
		tally:           make(map[string]int),
	}
	if duration > 0 {
		r.Deadline = now.Add(duration)
	}
	for _, id := range voters {
		r.eligibleVoters[id] = true
	}
	for _, id := range targets {
		r.eligibleTargets[id] = true
	}
	return r
}

// Active reports whether the round still accepts votes
func (r *VotingRound) Active() bool {
	return !r.completed && !r.Expired()
}

// Expired reports whether the deadline has passed
func (r *VotingRound) Expired() bool {
	return !r.Deadline.IsZero() && time.Now().After(r.Deadline)
}

// Cast records a weighted vote. An empty target id records an
// abstention. Recasting replaces the voter's prior ballot: the old
// target's tally is decremented (and removed at zero) before the new
// tally is applied. The weight comes from the caller; the round does
// not look up roles.
func (r *VotingRound) Cast(voterID, targetID string, weight int) error {
	if !r.Active() {
		return ErrVotingClosed
	}
	if !r.eligibleVoters[voterID] {
		return ErrVoterNotEligible
	}
	if targetID != "" && !r.eligibleTargets[targetID] {
		return ErrTargetNotEligible
	}

	if prior, ok := r.votes[voterID]; ok {
		r.tally[prior.TargetID] -= prior.Weight
		if r.tally[prior.TargetID] <= 0 {
			delete(r.tally, prior.TargetID)
		}
		delete(r.votes, voterID)
	}

	if targetID == "" {
		// Abstention: the prior ballot is withdrawn, nothing recorded.
		return nil
	}

	r.votes[voterID] = Vote{
		VoterID:  voterID,
		TargetID: targetID,
		Weight:   weight,
		CastAt:   time.Now(),
	}
	r.tally[targetID] += weight
	return nil
}

// Complete freezes the round and computes the result: the single
// maximum tally eliminates its target; a tie at the maximum eliminates
// no one; an empty tally yields NoVotes. Completing an already
// completed round returns the retained result.
func (r *VotingRound) Complete() VoteResult {
	if r.completed {
		return *r.result
	}
	r.completed = true

	if len(r.tally) == 0 {
		r.result = &VoteResult{Outcome: VoteNoVotes}
		return *r.result
	}

	maxWeight := 0
	for _, weight := range r.tally {
		if weight > maxWeight {
			maxWeight = weight
		}
	}

	var leaders []string
	for targetID, weight := range r.tally {
		if weight == maxWeight {
			leaders = append(leaders, targetID)
		}
	}

	if len(leaders) == 1 {
		r.result = &VoteResult{
			Outcome:      VoteElimination,
			EliminatedID: leaders[0],
			VoteCount:    maxWeight,
		}
	} else {
		r.result = &VoteResult{
			Outcome:   VoteTie,
			TiedIDs:   leaders,
			VoteCount: maxWeight,
		}
	}
	return *r.result
}

// Cancel closes the round without electing anyone
func (r *VotingRound) Cancel() {
	if r.completed {
		return
	}
	r.completed = true
	r.result = &VoteResult{Outcome: VoteCancelled}
}

// Completed reports whether the round is frozen
func (r *VotingRound) Completed() bool {
	return r.completed
}

// Result returns the retained result of a completed round
func (r *VotingRound) Result() (VoteResult, bool) {
	if r.result == nil {
		return VoteResult{}, false
	}
	return *r.result, true
}

// Tally returns a copy of the current target -> weight-sum map
func (r *VotingRound) Tally() map[string]int {
	tally := make(map[string]int, len(r.tally))
	for targetID, weight := range r.tally {
		tally[targetID] = weight
	}
	return tally
}

// VoteOf returns the voter's current ballot, if any
func (r *VotingRound) VoteOf(voterID string) (Vote, bool) {
	v, ok := r.votes[voterID]
	return v, ok
}

// VotesCast returns the number of recorded ballots
func (r *VotingRound) VotesCast() int {
	return len(r.votes)
}

// EligibleVoterCount returns the number of participants allowed to vote
func (r *VotingRound) EligibleVoterCount() int {
	return len(r.eligibleVoters)
}

// Remaining returns the time left before the deadline
func (r *VotingRound) Remaining() time.Duration {
	if r.Deadline.IsZero() {
		return 0
	}
	remaining := time.Until(r.Deadline)
	if remaining < 0 {
		return 0
	}
	return remaining
}
