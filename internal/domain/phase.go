package domain

import "time"

// Phase represents the current phase of a game session
type Phase string

const (
	PhaseDay      Phase = "DAY"      // Open discussion
	PhaseVoting   Phase = "VOTING"   // Lynch vote
	PhaseNight    Phase = "NIGHT"    // Role-restricted night actions
	PhaseTrial    Phase = "TRIAL"    // Optional trial of the accused
	PhaseFinished Phase = "FINISHED" // Terminal
)

// String returns the string representation of the phase
func (p Phase) String() string {
	return string(p)
}

// Default phase durations
const (
	DefaultDayDuration    = 300 * time.Second
	DefaultVotingDuration = 60 * time.Second
	DefaultNightDuration  = 120 * time.Second
	DefaultTrialDuration  = 180 * time.Second
)

// DefaultDuration returns the default timer length for the phase.
// Finished carries no timer.
func (p Phase) DefaultDuration() time.Duration {
	switch p {
	case PhaseDay:
		return DefaultDayDuration
	case PhaseVoting:
		return DefaultVotingDuration
	case PhaseNight:
		return DefaultNightDuration
	case PhaseTrial:
		return DefaultTrialDuration
	}
	return 0
}

// CanTransitionTo checks if a transition from the current phase to the
// target phase is valid
func (p Phase) CanTransitionTo(target Phase) bool {
	validTransitions := map[Phase][]Phase{
		PhaseDay:    {PhaseVoting, PhaseFinished},
		PhaseVoting: {PhaseNight, PhaseTrial, PhaseFinished},
		PhaseTrial:  {PhaseNight, PhaseFinished},
		PhaseNight:  {PhaseDay, PhaseFinished},
	}

	for _, next := range validTransitions[p] {
		if next == target {
			return true
		}
	}
	return false
}

// PhaseWindow is the single active timed state of a session. Exactly
// one window is active at a time; it is invalidated the instant a new
// one starts or the session stops.
type PhaseWindow struct {
	Phase    Phase         `json:"phase"`
	StartAt  time.Time     `json:"startAt"`
	Duration time.Duration `json:"duration"`
	Deadline time.Time     `json:"deadline"`
}

// NewPhaseWindow opens a window starting now. A zero duration means no
// deadline: the phase never auto-advances.
func NewPhaseWindow(phase Phase, duration time.Duration) PhaseWindow {
	now := time.Now()
	w := PhaseWindow{
		Phase:    phase,
		StartAt:  now,
		Duration: duration,
	}
	if duration > 0 {
		w.Deadline = now.Add(duration)
	}
	return w
}

// Remaining returns the time left before the deadline, zero if the
// window has no deadline or has expired
func (w PhaseWindow) Remaining() time.Duration {
	if w.Deadline.IsZero() {
		return 0
	}
	remaining := time.Until(w.Deadline)
	if remaining < 0 {
		return 0
	}
	return remaining
}
