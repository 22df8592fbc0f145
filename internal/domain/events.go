package domain

import "time"

// EventType represents the type of session event
type EventType string

const (
	EventPhaseChanged  EventType = "PHASE_CHANGED"
	EventVotingStarted EventType = "VOTING_STARTED"
	EventVotingEnded   EventType = "VOTING_ENDED"
	EventNightResolved EventType = "NIGHT_RESOLVED"
	EventPlayerDied    EventType = "PLAYER_DIED"
	EventGameEnded     EventType = "GAME_ENDED"
)

// Event is one entry of a session's event stream. The payload is one
// of the typed payload structs below, matching Type.
type Event struct {
	Type      EventType `json:"type"`
	SessionID string    `json:"sessionId"`
	Round     int       `json:"round"`
	Payload   any       `json:"payload,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewEvent creates a session event stamped with the current time
func NewEvent(eventType EventType, sessionID string, round int, payload any) Event {
	return Event{
		Type:      eventType,
		SessionID: sessionID,
		Round:     round,
		Payload:   payload,
		Timestamp: time.Now(),
	}
}

// PhaseChangedPayload is emitted on every phase transition
type PhaseChangedPayload struct {
	Phase    Phase         `json:"phase"`
	Duration time.Duration `json:"duration"`
	Deadline time.Time     `json:"deadline,omitempty"`
}

// VotingStartedPayload is emitted when a voting round opens
type VotingStartedPayload struct {
	Type           VoteType  `json:"type"`
	EligibleVoters []string  `json:"eligibleVoters"`
	Targets        []string  `json:"targets"`
	Deadline       time.Time `json:"deadline,omitempty"`
}

// VotingEndedPayload is emitted when a voting round completes
type VotingEndedPayload struct {
	Type   VoteType   `json:"type"`
	Result VoteResult `json:"result"`
}

// NightResolvedPayload carries the full outcome list of a night
type NightResolvedPayload struct {
	Outcomes []NightOutcome `json:"outcomes"`
}

// PlayerDiedPayload is emitted once per death, after the roster mutation
type PlayerDiedPayload struct {
	ParticipantID string     `json:"participantId"`
	Name          string     `json:"name"`
	Cause         DeathCause `json:"cause"`
	KilledBy      string     `json:"killedBy,omitempty"`
}

// GameEndedPayload is emitted exactly once, when the outcome is set
type GameEndedPayload struct {
	Outcome Outcome `json:"outcome"`
	Reason  string  `json:"reason,omitempty"`
}
