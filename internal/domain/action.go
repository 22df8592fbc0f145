package domain

import "time"

// ActionType represents the type of a submitted player intent
type ActionType string

const (
	ActionSpeak         ActionType = "speak"
	ActionAccuse        ActionType = "accuse"
	ActionDefend        ActionType = "defend"
	ActionVote          ActionType = "vote"
	ActionKill          ActionType = "kill"
	ActionHeal          ActionType = "heal"
	ActionInvestigate   ActionType = "investigate"
	ActionVigilanteKill ActionType = "vigilante_kill"
)

// IsNightAction returns true for role-restricted night abilities
func (t ActionType) IsNightAction() bool {
	switch t {
	case ActionKill, ActionHeal, ActionInvestigate, ActionVigilanteKill:
		return true
	}
	return false
}

// IsDayAction returns true for the open discussion actions
func (t ActionType) IsDayAction() bool {
	switch t {
	case ActionSpeak, ActionAccuse, ActionDefend:
		return true
	}
	return false
}

// Action represents a participant's submitted intent for the current
// phase. A later submission from the same actor supersedes it.
type Action struct {
	ActorID     string            `json:"actorId"`
	Type        ActionType        `json:"type"`
	TargetID    string            `json:"targetId,omitempty"`
	Details     map[string]string `json:"details,omitempty"`
	SubmittedAt time.Time         `json:"submittedAt"`
}

// NewAction creates an action stamped with the current time
func NewAction(actorID string, actionType ActionType, targetID string, details map[string]string) Action {
	return Action{
		ActorID:     actorID,
		Type:        actionType,
		TargetID:    targetID,
		Details:     details,
		SubmittedAt: time.Now(),
	}
}
