package domain

// ActionLedger collects submitted intents for the current phase: one
// pending action per actor, last write wins. It holds no lock of its
// own; the owning session serializes access.
type ActionLedger struct {
	phase   Phase
	actions map[string]Action // actor id -> pending action
}

// NewActionLedger creates an empty ledger for the given phase
func NewActionLedger(phase Phase) *ActionLedger {
	return &ActionLedger{
		phase:   phase,
		actions: make(map[string]Action),
	}
}

// Submit validates an intent against the current phase and the actor's
// role, then records it, replacing any prior action by the same actor.
// On failure the ledger is left untouched.
func (l *ActionLedger) Submit(roster Roster, actorID string, actionType ActionType, targetID string, details map[string]string) error {
	actor, ok := roster.Find(actorID)
	if !ok || !actor.Alive {
		return ErrActorNotEligible
	}

	switch l.phase {
	case PhaseDay:
		if !actionType.IsDayAction() {
			return ErrActionNotAllowed
		}

	case PhaseVoting, PhaseTrial:
		// Votes bypass the ledger; they go through the voting table.
		return ErrActionNotAllowed

	case PhaseNight:
		if !actionType.IsNightAction() {
			return ErrActionNotAllowed
		}
		if actor.Role.NightAction() != actionType {
			return ErrAbilityNotGranted
		}
		if err := validateNightTarget(roster, actor, actionType, targetID); err != nil {
			return err
		}

	default:
		return ErrActionNotAllowed
	}

	if _, replaced := l.actions[actorID]; !replaced {
		actor.ActionsTaken++
	}
	l.actions[actorID] = NewAction(actorID, actionType, targetID, details)
	return nil
}

// validateNightTarget enforces the night targeting rules: the target
// must exist and be alive, self-targeting is forbidden, and mafia may
// not target fellow mafia.
func validateNightTarget(roster Roster, actor *Participant, actionType ActionType, targetID string) error {
	if targetID == "" {
		return ErrTargetNotFound
	}
	target, ok := roster.Find(targetID)
	if !ok {
		return ErrTargetNotFound
	}
	if !target.Alive {
		return ErrTargetDead
	}
	if targetID == actor.ID {
		return ErrCannotTargetSelf
	}
	if actionType == ActionKill && target.Role.IsMafia() {
		return ErrMafiaTargetsMafia
	}
	return nil
}

// Phase returns the phase this ledger collects for
func (l *ActionLedger) Phase() Phase {
	return l.phase
}

// Actions returns the collected actions in no particular order
func (l *ActionLedger) Actions() []Action {
	actions := make([]Action, 0, len(l.actions))
	for _, a := range l.actions {
		actions = append(actions, a)
	}
	return actions
}

// ActionOf returns the pending action of an actor, if any
func (l *ActionLedger) ActionOf(actorID string) (Action, bool) {
	a, ok := l.actions[actorID]
	return a, ok
}

// Len returns the number of pending actions
func (l *ActionLedger) Len() int {
	return len(l.actions)
}
