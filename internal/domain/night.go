package domain

// NightOutcomeKind identifies one resolved night result
type NightOutcomeKind string

const (
	OutcomeKillSuccess          NightOutcomeKind = "kill_success"
	OutcomeKillBlocked          NightOutcomeKind = "kill_blocked"
	OutcomeVigilanteKillSuccess NightOutcomeKind = "vigilante_kill_success"
	OutcomeVigilanteKillBlocked NightOutcomeKind = "vigilante_kill_blocked"
	OutcomeHeal                 NightOutcomeKind = "heal"
	OutcomeInvestigate          NightOutcomeKind = "investigate"
)

// NightOutcome is one entry of the resolved night: a death, a block, a
// heal, or an investigation result.
type NightOutcome struct {
	Kind     NightOutcomeKind `json:"kind"`
	ActorID  string           `json:"actorId"`
	TargetID string           `json:"targetId"`
	IsMafia  bool             `json:"isMafia,omitempty"` // investigation result
}

// ResolveNight turns the night's collected actions into an outcome
// list and applies deaths to the roster. The resolution order is fixed:
// heals build the protected set, then mafia kills resolve against it,
// then vigilante kills resolve against the same set, then heal and
// investigation outcomes are emitted. A heal therefore blocks both a
// mafia kill and a vigilante kill against the same target in one night.
// Each death is applied at most once per target.
func ResolveNight(actions []Action, roster Roster, round int) []NightOutcome {
	var kills, heals, investigations, vigilanteKills []Action
	for _, a := range actions {
		switch a.Type {
		case ActionKill:
			kills = append(kills, a)
		case ActionHeal:
			heals = append(heals, a)
		case ActionInvestigate:
			investigations = append(investigations, a)
		case ActionVigilanteKill:
			vigilanteKills = append(vigilanteKills, a)
		}
	}

	protected := make(map[string]bool, len(heals))
	for _, heal := range heals {
		protected[heal.TargetID] = true
	}

	outcomes := make([]NightOutcome, 0, len(actions))

	outcomes = append(outcomes, resolveKills(kills, roster, protected, round,
		DeathMafiaKill, OutcomeKillSuccess, OutcomeKillBlocked)...)

	outcomes = append(outcomes, resolveKills(vigilanteKills, roster, protected, round,
		DeathVigilanteKill, OutcomeVigilanteKillSuccess, OutcomeVigilanteKillBlocked)...)

	for _, heal := range heals {
		outcomes = append(outcomes, NightOutcome{
			Kind:     OutcomeHeal,
			ActorID:  heal.ActorID,
			TargetID: heal.TargetID,
		})
	}

	// Investigations never fail or conflict.
	for _, inv := range investigations {
		target, ok := roster.Find(inv.TargetID)
		if !ok {
			continue
		}
		outcomes = append(outcomes, NightOutcome{
			Kind:     OutcomeInvestigate,
			ActorID:  inv.ActorID,
			TargetID: inv.TargetID,
			IsMafia:  target.Role.IsMafia(),
		})
	}

	return outcomes
}

// resolveKills applies one class of kill actions against the protected
// set. A target that is already dead (for instance killed by an earlier
// action this night) produces no further outcome.
func resolveKills(kills []Action, roster Roster, protected map[string]bool, round int,
	cause DeathCause, success, blocked NightOutcomeKind) []NightOutcome {

	var outcomes []NightOutcome
	for _, kill := range kills {
		target, ok := roster.Find(kill.TargetID)
		if !ok || !target.Alive {
			continue
		}

		if protected[kill.TargetID] {
			outcomes = append(outcomes, NightOutcome{
				Kind:     blocked,
				ActorID:  kill.ActorID,
				TargetID: kill.TargetID,
			})
			continue
		}

		target.Kill(cause, kill.ActorID, round)
		outcomes = append(outcomes, NightOutcome{
			Kind:     success,
			ActorID:  kill.ActorID,
			TargetID: kill.TargetID,
		})
	}
	return outcomes
}
