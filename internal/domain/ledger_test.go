package domain

import (
	"errors"
	"testing"
)

func TestSubmitDayActions(t *testing.T) {
	roster := rosterWithRoles(map[string]Role{"a": RoleCitizen, "b": RoleMafia})
	ledger := NewActionLedger(PhaseDay)

	if err := ledger.Submit(roster, "a", ActionAccuse, "b", nil); err != nil {
		t.Fatalf("day accusation rejected: %v", err)
	}
	if err := ledger.Submit(roster, "b", ActionKill, "a", nil); !errors.Is(err, ErrActionNotAllowed) {
		t.Errorf("night action during day error = %v, want ErrActionNotAllowed", err)
	}
}

func TestSubmitRejectsDeadOrUnknownActor(t *testing.T) {
	roster := rosterWithRoles(map[string]Role{"a": RoleCitizen, "b": RoleCitizen})
	dead, _ := roster.Find("b")
	dead.Kill(DeathLynch, "", 1)

	ledger := NewActionLedger(PhaseDay)

	if err := ledger.Submit(roster, "b", ActionSpeak, "", nil); !errors.Is(err, ErrActorNotEligible) {
		t.Errorf("dead actor error = %v, want ErrActorNotEligible", err)
	}
	if err := ledger.Submit(roster, "ghost", ActionSpeak, "", nil); !errors.Is(err, ErrActorNotEligible) {
		t.Errorf("unknown actor error = %v, want ErrActorNotEligible", err)
	}
}

func TestSubmitVotingPhaseRejectsLedgerActions(t *testing.T) {
	roster := rosterWithRoles(map[string]Role{"a": RoleCitizen})
	ledger := NewActionLedger(PhaseVoting)

	if err := ledger.Submit(roster, "a", ActionVote, "a", nil); !errors.Is(err, ErrActionNotAllowed) {
		t.Errorf("vote through ledger error = %v, want ErrActionNotAllowed", err)
	}
}

func TestSubmitNightValidation(t *testing.T) {
	roster := rosterWithRoles(map[string]Role{
		"godfather": RoleMafia,
		"wiseguy":   RoleMafia,
		"doctor":    RoleDoctor,
		"citizen":   RoleCitizen,
		"corpse":    RoleCitizen,
	})
	corpse, _ := roster.Find("corpse")
	corpse.Kill(DeathMafiaKill, "godfather", 1)

	cases := []struct {
		name       string
		actorID    string
		actionType ActionType
		targetID   string
		wantErr    error
	}{
		{name: "mafia kill", actorID: "godfather", actionType: ActionKill, targetID: "citizen"},
		{name: "doctor heal", actorID: "doctor", actionType: ActionHeal, targetID: "citizen"},
		{name: "role lacks ability", actorID: "citizen", actionType: ActionKill, targetID: "godfather", wantErr: ErrAbilityNotGranted},
		{name: "kill fellow mafia", actorID: "godfather", actionType: ActionKill, targetID: "wiseguy", wantErr: ErrMafiaTargetsMafia},
		{name: "self target", actorID: "doctor", actionType: ActionHeal, targetID: "doctor", wantErr: ErrCannotTargetSelf},
		{name: "dead target", actorID: "godfather", actionType: ActionKill, targetID: "corpse", wantErr: ErrTargetDead},
		{name: "missing target", actorID: "godfather", actionType: ActionKill, targetID: "", wantErr: ErrTargetNotFound},
		{name: "day action at night", actorID: "citizen", actionType: ActionSpeak, targetID: "", wantErr: ErrActionNotAllowed},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ledger := NewActionLedger(PhaseNight)
			err := ledger.Submit(roster, tc.actorID, tc.actionType, tc.targetID, nil)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("error = %v, want %v", err, tc.wantErr)
			}
			if tc.wantErr != nil && ledger.Len() != 0 {
				t.Error("failed submission must leave the ledger untouched")
			}
		})
	}
}

func TestSubmitLastWriteWins(t *testing.T) {
	roster := rosterWithRoles(map[string]Role{
		"godfather": RoleMafia, "a": RoleCitizen, "b": RoleCitizen,
	})
	ledger := NewActionLedger(PhaseNight)

	if err := ledger.Submit(roster, "godfather", ActionKill, "a", nil); err != nil {
		t.Fatalf("first submission: %v", err)
	}
	if err := ledger.Submit(roster, "godfather", ActionKill, "b", nil); err != nil {
		t.Fatalf("second submission: %v", err)
	}

	if ledger.Len() != 1 {
		t.Errorf("ledger length = %d, want 1", ledger.Len())
	}
	action, ok := ledger.ActionOf("godfather")
	if !ok || action.TargetID != "b" {
		t.Errorf("pending action target = %v, want b", action.TargetID)
	}

	godfather, _ := roster.Find("godfather")
	if godfather.ActionsTaken != 1 {
		t.Errorf("ActionsTaken = %d, want 1 for a replaced action", godfather.ActionsTaken)
	}
}
