package domain

import "testing"

func rosterWithRoles(roles map[string]Role) Roster {
	roster := make(Roster, 0, len(roles))
	for id, role := range roles {
		p := NewParticipant(id, "u-"+id, "Name "+id)
		p.Role = role
		roster = append(roster, p)
	}
	return roster
}

func outcomeOfKind(outcomes []NightOutcome, kind NightOutcomeKind) (NightOutcome, bool) {
	for _, o := range outcomes {
		if o.Kind == kind {
			return o, true
		}
	}
	return NightOutcome{}, false
}

func TestResolveNightKillSucceeds(t *testing.T) {
	roster := rosterWithRoles(map[string]Role{
		"mafia": RoleMafia, "victim": RoleCitizen, "bystander": RoleCitizen,
	})

	outcomes := ResolveNight([]Action{
		NewAction("mafia", ActionKill, "victim", nil),
	}, roster, 1)

	kill, ok := outcomeOfKind(outcomes, OutcomeKillSuccess)
	if !ok {
		t.Fatalf("expected a kill_success outcome, got %v", outcomes)
	}
	if kill.TargetID != "victim" {
		t.Errorf("kill target = %s, want victim", kill.TargetID)
	}

	victim, _ := roster.Find("victim")
	if victim.Alive {
		t.Error("victim should be dead")
	}
	if victim.DeathCause != DeathMafiaKill {
		t.Errorf("death cause = %s, want %s", victim.DeathCause, DeathMafiaKill)
	}
	if victim.KilledBy != "mafia" {
		t.Errorf("killed by = %s, want mafia", victim.KilledBy)
	}
}

func TestResolveNightHealBlocksKill(t *testing.T) {
	roster := rosterWithRoles(map[string]Role{
		"mafia": RoleMafia, "doctor": RoleDoctor, "victim": RoleCitizen,
	})

	outcomes := ResolveNight([]Action{
		NewAction("mafia", ActionKill, "victim", nil),
		NewAction("doctor", ActionHeal, "victim", nil),
	}, roster, 1)

	if _, ok := outcomeOfKind(outcomes, OutcomeKillBlocked); !ok {
		t.Fatalf("expected a kill_blocked outcome, got %v", outcomes)
	}
	if _, ok := outcomeOfKind(outcomes, OutcomeKillSuccess); ok {
		t.Error("blocked kill must not also succeed")
	}

	victim, _ := roster.Find("victim")
	if !victim.Alive {
		t.Error("healed victim should survive")
	}
}

func TestResolveNightHealBlocksBothKillKinds(t *testing.T) {
	roster := rosterWithRoles(map[string]Role{
		"mafia": RoleMafia, "doctor": RoleDoctor, "vigilante": RoleVigilante, "victim": RoleCitizen,
	})

	outcomes := ResolveNight([]Action{
		NewAction("mafia", ActionKill, "victim", nil),
		NewAction("vigilante", ActionVigilanteKill, "victim", nil),
		NewAction("doctor", ActionHeal, "victim", nil),
	}, roster, 2)

	if _, ok := outcomeOfKind(outcomes, OutcomeKillBlocked); !ok {
		t.Error("expected mafia kill to be blocked")
	}
	if _, ok := outcomeOfKind(outcomes, OutcomeVigilanteKillBlocked); !ok {
		t.Error("expected vigilante kill to be blocked")
	}

	victim, _ := roster.Find("victim")
	if !victim.Alive {
		t.Error("victim protected by the same heal should survive both kills")
	}
}

func TestResolveNightSameTargetDiesOnce(t *testing.T) {
	roster := rosterWithRoles(map[string]Role{
		"mafia": RoleMafia, "vigilante": RoleVigilante, "victim": RoleCitizen,
	})

	outcomes := ResolveNight([]Action{
		NewAction("mafia", ActionKill, "victim", nil),
		NewAction("vigilante", ActionVigilanteKill, "victim", nil),
	}, roster, 1)

	if _, ok := outcomeOfKind(outcomes, OutcomeKillSuccess); !ok {
		t.Error("expected the mafia kill to land")
	}
	if _, ok := outcomeOfKind(outcomes, OutcomeVigilanteKillSuccess); ok {
		t.Error("an already dead target must not produce a second death")
	}

	victim, _ := roster.Find("victim")
	if victim.DeathCause != DeathMafiaKill {
		t.Errorf("death cause = %s, want the first kill's cause", victim.DeathCause)
	}
}

func TestResolveNightTwoMafiaSameTarget(t *testing.T) {
	roster := rosterWithRoles(map[string]Role{
		"mafiaA": RoleMafia, "mafiaB": RoleMafia, "victim": RoleCitizen,
	})

	outcomes := ResolveNight([]Action{
		NewAction("mafiaA", ActionKill, "victim", nil),
		NewAction("mafiaB", ActionKill, "victim", nil),
	}, roster, 1)

	successes := 0
	for _, o := range outcomes {
		if o.Kind == OutcomeKillSuccess {
			successes++
		}
	}
	if successes != 1 {
		t.Errorf("kill_success outcomes = %d, want exactly 1", successes)
	}
}

func TestResolveNightTwoMafiaDifferentTargets(t *testing.T) {
	roster := rosterWithRoles(map[string]Role{
		"mafiaA": RoleMafia, "mafiaB": RoleMafia,
		"v1": RoleCitizen, "v2": RoleCitizen,
	})

	ResolveNight([]Action{
		NewAction("mafiaA", ActionKill, "v1", nil),
		NewAction("mafiaB", ActionKill, "v2", nil),
	}, roster, 1)

	for _, id := range []string{"v1", "v2"} {
		if p, _ := roster.Find(id); p.Alive {
			t.Errorf("target %s should die; each kill resolves independently", id)
		}
	}
}

func TestResolveNightInvestigation(t *testing.T) {
	roster := rosterWithRoles(map[string]Role{
		"detective": RoleDetective, "suspect": RoleMafia, "innocent": RoleCitizen,
	})

	cases := []struct {
		name     string
		targetID string
		wantEvil bool
	}{
		{name: "mafia target", targetID: "suspect", wantEvil: true},
		{name: "citizen target", targetID: "innocent", wantEvil: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			outcomes := ResolveNight([]Action{
				NewAction("detective", ActionInvestigate, tc.targetID, nil),
			}, roster, 1)

			inv, ok := outcomeOfKind(outcomes, OutcomeInvestigate)
			if !ok {
				t.Fatalf("expected an investigate outcome, got %v", outcomes)
			}
			if inv.IsMafia != tc.wantEvil {
				t.Errorf("isMafia = %v, want %v", inv.IsMafia, tc.wantEvil)
			}
		})
	}
}

func TestResolveNightEmptyLedger(t *testing.T) {
	roster := rosterWithRoles(map[string]Role{"a": RoleMafia, "b": RoleCitizen})

	if outcomes := ResolveNight(nil, roster, 1); len(outcomes) != 0 {
		t.Errorf("expected no outcomes, got %v", outcomes)
	}
	for _, p := range roster {
		if !p.Alive {
			t.Errorf("participant %s should still be alive", p.ID)
		}
	}
}
