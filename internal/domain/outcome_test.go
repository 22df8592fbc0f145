package domain

import "testing"

func TestCheckWin(t *testing.T) {
	cases := []struct {
		name      string
		roles     map[string]Role
		dead      []string
		wantEnded bool
		wantCond  WinCondition
	}{
		{
			name:      "game continues",
			roles:     map[string]Role{"m": RoleMafia, "a": RoleCitizen, "b": RoleCitizen, "c": RoleDoctor},
			wantEnded: false,
		},
		{
			name:      "citizens win when mafia eliminated",
			roles:     map[string]Role{"m": RoleMafia, "a": RoleCitizen, "b": RoleCitizen},
			dead:      []string{"m"},
			wantEnded: true,
			wantCond:  CitizensWin,
		},
		{
			name:      "mafia win on parity",
			roles:     map[string]Role{"m": RoleMafia, "a": RoleCitizen, "b": RoleCitizen},
			dead:      []string{"b"},
			wantEnded: true,
			wantCond:  MafiaWin,
		},
		{
			name:      "mafia win when outnumbering",
			roles:     map[string]Role{"m": RoleMafia, "n": RoleMafia, "a": RoleCitizen},
			wantEnded: true,
			wantCond:  MafiaWin,
		},
		{
			name:      "citizens-win check runs first",
			roles:     map[string]Role{"m": RoleMafia, "a": RoleCitizen},
			dead:      []string{"m", "a"},
			wantEnded: true,
			wantCond:  CitizensWin,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			roster := rosterWithRoles(tc.roles)
			for _, id := range tc.dead {
				p, _ := roster.Find(id)
				p.Kill(DeathOther, "", 1)
			}

			outcome, ended := CheckWin(roster)
			if ended != tc.wantEnded {
				t.Fatalf("ended = %v, want %v", ended, tc.wantEnded)
			}
			if ended && outcome.Condition != tc.wantCond {
				t.Errorf("condition = %s, want %s", outcome.Condition, tc.wantCond)
			}
		})
	}
}

func TestKillIsIdempotent(t *testing.T) {
	roster := rosterWithRoles(map[string]Role{"a": RoleCitizen})
	p, _ := roster.Find("a")

	if !p.Kill(DeathLynch, "", 2) {
		t.Fatal("first kill should apply")
	}
	if p.Kill(DeathMafiaKill, "m", 3) {
		t.Error("second kill must be a no-op")
	}
	if p.DeathCause != DeathLynch || p.DeathRound != 2 {
		t.Errorf("death metadata overwritten: cause=%s round=%d", p.DeathCause, p.DeathRound)
	}
}
