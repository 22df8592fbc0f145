package domain

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"
)

func testRoster(n int) Roster {
	roster := make(Roster, 0, n)
	for i := 0; i < n; i++ {
		roster = append(roster, NewParticipant(
			fmt.Sprintf("p%d", i),
			fmt.Sprintf("u%d", i),
			fmt.Sprintf("Player %d", i),
		))
	}
	return roster
}

func TestDistributionForAllSupportedCounts(t *testing.T) {
	for n := MinPlayers; n <= MaxPlayers; n++ {
		t.Run(fmt.Sprintf("%d players", n), func(t *testing.T) {
			dist, err := DistributionFor(n)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got := dist.Total(); got != n {
				t.Errorf("total = %d, want %d", got, n)
			}

			mafia := dist.MafiaCount()
			if mafia < 1 {
				t.Error("expected at least one mafia")
			}
			if mafia >= n-mafia {
				t.Errorf("mafia (%d) must be outnumbered by citizens (%d)", mafia, n-mafia)
			}

			ratio := float64(mafia) / float64(n)
			if ratio < 0.2 || ratio > 0.4 {
				t.Errorf("mafia ratio %.2f outside [0.2, 0.4]", ratio)
			}
		})
	}
}

func TestDistributionForOutOfRange(t *testing.T) {
	for _, n := range []int{0, 1, 3, 21, 100} {
		if _, err := DistributionFor(n); !errors.Is(err, ErrPlayerCountRange) {
			t.Errorf("DistributionFor(%d) error = %v, want ErrPlayerCountRange", n, err)
		}
	}
}

func TestAssignRolesMatchesDistribution(t *testing.T) {
	roster := testRoster(8)
	rng := rand.New(rand.NewSource(42))

	dist, err := AssignRoles(roster, nil, rng)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	counts := make(map[Role]int)
	for _, p := range roster {
		counts[p.Role]++
	}
	for role, want := range dist {
		if counts[role] != want {
			t.Errorf("role %s assigned %d times, want %d", role, counts[role], want)
		}
	}
}

func TestAssignRolesDeterministicSeed(t *testing.T) {
	first := testRoster(10)
	second := testRoster(10)

	if _, err := AssignRoles(first, nil, rand.New(rand.NewSource(7))); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := AssignRoles(second, nil, rand.New(rand.NewSource(7))); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := range first {
		if first[i].Role != second[i].Role {
			t.Fatalf("seat %d differs: %s vs %s", i, first[i].Role, second[i].Role)
		}
	}
}

func TestAssignRolesRejectsBadDistribution(t *testing.T) {
	cases := []struct {
		name    string
		roster  Roster
		dist    Distribution
		wantErr error
	}{
		{
			name:    "total does not match roster",
			roster:  testRoster(6),
			dist:    Distribution{RoleMafia: 1, RoleCitizen: 4},
			wantErr: ErrInvalidDistribution,
		},
		{
			name:    "no mafia",
			roster:  testRoster(5),
			dist:    Distribution{RoleCitizen: 5},
			wantErr: ErrInvalidDistribution,
		},
		{
			name:    "mafia outnumber citizens",
			roster:  testRoster(6),
			dist:    Distribution{RoleMafia: 3, RoleCitizen: 3},
			wantErr: ErrInvalidDistribution,
		},
		{
			name:    "too few players",
			roster:  testRoster(3),
			wantErr: ErrPlayerCountRange,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := AssignRoles(tc.roster, tc.dist, rand.New(rand.NewSource(1)))
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("error = %v, want %v", err, tc.wantErr)
			}
		})
	}
}
