package domain

import (
	"math/rand"
	"slices"
)

// Player count bounds for a balanced game
const (
	MinPlayers = 4
	MaxPlayers = 20
)

// Distribution maps each role to the number of participants holding it
type Distribution map[Role]int

// Total returns the number of seats the distribution covers
func (d Distribution) Total() int {
	total := 0
	for _, count := range d {
		total += count
	}
	return total
}

// MafiaCount returns the number of mafia seats
func (d Distribution) MafiaCount() int {
	return d[RoleMafia]
}

// defaultDistributions is the lookup table keyed by player count
var defaultDistributions = map[int]Distribution{
	4:  {RoleMafia: 1, RoleCitizen: 2, RoleDoctor: 1},
	5:  {RoleMafia: 1, RoleCitizen: 3, RoleDoctor: 1},
	6:  {RoleMafia: 2, RoleCitizen: 3, RoleDoctor: 1},
	7:  {RoleMafia: 2, RoleCitizen: 3, RoleDoctor: 1, RoleDetective: 1},
	8:  {RoleMafia: 2, RoleCitizen: 4, RoleDoctor: 1, RoleDetective: 1},
	9:  {RoleMafia: 2, RoleCitizen: 5, RoleDoctor: 1, RoleDetective: 1},
	10: {RoleMafia: 3, RoleCitizen: 5, RoleDoctor: 1, RoleDetective: 1},
	11: {RoleMafia: 3, RoleCitizen: 5, RoleDoctor: 1, RoleDetective: 1, RoleVigilante: 1},
	12: {RoleMafia: 3, RoleCitizen: 6, RoleDoctor: 1, RoleDetective: 1, RoleVigilante: 1},
	13: {RoleMafia: 3, RoleCitizen: 7, RoleDoctor: 1, RoleDetective: 1, RoleVigilante: 1},
	14: {RoleMafia: 4, RoleCitizen: 7, RoleDoctor: 1, RoleDetective: 1, RoleVigilante: 1},
	15: {RoleMafia: 4, RoleCitizen: 8, RoleDoctor: 1, RoleDetective: 1, RoleVigilante: 1},
	16: {RoleMafia: 4, RoleCitizen: 8, RoleDoctor: 1, RoleDetective: 1, RoleVigilante: 1, RoleMayor: 1},
	17: {RoleMafia: 4, RoleCitizen: 9, RoleDoctor: 1, RoleDetective: 1, RoleVigilante: 1, RoleMayor: 1},
	18: {RoleMafia: 5, RoleCitizen: 9, RoleDoctor: 1, RoleDetective: 1, RoleVigilante: 1, RoleMayor: 1},
	19: {RoleMafia: 5, RoleCitizen: 10, RoleDoctor: 1, RoleDetective: 1, RoleVigilante: 1, RoleMayor: 1},
	20: {RoleMafia: 5, RoleCitizen: 10, RoleDoctor: 1, RoleDetective: 1, RoleVigilante: 1, RoleMayor: 1, RoleJester: 1},
}

// Validate checks a distribution against the balance rules: total in
// [MinPlayers, MaxPlayers], at least one mafia, fewer mafia than
// citizens, and a mafia ratio between 20% and 40%.
func (d Distribution) Validate() error {
	total := d.Total()
	if total < MinPlayers || total > MaxPlayers {
		return ErrPlayerCountRange
	}

	mafia := d.MafiaCount()
	if mafia < 1 {
		return ErrInvalidDistribution
	}
	if mafia >= total-mafia {
		return ErrInvalidDistribution
	}

	ratio := float64(mafia) / float64(total)
	if ratio < 0.2 || ratio > 0.4 {
		return ErrInvalidDistribution
	}

	return nil
}

// DistributionFor selects the distribution for the given player count:
// from the lookup table if present, otherwise generated algorithmically.
func DistributionFor(count int) (Distribution, error) {
	if count < MinPlayers || count > MaxPlayers {
		return nil, ErrPlayerCountRange
	}

	if dist, ok := defaultDistributions[count]; ok {
		return dist, nil
	}

	dist := generateDistribution(count)
	if err := dist.Validate(); err != nil {
		return nil, ErrUnbalanceableCount
	}
	return dist, nil
}

// generateDistribution builds a distribution for counts outside the
// lookup table. Mafia lands between a quarter and a third of seats;
// special citizen roles are added in priority order while enough
// non-mafia slots remain.
func generateDistribution(count int) Distribution {
	mafia := max(1, min(count/3, count/4+1))
	remaining := count - mafia

	dist := Distribution{RoleMafia: mafia}

	if remaining > 2 {
		dist[RoleDoctor] = 1
		remaining--
	}
	if remaining > 3 {
		dist[RoleDetective] = 1
		remaining--
	}
	if remaining > 5 {
		dist[RoleVigilante] = 1
		remaining--
	}
	if remaining > 7 {
		dist[RoleMayor] = 1
		remaining--
	}

	dist[RoleCitizen] = remaining
	return dist
}

// AssignRoles assigns roles to every participant in the roster. If dist
// is nil a balanced distribution is selected for the roster size. The
// rng makes the shuffle deterministic under a fixed seed.
func AssignRoles(roster Roster, dist Distribution, rng *rand.Rand) (Distribution, error) {
	count := len(roster)

	if dist == nil {
		selected, err := DistributionFor(count)
		if err != nil {
			return nil, err
		}
		dist = selected
	} else {
		if dist.Total() != count {
			return nil, ErrInvalidDistribution
		}
		if err := dist.Validate(); err != nil {
			return nil, err
		}
	}

	roles := make([]Role, 0, count)
	for role, n := range dist {
		for i := 0; i < n; i++ {
			roles = append(roles, role)
		}
	}
	// Map iteration order is random; sort so the shuffle alone decides
	// the assignment for a fixed seed.
	slices.Sort(roles)

	rng.Shuffle(len(roles), func(i, j int) {
		roles[i], roles[j] = roles[j], roles[i]
	})

	for i, p := range roster {
		p.Role = roles[i]
	}

	return dist, nil
}
