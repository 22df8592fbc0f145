package domain

// Team represents the side a role wins with
type Team string

const (
	TeamMafia    Team = "mafia"
	TeamCitizens Team = "citizens"
	TeamNeutral  Team = "neutral"
)

// Role represents a participant's role in the game
type Role string

const (
	RoleCitizen   Role = "citizen"
	RoleMafia     Role = "mafia"
	RoleDoctor    Role = "doctor"
	RoleDetective Role = "detective"
	RoleVigilante Role = "vigilante"
	RoleMayor     Role = "mayor"
	RoleJester    Role = "jester"
)

// String returns the string representation of the role
func (r Role) String() string {
	return string(r)
}

// RoleInfo describes a role's static configuration
type RoleInfo struct {
	Name      string       `json:"name"`
	Team      Team         `json:"team"`
	Abilities []ActionType `json:"abilities"`
}

// roleCatalog is static configuration data, never mutated per session
var roleCatalog = map[Role]RoleInfo{
	RoleCitizen: {
		Name:      "Citizen",
		Team:      TeamCitizens,
		Abilities: []ActionType{ActionVote},
	},
	RoleMafia: {
		Name:      "Mafia",
		Team:      TeamMafia,
		Abilities: []ActionType{ActionVote, ActionKill},
	},
	RoleDoctor: {
		Name:      "Doctor",
		Team:      TeamCitizens,
		Abilities: []ActionType{ActionVote, ActionHeal},
	},
	RoleDetective: {
		Name:      "Detective",
		Team:      TeamCitizens,
		Abilities: []ActionType{ActionVote, ActionInvestigate},
	},
	RoleVigilante: {
		Name:      "Vigilante",
		Team:      TeamCitizens,
		Abilities: []ActionType{ActionVote, ActionVigilanteKill},
	},
	RoleMayor: {
		Name:      "Mayor",
		Team:      TeamCitizens,
		Abilities: []ActionType{ActionVote},
	},
	RoleJester: {
		Name:      "Jester",
		Team:      TeamNeutral,
		Abilities: []ActionType{ActionVote},
	},
}

// ParseRole maps a wire-format role name to a catalog role
func ParseRole(s string) (Role, bool) {
	role := Role(s)
	_, ok := roleCatalog[role]
	return role, ok
}

// AllRoles lists every role in catalog order
func AllRoles() []Role {
	return []Role{
		RoleCitizen, RoleMafia, RoleDoctor, RoleDetective,
		RoleVigilante, RoleMayor, RoleJester,
	}
}

// Info returns the static configuration for the role
func (r Role) Info() RoleInfo {
	return roleCatalog[r]
}

// Team returns the team the role belongs to
func (r Role) Team() Team {
	return roleCatalog[r].Team
}

// IsMafia returns true for the Mafia role
func (r Role) IsMafia() bool {
	return r == RoleMafia
}

// VoteWeight returns the weight of this role's vote. The Mayor's vote
// counts double; this is the only multiplier and weights never compound.
func (r Role) VoteWeight() int {
	if r == RoleMayor {
		return 2
	}
	return 1
}

// NightAction returns the single night action tied to the role's
// abilities, or "" if the role acts only by day.
func (r Role) NightAction() ActionType {
	for _, a := range roleCatalog[r].Abilities {
		if a.IsNightAction() {
			return a
		}
	}
	return ""
}
