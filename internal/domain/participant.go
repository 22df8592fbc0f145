package domain

import "time"

// DeathCause records how a participant died
type DeathCause string

const (
	DeathMafiaKill     DeathCause = "mafia_kill"
	DeathLynch         DeathCause = "lynch"
	DeathVigilanteKill DeathCause = "vigilante_kill"
	DeathOther         DeathCause = "other"
)

// Participant represents one seat in a game session. The role is
// immutable once assigned; the alive flag is mutated only by night
// resolution and lynch outcomes.
type Participant struct {
	ID     string `json:"id"`
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Role   Role   `json:"role,omitempty"`
	Alive  bool   `json:"alive"`

	DeathCause DeathCause `json:"deathCause,omitempty"`
	DeathRound int        `json:"deathRound,omitempty"`
	KilledBy   string     `json:"killedBy,omitempty"` // opaque participant id, never a pointer
	DiedAt     time.Time  `json:"diedAt,omitempty"`

	VotesCast     int `json:"votesCast"`
	VotesReceived int `json:"votesReceived"`
	ActionsTaken  int `json:"actionsTaken"`

	JoinedAt time.Time `json:"joinedAt"`
}

// NewParticipant creates a living, role-less participant
func NewParticipant(id, userID, name string) *Participant {
	return &Participant{
		ID:       id,
		UserID:   userID,
		Name:     name,
		Alive:    true,
		JoinedAt: time.Now(),
	}
}

// Kill marks the participant dead. It is idempotent: a participant who
// is already dead is left untouched and the call reports false.
func (p *Participant) Kill(cause DeathCause, killerID string, round int) bool {
	if !p.Alive {
		return false
	}
	p.Alive = false
	p.DeathCause = cause
	p.KilledBy = killerID
	p.DeathRound = round
	p.DiedAt = time.Now()
	return true
}

// ParticipantView is a safe projection of participant state (role is
// only included for the participant's own view)
type ParticipantView struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Alive         bool   `json:"alive"`
	Role          Role   `json:"role,omitempty"`
	VotesCast     int    `json:"votesCast"`
	VotesReceived int    `json:"votesReceived"`
	ActionsTaken  int    `json:"actionsTaken"`
}

// View converts a Participant to its projection
func (p *Participant) View(includeRole bool) ParticipantView {
	v := ParticipantView{
		ID:            p.ID,
		Name:          p.Name,
		Alive:         p.Alive,
		VotesCast:     p.VotesCast,
		VotesReceived: p.VotesReceived,
		ActionsTaken:  p.ActionsTaken,
	}
	if includeRole {
		v.Role = p.Role
	}
	return v
}

// Roster is the ordered list of participants in a session
type Roster []*Participant

// Find returns the participant with the given id
func (r Roster) Find(id string) (*Participant, bool) {
	for _, p := range r {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

// Alive returns the currently living participants
func (r Roster) Alive() Roster {
	alive := make(Roster, 0, len(r))
	for _, p := range r {
		if p.Alive {
			alive = append(alive, p)
		}
	}
	return alive
}

// AliveMafia counts living participants on the mafia team
func (r Roster) AliveMafia() int {
	n := 0
	for _, p := range r {
		if p.Alive && p.Role.IsMafia() {
			n++
		}
	}
	return n
}

// AliveCitizens counts living participants not on the mafia team
func (r Roster) AliveCitizens() int {
	n := 0
	for _, p := range r {
		if p.Alive && !p.Role.IsMafia() {
			n++
		}
	}
	return n
}

// IDs returns the participant ids in roster order
func (r Roster) IDs() []string {
	ids := make([]string, 0, len(r))
	for _, p := range r {
		ids = append(ids, p.ID)
	}
	return ids
}
