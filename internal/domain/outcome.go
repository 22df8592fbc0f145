package domain

// WinCondition is the terminal outcome of a session, set exactly once
type WinCondition string

const (
	CitizensWin WinCondition = "citizens_win"
	MafiaWin    WinCondition = "mafia_win"
	Draw        WinCondition = "draw"
	Cancelled   WinCondition = "cancelled"
)

// Outcome couples the win condition with the winning team label
type Outcome struct {
	Condition WinCondition `json:"condition"`
	Team      Team         `json:"team,omitempty"`
}

// CheckWin evaluates the win condition over the living participants.
// No mafia left means the citizens win; mafia matching or outnumbering
// the citizens means the mafia win, in that order. A false return means
// the game continues.
func CheckWin(roster Roster) (Outcome, bool) {
	mafia := roster.AliveMafia()
	citizens := roster.AliveCitizens()

	if mafia == 0 {
		return Outcome{Condition: CitizensWin, Team: TeamCitizens}, true
	}
	if mafia >= citizens {
		return Outcome{Condition: MafiaWin, Team: TeamMafia}, true
	}
	return Outcome{}, false
}
