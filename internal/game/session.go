package game

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"mafia/internal/domain"
)

// Settings holds per-session configuration. A phase listed with a zero
// duration never auto-advances and must be driven by ForceEndPhase;
// phases absent from the map use the defaults.
type Settings struct {
	PhaseDurations map[domain.Phase]time.Duration
	TrialEnabled   bool
}

func (st Settings) durationFor(phase domain.Phase) time.Duration {
	if st.PhaseDurations != nil {
		if d, ok := st.PhaseDurations[phase]; ok {
			return d
		}
	}
	return phase.DefaultDuration()
}

// Session coordinates one game: it owns the roster, the phase window,
// the action ledger and the voting round under a single lock, drives
// the phase timer, resolves nights and votes at window close, and
// evaluates win conditions. All public methods are safe for concurrent
// use; events are emitted synchronously under the lock so observers
// always see a consistent snapshot.
type Session struct {
	id       string
	roomCode string

	mu       sync.Mutex
	roster   domain.Roster
	round    int
	window   domain.PhaseWindow
	ledger   *domain.ActionLedger
	voting   *domain.VotingRound
	voted    map[string]bool // voters counted toward VotesCast this round
	accused  string          // participant on trial, empty outside the trial sub-flow
	active   bool
	outcome  *domain.Outcome
	settings Settings

	// The session lock, not the timer, is the source of truth for
	// which phase is live: a stale generation firing is a no-op.
	timer    *time.Timer
	timerGen uint64

	logger    *slog.Logger
	events    EventSink
	broadcast Broadcaster
	names     NameResolver

	createdAt time.Time
}

// Deps are the collaborators a session reports to
type Deps struct {
	Logger    *slog.Logger
	Events    EventSink
	Broadcast Broadcaster
	Names     NameResolver
}

func (d *Deps) fillDefaults() {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Events == nil {
		d.Events = NopSink{}
	}
	if d.Broadcast == nil {
		d.Broadcast = NopBroadcaster{}
	}
}

func newSession(id, roomCode string, roster domain.Roster, settings Settings, deps Deps) *Session {
	deps.fillDefaults()
	return &Session{
		id:        id,
		roomCode:  roomCode,
		roster:    roster,
		settings:  settings,
		logger:    deps.Logger.With("sessionID", id, "roomCode", roomCode),
		events:    deps.Events,
		broadcast: deps.Broadcast,
		names:     deps.Names,
		createdAt: time.Now(),
	}
}

// start opens the first Day window. Called once by the hub after role
// assignment succeeded.
func (s *Session) start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.active = true
	s.round = 1
	s.enterPhaseLocked(domain.PhaseDay)
}

// ID returns the session identifier
func (s *Session) ID() string {
	return s.id
}

// RoomCode returns the room this session belongs to
func (s *Session) RoomCode() string {
	return s.roomCode
}

// CreatedAt returns when the session was created
func (s *Session) CreatedAt() time.Time {
	return s.createdAt
}

// Active reports whether the game is still running
func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Outcome returns the terminal outcome, nil until the session finished
func (s *Session) Outcome() *domain.Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.outcome == nil {
		return nil
	}
	o := *s.outcome
	return &o
}

// ParticipantCount returns the roster size
func (s *Session) ParticipantCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.roster)
}

// SubmitAction validates and records a player intent for the current
// phase. Votes are delegated to the active voting round; all other
// types go through the action ledger with last-write-wins semantics.
// Expected rejections are reported as (false, reason), never as errors.
func (s *Session) SubmitAction(actorID string, actionType domain.ActionType, targetID string, details map[string]string) (bool, string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active {
		return false, domain.ErrSessionFinished.Error()
	}

	if actionType == domain.ActionVote {
		return s.castVoteLocked(actorID, targetID)
	}

	if err := s.ledger.Submit(s.roster, actorID, actionType, targetID, details); err != nil {
		return false, err.Error()
	}
	return true, ""
}

// CastVote records a weighted vote in the active round. An empty
// target id records an abstention; recasting replaces the prior vote.
func (s *Session) CastVote(voterID, targetID string) (bool, string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active {
		return false, domain.ErrSessionFinished.Error()
	}
	return s.castVoteLocked(voterID, targetID)
}

func (s *Session) castVoteLocked(voterID, targetID string) (bool, string) {
	if s.voting == nil || !s.voting.Active() {
		return false, domain.ErrNoActiveVoting.Error()
	}

	voter, ok := s.roster.Find(voterID)
	if !ok || !voter.Alive {
		return false, domain.ErrActorNotEligible.Error()
	}

	if err := s.voting.Cast(voterID, targetID, voter.Role.VoteWeight()); err != nil {
		return false, err.Error()
	}
	// The counter tracks participation per round, not ballot churn: a
	// voter who casts, abstains and casts again counted once already.
	if targetID != "" && !s.voted[voterID] {
		s.voted[voterID] = true
		voter.VotesCast++
	}
	return true, ""
}

// ForceEndPhase cancels the pending timer and runs the current phase's
// finalizer immediately. It is idempotent with a natural timeout: only
// one of the two ever fires per window.
func (s *Session) ForceEndPhase() (bool, string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active {
		return false, domain.ErrSessionFinished.Error()
	}

	s.cancelTimerLocked()
	s.safeFinalizeLocked()
	return true, ""
}

// ExtendPhase lengthens the current deadline without resetting any
// collected action state
func (s *Session) ExtendPhase(extra time.Duration) (bool, string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active {
		return false, domain.ErrSessionFinished.Error()
	}
	if s.window.Deadline.IsZero() {
		return false, "current phase has no deadline"
	}

	s.window.Deadline = s.window.Deadline.Add(extra)
	s.window.Duration += extra
	if s.voting != nil && s.voting.Active() && !s.voting.Deadline.IsZero() {
		s.voting.Deadline = s.voting.Deadline.Add(extra)
	}

	s.cancelTimerLocked()
	s.scheduleTimerLocked(time.Until(s.window.Deadline))
	return true, ""
}

// EndSession cancels the game. It is idempotent: once the outcome is
// set, repeated calls are no-ops.
func (s *Session) EndSession(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.endLocked(domain.Outcome{Condition: domain.Cancelled}, reason)
}

func (s *Session) finalizePhaseLocked() {
	switch s.window.Phase {
	case domain.PhaseDay:
		s.enterPhaseLocked(domain.PhaseVoting)
	case domain.PhaseVoting:
		s.closeVotingLocked()
	case domain.PhaseTrial:
		s.closeTrialLocked()
	case domain.PhaseNight:
		s.resolveNightLocked()
	}
}

// enterPhaseLocked opens a new phase window. The previous window and
// its timer are invalidated, the ledger is cleared, and phase-specific
// state (a voting round) is set up before the new timer starts.
func (s *Session) enterPhaseLocked(phase domain.Phase) {
	duration := s.settings.durationFor(phase)

	s.cancelTimerLocked()
	s.window = domain.NewPhaseWindow(phase, duration)
	s.ledger = domain.NewActionLedger(phase)

	s.logger.Info("phase started", "phase", phase, "round", s.round, "duration", duration)
	s.emitLocked(domain.NewEvent(domain.EventPhaseChanged, s.id, s.round, domain.PhaseChangedPayload{
		Phase:    phase,
		Duration: duration,
		Deadline: s.window.Deadline,
	}))

	switch phase {
	case domain.PhaseVoting:
		alive := s.roster.Alive().IDs()
		s.openVotingLocked(domain.VoteLynch, duration, alive, alive)
	case domain.PhaseTrial:
		voters := make([]string, 0)
		for _, p := range s.roster.Alive() {
			if p.ID != s.accused {
				voters = append(voters, p.ID)
			}
		}
		s.openVotingLocked(domain.VoteTrial, duration, voters, []string{s.accused})
	}

	s.scheduleTimerLocked(duration)
}

func (s *Session) openVotingLocked(voteType domain.VoteType, duration time.Duration, voters, targets []string) {
	if s.voting != nil && !s.voting.Completed() {
		// At most one round per session; a leftover open round is a
		// bug, close it before opening the next.
		s.logger.Warn("open voting round replaced", "type", s.voting.Type)
		s.voting.Cancel()
	}

	s.voting = domain.NewVotingRound(s.id, voteType, duration, voters, targets)
	s.voted = make(map[string]bool)
	s.emitLocked(domain.NewEvent(domain.EventVotingStarted, s.id, s.round, domain.VotingStartedPayload{
		Type:           voteType,
		EligibleVoters: voters,
		Targets:        targets,
		Deadline:       s.voting.Deadline,
	}))
}

// closeVotingLocked completes the lynch vote. An elimination either
// kills the target outright or, with the trial sub-flow enabled, sends
// the accused to trial. Ties and empty rounds eliminate no one.
func (s *Session) closeVotingLocked() {
	result := s.voting.Complete()
	s.applyReceivedTalliesLocked()
	s.emitLocked(domain.NewEvent(domain.EventVotingEnded, s.id, s.round, domain.VotingEndedPayload{
		Type:   domain.VoteLynch,
		Result: result,
	}))

	if result.Outcome == domain.VoteElimination {
		if s.settings.TrialEnabled {
			s.accused = result.EliminatedID
			s.enterPhaseLocked(domain.PhaseTrial)
			return
		}
		s.killLocked(result.EliminatedID, domain.DeathLynch, "")
		if s.checkWinLocked() {
			return
		}
	}

	s.enterPhaseLocked(domain.PhaseNight)
}

// closeTrialLocked completes the trial vote: a majority against the
// accused confirms the lynch, anything else spares them
func (s *Session) closeTrialLocked() {
	result := s.voting.Complete()
	s.applyReceivedTalliesLocked()
	s.emitLocked(domain.NewEvent(domain.EventVotingEnded, s.id, s.round, domain.VotingEndedPayload{
		Type:   domain.VoteTrial,
		Result: result,
	}))

	accused := s.accused
	s.accused = ""

	if result.Outcome == domain.VoteElimination && result.EliminatedID == accused {
		s.killLocked(accused, domain.DeathLynch, "")
		if s.checkWinLocked() {
			return
		}
	}

	s.enterPhaseLocked(domain.PhaseNight)
}

// resolveNightLocked turns the night's ledger into outcomes, applies
// deaths, re-checks the win condition and opens the next day
func (s *Session) resolveNightLocked() {
	outcomes := domain.ResolveNight(s.ledger.Actions(), s.roster, s.round)

	s.emitLocked(domain.NewEvent(domain.EventNightResolved, s.id, s.round, domain.NightResolvedPayload{
		Outcomes: outcomes,
	}))

	for _, o := range outcomes {
		switch o.Kind {
		case domain.OutcomeKillSuccess, domain.OutcomeVigilanteKillSuccess:
			s.emitDeathLocked(o.TargetID)
		}
	}

	if s.checkWinLocked() {
		return
	}

	s.round++
	s.enterPhaseLocked(domain.PhaseDay)
}

// killLocked applies a lynch or admin kill (night deaths are applied
// by the resolver) and reports it
func (s *Session) killLocked(participantID string, cause domain.DeathCause, killerID string) {
	p, ok := s.roster.Find(participantID)
	if !ok {
		return
	}
	if !p.Kill(cause, killerID, s.round) {
		return
	}
	s.emitDeathLocked(participantID)
}

func (s *Session) emitDeathLocked(participantID string) {
	p, ok := s.roster.Find(participantID)
	if !ok {
		return
	}

	s.emitLocked(domain.NewEvent(domain.EventPlayerDied, s.id, s.round, domain.PlayerDiedPayload{
		ParticipantID: p.ID,
		Name:          s.displayNameLocked(p),
		Cause:         p.DeathCause,
		KilledBy:      p.KilledBy,
	}))

	s.persistDeltaLocked(p.ID, map[string]any{
		"alive":       false,
		"death_cause": string(p.DeathCause),
		"death_round": p.DeathRound,
		"killed_by":   p.KilledBy,
	})
}

func (s *Session) applyReceivedTalliesLocked() {
	for targetID, weight := range s.voting.Tally() {
		if p, ok := s.roster.Find(targetID); ok {
			p.VotesReceived += weight
		}
	}
}

// checkWinLocked ends the session if a win condition holds
func (s *Session) checkWinLocked() bool {
	outcome, ended := domain.CheckWin(s.roster)
	if !ended {
		return false
	}
	s.endLocked(outcome, "")
	return true
}

// endLocked sets the terminal outcome exactly once and tears the
// session down: timer cancelled, open voting round cancelled, window
// moved to Finished.
func (s *Session) endLocked(outcome domain.Outcome, reason string) {
	if s.outcome != nil {
		return
	}

	o := outcome
	s.outcome = &o
	s.active = false

	s.cancelTimerLocked()
	if s.voting != nil && !s.voting.Completed() {
		s.voting.Cancel()
	}
	s.window = domain.NewPhaseWindow(domain.PhaseFinished, 0)
	s.ledger = domain.NewActionLedger(domain.PhaseFinished)

	s.logger.Info("session ended", "condition", outcome.Condition, "team", outcome.Team, "reason", reason)
	s.emitLocked(domain.NewEvent(domain.EventGameEnded, s.id, s.round, domain.GameEndedPayload{
		Outcome: o,
		Reason:  reason,
	}))
}

// emitLocked reports an event to the persistence and broadcast sinks.
// Sink failures are logged and never propagate to gameplay.
func (s *Session) emitLocked(event domain.Event) {
	if err := s.events.RecordEvent(s.id, event); err != nil {
		s.logger.Warn("event persistence failed", "type", event.Type, "error", err)
	}
	s.broadcast.Publish(s.id, event)
}

func (s *Session) persistDeltaLocked(participantID string, fields map[string]any) {
	if err := s.events.ApplyParticipantDelta(participantID, fields); err != nil {
		s.logger.Warn("participant delta failed", "participantID", participantID, "error", err)
	}
}

func (s *Session) displayNameLocked(p *domain.Participant) string {
	if s.names != nil {
		if name := s.names.DisplayNameOf(p.ID); name != "" {
			return name
		}
	}
	return p.Name
}

// status queries

// PhaseInfo is a consistent snapshot of the current phase window
type PhaseInfo struct {
	SessionID        string          `json:"sessionId"`
	Phase            domain.Phase    `json:"phase"`
	Round            int             `json:"round"`
	StartAt          time.Time       `json:"startAt"`
	Deadline         time.Time       `json:"deadline,omitempty"`
	RemainingSeconds int             `json:"remainingSeconds"`
	ActionsSubmitted int             `json:"actionsSubmitted"`
	Active           bool            `json:"active"`
	Outcome          *domain.Outcome `json:"outcome,omitempty"`
}

// GetPhaseInfo returns a snapshot of the active phase window
func (s *Session) GetPhaseInfo() PhaseInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	info := PhaseInfo{
		SessionID:        s.id,
		Phase:            s.window.Phase,
		Round:            s.round,
		StartAt:          s.window.StartAt,
		Deadline:         s.window.Deadline,
		RemainingSeconds: int(s.window.Remaining().Seconds()),
		ActionsSubmitted: s.ledger.Len(),
		Active:           s.active,
	}
	if s.outcome != nil {
		o := *s.outcome
		info.Outcome = &o
	}
	return info
}

// VoteStanding is one tally entry of the vote summary
type VoteStanding struct {
	ParticipantID string `json:"participantId"`
	Name          string `json:"name"`
	Weight        int    `json:"weight"`
}

// VoteSummary is a consistent snapshot of the session's voting round,
// ordered by tally with the leading candidate first
type VoteSummary struct {
	Type             domain.VoteType    `json:"type"`
	Active           bool               `json:"active"`
	RemainingSeconds int                `json:"remainingSeconds"`
	VotesCast        int                `json:"votesCast"`
	EligibleVoters   int                `json:"eligibleVoters"`
	Standings        []VoteStanding     `json:"standings"`
	Leader           string             `json:"leader,omitempty"`
	Result           *domain.VoteResult `json:"result,omitempty"`
}

// GetVoteSummary returns the state of the current or latest voting
// round. The second return is false if the session never voted.
func (s *Session) GetVoteSummary() (VoteSummary, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.voting == nil {
		return VoteSummary{}, false
	}

	summary := VoteSummary{
		Type:             s.voting.Type,
		Active:           s.voting.Active(),
		RemainingSeconds: int(s.voting.Remaining().Seconds()),
		VotesCast:        s.voting.VotesCast(),
		EligibleVoters:   s.voting.EligibleVoterCount(),
	}

	for targetID, weight := range s.voting.Tally() {
		name := targetID
		if p, ok := s.roster.Find(targetID); ok {
			name = s.displayNameLocked(p)
		}
		summary.Standings = append(summary.Standings, VoteStanding{
			ParticipantID: targetID,
			Name:          name,
			Weight:        weight,
		})
	}
	sort.Slice(summary.Standings, func(i, j int) bool {
		if summary.Standings[i].Weight != summary.Standings[j].Weight {
			return summary.Standings[i].Weight > summary.Standings[j].Weight
		}
		return summary.Standings[i].ParticipantID < summary.Standings[j].ParticipantID
	})
	if len(summary.Standings) > 0 {
		summary.Leader = summary.Standings[0].ParticipantID
	}

	if result, ok := s.voting.Result(); ok {
		summary.Result = &result
	}
	return summary, true
}

// GetParticipantView returns a participant's own view, role included
func (s *Session) GetParticipantView(participantID string) (domain.ParticipantView, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.roster.Find(participantID)
	if !ok {
		return domain.ParticipantView{}, false
	}
	return p.View(true), true
}

// Participants returns the public projections of the whole roster
func (s *Session) Participants() []domain.ParticipantView {
	s.mu.Lock()
	defer s.mu.Unlock()

	views := make([]domain.ParticipantView, 0, len(s.roster))
	for _, p := range s.roster {
		views = append(views, p.View(false))
	}
	return views
}
