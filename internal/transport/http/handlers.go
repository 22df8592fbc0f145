package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"mafia/internal/domain"
	"mafia/internal/game"
)

// Response is a standard API response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
}

// ErrorInfo contains error details
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ActionResult reports whether a gameplay command was accepted and,
// when it was not, why
type ActionResult struct {
	Accepted bool   `json:"accepted"`
	Reason   string `json:"reason,omitempty"`
}

// CreateRoomResponse is the response for room creation
type CreateRoomResponse struct {
	RoomCode   string `json:"roomCode"`
	InviteLink string `json:"inviteLink"`
}

// StartSessionRequest starts a game for the listed players. Roles is
// an optional role-name to count map; when present it must cover the
// players exactly, when absent a balanced distribution is selected.
type StartSessionRequest struct {
	Players  []PlayerSpec     `json:"players"`
	Roles    map[string]int   `json:"roles,omitempty"`
	Settings *SessionSettings `json:"settings,omitempty"`
}

// PlayerSpec identifies one player in the start request
type PlayerSpec struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
}

// SessionSettings overrides the default phase timings
type SessionSettings struct {
	DaySeconds    *int `json:"daySeconds,omitempty"`
	VotingSeconds *int `json:"votingSeconds,omitempty"`
	NightSeconds  *int `json:"nightSeconds,omitempty"`
	TrialSeconds  *int `json:"trialSeconds,omitempty"`
	TrialEnabled  bool `json:"trialEnabled,omitempty"`
}

// StartSessionResponse is the response for a started session
type StartSessionResponse struct {
	SessionID string `json:"sessionId"`
	RoomCode  string `json:"roomCode"`
	Players   int    `json:"players"`
}

// SubmitActionRequest records a player intent
type SubmitActionRequest struct {
	ActorID  string            `json:"actorId"`
	Type     string            `json:"type"`
	TargetID string            `json:"targetId,omitempty"`
	Details  map[string]string `json:"details,omitempty"`
}

// CastVoteRequest records a vote; an empty target abstains
type CastVoteRequest struct {
	VoterID  string `json:"voterId"`
	TargetID string `json:"targetId,omitempty"`
}

// ExtendPhaseRequest lengthens the current phase deadline
type ExtendPhaseRequest struct {
	Seconds int `json:"seconds"`
}

// GetRoomResponse is the response for getting room info
type GetRoomResponse struct {
	RoomCode    string          `json:"roomCode"`
	SessionID   string          `json:"sessionId"`
	PlayerCount int             `json:"playerCount"`
	Phase       domain.Phase    `json:"phase"`
	Round       int             `json:"round"`
	Active      bool            `json:"active"`
	Outcome     *domain.Outcome `json:"outcome,omitempty"`
}

// HealthResponse is the response for health check
type HealthResponse struct {
	Status string `json:"status"`
}

// StatsResponse is the response for stats endpoint
type StatsResponse struct {
	ActiveSessions int `json:"activeSessions"`
	TotalSessions  int `json:"totalSessions"`
	TotalPlayers   int `json:"totalPlayers"`
}

// handleCreateRoom handles POST /api/rooms
func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	roomCode, err := s.hub.NewRoomCode()
	if err != nil {
		s.sendError(w, http.StatusInternalServerError, "CREATION_FAILED", "Failed to create room")
		return
	}

	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	inviteLink := scheme + "://" + r.Host + "/join/" + roomCode

	s.sendSuccess(w, &CreateRoomResponse{
		RoomCode:   roomCode,
		InviteLink: inviteLink,
	})
}

// handleStartSession handles POST /api/rooms/{roomCode}/start
func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	roomCode := strings.ToUpper(chi.URLParam(r, "roomCode"))

	var req StartSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request body")
		return
	}

	players := make([]game.PlayerSpec, 0, len(req.Players))
	for _, p := range req.Players {
		players = append(players, game.PlayerSpec{UserID: p.UserID, Name: p.Name})
	}

	dist, err := distributionFromRequest(req.Roles)
	if err != nil {
		s.sendError(w, http.StatusUnprocessableEntity, "INVALID_ROLES", err.Error())
		return
	}

	session, err := s.hub.StartSessionInRoom(roomCode, players, dist, s.settingsFromRequest(req.Settings))
	if err != nil {
		if errors.Is(err, domain.ErrPlayerCountRange) ||
			errors.Is(err, domain.ErrUnbalanceableCount) ||
			errors.Is(err, domain.ErrInvalidDistribution) {
			s.sendError(w, http.StatusUnprocessableEntity, "INVALID_PLAYER_COUNT", err.Error())
			return
		}
		s.sendError(w, http.StatusConflict, "START_FAILED", err.Error())
		return
	}

	s.sendSuccess(w, &StartSessionResponse{
		SessionID: session.ID(),
		RoomCode:  session.RoomCode(),
		Players:   session.ParticipantCount(),
	})
}

// handleGetRoom handles GET /api/rooms/{roomCode}
func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	session, ok := s.getSession(w, r)
	if !ok {
		return
	}

	info := session.GetPhaseInfo()
	s.sendSuccess(w, &GetRoomResponse{
		RoomCode:    session.RoomCode(),
		SessionID:   session.ID(),
		PlayerCount: session.ParticipantCount(),
		Phase:       info.Phase,
		Round:       info.Round,
		Active:      info.Active,
		Outcome:     info.Outcome,
	})
}

// handleDeleteRoom handles DELETE /api/rooms/{roomCode}
func (s *Server) handleDeleteRoom(w http.ResponseWriter, r *http.Request) {
	roomCode := strings.ToUpper(chi.URLParam(r, "roomCode"))
	s.hub.DeleteSession(roomCode)
	s.sendSuccess(w, nil)
}

// handleSubmitAction handles POST /api/rooms/{roomCode}/actions
func (s *Server) handleSubmitAction(w http.ResponseWriter, r *http.Request) {
	session, ok := s.getSession(w, r)
	if !ok {
		return
	}

	var req SubmitActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request body")
		return
	}

	accepted, reason := session.SubmitAction(req.ActorID, domain.ActionType(req.Type), req.TargetID, req.Details)
	s.sendSuccess(w, &ActionResult{Accepted: accepted, Reason: reason})
}

// handleCastVote handles POST /api/rooms/{roomCode}/votes
func (s *Server) handleCastVote(w http.ResponseWriter, r *http.Request) {
	session, ok := s.getSession(w, r)
	if !ok {
		return
	}

	var req CastVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request body")
		return
	}

	accepted, reason := session.CastVote(req.VoterID, req.TargetID)
	s.sendSuccess(w, &ActionResult{Accepted: accepted, Reason: reason})
}

// handleGetPhase handles GET /api/rooms/{roomCode}/phase
func (s *Server) handleGetPhase(w http.ResponseWriter, r *http.Request) {
	session, ok := s.getSession(w, r)
	if !ok {
		return
	}
	s.sendSuccess(w, session.GetPhaseInfo())
}

// handleForceEndPhase handles POST /api/rooms/{roomCode}/phase/end
func (s *Server) handleForceEndPhase(w http.ResponseWriter, r *http.Request) {
	session, ok := s.getSession(w, r)
	if !ok {
		return
	}

	accepted, reason := session.ForceEndPhase()
	s.sendSuccess(w, &ActionResult{Accepted: accepted, Reason: reason})
}

// handleExtendPhase handles POST /api/rooms/{roomCode}/phase/extend
func (s *Server) handleExtendPhase(w http.ResponseWriter, r *http.Request) {
	session, ok := s.getSession(w, r)
	if !ok {
		return
	}

	var req ExtendPhaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Seconds <= 0 {
		s.sendError(w, http.StatusBadRequest, "INVALID_BODY", "A positive seconds value is required")
		return
	}

	accepted, reason := session.ExtendPhase(time.Duration(req.Seconds) * time.Second)
	s.sendSuccess(w, &ActionResult{Accepted: accepted, Reason: reason})
}

// handleGetVotes handles GET /api/rooms/{roomCode}/votes
func (s *Server) handleGetVotes(w http.ResponseWriter, r *http.Request) {
	session, ok := s.getSession(w, r)
	if !ok {
		return
	}

	summary, ok := session.GetVoteSummary()
	if !ok {
		s.sendError(w, http.StatusNotFound, "NO_VOTING_ROUND", "No voting round for this session")
		return
	}
	s.sendSuccess(w, summary)
}

// handleGetParticipants handles GET /api/rooms/{roomCode}/participants
func (s *Server) handleGetParticipants(w http.ResponseWriter, r *http.Request) {
	session, ok := s.getSession(w, r)
	if !ok {
		return
	}
	s.sendSuccess(w, session.Participants())
}

// handleGetParticipant handles GET /api/rooms/{roomCode}/participants/{participantID}
func (s *Server) handleGetParticipant(w http.ResponseWriter, r *http.Request) {
	session, ok := s.getSession(w, r)
	if !ok {
		return
	}

	view, found := session.GetParticipantView(chi.URLParam(r, "participantID"))
	if !found {
		s.sendError(w, http.StatusNotFound, "PARTICIPANT_NOT_FOUND", "Participant not found")
		return
	}
	s.sendSuccess(w, view)
}

// RoleEntry is one role of the static catalog
type RoleEntry struct {
	Role       domain.Role     `json:"role"`
	Info       domain.RoleInfo `json:"info"`
	VoteWeight int             `json:"voteWeight"`
}

// handleGetRoles handles GET /api/roles
func (s *Server) handleGetRoles(w http.ResponseWriter, r *http.Request) {
	roles := make([]RoleEntry, 0)
	for _, role := range domain.AllRoles() {
		roles = append(roles, RoleEntry{
			Role:       role,
			Info:       role.Info(),
			VoteWeight: role.VoteWeight(),
		})
	}
	s.sendSuccess(w, roles)
}

// handleHealth handles GET /api/health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.sendSuccess(w, &HealthResponse{
		Status: "ok",
	})
}

// handleStats handles GET /api/stats
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.sendSuccess(w, &StatsResponse{
		ActiveSessions: s.hub.GetActiveSessionCount(),
		TotalSessions:  s.hub.GetSessionCount(),
		TotalPlayers:   s.hub.GetTotalPlayerCount(),
	})
}

// settingsFromRequest merges per-request overrides onto the server's
// configured phase timings
func (s *Server) settingsFromRequest(req *SessionSettings) game.Settings {
	settings := game.Settings{
		PhaseDurations: map[domain.Phase]time.Duration{
			domain.PhaseDay:    s.config.Game.DayDuration,
			domain.PhaseVoting: s.config.Game.VotingDuration,
			domain.PhaseNight:  s.config.Game.NightDuration,
			domain.PhaseTrial:  s.config.Game.TrialDuration,
		},
		TrialEnabled: s.config.Game.TrialEnabled,
	}
	if req == nil {
		return settings
	}

	override := func(phase domain.Phase, seconds *int) {
		if seconds != nil {
			settings.PhaseDurations[phase] = time.Duration(*seconds) * time.Second
		}
	}
	override(domain.PhaseDay, req.DaySeconds)
	override(domain.PhaseVoting, req.VotingSeconds)
	override(domain.PhaseNight, req.NightSeconds)
	override(domain.PhaseTrial, req.TrialSeconds)
	settings.TrialEnabled = settings.TrialEnabled || req.TrialEnabled

	return settings
}

// distributionFromRequest converts the optional role-name map into a
// domain distribution. A nil or empty map requests automatic selection.
func distributionFromRequest(roles map[string]int) (domain.Distribution, error) {
	if len(roles) == 0 {
		return nil, nil
	}

	dist := make(domain.Distribution, len(roles))
	for name, count := range roles {
		role, ok := domain.ParseRole(name)
		if !ok {
			return nil, fmt.Errorf("unknown role %q", name)
		}
		if count < 0 {
			return nil, fmt.Errorf("negative count for role %q", name)
		}
		dist[role] = count
	}
	return dist, nil
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) (*game.Session, bool) {
	roomCode := chi.URLParam(r, "roomCode")
	if roomCode == "" {
		s.sendError(w, http.StatusBadRequest, "MISSING_ROOM_CODE", "Room code is required")
		return nil, false
	}

	session, err := s.hub.GetSession(strings.ToUpper(roomCode))
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			s.sendError(w, http.StatusNotFound, "ROOM_NOT_FOUND", "Room not found")
		} else {
			s.sendError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
		}
		return nil, false
	}

	return session, true
}

// sendSuccess sends a successful JSON response
func (s *Server) sendSuccess(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(&Response{
		Success: true,
		Data:    data,
	})
}

// sendError sends an error JSON response
func (s *Server) sendError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(&Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
		},
	})
}
