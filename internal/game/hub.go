package game

import (
	crand "crypto/rand"
	"fmt"
	"log/slog"
	mrand "math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"mafia/internal/domain"
)

const (
	// DefaultRoomCodeLength is the default length for room codes
	DefaultRoomCodeLength = 6

	// StaleSessionTimeout is how long a finished session is kept around
	StaleSessionTimeout = 2 * time.Hour
)

// RoomCodeChars are characters used for room codes (no ambiguous chars)
const RoomCodeChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// PlayerSpec identifies one player joining a session
type PlayerSpec struct {
	UserID string
	Name   string
}

// Hub manages all active sessions. The registry has its own lock,
// independent of the per-session locks: the hub never calls into a
// session while holding its own lock, so a slow session cannot stall
// registry lookups.
type Hub struct {
	sessions       map[string]*Session
	mu             sync.RWMutex
	roomCodeLength int
	logger         *slog.Logger
	deps           Deps
	rng            *mrand.Rand
	done           chan struct{}
}

// NewHub creates a hub and starts its stale-session cleanup loop
func NewHub(logger *slog.Logger, deps Deps) *Hub {
	deps.Logger = logger
	deps.fillDefaults()

	hub := &Hub{
		sessions:       make(map[string]*Session),
		roomCodeLength: DefaultRoomCodeLength,
		logger:         logger,
		deps:           deps,
		rng:            mrand.New(mrand.NewSource(time.Now().UnixNano())),
		done:           make(chan struct{}),
	}

	go hub.cleanupLoop()

	return hub
}

// NewRoomCode reserves nothing; it only produces a code not currently
// in use, for clients that create the room before starting the game
func (h *Hub) NewRoomCode() (string, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.uniqueRoomCodeLocked()
}

// StartSession assigns roles to the given players and starts a new
// session under a fresh room code. A nil distribution selects a
// balanced one for the player count; an explicit distribution must
// cover exactly the given players and pass the balance rules. If role
// assignment fails, no session is created.
func (h *Hub) StartSession(players []PlayerSpec, dist domain.Distribution, settings Settings) (*Session, error) {
	h.mu.Lock()
	roomCode, err := h.uniqueRoomCodeLocked()
	if err != nil {
		h.mu.Unlock()
		return nil, err
	}
	session, err := h.registerSessionLocked(roomCode, players, dist, settings)
	h.mu.Unlock()

	if err != nil {
		return nil, err
	}
	session.start()
	return session, nil
}

// StartSessionInRoom is StartSession for a pre-created room code
func (h *Hub) StartSessionInRoom(roomCode string, players []PlayerSpec, dist domain.Distribution, settings Settings) (*Session, error) {
	h.mu.RLock()
	existing := h.sessions[roomCode]
	h.mu.RUnlock()

	// Active takes the session lock, so it is checked outside ours.
	if existing != nil && existing.Active() {
		return nil, fmt.Errorf("room %s already has a running session", roomCode)
	}

	h.mu.Lock()
	if current := h.sessions[roomCode]; current != existing {
		// A concurrent start claimed the room between the checks.
		h.mu.Unlock()
		return nil, fmt.Errorf("room %s already has a running session", roomCode)
	}
	session, err := h.registerSessionLocked(roomCode, players, dist, settings)
	h.mu.Unlock()

	if err != nil {
		return nil, err
	}
	session.start()
	return session, nil
}

// registerSessionLocked assigns roles and registers the session, but
// does not start it: the caller starts it after releasing the hub lock.
func (h *Hub) registerSessionLocked(roomCode string, players []PlayerSpec, dist domain.Distribution, settings Settings) (*Session, error) {
	roster := make(domain.Roster, 0, len(players))
	for _, p := range players {
		roster = append(roster, domain.NewParticipant(uuid.NewString(), p.UserID, p.Name))
	}

	assigned, err := domain.AssignRoles(roster, dist, h.rng)
	if err != nil {
		return nil, err
	}

	session := newSession(uuid.NewString(), roomCode, roster, settings, h.deps)
	h.sessions[roomCode] = session

	h.logger.Info("session started",
		"roomCode", roomCode,
		"sessionID", session.ID(),
		"players", len(players),
		"mafia", assigned.MafiaCount())

	return session, nil
}

// GetSession returns a session by room code
func (h *Hub) GetSession(roomCode string) (*Session, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	session, ok := h.sessions[roomCode]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}

	return session, nil
}

// DeleteSession cancels and removes a session. The session is taken
// out of the registry first, so its cancellation never holds up other
// rooms.
func (h *Hub) DeleteSession(roomCode string) {
	h.mu.Lock()
	session, ok := h.sessions[roomCode]
	if ok {
		delete(h.sessions, roomCode)
	}
	h.mu.Unlock()

	if ok {
		session.EndSession("session deleted")
		h.logger.Info("session deleted", "roomCode", roomCode)
	}
}

// GetSessionCount returns the number of registered sessions
func (h *Hub) GetSessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// GetActiveSessionCount returns the number of sessions still playing
func (h *Hub) GetActiveSessionCount() int {
	active := 0
	for _, session := range h.snapshot() {
		if session.Active() {
			active++
		}
	}
	return active
}

// GetTotalPlayerCount returns the total number of players across all sessions
func (h *Hub) GetTotalPlayerCount() int {
	total := 0
	for _, session := range h.snapshot() {
		total += session.ParticipantCount()
	}
	return total
}

// Close shuts down the hub and cancels all sessions
func (h *Hub) Close() {
	close(h.done)

	h.mu.Lock()
	remaining := make([]*Session, 0, len(h.sessions))
	for _, session := range h.sessions {
		remaining = append(remaining, session)
	}
	h.sessions = make(map[string]*Session)
	h.mu.Unlock()

	for _, session := range remaining {
		session.EndSession("server shutting down")
	}
}

// snapshot copies the registry so callers can query sessions without
// holding the hub lock
func (h *Hub) snapshot() []*Session {
	h.mu.RLock()
	defer h.mu.RUnlock()

	sessions := make([]*Session, 0, len(h.sessions))
	for _, session := range h.sessions {
		sessions = append(sessions, session)
	}
	return sessions
}

func (h *Hub) uniqueRoomCodeLocked() (string, error) {
	for attempts := 0; attempts < 10; attempts++ {
		code, err := h.generateRoomCode()
		if err != nil {
			return "", err
		}
		if _, exists := h.sessions[code]; !exists {
			return code, nil
		}
	}
	return "", fmt.Errorf("failed to generate unique room code")
}

// generateRoomCode generates a random room code
func (h *Hub) generateRoomCode() (string, error) {
	b := make([]byte, h.roomCodeLength)
	if _, err := crand.Read(b); err != nil {
		return "", fmt.Errorf("generating room code: %w", err)
	}

	code := make([]byte, h.roomCodeLength)
	for i := range code {
		code[i] = RoomCodeChars[int(b[i])%len(RoomCodeChars)]
	}

	return string(code), nil
}

// cleanupLoop periodically removes stale sessions
func (h *Hub) cleanupLoop() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-h.done:
			return
		case <-ticker.C:
			h.cleanupStaleSessions()
		}
	}
}

// cleanupStaleSessions removes finished sessions past the retention window
func (h *Hub) cleanupStaleSessions() {
	now := time.Now()
	stale := make(map[string]*Session)

	for _, session := range h.snapshot() {
		if !session.Active() && now.Sub(session.CreatedAt()) > StaleSessionTimeout {
			stale[session.RoomCode()] = session
		}
	}
	if len(stale) == 0 {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for roomCode, session := range stale {
		// Only remove if the room still holds the session seen above.
		if h.sessions[roomCode] == session {
			delete(h.sessions, roomCode)
			h.logger.Info("stale session cleaned up", "roomCode", roomCode)
		}
	}
}
