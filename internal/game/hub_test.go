package game

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"mafia/internal/domain"
)

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(slog.Default(), Deps{})
	t.Cleanup(hub.Close)
	return hub
}

func testPlayers(n int) []PlayerSpec {
	players := make([]PlayerSpec, 0, n)
	for i := 0; i < n; i++ {
		players = append(players, PlayerSpec{
			UserID: fmt.Sprintf("u%d", i),
			Name:   fmt.Sprintf("Player %d", i),
		})
	}
	return players
}

func TestStartSessionAssignsRoles(t *testing.T) {
	hub := newTestHub(t)

	session, err := hub.StartSession(testPlayers(6), nil, manualSettings(false))
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}

	if session.ParticipantCount() != 6 {
		t.Errorf("participants = %d, want 6", session.ParticipantCount())
	}
	if !session.Active() {
		t.Error("new session should be active")
	}
	if got := session.GetPhaseInfo().Phase; got != domain.PhaseDay {
		t.Errorf("opening phase = %s, want DAY", got)
	}

	mafia := 0
	for _, view := range session.Participants() {
		full, _ := session.GetParticipantView(view.ID)
		if full.Role == "" {
			t.Errorf("participant %s has no role", view.ID)
		}
		if full.Role.IsMafia() {
			mafia++
		}
	}
	if mafia != 2 {
		t.Errorf("mafia = %d for 6 players, want 2", mafia)
	}
}

func TestStartSessionWithExplicitDistribution(t *testing.T) {
	hub := newTestHub(t)

	dist := domain.Distribution{
		domain.RoleMafia:   2,
		domain.RoleCitizen: 3,
		domain.RoleDoctor:  1,
	}
	session, err := hub.StartSession(testPlayers(6), dist, manualSettings(false))
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}

	got := make(domain.Distribution)
	for _, view := range session.Participants() {
		full, _ := session.GetParticipantView(view.ID)
		got[full.Role]++
	}
	for role, want := range dist {
		if got[role] != want {
			t.Errorf("role %s count = %d, want %d", role, got[role], want)
		}
	}
}

func TestStartSessionRejectsBadDistribution(t *testing.T) {
	hub := newTestHub(t)

	// Five seats for six players.
	dist := domain.Distribution{
		domain.RoleMafia:   1,
		domain.RoleCitizen: 3,
		domain.RoleDoctor:  1,
	}
	if _, err := hub.StartSession(testPlayers(6), dist, manualSettings(false)); !errors.Is(err, domain.ErrInvalidDistribution) {
		t.Errorf("mismatched distribution error = %v, want ErrInvalidDistribution", err)
	}

	// Overwhelming mafia fails the balance rules.
	dist = domain.Distribution{
		domain.RoleMafia:   4,
		domain.RoleCitizen: 2,
	}
	if _, err := hub.StartSession(testPlayers(6), dist, manualSettings(false)); !errors.Is(err, domain.ErrInvalidDistribution) {
		t.Errorf("unbalanced distribution error = %v, want ErrInvalidDistribution", err)
	}

	if hub.GetSessionCount() != 0 {
		t.Error("failed starts must not register sessions")
	}
}

func TestStartSessionRejectsBadPlayerCount(t *testing.T) {
	hub := newTestHub(t)

	if _, err := hub.StartSession(testPlayers(3), nil, manualSettings(false)); !errors.Is(err, domain.ErrPlayerCountRange) {
		t.Errorf("3 players error = %v, want ErrPlayerCountRange", err)
	}
	if _, err := hub.StartSession(testPlayers(21), nil, manualSettings(false)); !errors.Is(err, domain.ErrPlayerCountRange) {
		t.Errorf("21 players error = %v, want ErrPlayerCountRange", err)
	}
	if hub.GetSessionCount() != 0 {
		t.Error("failed starts must not register sessions")
	}
}

func TestRoomCodeFormat(t *testing.T) {
	hub := newTestHub(t)

	code, err := hub.NewRoomCode()
	if err != nil {
		t.Fatalf("NewRoomCode: %v", err)
	}
	if len(code) != DefaultRoomCodeLength {
		t.Errorf("code length = %d, want %d", len(code), DefaultRoomCodeLength)
	}
	for _, c := range code {
		if !strings.ContainsRune(RoomCodeChars, c) {
			t.Errorf("code %q contains disallowed character %q", code, c)
		}
	}
}

func TestGetAndDeleteSession(t *testing.T) {
	hub := newTestHub(t)

	session, err := hub.StartSession(testPlayers(5), nil, manualSettings(false))
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}

	found, err := hub.GetSession(session.RoomCode())
	if err != nil || found.ID() != session.ID() {
		t.Fatalf("GetSession = %v, %v", found, err)
	}

	hub.DeleteSession(session.RoomCode())

	if _, err := hub.GetSession(session.RoomCode()); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("deleted session lookup error = %v, want ErrSessionNotFound", err)
	}
	if session.Active() {
		t.Error("deleting a session should cancel it")
	}
}

func TestStartSessionInRoomRejectsRunningGame(t *testing.T) {
	hub := newTestHub(t)

	session, err := hub.StartSession(testPlayers(5), nil, manualSettings(false))
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}

	if _, err := hub.StartSessionInRoom(session.RoomCode(), testPlayers(5), nil, manualSettings(false)); err == nil {
		t.Error("starting over a running session should fail")
	}
}

func TestHubStats(t *testing.T) {
	hub := newTestHub(t)

	first, err := hub.StartSession(testPlayers(5), nil, manualSettings(false))
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	if _, err := hub.StartSession(testPlayers(7), nil, manualSettings(false)); err != nil {
		t.Fatalf("StartSession: %v", err)
	}

	first.EndSession("over")

	if got := hub.GetSessionCount(); got != 2 {
		t.Errorf("session count = %d, want 2", got)
	}
	if got := hub.GetActiveSessionCount(); got != 1 {
		t.Errorf("active count = %d, want 1", got)
	}
	if got := hub.GetTotalPlayerCount(); got != 12 {
		t.Errorf("player count = %d, want 12", got)
	}
}

// stallingSink blocks the session-ended write until released, holding
// the session lock inside EndSession
type stallingSink struct {
	gate chan struct{}
}

func (s *stallingSink) RecordEvent(sessionID string, event domain.Event) error {
	if event.Type == domain.EventGameEnded {
		<-s.gate
	}
	return nil
}

func (s *stallingSink) ApplyParticipantDelta(string, map[string]any) error { return nil }

func TestDeleteSessionDoesNotBlockRegistry(t *testing.T) {
	sink := &stallingSink{gate: make(chan struct{})}
	var once sync.Once
	release := func() { once.Do(func() { close(sink.gate) }) }

	hub := NewHub(slog.Default(), Deps{Events: sink})
	t.Cleanup(hub.Close)
	t.Cleanup(release)

	stalled, err := hub.StartSession(testPlayers(5), nil, manualSettings(false))
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	spare, err := hub.StartSession(testPlayers(5), nil, manualSettings(false))
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}

	done := make(chan struct{})
	go func() {
		hub.DeleteSession(stalled.RoomCode())
		close(done)
	}()

	// The delete is parked inside the session's cancellation, but the
	// registry must already have let go of the room.
	deadline := time.Now().Add(2 * time.Second)
	for hub.GetSessionCount() != 1 {
		if time.Now().After(deadline) {
			t.Fatal("registry still holds the deleted session")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if _, err := hub.GetSession(spare.RoomCode()); err != nil {
		t.Fatalf("unrelated session lookup: %v", err)
	}
	if got := hub.GetTotalPlayerCount(); got != 5 {
		t.Errorf("player count = %d, want 5", got)
	}

	select {
	case <-done:
		t.Fatal("delete finished before the cancellation was released")
	default:
	}

	release()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("delete never finished")
	}
	if stalled.Active() {
		t.Error("deleted session should be cancelled")
	}
}
