package game

import "mafia/internal/domain"

// EventSink receives the append-only event stream and participant
// state deltas for persistence. Implementations are write-behind and
// best-effort: failures are logged by the caller and never block or
// fail gameplay.
type EventSink interface {
	RecordEvent(sessionID string, event domain.Event) error
	ApplyParticipantDelta(participantID string, fields map[string]any) error
}

// Broadcaster publishes session events to connected clients. It is
// invoked synchronously under the session lock and must not block and
// must not call back into the session.
type Broadcaster interface {
	Publish(sessionID string, event domain.Event)
}

// NameResolver resolves participant ids to display names. Used only
// for human-readable descriptions, never for authorization.
type NameResolver interface {
	DisplayNameOf(participantID string) string
}

// NopSink discards events and deltas
type NopSink struct{}

func (NopSink) RecordEvent(string, domain.Event) error             { return nil }
func (NopSink) ApplyParticipantDelta(string, map[string]any) error { return nil }

// NopBroadcaster discards published events
type NopBroadcaster struct{}

func (NopBroadcaster) Publish(string, domain.Event) {}
