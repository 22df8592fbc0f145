package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"mafia/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS events (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id TEXT    NOT NULL,
	round      INTEGER NOT NULL,
	type       TEXT    NOT NULL,
	payload    TEXT    NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_events_session ON events (session_id, id);

CREATE TABLE IF NOT EXISTS participant_deltas (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	participant_id TEXT    NOT NULL,
	fields         TEXT    NOT NULL,
	created_at     INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_deltas_participant ON participant_deltas (participant_id, id);
`

const defaultQueueSize = 256

// toMillis normalizes timestamps into millisecond precision for storage
func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

type writeOp struct {
	query string
	args  []any
}

// Store is a write-behind game history sink over SQLite. Writes are
// queued to a background writer so gameplay never waits on disk;
// failed writes are logged and dropped.
type Store struct {
	sqlDB  *sql.DB
	logger *slog.Logger

	queue chan writeOp
	wg    sync.WaitGroup

	closeOnce sync.Once
}

// Open opens the history store and applies the schema
func Open(path string, logger *slog.Logger) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	store := &Store{
		sqlDB:  sqlDB,
		logger: logger,
		queue:  make(chan writeOp, defaultQueueSize),
	}

	store.wg.Add(1)
	go store.writeLoop()

	return store, nil
}

// RecordEvent queues a game event for persistence. It only fails when
// the payload cannot be encoded or the queue is full.
func (s *Store) RecordEvent(sessionID string, event domain.Event) error {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("encode event payload: %w", err)
	}

	return s.enqueue(writeOp{
		query: `INSERT INTO events (session_id, round, type, payload, created_at) VALUES (?, ?, ?, ?, ?)`,
		args:  []any{sessionID, event.Round, string(event.Type), string(payload), toMillis(event.Timestamp)},
	})
}

// ApplyParticipantDelta queues a participant field update
func (s *Store) ApplyParticipantDelta(participantID string, fields map[string]any) error {
	encoded, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode participant delta: %w", err)
	}

	return s.enqueue(writeOp{
		query: `INSERT INTO participant_deltas (participant_id, fields, created_at) VALUES (?, ?, ?)`,
		args:  []any{participantID, string(encoded), toMillis(time.Now())},
	})
}

func (s *Store) enqueue(op writeOp) error {
	select {
	case s.queue <- op:
		return nil
	default:
		return fmt.Errorf("history queue full, write dropped")
	}
}

func (s *Store) writeLoop() {
	defer s.wg.Done()

	for op := range s.queue {
		if _, err := s.sqlDB.Exec(op.query, op.args...); err != nil {
			s.logger.Warn("history write failed", "error", err)
		}
	}
}

// StoredEvent is one persisted game event
type StoredEvent struct {
	ID        int64
	SessionID string
	Round     int
	Type      domain.EventType
	Payload   json.RawMessage
	CreatedAt time.Time
}

// SessionEvents returns a session's event log in emission order
func (s *Store) SessionEvents(ctx context.Context, sessionID string) ([]StoredEvent, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT id, session_id, round, type, payload, created_at FROM events WHERE session_id = ? ORDER BY id`,
		sessionID)
	if err != nil {
		return nil, fmt.Errorf("query session events: %w", err)
	}
	defer rows.Close()

	var events []StoredEvent
	for rows.Next() {
		var (
			ev        StoredEvent
			eventType string
			payload   string
			createdAt int64
		)
		if err := rows.Scan(&ev.ID, &ev.SessionID, &ev.Round, &eventType, &payload, &createdAt); err != nil {
			return nil, fmt.Errorf("scan event row: %w", err)
		}
		ev.Type = domain.EventType(eventType)
		ev.Payload = json.RawMessage(payload)
		ev.CreatedAt = fromMillis(createdAt)
		events = append(events, ev)
	}
	return events, rows.Err()
}

// Close drains the write queue and closes the database
func (s *Store) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.queue)
		s.wg.Wait()
		err = s.sqlDB.Close()
	})
	return err
}
