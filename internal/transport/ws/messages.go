package ws

import (
	"time"

	"mafia/internal/domain"
	"mafia/internal/game"
)

// MessageType represents the type of WebSocket message
type MessageType string

// Client → Server message types
const (
	MsgSubmitAction  MessageType = "submit_action"
	MsgCastVote      MessageType = "cast_vote"
	MsgRequestPhase  MessageType = "request_phase"
	MsgForceEndPhase MessageType = "force_end_phase"
	MsgPing          MessageType = "ping"
)

// Server → Client message types
const (
	MsgConnected    MessageType = "connected"
	MsgEvent        MessageType = "event"
	MsgActionResult MessageType = "action_result"
	MsgPhaseInfo    MessageType = "phase_info"
	MsgError        MessageType = "error"
	MsgPong         MessageType = "pong"
)

// ClientMessage represents a message from client to server
type ClientMessage struct {
	Type    MessageType `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// ServerMessage represents a message from server to client
type ServerMessage struct {
	Type      MessageType `json:"type"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp string      `json:"timestamp"`
}

// NewServerMessage creates a new server message with current timestamp
func NewServerMessage(msgType MessageType, payload interface{}) *ServerMessage {
	return &ServerMessage{
		Type:      msgType,
		Payload:   payload,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// Client message payloads

// SubmitActionPayload is the payload for submit_action message
type SubmitActionPayload struct {
	Type     string            `json:"type"`
	TargetID string            `json:"targetId,omitempty"`
	Details  map[string]string `json:"details,omitempty"`
}

// CastVotePayload is the payload for cast_vote; an empty target abstains
type CastVotePayload struct {
	TargetID string `json:"targetId,omitempty"`
}

// Server message payloads

// ConnectedPayload is the payload for connected message
type ConnectedPayload struct {
	ParticipantID string         `json:"participantId"`
	RoomCode      string         `json:"roomCode"`
	SessionID     string         `json:"sessionId"`
	Phase         game.PhaseInfo `json:"phase"`
}

// EventPayload wraps a game event for the room stream
type EventPayload struct {
	Event domain.Event `json:"event"`
}

// ActionResultPayload reports whether a command was accepted
type ActionResultPayload struct {
	Request  MessageType `json:"request"`
	Accepted bool        `json:"accepted"`
	Reason   string      `json:"reason,omitempty"`
}

// ErrorPayload is the payload for error message
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes
const (
	ErrCodeInvalidMessage = "INVALID_MESSAGE"
	ErrCodeRoomNotFound   = "ROOM_NOT_FOUND"
	ErrCodeInternalError  = "INTERNAL_ERROR"
)
