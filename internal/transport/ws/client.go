package ws

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"mafia/internal/domain"
	"mafia/internal/game"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096

	// Size of the send channel buffer
	sendBufferSize = 256
)

// Client represents a WebSocket client connection
type Client struct {
	conn          *websocket.Conn
	session       *game.Session
	broker        *Broker
	participantID string
	send          chan []byte
	done          chan struct{}
	logger        *slog.Logger
	mu            sync.Mutex
	closed        bool
}

// NewClient creates a new WebSocket client
func NewClient(conn *websocket.Conn, session *game.Session, broker *Broker, participantID string, logger *slog.Logger) *Client {
	return &Client{
		conn:          conn,
		session:       session,
		broker:        broker,
		participantID: participantID,
		send:          make(chan []byte, sendBufferSize),
		done:          make(chan struct{}),
		logger:        logger,
	}
}

// Send queues a message for delivery. A full buffer drops the message
// rather than blocking the caller.
func (c *Client) Send(message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	select {
	case c.send <- data:
		return nil
	default:
		c.logger.Warn("send buffer full, message dropped", "participantID", c.participantID)
		return nil
	}
}

// Close tears down the connection
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	c.closed = true
	close(c.done)
	return c.conn.Close()
}

// Run starts the client's read and write pumps
func (c *Client) Run() {
	go c.writePump()
	c.readPump()
}

// readPump pumps messages from the WebSocket connection
func (c *Client) readPump() {
	defer func() {
		c.broker.unsubscribe(c.session.ID(), c)
		c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Debug("websocket read error", "error", err)
			}
			break
		}

		c.handleMessage(message)
	}
}

// writePump pumps messages from the send channel to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			return
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current websocket message
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage processes an incoming message from the client
func (c *Client) handleMessage(data []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		c.sendError(ErrCodeInvalidMessage, "Invalid message format")
		return
	}

	switch msg.Type {
	case MsgSubmitAction:
		c.handleSubmitAction(msg.Payload)
	case MsgCastVote:
		c.handleCastVote(msg.Payload)
	case MsgRequestPhase:
		c.Send(NewServerMessage(MsgPhaseInfo, c.session.GetPhaseInfo()))
	case MsgForceEndPhase:
		accepted, reason := c.session.ForceEndPhase()
		c.sendActionResult(MsgForceEndPhase, accepted, reason)
	case MsgPing:
		c.sendPong()
	default:
		c.sendError(ErrCodeInvalidMessage, "Unknown message type")
	}
}

// handleSubmitAction handles a submit_action message
func (c *Client) handleSubmitAction(payload interface{}) {
	var req SubmitActionPayload
	if !decodePayload(payload, &req) || req.Type == "" {
		c.sendError(ErrCodeInvalidMessage, "Action type is required")
		return
	}

	accepted, reason := c.session.SubmitAction(c.participantID, domain.ActionType(req.Type), req.TargetID, req.Details)
	c.sendActionResult(MsgSubmitAction, accepted, reason)
}

// handleCastVote handles a cast_vote message
func (c *Client) handleCastVote(payload interface{}) {
	var req CastVotePayload
	if !decodePayload(payload, &req) {
		c.sendError(ErrCodeInvalidMessage, "Invalid payload")
		return
	}

	accepted, reason := c.session.CastVote(c.participantID, req.TargetID)
	c.sendActionResult(MsgCastVote, accepted, reason)
}

// decodePayload re-marshals a loosely typed payload into its struct form
func decodePayload(payload interface{}, dst interface{}) bool {
	if payload == nil {
		return true
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

// sendConnected sends the connected message to the client
func (c *Client) sendConnected() {
	payload := &ConnectedPayload{
		ParticipantID: c.participantID,
		RoomCode:      c.session.RoomCode(),
		SessionID:     c.session.ID(),
		Phase:         c.session.GetPhaseInfo(),
	}

	c.Send(NewServerMessage(MsgConnected, payload))
}

func (c *Client) sendActionResult(request MessageType, accepted bool, reason string) {
	c.Send(NewServerMessage(MsgActionResult, &ActionResultPayload{
		Request:  request,
		Accepted: accepted,
		Reason:   reason,
	}))
}

// sendError sends an error message to the client
func (c *Client) sendError(code, message string) {
	c.Send(NewServerMessage(MsgError, &ErrorPayload{
		Code:    code,
		Message: message,
	}))
}

// sendPong sends a pong message in response to ping
func (c *Client) sendPong() {
	c.Send(NewServerMessage(MsgPong, nil))
}
