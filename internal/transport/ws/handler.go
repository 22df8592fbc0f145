package ws

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"mafia/internal/game"
)

// Handler upgrades connections and attaches them to their room's
// event stream
type Handler struct {
	hub      *game.Hub
	broker   *Broker
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *game.Hub, broker *Broker, logger *slog.Logger) *Handler {
	return &Handler{
		hub:    hub,
		broker: broker,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// Allow all origins for development
				// In production, you should validate the origin
				return true
			},
		},
		logger: logger,
	}
}

// ServeHTTP handles WebSocket upgrade requests
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	roomCode := r.URL.Query().Get("roomCode")
	if roomCode == "" {
		http.Error(w, "roomCode is required", http.StatusBadRequest)
		return
	}

	session, err := h.hub.GetSession(strings.ToUpper(roomCode))
	if err != nil {
		http.Error(w, "Room not found", http.StatusNotFound)
		return
	}

	// The participant id ties commands sent over this socket to a
	// roster entry; spectators omit it and only receive events.
	participantID := r.URL.Query().Get("participantId")

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	client := NewClient(conn, session, h.broker, participantID, h.logger)
	h.broker.subscribe(session.ID(), client)

	h.logger.Info("websocket connected",
		"roomCode", roomCode,
		"participantID", participantID,
	)

	client.sendConnected()
	client.Run()
}
