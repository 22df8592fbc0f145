package ws

import (
	"log/slog"
	"sync"

	"mafia/internal/domain"
)

// Broker fans session events out to the room's connected clients. It
// implements the game broadcast interface; Publish never blocks, slow
// clients drop messages instead of stalling the session lock.
type Broker struct {
	mu     sync.RWMutex
	rooms  map[string]map[*Client]bool
	logger *slog.Logger
}

// NewBroker creates an event broker
func NewBroker(logger *slog.Logger) *Broker {
	return &Broker{
		rooms:  make(map[string]map[*Client]bool),
		logger: logger,
	}
}

// Publish sends an event to every client subscribed to the session
func (b *Broker) Publish(sessionID string, event domain.Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for client := range b.rooms[sessionID] {
		client.Send(NewServerMessage(MsgEvent, &EventPayload{Event: event}))
	}
}

func (b *Broker) subscribe(sessionID string, client *Client) {
	b.mu.Lock()
	defer b.mu.Unlock()

	clients, ok := b.rooms[sessionID]
	if !ok {
		clients = make(map[*Client]bool)
		b.rooms[sessionID] = clients
	}
	clients[client] = true
}

func (b *Broker) unsubscribe(sessionID string, client *Client) {
	b.mu.Lock()
	defer b.mu.Unlock()

	clients, ok := b.rooms[sessionID]
	if !ok {
		return
	}
	delete(clients, client)
	if len(clients) == 0 {
		delete(b.rooms, sessionID)
	}
}

// SubscriberCount returns how many clients follow the session
func (b *Broker) SubscriberCount(sessionID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.rooms[sessionID])
}

// Close disconnects every client
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, clients := range b.rooms {
		for client := range clients {
			client.Close()
		}
	}
	b.rooms = make(map[string]map[*Client]bool)
}
