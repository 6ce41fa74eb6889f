package sse

import (
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/undercover/internal/model"
)

const hubBufferSize = 256

// message is either an event to deliver or a request to detach a player.
// Both travel on one channel so detaches never overtake earlier events.
type message struct {
	event  *model.Event
	detach model.PlayerID
}

// Hub fans events out to the streaming clients of a single room
type Hub struct {
	roomID  model.RoomID
	clients map[*Client]bool
	closed  bool
	mu      sync.RWMutex
	logger  *slog.Logger

	messages  chan message
	done      chan struct{}
	closeOnce sync.Once
}

// NewHub creates a new Hub for a room
func NewHub(roomID model.RoomID, logger *slog.Logger) *Hub {
	return &Hub{
		roomID:   roomID,
		clients:  make(map[*Client]bool),
		logger:   logger.With(slog.String("room_id", string(roomID))),
		messages: make(chan message, hubBufferSize),
		done:     make(chan struct{}),
	}
}

// RoomID returns the room this hub serves
func (h *Hub) RoomID() model.RoomID {
	return h.roomID
}

// Run starts the hub's event loop
func (h *Hub) Run() {
	h.logger.Debug("sse hub started")
	for {
		select {
		case msg := <-h.messages:
			if msg.event != nil {
				h.deliver(*msg.event)
			} else {
				h.detach(msg.detach)
			}

		case <-h.done:
			return
		}
	}
}

func (h *Hub) deliver(event model.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	sent, dropped := 0, 0
	for client := range h.clients {
		if event.IsPrivate() && client.playerID != event.Recipient {
			continue
		}
		select {
		case client.send <- event:
			sent++
		default:
			dropped++
			h.logger.Warn("sse event dropped - client buffer full",
				slog.String("player_id", string(client.playerID)),
				slog.String("event", string(event.Type)))
		}
	}
	if dropped > 0 {
		h.logger.Warn("sse broadcast partial failure",
			slog.Int("sent", sent),
			slog.Int("dropped", dropped))
	}
}

func (h *Hub) detach(playerID model.PlayerID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		if client.playerID == playerID {
			delete(h.clients, client)
			close(client.send)
		}
	}
	h.logger.Debug("sse player detached", slog.String("player_id", string(playerID)))
}

// Register adds a client to the hub. It returns false if the hub is closed.
func (h *Hub) Register(client *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return false
	}
	h.clients[client] = true
	h.logger.Info("sse client registered",
		slog.String("player_id", string(client.playerID)),
		slog.Int("total_clients", len(h.clients)))
	return true
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.send)
	h.logger.Info("sse client unregistered",
		slog.String("player_id", string(client.playerID)),
		slog.Duration("connection_duration", time.Since(client.connectedAt)),
		slog.Int("total_clients", len(h.clients)))
}

// Broadcast queues an event for every client it is addressed to
func (h *Hub) Broadcast(event model.Event) {
	select {
	case h.messages <- message{event: &event}:
	case <-h.done:
	default:
		h.logger.Warn("sse broadcast dropped - hub buffer full",
			slog.String("event", string(event.Type)))
	}
}

// Detach closes every client of a player once earlier events are delivered
func (h *Hub) Detach(playerID model.PlayerID) {
	select {
	case h.messages <- message{detach: playerID}:
	case <-h.done:
	}
}

// Close shuts down the hub and ends every client stream
func (h *Hub) Close() {
	h.closeOnce.Do(func() {
		h.mu.Lock()
		h.closed = true
		count := len(h.clients)
		for client := range h.clients {
			close(client.send)
			delete(h.clients, client)
		}
		h.mu.Unlock()
		close(h.done)
		h.logger.Info("sse hub stopped", slog.Int("disconnected_clients", count))
	})
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// formatSSEMessage formats an SSE message with event name and data.
// Multi-line data gets a "data: " prefix on each line.
func formatSSEMessage(eventName, data string) []byte {
	msg := "event: " + eventName + "\n"
	for _, line := range splitLines(data) {
		msg += "data: " + line + "\n"
	}
	msg += "\n"
	return []byte(msg)
}

// splitLines splits a string into lines, handling various line endings
func splitLines(s string) []string {
	var lines []string
	var current string
	for _, r := range s {
		if r == '\n' {
			lines = append(lines, current)
			current = ""
		} else if r != '\r' {
			current += string(r)
		}
	}
	if current != "" {
		lines = append(lines, current)
	}
	if len(lines) == 0 {
		lines = append(lines, "")
	}
	return lines
}

// HubManager manages hubs for all rooms
type HubManager struct {
	hubs   map[model.RoomID]*Hub
	mu     sync.RWMutex
	logger *slog.Logger
}

// NewHubManager creates a new HubManager
func NewHubManager(logger *slog.Logger) *HubManager {
	return &HubManager{
		hubs:   make(map[model.RoomID]*Hub),
		logger: logger.With(slog.String("component", "sse")),
	}
}

// GetOrCreateHub returns the hub for a room, creating one if it doesn't exist
func (m *HubManager) GetOrCreateHub(roomID model.RoomID) *Hub {
	m.mu.Lock()
	defer m.mu.Unlock()

	if hub, ok := m.hubs[roomID]; ok {
		return hub
	}

	hub := NewHub(roomID, m.logger)
	m.hubs[roomID] = hub
	go hub.Run()
	return hub
}

// GetHub returns the hub for a room, or nil if it doesn't exist
func (m *HubManager) GetHub(roomID model.RoomID) *Hub {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hubs[roomID]
}

// Subscribe registers a new client for a player on the room's hub
func (m *HubManager) Subscribe(roomID model.RoomID, playerID model.PlayerID) *Client {
	for {
		hub := m.GetOrCreateHub(roomID)
		client := NewClient(hub, playerID)
		if hub.Register(client) {
			return client
		}
		// Lost a race with cleanup; the closed hub is already out of the map.
	}
}

// RemoveHub removes and closes a hub
func (m *HubManager) RemoveHub(roomID model.RoomID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if hub, ok := m.hubs[roomID]; ok {
		hub.Close()
		delete(m.hubs, roomID)
		m.logger.Info("sse hub removed", slog.String("room_id", string(roomID)))
	}
}

// HubCount returns the number of live hubs
func (m *HubManager) HubCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.hubs)
}

// CleanupEmptyHubs removes hubs with no clients
func (m *HubManager) CleanupEmptyHubs() {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, hub := range m.hubs {
		if hub.ClientCount() == 0 {
			hub.Close()
			delete(m.hubs, id)
			removed++
		}
	}
	if removed > 0 {
		m.logger.Info("sse empty hubs cleaned up", slog.Int("removed", removed))
	}
}

// CloseAll shuts every hub down
func (m *HubManager) CloseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, hub := range m.hubs {
		hub.Close()
		delete(m.hubs, id)
	}
}
