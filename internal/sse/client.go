package sse

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/mcoot/undercover/internal/api/response"
	"github.com/mcoot/undercover/internal/model"
)

const (
	// Time between keepalive pings
	pingPeriod = 30 * time.Second

	// Buffer size for outgoing events
	sendBufferSize = 256
)

// Client is one streaming connection of a player. Both SSE streams and
// WebSocket connections consume events through it.
type Client struct {
	hub         *Hub
	playerID    model.PlayerID
	send        chan model.Event
	connectedAt time.Time
}

// NewClient creates a new client for a hub
func NewClient(hub *Hub, playerID model.PlayerID) *Client {
	return &Client{
		hub:         hub,
		playerID:    playerID,
		send:        make(chan model.Event, sendBufferSize),
		connectedAt: time.Now(),
	}
}

// Events is closed when the client is detached or the hub shuts down
func (c *Client) Events() <-chan model.Event {
	return c.send
}

// RoomID returns the room the client is subscribed to
func (c *Client) RoomID() model.RoomID {
	return c.hub.roomID
}

// PlayerID returns the player owning the connection
func (c *Client) PlayerID() model.PlayerID {
	return c.playerID
}

// Close unregisters the client from its hub
func (c *Client) Close() {
	c.hub.Unregister(c)
}

// ServeSSE streams a client's events until it is detached or the request
// ends. hello is sent first as the "connected" event.
func ServeSSE(w http.ResponseWriter, r *http.Request, client *Client, hello any, logger *slog.Logger) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	if !writeEvent(w, "connected", hello, logger) {
		return
	}
	flusher.Flush()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-client.send:
			if !ok {
				return
			}
			if !writeEvent(w, string(event.Type), response.EventFromModel(event), logger) {
				return
			}
			flusher.Flush()

		case <-ticker.C:
			if _, err := w.Write([]byte(": keepalive\n\n")); err != nil {
				return
			}
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}

func writeEvent(w http.ResponseWriter, name string, data any, logger *slog.Logger) bool {
	payload, err := json.Marshal(data)
	if err != nil {
		logger.Error("sse failed to encode event",
			slog.String("event", name),
			slog.Any("error", err))
		return true
	}
	_, err = w.Write(formatSSEMessage(name, string(payload)))
	return err == nil
}
