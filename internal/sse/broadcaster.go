package sse

import (
	"log/slog"

	"github.com/mcoot/undercover/internal/model"
	"github.com/mcoot/undercover/internal/services/party"
)

// Broadcaster delivers room events to the room's hub
type Broadcaster struct {
	hubManager *HubManager
	logger     *slog.Logger
}

var _ party.Publisher = (*Broadcaster)(nil)

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(hubManager *HubManager, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		hubManager: hubManager,
		logger:     logger.With(slog.String("component", "sse-broadcaster")),
	}
}

// Publish delivers an event to every client in the room
func (b *Broadcaster) Publish(roomID model.RoomID, event model.Event) {
	hub := b.hubManager.GetHub(roomID)
	if hub == nil {
		return
	}
	hub.Broadcast(event)
}

// PublishToOne delivers an event to one player's clients in the room
func (b *Broadcaster) PublishToOne(roomID model.RoomID, playerID model.PlayerID, event model.Event) {
	if event.Recipient == "" {
		event.Recipient = playerID
	}
	if event.Recipient != playerID {
		b.logger.Error("private event recipient mismatch",
			slog.String("room_id", string(roomID)),
			slog.String("player_id", string(playerID)),
			slog.String("event", string(event.Type)))
		return
	}
	b.Publish(roomID, event)
}

// Detach ends the streams a player has open on the room
func (b *Broadcaster) Detach(roomID model.RoomID, playerID model.PlayerID) {
	hub := b.hubManager.GetHub(roomID)
	if hub == nil {
		return
	}
	hub.Detach(playerID)
}

// CloseRoom drops the hub of a destroyed room
func (b *Broadcaster) CloseRoom(roomID model.RoomID) {
	b.hubManager.RemoveHub(roomID)
}
