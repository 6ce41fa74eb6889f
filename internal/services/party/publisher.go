package party

//go:generate go tool mockgen -package=mocks -destination=mocks/mock_publisher.go github.com/mcoot/undercover/internal/services/party Publisher

import "github.com/mcoot/undercover/internal/model"

// Publisher fans events out to the connections bound to a room. Calls must
// not block; delivery is best effort.
type Publisher interface {
	// Publish delivers an event to every connection in the room
	Publish(roomID model.RoomID, event model.Event)
	// PublishToOne delivers an event only to the given player's connections
	PublishToOne(roomID model.RoomID, playerID model.PlayerID, event model.Event)
	// Detach stops delivering the room's events to a player who left
	Detach(roomID model.RoomID, playerID model.PlayerID)
	// CloseRoom drops every connection of a destroyed room
	CloseRoom(roomID model.RoomID)
}
