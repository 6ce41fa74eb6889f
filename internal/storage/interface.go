package storage

import (
	"context"

	"github.com/mcoot/undercover/internal/model"
)

// Storage is the session store: identities, connection sessions and
// room bindings, plus the word bank. Live room state is never stored here.
type Storage interface {
	// Player operations
	SavePlayer(ctx context.Context, player *model.Player) error
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)
	DeletePlayer(ctx context.Context, id model.PlayerID) error

	// Session operations
	SaveSession(ctx context.Context, session *model.Session) error
	GetSession(ctx context.Context, token string) (*model.Session, error)
	DeleteSession(ctx context.Context, token string) error

	// Room binding operations
	SaveRoomBinding(ctx context.Context, playerID model.PlayerID, roomID model.RoomID) error
	// GetRoomBinding returns an empty RoomID when the player is not bound
	GetRoomBinding(ctx context.Context, playerID model.PlayerID) (model.RoomID, error)
	DeleteRoomBinding(ctx context.Context, playerID model.PlayerID) error
	// DeleteRoomBindingIf removes the binding only while it still points at roomID
	DeleteRoomBindingIf(ctx context.Context, playerID model.PlayerID, roomID model.RoomID) (bool, error)

	// Word bank operations
	GetWordPairs(ctx context.Context) ([]model.WordPair, error)
	SaveWordPairs(ctx context.Context, pairs []model.WordPair) error
}
