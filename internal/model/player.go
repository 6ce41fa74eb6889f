package model

import "time"

// PlayerID uniquely identifies a player across the system
type PlayerID string

// Player is a persistent player identity. Rooms reference it by ID only,
// so renames and avatar changes show up in the next room projection.
type Player struct {
	ID          PlayerID
	DisplayName string
	Avatar      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Session binds a connection token to a player identity
type Session struct {
	Token     string
	PlayerID  PlayerID
	CreatedAt time.Time
	ExpiresAt time.Time
}
