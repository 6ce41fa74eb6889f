package model

import "time"

// RoomID is a short human-readable room code
type RoomID string

// RoomState is the lifecycle phase of a room
type RoomState string

const (
	RoomStateLobby      RoomState = "lobby"
	RoomStateInProgress RoomState = "in_progress"
	RoomStateEnded      RoomState = "ended"
)

// Role is the secret part a seated player plays during a round
type Role string

const (
	RoleUnset    Role = ""
	RoleCivilian Role = "civilian"
	RoleBlank    Role = "blank"
	RoleSpy      Role = "spy"
)

// RoomSettings is the host-controlled configuration for the next round
type RoomSettings struct {
	BlankCount int
	SpyCount   int
	IsRandom   bool // shuffle roles; false assigns in seat order
}

// DefaultRoomSettings returns the settings a new room starts with
func DefaultRoomSettings() RoomSettings {
	return RoomSettings{
		BlankCount: 0,
		SpyCount:   1,
		IsRandom:   true,
	}
}

// WordPair holds the two secret words of a round
type WordPair struct {
	Civilian string
	Spy      string
}

// Seat is a player's room-local state
type Seat struct {
	PlayerID  PlayerID
	IsHost    bool
	Role      Role
	Reported  bool
	Connected bool
	JoinedAt  time.Time
}

// RoomSnapshot is a point-in-time copy of a room, safe to hand out
// after the room lock is released. Roles and words are only filled in
// once the round has ended.
type RoomSnapshot struct {
	ID        RoomID
	State     RoomState
	Settings  RoomSettings
	Seats     []Seat
	HostID    PlayerID
	Words     *WordPair
	Winner    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Seat returns the seat for the given player, or nil
func (s *RoomSnapshot) Seat(id PlayerID) *Seat {
	for i := range s.Seats {
		if s.Seats[i].PlayerID == id {
			return &s.Seats[i]
		}
	}
	return nil
}

// Reveal is what a single player is allowed to learn about their own role
type Reveal struct {
	PlayerID PlayerID
	Word     string
}

// RoomView is a room snapshot joined with the current identity of every
// seated player
type RoomView struct {
	Room    RoomSnapshot
	Players map[PlayerID]Player
}

// Player returns the identity for a seated player, falling back to a bare
// ID when the identity could not be loaded
func (v *RoomView) Player(id PlayerID) Player {
	if p, ok := v.Players[id]; ok {
		return p
	}
	return Player{ID: id}
}
