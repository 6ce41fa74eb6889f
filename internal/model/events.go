package model

import "time"

// EventType identifies the type of event
type EventType string

const (
	// Membership events
	EventPlayerJoined  EventType = "player_joined"
	EventPlayerLeft    EventType = "player_left"
	EventPlayerKicked  EventType = "player_kicked"
	EventKicked        EventType = "kicked" // private, to the kicked player
	EventHostChanged   EventType = "host_changed"
	EventPresence      EventType = "presence"
	EventPlayerUpdated EventType = "player_updated"

	// Settings events
	EventSettingsChanged EventType = "settings_changed"

	// Round events
	EventGameStarted    EventType = "game_started"
	EventWordRevealed   EventType = "word_revealed" // private, one per player
	EventPlayerReported EventType = "player_reported"
	EventGameEnded      EventType = "game_ended"

	// Chat
	EventMessage EventType = "message"
)

// Event is a state change to fan out. An empty Recipient means the
// whole room; otherwise only that player's connections receive it.
type Event struct {
	Type      EventType
	Timestamp time.Time
	RoomID    RoomID
	Recipient PlayerID
	Payload   any
}

// IsPrivate reports whether the event targets a single player
func (e Event) IsPrivate() bool {
	return e.Recipient != ""
}

// PlayerJoinedPayload contains data for player joined events
type PlayerJoinedPayload struct {
	PlayerID    PlayerID
	DisplayName string
	Avatar      string
}

// PlayerLeftPayload contains data for player left and kicked events
type PlayerLeftPayload struct {
	PlayerID  PlayerID
	NewHostID PlayerID // empty unless the host changed
}

// HostChangedPayload contains data for host changed events
type HostChangedPayload struct {
	OldHostID PlayerID
	NewHostID PlayerID
}

// PresencePayload contains data for presence events
type PresencePayload struct {
	PlayerID  PlayerID
	Connected bool
}

// PlayerUpdatedPayload carries an identity change of a seated player
type PlayerUpdatedPayload struct {
	PlayerID    PlayerID
	DisplayName string
	Avatar      string
}

// GameStartedPayload is broadcast at round start and carries no words
type GameStartedPayload struct {
	PlayerCount int
	Settings    RoomSettings
}

// PlayerReportedPayload lists everyone reported so far this round
type PlayerReportedPayload struct {
	ReporterID PlayerID
	TargetID   PlayerID
	Reported   []PlayerID
}

// GameEndedPayload reveals the round once it is over
type GameEndedPayload struct {
	Winner string
	Words  WordPair
	Roles  map[PlayerID]Role
}

// MessagePayload is a chat line relayed to the room
type MessagePayload struct {
	PlayerID PlayerID
	Text     string
}
