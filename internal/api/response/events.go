package response

import (
	"time"

	"github.com/mcoot/undercover/internal/model"
)

// Event is the wire form of a room event, shared by SSE and WebSocket
type Event struct {
	Type      string    `json:"type"`
	RoomID    string    `json:"room_id"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// PlayerJoinedData is sent when a player takes a seat
type PlayerJoinedData struct {
	PlayerID    string `json:"player_id"`
	DisplayName string `json:"display_name"`
	Avatar      string `json:"avatar,omitempty"`
}

// PlayerLeftData is sent when a player leaves or is kicked
type PlayerLeftData struct {
	PlayerID  string `json:"player_id"`
	NewHostID string `json:"new_host_id,omitempty"`
}

// HostChangedData is sent when the host changes
type HostChangedData struct {
	OldHostID string `json:"old_host_id"`
	NewHostID string `json:"new_host_id"`
}

// PresenceData is sent when a player's connection state changes
type PresenceData struct {
	PlayerID  string `json:"player_id"`
	Connected bool   `json:"connected"`
}

// GameStartedData is sent to the room when a round starts
type GameStartedData struct {
	PlayerCount int      `json:"player_count"`
	Settings    Settings `json:"settings"`
}

// PlayerReportedData is sent when a suspect is reported
type PlayerReportedData struct {
	ReporterID string   `json:"reporter_id"`
	TargetID   string   `json:"target_id"`
	Reported   []string `json:"reported"`
}

// GameEndedData reveals the round
type GameEndedData struct {
	Winner string            `json:"winner"`
	Words  WordPair          `json:"words"`
	Roles  map[string]string `json:"roles"`
}

// MessageData is a chat line
type MessageData struct {
	PlayerID string `json:"player_id"`
	Text     string `json:"text"`
}

// EventFromModel converts a model.Event into its wire form
func EventFromModel(e model.Event) Event {
	return Event{
		Type:      string(e.Type),
		RoomID:    string(e.RoomID),
		Timestamp: e.Timestamp,
		Data:      eventData(e.Payload),
	}
}

func eventData(payload any) any {
	switch p := payload.(type) {
	case model.PlayerJoinedPayload:
		return PlayerJoinedData{
			PlayerID:    string(p.PlayerID),
			DisplayName: p.DisplayName,
			Avatar:      p.Avatar,
		}
	case model.PlayerLeftPayload:
		return PlayerLeftData{PlayerID: string(p.PlayerID), NewHostID: string(p.NewHostID)}
	case model.HostChangedPayload:
		return HostChangedData{OldHostID: string(p.OldHostID), NewHostID: string(p.NewHostID)}
	case model.PresencePayload:
		return PresenceData{PlayerID: string(p.PlayerID), Connected: p.Connected}
	case model.PlayerUpdatedPayload:
		return PlayerFromModel(&model.Player{ID: p.PlayerID, DisplayName: p.DisplayName, Avatar: p.Avatar})
	case model.RoomSettings:
		return SettingsFromModel(p)
	case model.GameStartedPayload:
		return GameStartedData{PlayerCount: p.PlayerCount, Settings: SettingsFromModel(p.Settings)}
	case model.Reveal:
		return RevealFromModel(p)
	case model.PlayerReportedPayload:
		return PlayerReportedData{
			ReporterID: string(p.ReporterID),
			TargetID:   string(p.TargetID),
			Reported:   playerIDs(p.Reported),
		}
	case model.GameEndedPayload:
		roles := make(map[string]string, len(p.Roles))
		for id, role := range p.Roles {
			roles[string(id)] = string(role)
		}
		return GameEndedData{Winner: p.Winner, Words: WordPairFromModel(p.Words), Roles: roles}
	case model.MessagePayload:
		return MessageData{PlayerID: string(p.PlayerID), Text: p.Text}
	default:
		return p
	}
}
