package response

import (
	"time"

	"github.com/mcoot/undercover/internal/model"
	"github.com/mcoot/undercover/internal/services/identity"
)

// Player represents a player in API responses
type Player struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Avatar      string `json:"avatar,omitempty"`
}

// PlayerFromModel converts a model.Player to a response Player
func PlayerFromModel(p *model.Player) Player {
	return Player{
		ID:          string(p.ID),
		DisplayName: p.DisplayName,
		Avatar:      p.Avatar,
	}
}

// AuthResponse is the response for creating a guest
type AuthResponse struct {
	Player       Player    `json:"player"`
	SessionToken string    `json:"session_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// AuthResponseFromSession creates an AuthResponse from a session
func AuthResponseFromSession(s *identity.Session) AuthResponse {
	return AuthResponse{
		Player:       PlayerFromModel(&s.Player),
		SessionToken: s.Token,
		ExpiresAt:    s.ExpiresAt,
	}
}

// Settings represents room settings
type Settings struct {
	BlankCount int  `json:"blank_count"`
	SpyCount   int  `json:"spy_count"`
	IsRandom   bool `json:"is_random"`
}

// SettingsFromModel converts model.RoomSettings
func SettingsFromModel(s model.RoomSettings) Settings {
	return Settings{
		BlankCount: s.BlankCount,
		SpyCount:   s.SpyCount,
		IsRandom:   s.IsRandom,
	}
}

// WordPair represents the two words of a finished round
type WordPair struct {
	Civilian string `json:"civilian"`
	Spy      string `json:"spy"`
}

// WordPairFromModel converts model.WordPair
func WordPairFromModel(w model.WordPair) WordPair {
	return WordPair{Civilian: w.Civilian, Spy: w.Spy}
}

// RoomPlayer represents a seated player
type RoomPlayer struct {
	PlayerID    string `json:"player_id"`
	DisplayName string `json:"display_name"`
	Avatar      string `json:"avatar,omitempty"`
	IsHost      bool   `json:"is_host"`
	Role        string `json:"role,omitempty"`
	Reported    bool   `json:"reported"`
	Connected   bool   `json:"connected"`
}

// Room represents a room in API responses
type Room struct {
	ID        string       `json:"id"`
	State     string       `json:"state"`
	Settings  Settings     `json:"settings"`
	HostID    string       `json:"host_id"`
	Players   []RoomPlayer `json:"players"`
	Words     *WordPair    `json:"words,omitempty"`
	Winner    string       `json:"winner,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// RoomFromView converts a model.RoomView
func RoomFromView(v *model.RoomView) Room {
	players := make([]RoomPlayer, len(v.Room.Seats))
	for i, seat := range v.Room.Seats {
		p := v.Player(seat.PlayerID)
		players[i] = RoomPlayer{
			PlayerID:    string(seat.PlayerID),
			DisplayName: p.DisplayName,
			Avatar:      p.Avatar,
			IsHost:      seat.IsHost,
			Role:        string(seat.Role),
			Reported:    seat.Reported,
			Connected:   seat.Connected,
		}
	}

	room := Room{
		ID:        string(v.Room.ID),
		State:     string(v.Room.State),
		Settings:  SettingsFromModel(v.Room.Settings),
		HostID:    string(v.Room.HostID),
		Players:   players,
		Winner:    v.Room.Winner,
		CreatedAt: v.Room.CreatedAt,
		UpdatedAt: v.Room.UpdatedAt,
	}
	if v.Room.Words != nil {
		words := WordPairFromModel(*v.Room.Words)
		room.Words = &words
	}
	return room
}

// Reveal is a player's own word
type Reveal struct {
	PlayerID string `json:"player_id"`
	Word     string `json:"word"`
}

// RevealFromModel converts model.Reveal
func RevealFromModel(r model.Reveal) Reveal {
	return Reveal{PlayerID: string(r.PlayerID), Word: r.Word}
}

// ReportResponse lists everyone reported so far this round
type ReportResponse struct {
	Reported []string `json:"reported"`
}

// ReportResponseFromIDs converts reported player IDs
func ReportResponseFromIDs(ids []model.PlayerID) ReportResponse {
	return ReportResponse{Reported: playerIDs(ids)}
}

// HealthResponse reports liveness
type HealthResponse struct {
	Status string `json:"status"`
	Rooms  int    `json:"rooms"`
}

func playerIDs(ids []model.PlayerID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}
