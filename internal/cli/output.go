package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		_, _ = fmt.Fprintln(o.w, string(data))
	} else {
		_, _ = fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Player:
		o.printPlayer(v)
	case AuthResult:
		o.printAuthResult(v)
	case Room:
		o.printRoom(v)
	case Settings:
		o.printSettings(v)
	case Reveal:
		o.printf("Your word: %s\n", v.Word)
	case ReportResult:
		o.printf("Reported so far: %s\n", joinOrNone(v.Reported))
	case HealthResult:
		o.printf("Status: %s\nRooms: %d\n", v.Status, v.Rooms)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Player response type (matches API)
type Player struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Avatar      string `json:"avatar,omitempty"`
}

// AuthResult combines player and token
type AuthResult struct {
	Player       Player `json:"player"`
	SessionToken string `json:"session_token"`
}

// Settings response type
type Settings struct {
	BlankCount int  `json:"blank_count"`
	SpyCount   int  `json:"spy_count"`
	IsRandom   bool `json:"is_random"`
}

// WordPair response type
type WordPair struct {
	Civilian string `json:"civilian"`
	Spy      string `json:"spy"`
}

// RoomPlayer response type
type RoomPlayer struct {
	PlayerID    string `json:"player_id"`
	DisplayName string `json:"display_name"`
	Avatar      string `json:"avatar,omitempty"`
	IsHost      bool   `json:"is_host"`
	Role        string `json:"role,omitempty"`
	Reported    bool   `json:"reported"`
	Connected   bool   `json:"connected"`
}

// Room response type
type Room struct {
	ID       string       `json:"id"`
	State    string       `json:"state"`
	Settings Settings     `json:"settings"`
	HostID   string       `json:"host_id"`
	Players  []RoomPlayer `json:"players"`
	Words    *WordPair    `json:"words,omitempty"`
	Winner   string       `json:"winner,omitempty"`
}

// Reveal response type
type Reveal struct {
	PlayerID string `json:"player_id"`
	Word     string `json:"word"`
}

// ReportResult response type
type ReportResult struct {
	Reported []string `json:"reported"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
	Rooms  int    `json:"rooms"`
}

func (o *Output) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(o.w, format, args...)
}

func (o *Output) printPlayer(p Player) {
	o.printf("Player: %s (%s)\n", p.DisplayName, p.ID)
	if p.Avatar != "" {
		o.printf("Avatar: %s\n", p.Avatar)
	}
}

func (o *Output) printAuthResult(a AuthResult) {
	o.printPlayer(a.Player)
	o.printf("Token: %s\n", a.SessionToken)
}

func (o *Output) printSettings(s Settings) {
	o.printf("Spies: %d  Blanks: %d  Random: %t\n", s.SpyCount, s.BlankCount, s.IsRandom)
}

func (o *Output) printRoom(r Room) {
	o.printf("Room: %s\n", r.ID)
	o.printf("State: %s\n", r.State)
	o.printSettings(r.Settings)
	if r.Words != nil {
		o.printf("Words: civilian=%s spy=%s\n", r.Words.Civilian, r.Words.Spy)
	}
	if r.Winner != "" {
		o.printf("Winner: %s\n", r.Winner)
	}
	o.printf("Players (%d):\n", len(r.Players))
	for _, p := range r.Players {
		var tags []string
		if p.IsHost {
			tags = append(tags, "host")
		}
		if p.Role != "" {
			tags = append(tags, p.Role)
		}
		if p.Reported {
			tags = append(tags, "reported")
		}
		if !p.Connected {
			tags = append(tags, "offline")
		}
		suffix := ""
		if len(tags) > 0 {
			suffix = " [" + strings.Join(tags, ", ") + "]"
		}
		o.printf("  - %s (%s)%s\n", p.DisplayName, p.PlayerID, suffix)
	}
}

func joinOrNone(ids []string) string {
	if len(ids) == 0 {
		return "none"
	}
	return strings.Join(ids, ", ")
}
