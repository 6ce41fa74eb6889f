package ws

import "encoding/json"

// Action names accepted from clients
const (
	ActionCreate         = "/game/create"
	ActionJoin           = "/game/join"
	ActionSettingBlank   = "/game/setting/blank"
	ActionSettingSpy     = "/game/setting/spy"
	ActionSettingRandom  = "/game/setting/isRandom"
	ActionQuit           = "/game/quit"
	ActionHost           = "/game/host"
	ActionStart          = "/game/start"
	ActionReport         = "/game/report"
	ActionKick           = "/game/kick"
	ActionEnd            = "/game/end"
	ActionMessage        = "/message"
	ActionUpdateUsername = "/user/username"
	ActionUpdateAvatar   = "/user/avatar"
)

// Server-only frame names
const (
	EventError = "error"
	EventRoom  = "room"
)

// Frame is a client request
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// OutFrame is a frame sent to the client: a room event, a reply to an
// action, or an error
type OutFrame struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}
