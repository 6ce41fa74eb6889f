package request

// CreateGuestRequest is the request body for creating a guest player
type CreateGuestRequest struct {
	DisplayName string `json:"display_name"`
	Avatar      string `json:"avatar,omitempty"`
}

// UpdatePlayerRequest is the request body for updating the current player.
// Omitted fields are left unchanged.
type UpdatePlayerRequest struct {
	DisplayName *string `json:"display_name,omitempty"`
	Avatar      *string `json:"avatar,omitempty"`
}

// CountRequest sets a role count
type CountRequest struct {
	Count *int `json:"count"`
}

// IsRandomRequest toggles random role assignment
type IsRandomRequest struct {
	IsRandom *bool `json:"is_random"`
}

// PlayerTargetRequest names another player in the room
type PlayerTargetRequest struct {
	PlayerID string `json:"player_id"`
}

// StartGameRequest is the request body for starting a round. Both words
// empty draws a pair from the word bank.
type StartGameRequest struct {
	CivilianWord string `json:"civilian_word,omitempty"`
	SpyWord      string `json:"spy_word,omitempty"`
}

// EndGameRequest declares the winner of the round
type EndGameRequest struct {
	Winner string `json:"winner"`
}

// MessageRequest is a chat line
type MessageRequest struct {
	Text string `json:"text"`
}

// JoinRoomRequest names the room to join over the WebSocket gateway
type JoinRoomRequest struct {
	RoomID string `json:"room_id"`
}
