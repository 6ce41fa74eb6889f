package model

import "errors"

// ErrorKind groups errors by how the caller should react to them
type ErrorKind string

const (
	KindNotFound      ErrorKind = "not_found"
	KindAuthorization ErrorKind = "authorization"
	KindConflict      ErrorKind = "conflict"
	KindValidation    ErrorKind = "validation"
	KindInternal      ErrorKind = "internal"
)

// GameError is a typed failure returned by room and game operations.
// It is surfaced to the acting connection only.
type GameError struct {
	Code    string
	Kind    ErrorKind
	Message string
}

// Error implements the error interface
func (e *GameError) Error() string {
	return e.Message
}

func newError(code string, kind ErrorKind, msg string) *GameError {
	return &GameError{Code: code, Kind: kind, Message: msg}
}

// Common errors used across the application
var (
	// Not found
	ErrRoomNotFound    = newError("ROOM_NOT_FOUND", KindNotFound, "room not found")
	ErrTargetNotMember = newError("TARGET_NOT_MEMBER", KindNotFound, "target player is not in the room")
	ErrPlayerNotFound  = newError("PLAYER_NOT_FOUND", KindNotFound, "player not found")
	ErrNotInRoom       = newError("NOT_IN_ROOM", KindNotFound, "player is not in a room")

	// Authorization
	ErrNotHost        = newError("NOT_HOST", KindAuthorization, "player is not the host")
	ErrCannotKickSelf = newError("CANNOT_KICK_SELF", KindAuthorization, "host cannot kick themselves")

	// State conflicts
	ErrGameAlreadyStarted    = newError("GAME_ALREADY_STARTED", KindConflict, "game has already started")
	ErrGameNotInProgress     = newError("GAME_NOT_IN_PROGRESS", KindConflict, "no game in progress")
	ErrAlreadyMember         = newError("ALREADY_MEMBER", KindConflict, "player is already in the room")
	ErrIdentityAlreadyInRoom = newError("IDENTITY_ALREADY_IN_ROOM", KindConflict, "player is already in another room")

	// Validation
	ErrInvalidSetting   = newError("INVALID_SETTING", KindValidation, "invalid room setting")
	ErrNotEnoughPlayers = newError("NOT_ENOUGH_PLAYERS", KindValidation, "not enough players for the configured roles")
	ErrInvalidWordPair  = newError("INVALID_WORD_PAIR", KindValidation, "words must be non-empty and different")
	ErrInvalidMessage   = newError("INVALID_MESSAGE", KindValidation, "message must be between 1 and 500 characters")
	ErrInvalidName      = newError("INVALID_NAME", KindValidation, "display name must be between 1 and 32 characters")
	ErrInvalidAvatar    = newError("INVALID_AVATAR", KindValidation, "avatar must be at most 256 characters")

	// Internal
	ErrInternal = newError("INTERNAL", KindInternal, "internal error")

	// Session store errors
	ErrSessionNotFound = errors.New("session not found")
	ErrWordBankEmpty   = errors.New("word bank is empty")
)

// KindOf classifies an error. Errors that are not GameErrors are internal.
func KindOf(err error) ErrorKind {
	var ge *GameError
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return KindInternal
}
