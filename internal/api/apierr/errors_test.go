package apierr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mcoot/undercover/internal/model"
	"github.com/mcoot/undercover/internal/services/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusAndCode(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"room not found", model.ErrRoomNotFound, http.StatusNotFound, "ROOM_NOT_FOUND"},
		{"not in room", model.ErrNotInRoom, http.StatusNotFound, "NOT_IN_ROOM"},
		{"not host", model.ErrNotHost, http.StatusForbidden, "NOT_HOST"},
		{"cannot kick self", model.ErrCannotKickSelf, http.StatusForbidden, "CANNOT_KICK_SELF"},
		{"already started", model.ErrGameAlreadyStarted, http.StatusConflict, "GAME_ALREADY_STARTED"},
		{"already in room", model.ErrIdentityAlreadyInRoom, http.StatusConflict, "IDENTITY_ALREADY_IN_ROOM"},
		{"not enough players", model.ErrNotEnoughPlayers, http.StatusUnprocessableEntity, "NOT_ENOUGH_PLAYERS"},
		{"invalid word pair", model.ErrInvalidWordPair, http.StatusUnprocessableEntity, "INVALID_WORD_PAIR"},
		{"wrapped game error", fmt.Errorf("start: %w", model.ErrNotHost), http.StatusForbidden, "NOT_HOST"},
		{"internal game error", model.ErrInternal, http.StatusInternalServerError, CodeInternalError},
		{"invalid session", identity.ErrInvalidSession, http.StatusUnauthorized, CodeUnauthorized},
		{"bad request", NewInvalidRequestError("bad"), http.StatusBadRequest, CodeInvalidRequest},
		{"unknown error", errors.New("redis down"), http.StatusInternalServerError, CodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, StatusOf(tt.err))
			assert.Equal(t, tt.code, FromError(tt.err).Code)
		})
	}
}

func TestWriteErrorHidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, errors.New("dial tcp 10.0.0.1:6379: connection refused"))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, CodeInternalError, body.Error.Code)
	assert.NotContains(t, body.Error.Message, "6379")
}
