package api_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/undercover/internal/api"
	"github.com/mcoot/undercover/internal/api/apierr"
	"github.com/mcoot/undercover/internal/api/response"
	"github.com/mcoot/undercover/internal/factory"
	"github.com/mcoot/undercover/internal/testutil"
)

// testServer creates a test server with all dependencies
type testServer struct {
	handler http.Handler
	app     *factory.TestApp
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	app := factory.NewTestApp()
	require.NoError(t, app.LoadTestWords())
	t.Cleanup(func() { _ = app.Close() })

	router := api.NewRouter(api.RouterConfig{
		Logger:          testutil.NopLogger(),
		IdentityService: app.IdentityService,
		PartyController: app.PartyController,
		Registry:        app.Registry,
		HubManager:      app.HubManager,
		WebSocket:       app.WebSocket,
	})

	return &testServer{handler: router, app: app}
}

func (ts *testServer) request(method, path string, body any, token string) *httptest.ResponseRecorder {
	reqBody := bytes.NewBuffer(nil)
	if body != nil {
		b, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(b)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func errorCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	return decodeBody[apierr.ErrorResponse](t, rr).Error.Code
}

func createGuest(t *testing.T, ts *testServer, name string) response.AuthResponse {
	t.Helper()
	rr := ts.request(http.MethodPost, "/api/v1/players/guest", map[string]string{"display_name": name}, "")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decodeBody[response.AuthResponse](t, rr)
}

func createRoom(t *testing.T, ts *testServer, token string) response.Room {
	t.Helper()
	rr := ts.request(http.MethodPost, "/api/v1/rooms", nil, token)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decodeBody[response.Room](t, rr)
}

func joinRoom(t *testing.T, ts *testServer, roomID, token string) response.Room {
	t.Helper()
	rr := ts.request(http.MethodPost, "/api/v1/rooms/"+roomID+"/join", nil, token)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	return decodeBody[response.Room](t, rr)
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/health", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, response.HealthResponse{Status: "ok", Rooms: 0}, decodeBody[response.HealthResponse](t, rr))

	alice := createGuest(t, ts, "Alice")
	createRoom(t, ts, alice.SessionToken)

	rr = ts.request(http.MethodGet, "/api/v1/health", nil, "")
	assert.Equal(t, 1, decodeBody[response.HealthResponse](t, rr).Rooms)
}

func TestCreateGuestPlayer(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/players/guest", map[string]string{"display_name": "Alice", "avatar": "cat"}, "")
	require.Equal(t, http.StatusCreated, rr.Code)

	resp := decodeBody[response.AuthResponse](t, rr)
	assert.Equal(t, "Alice", resp.Player.DisplayName)
	assert.Equal(t, "cat", resp.Player.Avatar)
	assert.NotEmpty(t, resp.SessionToken)
	assert.Equal(t, "no-store", rr.Header().Get("Cache-Control"))

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "session", cookies[0].Name)
	assert.Equal(t, resp.SessionToken, cookies[0].Value)
}

func TestCreateGuestWithoutBodyGetsGeneratedName(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/players/guest", nil)
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	resp := decodeBody[response.AuthResponse](t, rr)
	assert.True(t, strings.HasPrefix(resp.Player.DisplayName, "Guest-"), resp.Player.DisplayName)
}

func TestGetAndUpdateMe(t *testing.T) {
	ts := newTestServer(t)
	bob := createGuest(t, ts, "Bob")

	rr := ts.request(http.MethodGet, "/api/v1/players/me", nil, bob.SessionToken)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Bob", decodeBody[response.Player](t, rr).DisplayName)

	rr = ts.request(http.MethodPatch, "/api/v1/players/me", map[string]string{"display_name": "Robert", "avatar": "owl"}, bob.SessionToken)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	me := decodeBody[response.Player](t, rr)
	assert.Equal(t, "Robert", me.DisplayName)
	assert.Equal(t, "owl", me.Avatar)

	rr = ts.request(http.MethodPatch, "/api/v1/players/me", map[string]string{"display_name": "   "}, bob.SessionToken)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, "INVALID_NAME", errorCode(t, rr))

	rr = ts.request(http.MethodPatch, "/api/v1/players/me", map[string]string{}, bob.SessionToken)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestUnauthorized(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/players/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = ts.request(http.MethodPost, "/api/v1/rooms", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/room", nil, "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, apierr.CodeUnauthorized, errorCode(t, rr))
}

func TestSessionCookieAuth(t *testing.T) {
	ts := newTestServer(t)
	alice := createGuest(t, ts, "Alice")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/players/me", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: alice.SessionToken})
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestCreateAndJoinRoom(t *testing.T) {
	ts := newTestServer(t)
	alice := createGuest(t, ts, "Alice")
	bob := createGuest(t, ts, "Bob")

	room := createRoom(t, ts, alice.SessionToken)
	assert.Len(t, room.ID, 6)
	assert.Equal(t, "lobby", room.State)
	assert.Equal(t, alice.Player.ID, room.HostID)
	assert.Equal(t, response.Settings{BlankCount: 0, SpyCount: 1, IsRandom: true}, room.Settings)
	require.Len(t, room.Players, 1)
	assert.True(t, room.Players[0].IsHost)
	assert.Equal(t, "Alice", room.Players[0].DisplayName)

	// Codes are matched case-insensitively
	joined := joinRoom(t, ts, strings.ToLower(room.ID), bob.SessionToken)
	require.Len(t, joined.Players, 2)
	assert.Equal(t, bob.Player.ID, joined.Players[1].PlayerID)
	assert.False(t, joined.Players[1].IsHost)

	rr := ts.request(http.MethodGet, "/api/v1/rooms/"+room.ID, nil, bob.SessionToken)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decodeBody[response.Room](t, rr).Players, 2)

	rr = ts.request(http.MethodPost, "/api/v1/rooms/"+room.ID+"/join", nil, bob.SessionToken)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "ALREADY_MEMBER", errorCode(t, rr))

	rr = ts.request(http.MethodPost, "/api/v1/rooms", nil, bob.SessionToken)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "IDENTITY_ALREADY_IN_ROOM", errorCode(t, rr))
}

func TestRoomNotFound(t *testing.T) {
	ts := newTestServer(t)
	alice := createGuest(t, ts, "Alice")

	rr := ts.request(http.MethodGet, "/api/v1/rooms/ZZZZZZ", nil, alice.SessionToken)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "ROOM_NOT_FOUND", errorCode(t, rr))

	rr = ts.request(http.MethodPost, "/api/v1/rooms/ZZZZZZ/join", nil, alice.SessionToken)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/room", nil, alice.SessionToken)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "NOT_IN_ROOM", errorCode(t, rr))
}

func TestSettings(t *testing.T) {
	ts := newTestServer(t)
	alice := createGuest(t, ts, "Alice")
	bob := createGuest(t, ts, "Bob")
	room := createRoom(t, ts, alice.SessionToken)
	joinRoom(t, ts, room.ID, bob.SessionToken)

	rr := ts.request(http.MethodPut, "/api/v1/room/settings/blank-count", map[string]int{"count": 1}, alice.SessionToken)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, 1, decodeBody[response.Settings](t, rr).BlankCount)

	rr = ts.request(http.MethodPut, "/api/v1/room/settings/spy-count", map[string]int{"count": 2}, alice.SessionToken)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 2, decodeBody[response.Settings](t, rr).SpyCount)

	rr = ts.request(http.MethodPut, "/api/v1/room/settings/is-random", map[string]bool{"is_random": false}, alice.SessionToken)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, response.Settings{BlankCount: 1, SpyCount: 2, IsRandom: false}, decodeBody[response.Settings](t, rr))

	rr = ts.request(http.MethodPut, "/api/v1/room/settings/spy-count", map[string]int{"count": -1}, alice.SessionToken)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, "INVALID_SETTING", errorCode(t, rr))

	rr = ts.request(http.MethodPut, "/api/v1/room/settings/spy-count", map[string]int{"count": 0}, bob.SessionToken)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, "NOT_HOST", errorCode(t, rr))

	rr = ts.request(http.MethodPut, "/api/v1/room/settings/spy-count", map[string]string{}, alice.SessionToken)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestFullRound(t *testing.T) {
	ts := newTestServer(t)
	tokens := make([]string, 0, 4)
	ids := make([]string, 0, 4)
	for _, name := range []string{"Alice", "Bob", "Carol", "Dave"} {
		g := createGuest(t, ts, name)
		tokens = append(tokens, g.SessionToken)
		ids = append(ids, g.Player.ID)
	}
	host := tokens[0]
	room := createRoom(t, ts, host)
	for _, tok := range tokens[1:] {
		joinRoom(t, ts, room.ID, tok)
	}

	// Seat order, no shuffle: the first seat is the spy
	rr := ts.request(http.MethodPut, "/api/v1/room/settings/is-random", map[string]bool{"is_random": false}, host)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ts.request(http.MethodPost, "/api/v1/room/start", nil, tokens[1])
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = ts.request(http.MethodPost, "/api/v1/room/start", map[string]string{"civilian_word": "cat", "spy_word": "CAT"}, host)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, "INVALID_WORD_PAIR", errorCode(t, rr))

	rr = ts.request(http.MethodPost, "/api/v1/room/start", map[string]string{"civilian_word": "apple", "spy_word": "pear"}, host)
	require.Equal(t, http.StatusNoContent, rr.Code, rr.Body.String())

	words := make([]string, len(tokens))
	for i, tok := range tokens {
		rr = ts.request(http.MethodGet, "/api/v1/room/word", nil, tok)
		require.Equal(t, http.StatusOK, rr.Code)
		reveal := decodeBody[response.Reveal](t, rr)
		assert.Equal(t, ids[i], reveal.PlayerID)
		words[i] = reveal.Word
	}
	assert.Equal(t, []string{"pear", "apple", "apple", "apple"}, words)

	// Nothing secret leaks while the round runs
	rr = ts.request(http.MethodGet, "/api/v1/room", nil, tokens[2])
	require.Equal(t, http.StatusOK, rr.Code)
	live := decodeBody[response.Room](t, rr)
	assert.Equal(t, "in_progress", live.State)
	assert.Nil(t, live.Words)
	for _, p := range live.Players {
		assert.Empty(t, p.Role)
	}
	assert.NotContains(t, rr.Body.String(), "pear")

	rr = ts.request(http.MethodPost, "/api/v1/rooms/"+room.ID+"/join", nil, createGuest(t, ts, "Late").SessionToken)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "GAME_ALREADY_STARTED", errorCode(t, rr))

	rr = ts.request(http.MethodPost, "/api/v1/room/report", map[string]string{"player_id": ids[0]}, tokens[1])
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []string{ids[0]}, decodeBody[response.ReportResponse](t, rr).Reported)

	// Any member may end the round
	rr = ts.request(http.MethodPost, "/api/v1/room/end", map[string]string{"winner": "civilians"}, tokens[3])
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/room", nil, tokens[2])
	ended := decodeBody[response.Room](t, rr)
	assert.Equal(t, "ended", ended.State)
	assert.Equal(t, "civilians", ended.Winner)
	require.NotNil(t, ended.Words)
	assert.Equal(t, response.WordPair{Civilian: "apple", Spy: "pear"}, *ended.Words)
	assert.Equal(t, "spy", ended.Players[0].Role)
	assert.True(t, ended.Players[0].Reported)

	rr = ts.request(http.MethodPost, "/api/v1/room/end", map[string]string{"winner": "spies"}, host)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "GAME_NOT_IN_PROGRESS", errorCode(t, rr))
}

func TestStartDrawsFromWordBank(t *testing.T) {
	ts := newTestServer(t)
	alice := createGuest(t, ts, "Alice")
	bob := createGuest(t, ts, "Bob")
	room := createRoom(t, ts, alice.SessionToken)
	joinRoom(t, ts, room.ID, bob.SessionToken)

	rr := ts.request(http.MethodPost, "/api/v1/room/start", nil, alice.SessionToken)
	require.Equal(t, http.StatusNoContent, rr.Code, rr.Body.String())

	rr = ts.request(http.MethodGet, "/api/v1/room/word", nil, bob.SessionToken)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, []string{"coffee", "tea"}, decodeBody[response.Reveal](t, rr).Word)
}

func TestStartNotEnoughPlayers(t *testing.T) {
	ts := newTestServer(t)
	alice := createGuest(t, ts, "Alice")
	createRoom(t, ts, alice.SessionToken)

	rr := ts.request(http.MethodPost, "/api/v1/room/start", nil, alice.SessionToken)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, "NOT_ENOUGH_PLAYERS", errorCode(t, rr))
}

func TestHostTransferKickAndLeave(t *testing.T) {
	ts := newTestServer(t)
	alice := createGuest(t, ts, "Alice")
	bob := createGuest(t, ts, "Bob")
	carol := createGuest(t, ts, "Carol")
	room := createRoom(t, ts, alice.SessionToken)
	joinRoom(t, ts, room.ID, bob.SessionToken)
	joinRoom(t, ts, room.ID, carol.SessionToken)

	rr := ts.request(http.MethodPost, "/api/v1/room/kick", map[string]string{"player_id": alice.Player.ID}, alice.SessionToken)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, "CANNOT_KICK_SELF", errorCode(t, rr))

	rr = ts.request(http.MethodPost, "/api/v1/room/kick", map[string]string{"player_id": carol.Player.ID}, alice.SessionToken)
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/room", nil, carol.SessionToken)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = ts.request(http.MethodPost, "/api/v1/room/host", map[string]string{"player_id": bob.Player.ID}, alice.SessionToken)
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/room", nil, alice.SessionToken)
	assert.Equal(t, bob.Player.ID, decodeBody[response.Room](t, rr).HostID)

	rr = ts.request(http.MethodPost, "/api/v1/room/leave", nil, bob.SessionToken)
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/room", nil, alice.SessionToken)
	after := decodeBody[response.Room](t, rr)
	assert.Equal(t, alice.Player.ID, after.HostID)
	assert.Len(t, after.Players, 1)

	// Leaving twice is fine, and the last leave destroys the room
	rr = ts.request(http.MethodPost, "/api/v1/room/leave", nil, alice.SessionToken)
	require.Equal(t, http.StatusNoContent, rr.Code)
	rr = ts.request(http.MethodPost, "/api/v1/room/leave", nil, alice.SessionToken)
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/rooms/"+room.ID, nil, alice.SessionToken)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestSendMessageValidation(t *testing.T) {
	ts := newTestServer(t)
	alice := createGuest(t, ts, "Alice")

	rr := ts.request(http.MethodPost, "/api/v1/room/messages", map[string]string{"text": "hi"}, alice.SessionToken)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	createRoom(t, ts, alice.SessionToken)

	rr = ts.request(http.MethodPost, "/api/v1/room/messages", map[string]string{"text": "  "}, alice.SessionToken)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, "INVALID_MESSAGE", errorCode(t, rr))

	rr = ts.request(http.MethodPost, "/api/v1/room/messages", map[string]string{"text": "hi"}, alice.SessionToken)
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestEventStream(t *testing.T) {
	ts := newTestServer(t)
	server := httptest.NewServer(ts.handler)
	defer server.Close()

	alice := createGuest(t, ts, "Alice")
	bob := createGuest(t, ts, "Bob")
	room := createRoom(t, ts, alice.SessionToken)
	joinRoom(t, ts, room.ID, bob.SessionToken)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/api/v1/room/events", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+bob.SessionToken)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	readEvent := func() (string, string) {
		var name, data string
		for {
			line, err := reader.ReadString('\n')
			require.NoError(t, err)
			line = strings.TrimRight(line, "\n")
			switch {
			case strings.HasPrefix(line, "event: "):
				name = strings.TrimPrefix(line, "event: ")
			case strings.HasPrefix(line, "data: "):
				data += strings.TrimPrefix(line, "data: ")
			case line == "" && name != "":
				return name, data
			}
		}
	}

	name, data := readEvent()
	require.Equal(t, "connected", name)
	var hello response.Room
	require.NoError(t, json.Unmarshal([]byte(data), &hello))
	assert.Equal(t, room.ID, hello.ID)
	assert.True(t, hello.Players[1].Connected)

	rr := ts.request(http.MethodPost, "/api/v1/room/messages", map[string]string{"text": "hello bob"}, alice.SessionToken)
	require.Equal(t, http.StatusNoContent, rr.Code)

	for {
		name, data = readEvent()
		if name == "message" {
			break
		}
	}
	var event response.Event
	require.NoError(t, json.Unmarshal([]byte(data), &event))
	assert.Equal(t, room.ID, event.RoomID)
	assert.Equal(t, map[string]any{"player_id": alice.Player.ID, "text": "hello bob"}, event.Data)

	// Kicking bob ends his stream after the private notice
	rr = ts.request(http.MethodPost, "/api/v1/room/kick", map[string]string{"player_id": bob.Player.ID}, alice.SessionToken)
	require.Equal(t, http.StatusNoContent, rr.Code)

	for {
		name, _ = readEvent()
		if name == "kicked" {
			break
		}
	}
}

func TestEventStreamRequiresRoom(t *testing.T) {
	ts := newTestServer(t)
	alice := createGuest(t, ts, "Alice")

	rr := ts.request(http.MethodGet, "/api/v1/room/events", nil, alice.SessionToken)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "NOT_IN_ROOM", errorCode(t, rr))
}
