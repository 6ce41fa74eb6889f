package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/mcoot/undercover/internal/api/middleware"
	"github.com/mcoot/undercover/internal/api/request"
	"github.com/mcoot/undercover/internal/api/response"
	"github.com/mcoot/undercover/internal/model"
	"github.com/mcoot/undercover/internal/services/party"
)

// RoomHandler handles room and round endpoints
type RoomHandler struct {
	controller *party.Controller
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(controller *party.Controller) *RoomHandler {
	return &RoomHandler{controller: controller}
}

// RoomIDFromPath normalises the {id} path variable
func RoomIDFromPath(r *http.Request) model.RoomID {
	return model.RoomID(strings.ToUpper(strings.TrimSpace(mux.Vars(r)["id"])))
}

// Create handles POST /api/v1/rooms
func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	view, err := h.controller.CreateRoom(r.Context(), player.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.RoomFromView(view))
}

// Get handles GET /api/v1/rooms/{id}
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.controller.GetRoom(r.Context(), RoomIDFromPath(r))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RoomFromView(view))
}

// Join handles POST /api/v1/rooms/{id}/join
func (h *RoomHandler) Join(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	view, err := h.controller.JoinRoom(r.Context(), player.ID, RoomIDFromPath(r))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RoomFromView(view))
}

// Current handles GET /api/v1/room
func (h *RoomHandler) Current(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	view, err := h.controller.CurrentRoom(r.Context(), player.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RoomFromView(view))
}

// Leave handles POST /api/v1/room/leave
func (h *RoomHandler) Leave(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	if err := h.controller.LeaveRoom(r.Context(), player.ID); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}

// UpdateBlankCount handles PUT /api/v1/room/settings/blank-count
func (h *RoomHandler) UpdateBlankCount(w http.ResponseWriter, r *http.Request) {
	h.updateCount(w, r, h.controller.UpdateBlankCount)
}

// UpdateSpyCount handles PUT /api/v1/room/settings/spy-count
func (h *RoomHandler) UpdateSpyCount(w http.ResponseWriter, r *http.Request) {
	h.updateCount(w, r, h.controller.UpdateSpyCount)
}

func (h *RoomHandler) updateCount(
	w http.ResponseWriter,
	r *http.Request,
	update func(ctx context.Context, playerID model.PlayerID, n int) (model.RoomSettings, error),
) {
	player := middleware.MustGetPlayer(r.Context())

	var req request.CountRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Count == nil {
		WriteError(w, NewInvalidRequestError("count is required"))
		return
	}

	settings, err := update(r.Context(), player.ID, *req.Count)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SettingsFromModel(settings))
}

// UpdateIsRandom handles PUT /api/v1/room/settings/is-random
func (h *RoomHandler) UpdateIsRandom(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	var req request.IsRandomRequest
	if !decode(w, r, &req) {
		return
	}
	if req.IsRandom == nil {
		WriteError(w, NewInvalidRequestError("is_random is required"))
		return
	}

	settings, err := h.controller.UpdateIsRandom(r.Context(), player.ID, *req.IsRandom)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SettingsFromModel(settings))
}

// TransferHost handles POST /api/v1/room/host
func (h *RoomHandler) TransferHost(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	target, ok := decodeTarget(w, r)
	if !ok {
		return
	}

	if err := h.controller.TransferHost(r.Context(), player.ID, target); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}

// Kick handles POST /api/v1/room/kick
func (h *RoomHandler) Kick(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	target, ok := decodeTarget(w, r)
	if !ok {
		return
	}

	if err := h.controller.Kick(r.Context(), player.ID, target); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}

// Start handles POST /api/v1/room/start
func (h *RoomHandler) Start(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	var req request.StartGameRequest
	// An empty body draws the words from the word bank
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	var words *model.WordPair
	if req.CivilianWord != "" || req.SpyWord != "" {
		words = &model.WordPair{Civilian: req.CivilianWord, Spy: req.SpyWord}
	}

	if err := h.controller.StartGame(r.Context(), player.ID, words); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}

// Report handles POST /api/v1/room/report
func (h *RoomHandler) Report(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	target, ok := decodeTarget(w, r)
	if !ok {
		return
	}

	reported, err := h.controller.Report(r.Context(), player.ID, target)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ReportResponseFromIDs(reported))
}

// End handles POST /api/v1/room/end
func (h *RoomHandler) End(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	var req request.EndGameRequest
	if !decode(w, r, &req) {
		return
	}

	if err := h.controller.EndGame(r.Context(), player.ID, req.Winner); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}

// SendMessage handles POST /api/v1/room/messages
func (h *RoomHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	var req request.MessageRequest
	if !decode(w, r, &req) {
		return
	}

	if err := h.controller.SendMessage(r.Context(), player.ID, req.Text); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}

// Word handles GET /api/v1/room/word
func (h *RoomHandler) Word(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	reveal, err := h.controller.MyWord(r.Context(), player.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RevealFromModel(reveal))
}

func decodeTarget(w http.ResponseWriter, r *http.Request) (model.PlayerID, bool) {
	var req request.PlayerTargetRequest
	if !decode(w, r, &req) {
		return "", false
	}
	if req.PlayerID == "" {
		WriteError(w, NewInvalidRequestError("player_id is required"))
		return "", false
	}
	return model.PlayerID(req.PlayerID), true
}
