package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/mcoot/undercover/internal/api/middleware"
	"github.com/mcoot/undercover/internal/api/request"
	"github.com/mcoot/undercover/internal/api/response"
	"github.com/mcoot/undercover/internal/services/identity"
	"github.com/mcoot/undercover/internal/services/party"
)

// PlayerHandler handles player-related endpoints
type PlayerHandler struct {
	identity   *identity.Service
	controller *party.Controller
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(identity *identity.Service, controller *party.Controller) *PlayerHandler {
	return &PlayerHandler{
		identity:   identity,
		controller: controller,
	}
}

// CreateGuest handles POST /api/v1/players/guest
func (h *PlayerHandler) CreateGuest(w http.ResponseWriter, r *http.Request) {
	var req request.CreateGuestRequest
	// An empty body gets a generated guest name
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	session, err := h.identity.CreateGuest(r.Context(), req.DisplayName, req.Avatar)
	if err != nil {
		WriteError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "session",
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	response.JSON(w, http.StatusCreated, response.AuthResponseFromSession(session))
}

// GetMe handles GET /api/v1/players/me
func (h *PlayerHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	response.JSON(w, http.StatusOK, response.PlayerFromModel(player))
}

// UpdateMe handles PATCH /api/v1/players/me
func (h *PlayerHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	var req request.UpdatePlayerRequest
	if !decode(w, r, &req) {
		return
	}
	if req.DisplayName == nil && req.Avatar == nil {
		WriteError(w, NewInvalidRequestError("display_name or avatar is required"))
		return
	}

	updated := player
	if req.DisplayName != nil {
		p, err := h.controller.UpdateUsername(r.Context(), player.ID, *req.DisplayName)
		if err != nil {
			WriteError(w, err)
			return
		}
		updated = p
	}
	if req.Avatar != nil {
		p, err := h.controller.UpdateAvatar(r.Context(), player.ID, *req.Avatar)
		if err != nil {
			WriteError(w, err)
			return
		}
		updated = p
	}

	response.JSON(w, http.StatusOK, response.PlayerFromModel(updated))
}
