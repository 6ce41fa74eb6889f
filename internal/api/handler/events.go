package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/mcoot/undercover/internal/api/middleware"
	"github.com/mcoot/undercover/internal/api/response"
	"github.com/mcoot/undercover/internal/model"
	"github.com/mcoot/undercover/internal/services/party"
	"github.com/mcoot/undercover/internal/sse"
)

// EventsHandler streams room events over SSE
type EventsHandler struct {
	controller *party.Controller
	hubManager *sse.HubManager
	logger     *slog.Logger
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(controller *party.Controller, hubManager *sse.HubManager, logger *slog.Logger) *EventsHandler {
	return &EventsHandler{
		controller: controller,
		hubManager: hubManager,
		logger:     logger.With(slog.String("component", "sse-handler")),
	}
}

// Stream handles GET /api/v1/room/events
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	view, err := h.controller.CurrentRoom(r.Context(), player.ID)
	if err != nil {
		WriteError(w, err)
		return
	}
	roomID := view.Room.ID

	// Subscribe before re-checking membership so a concurrent leave or
	// kick always finds this client to detach.
	client := h.hubManager.Subscribe(roomID, player.ID)
	defer client.Close()

	if err := h.controller.SetConnected(r.Context(), roomID, player.ID, true); err != nil {
		WriteError(w, err)
		return
	}
	defer func() {
		// The request context is already cancelled here
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := h.controller.SetConnected(ctx, roomID, player.ID, false); err != nil {
			h.logger.Warn("failed to mark player disconnected",
				slog.String("room_id", string(roomID)),
				slog.String("player_id", string(player.ID)),
				slog.Any("error", err))
		}
	}()

	view, err = h.controller.CurrentRoom(r.Context(), player.ID)
	if err == nil && view.Room.ID != roomID {
		err = model.ErrNotInRoom
	}
	if err != nil {
		WriteError(w, err)
		return
	}

	// Streams outlive the server's write timeout
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	sse.ServeSSE(w, r, client, response.RoomFromView(view), h.logger)
}
