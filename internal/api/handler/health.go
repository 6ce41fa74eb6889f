package handler

import (
	"net/http"

	"github.com/mcoot/undercover/internal/api/response"
	"github.com/mcoot/undercover/internal/services/room"
)

// HealthHandler reports liveness
type HealthHandler struct {
	registry *room.Registry
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(registry *room.Registry) *HealthHandler {
	return &HealthHandler{registry: registry}
}

// Health handles GET /api/v1/health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.HealthResponse{
		Status: "ok",
		Rooms:  h.registry.Count(),
	})
}
