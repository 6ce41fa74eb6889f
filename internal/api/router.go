package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/undercover/internal/api/handler"
	"github.com/mcoot/undercover/internal/api/middleware"
	"github.com/mcoot/undercover/internal/services/identity"
	"github.com/mcoot/undercover/internal/services/party"
	"github.com/mcoot/undercover/internal/services/room"
	"github.com/mcoot/undercover/internal/sse"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger          *slog.Logger
	IdentityService *identity.Service
	PartyController *party.Controller
	Registry        *room.Registry
	HubManager      *sse.HubManager

	// WebSocket is mounted at /ws when set
	WebSocket http.Handler
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	playerHandler := handler.NewPlayerHandler(cfg.IdentityService, cfg.PartyController)
	roomHandler := handler.NewRoomHandler(cfg.PartyController)
	eventsHandler := handler.NewEventsHandler(cfg.PartyController, cfg.HubManager, cfg.Logger)
	healthHandler := handler.NewHealthHandler(cfg.Registry)

	authMiddleware := middleware.Auth(cfg.IdentityService)
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Player routes (no auth required for creating a guest)
	api.HandleFunc("/players/guest", playerHandler.CreateGuest).Methods(http.MethodPost)

	playerProtected := api.PathPrefix("/players").Subrouter()
	playerProtected.Use(authMiddleware)
	playerProtected.HandleFunc("/me", playerHandler.GetMe).Methods(http.MethodGet)
	playerProtected.HandleFunc("/me", playerHandler.UpdateMe).Methods(http.MethodPatch)

	// Rooms by code
	rooms := api.PathPrefix("/rooms").Subrouter()
	rooms.Use(authMiddleware)
	rooms.HandleFunc("", roomHandler.Create).Methods(http.MethodPost)
	rooms.HandleFunc("/{id}", roomHandler.Get).Methods(http.MethodGet)
	rooms.HandleFunc("/{id}/join", roomHandler.Join).Methods(http.MethodPost)

	// The caller's current room
	current := api.PathPrefix("/room").Subrouter()
	current.Use(authMiddleware)
	current.HandleFunc("", roomHandler.Current).Methods(http.MethodGet)
	current.HandleFunc("/leave", roomHandler.Leave).Methods(http.MethodPost)
	current.HandleFunc("/settings/blank-count", roomHandler.UpdateBlankCount).Methods(http.MethodPut)
	current.HandleFunc("/settings/spy-count", roomHandler.UpdateSpyCount).Methods(http.MethodPut)
	current.HandleFunc("/settings/is-random", roomHandler.UpdateIsRandom).Methods(http.MethodPut)
	current.HandleFunc("/host", roomHandler.TransferHost).Methods(http.MethodPost)
	current.HandleFunc("/kick", roomHandler.Kick).Methods(http.MethodPost)
	current.HandleFunc("/start", roomHandler.Start).Methods(http.MethodPost)
	current.HandleFunc("/report", roomHandler.Report).Methods(http.MethodPost)
	current.HandleFunc("/end", roomHandler.End).Methods(http.MethodPost)
	current.HandleFunc("/messages", roomHandler.SendMessage).Methods(http.MethodPost)
	current.HandleFunc("/word", roomHandler.Word).Methods(http.MethodGet)
	current.HandleFunc("/events", eventsHandler.Stream).Methods(http.MethodGet)

	// Health check endpoint (no auth)
	api.HandleFunc("/health", healthHandler.Health).Methods(http.MethodGet)

	if cfg.WebSocket != nil {
		ws := r.PathPrefix("/ws").Subrouter()
		ws.Use(recoveryMiddleware)
		ws.Use(loggingMiddleware)
		ws.Handle("", cfg.WebSocket).Methods(http.MethodGet)
	}

	return r
}
