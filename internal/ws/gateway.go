package ws

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mcoot/undercover/internal/api/apierr"
	"github.com/mcoot/undercover/internal/api/middleware"
	"github.com/mcoot/undercover/internal/services/party"
	"github.com/mcoot/undercover/internal/sse"
)

const (
	// Time allowed to write a frame to the peer
	writeWait = 10 * time.Second

	// Time allowed between pongs from the peer
	pongWait = 60 * time.Second

	// Pings go out a little more often than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Largest frame accepted from a client
	maxFrameSize = 64 * 1024

	// Outgoing frames queued per connection
	sendBufferSize = 256
)

// Gateway serves the WebSocket transport: every frame is one player action
// and room events are pushed on the same socket.
type Gateway struct {
	sessions   middleware.SessionValidator
	controller *party.Controller
	hubManager *sse.HubManager
	upgrader   websocket.Upgrader
	logger     *slog.Logger
}

// NewGateway creates a new WebSocket gateway
func NewGateway(
	sessions middleware.SessionValidator,
	controller *party.Controller,
	hubManager *sse.HubManager,
	logger *slog.Logger,
) *Gateway {
	return &Gateway{
		sessions:   sessions,
		controller: controller,
		hubManager: hubManager,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: logger.With(slog.String("component", "ws")),
	}
}

// ServeHTTP handles GET /ws?token=...
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		token = middleware.ExtractToken(r)
	}
	if token == "" {
		apierr.WriteError(w, apierr.NewUnauthorizedError())
		return
	}

	session, err := g.sessions.ValidateSession(r.Context(), token)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	socket, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error
		g.logger.Warn("ws upgrade failed", slog.Any("error", err))
		return
	}

	c := newConn(g, socket, session.PlayerID)
	g.logger.Info("ws client connected", slog.String("player_id", string(c.playerID)))

	ctx := r.Context()
	go c.writePump()
	c.sync(ctx, true)
	c.readPump(ctx)
	c.shutdown()

	g.logger.Info("ws client disconnected",
		slog.String("player_id", string(c.playerID)),
		slog.Duration("connection_duration", time.Since(c.connectedAt)))
}
