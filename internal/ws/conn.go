package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mcoot/undercover/internal/api/apierr"
	"github.com/mcoot/undercover/internal/api/response"
	"github.com/mcoot/undercover/internal/model"
	"github.com/mcoot/undercover/internal/sse"
)

// conn is one player's socket
type conn struct {
	gateway     *Gateway
	socket      *websocket.Conn
	playerID    model.PlayerID
	connectedAt time.Time
	logger      *slog.Logger

	send     chan []byte
	done     chan struct{}
	doneOnce sync.Once

	// sub is the room subscription, replaced when the player changes room
	mu  sync.Mutex
	sub *sse.Client
}

func newConn(g *Gateway, socket *websocket.Conn, playerID model.PlayerID) *conn {
	return &conn{
		gateway:     g,
		socket:      socket,
		playerID:    playerID,
		connectedAt: time.Now(),
		logger:      g.logger.With(slog.String("player_id", string(playerID))),
		send:        make(chan []byte, sendBufferSize),
		done:        make(chan struct{}),
	}
}

func (c *conn) readPump(ctx context.Context) {
	c.socket.SetReadLimit(maxFrameSize)
	_ = c.socket.SetReadDeadline(time.Now().Add(pongWait))
	c.socket.SetPongHandler(func(string) error {
		return c.socket.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.socket.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("ws read error", slog.Any("error", err))
			}
			return
		}

		var frame Frame
		if err := json.Unmarshal(data, &frame); err != nil || frame.Event == "" {
			c.replyError(apierr.NewInvalidRequestError("invalid frame"))
			continue
		}
		c.handle(ctx, frame)
	}
}

func (c *conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case data := <-c.send:
			_ = c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.socket.WriteMessage(websocket.TextMessage, data); err != nil {
				c.logger.Warn("ws write error", slog.Any("error", err))
				c.close()
				return
			}

		case <-ticker.C:
			_ = c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.socket.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.close()
				return
			}

		case <-c.done:
			_ = c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.socket.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// close stops the write pump and unblocks the read pump
func (c *conn) close() {
	c.doneOnce.Do(func() {
		close(c.done)
		_ = c.socket.Close()
	})
}

func (c *conn) shutdown() {
	c.mu.Lock()
	sub := c.sub
	c.sub = nil
	c.mu.Unlock()

	if sub != nil {
		c.release(sub)
	}
	c.close()
}

// sync points the room subscription at the room the player is bound to.
// With announce set the current room is sent as a "room" frame.
func (c *conn) sync(ctx context.Context, announce bool) {
	view, err := c.gateway.controller.CurrentRoom(ctx, c.playerID)
	if err != nil && !errors.Is(err, model.ErrNotInRoom) {
		c.logger.Warn("ws failed to resolve current room", slog.Any("error", err))
		return
	}

	c.mu.Lock()
	old := c.sub
	stale := old != nil && (view == nil || old.RoomID() != view.Room.ID)
	if stale {
		c.sub = nil
	}
	needSub := view != nil && c.sub == nil
	c.mu.Unlock()

	if stale {
		c.release(old)
	}
	if !needSub {
		if announce && view != nil {
			c.reply(EventRoom, response.RoomFromView(view))
		}
		return
	}

	roomID := view.Room.ID
	client := c.gateway.hubManager.Subscribe(roomID, c.playerID)
	c.mu.Lock()
	c.sub = client
	c.mu.Unlock()
	go c.forward(client)

	if err := c.gateway.controller.SetConnected(ctx, roomID, c.playerID, true); err != nil {
		c.logger.Warn("ws failed to mark player connected", slog.Any("error", err))
	}

	// Re-read after subscribing so nothing committed in between is missed
	view, err = c.gateway.controller.CurrentRoom(ctx, c.playerID)
	if err != nil || view.Room.ID != roomID {
		c.mu.Lock()
		if c.sub == client {
			c.sub = nil
		}
		c.mu.Unlock()
		c.release(client)
		return
	}
	if announce {
		c.reply(EventRoom, response.RoomFromView(view))
	}
}

// release drops a subscription and the presence it held
func (c *conn) release(client *sse.Client) {
	client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.gateway.controller.SetConnected(ctx, client.RoomID(), c.playerID, false); err != nil {
		c.logger.Warn("ws failed to mark player disconnected", slog.Any("error", err))
	}
}

// forward copies room events onto the socket until the subscription ends
func (c *conn) forward(client *sse.Client) {
	for event := range client.Events() {
		c.reply(string(event.Type), response.EventFromModel(event))
	}

	// Detached by a leave or kick, or the hub closed
	c.mu.Lock()
	if c.sub == client {
		c.sub = nil
	}
	c.mu.Unlock()
}

func (c *conn) reply(event string, data any) {
	payload, err := json.Marshal(OutFrame{Event: event, Data: data})
	if err != nil {
		c.logger.Error("ws failed to encode frame",
			slog.String("event", event),
			slog.Any("error", err))
		return
	}
	select {
	case c.send <- payload:
	case <-c.done:
	}
}

func (c *conn) replyError(err error) {
	c.reply(EventError, apierr.FromError(err))
}
