package party

import (
	"context"
	"errors"
	"hash/fnv"
	"log/slog"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/mcoot/undercover/internal/dependencies/clock"
	"github.com/mcoot/undercover/internal/model"
	"github.com/mcoot/undercover/internal/services/identity"
	"github.com/mcoot/undercover/internal/services/room"
	"github.com/mcoot/undercover/internal/services/wordbank"
)

const (
	maxMessageLength = 500

	// Number of stripes serialising create/join per player
	playerLockStripes = 64
)

// Controller runs one player action end to end: it resolves the player's
// room binding, applies the room transition under the room's lock and
// publishes the resulting events before the lock is released, so each
// room's events reach the publisher in commit order.
type Controller struct {
	registry  *room.Registry
	identity  identity.ServiceInterface
	words     wordbank.ServiceInterface
	publisher Publisher
	clock     clock.Clock
	logger    *slog.Logger

	playerLocks [playerLockStripes]sync.Mutex
}

// NewController creates a new party Controller
func NewController(
	registry *room.Registry,
	identity identity.ServiceInterface,
	words wordbank.ServiceInterface,
	publisher Publisher,
	clock clock.Clock,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		registry:  registry,
		identity:  identity,
		words:     words,
		publisher: publisher,
		clock:     clock,
		logger:    logger.With(slog.String("component", "party")),
	}
}

// Room lifecycle

// CreateRoom creates a room hosted by the player
func (c *Controller) CreateRoom(ctx context.Context, playerID model.PlayerID) (*model.RoomView, error) {
	unlock := c.lockPlayer(playerID)
	defer unlock()

	if err := c.requireUnbound(ctx, playerID, ""); err != nil {
		return nil, err
	}

	rm, err := c.registry.Create(playerID)
	if err != nil {
		return nil, err
	}

	var snap model.RoomSnapshot
	err = c.withRoom(rm.ID(), func(r *room.Room) error {
		if err := c.identity.BindRoom(ctx, playerID, r.ID()); err != nil {
			// Leaves the room empty so it is destroyed on the way out
			r.Leave(playerID)
			return err
		}
		snap = r.Snapshot()
		return nil
	})
	if err != nil {
		return nil, err
	}

	return c.view(ctx, snap), nil
}

// GetRoom returns any live room's public view
func (c *Controller) GetRoom(ctx context.Context, roomID model.RoomID) (*model.RoomView, error) {
	var snap model.RoomSnapshot
	err := c.withRoom(roomID, func(r *room.Room) error {
		snap = r.Snapshot()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.view(ctx, snap), nil
}

// CurrentRoom returns the view of the room the player is seated in
func (c *Controller) CurrentRoom(ctx context.Context, playerID model.PlayerID) (*model.RoomView, error) {
	roomID, err := c.boundRoom(ctx, playerID)
	if err != nil {
		return nil, err
	}

	var snap model.RoomSnapshot
	err = c.withRoom(roomID, func(r *room.Room) error {
		if !r.IsMember(playerID) {
			return model.ErrNotInRoom
		}
		snap = r.Snapshot()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.view(ctx, snap), nil
}

// Membership

// JoinRoom seats the player in a room
func (c *Controller) JoinRoom(ctx context.Context, playerID model.PlayerID, roomID model.RoomID) (*model.RoomView, error) {
	player, err := c.identity.GetPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}

	unlock := c.lockPlayer(playerID)
	defer unlock()

	if err := c.requireUnbound(ctx, playerID, roomID); err != nil {
		return nil, err
	}

	var snap model.RoomSnapshot
	err = c.withRoom(roomID, func(r *room.Room) error {
		if _, err := r.Join(playerID); err != nil {
			return err
		}
		if err := c.identity.BindRoom(ctx, playerID, roomID); err != nil {
			r.Leave(playerID)
			return err
		}

		c.publish(roomID, model.EventPlayerJoined, model.PlayerJoinedPayload{
			PlayerID:    player.ID,
			DisplayName: player.DisplayName,
			Avatar:      player.Avatar,
		})
		snap = r.Snapshot()
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("player joined room",
		slog.String("room_id", string(roomID)),
		slog.String("player_id", string(playerID)),
	)
	return c.view(ctx, snap), nil
}

// LeaveRoom removes the player from their room. Leaving without a room is
// a no-op.
func (c *Controller) LeaveRoom(ctx context.Context, playerID model.PlayerID) error {
	unlock := c.lockPlayer(playerID)
	defer unlock()

	roomID, err := c.boundRoom(ctx, playerID)
	if errors.Is(err, model.ErrNotInRoom) {
		return nil
	}
	if err != nil {
		return err
	}

	var result room.LeaveResult
	err = c.withRoom(roomID, func(r *room.Room) error {
		result = r.Leave(playerID)
		if !result.Removed {
			return nil
		}
		c.unbind(ctx, playerID, roomID)
		c.publisher.Detach(roomID, playerID)
		if !result.Empty {
			c.publishDeparture(roomID, model.EventPlayerLeft, playerID, result)
		}
		return nil
	})
	if errors.Is(err, model.ErrRoomNotFound) {
		c.unbind(ctx, playerID, roomID)
		return nil
	}
	if err != nil {
		return err
	}

	if result.Empty {
		c.publisher.CloseRoom(roomID)
	}
	return nil
}

// Kick removes target from the host's room
func (c *Controller) Kick(ctx context.Context, playerID, target model.PlayerID) error {
	roomID, err := c.boundRoom(ctx, playerID)
	if err != nil {
		return err
	}

	return c.withRoom(roomID, func(r *room.Room) error {
		result, err := r.Kick(playerID, target)
		if err != nil {
			return err
		}
		c.unbind(ctx, target, roomID)

		c.publishDeparture(roomID, model.EventPlayerKicked, target, result)
		c.publishToOne(roomID, target, model.EventKicked, model.PlayerLeftPayload{
			PlayerID: target,
		})
		c.publisher.Detach(roomID, target)
		return nil
	})
}

// TransferHost hands the host role to another member
func (c *Controller) TransferHost(ctx context.Context, playerID, newHost model.PlayerID) error {
	roomID, err := c.boundRoom(ctx, playerID)
	if err != nil {
		return err
	}

	return c.withRoom(roomID, func(r *room.Room) error {
		change, err := r.UpdateHost(playerID, newHost)
		if err != nil {
			return err
		}
		if change.Changed {
			c.publish(roomID, model.EventHostChanged, model.HostChangedPayload{
				OldHostID: change.OldHostID,
				NewHostID: change.NewHostID,
			})
		}
		return nil
	})
}

// Settings

// UpdateBlankCount sets the number of blanks for the next round
func (c *Controller) UpdateBlankCount(ctx context.Context, playerID model.PlayerID, n int) (model.RoomSettings, error) {
	return c.updateSettings(ctx, playerID, func(r *room.Room) (model.RoomSettings, error) {
		return r.UpdateBlankCount(playerID, n)
	})
}

// UpdateSpyCount sets the number of spies for the next round
func (c *Controller) UpdateSpyCount(ctx context.Context, playerID model.PlayerID, n int) (model.RoomSettings, error) {
	return c.updateSettings(ctx, playerID, func(r *room.Room) (model.RoomSettings, error) {
		return r.UpdateSpyCount(playerID, n)
	})
}

// UpdateIsRandom toggles shuffled role assignment
func (c *Controller) UpdateIsRandom(ctx context.Context, playerID model.PlayerID, isRandom bool) (model.RoomSettings, error) {
	return c.updateSettings(ctx, playerID, func(r *room.Room) (model.RoomSettings, error) {
		return r.UpdateIsRandom(playerID, isRandom)
	})
}

func (c *Controller) updateSettings(
	ctx context.Context,
	playerID model.PlayerID,
	apply func(*room.Room) (model.RoomSettings, error),
) (model.RoomSettings, error) {
	roomID, err := c.boundRoom(ctx, playerID)
	if err != nil {
		return model.RoomSettings{}, err
	}

	var settings model.RoomSettings
	err = c.withRoom(roomID, func(r *room.Room) error {
		var err error
		settings, err = apply(r)
		if err != nil {
			return err
		}
		c.publish(roomID, model.EventSettingsChanged, settings)
		return nil
	})
	return settings, err
}

// Rounds

// StartGame deals roles and words. With no words given, a pair is drawn
// from the word bank. Each player's word is sent to that player only.
func (c *Controller) StartGame(ctx context.Context, playerID model.PlayerID, words *model.WordPair) error {
	roomID, err := c.boundRoom(ctx, playerID)
	if err != nil {
		return err
	}

	var pair model.WordPair
	if words != nil {
		pair = *words
	} else {
		pair, err = c.words.Random()
		if err != nil {
			c.logger.Error("failed to draw word pair", slog.Any("error", err))
			return model.ErrInternal
		}
	}

	err = c.withRoom(roomID, func(r *room.Room) error {
		assignment, err := r.Start(playerID, pair)
		if err != nil {
			return err
		}

		c.publish(roomID, model.EventGameStarted, model.GameStartedPayload{
			PlayerCount: assignment.Len(),
			Settings:    r.Settings(),
		})
		for _, id := range assignment.Players() {
			reveal, ok := assignment.For(id)
			if !ok {
				continue
			}
			c.publishToOne(roomID, id, model.EventWordRevealed, reveal)
		}
		return nil
	})
	if err != nil {
		return err
	}

	c.logger.Info("game started", slog.String("room_id", string(roomID)))
	return nil
}

// Report flags a suspect. It is advisory and never ends the round.
func (c *Controller) Report(ctx context.Context, playerID, target model.PlayerID) ([]model.PlayerID, error) {
	roomID, err := c.boundRoom(ctx, playerID)
	if err != nil {
		return nil, err
	}

	var reported []model.PlayerID
	err = c.withRoom(roomID, func(r *room.Room) error {
		var err error
		reported, err = r.Report(playerID, target)
		if err != nil {
			return err
		}
		c.publish(roomID, model.EventPlayerReported, model.PlayerReportedPayload{
			ReporterID: playerID,
			TargetID:   target,
			Reported:   reported,
		})
		return nil
	})
	return reported, err
}

// EndGame closes the round and reveals every role
func (c *Controller) EndGame(ctx context.Context, playerID model.PlayerID, winner string) error {
	roomID, err := c.boundRoom(ctx, playerID)
	if err != nil {
		return err
	}

	return c.withRoom(roomID, func(r *room.Room) error {
		outcome, err := r.End(playerID, strings.TrimSpace(winner))
		if err != nil {
			return err
		}
		c.publish(roomID, model.EventGameEnded, model.GameEndedPayload{
			Winner: outcome.Winner,
			Words:  outcome.Words,
			Roles:  outcome.Roles,
		})
		return nil
	})
}

// MyWord returns the player's own word for the current or last round
func (c *Controller) MyWord(ctx context.Context, playerID model.PlayerID) (model.Reveal, error) {
	roomID, err := c.boundRoom(ctx, playerID)
	if err != nil {
		return model.Reveal{}, err
	}

	var reveal model.Reveal
	err = c.withRoom(roomID, func(r *room.Room) error {
		var err error
		reveal, err = r.Reveal(playerID)
		return err
	})
	return reveal, err
}

// Chat and presence

// SendMessage relays a chat line to the player's room
func (c *Controller) SendMessage(ctx context.Context, playerID model.PlayerID, text string) error {
	if strings.TrimSpace(text) == "" || utf8.RuneCountInString(text) > maxMessageLength {
		return model.ErrInvalidMessage
	}

	roomID, err := c.boundRoom(ctx, playerID)
	if err != nil {
		return err
	}

	return c.withRoom(roomID, func(r *room.Room) error {
		if !r.IsMember(playerID) {
			return model.ErrNotInRoom
		}
		c.publish(roomID, model.EventMessage, model.MessagePayload{
			PlayerID: playerID,
			Text:     text,
		})
		return nil
	})
}

// SetConnected records an event stream for the player opening or closing
func (c *Controller) SetConnected(ctx context.Context, roomID model.RoomID, playerID model.PlayerID, connected bool) error {
	err := c.withRoom(roomID, func(r *room.Room) error {
		if r.SetConnected(playerID, connected) {
			c.publish(roomID, model.EventPresence, model.PresencePayload{
				PlayerID:  playerID,
				Connected: connected,
			})
		}
		return nil
	})
	if errors.Is(err, model.ErrRoomNotFound) {
		return nil
	}
	return err
}

// Identity

// UpdateUsername renames the player and tells their room
func (c *Controller) UpdateUsername(ctx context.Context, playerID model.PlayerID, displayName string) (*model.Player, error) {
	player, err := c.identity.UpdateUsername(ctx, playerID, displayName)
	if err != nil {
		return nil, err
	}
	c.announceProfile(ctx, player)
	return player, nil
}

// UpdateAvatar changes the player's avatar and tells their room
func (c *Controller) UpdateAvatar(ctx context.Context, playerID model.PlayerID, avatar string) (*model.Player, error) {
	player, err := c.identity.UpdateAvatar(ctx, playerID, avatar)
	if err != nil {
		return nil, err
	}
	c.announceProfile(ctx, player)
	return player, nil
}

func (c *Controller) announceProfile(ctx context.Context, player *model.Player) {
	roomID, err := c.boundRoom(ctx, player.ID)
	if err != nil {
		return
	}
	_ = c.withRoom(roomID, func(r *room.Room) error {
		if r.IsMember(player.ID) {
			c.publish(roomID, model.EventPlayerUpdated, model.PlayerUpdatedPayload{
				PlayerID:    player.ID,
				DisplayName: player.DisplayName,
				Avatar:      player.Avatar,
			})
		}
		return nil
	})
}

// Helpers

// boundRoom returns the live room the player is bound to. Bindings to
// rooms that no longer exist are cleared.
func (c *Controller) boundRoom(ctx context.Context, playerID model.PlayerID) (model.RoomID, error) {
	roomID, err := c.identity.CurrentRoom(ctx, playerID)
	if err != nil {
		return "", err
	}
	if roomID == "" {
		return "", model.ErrNotInRoom
	}
	if !c.registry.Exists(roomID) {
		c.unbind(ctx, playerID, roomID)
		return "", model.ErrNotInRoom
	}
	return roomID, nil
}

// unbind clears the player's binding if it still points at roomID. A
// binding to a different room belongs to a later join and is kept.
func (c *Controller) unbind(ctx context.Context, playerID model.PlayerID, roomID model.RoomID) {
	if err := c.identity.UnbindRoomIf(ctx, playerID, roomID); err != nil {
		c.logger.Warn("failed to clear room binding",
			slog.String("player_id", string(playerID)),
			slog.String("room_id", string(roomID)),
			slog.Any("error", err),
		)
	}
}

// requireUnbound fails if the player is seated in a live room other than
// allowed
func (c *Controller) requireUnbound(ctx context.Context, playerID model.PlayerID, allowed model.RoomID) error {
	current, err := c.boundRoom(ctx, playerID)
	if errors.Is(err, model.ErrNotInRoom) {
		return nil
	}
	if err != nil {
		return err
	}
	if current != allowed {
		return model.ErrIdentityAlreadyInRoom
	}
	return nil
}

// withRoom runs fn under the room lock, closing the room's connections if
// the room had to be torn down after a failure
func (c *Controller) withRoom(roomID model.RoomID, fn func(*room.Room) error) error {
	err := c.registry.WithRoom(roomID, fn)
	if errors.Is(err, model.ErrInternal) && !c.registry.Exists(roomID) {
		c.publisher.CloseRoom(roomID)
	}
	return err
}

func (c *Controller) publishDeparture(roomID model.RoomID, eventType model.EventType, playerID model.PlayerID, result room.LeaveResult) {
	c.publish(roomID, eventType, model.PlayerLeftPayload{
		PlayerID:  playerID,
		NewHostID: result.NewHostID,
	})
	if result.NewHostID != "" {
		c.publish(roomID, model.EventHostChanged, model.HostChangedPayload{
			OldHostID: playerID,
			NewHostID: result.NewHostID,
		})
	}
}

func (c *Controller) publish(roomID model.RoomID, eventType model.EventType, payload any) {
	c.publisher.Publish(roomID, c.event(roomID, eventType, payload))
}

func (c *Controller) publishToOne(roomID model.RoomID, playerID model.PlayerID, eventType model.EventType, payload any) {
	event := c.event(roomID, eventType, payload)
	event.Recipient = playerID
	c.publisher.PublishToOne(roomID, playerID, event)
}

func (c *Controller) event(roomID model.RoomID, eventType model.EventType, payload any) model.Event {
	return model.Event{
		Type:      eventType,
		Timestamp: c.clock.Now(),
		RoomID:    roomID,
		Payload:   payload,
	}
}

// lockPlayer serialises room creation, joining and leaving for one player so
// concurrent requests cannot seat them in two rooms
func (c *Controller) lockPlayer(playerID model.PlayerID) func() {
	h := fnv.New32a()
	_, _ = h.Write([]byte(playerID))
	mu := &c.playerLocks[h.Sum32()%playerLockStripes]
	mu.Lock()
	return mu.Unlock
}

// view resolves the current identity of every seated player
func (c *Controller) view(ctx context.Context, snap model.RoomSnapshot) *model.RoomView {
	v := &model.RoomView{
		Room:    snap,
		Players: make(map[model.PlayerID]model.Player, len(snap.Seats)),
	}
	for _, seat := range snap.Seats {
		player, err := c.identity.GetPlayer(ctx, seat.PlayerID)
		if err != nil {
			c.logger.Warn("failed to load seated player",
				slog.String("player_id", string(seat.PlayerID)),
				slog.Any("error", err),
			)
			continue
		}
		v.Players[seat.PlayerID] = *player
	}
	return v
}
