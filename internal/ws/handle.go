package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mcoot/undercover/internal/api/apierr"
	"github.com/mcoot/undercover/internal/api/request"
	"github.com/mcoot/undercover/internal/api/response"
	"github.com/mcoot/undercover/internal/model"
)

// handle runs one action. Failures are sent only to this socket.
func (c *conn) handle(ctx context.Context, frame Frame) {
	reply, err := c.dispatch(ctx, frame)
	if err != nil {
		if apierr.StatusOf(err) >= http.StatusInternalServerError {
			c.logger.Error("ws action failed",
				slog.String("event", frame.Event),
				slog.Any("error", err))
		}
		c.replyError(err)
		return
	}
	c.reply(frame.Event, reply)
}

func (c *conn) dispatch(ctx context.Context, frame Frame) (any, error) {
	ctl := c.gateway.controller
	pid := c.playerID

	switch frame.Event {
	case ActionCreate:
		if _, err := ctl.CreateRoom(ctx, pid); err != nil {
			return nil, err
		}
		return c.currentRoom(ctx)

	case ActionJoin:
		var req request.JoinRoomRequest
		if err := decode(frame, &req); err != nil {
			return nil, err
		}
		roomID := model.RoomID(strings.ToUpper(strings.TrimSpace(req.RoomID)))
		if roomID == "" {
			return nil, apierr.NewInvalidRequestError("room_id is required")
		}
		if _, err := ctl.JoinRoom(ctx, pid, roomID); err != nil {
			return nil, err
		}
		return c.currentRoom(ctx)

	case ActionQuit:
		if err := ctl.LeaveRoom(ctx, pid); err != nil {
			return nil, err
		}
		c.sync(ctx, false)
		return nil, nil

	case ActionSettingBlank, ActionSettingSpy:
		var req request.CountRequest
		if err := decode(frame, &req); err != nil {
			return nil, err
		}
		if req.Count == nil {
			return nil, apierr.NewInvalidRequestError("count is required")
		}
		update := ctl.UpdateBlankCount
		if frame.Event == ActionSettingSpy {
			update = ctl.UpdateSpyCount
		}
		settings, err := update(ctx, pid, *req.Count)
		if err != nil {
			return nil, err
		}
		return response.SettingsFromModel(settings), nil

	case ActionSettingRandom:
		var req request.IsRandomRequest
		if err := decode(frame, &req); err != nil {
			return nil, err
		}
		if req.IsRandom == nil {
			return nil, apierr.NewInvalidRequestError("is_random is required")
		}
		settings, err := ctl.UpdateIsRandom(ctx, pid, *req.IsRandom)
		if err != nil {
			return nil, err
		}
		return response.SettingsFromModel(settings), nil

	case ActionHost:
		target, err := decodeTarget(frame)
		if err != nil {
			return nil, err
		}
		return nil, ctl.TransferHost(ctx, pid, target)

	case ActionKick:
		target, err := decodeTarget(frame)
		if err != nil {
			return nil, err
		}
		return nil, ctl.Kick(ctx, pid, target)

	case ActionStart:
		var req request.StartGameRequest
		if len(frame.Data) > 0 {
			if err := decode(frame, &req); err != nil {
				return nil, err
			}
		}
		var words *model.WordPair
		if req.CivilianWord != "" || req.SpyWord != "" {
			words = &model.WordPair{Civilian: req.CivilianWord, Spy: req.SpyWord}
		}
		return nil, ctl.StartGame(ctx, pid, words)

	case ActionReport:
		target, err := decodeTarget(frame)
		if err != nil {
			return nil, err
		}
		reported, err := ctl.Report(ctx, pid, target)
		if err != nil {
			return nil, err
		}
		return response.ReportResponseFromIDs(reported), nil

	case ActionEnd:
		var req request.EndGameRequest
		if err := decode(frame, &req); err != nil {
			return nil, err
		}
		return nil, ctl.EndGame(ctx, pid, req.Winner)

	case ActionMessage:
		var req request.MessageRequest
		if err := decode(frame, &req); err != nil {
			return nil, err
		}
		return nil, ctl.SendMessage(ctx, pid, req.Text)

	case ActionUpdateUsername:
		var req request.UpdatePlayerRequest
		if err := decode(frame, &req); err != nil {
			return nil, err
		}
		if req.DisplayName == nil {
			return nil, apierr.NewInvalidRequestError("display_name is required")
		}
		player, err := ctl.UpdateUsername(ctx, pid, *req.DisplayName)
		if err != nil {
			return nil, err
		}
		return response.PlayerFromModel(player), nil

	case ActionUpdateAvatar:
		var req request.UpdatePlayerRequest
		if err := decode(frame, &req); err != nil {
			return nil, err
		}
		if req.Avatar == nil {
			return nil, apierr.NewInvalidRequestError("avatar is required")
		}
		player, err := ctl.UpdateAvatar(ctx, pid, *req.Avatar)
		if err != nil {
			return nil, err
		}
		return response.PlayerFromModel(player), nil

	default:
		return nil, apierr.NewInvalidRequestError("unknown event " + frame.Event)
	}
}

// currentRoom moves the subscription to the player's new room and returns
// a view read after subscribing
func (c *conn) currentRoom(ctx context.Context) (any, error) {
	c.sync(ctx, false)
	view, err := c.gateway.controller.CurrentRoom(ctx, c.playerID)
	if err != nil {
		return nil, err
	}
	return response.RoomFromView(view), nil
}

func decode(frame Frame, dst any) error {
	if len(frame.Data) == 0 {
		return apierr.NewInvalidRequestError("data is required")
	}
	if err := json.Unmarshal(frame.Data, dst); err != nil {
		return apierr.NewInvalidRequestError("invalid data")
	}
	return nil
}

func decodeTarget(frame Frame) (model.PlayerID, error) {
	var req request.PlayerTargetRequest
	if err := decode(frame, &req); err != nil {
		return "", err
	}
	if req.PlayerID == "" {
		return "", apierr.NewInvalidRequestError("player_id is required")
	}
	return model.PlayerID(req.PlayerID), nil
}
