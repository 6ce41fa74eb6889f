package identity

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mcoot/undercover/internal/dependencies/clock"
	"github.com/mcoot/undercover/internal/dependencies/random"
	"github.com/mcoot/undercover/internal/dependencies/uuid"
	"github.com/mcoot/undercover/internal/model"
	"github.com/mcoot/undercover/internal/storage"
)

// ErrInvalidSession is returned for unknown or expired session tokens
var ErrInvalidSession = errors.New("invalid or expired session")

const (
	maxDisplayNameLength = 32
	maxAvatarLength      = 256

	guestSuffixLength   = 4
	guestSuffixAlphabet = "0123456789"
)

// Session is a validated session together with its player
type Session struct {
	Token     string
	PlayerID  model.PlayerID
	Player    model.Player
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Config holds configuration for the identity service
type Config struct {
	SessionDuration time.Duration
}

// DefaultConfig returns default identity configuration
func DefaultConfig() Config {
	return Config{
		SessionDuration: 7 * 24 * time.Hour,
	}
}

// Service issues guest identities and sessions, and tracks which room each
// player is bound to. It holds no game state.
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	uuid    uuid.UUID
	random  random.Random
	logger  *slog.Logger

	sessionDuration time.Duration
}

// New creates a new identity Service
func New(
	storage storage.Storage,
	clock clock.Clock,
	uuid uuid.UUID,
	random random.Random,
	logger *slog.Logger,
	cfg Config,
) *Service {
	if cfg.SessionDuration == 0 {
		cfg.SessionDuration = DefaultConfig().SessionDuration
	}
	return &Service{
		storage:         storage,
		clock:           clock,
		uuid:            uuid,
		random:          random,
		logger:          logger.With(slog.String("component", "identity")),
		sessionDuration: cfg.SessionDuration,
	}
}

// CreateGuest creates a player identity and a session for it. An empty
// display name gets a generated guest name.
func (s *Service) CreateGuest(ctx context.Context, displayName, avatar string) (*Session, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		displayName = "Guest-" + s.random.String(guestSuffixLength, guestSuffixAlphabet)
	}
	if err := validateDisplayName(displayName); err != nil {
		return nil, err
	}
	if err := validateAvatar(avatar); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	player := &model.Player{
		ID:          model.PlayerID(s.uuid.NewUUID()),
		DisplayName: displayName,
		Avatar:      avatar,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.storage.SavePlayer(ctx, player); err != nil {
		return nil, err
	}

	session := &model.Session{
		Token:     s.uuid.NewUUID(),
		PlayerID:  player.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionDuration),
	}
	if err := s.storage.SaveSession(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Info("guest created", slog.String("player_id", string(player.ID)))
	return newSession(session, player), nil
}

// ValidateSession resolves a token to its session and player
func (s *Service) ValidateSession(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrInvalidSession
	}

	session, err := s.storage.GetSession(ctx, token)
	if err != nil {
		if errors.Is(err, model.ErrSessionNotFound) {
			return nil, ErrInvalidSession
		}
		return nil, err
	}

	if s.clock.Now().After(session.ExpiresAt) {
		_ = s.storage.DeleteSession(ctx, token)
		return nil, ErrInvalidSession
	}

	player, err := s.storage.GetPlayer(ctx, session.PlayerID)
	if err != nil {
		if errors.Is(err, model.ErrPlayerNotFound) {
			return nil, ErrInvalidSession
		}
		return nil, err
	}

	return newSession(session, player), nil
}

// InvalidateSession removes a session
func (s *Service) InvalidateSession(ctx context.Context, token string) error {
	return s.storage.DeleteSession(ctx, token)
}

// GetPlayer returns the latest identity for a player
func (s *Service) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	return s.storage.GetPlayer(ctx, id)
}

// UpdateUsername changes a player's display name
func (s *Service) UpdateUsername(ctx context.Context, id model.PlayerID, displayName string) (*model.Player, error) {
	displayName = strings.TrimSpace(displayName)
	if err := validateDisplayName(displayName); err != nil {
		return nil, err
	}
	return s.updatePlayer(ctx, id, func(p *model.Player) {
		p.DisplayName = displayName
	})
}

// UpdateAvatar changes a player's avatar
func (s *Service) UpdateAvatar(ctx context.Context, id model.PlayerID, avatar string) (*model.Player, error) {
	if err := validateAvatar(avatar); err != nil {
		return nil, err
	}
	return s.updatePlayer(ctx, id, func(p *model.Player) {
		p.Avatar = avatar
	})
}

func (s *Service) updatePlayer(ctx context.Context, id model.PlayerID, apply func(*model.Player)) (*model.Player, error) {
	player, err := s.storage.GetPlayer(ctx, id)
	if err != nil {
		return nil, err
	}
	apply(player)
	player.UpdatedAt = s.clock.Now()

	if err := s.storage.SavePlayer(ctx, player); err != nil {
		return nil, err
	}
	return player, nil
}

// CurrentRoom returns the room the player is bound to, or empty
func (s *Service) CurrentRoom(ctx context.Context, id model.PlayerID) (model.RoomID, error) {
	return s.storage.GetRoomBinding(ctx, id)
}

// BindRoom records that the player is seated in roomID
func (s *Service) BindRoom(ctx context.Context, id model.PlayerID, roomID model.RoomID) error {
	return s.storage.SaveRoomBinding(ctx, id, roomID)
}

// UnbindRoom clears the player's room binding
func (s *Service) UnbindRoom(ctx context.Context, id model.PlayerID) error {
	return s.storage.DeleteRoomBinding(ctx, id)
}

// UnbindRoomIf clears the player's binding only while it still points at roomID
func (s *Service) UnbindRoomIf(ctx context.Context, id model.PlayerID, roomID model.RoomID) error {
	cleared, err := s.storage.DeleteRoomBindingIf(ctx, id, roomID)
	if err != nil {
		return err
	}
	if !cleared {
		s.logger.Debug("kept newer room binding",
			slog.String("player_id", string(id)),
			slog.String("room_id", string(roomID)))
	}
	return nil
}

func newSession(session *model.Session, player *model.Player) *Session {
	return &Session{
		Token:     session.Token,
		PlayerID:  session.PlayerID,
		Player:    *player,
		CreatedAt: session.CreatedAt,
		ExpiresAt: session.ExpiresAt,
	}
}

func validateDisplayName(name string) error {
	n := utf8.RuneCountInString(name)
	if n == 0 || n > maxDisplayNameLength {
		return model.ErrInvalidName
	}
	return nil
}

func validateAvatar(avatar string) error {
	if utf8.RuneCountInString(avatar) > maxAvatarLength {
		return model.ErrInvalidAvatar
	}
	return nil
}

// ServiceInterface is the identity surface used by the party controller and transports
type ServiceInterface interface {
	CreateGuest(ctx context.Context, displayName, avatar string) (*Session, error)
	ValidateSession(ctx context.Context, token string) (*Session, error)
	InvalidateSession(ctx context.Context, token string) error
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)
	UpdateUsername(ctx context.Context, id model.PlayerID, displayName string) (*model.Player, error)
	UpdateAvatar(ctx context.Context, id model.PlayerID, avatar string) (*model.Player, error)
	CurrentRoom(ctx context.Context, id model.PlayerID) (model.RoomID, error)
	BindRoom(ctx context.Context, id model.PlayerID, roomID model.RoomID) error
	UnbindRoom(ctx context.Context, id model.PlayerID) error
	UnbindRoomIf(ctx context.Context, id model.PlayerID, roomID model.RoomID) error
}

var _ ServiceInterface = (*Service)(nil)
