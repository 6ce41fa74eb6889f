package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/undercover/internal/model"
	"github.com/mcoot/undercover/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

var _ storage.Storage = (*Storage)(nil)

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	data, err := json.Marshal(player)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, playerKey(player.ID), data, s.cfg.PlayerTTL).Err()
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	data, err := s.client.Get(ctx, playerKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}

	var player model.Player
	if err := json.Unmarshal(data, &player); err != nil {
		return nil, err
	}
	return &player, nil
}

func (s *Storage) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, playerKey(id))
	pipe.Del(ctx, roomBindingKey(id))
	_, err := pipe.Exec(ctx)
	return err
}

// Session operations

func (s *Storage) SaveSession(ctx context.Context, session *model.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}

	// Expire with the session itself when it carries an expiry
	ttl := s.cfg.SessionTTL
	if !session.ExpiresAt.IsZero() {
		if remaining := time.Until(session.ExpiresAt); remaining > 0 {
			ttl = remaining
		}
	}
	return s.client.Set(ctx, sessionKey(session.Token), data, ttl).Err()
}

func (s *Storage) GetSession(ctx context.Context, token string) (*model.Session, error) {
	data, err := s.client.Get(ctx, sessionKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrSessionNotFound
		}
		return nil, err
	}

	var session model.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *Storage) DeleteSession(ctx context.Context, token string) error {
	return s.client.Del(ctx, sessionKey(token)).Err()
}

// Room binding operations

func (s *Storage) SaveRoomBinding(ctx context.Context, playerID model.PlayerID, roomID model.RoomID) error {
	return s.client.Set(ctx, roomBindingKey(playerID), string(roomID), s.cfg.BindingTTL).Err()
}

func (s *Storage) GetRoomBinding(ctx context.Context, playerID model.PlayerID) (model.RoomID, error) {
	roomID, err := s.client.Get(ctx, roomBindingKey(playerID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", err
	}
	return model.RoomID(roomID), nil
}

func (s *Storage) DeleteRoomBinding(ctx context.Context, playerID model.PlayerID) error {
	return s.client.Del(ctx, roomBindingKey(playerID)).Err()
}

var deleteBindingIfScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

func (s *Storage) DeleteRoomBindingIf(ctx context.Context, playerID model.PlayerID, roomID model.RoomID) (bool, error) {
	n, err := deleteBindingIfScript.Run(ctx, s.client, []string{roomBindingKey(playerID)}, string(roomID)).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// Word bank operations

func (s *Storage) GetWordPairs(ctx context.Context) ([]model.WordPair, error) {
	key := wordPairsKey()

	exists, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, model.ErrWordBankEmpty
	}

	// Stored as a list so order survives a round trip
	values, err := s.client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, err
	}

	pairs := make([]model.WordPair, 0, len(values))
	for _, val := range values {
		var pair model.WordPair
		if err := json.Unmarshal([]byte(val), &pair); err != nil {
			continue // Skip invalid data
		}
		pairs = append(pairs, pair)
	}
	return pairs, nil
}

func (s *Storage) SaveWordPairs(ctx context.Context, pairs []model.WordPair) error {
	key := wordPairsKey()

	members := make([]interface{}, 0, len(pairs))
	for _, p := range pairs {
		data, err := json.Marshal(p)
		if err != nil {
			return err
		}
		members = append(members, string(data))
	}

	// Replace the existing list atomically
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, key)
	if len(members) > 0 {
		pipe.RPush(ctx, key, members...)
	}
	_, err := pipe.Exec(ctx)
	return err
}
