package room

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/mcoot/undercover/internal/dependencies/clock"
	"github.com/mcoot/undercover/internal/dependencies/random"
	"github.com/mcoot/undercover/internal/model"
	"github.com/mcoot/undercover/internal/services/game"
)

const (
	// CodeLength is the length of generated room codes
	CodeLength = 6
	// CodeAlphabet is the characters used in room codes (avoid confusing chars)
	CodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

	maxCodeAttempts = 32
)

// Registry owns every live room in the process. Its lock only guards the
// map; callers get exclusive access to a single room through WithRoom.
type Registry struct {
	mu    sync.RWMutex
	rooms map[model.RoomID]*Room

	engine *game.Engine
	clock  clock.Clock
	random random.Random
	logger *slog.Logger
}

// NewRegistry creates an empty Registry
func NewRegistry(engine *game.Engine, clock clock.Clock, random random.Random, logger *slog.Logger) *Registry {
	return &Registry{
		rooms:  make(map[model.RoomID]*Room),
		engine: engine,
		clock:  clock,
		random: random,
		logger: logger.With(slog.String("component", "room_registry")),
	}
}

// Create registers a new lobby-state room with creator seated as host
func (r *Registry) Create(creator model.PlayerID) (*Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		id := model.RoomID(r.random.String(CodeLength, CodeAlphabet))
		if id == "" {
			continue
		}
		if _, exists := r.rooms[id]; exists {
			continue
		}

		room := newRoom(id, creator, r.engine, r.clock)
		r.rooms[id] = room
		r.logger.Info("room created",
			slog.String("room_id", string(id)),
			slog.String("host_id", string(creator)),
		)
		return room, nil
	}

	r.logger.Error("could not allocate room code", slog.Int("attempts", maxCodeAttempts))
	return nil, model.ErrInternal
}

// Get returns a live room
func (r *Registry) Get(id model.RoomID) (*Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.rooms[id]
	if !ok {
		return nil, model.ErrRoomNotFound
	}
	return room, nil
}

// Exists reports whether the room is live
func (r *Registry) Exists(id model.RoomID) bool {
	_, err := r.Get(id)
	return err == nil
}

// Destroy removes a room. Destroying an absent room is a no-op.
func (r *Registry) Destroy(id model.RoomID) {
	r.mu.Lock()
	room, ok := r.rooms[id]
	delete(r.rooms, id)
	r.mu.Unlock()

	if ok {
		room.destroyed.Store(true)
		r.logger.Info("room destroyed", slog.String("room_id", string(id)))
	}
}

// Count returns the number of live rooms
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

// WithRoom runs fn with exclusive access to the room. A room left empty by
// fn is destroyed before the lock is released. A panic in fn destroys only
// that room and is reported as ErrInternal.
func (r *Registry) WithRoom(id model.RoomID, fn func(*Room) error) (err error) {
	room, err := r.Get(id)
	if err != nil {
		return err
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	// Lost a race with the last member leaving
	if room.destroyed.Load() {
		return model.ErrRoomNotFound
	}

	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("room operation panicked",
				slog.String("room_id", string(id)),
				slog.String("panic", fmt.Sprint(rec)),
			)
			r.Destroy(id)
			err = model.ErrInternal
			return
		}
		if room.IsEmpty() {
			r.Destroy(id)
		}
	}()

	return fn(room)
}
