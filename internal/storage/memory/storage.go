package memory

import (
	"context"
	"sync"

	"github.com/mcoot/undercover/internal/model"
	"github.com/mcoot/undercover/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	players   map[model.PlayerID]*model.Player
	sessions  map[string]*model.Session
	bindings  map[model.PlayerID]model.RoomID
	wordPairs []model.WordPair
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		players:  make(map[model.PlayerID]*model.Player),
		sessions: make(map[string]*model.Session),
		bindings: make(map[model.PlayerID]model.RoomID),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := *player
	s.players[player.ID] = &p
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	player, ok := s.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	p := *player
	return &p, nil
}

func (s *Storage) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.players, id)
	return nil
}

// Session operations

func (s *Storage) SaveSession(ctx context.Context, session *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := *session
	s.sessions[session.Token] = &sess
	return nil
}

func (s *Storage) GetSession(ctx context.Context, token string) (*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[token]
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	sess := *session
	return &sess, nil
}

func (s *Storage) DeleteSession(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

// Room binding operations

func (s *Storage) SaveRoomBinding(ctx context.Context, playerID model.PlayerID, roomID model.RoomID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bindings[playerID] = roomID
	return nil
}

func (s *Storage) GetRoomBinding(ctx context.Context, playerID model.PlayerID) (model.RoomID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bindings[playerID], nil
}

func (s *Storage) DeleteRoomBinding(ctx context.Context, playerID model.PlayerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.bindings, playerID)
	return nil
}

func (s *Storage) DeleteRoomBindingIf(ctx context.Context, playerID model.PlayerID, roomID model.RoomID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if current, ok := s.bindings[playerID]; !ok || current != roomID {
		return false, nil
	}
	delete(s.bindings, playerID)
	return true, nil
}

// Word bank operations

func (s *Storage) GetWordPairs(ctx context.Context) ([]model.WordPair, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.wordPairs == nil {
		return nil, model.ErrWordBankEmpty
	}
	result := make([]model.WordPair, len(s.wordPairs))
	copy(result, s.wordPairs)
	return result, nil
}

func (s *Storage) SaveWordPairs(ctx context.Context, pairs []model.WordPair) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wordPairs = make([]model.WordPair, len(pairs))
	copy(s.wordPairs, pairs)
	return nil
}
