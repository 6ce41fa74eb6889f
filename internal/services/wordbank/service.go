package wordbank

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/mcoot/undercover/internal/dependencies/random"
	"github.com/mcoot/undercover/internal/model"
	"github.com/mcoot/undercover/internal/services/game"
	"github.com/mcoot/undercover/internal/storage"
)

// builtinPairs is used when no word file is available
var builtinPairs = []model.WordPair{
	{Civilian: "apple", Spy: "pear"},
	{Civilian: "coffee", Spy: "tea"},
	{Civilian: "cat", Spy: "tiger"},
	{Civilian: "piano", Spy: "guitar"},
	{Civilian: "beach", Spy: "desert"},
	{Civilian: "train", Spy: "subway"},
	{Civilian: "dumpling", Spy: "wonton"},
	{Civilian: "doctor", Spy: "nurse"},
}

// Service holds the word pairs a round can draw from
type Service struct {
	storage storage.Storage
	random  random.Random
	logger  *slog.Logger

	mu    sync.RWMutex
	pairs []model.WordPair
}

// New creates a new word bank Service
func New(storage storage.Storage, random random.Random, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		random:  random,
		logger:  logger.With(slog.String("component", "wordbank")),
	}
}

// LoadFromStorage loads word pairs previously saved to storage
func (s *Service) LoadFromStorage(ctx context.Context) error {
	pairs, err := s.storage.GetWordPairs(ctx)
	if err != nil {
		return err
	}
	return s.LoadPairs(pairs)
}

// LoadFromFile loads word pairs from a file with one "civilian,spy" pair
// per line. Blank lines and lines starting with # are skipped.
func (s *Service) LoadFromFile(ctx context.Context, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	pairs, err := ParsePairs(file)
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	// Save to storage for future use
	if err := s.storage.SaveWordPairs(ctx, pairs); err != nil {
		return err
	}

	s.logger.Info("loaded word pairs", slog.String("path", path), slog.Int("count", len(pairs)))
	return s.LoadPairs(pairs)
}

// LoadBuiltin loads the built-in word pairs
func (s *Service) LoadBuiltin() error {
	return s.LoadPairs(builtinPairs)
}

// LoadPairs replaces the loaded pairs, dropping any that are not playable
func (s *Service) LoadPairs(pairs []model.WordPair) error {
	valid := make([]model.WordPair, 0, len(pairs))
	for _, p := range pairs {
		if game.ValidateWordPair(p) != nil {
			continue
		}
		valid = append(valid, game.NormalizeWordPair(p))
	}
	if len(valid) == 0 {
		return model.ErrWordBankEmpty
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pairs = valid
	return nil
}

// Random returns a random loaded pair
func (s *Service) Random() (model.WordPair, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.pairs) == 0 {
		return model.WordPair{}, model.ErrWordBankEmpty
	}
	return s.pairs[s.random.Intn(len(s.pairs))], nil
}

// Count returns the number of loaded pairs
func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.pairs)
}

// ParsePairs reads "civilian,spy" lines
func ParsePairs(r io.Reader) ([]model.WordPair, error) {
	var pairs []model.WordPair
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		civilian, spy, ok := strings.Cut(text, ",")
		if !ok {
			return nil, fmt.Errorf("line %d: expected \"civilian,spy\"", line)
		}
		pairs = append(pairs, model.WordPair{
			Civilian: strings.TrimSpace(civilian),
			Spy:      strings.TrimSpace(spy),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return pairs, nil
}

// ServiceInterface is the word bank surface used by the party controller
type ServiceInterface interface {
	Random() (model.WordPair, error)
	Count() int
}

var _ ServiceInterface = (*Service)(nil)
