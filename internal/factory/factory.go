package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"

	"github.com/mcoot/undercover/internal/dependencies/clock"
	"github.com/mcoot/undercover/internal/dependencies/random"
	"github.com/mcoot/undercover/internal/dependencies/uuid"
	"github.com/mcoot/undercover/internal/services/game"
	"github.com/mcoot/undercover/internal/services/identity"
	"github.com/mcoot/undercover/internal/services/party"
	"github.com/mcoot/undercover/internal/services/room"
	"github.com/mcoot/undercover/internal/services/wordbank"
	"github.com/mcoot/undercover/internal/sse"
	"github.com/mcoot/undercover/internal/storage"
	"github.com/mcoot/undercover/internal/storage/memory"
	redisstorage "github.com/mcoot/undercover/internal/storage/redis"
	"github.com/mcoot/undercover/internal/ws"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random
	UUID   uuid.UUID

	// Services
	Engine          *game.Engine
	Registry        *room.Registry
	WordBank        *wordbank.Service
	IdentityService *identity.Service
	HubManager      *sse.HubManager
	Broadcaster     *sse.Broadcaster
	PartyController *party.Controller
	WebSocket       *ws.Gateway

	logger *slog.Logger
}

// Config holds configuration for the application factory
type Config struct {
	// IdentityConfig holds configuration for the identity service (optional)
	// If zero value, defaults to identity.DefaultConfig()
	IdentityConfig identity.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	identityCfg := cfg.IdentityConfig
	if identityCfg.SessionDuration == 0 {
		identityCfg = identity.DefaultConfig()
	}

	return newWithDependencies(store, clock.New(), random.New(), uuid.New(), identityCfg, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	rnd random.Random,
	ids uuid.UUID,
	identityCfg identity.Config,
	logger *slog.Logger,
) *App {
	engine := game.NewEngine(rnd)
	registry := room.NewRegistry(engine, clk, rnd, logger)
	words := wordbank.New(store, rnd, logger)
	identityService := identity.New(store, clk, ids, rnd, logger, identityCfg)
	hubManager := sse.NewHubManager(logger)
	broadcaster := sse.NewBroadcaster(hubManager, logger)
	controller := party.NewController(registry, identityService, words, broadcaster, clk, logger)
	gateway := ws.NewGateway(identityService, controller, hubManager, logger)

	return &App{
		Storage:         store,
		Clock:           clk,
		Random:          rnd,
		UUID:            ids,
		Engine:          engine,
		Registry:        registry,
		WordBank:        words,
		IdentityService: identityService,
		HubManager:      hubManager,
		Broadcaster:     broadcaster,
		PartyController: controller,
		WebSocket:       gateway,
		logger:          logger,
	}
}

// LoadWords fills the word bank. A file at path wins and is written to
// storage; without one the stored pairs are used, then the built-in list.
func (a *App) LoadWords(ctx context.Context, path string) error {
	if path != "" {
		err := a.WordBank.LoadFromFile(ctx, path)
		if err == nil {
			return nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load word bank: %w", err)
		}
		a.logger.Warn("word bank file not found", slog.String("path", path))
	}

	if err := a.WordBank.LoadFromStorage(ctx); err == nil {
		return nil
	}
	return a.WordBank.LoadBuiltin()
}

// Close releases connections held by the app
func (a *App) Close() error {
	a.HubManager.CloseAll()
	if closer, ok := a.Storage.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
