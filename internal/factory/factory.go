package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/mcoot/aseguradoss/internal/dependencies/clock"
	"github.com/mcoot/aseguradoss/internal/dependencies/random"
	"github.com/mcoot/aseguradoss/internal/services/arbiter"
	"github.com/mcoot/aseguradoss/internal/services/catalog"
	"github.com/mcoot/aseguradoss/internal/services/dice"
	"github.com/mcoot/aseguradoss/internal/services/game"
	"github.com/mcoot/aseguradoss/internal/services/players"
	"github.com/mcoot/aseguradoss/internal/storage"
	"github.com/mcoot/aseguradoss/internal/storage/memory"
	pgstorage "github.com/mcoot/aseguradoss/internal/storage/postgres"
	redisstorage "github.com/mcoot/aseguradoss/internal/storage/redis"
	reststorage "github.com/mcoot/aseguradoss/internal/storage/rest"
	"github.com/mcoot/aseguradoss/internal/web/sse"
)

// Storage type constants
const (
	StorageTypeMemory   = "memory"
	StorageTypeRedis    = "redis"
	StorageTypePostgres = "postgres"
	StorageTypeRest     = "rest"
)

// DefaultDiceInterval paces the dice animation
const DefaultDiceInterval = 100 * time.Millisecond

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	CatalogService *catalog.Service
	PlayerStore    *players.Store
	Arbiter        *arbiter.Arbiter
	Roller         *dice.Roller
	Engine         *game.Engine
	Hub            *sse.Hub
	Broadcaster    *sse.Broadcaster

	closers []io.Closer
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig is required when StorageType is "redis"
	RedisConfig *redisstorage.Config
	// PostgresConfig is required when StorageType is "postgres"
	PostgresConfig *pgstorage.Config
	// MigratePostgres runs the schema migration at startup
	MigratePostgres bool
	// RemoteURL is the server to store on when StorageType is "rest"
	RemoteURL string
	// EventsFile seeds an empty event catalog (optional)
	EventsFile string
	// DiceInterval paces the dice animation; zero means DefaultDiceInterval
	DiceInterval time.Duration
	// PersistTimeout bounds each player write to storage; zero means
	// players.DefaultPersistTimeout
	PersistTimeout time.Duration
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	store, closer, err := newStorage(cfg)
	if err != nil {
		return nil, err
	}

	interval := cfg.DiceInterval
	if interval == 0 {
		interval = DefaultDiceInterval
	}

	app := newWithDependencies(store, clock.New(), random.New(), interval, logger)
	if cfg.PersistTimeout > 0 {
		app.PlayerStore.SetPersistTimeout(cfg.PersistTimeout)
	}
	if closer != nil {
		app.closers = append(app.closers, closer)
	}
	return app, nil
}

func newStorage(cfg Config) (storage.Storage, io.Closer, error) {
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		return memory.New(), nil, nil

	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, nil, errors.New("RedisConfig required when StorageType is redis")
		}
		s, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil

	case StorageTypePostgres:
		if cfg.PostgresConfig == nil {
			return nil, nil, errors.New("PostgresConfig required when StorageType is postgres")
		}
		s, err := pgstorage.New(*cfg.PostgresConfig)
		if err != nil {
			return nil, nil, err
		}
		if cfg.MigratePostgres {
			if err := s.Migrate(); err != nil {
				_ = s.Close()
				return nil, nil, fmt.Errorf("migrating postgres: %w", err)
			}
		}
		return s, s, nil

	case StorageTypeRest:
		if cfg.RemoteURL == "" {
			return nil, nil, errors.New("RemoteURL required when StorageType is rest")
		}
		return reststorage.New(cfg.RemoteURL), nil, nil

	default:
		return nil, nil, fmt.Errorf("invalid StorageType %q: must be one of memory, redis, postgres, rest", storageType)
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, diceInterval time.Duration, logger *slog.Logger) *App {
	catalogService := catalog.New(store, rnd, logger)
	playerStore := players.New(store, logger)
	arb := arbiter.New(clk, logger)
	roller := dice.New(rnd)
	hub := sse.NewHub(logger, sse.EventPlayersChanged, sse.EventTurnAdvanced)
	broadcaster := sse.NewBroadcaster(hub, logger)
	engine := game.NewEngine(playerStore, catalogService, arb, roller, logger,
		game.WithDiceInterval(diceInterval),
		game.WithNotifier(broadcaster),
	)

	return &App{
		Storage:        store,
		Clock:          clk,
		Random:         rnd,
		CatalogService: catalogService,
		PlayerStore:    playerStore,
		Arbiter:        arb,
		Roller:         roller,
		Engine:         engine,
		Hub:            hub,
		Broadcaster:    broadcaster,
	}
}

// Init restores the persisted session and loads the event catalog, seeding
// it from eventsFile when storage holds none. Neither failure is fatal: the
// game starts empty and the catalog loads on first use.
func (a *App) Init(ctx context.Context, eventsFile string, logger *slog.Logger) {
	if err := a.PlayerStore.Load(ctx); err != nil {
		logger.Warn("could not restore players", slog.String("error", err.Error()))
	}

	var err error
	if eventsFile != "" {
		_, err = a.CatalogService.LoadFromFile(ctx, eventsFile)
	} else {
		_, err = a.CatalogService.Load(ctx)
	}
	if err != nil {
		logger.Warn("could not load event catalog", slog.String("error", err.Error()))
	}
}

// Start runs the background workers
func (a *App) Start() {
	go a.Hub.Run()
}

// Close stops the game and releases storage connections
func (a *App) Close() error {
	a.Engine.Stop()
	a.Hub.Close()

	var errs []error
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
