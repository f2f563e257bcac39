package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/mcoot/aseguradoss/internal/api"
	"github.com/mcoot/aseguradoss/internal/factory"
	pgstorage "github.com/mcoot/aseguradoss/internal/storage/postgres"
	redisstorage "github.com/mcoot/aseguradoss/internal/storage/redis"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// A missing .env is fine; the environment may already be set
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("could not read .env", slog.String("error", err.Error()))
	}

	cfg, port, err := configFromEnv(logger)
	if err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	app, err := factory.New(cfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}
	app.Start()

	initCtx, cancelInit := context.WithTimeout(context.Background(), 10*time.Second)
	app.Init(initCtx, cfg.EventsFile, logger)
	cancelInit()

	router := api.NewRouter(api.RouterConfig{
		Logger:         logger,
		Storage:        app.Storage,
		CatalogService: app.CatalogService,
		Engine:         app.Engine,
		Hub:            app.Hub,
	})

	serverConfig := api.DefaultServerConfig()
	serverConfig.Port = port
	server := api.NewServer(router, serverConfig, logger)

	server.OnShutdown(app.Hub.Close)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("server configured",
		slog.String("addr", server.Addr()),
		slog.String("storage", cfg.StorageType))

	exitCode := 0
	if err := server.Run(ctx); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		exitCode = 1
	}

	if err := app.Close(); err != nil {
		logger.Error("failed to release storage", slog.String("error", err.Error()))
		exitCode = 1
	}

	logger.Info("server stopped")
	os.Exit(exitCode)
}

// configFromEnv builds the factory config and listen port from the environment
func configFromEnv(logger *slog.Logger) (factory.Config, int, error) {
	cfg := factory.Config{
		Logger:      logger,
		StorageType: getEnvOrDefault("STORAGE_TYPE", factory.StorageTypeMemory),
		RemoteURL:   os.Getenv("REMOTE_URL"),
		EventsFile:  getEnvOrDefault("EVENTS_FILE", "data/eventos.json"),
	}

	port, err := strconv.Atoi(getEnvOrDefault("PORT", "8080"))
	if err != nil {
		return cfg, 0, errors.New("PORT must be a number")
	}

	if v := os.Getenv("DICE_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, 0, errors.New("DICE_INTERVAL must be a duration such as 100ms")
		}
		cfg.DiceInterval = d
	}

	if v := os.Getenv("PERSIST_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return cfg, 0, errors.New("PERSIST_TIMEOUT must be a positive duration such as 3s")
		}
		cfg.PersistTimeout = d
	}

	switch cfg.StorageType {
	case factory.StorageTypeRedis:
		redisURL := os.Getenv("REDIS_URL")
		if redisURL == "" {
			return cfg, 0, errors.New("REDIS_URL required when STORAGE_TYPE=redis")
		}
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = redisURL
		cfg.RedisConfig = &redisCfg

	case factory.StorageTypePostgres:
		dsn := os.Getenv("POSTGRES_DSN")
		if dsn == "" {
			return cfg, 0, errors.New("POSTGRES_DSN required when STORAGE_TYPE=postgres")
		}
		pgCfg := pgstorage.DefaultConfig()
		pgCfg.DSN = dsn
		cfg.PostgresConfig = &pgCfg
		cfg.MigratePostgres = os.Getenv("MIGRATE_POSTGRES") == "true"
	}

	return cfg, port, nil
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
