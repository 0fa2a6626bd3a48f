package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mcoot/scorekeeper/internal/config"
	"github.com/mcoot/scorekeeper/internal/metrics"
	"github.com/mcoot/scorekeeper/internal/services/leaderboard"
	"github.com/mcoot/scorekeeper/internal/services/registry"
	"github.com/mcoot/scorekeeper/internal/storage"
	filestorage "github.com/mcoot/scorekeeper/internal/storage/file"
	"github.com/mcoot/scorekeeper/internal/storage/memory"
	pgstorage "github.com/mcoot/scorekeeper/internal/storage/postgres"
	redisstorage "github.com/mcoot/scorekeeper/internal/storage/redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Ledger storage.Ledger

	// Observability
	Logger  *slog.Logger
	Metrics *metrics.Metrics

	// Services
	Registry    *registry.Service
	Leaderboard *leaderboard.Service
}

// Config holds configuration for the application factory
type Config struct {
	// Ledger selects and configures the ledger backend.
	// If Type is empty, the in-memory ledger is used.
	Ledger config.LedgerConfig
	// LeaderboardMaxLimit caps ranking size (optional)
	// If zero, leaderboard.DefaultMaxLimit is used
	LeaderboardMaxLimit int
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// Metrics collects application metrics (optional)
	// If nil, a fresh registry is created
	Metrics *metrics.Metrics
}

// New creates the application and loads the registry from the configured
// ledger. A ledger that cannot be read or migrated is an error; the caller
// should refuse to serve.
func New(ctx context.Context, cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	m := cfg.Metrics
	if m == nil {
		m = metrics.New()
	}

	ledger, err := newLedger(ctx, cfg.Ledger)
	if err != nil {
		return nil, err
	}
	logger.Info("ledger opened", slog.String("type", ledgerType(cfg.Ledger)))

	app := newWithDependencies(ledger, cfg.LeaderboardMaxLimit, logger, m)
	if err := app.Registry.Load(ctx); err != nil {
		_ = ledger.Close()
		return nil, fmt.Errorf("load registry: %w", err)
	}
	return app, nil
}

func ledgerType(cfg config.LedgerConfig) string {
	if cfg.Type == "" {
		return config.LedgerMemory
	}
	return cfg.Type
}

func newLedger(ctx context.Context, cfg config.LedgerConfig) (storage.Ledger, error) {
	switch ledgerType(cfg) {
	case config.LedgerMemory:
		return memory.New(), nil
	case config.LedgerFile:
		fileCfg := filestorage.DefaultConfig()
		if cfg.Path != "" {
			fileCfg.Path = cfg.Path
		}
		fileCfg.Compress = cfg.Compress
		return filestorage.New(fileCfg)
	case config.LedgerRedis:
		if cfg.RedisURL == "" {
			return nil, errors.New("redis URL required when ledger type is redis")
		}
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		if cfg.RedisKey != "" {
			redisCfg.Namespace = cfg.RedisKey
		}
		return redisstorage.New(redisCfg)
	case config.LedgerPostgres:
		if cfg.DatabaseURL == "" {
			return nil, errors.New("database URL required when ledger type is postgres")
		}
		pgCfg := pgstorage.DefaultConfig()
		pgCfg.URL = cfg.DatabaseURL
		return pgstorage.New(ctx, pgCfg)
	default:
		return nil, fmt.Errorf("invalid ledger type %q: must be file, redis, postgres or memory", cfg.Type)
	}
}

// newWithDependencies creates an App around an existing ledger (useful for testing).
// The registry is not loaded.
func newWithDependencies(ledger storage.Ledger, maxLimit int, logger *slog.Logger, m *metrics.Metrics) *App {
	reg := registry.New(ledger, logger, m)
	board := leaderboard.New(reg, maxLimit)

	return &App{
		Ledger:      ledger,
		Logger:      logger,
		Metrics:     m,
		Registry:    reg,
		Leaderboard: board,
	}
}

// Close flushes the registry and releases the ledger
func (a *App) Close(ctx context.Context) error {
	flushErr := a.Registry.Flush(ctx)
	if flushErr != nil {
		a.Logger.Error("final flush failed", slog.String("error", flushErr.Error()))
	}
	return errors.Join(flushErr, a.Ledger.Close())
}
