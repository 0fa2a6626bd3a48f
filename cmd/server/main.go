package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mcoot/scorekeeper/internal/api"
	"github.com/mcoot/scorekeeper/internal/config"
	"github.com/mcoot/scorekeeper/internal/factory"
	"github.com/mcoot/scorekeeper/internal/logging"
	"github.com/mcoot/scorekeeper/internal/metrics"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Bootstrap logger until config is known
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		return 1
	}

	logger, logCloser, err := logging.New(cfg.Log)
	if err != nil {
		slog.Error("failed to configure logging", slog.String("error", err.Error()))
		return 1
	}
	defer func() { _ = logCloser.Close() }()
	slog.SetDefault(logger)

	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Create application; a malformed ledger stops startup here
	startCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	app, err := factory.New(startCtx, factory.Config{
		Ledger:              cfg.Ledger,
		LeaderboardMaxLimit: cfg.LeaderboardMaxLimit,
		Logger:              logger,
		Metrics:             metrics.New(),
	})
	cancel()
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		return 1
	}

	router := api.NewRouter(api.RouterConfig{
		Logger:      logger,
		Registry:    app.Registry,
		Leaderboard: app.Leaderboard,
		Metrics:     app.Metrics,
		CORSOrigins: cfg.CORSOrigins,
	})
	server := api.NewServer(router, api.ServerConfigFromPort(cfg.Port), logger)

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started",
		slog.String("addr", server.Addr()),
		slog.String("ledger", cfg.Ledger.Type),
		slog.Int("users", app.Registry.Len()),
	)

	// Wait for shutdown or error
	code := 0
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			code = 1
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			code = 1
		}
	}

	closeCtx, cancelClose := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelClose()
	if err := app.Close(closeCtx); err != nil {
		logger.Error("failed to flush ledger", slog.String("error", err.Error()))
		code = 1
	}

	logger.Info("server stopped")
	return code
}
