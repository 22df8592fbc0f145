package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"mafia/internal/config"
	"mafia/internal/game"
	"mafia/internal/storage/sqlite"
	httpTransport "mafia/internal/transport/http"
	"mafia/internal/transport/ws"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Set up logger
	var logger *slog.Logger
	logOpts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Logging.Level),
	}

	if cfg.Logging.Format == "json" {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, logOpts))
	} else {
		logger = slog.New(slog.NewTextHandler(os.Stdout, logOpts))
	}

	slog.SetDefault(logger)

	logger.Info("starting mafia game server",
		"env", cfg.Server.Env,
		"port", cfg.Server.Port,
	)

	// Open the game-history store; gameplay runs without it if the
	// path is empty or the file cannot be opened
	var events game.EventSink = game.NopSink{}
	if cfg.Storage.DBPath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Storage.DBPath), 0o755); err != nil {
			logger.Warn("history directory unavailable, persistence disabled", "error", err)
		} else if store, err := sqlite.Open(cfg.Storage.DBPath, logger); err != nil {
			logger.Warn("history store unavailable, persistence disabled", "error", err)
		} else {
			defer store.Close()
			events = store
		}
	}

	// Event broker for websocket subscribers
	broker := ws.NewBroker(logger)
	defer broker.Close()

	// Create the session hub
	hub := game.NewHub(logger, game.Deps{
		Events:    events,
		Broadcast: broker,
	})
	defer hub.Close()

	// Create HTTP server
	wsHandler := ws.NewHandler(hub, broker, logger)
	server := httpTransport.NewServer(cfg, hub, wsHandler, logger)

	// Start server in goroutine
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server stopped")
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
