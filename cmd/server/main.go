package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Tocma/Engineer-system-sub000/internal/config"
	"github.com/Tocma/Engineer-system-sub000/internal/logging"
	"github.com/Tocma/Engineer-system-sub000/internal/service"
	"github.com/Tocma/Engineer-system-sub000/internal/store"
	"github.com/Tocma/Engineer-system-sub000/internal/web"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded", "config", cfg.String())

	// Ensure the data directory exists so first writes do not race on it
	if err := os.MkdirAll(cfg.Store.DataDir, 0o755); err != nil {
		slog.Error("failed to create data directory", "dir", cfg.Store.DataDir, "error", err)
		os.Exit(1)
	}

	// One store instance for the whole process: its lock registry is what
	// serializes writers against readers per file.
	st := store.New()
	svc := service.New(st, cfg.Store.MaxConcurrent, cfg.Store.MaxWaitTime)

	server := web.NewServer(svc, cfg)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}
