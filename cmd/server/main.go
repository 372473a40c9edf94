package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/VinayRevanuruBB/Vin-Decode/internal/config"
	"github.com/VinayRevanuruBB/Vin-Decode/internal/core"
	"github.com/VinayRevanuruBB/Vin-Decode/internal/logging"
	"github.com/VinayRevanuruBB/Vin-Decode/internal/nhtsa"
	"github.com/VinayRevanuruBB/Vin-Decode/internal/web"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env if present (Overload overwrites existing env vars).
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"addr", cfg.Server.Addr(),
		"nhtsa_base_url", cfg.NHTSA.BaseURL,
		"record_type", cfg.NHTSA.RecordType,
		"session_ttl", cfg.Session.TTL,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	client := nhtsa.NewClient(nhtsa.Config{
		BaseURL:           cfg.NHTSA.BaseURL,
		RecordType:        cfg.NHTSA.RecordType,
		MaxPages:          cfg.NHTSA.MaxPages,
		UserAgent:         cfg.NHTSA.UserAgent,
		RequestTimeout:    cfg.NHTSA.RequestTimeout,
		RequestsPerSecond: cfg.NHTSA.RequestsPerSecond,
		Burst:             cfg.NHTSA.Burst,
	})

	service := core.NewService(client, client, cfg.Session.TTL)
	server := web.NewServer(service, cfg)

	// Background session expiry.
	jobCtx, cancelJobs := context.WithCancel(context.Background())
	go service.StartSessionSweeper(jobCtx, cfg.Session.SweepInterval)

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil {
		slog.Info("server stopped", "error", err)
	}
}
