package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"catalog/internal/app"
	"catalog/internal/config"
	"catalog/internal/logger"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)
	if !cfg.DotEnvLoaded {
		log.Info("no .env file found, relying on environment variables")
	}

	// --- Initialize backends, services and routes ---
	application, err := app.New(cfg, log)
	if err != nil {
		log.Error("failed to initialize application", slog.Any("error", err))
		os.Exit(1)
	}

	// --- Start HTTP Server ---
	log.Info("starting server", slog.String("port", cfg.AppPort), slog.String("events_broker", cfg.EventsBroker))

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := application.Listen(); err != nil {
			log.Error("server failed", slog.Any("error", err))
			quit <- syscall.SIGTERM
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	<-quit
	log.Info("shutting down server")

	if err := application.Shutdown(); err != nil {
		log.Error("error during shutdown", slog.Any("error", err))
	}
	log.Info("server gracefully stopped")
}
