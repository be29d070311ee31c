package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"clipnote/config"
	"clipnote/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	logging.Setup(logging.ParseFormat(cfg.Log.Format), logging.ParseLevel(cfg.Log.Level))

	configPath, _ := config.Path()
	slog.Info("Configuration loaded", "path", configPath)

	if cfg.OpenAI.APIKey == "" {
		slog.Warn("No OpenAI API key configured, clipboard enhancement disabled", "path", configPath)
	}

	app, err := NewApp(cfg)
	if err != nil {
		slog.Error("Failed to initialize", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := app.Run(ctx); err != nil {
		slog.Error("Run failed", "error", err)
		os.Exit(1)
	}
}
