package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"dressing-virtuel/app"
	"dressing-virtuel/config"
	"dressing-virtuel/db"
	"dressing-virtuel/logging"
)

func main() {
	// Load .env file in development (ignores error if file doesn't exist)
	// In production, variables should be set directly
	if os.Getenv("ENV") != "production" {
		// Use Overload so .env values override system environment variables
		if err := godotenv.Overload(".env"); err != nil {
			logging.Warn().Err(err).Msg("⚠️  .env file not found, using system environment variables")
		}
	}

	cfg, err := config.Load()
	if err != nil {
		logging.Error().Err(err).Msg("❌ Invalid configuration")
		os.Exit(1)
	}

	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize application
	application, err := app.Initialize(ctx, cfg)
	if err != nil {
		logging.Error().Err(err).Msg("❌ Initialization failed")
		os.Exit(1)
	}
	defer db.CloseDB()

	logging.Info().Str("port", cfg.Server.Port).Str("queue", cfg.Queue.Mode).Msg("👗 Wardrobe service ready")
	if err := application.Run(ctx); err != nil {
		logging.Error().Err(err).Msg("❌ Service stopped with error")
		db.CloseDB()
		os.Exit(1)
	}
	logging.Info().Msg("👋 Shutdown complete")
}
