// Command api is the Matchpoint Club API server.
//
// Usage:
//
//	matchpoint-api
//	API_PORT=8080 matchpoint-api

// @title Matchpoint Club API
// @version 1.0.0
// @description Membership-gated sports community API: match making, court bookings, ladder teams, and coaching profiles over a hosted backend.
// @host localhost:8000
// @BasePath /api/v1
// @schemes http https
// @contact.name Matchpoint
// @license.name MIT
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/matchpointhq/matchpoint-api/internal/api"
	"github.com/matchpointhq/matchpoint-api/internal/api/handler"
	"github.com/matchpointhq/matchpoint-api/internal/cache"
	"github.com/matchpointhq/matchpoint-api/internal/club"
	"github.com/matchpointhq/matchpoint-api/internal/config"
	"github.com/matchpointhq/matchpoint-api/internal/dataapi"
	"github.com/matchpointhq/matchpoint-api/internal/db"
	"github.com/matchpointhq/matchpoint-api/internal/identity"
	"github.com/matchpointhq/matchpoint-api/internal/mailer"
	"github.com/matchpointhq/matchpoint-api/internal/maintenance"
	"github.com/matchpointhq/matchpoint-api/internal/storage"

	_ "github.com/matchpointhq/matchpoint-api/docs" // swagger docs
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// Load .env if present
	_ = godotenv.Load(".env")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	// Connect to database
	logger.Info("Connecting to database...")
	pool, err := db.New(ctx, cfg)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("Database connected",
		"min_conns", cfg.DBPoolMinConns,
		"max_conns", cfg.DBPoolMaxConns)

	store := club.NewStore(pool.Pool)

	// External collaborators
	ident := identity.New(cfg.IdentityURL, cfg.IdentityServiceKey)
	objects := storage.New(cfg.StorageURL, cfg.StorageBucket, cfg.IdentityServiceKey, cfg.AvatarMaxBytes, cfg.AvatarContentTypes)
	rows := dataapi.New(cfg.DataAPIURL)

	// Initialize cache
	appCache := cache.New(cfg.CacheEnabled)
	logger.Info("Cache initialized", "enabled", cfg.CacheEnabled)

	deps := handler.Deps{
		Store:   store,
		Ident:   ident,
		Objects: objects,
		RowAPI:  rows,
		Health:  pool,
		Cache:   appCache,
		Cfg:     cfg,
		Logger:  logger,
	}

	// Welcome email sender (if Resend is configured)
	if m := mailer.New(cfg.ResendAPIKey, cfg.MailFrom); m != nil {
		deps.Mailer = m
		logger.Info("Welcome email sender enabled", "from", cfg.MailFrom)
	} else {
		logger.Info("Welcome email sender disabled (no RESEND_API_KEY)")
	}

	// Start maintenance tickers (stale join expiry, orphan purge)
	if cfg.MaintenanceEnabled {
		go maintenance.Start(ctx, store, maintenance.DefaultConfig(cfg.JoinExpiryAge), logger)
	}

	// Create router
	h := handler.New(deps)
	router := api.NewRouter(h, ident, store, cfg)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.APIHost, cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	go func() {
		logger.Info("Starting Matchpoint Club API",
			"addr", addr,
			"environment", cfg.Environment,
			"docs", fmt.Sprintf("http://localhost:%d/docs/", cfg.APIPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt
	<-ctx.Done()
	logger.Info("Shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
	logger.Info("Server stopped")
}
