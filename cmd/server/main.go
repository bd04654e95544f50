package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anonto42/spinforge/backend/internal/auth"
	"github.com/anonto42/spinforge/backend/internal/router"
	"github.com/anonto42/spinforge/backend/pkg/config"
	"github.com/anonto42/spinforge/backend/pkg/firebase"
	"github.com/anonto42/spinforge/backend/validators"
	"github.com/labstack/echo/v4"
)

func main() {
	// Load configuration
	cfg := config.Load()

	logger := config.NewLogger(cfg)
	slog.SetDefault(logger)

	// Initialize database connections
	db, err := config.InitDB(cfg)
	if err != nil {
		logger.Error("failed to initialize databases", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.CloseDB()

	tokens, err := auth.NewTokenService(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	if err != nil {
		logger.Error("invalid token configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	deps := router.Deps{
		SQL:           db.SQL,
		Mongo:         db.Mongo,
		MongoDatabase: cfg.MongoDatabase,
		Redis:         db.Redis,
		Tokens:        tokens,
		Passwords:     auth.NewPasswordHasher(),
		Logger:        logger,
	}

	// Firebase is optional; without it firebase-login is not mounted.
	if cfg.FirebaseCredentialsPath != "" {
		verifier, err := firebase.NewVerifier(context.Background(), firebase.Config{
			CredentialsPath: cfg.FirebaseCredentialsPath,
			ProjectID:       cfg.FirebaseProjectID,
			CheckRevoked:    cfg.FirebaseCheckRevoked,
		})
		if err != nil {
			logger.Error("failed to initialize Firebase", slog.String("error", err.Error()))
			os.Exit(1)
		}
		deps.Firebase = verifier
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.Validator = validators.NewValidator()

	config.SetupMiddleware(e, cfg, logger)

	if err := router.SetupRoutes(e, deps); err != nil {
		logger.Error("failed to set up routes", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("server starting", slog.String("port", cfg.Port), slog.String("env", cfg.Env))
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped unexpectedly", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.String("error", err.Error()))
	}
	logger.Info("server stopped")
}
