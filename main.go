package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/isdelr/auth-service/internal/api"
	"github.com/isdelr/auth-service/internal/auth"
	"github.com/isdelr/auth-service/internal/config"
	"github.com/isdelr/auth-service/internal/database"
	"github.com/isdelr/auth-service/internal/logger"
	"github.com/isdelr/auth-service/internal/monitoring"
	"github.com/isdelr/auth-service/internal/repository"
	"github.com/isdelr/auth-service/internal/services"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.LogLevel, !cfg.IsProduction())

	ctx := context.Background()

	// Set up database
	db, err := database.New(ctx, cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DatabaseDriver).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := database.Migrate(ctx, db, cfg.DatabaseDriver); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database migrations")
	}
	log.Info().Str("driver", cfg.DatabaseDriver).Msg("Connected to database")

	// Set up auth primitives
	hasher, err := auth.NewBcryptHasher(cfg.BcryptCost)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize password hasher")
	}
	tokens, err := auth.NewTokenManager([]byte(cfg.JWTSecret), cfg.TokenTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize token manager")
	}
	log.Info().Int("bcrypt_cost", hasher.Cost()).Dur("token_ttl", tokens.TTL()).Msg("Auth primitives ready")

	// Set up services
	dialect := database.Dialect(cfg.DatabaseDriver)
	eventService := services.NewEventService(repository.NewEventRepository(db, dialect))
	authService, err := services.NewAuthService(repository.NewUserRepository(db, dialect), hasher, tokens, eventService)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize auth service")
	}

	// Set up and run the background retention scheduler
	scheduler, err := monitoring.NewRetentionScheduler(eventService, cfg.EventPruneSchedule, cfg.EventRetention)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize retention scheduler")
	}
	scheduler.Run()

	// Set up router
	router := api.NewRouter(auth.NewGate(tokens), authService, eventService, cfg.AllowedOrigins)

	// Set up server
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Msg("Server starting")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("ListenAndServe failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	scheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}
