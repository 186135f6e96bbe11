package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/users-api/internal/cache"
	"github.com/vasiliy-maslov/users-api/internal/config"
	"github.com/vasiliy-maslov/users-api/internal/db"
	userHttp "github.com/vasiliy-maslov/users-api/internal/handler/http"
	"github.com/vasiliy-maslov/users-api/internal/logger"
	"github.com/vasiliy-maslov/users-api/internal/user"
)

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	logger.Setup(cfg.Log, cfg.App.Name)
	log.Info().Str("storage", cfg.Storage.Driver).Int("min_allowed_age", cfg.Users.MinAllowedAge).Msg("Starting users-api...")

	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	var (
		userRepository user.Repository
		pinger         userHttp.Pinger
		dbConn         *db.Postgres
	)

	switch cfg.Storage.Driver {
	case config.StorageDriverMemory:
		userRepository, err = user.NewMemoryRepository()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create in-memory repository")
		}
		log.Warn().Msg("Using in-memory storage, data will be lost on restart")
	default:
		if !cfg.Postgres.SkipMigrations {
			if err := db.Migrate(cfg.Postgres); err != nil {
				log.Fatal().Err(err).Msg("Failed to apply migrations")
			}
		}

		dbConn, err = db.New(startupCtx, cfg.Postgres)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		userRepository = user.NewPostgresRepository(dbConn.Pool)
		pinger = dbConn
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.New(startupCtx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		userRepository = user.NewCachedRepository(userRepository, redisClient, cfg.Redis.TTL)
	}

	userSvc := user.NewService(userRepository, user.NewMapper())
	userHandler := userHttp.NewUserHandler(userSvc, user.NewValidator(cfg.Users.MinAllowedAge))
	healthHandler := userHttp.NewHealthHandler(pinger)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(userHttp.AccessLog)
	router.Use(middleware.Recoverer)

	userHandler.RegisterRoutes(router)
	healthHandler.RegisterRoutes(router)

	server := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		log.Info().Str("port", cfg.App.Port).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Str("port", cfg.App.Port).Msg("Could not listen")
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)
	<-stopCh

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close Redis client")
		}
	}
	if dbConn != nil {
		dbConn.Close()
	}

	log.Info().Msg("users-api stopped gracefully")
}
