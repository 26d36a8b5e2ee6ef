package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SscSPs/ledger_backend/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_backend/internal/core/services"
	"github.com/SscSPs/ledger_backend/internal/events"
	"github.com/SscSPs/ledger_backend/internal/handlers"
	"github.com/SscSPs/ledger_backend/internal/middleware"
	"github.com/SscSPs/ledger_backend/internal/platform/config"
	"github.com/SscSPs/ledger_backend/internal/repositories/database/mongo"
	"github.com/SscSPs/ledger_backend/internal/repositories/database/pgsql"
	"github.com/SscSPs/ledger_backend/internal/repositories/memory"
	"github.com/SscSPs/ledger_backend/pkg/database"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// @title Ledger Backend API
// @version 1.0
// @description Journal entry lifecycle and general ledger posting service.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	level := new(slog.LevelVar)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := run(ctx, logger, level)
	stop()
	if err != nil {
		logger.Error("Server exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// run wires the server and blocks until ctx is cancelled or the listener fails.
// Every resource opened before a failure is released on return.
func run(ctx context.Context, logger *slog.Logger, level *slog.LevelVar) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logger.Warn("Invalid LOG_LEVEL, keeping info", slog.String("log_level", cfg.LogLevel))
	}

	repos, health, closeStorage, err := setupStorage(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialise storage: %w", err)
	}
	defer closeStorage()

	serviceContainer, releaseServices, err := services.NewServiceContainer(cfg, repos)
	if err != nil {
		return fmt.Errorf("failed to initialise services: %w", err)
	}
	defer releaseServices()

	publisher, closeEvents, err := setupEvents(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialise event publishing: %w", err)
	}
	defer closeEvents()

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.FrontendBaseURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	limiter, err := middleware.NewRateLimiter(cfg.RateLimit)
	if err != nil {
		return fmt.Errorf("failed to create rate limiter: %w", err)
	}
	r.Use(middleware.RateLimit(limiter))

	if err := r.SetTrustedProxies(nil); err != nil {
		return fmt.Errorf("failed to set trusted proxies: %w", err)
	}

	handlers.RegisterRoutes(r, cfg, serviceContainer, health)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	poller := events.NewPoller(events.PollerConfig{
		Interval:    cfg.OutboxPollInterval,
		BatchSize:   cfg.OutboxBatchSize,
		MaxAttempts: cfg.OutboxMaxAttempts,
	}, repos.OutboxRepo, publisher, logger)
	pollerDone := make(chan struct{})
	go func() {
		defer close(pollerDone)
		poller.Start(ctx)
	}()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port), slog.String("storage", cfg.StorageDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case err, ok := <-serveErr:
		if ok {
			runErr = fmt.Errorf("server failed to run: %w", err)
		}
	}
	logger.Info("Shutting down")
	cancel()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", slog.String("error", err.Error()))
	}
	<-pollerDone
	logger.Info("Server stopped")
	return runErr
}

// setupStorage opens the configured repository backend.
func setupStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (repositories.RepositoryProvider, handlers.HealthChecker, func(), error) {
	if cfg.StorageDriver == config.StorageMemory {
		store := memory.NewStore()
		if cfg.SeedFile != "" {
			if err := store.LoadSeedFile(cfg.SeedFile); err != nil {
				return repositories.RepositoryProvider{}, nil, nil, err
			}
			logger.Info("In-memory store seeded", slog.String("seed_file", cfg.SeedFile))
		}
		logger.Warn("Using in-memory storage; data is lost on restart")
		return store.RepositoryProvider(), nil, func() {}, nil
	}

	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, database.PoolConfig{})
	if err != nil {
		return repositories.RepositoryProvider{}, nil, nil, err
	}
	logger.Info("Running database migrations...", slog.String("source", cfg.MigrationsPath))
	if err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		database.ClosePgxPool(dbPool)
		return repositories.RepositoryProvider{}, nil, nil, err
	}

	var health handlers.HealthChecker
	if cfg.EnableDBCheck {
		health = dbPool.Ping
	}
	return pgsql.NewRepositoryProvider(dbPool), health, func() { database.ClosePgxPool(dbPool) }, nil
}

// setupEvents builds the outbox publisher chain from whatever sinks are configured.
func setupEvents(ctx context.Context, cfg *config.Config, logger *slog.Logger) (events.MultiPublisher, func(), error) {
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	dispatcher := events.NewDispatcher(logger)
	publishers := events.MultiPublisher{dispatcher}

	if cfg.MongoURI != "" {
		client, err := database.NewMongoClient(ctx, cfg.MongoURI, 10*time.Second)
		if err != nil {
			return nil, func() {}, err
		}
		closers = append(closers, func() { database.CloseMongoClient(context.Background(), client) })
		dispatcher.Subscribe(mongo.NewPostingProjection(logger, client.Database(cfg.MongoDatabase)))
	}

	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher, err := events.NewKafkaPublisher(logger, cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			closeAll()
			return nil, func() {}, err
		}
		closers = append(closers, func() {
			if err := kafkaPublisher.Close(); err != nil {
				logger.Error("Failed to close kafka writer", slog.String("error", err.Error()))
			}
		})
		publishers = append(publishers, kafkaPublisher)
	}

	return publishers, closeAll, nil
}
