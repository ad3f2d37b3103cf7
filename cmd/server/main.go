// Command server runs the Wordwise progress engine: a REST API that
// tracks XP, levels, streaks and daily quotas, schedules spaced
// repetition reviews, samples daily word lessons and awards badges.
//
// Configuration comes from the environment (optionally a .env file in
// development). PostgreSQL is required; Redis is optional and enables
// the learner cache and the distributed event bus.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	// Configuration
	"github.com/wordwise-app/wordwise-progress/config"

	// Application layer
	"github.com/wordwise-app/wordwise-progress/internal/application/command"
	"github.com/wordwise-app/wordwise-progress/internal/application/eventhandler"
	"github.com/wordwise-app/wordwise-progress/internal/application/query"
	"github.com/wordwise-app/wordwise-progress/internal/application/saga"

	// Domain
	"github.com/wordwise-app/wordwise-progress/internal/domain/badge"
	"github.com/wordwise-app/wordwise-progress/internal/domain/learner"
	"github.com/wordwise-app/wordwise-progress/internal/domain/lesson"
	"github.com/wordwise-app/wordwise-progress/internal/domain/shared"

	// Infrastructure
	"github.com/wordwise-app/wordwise-progress/internal/infrastructure/messaging"
	"github.com/wordwise-app/wordwise-progress/internal/infrastructure/persistence/postgres"
	"github.com/wordwise-app/wordwise-progress/internal/infrastructure/persistence/redis"

	// Interface
	httpserver "github.com/wordwise-app/wordwise-progress/internal/interface/http"
	"github.com/wordwise-app/wordwise-progress/internal/interface/http/handlers"

	// Packages
	"github.com/wordwise-app/wordwise-progress/pkg/logger"
	"github.com/wordwise-app/wordwise-progress/pkg/timeutil"
)

func main() {
	// .env is a development convenience; in production the variables
	// come from the orchestrator.
	_ = godotenv.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. CONFIGURATION
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	log := setupLogger(cfg)
	log.Info("starting Wordwise progress engine",
		logger.String("env", string(cfg.App.Environment)),
		logger.String("version", cfg.App.Version),
		logger.Bool("debug", cfg.App.Debug),
		logger.String("timezone", cfg.App.Timezone),
	)

	// All day boundaries (streaks, quotas, the daily sample) follow the
	// product timezone.
	if cfg.App.Location != nil {
		timeutil.Location = cfg.App.Location
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 3. DATABASE (PostgreSQL)
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("connecting to database")
	dbConn, err := connectDatabase(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		log.Info("closing database connection")
		dbConn.Close()
	}()

	if err := dbConn.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	log.Info("database connection established")

	// ─────────────────────────────────────────────────────────────────────────
	// 4. MIGRATIONS AND SEED DATA
	// ─────────────────────────────────────────────────────────────────────────
	if cfg.Database.RunMigrations {
		log.Info("running database migrations")
		migrator := postgres.NewMigrator(dbConn)
		if err := migrator.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}

		status, err := migrator.Status(ctx)
		if err != nil {
			log.Warn("failed to get migration status", logger.Err(err))
		} else {
			applied := 0
			for _, m := range status {
				if m.IsApplied {
					applied++
				}
			}
			log.Info("migrations completed",
				logger.Int("applied", applied),
				logger.Int("total", len(status)))
		}
	}

	badgeCatalogueRepo := postgres.NewBadgeCatalogueRepository(dbConn)
	if err := badgeCatalogueRepo.Seed(ctx, badge.DefaultCatalogue()); err != nil {
		return fmt.Errorf("failed to seed badge catalogue: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. REDIS (optional)
	// ─────────────────────────────────────────────────────────────────────────
	var redisCache *redis.Cache
	var learnerCache learner.Cache

	if !cfg.Redis.Disabled {
		log.Info("connecting to Redis")
		redisCache, err = redis.NewCache(redis.Config{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err != nil {
			log.Warn("failed to connect to Redis, caching disabled", logger.Err(err))
			redisCache = nil
		} else {
			defer redisCache.Close()
			log.Info("Redis connection established")
		}
	}

	if redisCache != nil && cfg.Features.IsEnabledGlobally(config.FeatureLearnerCache) {
		learnerCache = redis.NewLearnerCache(redisCache)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. EVENT BUS
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing event bus")

	localBusConfig := messaging.DefaultInMemoryEventBusConfig()
	localBusConfig.Logger = log
	localBusConfig.EnableMetrics = cfg.Observability.MetricsEnabled

	var eventBus shared.EventBus
	var busMetrics func() any

	if redisCache != nil && cfg.Features.IsEnabledGlobally(config.FeatureDistributedEvents) {
		redisBus, err := messaging.NewRedisEventBus(messaging.RedisEventBusConfig{
			Client:         redisCache.Client(),
			LocalBusConfig: localBusConfig,
			Logger:         log,
		})
		if err != nil {
			return fmt.Errorf("failed to create Redis event bus: %w", err)
		}
		eventBus = redisBus
		busMetrics = func() any { return redisBus.Metrics().Snapshot() }
		defer func() {
			log.Info("closing event bus")
			_ = redisBus.Close()
		}()
		log.Info("distributed event bus enabled")
	} else {
		localBus := messaging.NewInMemoryEventBus(localBusConfig)
		eventBus = localBus
		busMetrics = func() any { return localBus.Metrics().Snapshot() }
		defer func() {
			log.Info("closing event bus")
			_ = localBus.Close()
		}()
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 7. EVENT HANDLERS
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("registering event handlers")

	dispatcher := messaging.NewDispatcher(messaging.DefaultDispatcherConfig(eventBus))
	dispatcher.Use(messaging.LoggingMiddleware(log))

	levelUpHandler := eventhandler.NewOnLevelUpHandler(learnerCache, log)
	if err := dispatcher.Register(levelUpHandler.EventType(), messaging.HandlerRegistration{
		Name:    "on_level_up",
		Handler: levelUpHandler.Handle,
	}); err != nil {
		return fmt.Errorf("failed to register level-up handler: %w", err)
	}

	badgeEarnedHandler := eventhandler.NewOnBadgeEarnedHandler(learnerCache, log)
	if err := dispatcher.Register(badgeEarnedHandler.EventType(), messaging.HandlerRegistration{
		Name:    "on_badge_earned",
		Handler: badgeEarnedHandler.Handle,
	}); err != nil {
		return fmt.Errorf("failed to register badge-earned handler: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 8. REPOSITORIES
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing repositories")
	learnerRepo := postgres.NewLearnerRepository(dbConn)
	learnedRepo := postgres.NewLearnedWordRepository(dbConn)
	reviewRepo := postgres.NewReviewRepository(dbConn)
	wordRepo := postgres.NewWordRepository(dbConn)
	earnedBadgeRepo := postgres.NewEarnedBadgeRepository(dbConn)

	// ─────────────────────────────────────────────────────────────────────────
	// 9. APPLICATION LAYER
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing application layer")

	quotas := learner.QuotaConfig{
		TotalWords:    cfg.Progress.MaxTotalWords,
		Flashcards:    cfg.Progress.MaxFlashcards,
		Pronunciation: cfg.Progress.MaxPronunciation,
		Grammar:       cfg.Progress.MaxGrammar,
	}

	badgeFlowConfig := saga.DefaultBadgeAwardFlowConfig()
	badgeFlowConfig.EnableXPBonuses = cfg.Features.IsEnabledGlobally(config.FeatureBadgeXPBonuses)
	badgeFlow := saga.NewBadgeAwardFlow(
		badgeCatalogueRepo, earnedBadgeRepo, learnerRepo, eventBus, log, badgeFlowConfig)

	registerLearnerCmd := command.NewRegisterLearnerHandler(learnerRepo, eventBus, log)
	recordWordCmd := command.NewRecordWordLearnedHandler(
		learnerRepo, learnedRepo, wordRepo, reviewRepo,
		badgeFlow, learnerCache, eventBus, log,
		command.RecordWordLearnedConfig{
			Quotas:    quotas,
			XPPerWord: cfg.Progress.XPPerWord,
		})
	recordXPCmd := command.NewRecordXPOnlyHandler(
		learnerRepo, badgeFlow, learnerCache, eventBus, log, quotas)
	recordReviewCmd := command.NewRecordReviewHandler(reviewRepo, eventBus, log)
	toggleMemorizedCmd := command.NewToggleMemorizedHandler(reviewRepo, eventBus, log)

	projectStreak := cfg.Features.IsEnabledGlobally(config.FeatureProjectLapsedStreaks)
	snapshotQuery := query.NewGetProgressSnapshotHandler(
		learnerRepo, learnerCache, log, quotas, projectStreak)
	lessonQuery := query.NewGetDailyLessonHandler(
		learnerRepo, learnedRepo, wordRepo, lesson.NewSampler(nil),
		log, quotas, cfg.Progress.DailyLessonSize)
	reviewQueueQuery := query.NewGetReviewQueueHandler(reviewRepo, log)
	badgesQuery := query.NewGetBadgesHandler(badgeCatalogueRepo, earnedBadgeRepo, learnerRepo, log)

	var leaderboardQuery *query.GetLeaderboardHandler
	if cfg.Features.IsEnabledGlobally(config.FeatureLeaderboard) {
		leaderboardQuery = query.NewGetLeaderboardHandler(learnerRepo, log)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 10. HEALTH CHECKS
	// ─────────────────────────────────────────────────────────────────────────
	healthChecker := handlers.NewCompositeHealthChecker(cfg.App.Version)
	healthChecker.AddCheck("postgres", handlers.NewPingCheck(dbConn))
	if redisCache != nil {
		healthChecker.AddCheck("redis", handlers.NewPingCheck(redisCache))
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 11. HTTP SERVER
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing HTTP server")

	httpConfig := httpserver.DefaultConfig()
	httpConfig.Host = cfg.HTTP.Host
	httpConfig.Port = cfg.HTTP.Port
	httpConfig.ReadTimeout = cfg.HTTP.ReadTimeout
	httpConfig.WriteTimeout = cfg.HTTP.WriteTimeout
	httpConfig.IdleTimeout = cfg.HTTP.IdleTimeout
	httpConfig.EnableCORS = cfg.HTTP.EnableCORS
	httpConfig.AllowedOrigins = cfg.HTTP.AllowedOrigins
	httpConfig.EnableMetrics = cfg.Observability.MetricsEnabled
	httpConfig.RateLimitPerMinute = cfg.HTTP.RateLimitPerMinute
	httpConfig.APIKeyHeader = cfg.HTTP.APIKeyHeader
	httpConfig.APIKeys = cfg.HTTP.APIKeys

	httpDeps := httpserver.Dependencies{
		RegisterLearnerHandler:     registerLearnerCmd,
		RecordWordLearnedHandler:   recordWordCmd,
		RecordXPOnlyHandler:        recordXPCmd,
		RecordReviewHandler:        recordReviewCmd,
		ToggleMemorizedHandler:     toggleMemorizedCmd,
		GetProgressSnapshotHandler: snapshotQuery,
		GetDailyLessonHandler:      lessonQuery,
		GetReviewQueueHandler:      reviewQueueQuery,
		GetBadgesHandler:           badgesQuery,
		GetLeaderboardHandler:      leaderboardQuery,
		WordCatalogue:              wordRepo,
		BusMetrics:                 busMetrics,
		Logger:                     log,
		HealthChecker:              healthChecker,
	}

	httpServer := httpserver.NewServer(httpConfig, httpDeps)

	// ─────────────────────────────────────────────────────────────────────────
	// 12. START
	// ─────────────────────────────────────────────────────────────────────────
	errCh := make(chan error, 1)

	go func() {
		log.Info("starting HTTP server", logger.String("address", httpServer.Address()))
		if err := httpServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	log.Info("Wordwise progress engine is running",
		logger.String("http_address", httpServer.Address()),
		logger.Bool("redis", redisCache != nil),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 13. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", logger.String("signal", sig.String()))
	case err := <-errCh:
		log.Error("service error", logger.Err(err))
		return err
	case <-ctx.Done():
		log.Info("context cancelled")
	}

	log.Info("starting graceful shutdown",
		logger.Duration("timeout", cfg.App.ShutdownTimeout))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer shutdownCancel()

	var shutdownErr error

	log.Info("stopping HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to stop HTTP server gracefully", logger.Err(err))
		shutdownErr = err
	}

	// Event bus, Redis and the database close through the defers above.

	if shutdownErr != nil {
		log.Warn("shutdown completed with errors")
	} else {
		log.Info("shutdown completed successfully")
	}

	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// setupLogger builds the root structured logger from the observability
// settings.
func setupLogger(cfg *config.Config) *logger.Logger {
	opts := logger.DefaultOptions()
	opts.Level = logger.ParseLevel(cfg.Observability.LogLevel)
	if cfg.App.Debug {
		opts.Level = logger.LevelDebug
	}
	return logger.New(opts)
}

// connectDatabase prefers a full DATABASE_URL over the individual
// settings.
func connectDatabase(ctx context.Context, cfg *config.Config) (*postgres.Connection, error) {
	if cfg.Database.URL != "" {
		return postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
	}
	return postgres.NewConnection(ctx, postgres.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		Database:        cfg.Database.Name,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		SSLMode:         cfg.Database.SSLMode,
		MaxConns:        int32(cfg.Database.MaxConns),
		MinConns:        int32(cfg.Database.MinConns),
		MaxConnLifetime: cfg.Database.ConnMaxLifetime,
		MaxConnIdleTime: cfg.Database.ConnMaxIdleTime,
		ConnectTimeout:  cfg.Database.ConnectTimeout,
	})
}
