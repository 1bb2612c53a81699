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

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog"
	"github.com/trogers1052/alert-relevance-service/internal/alerts"
	"github.com/trogers1052/alert-relevance-service/internal/api"
	"github.com/trogers1052/alert-relevance-service/internal/config"
	"github.com/trogers1052/alert-relevance-service/internal/database"
	"github.com/trogers1052/alert-relevance-service/internal/feedback"
	"github.com/trogers1052/alert-relevance-service/internal/kafka"
	"github.com/trogers1052/alert-relevance-service/internal/metrics"
	"github.com/trogers1052/alert-relevance-service/internal/portfolio"
	"github.com/trogers1052/alert-relevance-service/internal/redis"
	"github.com/trogers1052/alert-relevance-service/internal/relevance"
	"github.com/trogers1052/alert-relevance-service/internal/scheduler"
)

const retrainTimeout = 10 * time.Minute

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := newLogger(cfg.Log)

	// Connect to database
	db, err := database.New(cfg.Database.ConnectionString())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	// Run migrations
	if err := runMigrations(cfg.Database.ConnectionString(), log); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}
	log.Info().Msg("Connected to PostgreSQL database")

	// Connect to Redis. The cache is optional.
	var cache portfolio.Cache
	var redisPinger api.Pinger
	redisClient, err := redis.New(cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to connect to Redis, continuing without cache")
	} else {
		defer redisClient.Close()
		cache = redisClient
		redisPinger = redisClient
		log.Info().Str("addr", cfg.Redis.Address()).Msg("Connected to Redis cache")
	}

	m := metrics.New()

	// Create Kafka producer
	producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.EventsTopic)
	defer producer.Close()
	log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.EventsTopic).Msg("Kafka producer initialized")

	// Services
	users := portfolio.NewProvider(db, cache, cfg.Relevance.CacheTTL, log)
	feedbackSvc := feedback.NewService(db, m, log)
	alertSvc := alerts.NewService(db, users, producer, m, log)
	retrainer := relevance.NewRetrainer(log)
	retrainJob := scheduler.NewRetrainJob(db, retrainer, producer, m, cfg.Relevance.TrainingWindowDays, log)

	sched := scheduler.NewScheduler(retrainJob, cfg.Relevance.RetrainSchedule, retrainTimeout, log)
	if err := sched.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start retrain scheduler")
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create and start Kafka consumer for interaction events
	feedbackConsumer := kafka.NewFeedbackConsumer(
		cfg.Kafka.Brokers,
		cfg.Kafka.FeedbackTopic,
		cfg.Kafka.ConsumerGroup,
		feedbackSvc,
		m,
		log,
	)
	go func() {
		log.Info().Str("topic", cfg.Kafka.FeedbackTopic).Msg("Starting Kafka feedback consumer")
		if err := feedbackConsumer.Start(ctx); err != nil {
			log.Error().Err(err).Msg("Kafka feedback consumer error")
		}
	}()

	// Create and start Kafka consumer for position snapshots
	holdingsConsumer := kafka.NewHoldingsConsumer(
		cfg.Kafka.Brokers,
		cfg.Kafka.PositionsTopic,
		cfg.Kafka.ConsumerGroup,
		users,
		m,
		log,
	)
	go func() {
		log.Info().Str("topic", cfg.Kafka.PositionsTopic).Msg("Starting Kafka holdings consumer")
		if err := holdingsConsumer.Start(ctx); err != nil {
			log.Error().Err(err).Msg("Kafka holdings consumer error")
		}
	}()

	// Set up HTTP handler and routes
	handler := api.NewHandler(api.Deps{
		Alerts:      alertSvc,
		Feedback:    feedbackSvc,
		Preferences: users,
		Model:       retrainer,
		Trainer:     retrainJob,
		Postgres: api.PingFunc(func(context.Context) error {
			return db.Ping()
		}),
		Redis:               redisPinger,
		Metrics:             m,
		DefaultFeedbackDays: cfg.Relevance.UserFeedbackDays,
		Log:                 log,
	})
	router := api.SetupRoutes(handler)

	// Create HTTP server
	addr := cfg.Server.Host + ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Cancel context to stop Kafka consumers
	cancel()

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	sched.Stop(shutdownCtx)

	if err := feedbackConsumer.Close(); err != nil {
		log.Error().Err(err).Msg("Error closing Kafka feedback consumer")
	}
	if err := holdingsConsumer.Close(); err != nil {
		log.Error().Err(err).Msg("Error closing Kafka holdings consumer")
	}

	log.Info().Msg("Server stopped")
}

func newLogger(cfg config.LogConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	var logger zerolog.Logger
	if cfg.Pretty {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	} else {
		logger = zerolog.New(os.Stderr)
	}
	return logger.With().Timestamp().Str("service", "alert-relevance-service").Logger()
}

func runMigrations(databaseURL string, log zerolog.Logger) error {
	// The "file://" prefix selects the migrate file source driver
	m, err := migrate.New("file://./db/migrations", databaseURL)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}
	defer m.Close()

	// Apply all available migrations up to the latest version
	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info().Msg("No migrations to apply; database is up to date")
			return nil
		}
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}
