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

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/restocktime/WizJock-sub001/internal/audit"
	"github.com/restocktime/WizJock-sub001/internal/broadcast"
	"github.com/restocktime/WizJock-sub001/internal/cache"
	"github.com/restocktime/WizJock-sub001/internal/config"
	"github.com/restocktime/WizJock-sub001/internal/generator"
	"github.com/restocktime/WizJock-sub001/internal/handlers"
	"github.com/restocktime/WizJock-sub001/internal/injuries"
	"github.com/restocktime/WizJock-sub001/internal/logging"
	"github.com/restocktime/WizJock-sub001/internal/metrics"
	"github.com/restocktime/WizJock-sub001/internal/middleware"
	"github.com/restocktime/WizJock-sub001/internal/picks"
	"github.com/restocktime/WizJock-sub001/internal/providers/modelfeed"
	"github.com/restocktime/WizJock-sub001/internal/publication"
	"github.com/restocktime/WizJock-sub001/internal/publisher"
	"github.com/restocktime/WizJock-sub001/internal/registry"
	"github.com/restocktime/WizJock-sub001/internal/retry"
	"github.com/restocktime/WizJock-sub001/internal/scheduler"
	"github.com/restocktime/WizJock-sub001/internal/store"
	"github.com/restocktime/WizJock-sub001/pkg/models"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("report service stopped", zap.Error(err))
	}
	logger.Info("shutdown complete")
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	// System of record
	pg, err := store.NewPostgres(cfg.Postgres.DSN)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pg.Close()
	logger.Info("connected to postgres")

	if cfg.Postgres.EnsureSchema {
		if err := pg.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}

	// Live lifecycle feed for websocket clients
	hub := broadcast.NewHub(logger)
	go hub.Run(ctx)

	// Cache and lifecycle stream. Without Redis the cache is in-process and
	// events go straight to this instance's hub.
	var cacheStore cache.Store = cache.NewMemoryStore()
	var events publication.EventPublisher = hub
	if cfg.Redis.URL != "" {
		redisClient, err := connectRedis(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer redisClient.Close()
		logger.Info("connected to redis")

		cacheStore = cache.NewRedisStore(redisClient)
		events = publisher.NewStreamPublisher(redisClient)
		go publisher.NewStreamConsumer(redisClient, hub, models.AllSports(), logger).Run(ctx)
	} else {
		logger.Warn("REDIS_URL not set; using in-process cache and lifecycle events")
	}
	picksCache := cache.NewPicksCache(cacheStore, cfg.Cache.TTL, cfg.Cache.EmptyTTL)

	// Engines
	feed := modelfeed.New(cfg.Feed.BaseURL, cfg.Feed.APIKey, cfg.Feed.HTTPTimeout)
	engines := registry.NewDefault(feed, cfg.Engine.GenerateTimeout, cfg.Engine.HealthTimeout)

	// Services
	orchestrator := generator.NewOrchestrator(engines, pg, logger).
		WithAudit(audit.NewGenerationLogger(pg.DB())).
		WithMetrics(m)
	publications := publication.NewService(pg, picksCache, events, m, logger)
	injuryService := injuries.NewService(pg, publications, logger)
	reader := picks.NewReader(pg, picksCache, m, logger)

	// Scheduled generation
	if cfg.Schedule.Spec != "" {
		sports, err := cfg.ScheduledSports()
		if err != nil {
			return err
		}
		policy := retry.NewRetryPolicy(cfg.Schedule.MaxAttempts, cfg.Schedule.InitialDelay).
			WithRetryable(scheduler.Retryable)
		runner := scheduler.New(ctx, orchestrator, policy, logger)
		if err := runner.Schedule(cfg.Schedule.Spec, sports); err != nil {
			return fmt.Errorf("schedule generation: %w", err)
		}
		runner.Start()
		defer runner.Stop()
	}

	// Setup router
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(cfg.Server.RequestTimeout))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	handlers.Mount(r,
		handlers.NewHealthHandler(pg, engines, m),
		handlers.NewReportHandler(orchestrator, pg, publications, injuryService, logger),
		handlers.NewPicksHandler(reader, logger),
	)
	r.Handle("/metrics", m.Handler())
	r.Get("/ws/reports", broadcast.NewHandler(ctx, hub, cfg.Server.AllowedOrigins).ServeWS)

	// Generation can run for the full engine timeout
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Server.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("report service listening", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil

	case <-ctx.Done():
		logger.Info("shutdown signal received")

		// Give outstanding requests a deadline for completion
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("graceful shutdown failed", zap.Error(err))
			if err := srv.Close(); err != nil {
				return fmt.Errorf("could not stop server: %w", err)
			}
		}
	}

	return nil
}

func connectRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	return client, nil
}
