package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/anonto42/instaclone/backend/internal/jobs"
	"github.com/anonto42/instaclone/backend/internal/metrics"
	"github.com/anonto42/instaclone/backend/internal/middleware"
	"github.com/anonto42/instaclone/backend/internal/realtime"
	"github.com/anonto42/instaclone/backend/internal/repositories"
	"github.com/anonto42/instaclone/backend/internal/router"
	"github.com/anonto42/instaclone/backend/internal/services"
	"github.com/anonto42/instaclone/backend/pkg/clock"
	"github.com/anonto42/instaclone/backend/pkg/config"
	"github.com/anonto42/instaclone/backend/pkg/firebase"
	"github.com/anonto42/instaclone/backend/pkg/logger"
	"github.com/anonto42/instaclone/backend/pkg/storage"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP, WebSocket and metrics servers with background jobs",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, db, err := bootstrap(true)
	if err != nil {
		return err
	}
	defer db.CloseDB()
	log := logger.L()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps := router.Deps{Config: cfg, DB: db.Postgres, Clock: clock.RealClock{}}

	fb, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
	switch {
	case errors.Is(err, firebase.ErrNotConfigured):
		log.Info().Msg("FIREBASE_CREDENTIALS_PATH not set, firebase auth disabled")
	case err != nil:
		return fmt.Errorf("initializing firebase: %w", err)
	default:
		deps.Firebase = middleware.FirebaseVerifier(fb.AuthClient)
	}

	registry, shutdownRegistry, err := newRegistry(ctx, cfg)
	if err != nil {
		return err
	}
	defer shutdownRegistry(context.Background())
	deps.Registry = registry

	if cfg.S3.Enabled() {
		s3, err := storage.NewS3Storage(ctx, cfg.S3)
		if err != nil {
			return fmt.Errorf("initializing storage: %w", err)
		}
		deps.Storage = s3
	}
	if db.Mongo != nil {
		deps.Mongo = db.Mongo.Database(cfg.MongoDatabase)
	}

	// Background jobs
	storySvc := services.NewStoryService(db.Postgres,
		repositories.NewPostgresStoryRepository(db.Postgres),
		repositories.NewPostgresUserRepository(db.Postgres),
		deps.Clock)
	runners := []*jobs.Runner{
		jobs.NewRunner(jobs.NewStorySweeper(storySvc), cfg.StorySweepInterval),
		jobs.NewRunner(jobs.NewCounterReconciler(repositories.NewPostgresCounterRepository(db.Postgres)), cfg.ReconcileInterval),
	}
	for _, r := range runners {
		r.Start(ctx)
	}
	defer func() {
		for _, r := range runners {
			r.Stop()
			<-r.Done()
		}
	}()

	go metrics.Serve(ctx, ":"+cfg.MetricsPort)

	e := echo.New()
	e.HideBanner = true
	router.SetupMiddleware(e, cfg)
	router.SetupRoutes(e, deps)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("HTTP server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// newRegistry builds the realtime registry selected by REALTIME_DRIVER.
func newRegistry(ctx context.Context, cfg *config.Config) (realtime.Registry, shutdownFunc, error) {
	if cfg.RealtimeDriver != config.RealtimeRedis {
		reg := realtime.NewMemoryRegistry()
		return reg, func(context.Context) { reg.Shutdown() }, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, nil, fmt.Errorf("connecting to redis: %w", err)
	}

	reg := realtime.NewRedisRegistry(rdb, uuid.NewString())
	if err := reg.Start(ctx); err != nil {
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("starting redis registry: %w", err)
	}
	logger.L().Info().Msg("realtime registry backed by redis")
	return reg, func(ctx context.Context) {
		reg.Shutdown(ctx)
		_ = rdb.Close()
	}, nil
}
