// Package server assembles the exercise tracker from configuration and runs it.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/ayush/exercise-tracker/internal/config"
	"github.com/ayush/exercise-tracker/internal/middleware"
	"github.com/ayush/exercise-tracker/internal/static"
	"github.com/ayush/exercise-tracker/internal/tracker"
)

const shutdownTimeout = 10 * time.Second

// Migrate prepares the configured store's schema and returns.
func Migrate(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	backend, closeFn, err := OpenBackend(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeFn(context.Background())

	if err := backend.Migrate(ctx); err != nil {
		return err
	}
	log.Info().Str("driver", cfg.StoreDriver).Msg("migration complete")
	return nil
}

// Run serves the API until ctx is cancelled, then drains in-flight requests.
func Run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	backend, closeFn, err := OpenBackend(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeFn(context.Background())

	if err := backend.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	limiter, closeLimiter := newLimiter(ctx, cfg, log)
	defer closeLimiter()

	var source static.PageSource
	if cfg.MinioEnabled() {
		src, err := static.NewMinioSource(ctx, cfg.MinioEndpoint, cfg.MinioAccessKey,
			cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
		if err != nil {
			log.Warn().Err(err).Msg("minio unavailable, serving embedded landing page")
		} else {
			source = src
		}
	}

	handler := NewRouter(RouterOptions{
		Tracker:        tracker.NewHandler(backend, log),
		Site:           static.NewSite(source, log),
		Limiter:        limiter,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		MaxBodyBytes:   cfg.MaxBodyBytes,
		Log:            log,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("driver", cfg.StoreDriver).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutCtx)
}

// newLimiter picks Redis when configured and reachable, else an in-process limiter.
// Returns a nil limiter when rate limiting is off.
func newLimiter(ctx context.Context, cfg *config.Config, log zerolog.Logger) (middleware.Limiter, func()) {
	if cfg.RateLimitPerMinute <= 0 {
		return nil, func() {}
	}
	if cfg.RedisAddr != "" {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		rdb, err := middleware.NewRedisClient(pingCtx, cfg.RedisAddr, cfg.RedisPassword)
		if err == nil {
			log.Info().Str("addr", cfg.RedisAddr).Int("per_minute", cfg.RateLimitPerMinute).Msg("rate limiting via redis")
			return middleware.NewRedisLimiter(rdb, cfg.RateLimitPerMinute), func() { rdb.Close() }
		}
		log.Error().Err(err).Msg("failed to connect to redis, falling back to in-process rate limiting")
	}
	log.Info().Int("per_minute", cfg.RateLimitPerMinute).Msg("rate limiting in process")
	return middleware.NewMemoryLimiter(cfg.RateLimitPerMinute), func() {}
}
