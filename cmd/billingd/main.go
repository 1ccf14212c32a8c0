// Command billingd serves the premium billing API: checkout initiation and
// Stripe webhook processing backed by a pluggable entitlement store.
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
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/startupprice/billingd/pkg/api"
	prommetrics "github.com/startupprice/billingd/pkg/billing/metrics/prometheus"
	stripeprovider "github.com/startupprice/billingd/pkg/billing/stripe"
	"github.com/startupprice/billingd/pkg/config"
	"github.com/startupprice/billingd/pkg/entitlement"
	"github.com/startupprice/billingd/storage/memory"
	"github.com/startupprice/billingd/storage/postgres"
	redisstore "github.com/startupprice/billingd/storage/redis"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "billingd: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, cleanup, err := newStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize entitlement store")
	}
	defer cleanup()

	provider, err := stripeprovider.NewProvider(stripeprovider.Config{
		Store:         store,
		SecretKey:     cfg.StripeSecretKey,
		WebhookSecret: cfg.StripeWebhookSecret,
		PriceID:       cfg.StripePriceID,
		SuccessURL:    cfg.SuccessURL(),
		CancelURL:     cfg.CancelURL(),
		Logger:        &logger,
		Metrics:       prommetrics.DefaultMetrics("startupprice"),
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize stripe provider")
	}

	handler, err := api.NewHandler(api.Config{
		Provider: provider,
		Logger:   &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize api handler")
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(api.Recoverer(logger))
	r.Get("/health", api.HealthHandler)
	r.Handle("/metrics", promhttp.Handler())
	r.Mount("/api/billing", handler.Routes())

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Int("port", cfg.Port).Msg("billing server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal().Err(err).Msg("server exited with error")
	}
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(os.Stderr).
		Level(lvl).
		With().
		Timestamp().
		Str("service", "billingd").
		Logger()
}

// newStore selects the entitlement store backend. The in-memory store is a
// development placeholder; production deployments should set DATABASE_URL or
// REDIS_ADDR.
func newStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (entitlement.Store, func(), error) {
	switch {
	case cfg.DatabaseURL != "":
		pgConfig := postgres.DefaultConfig()
		pgConfig.ConnectionString = cfg.DatabaseURL
		store, err := postgres.New(ctx, pgConfig)
		if err != nil {
			return nil, nil, err
		}
		logger.Info().Msg("using postgres entitlement store")
		return store, store.Close, nil

	case cfg.RedisAddr != "":
		client := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, nil, fmt.Errorf("failed to ping redis: %w", err)
		}
		store, err := redisstore.New(client, redisstore.DefaultConfig())
		if err != nil {
			return nil, nil, err
		}
		logger.Info().Msg("using redis entitlement store")
		return store, func() { client.Close() }, nil

	default:
		logger.Warn().Msg("using in-memory entitlement store; records are lost on restart")
		return memory.New(), func() {}, nil
	}
}

func requestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("duration", time.Since(start)).
				Msg("request")
		})
	}
}
