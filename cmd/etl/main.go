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

	"github.com/couchcryptid/hazard-risk-etl/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/hazard-risk-etl/internal/adapter/kafka"
	"github.com/couchcryptid/hazard-risk-etl/internal/adapter/mapbox"
	"github.com/couchcryptid/hazard-risk-etl/internal/adapter/postgres"
	"github.com/couchcryptid/hazard-risk-etl/internal/adapter/rediscache"
	"github.com/couchcryptid/hazard-risk-etl/internal/config"
	"github.com/couchcryptid/hazard-risk-etl/internal/domain"
	"github.com/couchcryptid/hazard-risk-etl/internal/observability"
	"github.com/couchcryptid/hazard-risk-etl/internal/pipeline"
	"github.com/couchcryptid/hazard-risk-etl/internal/service"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
)

// retentionInterval is how often expired hazards are purged.
const retentionInterval = time.Hour

// readiness is ready when every check passes.
type readiness []sharedobs.ReadinessChecker

func (r readiness) CheckReadiness(ctx context.Context) error {
	for _, c := range r {
		if err := c.CheckReadiness(ctx); err != nil {
			return err
		}
	}
	return nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize geocoder (feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN).
	var geocoder domain.Geocoder
	if cfg.MapboxEnabled {
		opts := []mapbox.Option{mapbox.WithCountry(cfg.MapboxCountry)}
		if p := cfg.MapboxProximity; p != nil {
			opts = append(opts, mapbox.WithProximity(p[0], p[1]))
		}
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger, opts...)
		cached, err := mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
		if err != nil {
			logger.Error("failed to create geocode cache", "error", err)
			os.Exit(1)
		}
		geocoder = cached
		metrics.GeocodeEnabled.Set(1)
		logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout, "country", cfg.MapboxCountry)
	} else {
		logger.Info("mapbox geocoding disabled")
	}

	clock := clockwork.NewRealClock()
	scorer := domain.NewRiskScorer(clock)

	reader := kafkaadapter.NewReader(cfg, logger)
	writer := kafkaadapter.NewWriter(cfg, logger)
	transformer := pipeline.NewTransformer(geocoder, logger)

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient, err = rediscache.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.Warn("redis unavailable, caching risk maps in memory", "error", err)
		} else {
			defer redisClient.Close()
		}
	}
	cache := rediscache.New(redisClient, cfg.RiskCacheTTL, clock, metrics, logger)

	sinks := pipeline.FanOut{writer}
	var store service.HazardStore
	var storeReady sharedobs.ReadinessChecker
	if cfg.StoreEnabled() {
		if err := postgres.Migrate(cfg.DatabaseURL); err != nil {
			logger.Error("failed to migrate database", "error", err)
			os.Exit(1)
		}
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		pgStore := postgres.NewStore(pool, metrics, logger)
		sinks = append(sinks, service.NewInvalidatingLoader(pgStore, cache))
		store = pgStore
		storeReady = pgStore
		go pgStore.RunRetention(ctx, retentionInterval, cfg.HazardRetention)
		logger.Info("hazard store enabled", "retention", cfg.HazardRetention)
	} else {
		logger.Info("hazard store disabled")
	}

	risk := service.NewRiskService(store, cache, scorer, clock, logger)

	p := pipeline.New(reader, transformer, scorer, sinks, logger, metrics, cfg.BatchSize)

	ready := readiness{p}
	if storeReady != nil {
		ready = append(ready, storeReady)
	}
	srv := httpadapter.NewServer(cfg.HTTPAddr, ready, risk, cfg.RiskWindow, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start ETL pipeline.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}

	logger.Info("shutdown complete")
}
