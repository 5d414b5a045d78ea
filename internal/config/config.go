package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	KafkaBrokers     []string
	KafkaSourceTopic string
	KafkaSinkTopic   string
	KafkaGroupID     string
	HTTPAddr         string
	LogLevel         string
	LogFormat        string
	ShutdownTimeout  time.Duration

	BatchSize          int
	BatchFlushInterval time.Duration

	// Mapbox geocoding configuration.
	MapboxToken     string
	MapboxEnabled   bool
	MapboxTimeout   time.Duration
	MapboxCacheSize int
	MapboxCountry   string      // forward lookups only; empty searches worldwide
	MapboxProximity *[2]float64 // lat, lon bias for forward lookups

	// Hazard store. An empty DatabaseURL disables persistence.
	DatabaseURL     string
	HazardRetention time.Duration

	// Risk map cache. An empty RedisAddr keeps results in memory only.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RiskCacheTTL  time.Duration
	RiskWindow    time.Duration
}

// StoreEnabled reports whether a hazard database is configured.
func (c *Config) StoreEnabled() bool { return c.DatabaseURL != "" }

// Load reads configuration from the environment, applying defaults where
// unset. A .env file in the working directory is loaded first if present;
// variables already set in the environment take precedence.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	mapboxTimeout, err := parsePositiveDuration("MAPBOX_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}
	retention, err := parsePositiveDuration("HAZARD_RETENTION", "720h")
	if err != nil {
		return nil, err
	}
	cacheTTL, err := parsePositiveDuration("RISK_CACHE_TTL", "5m")
	if err != nil {
		return nil, err
	}
	riskWindow, err := parsePositiveDuration("RISK_WINDOW", "24h")
	if err != nil {
		return nil, err
	}

	redisDB, err := strconv.Atoi(sharedcfg.EnvOrDefault("REDIS_DB", "0"))
	if err != nil || redisDB < 0 {
		return nil, errors.New("invalid REDIS_DB")
	}

	proximity, err := parseLatLon("MAPBOX_PROXIMITY")
	if err != nil {
		return nil, err
	}

	mapboxToken := os.Getenv("MAPBOX_TOKEN")
	mapboxEnabled := mapboxToken != ""
	if v := os.Getenv("MAPBOX_ENABLED"); v != "" {
		mapboxEnabled = v == "true"
	}

	cfg := &Config{
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:   sharedcfg.EnvOrDefault("KAFKA_SOURCE_TOPIC", "raw-hazard-reports"),
		KafkaSinkTopic:     sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "scored-hazards"),
		KafkaGroupID:       sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "hazard-risk-etl"),
		HTTPAddr:           sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,

		MapboxToken:     mapboxToken,
		MapboxEnabled:   mapboxEnabled,
		MapboxTimeout:   mapboxTimeout,
		MapboxCacheSize: parsePositiveInt("MAPBOX_CACHE_SIZE", 1000),
		MapboxCountry:   sharedcfg.EnvOrDefault("MAPBOX_COUNTRY", "in"),
		MapboxProximity: proximity,

		DatabaseURL:     os.Getenv("DATABASE_URL"),
		HazardRetention: retention,

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       redisDB,
		RiskCacheTTL:  cacheTTL,
		RiskWindow:    riskWindow,
	}

	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaSourceTopic == "" {
		return nil, errors.New("KAFKA_SOURCE_TOPIC is required")
	}
	if cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}
	if cfg.MapboxEnabled && cfg.MapboxToken == "" {
		return nil, errors.New("MAPBOX_ENABLED is true but MAPBOX_TOKEN is not set")
	}

	return cfg, nil
}

func parsePositiveDuration(name, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(name, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return d, nil
}

func parsePositiveInt(name string, def int) int {
	if s := os.Getenv(name); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return def
}

// parseLatLon reads an optional "lat,lon" pair.
func parseLatLon(name string) (*[2]float64, error) {
	v := os.Getenv(name)
	if v == "" {
		return nil, nil
	}
	latStr, lonStr, ok := strings.Cut(v, ",")
	if !ok {
		return nil, fmt.Errorf("invalid %s: want lat,lon", name)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil || lat < -90 || lat > 90 {
		return nil, fmt.Errorf("invalid %s latitude", name)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
	if err != nil || lon < -180 || lon > 180 {
		return nil, fmt.Errorf("invalid %s longitude", name)
	}
	return &[2]float64{lat, lon}, nil
}
