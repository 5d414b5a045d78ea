// Package rediscache caches computed risk maps in Redis, falling back to an
// in-process map when Redis is not configured or unavailable.
package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/couchcryptid/hazard-risk-etl/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
)

const (
	backendRedis  = "redis"
	backendMemory = "memory"
)

// NewClient connects to Redis and verifies the connection with a ping.
func NewClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
		PoolSize: 10,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return rdb, nil
}

type memoryEntry struct {
	value   []byte
	expires time.Time
}

// Cache stores JSON values with a fixed TTL. It never returns errors: a
// failing Redis degrades to the memory map and a failed lookup is a miss.
type Cache struct {
	client  *redis.Client
	ttl     time.Duration
	clock   clockwork.Clock
	metrics *observability.Metrics
	logger  *slog.Logger

	mu     sync.Mutex
	memory map[string]memoryEntry
}

// New creates a cache. client may be nil to keep everything in memory.
// Pass a nil clock to use real time.
func New(client *redis.Client, ttl time.Duration, clock clockwork.Clock, metrics *observability.Metrics, logger *slog.Logger) *Cache {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Cache{
		client:  client,
		ttl:     ttl,
		clock:   clock,
		metrics: metrics,
		logger:  logger,
		memory:  make(map[string]memoryEntry),
	}
}

// Get decodes the cached value for key into dst and reports whether it was
// found.
func (c *Cache) Get(ctx context.Context, key string, dst any) bool {
	if c.client != nil {
		val, err := c.client.Get(ctx, key).Bytes()
		switch {
		case err == nil:
			if c.decode(key, val, dst) {
				c.metrics.RiskCache.WithLabelValues(backendRedis, "hit").Inc()
				return true
			}
		case errors.Is(err, redis.Nil):
			c.metrics.RiskCache.WithLabelValues(backendRedis, "miss").Inc()
			return false
		default:
			c.logger.Warn("redis get failed, using memory cache", "key", key, "error", err)
		}
	}
	return c.memoryGet(key, dst)
}

// Set stores v under key for the cache TTL.
func (c *Cache) Set(ctx context.Context, key string, v any) {
	val, err := json.Marshal(v)
	if err != nil {
		c.logger.Warn("encode cache value", "key", key, "error", err)
		return
	}

	if c.client != nil {
		err := c.client.Set(ctx, key, val, c.ttl).Err()
		if err == nil {
			return
		}
		c.logger.Warn("redis set failed, using memory cache", "key", key, "error", err)
	}

	c.mu.Lock()
	c.memory[key] = memoryEntry{value: val, expires: c.clock.Now().Add(c.ttl)}
	c.mu.Unlock()
}

// InvalidatePrefix removes every entry whose key starts with prefix from
// both backends.
func (c *Cache) InvalidatePrefix(ctx context.Context, prefix string) {
	c.mu.Lock()
	for key := range c.memory {
		if strings.HasPrefix(key, prefix) {
			delete(c.memory, key)
		}
	}
	c.mu.Unlock()

	if c.client == nil {
		return
	}
	var keys []string
	iter := c.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.logger.Warn("redis scan failed", "prefix", prefix, "error", err)
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("redis delete failed", "prefix", prefix, "error", err)
	}
}

func (c *Cache) memoryGet(key string, dst any) bool {
	c.mu.Lock()
	entry, ok := c.memory[key]
	if ok && !c.clock.Now().Before(entry.expires) {
		delete(c.memory, key)
		ok = false
	}
	c.mu.Unlock()

	if ok && c.decode(key, entry.value, dst) {
		c.metrics.RiskCache.WithLabelValues(backendMemory, "hit").Inc()
		return true
	}
	c.metrics.RiskCache.WithLabelValues(backendMemory, "miss").Inc()
	return false
}

func (c *Cache) decode(key string, val []byte, dst any) bool {
	if err := json.Unmarshal(val, dst); err != nil {
		c.logger.Warn("decode cache value", "key", key, "error", err)
		return false
	}
	return true
}
