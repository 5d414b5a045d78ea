package rediscache

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/hazard-risk-etl/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedMap struct {
	Window string    `json:"window"`
	Scores []float64 `json:"scores"`
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newMemoryCache(t *testing.T, ttl time.Duration) (*Cache, *clockwork.FakeClock, *observability.Metrics) {
	t.Helper()
	clock := clockwork.NewFakeClockAt(time.Date(2024, time.April, 26, 12, 0, 0, 0, time.UTC))
	metrics := observability.NewMetricsForTesting()
	return New(nil, ttl, clock, metrics, discardLogger()), clock, metrics
}

func TestCache_MemoryRoundTrip(t *testing.T) {
	c, _, metrics := newMemoryCache(t, 5*time.Minute)
	ctx := context.Background()

	var got cachedMap
	assert.False(t, c.Get(ctx, "risk:24h0m0s", &got))

	want := cachedMap{Window: "24h", Scores: []float64{147, 68}}
	c.Set(ctx, "risk:24h0m0s", want)

	require.True(t, c.Get(ctx, "risk:24h0m0s", &got))
	assert.Equal(t, want, got)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.RiskCache.WithLabelValues("memory", "hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.RiskCache.WithLabelValues("memory", "miss")))
}

func TestCache_MemoryExpiry(t *testing.T) {
	c, clock, _ := newMemoryCache(t, 5*time.Minute)
	ctx := context.Background()

	c.Set(ctx, "risk:1h0m0s", cachedMap{Window: "1h"})

	clock.Advance(4*time.Minute + 59*time.Second)
	var got cachedMap
	assert.True(t, c.Get(ctx, "risk:1h0m0s", &got))

	clock.Advance(time.Second)
	assert.False(t, c.Get(ctx, "risk:1h0m0s", &got), "entry expires exactly at the TTL")
}

func TestCache_InvalidatePrefix(t *testing.T) {
	c, _, _ := newMemoryCache(t, time.Hour)
	ctx := context.Background()

	c.Set(ctx, "risk:1h0m0s", cachedMap{Window: "1h"})
	c.Set(ctx, "risk:24h0m0s", cachedMap{Window: "24h"})
	c.Set(ctx, "geocode:janpath", cachedMap{Window: "n/a"})

	c.InvalidatePrefix(ctx, "risk:")

	var got cachedMap
	assert.False(t, c.Get(ctx, "risk:1h0m0s", &got))
	assert.False(t, c.Get(ctx, "risk:24h0m0s", &got))
	assert.True(t, c.Get(ctx, "geocode:janpath", &got))
}

func TestCache_UnencodableValueIsDropped(t *testing.T) {
	c, _, _ := newMemoryCache(t, time.Hour)
	ctx := context.Background()

	c.Set(ctx, "bad", map[string]any{"ch": make(chan int)})

	var got map[string]any
	assert.False(t, c.Get(ctx, "bad", &got))
}

func TestCache_UnreachableRedisFallsBackToMemory(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })

	metrics := observability.NewMetricsForTesting()
	c := New(client, time.Minute, clockwork.NewFakeClock(), metrics, discardLogger())
	ctx := context.Background()

	want := cachedMap{Window: "24h", Scores: []float64{98}}
	c.Set(ctx, "risk:24h0m0s", want)

	var got cachedMap
	require.True(t, c.Get(ctx, "risk:24h0m0s", &got))
	assert.Equal(t, want, got)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.RiskCache.WithLabelValues("memory", "hit")))
	assert.Zero(t, testutil.ToFloat64(metrics.RiskCache.WithLabelValues("redis", "hit")))

	c.InvalidatePrefix(ctx, "risk:")
	assert.False(t, c.Get(ctx, "risk:24h0m0s", &got))
}
