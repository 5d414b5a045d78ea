package mapbox

import (
	"context"
	"errors"
	"testing"

	"github.com/couchcryptid/hazard-risk-etl/internal/domain"
	"github.com/couchcryptid/hazard-risk-etl/internal/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingGeocoder struct {
	forwardCalls int
	reverseCalls int
	result       domain.GeocodingResult
	err          error
}

func (m *countingGeocoder) ForwardGeocode(_ context.Context, _ string) (domain.GeocodingResult, error) {
	m.forwardCalls++
	return m.result, m.err
}

func (m *countingGeocoder) ReverseGeocode(_ context.Context, _, _ float64) (domain.GeocodingResult, error) {
	m.reverseCalls++
	return m.result, m.err
}

func newCached(t *testing.T, inner domain.Geocoder, size int) (*CachedGeocoder, *observability.Metrics) {
	t.Helper()
	metrics := observability.NewMetricsForTesting()
	cached, err := NewCachedGeocoder(inner, size, metrics)
	require.NoError(t, err)
	return cached, metrics
}

func TestCachedGeocoder_ForwardCacheHit(t *testing.T) {
	inner := &countingGeocoder{
		result: domain.GeocodingResult{Lat: 28.6315, Lon: 77.2167, PlaceName: "Connaught Place", FormattedAddress: "Connaught Place, New Delhi"},
	}
	cached, metrics := newCached(t, inner, 10)

	r1, err := cached.ForwardGeocode(context.Background(), "Connaught Place")
	require.NoError(t, err)
	r2, err := cached.ForwardGeocode(context.Background(), "  connaught place ")
	require.NoError(t, err)

	assert.Equal(t, r1, r2)
	assert.Equal(t, 1, inner.forwardCalls, "should only call inner once")
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.GeocodeCache.WithLabelValues("forward", "hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.GeocodeCache.WithLabelValues("forward", "miss")))
}

func TestCachedGeocoder_ReverseCacheHit(t *testing.T) {
	inner := &countingGeocoder{
		result: domain.GeocodingResult{FormattedAddress: "ITO, New Delhi"},
	}
	cached, _ := newCached(t, inner, 10)

	_, err := cached.ReverseGeocode(context.Background(), 28.628011, 77.241022)
	require.NoError(t, err)
	_, err = cached.ReverseGeocode(context.Background(), 28.628012, 77.241024)
	require.NoError(t, err)

	assert.Equal(t, 1, inner.reverseCalls, "nearby coordinates share a key")
}

func TestCachedGeocoder_DifferentKeysMiss(t *testing.T) {
	inner := &countingGeocoder{
		result: domain.GeocodingResult{PlaceName: "Place", FormattedAddress: "Place, Delhi"},
	}
	cached, _ := newCached(t, inner, 10)

	_, _ = cached.ForwardGeocode(context.Background(), "India Gate")
	_, _ = cached.ForwardGeocode(context.Background(), "Janpath")

	assert.Equal(t, 2, inner.forwardCalls)
}

func TestCachedGeocoder_EmptyResultsNotCached(t *testing.T) {
	inner := &countingGeocoder{}
	cached, _ := newCached(t, inner, 10)

	_, _ = cached.ForwardGeocode(context.Background(), "Nowhere")
	_, _ = cached.ForwardGeocode(context.Background(), "Nowhere")

	assert.Equal(t, 2, inner.forwardCalls)
	assert.Equal(t, 0, cached.Len())
}

func TestCachedGeocoder_ErrorsNotCached(t *testing.T) {
	inner := &countingGeocoder{err: errors.New("rate limited")}
	cached, _ := newCached(t, inner, 10)

	_, err := cached.ReverseGeocode(context.Background(), 28.6, 77.2)
	require.Error(t, err)
	_, err = cached.ReverseGeocode(context.Background(), 28.6, 77.2)
	require.Error(t, err)

	assert.Equal(t, 2, inner.reverseCalls)
}

func TestCachedGeocoder_Eviction(t *testing.T) {
	inner := &countingGeocoder{result: domain.GeocodingResult{FormattedAddress: "somewhere"}}
	cached, _ := newCached(t, inner, 2)

	_, _ = cached.ForwardGeocode(context.Background(), "a")
	_, _ = cached.ForwardGeocode(context.Background(), "b")
	_, _ = cached.ForwardGeocode(context.Background(), "a") // promotes "a"
	_, _ = cached.ForwardGeocode(context.Background(), "c") // evicts "b"
	_, _ = cached.ForwardGeocode(context.Background(), "a")
	_, _ = cached.ForwardGeocode(context.Background(), "b")

	assert.Equal(t, 2, cached.Len())
	assert.Equal(t, 4, inner.forwardCalls)
}

func TestNewCachedGeocoder_InvalidSize(t *testing.T) {
	_, err := NewCachedGeocoder(&countingGeocoder{}, 0, observability.NewMetricsForTesting())
	require.Error(t, err)
}
