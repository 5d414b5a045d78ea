package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOptions(seed uint64) options {
	return options{
		count:   40,
		seed:    seed,
		now:     time.Date(2024, time.April, 26, 12, 0, 0, 0, time.UTC),
		baseLat: 28.6139,
		baseLon: 77.2090,
		spread:  0.1,
		maxAge:  72 * time.Hour,
	}
}

func TestGenerate_Reproducible(t *testing.T) {
	a := generate(testOptions(7))
	b := generate(testOptions(7))
	c := generate(testOptions(8))

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestGenerate_PassesValidation(t *testing.T) {
	opts := testOptions(42)
	reports := generate(opts)

	records, err := check(reports)
	require.NoError(t, err)
	require.Len(t, records, opts.count)

	for i, rec := range records {
		assert.Equal(t, reports[i].ID, rec.ID)
		assert.InDelta(t, opts.baseLat, rec.Lat, opts.spread)
		assert.InDelta(t, opts.baseLon, rec.Lon, opts.spread)
		assert.False(t, rec.Timestamp.After(opts.now))
		assert.False(t, rec.Timestamp.Before(opts.now.Add(-opts.maxAge)))
		assert.Equal(t, rec.Confidence > 70, rec.Verified)
	}
}
