package domain

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, time.April, 26, 12, 0, 0, 0, time.UTC)

// hazardAt builds a valid record at the given coordinates.
func hazardAt(id string, lat, lon float64, ts time.Time) HazardRecord {
	return HazardRecord{
		ID:         id,
		HazardType: Potholes,
		Severity:   3,
		Confidence: 80,
		Lat:        lat,
		Lon:        lon,
		Timestamp:  ts,
	}
}

// connaughtPlaceBatch returns six reports within ~50m of Connaught Place
// followed by four isolated reports spread ~10km around it.
func connaughtPlaceBatch(ts time.Time) []HazardRecord {
	tight := [][2]float64{
		{28.63150, 77.21890},
		{28.63170, 77.21900},
		{28.63160, 77.21920},
		{28.63180, 77.21880},
		{28.63140, 77.21910},
		{28.63175, 77.21915},
	}
	far := [][2]float64{
		{28.51390, 77.10900},
		{28.71390, 77.30900},
		{28.51390, 77.30900},
		{28.71390, 77.10900},
	}

	var recs []HazardRecord
	for i, c := range tight {
		recs = append(recs, hazardAt(fmt.Sprintf("CP%02d", i), c[0], c[1], ts))
	}
	for i, c := range far {
		recs = append(recs, hazardAt(fmt.Sprintf("FAR%02d", i), c[0], c[1], ts))
	}
	return recs
}

func TestCluster_SmallBatchIsAllNoise(t *testing.T) {
	for n := 0; n < MinClusterBatch; n++ {
		t.Run(fmt.Sprintf("%d records", n), func(t *testing.T) {
			recs := make([]HazardRecord, n)
			for i := range recs {
				// Identical points would cluster if the short-circuit were missing.
				recs[i] = hazardAt(fmt.Sprintf("HR%04d", i), 28.6139, 77.2090, testNow)
			}

			out := Cluster(recs)

			require.Len(t, out, n)
			for _, h := range out {
				assert.Equal(t, NoiseCluster, h.ClusterID)
				assert.False(t, h.IsHotspot)
			}
		})
	}
}

func TestCluster_Empty(t *testing.T) {
	assert.Empty(t, Cluster(nil))
	assert.Empty(t, Cluster([]HazardRecord{}))
}

func TestCluster_TightGroupAndIsolatedPoints(t *testing.T) {
	out := Cluster(connaughtPlaceBatch(testNow))

	require.Len(t, out, 10)
	for _, h := range out[:6] {
		assert.Equal(t, 0, h.ClusterID, "record %s", h.ID)
		assert.True(t, h.IsHotspot)
	}
	for _, h := range out[6:] {
		assert.Equal(t, NoiseCluster, h.ClusterID, "record %s", h.ID)
		assert.False(t, h.IsHotspot)
	}
}

func TestCluster_TwoGroupsGetDistinctLabelsInInputOrder(t *testing.T) {
	var recs []HazardRecord
	for i := range 4 {
		d := float64(i) * 0.0001
		recs = append(recs, hazardAt(fmt.Sprintf("A%d", i), 28.6000+d, 77.2000+d, testNow))
	}
	for i := range 4 {
		d := float64(i) * 0.0001
		recs = append(recs, hazardAt(fmt.Sprintf("B%d", i), 28.7000+d, 77.3000+d, testNow))
	}

	out := Cluster(recs)

	for _, h := range out[:4] {
		assert.Equal(t, 0, h.ClusterID)
	}
	for _, h := range out[4:] {
		assert.Equal(t, 1, h.ClusterID)
	}
}

func TestCluster_DoesNotMutateInput(t *testing.T) {
	recs := connaughtPlaceBatch(testNow)
	before := make([]HazardRecord, len(recs))
	copy(before, recs)

	_ = Cluster(recs)

	assert.Equal(t, before, recs)
}

// Labels depend on the batch-wide standardization: the same six points that
// form a hotspot next to distant reports are spread apart when clustered on
// their own.
func TestCluster_LabelsDependOnBatch(t *testing.T) {
	full := Cluster(connaughtPlaceBatch(testNow))
	alone := Cluster(connaughtPlaceBatch(testNow)[:6])

	assert.True(t, full[0].IsHotspot)
	for _, h := range alone {
		assert.Equal(t, NoiseCluster, h.ClusterID)
	}
}

func TestCluster_IdenticalPointsFormOneCluster(t *testing.T) {
	recs := make([]HazardRecord, 5)
	for i := range recs {
		recs[i] = hazardAt(fmt.Sprintf("HR%04d", i), 28.6139, 77.2090, testNow)
	}

	out := Cluster(recs)

	for _, h := range out {
		assert.Equal(t, 0, h.ClusterID)
	}
}

func TestDBSCAN_BorderPointJoinsCluster(t *testing.T) {
	// 0,1,2 are core; 3 is within eps of 2 only, so it is a border point.
	points := [][]float64{
		{0, 0}, {0.009, 0}, {0.018, 0}, {0.033, 0}, {1, 1},
	}

	labels := dbscan(points, 0.02, 3)

	assert.Equal(t, []int{0, 0, 0, 0, NoiseCluster}, labels)
}

func TestStandardize_ZeroVarianceAxis(t *testing.T) {
	recs := []HazardRecord{
		hazardAt("a", 10, 5, testNow),
		hazardAt("b", 10, 7, testNow),
	}

	points := standardize(recs)

	assert.Equal(t, 0.0, points[0][0])
	assert.Equal(t, 0.0, points[1][0])
	assert.InDelta(t, -1.0, points[0][1], 1e-9)
	assert.InDelta(t, 1.0, points[1][1], 1e-9)
}
