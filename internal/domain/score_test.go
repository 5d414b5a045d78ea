package domain

import (
	"fmt"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScorer() *RiskScorer {
	return NewRiskScorer(clockwork.NewFakeClockAt(testNow))
}

func TestScore_Empty(t *testing.T) {
	s := newTestScorer()

	assert.Empty(t, s.Score(nil))
	assert.Empty(t, s.Score([]AnnotatedHazard{}))
}

func TestScore_RecentHotspotIsBoosted(t *testing.T) {
	s := newTestScorer()
	recent := testNow.Add(-30 * time.Minute)

	out := s.Assess(connaughtPlaceBatch(recent))

	require.Len(t, out, 10)
	for _, h := range out[:6] {
		assert.Equal(t, 0, h.ClusterID)
		assert.True(t, h.IsHotspot)
		assert.InDelta(t, 98.0, BaseScore(h), 1e-9)
		assert.InDelta(t, 147.0, h.RiskScore, 1e-9, "record %s", h.ID)
	}
}

func TestScore_IsolatedRecordKeepsBaseScore(t *testing.T) {
	s := newTestScorer()
	recent := testNow.Add(-30 * time.Minute)

	out := s.Assess(connaughtPlaceBatch(recent))

	for _, h := range out[6:] {
		assert.Equal(t, NoiseCluster, h.ClusterID)
		assert.False(t, h.IsHotspot)
		assert.InDelta(t, 3*20+0.8*10, h.RiskScore, 1e-9, "record %s", h.ID)
	}
}

func TestScore_OldHotspotGetsNoBoost(t *testing.T) {
	s := newTestScorer()
	old := testNow.Add(-8 * time.Hour)

	var recs []HazardRecord
	for i := range 8 {
		d := float64(i) * 0.00005
		recs = append(recs, hazardAt(fmt.Sprintf("OLD%02d", i), 28.6315+d, 77.2189+d, old))
	}
	recs = append(recs,
		hazardAt("OLD08", 28.5139, 77.1090, old),
		hazardAt("OLD09", 28.7139, 77.3090, old),
	)

	out := s.Assess(recs)

	for _, h := range out[:8] {
		assert.True(t, h.IsHotspot)
		assert.InDelta(t, 98.0, h.RiskScore, 1e-9, "record %s", h.ID)
	}
	for _, h := range out[8:] {
		assert.False(t, h.IsHotspot)
		assert.InDelta(t, 68.0, h.RiskScore, 1e-9, "record %s", h.ID)
	}
}

func TestScore_BoostPropagatesToOlderClusterMembers(t *testing.T) {
	s := newTestScorer()
	recs := connaughtPlaceBatch(testNow.Add(-time.Hour))
	// One member of the tight group is old; it shares the recent cluster label.
	recs[5].Timestamp = testNow.Add(-48 * time.Hour)

	out := s.Assess(recs)

	require.Equal(t, 0, out[5].ClusterID)
	assert.InDelta(t, 147.0, out[5].RiskScore, 1e-9)
}

// The recent subset is re-clustered on its own, so its label numbers need
// not line up with the full batch. The boost follows the label number.
func TestScore_BoostMatchesByLabelNumber(t *testing.T) {
	s := newTestScorer()
	old := testNow.Add(-12 * time.Hour)
	recent := testNow.Add(-time.Hour)

	var recs []HazardRecord
	for i := range 4 {
		recs = append(recs, hazardAt(fmt.Sprintf("OLD%d", i), 28.60, 77.10, old))
	}
	for i := range 4 {
		recs = append(recs, hazardAt(fmt.Sprintf("NEW%d", i), 28.70, 77.30, recent))
	}
	recs = append(recs, hazardAt("LONE", 28.50, 77.00, recent))

	out := s.Assess(recs)

	for _, h := range out[:4] {
		require.Equal(t, 0, h.ClusterID)
		assert.InDelta(t, 147.0, h.RiskScore, 1e-9, "record %s", h.ID)
	}
	for _, h := range out[4:8] {
		require.Equal(t, 1, h.ClusterID)
		assert.InDelta(t, 98.0, h.RiskScore, 1e-9, "record %s", h.ID)
	}
	assert.Equal(t, NoiseCluster, out[8].ClusterID)
	assert.InDelta(t, 68.0, out[8].RiskScore, 1e-9)
}

func TestScore_WindowBoundaryIsExclusive(t *testing.T) {
	s := newTestScorer()

	out := s.Assess(connaughtPlaceBatch(testNow.Add(-EmergingWindow)))

	assert.InDelta(t, 98.0, out[0].RiskScore, 1e-9)
}

func TestScore_DoesNotCompoundAcrossCalls(t *testing.T) {
	s := newTestScorer()
	clustered := Cluster(connaughtPlaceBatch(testNow))

	once := s.Score(clustered)
	twice := s.Score(once)

	assert.Equal(t, once, twice)
}

func TestScore_DoesNotMutateInput(t *testing.T) {
	s := newTestScorer()
	clustered := Cluster(connaughtPlaceBatch(testNow))
	before := make([]AnnotatedHazard, len(clustered))
	copy(before, clustered)

	_ = s.Score(clustered)

	assert.Equal(t, before, clustered)
}

func TestScore_NoClampAboveHundred(t *testing.T) {
	s := newTestScorer()
	recs := connaughtPlaceBatch(testNow)
	for i := range recs {
		recs[i].Severity = 5
		recs[i].Confidence = 100
	}

	out := s.Assess(recs)

	// (5*20 + 10 + 30) * 1.5
	assert.InDelta(t, 210.0, out[0].RiskScore, 1e-9)
}

func TestScore_UsesScorerClock(t *testing.T) {
	fake := clockwork.NewFakeClockAt(testNow)
	s := NewRiskScorer(fake)
	recs := connaughtPlaceBatch(testNow.Add(-time.Hour))

	assert.InDelta(t, 147.0, s.Assess(recs)[0].RiskScore, 1e-9)

	fake.Advance(6 * time.Hour)
	assert.InDelta(t, 98.0, s.Assess(recs)[0].RiskScore, 1e-9)
}

func TestRiskLevel(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{20, "low"},
		{59.9, "low"},
		{68, "medium"},
		{98, "high"},
		{147, "critical"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RiskLevel(tt.score), "score %v", tt.score)
	}
}
