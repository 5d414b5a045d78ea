package domain

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// Risk scoring weights.
const (
	SeverityWeight   = 20.0
	ConfidenceWeight = 10.0
	HotspotBonus     = 30.0
	EmergingBoost    = 1.5
	EmergingWindow   = 6 * time.Hour
)

// RiskScorer assigns risk scores to clustered hazards. It holds no state
// beyond its time source; every call scores the batch from scratch.
type RiskScorer struct {
	clock clockwork.Clock
}

// NewRiskScorer creates a scorer. Pass nil to use the real clock.
func NewRiskScorer(c clockwork.Clock) *RiskScorer {
	if c == nil {
		c = clockwork.NewRealClock()
	}
	return &RiskScorer{clock: c}
}

// BaseScore is the score of a record before any emerging-hotspot boost.
func BaseScore(h AnnotatedHazard) float64 {
	score := float64(h.Severity)*SeverityWeight + (h.Confidence/100)*ConfidenceWeight
	if h.IsHotspot {
		score += HotspotBonus
	}
	return score
}

// Score returns a copy of hazards with RiskScore populated. Records reported
// within EmergingWindow of now are re-clustered on their own; every cluster
// label that is a hotspot there boosts all records carrying the same label in
// the full batch, older ones included. Scores are not clamped.
func (s *RiskScorer) Score(hazards []AnnotatedHazard) []AnnotatedHazard {
	if len(hazards) == 0 {
		return hazards
	}

	out := make([]AnnotatedHazard, len(hazards))
	copy(out, hazards)
	for i := range out {
		out[i].RiskScore = BaseScore(out[i])
	}

	emerging := s.emergingLabels(out)
	if len(emerging) == 0 {
		return out
	}
	for i := range out {
		if _, ok := emerging[out[i].ClusterID]; ok {
			out[i].RiskScore *= EmergingBoost
		}
	}
	return out
}

// emergingLabels clusters the recent subset and returns its hotspot labels.
func (s *RiskScorer) emergingLabels(hazards []AnnotatedHazard) map[int]struct{} {
	cutoff := s.clock.Now().Add(-EmergingWindow)

	var recent []HazardRecord
	for i := range hazards {
		if hazards[i].Timestamp.After(cutoff) {
			recent = append(recent, hazards[i].HazardRecord)
		}
	}
	if len(recent) == 0 {
		return nil
	}

	labels := make(map[int]struct{})
	for _, h := range Cluster(recent) {
		if h.IsHotspot {
			labels[h.ClusterID] = struct{}{}
		}
	}
	return labels
}

// Assess clusters records and scores the result.
func (s *RiskScorer) Assess(records []HazardRecord) []AnnotatedHazard {
	return s.Score(Cluster(records))
}

// RiskLevel buckets a risk score for display.
func RiskLevel(score float64) string {
	switch {
	case score >= 120:
		return "critical"
	case score >= 90:
		return "high"
	case score >= 60:
		return "medium"
	default:
		return "low"
	}
}
