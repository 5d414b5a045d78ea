// Package service exposes hazard reporting and risk assessment to the HTTP
// API, backed by the hazard store and the risk map cache.
package service

//go:generate mockgen -destination=mocks/mock_service.go -package=mocks . HazardStore,ResultCache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/couchcryptid/hazard-risk-etl/internal/domain"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// ErrStoreDisabled is returned by operations that need the hazard store when
// no database is configured.
var ErrStoreDisabled = errors.New("hazard store not configured")

// ErrInvalidWindow is returned for a non-positive risk map window.
var ErrInvalidWindow = errors.New("risk window must be positive")

// riskKeyPrefix prefixes every cached risk map key.
const riskKeyPrefix = "risk:"

func riskKey(window time.Duration) string {
	return riskKeyPrefix + window.String()
}

// Community report defaults.
const (
	ReportIDPrefix     = "COMM_"
	TextOnlyConfidence = 40.0
	CommunityReporter  = "community_user"
)

// HazardStore persists hazard reports.
type HazardStore interface {
	SaveHazard(ctx context.Context, h domain.HazardRecord) error
	RecentHazards(ctx context.Context, since time.Time, limit int) ([]domain.HazardRecord, error)
	HazardsByReporter(ctx context.Context, reporterID string, limit int) ([]domain.HazardRecord, error)
	Stats(ctx context.Context) (domain.HazardStats, error)
}

// ResultCache holds computed risk maps. Implementations are best effort.
type ResultCache interface {
	Get(ctx context.Context, key string, dst any) bool
	Set(ctx context.Context, key string, v any)
	InvalidatePrefix(ctx context.Context, prefix string)
}

// Report is a hazard submitted by a community member.
type Report struct {
	HazardType  string   `json:"hazard_type"`
	Severity    int      `json:"severity"`
	Confidence  *float64 `json:"confidence"`
	Lat         float64  `json:"lat"`
	Lon         float64  `json:"lon"`
	Location    string   `json:"location"`
	Description string   `json:"description"`
	ReporterID  string   `json:"reporter_id"`
}

// RiskMap is an assessed view of recently reported hazards.
type RiskMap struct {
	Window      string                   `json:"window"`
	GeneratedAt time.Time                `json:"generated_at"`
	Summary     domain.Summary           `json:"summary"`
	Hazards     []domain.AnnotatedHazard `json:"hazards"`
	Cached      bool                     `json:"cached"`
}

// RiskService answers risk queries over stored hazards.
type RiskService struct {
	store       HazardStore
	cache       ResultCache
	scorer      *domain.RiskScorer
	clock       clockwork.Clock
	logger      *slog.Logger
	recentLimit int
}

// NewRiskService creates the service. store may be nil when persistence is
// disabled; the pure clustering and scoring operations keep working.
func NewRiskService(store HazardStore, cache ResultCache, scorer *domain.RiskScorer, clock clockwork.Clock, logger *slog.Logger) *RiskService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &RiskService{
		store:       store,
		cache:       cache,
		scorer:      scorer,
		clock:       clock,
		logger:      logger,
		recentLimit: 1000,
	}
}

// ReportHazard stores a community report and drops cached risk maps so the
// next query sees it.
func (s *RiskService) ReportHazard(ctx context.Context, r Report) (domain.HazardRecord, error) {
	if s.store == nil {
		return domain.HazardRecord{}, ErrStoreDisabled
	}

	now := s.clock.Now().UTC()
	rec := domain.HazardRecord{
		ID:          newReportID(now),
		HazardType:  domain.NormalizeHazardType(r.HazardType),
		Severity:    r.Severity,
		Confidence:  TextOnlyConfidence,
		Lat:         r.Lat,
		Lon:         r.Lon,
		Timestamp:   now,
		Location:    strings.TrimSpace(r.Location),
		Description: strings.TrimSpace(r.Description),
		Source:      domain.DefaultSource,
		ReporterID:  strings.TrimSpace(r.ReporterID),
	}
	if r.Confidence != nil {
		rec.Confidence = *r.Confidence
	}
	if rec.ReporterID == "" {
		rec.ReporterID = CommunityReporter
	}

	if err := domain.ValidateReport(rec); err != nil {
		return domain.HazardRecord{}, err
	}
	if err := s.store.SaveHazard(ctx, rec); err != nil {
		return domain.HazardRecord{}, fmt.Errorf("save report: %w", err)
	}

	s.cache.InvalidatePrefix(ctx, riskKeyPrefix)
	s.logger.Info("hazard reported", "id", rec.ID, "hazard_type", rec.HazardType, "severity", rec.Severity)
	return rec, nil
}

func newReportID(now time.Time) string {
	return ReportIDPrefix + now.Format("20060102_150405") + "_" + uuid.NewString()[:8]
}

// RiskMap assesses hazards reported within window. A cached map is returned
// unless refresh is set.
func (s *RiskService) RiskMap(ctx context.Context, window time.Duration, refresh bool) (RiskMap, error) {
	if s.store == nil {
		return RiskMap{}, ErrStoreDisabled
	}
	if window <= 0 {
		return RiskMap{}, ErrInvalidWindow
	}

	key := riskKey(window)
	if !refresh {
		var cached RiskMap
		if s.cache.Get(ctx, key, &cached) {
			cached.Cached = true
			return cached, nil
		}
	}

	now := s.clock.Now().UTC()
	records, err := s.store.RecentHazards(ctx, now.Add(-window), s.recentLimit)
	if err != nil {
		return RiskMap{}, fmt.Errorf("load recent hazards: %w", err)
	}

	assessed := s.scorer.Assess(records)
	m := RiskMap{
		Window:      window.String(),
		GeneratedAt: now,
		Summary:     domain.Summarize(assessed),
		Hazards:     assessed,
	}
	s.cache.Set(ctx, key, m)
	return m, nil
}

// Stats summarizes every stored report.
func (s *RiskService) Stats(ctx context.Context) (domain.HazardStats, error) {
	if s.store == nil {
		return domain.HazardStats{}, ErrStoreDisabled
	}
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return domain.HazardStats{}, fmt.Errorf("hazard stats: %w", err)
	}
	return stats, nil
}

// ReporterHistory returns the latest reports submitted by one reporter.
func (s *RiskService) ReporterHistory(ctx context.Context, reporterID string, limit int) ([]domain.HazardRecord, error) {
	if s.store == nil {
		return nil, ErrStoreDisabled
	}
	hazards, err := s.store.HazardsByReporter(ctx, reporterID, limit)
	if err != nil {
		return nil, fmt.Errorf("reporter history: %w", err)
	}
	return hazards, nil
}

// Cluster validates records and labels them with density clusters.
func (s *RiskService) Cluster(records []domain.HazardRecord) ([]domain.AnnotatedHazard, error) {
	if err := domain.ValidateHazards(records); err != nil {
		return nil, err
	}
	return domain.Cluster(records), nil
}

// Score validates clustered records, including their cluster labels, and
// scores them.
func (s *RiskService) Score(hazards []domain.AnnotatedHazard) ([]domain.AnnotatedHazard, error) {
	if err := domain.ValidateAnnotations(hazards); err != nil {
		return nil, err
	}
	return s.scorer.Score(hazards), nil
}

// Assess validates records, clusters and scores them.
func (s *RiskService) Assess(records []domain.HazardRecord) ([]domain.AnnotatedHazard, error) {
	if err := domain.ValidateHazards(records); err != nil {
		return nil, err
	}
	return s.scorer.Assess(records), nil
}
