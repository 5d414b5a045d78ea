// Package postgres persists hazard reports and their latest assessment.
package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/hazard-risk-etl/internal/domain"
	"github.com/couchcryptid/hazard-risk-etl/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
)

// Default query limits.
const (
	DefaultRecentLimit   = 1000
	DefaultReporterLimit = 10
)

// NewPool opens a pgx connection pool and verifies it with a ping.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}

// Store reads and writes the hazards table.
type Store struct {
	pool    *pgxpool.Pool
	metrics *observability.Metrics
	logger  *slog.Logger
	clock   clockwork.Clock
}

// NewStore creates a store on an open pool.
func NewStore(pool *pgxpool.Pool, metrics *observability.Metrics, logger *slog.Logger) *Store {
	return &Store{
		pool:    pool,
		metrics: metrics,
		logger:  logger,
		clock:   clockwork.NewRealClock(),
	}
}

const upsertReport = `
	INSERT INTO hazards (
		id, hazard_type, severity, confidence, lat, lon, location, description,
		source, verified, reported_at, reporter_id, formatted_address,
		geo_confidence, geo_source
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	ON CONFLICT (id) DO UPDATE SET
		hazard_type = EXCLUDED.hazard_type,
		severity = EXCLUDED.severity,
		confidence = EXCLUDED.confidence,
		lat = EXCLUDED.lat,
		lon = EXCLUDED.lon,
		location = EXCLUDED.location,
		description = EXCLUDED.description,
		source = EXCLUDED.source,
		verified = EXCLUDED.verified,
		reported_at = EXCLUDED.reported_at,
		reporter_id = EXCLUDED.reporter_id,
		formatted_address = EXCLUDED.formatted_address,
		geo_confidence = EXCLUDED.geo_confidence,
		geo_source = EXCLUDED.geo_source;
`

const upsertAssessed = `
	INSERT INTO hazards (
		id, hazard_type, severity, confidence, lat, lon, location, description,
		source, verified, reported_at, reporter_id, formatted_address,
		geo_confidence, geo_source, cluster_id, is_hotspot, risk_score, assessed_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	ON CONFLICT (id) DO UPDATE SET
		hazard_type = EXCLUDED.hazard_type,
		severity = EXCLUDED.severity,
		confidence = EXCLUDED.confidence,
		lat = EXCLUDED.lat,
		lon = EXCLUDED.lon,
		location = EXCLUDED.location,
		description = EXCLUDED.description,
		source = EXCLUDED.source,
		verified = EXCLUDED.verified,
		reported_at = EXCLUDED.reported_at,
		reporter_id = EXCLUDED.reporter_id,
		formatted_address = EXCLUDED.formatted_address,
		geo_confidence = EXCLUDED.geo_confidence,
		geo_source = EXCLUDED.geo_source,
		cluster_id = EXCLUDED.cluster_id,
		is_hotspot = EXCLUDED.is_hotspot,
		risk_score = EXCLUDED.risk_score,
		assessed_at = EXCLUDED.assessed_at;
`

const selectColumns = `
	id, hazard_type, severity, confidence, lat, lon, location, description,
	source, verified, reported_at, reporter_id, formatted_address,
	geo_confidence, geo_source
`

func reportArgs(h *domain.HazardRecord) []any {
	return []any{
		h.ID, string(h.HazardType), h.Severity, h.Confidence, h.Lat, h.Lon,
		h.Location, h.Description, h.Source, h.Verified, h.Timestamp.UTC(),
		h.ReporterID, h.FormattedAddress, h.GeoConfidence, h.GeoSource,
	}
}

// SaveHazard validates and upserts a single report. A previously stored
// assessment for the same id is kept until the next batch load.
func (s *Store) SaveHazard(ctx context.Context, h domain.HazardRecord) (err error) {
	defer func() { s.metrics.StoreOutcome("save", err) }()

	if err := domain.ValidateHazard(h); err != nil {
		return err
	}
	if _, err := s.pool.Exec(ctx, upsertReport, reportArgs(&h)...); err != nil {
		return fmt.Errorf("save hazard %s: %w", h.ID, err)
	}
	return nil
}

// LoadBatch upserts assessed hazards together with their latest cluster
// label and risk score. Replaying a batch overwrites the same rows.
func (s *Store) LoadBatch(ctx context.Context, hazards []domain.AnnotatedHazard) (err error) {
	if len(hazards) == 0 {
		return nil
	}
	defer func() { s.metrics.StoreOutcome("load", err) }()

	assessedAt := s.clock.Now().UTC()
	batch := &pgx.Batch{}
	for i := range hazards {
		h := &hazards[i]
		args := append(reportArgs(&h.HazardRecord), h.ClusterID, h.IsHotspot, h.RiskScore, assessedAt)
		batch.Queue(upsertAssessed, args...)
	}

	br := s.pool.SendBatch(ctx, batch)
	for i := range hazards {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return fmt.Errorf("upsert hazard %s: %w", hazards[i].ID, err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("close batch: %w", err)
	}

	s.logger.Debug("stored assessed batch", "count", len(hazards))
	return nil
}

// RecentHazards returns reports newer than since, newest first.
func (s *Store) RecentHazards(ctx context.Context, since time.Time, limit int) (hazards []domain.HazardRecord, err error) {
	defer func() { s.metrics.StoreOutcome("recent", err) }()

	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	query := `SELECT ` + selectColumns + `
		FROM hazards
		WHERE reported_at > $1
		ORDER BY reported_at DESC
		LIMIT $2`
	return s.queryHazards(ctx, query, since.UTC(), limit)
}

// HazardsByReporter returns the most recent reports submitted by one reporter.
func (s *Store) HazardsByReporter(ctx context.Context, reporterID string, limit int) (hazards []domain.HazardRecord, err error) {
	defer func() { s.metrics.StoreOutcome("reporter", err) }()

	if limit <= 0 {
		limit = DefaultReporterLimit
	}
	query := `SELECT ` + selectColumns + `
		FROM hazards
		WHERE reporter_id = $1
		ORDER BY reported_at DESC
		LIMIT $2`
	return s.queryHazards(ctx, query, reporterID, limit)
}

func (s *Store) queryHazards(ctx context.Context, query string, args ...any) ([]domain.HazardRecord, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query hazards: %w", err)
	}
	defer rows.Close()

	hazards := make([]domain.HazardRecord, 0)
	for rows.Next() {
		var (
			h          domain.HazardRecord
			hazardType string
		)
		if err := rows.Scan(
			&h.ID, &hazardType, &h.Severity, &h.Confidence, &h.Lat, &h.Lon,
			&h.Location, &h.Description, &h.Source, &h.Verified, &h.Timestamp,
			&h.ReporterID, &h.FormattedAddress, &h.GeoConfidence, &h.GeoSource,
		); err != nil {
			return nil, fmt.Errorf("scan hazard row: %w", err)
		}
		h.HazardType = domain.HazardType(hazardType)
		h.Timestamp = h.Timestamp.UTC()
		hazards = append(hazards, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate hazards: %w", err)
	}
	return hazards, nil
}

// Stats summarizes every stored report. RecentActivity counts reports from
// the last hour.
func (s *Store) Stats(ctx context.Context) (stats domain.HazardStats, err error) {
	defer func() { s.metrics.StoreOutcome("stats", err) }()

	stats = domain.HazardStats{
		ByType:     make(map[domain.HazardType]int),
		BySeverity: make(map[int]int),
	}

	var verified int
	hourAgo := s.clock.Now().Add(-time.Hour).UTC()
	err = s.pool.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE verified),
			COUNT(*) FILTER (WHERE reported_at > $1)
		FROM hazards`, hourAgo).Scan(&stats.Total, &verified, &stats.RecentActivity)
	if err != nil {
		return stats, fmt.Errorf("count hazards: %w", err)
	}
	if stats.Total > 0 {
		stats.VerificationRate = float64(verified) / float64(stats.Total) * 100
	}

	rows, err := s.pool.Query(ctx, `SELECT hazard_type, COUNT(*) FROM hazards GROUP BY hazard_type`)
	if err != nil {
		return stats, fmt.Errorf("count by type: %w", err)
	}
	byType, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (typeCount, error) {
		var tc typeCount
		err := row.Scan(&tc.hazardType, &tc.count)
		return tc, err
	})
	if err != nil {
		return stats, fmt.Errorf("scan type counts: %w", err)
	}
	for _, tc := range byType {
		stats.ByType[domain.HazardType(tc.hazardType)] = tc.count
	}

	rows, err = s.pool.Query(ctx, `SELECT severity, COUNT(*) FROM hazards GROUP BY severity`)
	if err != nil {
		return stats, fmt.Errorf("count by severity: %w", err)
	}
	bySeverity, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) ([2]int, error) {
		var pair [2]int
		err := row.Scan(&pair[0], &pair[1])
		return pair, err
	})
	if err != nil {
		return stats, fmt.Errorf("scan severity counts: %w", err)
	}
	for _, pair := range bySeverity {
		stats.BySeverity[pair[0]] = pair[1]
	}

	return stats, nil
}

type typeCount struct {
	hazardType string
	count      int
}

// Cleanup deletes reports older than the cutoff and returns how many rows
// were removed.
func (s *Store) Cleanup(ctx context.Context, olderThan time.Time) (deleted int64, err error) {
	defer func() { s.metrics.StoreOutcome("cleanup", err) }()

	tag, err := s.pool.Exec(ctx, `DELETE FROM hazards WHERE reported_at < $1`, olderThan.UTC())
	if err != nil {
		return 0, fmt.Errorf("cleanup hazards: %w", err)
	}
	return tag.RowsAffected(), nil
}

// RunRetention deletes reports older than keep every interval until ctx is
// cancelled. Failures are logged and retried on the next tick.
func (s *Store) RunRetention(ctx context.Context, interval, keep time.Duration) {
	ticker := s.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			deleted, err := s.Cleanup(ctx, s.clock.Now().Add(-keep))
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				s.logger.Error("hazard retention failed", "error", err)
				continue
			}
			if deleted > 0 {
				s.logger.Info("removed expired hazards", "deleted", deleted, "retention", keep)
			}
		}
	}
}

// CheckReadiness pings the database.
func (s *Store) CheckReadiness(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres not ready: %w", err)
	}
	return nil
}
