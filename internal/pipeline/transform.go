package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/hazard-risk-etl/internal/domain"
)

// HazardTransformer implements Transformer using the domain parse, enrich
// and validate steps with optional geocoding.
type HazardTransformer struct {
	geocoder domain.Geocoder
	logger   *slog.Logger
}

// NewTransformer creates a HazardTransformer. Pass a nil geocoder to disable
// geocoding enrichment.
func NewTransformer(geocoder domain.Geocoder, logger *slog.Logger) *HazardTransformer {
	return &HazardTransformer{
		geocoder: geocoder,
		logger:   logger,
	}
}

// Transform parses a report and returns it only if it is a valid hazard
// once geocoding has had a chance to fill its coordinates. Reports still
// without coordinates are rejected.
func (t *HazardTransformer) Transform(ctx context.Context, raw domain.RawEvent) (domain.HazardRecord, error) {
	rec, err := domain.ParseRawEvent(raw)
	if err != nil {
		return domain.HazardRecord{}, err
	}

	rec = domain.EnrichHazard(rec)
	rec = domain.EnrichWithGeocoding(ctx, rec, t.geocoder, t.logger)

	if err := domain.ValidateReport(rec); err != nil {
		return domain.HazardRecord{}, err
	}
	return rec, nil
}
