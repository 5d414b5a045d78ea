package service

import (
	"context"

	"github.com/couchcryptid/hazard-risk-etl/internal/domain"
)

// HazardLoader writes assessed hazards to a sink.
type HazardLoader interface {
	LoadBatch(ctx context.Context, hazards []domain.AnnotatedHazard) error
}

// InvalidatingLoader drops cached risk maps after every batch the wrapped
// loader stores, so pipeline writes show up on the next risk map request.
type InvalidatingLoader struct {
	next  HazardLoader
	cache ResultCache
}

// NewInvalidatingLoader wraps next with risk map cache invalidation.
func NewInvalidatingLoader(next HazardLoader, cache ResultCache) *InvalidatingLoader {
	return &InvalidatingLoader{next: next, cache: cache}
}

// LoadBatch loads the batch and invalidates the risk maps once it is stored.
// A failed load leaves the cache untouched.
func (l *InvalidatingLoader) LoadBatch(ctx context.Context, hazards []domain.AnnotatedHazard) error {
	if len(hazards) == 0 {
		return nil
	}
	if err := l.next.LoadBatch(ctx, hazards); err != nil {
		return err
	}
	l.cache.InvalidatePrefix(ctx, riskKeyPrefix)
	return nil
}
