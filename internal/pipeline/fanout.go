package pipeline

import (
	"context"
	"fmt"

	"github.com/couchcryptid/hazard-risk-etl/internal/domain"
)

// FanOut loads every batch into each loader in order and stops at the first
// failure. Loaders must tolerate a batch being replayed after a partial
// failure: the Kafka sink delivers at least once and the store upserts.
type FanOut []BatchLoader

// LoadBatch implements BatchLoader.
func (f FanOut) LoadBatch(ctx context.Context, hazards []domain.AnnotatedHazard) error {
	for i, l := range f {
		if err := l.LoadBatch(ctx, hazards); err != nil {
			return fmt.Errorf("loader %d: %w", i, err)
		}
	}
	return nil
}
