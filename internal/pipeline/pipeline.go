package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/hazard-risk-etl/internal/domain"
	"github.com/couchcryptid/hazard-risk-etl/internal/observability"
)

// BatchExtractor reads up to batchSize raw events from the source.
type BatchExtractor interface {
	ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawEvent, error)
}

// Transformer converts a raw event into a validated hazard record.
type Transformer interface {
	Transform(ctx context.Context, raw domain.RawEvent) (domain.HazardRecord, error)
}

// Assessor clusters and scores a batch of records.
type Assessor interface {
	Assess(records []domain.HazardRecord) []domain.AnnotatedHazard
}

// BatchLoader writes assessed hazards to a destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, hazards []domain.AnnotatedHazard) error
}

// Pipeline orchestrates the extract-transform-assess-load loop.
type Pipeline struct {
	extractor   BatchExtractor
	transformer Transformer
	assessor    Assessor
	loader      BatchLoader
	logger      *slog.Logger
	metrics     *observability.Metrics
	ready       atomic.Bool
	batchSize   int
}

// New creates a Pipeline with the given stages and observability.
func New(e BatchExtractor, t Transformer, a Assessor, l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, batchSize int) *Pipeline {
	return &Pipeline{
		extractor:   e,
		transformer: t,
		assessor:    a,
		loader:      l,
		logger:      logger,
		metrics:     metrics,
		batchSize:   batchSize,
	}
}

// CheckReadiness returns nil once the pipeline has loaded at least one batch.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not loaded any hazards yet")
	}
	return nil
}

// Run executes the batch loop until the context is cancelled.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "batch_size", p.batchSize)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	// Exponential backoff: start at 200ms, double each retry, cap at 5s.
	backoff := initialBackoff

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		default:
		}

		if !p.processBatch(ctx, &backoff) {
			return nil
		}
	}
}

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// processBatch runs one cycle. Returns false if the pipeline should stop.
func (p *Pipeline) processBatch(ctx context.Context, backoff *time.Duration) bool {
	start := time.Now()

	rawBatch, err := p.extractor.ExtractBatch(ctx, p.batchSize)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		p.logger.Error("extract batch failed", "error", err)
		return p.backoffOrStop(ctx, backoff)
	}

	if len(rawBatch) == 0 {
		return ctx.Err() == nil
	}

	p.metrics.MessagesConsumed.Add(float64(len(rawBatch)))
	p.metrics.BatchSize.Observe(float64(len(rawBatch)))
	*backoff = initialBackoff

	loaded, ok := p.assessAndLoad(ctx, rawBatch, backoff)
	if !ok {
		return false
	}

	if loaded > 0 {
		p.metrics.BatchProcessingDuration.Observe(time.Since(start).Seconds())
		p.ready.Store(true)
	}
	return true
}

// assessAndLoad transforms each message, assesses the valid records as one
// batch, loads them and commits offsets. Messages that fail to transform are
// committed and skipped. Returns the number of loaded hazards and false if
// the pipeline should stop.
func (p *Pipeline) assessAndLoad(ctx context.Context, rawBatch []domain.RawEvent, backoff *time.Duration) (int, bool) {
	records := make([]domain.HazardRecord, 0, len(rawBatch))
	accepted := make([]domain.RawEvent, 0, len(rawBatch))

	for _, raw := range rawBatch {
		rec, err := p.transformer.Transform(ctx, raw)
		if err != nil {
			p.logger.Warn("transform failed, skipping message",
				"error", err,
				"topic", raw.Topic,
				"partition", raw.Partition,
				"offset", raw.Offset,
			)
			p.metrics.TransformErrors.Inc()
			p.commitOffset(ctx, raw)
			continue
		}
		records = append(records, rec)
		accepted = append(accepted, raw)
	}

	if len(records) == 0 {
		return 0, true
	}

	assessed := p.assessor.Assess(records)
	p.observeAssessment(assessed)

	if err := p.loader.LoadBatch(ctx, assessed); err != nil {
		p.logger.Error("load batch failed", "error", err, "batch_size", len(assessed))
		return 0, p.backoffOrStop(ctx, backoff)
	}

	p.metrics.MessagesProduced.Add(float64(len(assessed)))

	for _, raw := range accepted {
		p.commitOffset(ctx, raw)
	}

	return len(assessed), true
}

func (p *Pipeline) observeAssessment(assessed []domain.AnnotatedHazard) {
	summary := domain.Summarize(assessed)

	p.metrics.HazardsAssessed.Add(float64(summary.Total))
	p.metrics.HotspotRecords.Add(float64(summary.HotspotRecords))
	p.metrics.EmergingRecords.Add(float64(summary.EmergingRecords))
	p.metrics.ClustersPerRun.Observe(float64(summary.Clusters))

	p.logger.Debug("batch assessed",
		"batch_size", summary.Total,
		"clusters", summary.Clusters,
		"hotspot_records", summary.HotspotRecords,
		"emerging_records", summary.EmergingRecords,
	)
}

// backoffOrStop sleeps with the current backoff and advances it. Returns
// false if the pipeline should stop.
func (p *Pipeline) backoffOrStop(ctx context.Context, backoff *time.Duration) bool {
	if ctx.Err() != nil {
		return false
	}
	if !sleepWithContext(ctx, *backoff) {
		return false
	}
	*backoff = nextBackoff(*backoff, maxBackoff)
	return true
}

// commitOffset commits the message offset if a commit function is available.
func (p *Pipeline) commitOffset(ctx context.Context, raw domain.RawEvent) {
	if raw.Commit == nil {
		return
	}
	if err := raw.Commit(ctx); err != nil {
		p.logger.Warn("commit offset failed", "error", err,
			"topic", raw.Topic, "partition", raw.Partition, "offset", raw.Offset)
	}
}

func nextBackoff(current, limit time.Duration) time.Duration {
	next := current * 2
	if next > limit {
		return limit
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
