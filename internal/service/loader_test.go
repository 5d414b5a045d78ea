package service

import (
	"context"
	"errors"
	"testing"

	"github.com/couchcryptid/hazard-risk-etl/internal/domain"
	"github.com/couchcryptid/hazard-risk-etl/internal/service/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type recordingLoader struct {
	err     error
	batches [][]domain.AnnotatedHazard
}

func (l *recordingLoader) LoadBatch(_ context.Context, hazards []domain.AnnotatedHazard) error {
	l.batches = append(l.batches, hazards)
	return l.err
}

func assessedBatch() []domain.AnnotatedHazard {
	recs := itoBatch(testNow)
	return []domain.AnnotatedHazard{
		{HazardRecord: recs[0], ClusterID: 0, IsHotspot: true, RiskScore: 178.5},
		{HazardRecord: recs[6], ClusterID: domain.NoiseCluster, RiskScore: 45},
	}
}

func TestInvalidatingLoader_InvalidatesAfterLoad(t *testing.T) {
	cache := mocks.NewMockResultCache(gomock.NewController(t))
	next := &recordingLoader{}
	ctx := context.Background()

	cache.EXPECT().InvalidatePrefix(ctx, "risk:")

	require.NoError(t, NewInvalidatingLoader(next, cache).LoadBatch(ctx, assessedBatch()))
	require.Len(t, next.batches, 1)
	assert.Len(t, next.batches[0], 2)
}

func TestInvalidatingLoader_FailedLoadKeepsCache(t *testing.T) {
	cache := mocks.NewMockResultCache(gomock.NewController(t))
	next := &recordingLoader{err: errors.New("connection reset")}

	err := NewInvalidatingLoader(next, cache).LoadBatch(context.Background(), assessedBatch())

	require.ErrorIs(t, err, next.err)
}

func TestInvalidatingLoader_EmptyBatch(t *testing.T) {
	cache := mocks.NewMockResultCache(gomock.NewController(t))
	next := &recordingLoader{}

	require.NoError(t, NewInvalidatingLoader(next, cache).LoadBatch(context.Background(), nil))
	assert.Empty(t, next.batches)
}
