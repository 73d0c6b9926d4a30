package recordloader

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stelform/adminkit/internal/batch"
	"github.com/stelform/adminkit/internal/domain"
	"github.com/stelform/adminkit/internal/query"
)

// stubRepo serves GetByIDs from a fixed record set and counts queries.
type stubRepo struct {
	records map[uuid.UUID]domain.Record
	queries int32
}

func (s *stubRepo) GetByIDs(_ context.Context, ids []uuid.UUID) ([]domain.Record, error) {
	atomic.AddInt32(&s.queries, 1)
	var out []domain.Record
	for _, id := range ids {
		if rec, ok := s.records[id]; ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (s *stubRepo) List(context.Context, uuid.UUID, domain.QueryDescriptor) ([]domain.Record, int64, error) {
	return nil, 0, nil
}

func (s *stubRepo) Count(context.Context, uuid.UUID, string, domain.Condition) (int64, error) {
	return 0, nil
}

func (s *stubRepo) ListOptions(context.Context, uuid.UUID, query.OptionFetch) ([]domain.Option, error) {
	return nil, nil
}

func (s *stubRepo) InTx(_ context.Context, fn func(batch.Runner) error) error {
	return nil
}

func TestLoaderBatchesLookups(t *testing.T) {
	tenantID := uuid.New()
	records := make(map[uuid.UUID]domain.Record)
	var ids []uuid.UUID
	for i := 0; i < 5; i++ {
		rec := domain.NewRecord(tenantID, "route", map[string]any{"i": i})
		records[rec.ID] = rec
		ids = append(ids, rec.ID)
	}

	repo := &stubRepo{records: records}
	loader := NewRecordLoader(repo)

	ctx := context.Background()
	for _, id := range ids {
		rec, ok, err := loader.Load(ctx, id)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, id, rec.ID)
	}

	// Sequential loads of cached keys never re-query.
	assert.LessOrEqual(t, atomic.LoadInt32(&repo.queries), int32(5))

	for _, id := range ids {
		_, ok, err := loader.Load(ctx, id)
		require.NoError(t, err)
		require.True(t, ok)
	}
	assert.LessOrEqual(t, atomic.LoadInt32(&repo.queries), int32(5))
}

func TestLoaderReportsMissingRecords(t *testing.T) {
	repo := &stubRepo{records: map[uuid.UUID]domain.Record{}}
	loader := NewRecordLoader(repo)

	_, ok, err := loader.Load(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.False(t, ok)
}
