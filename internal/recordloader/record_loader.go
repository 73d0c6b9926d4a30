package recordloader

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/graph-gophers/dataloader"

	"github.com/stelform/adminkit/internal/domain"
	"github.com/stelform/adminkit/internal/repository"
)

// RecordLoader batches per-request record lookups so hydrating an include
// graph over N rows costs one query instead of N.
type RecordLoader struct {
	Loader *dataloader.Loader
}

func NewRecordLoader(repo repository.RecordRepository) *RecordLoader {
	batchFn := func(ctx context.Context, keys dataloader.Keys) []*dataloader.Result {
		ids := make([]uuid.UUID, len(keys))
		for i, k := range keys {
			id, err := uuid.Parse(k.String())
			if err != nil {
				return []*dataloader.Result{{Error: fmt.Errorf("invalid UUID: %w", err)}}
			}
			ids[i] = id
		}

		records, err := repo.GetByIDs(ctx, ids)
		if err != nil {
			results := make([]*dataloader.Result, len(keys))
			for i := range results {
				results[i] = &dataloader.Result{Error: err}
			}
			return results
		}

		recordMap := make(map[uuid.UUID]domain.Record)
		for _, rec := range records {
			recordMap[rec.ID] = rec
		}

		// Results must line up with the incoming keys; missing records
		// resolve to nil rather than erroring the whole batch.
		results := make([]*dataloader.Result, len(keys))
		for i, id := range ids {
			if rec, ok := recordMap[id]; ok {
				results[i] = &dataloader.Result{Data: rec}
			} else {
				results[i] = &dataloader.Result{Data: nil}
			}
		}

		return results
	}

	loader := dataloader.NewBatchedLoader(batchFn, dataloader.WithWait(5*time.Millisecond))

	return &RecordLoader{Loader: loader}
}

// Load resolves one record through the batch, returning false when the id is
// unknown.
func (l *RecordLoader) Load(ctx context.Context, id uuid.UUID) (domain.Record, bool, error) {
	thunk := l.Loader.Load(ctx, dataloader.StringKey(id.String()))
	data, err := thunk()
	if err != nil {
		return domain.Record{}, false, err
	}
	record, ok := data.(domain.Record)
	return record, ok, nil
}

// LoadMany resolves a set of ids in one batch, keyed by id string. Unknown
// ids and per-key errors are dropped.
func (l *RecordLoader) LoadMany(ctx context.Context, ids []uuid.UUID) map[string]domain.Record {
	if len(ids) == 0 {
		return nil
	}

	keys := make(dataloader.Keys, len(ids))
	for i, id := range ids {
		keys[i] = dataloader.StringKey(id.String())
	}

	data, errs := l.Loader.LoadMany(ctx, keys)()

	out := make(map[string]domain.Record)
	for i, item := range data {
		if i < len(errs) && errs[i] != nil {
			continue
		}
		if record, ok := item.(domain.Record); ok {
			out[record.ID.String()] = record
		}
	}
	return out
}
