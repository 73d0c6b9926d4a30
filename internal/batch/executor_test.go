package batch

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stelform/adminkit/internal/domain"
)

// fakeRunner applies operations to an in-memory staging area; fakeEngine
// makes the staged writes visible only when fn returns nil, mirroring the
// commit/rollback contract.
type fakeRunner struct {
	staged  []domain.Operation
	failOn  int
	applied int
}

var errInjected = errors.New("injected failure")

func (r *fakeRunner) apply(op domain.Operation) error {
	if r.applied == r.failOn {
		return errInjected
	}
	r.staged = append(r.staged, op)
	r.applied++
	return nil
}

func (r *fakeRunner) Create(_ context.Context, tenantID uuid.UUID, op domain.Operation) (domain.Record, error) {
	if err := r.apply(op); err != nil {
		return domain.Record{}, err
	}
	return domain.NewRecord(tenantID, op.EntityType, op.Properties), nil
}

func (r *fakeRunner) Update(_ context.Context, tenantID uuid.UUID, op domain.Operation) (domain.Record, error) {
	if err := r.apply(op); err != nil {
		return domain.Record{}, err
	}
	return domain.NewRecord(tenantID, op.EntityType, op.Properties), nil
}

func (r *fakeRunner) Upsert(_ context.Context, tenantID uuid.UUID, op domain.Operation) (domain.Record, error) {
	if err := r.apply(op); err != nil {
		return domain.Record{}, err
	}
	return domain.NewRecord(tenantID, op.EntityType, op.CreateBody), nil
}

func (r *fakeRunner) Delete(_ context.Context, _ uuid.UUID, op domain.Operation) (int64, error) {
	if err := r.apply(op); err != nil {
		return 0, err
	}
	return 1, nil
}

func (r *fakeRunner) DeleteMany(_ context.Context, _ uuid.UUID, op domain.Operation) (int64, error) {
	if err := r.apply(op); err != nil {
		return 0, err
	}
	return 3, nil
}

type fakeEngine struct {
	runner    *fakeRunner
	committed []domain.Operation
	txOpened  int
}

func (e *fakeEngine) InTx(_ context.Context, fn func(Runner) error) error {
	e.txOpened++
	if err := fn(e.runner); err != nil {
		// Rollback: staged writes are discarded.
		e.runner.staged = nil
		return err
	}
	e.committed = append(e.committed, e.runner.staged...)
	return nil
}

func sampleBatch(n int) domain.Batch {
	ops := make([]domain.Operation, 0, n)
	for i := 0; i < n; i++ {
		ops = append(ops, domain.NewCreate("order", fmt.Sprintf("ORD-%d", i), map[string]any{"i": i}))
	}
	return domain.Batch{Label: "test", Ops: ops}
}

func TestExecuteCommitsAllOperations(t *testing.T) {
	engine := &fakeEngine{runner: &fakeRunner{failOn: -1}}
	executor := NewExecutor(engine)

	batch := domain.Batch{Ops: []domain.Operation{
		domain.NewCreate("order", "ORD-1", map[string]any{"status": "draft"}),
		domain.NewUpdate("order", uuid.New(), map[string]any{"status": "assigned"}),
		domain.NewUpsert("order", "ORD-2", map[string]any{"a": 1}, map[string]any{"b": 2}),
		domain.NewDelete("order", uuid.New()),
		domain.NewDeleteMany("order", domain.Eq("status", "cancelled")),
	}}

	result := executor.Execute(context.Background(), uuid.New(), batch)

	require.True(t, result.Success)
	require.Nil(t, result.Failure)
	require.Len(t, result.Results, 5)
	assert.NotNil(t, result.Results[0].Record)
	assert.NotNil(t, result.Results[2].Record)
	assert.Equal(t, int64(1), result.Results[3].Affected)
	assert.Equal(t, int64(3), result.Results[4].Affected)
	assert.Len(t, engine.committed, 5)
}

func TestExecuteRollsBackOnAnyFailure(t *testing.T) {
	for failOn := 0; failOn < 4; failOn++ {
		engine := &fakeEngine{runner: &fakeRunner{failOn: failOn}}
		executor := NewExecutor(engine)

		result := executor.Execute(context.Background(), uuid.New(), sampleBatch(4))

		require.False(t, result.Success, "failOn=%d", failOn)
		require.NotNil(t, result.Failure, "failOn=%d", failOn)
		assert.Equal(t, failOn, result.Failure.Index, "failOn=%d", failOn)
		assert.ErrorIs(t, result.Failure, errInjected)

		// Nothing before the failing operation survives.
		assert.Empty(t, engine.committed, "failOn=%d", failOn)
		assert.Empty(t, result.Results)
	}
}

func TestExecuteValidatesBeforeOpeningTransaction(t *testing.T) {
	engine := &fakeEngine{runner: &fakeRunner{failOn: -1}}
	executor := NewExecutor(engine)

	batch := domain.Batch{Ops: []domain.Operation{
		domain.NewCreate("order", "ORD-1", map[string]any{}),
		{Method: domain.MethodUpdate, EntityType: "order"}, // invalid: no id
	}}

	result := executor.Execute(context.Background(), uuid.New(), batch)

	require.False(t, result.Success)
	require.NotNil(t, result.Failure)
	assert.Equal(t, 1, result.Failure.Index)
	assert.Zero(t, engine.txOpened)
}

func TestExecuteEmptyBatchSkipsTransaction(t *testing.T) {
	engine := &fakeEngine{runner: &fakeRunner{failOn: -1}}
	executor := NewExecutor(engine)

	result := executor.Execute(context.Background(), uuid.New(), domain.Batch{})

	require.True(t, result.Success)
	assert.Empty(t, result.Results)
	assert.Zero(t, engine.txOpened)
}

func TestExecuteReportsTransactionScopeFailure(t *testing.T) {
	engine := &scopeFailEngine{}
	executor := NewExecutor(engine)

	result := executor.Execute(context.Background(), uuid.New(), sampleBatch(2))

	require.False(t, result.Success)
	require.NotNil(t, result.Failure)
	assert.ErrorIs(t, result.Failure, errCommit)
}

var errCommit = errors.New("commit failed")

type scopeFailEngine struct{}

func (e *scopeFailEngine) InTx(_ context.Context, fn func(Runner) error) error {
	if err := fn(&fakeRunner{failOn: -1}); err != nil {
		return err
	}
	return errCommit
}
