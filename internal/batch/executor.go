package batch

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/stelform/adminkit/internal/domain"
)

// Runner executes single operations inside an already-open transaction
// scope. Implementations must not commit or roll back themselves; the
// engine owns the scope.
type Runner interface {
	Create(ctx context.Context, tenantID uuid.UUID, op domain.Operation) (domain.Record, error)
	Update(ctx context.Context, tenantID uuid.UUID, op domain.Operation) (domain.Record, error)
	Upsert(ctx context.Context, tenantID uuid.UUID, op domain.Operation) (domain.Record, error)
	Delete(ctx context.Context, tenantID uuid.UUID, op domain.Operation) (int64, error)
	DeleteMany(ctx context.Context, tenantID uuid.UUID, op domain.Operation) (int64, error)
}

// Engine opens one exclusive transaction scope, runs fn inside it, and
// commits when fn returns nil or rolls everything back when it returns an
// error or the context is cancelled.
type Engine interface {
	InTx(ctx context.Context, fn func(Runner) error) error
}

// Executor applies an ordered list of heterogeneous operations as a single
// atomic unit. Per batch the lifecycle is Assembled, Executing, then
// Committed or RolledBack; callers never observe a partial commit.
//
// The executor does not infer data dependencies between operations, does
// not deduplicate, and does not retry. Two upserts hitting the same unique
// key in one batch execute in list order and the later write wins. Retrying
// a failed batch is the caller's job and is only safe when every operation
// is itself repeatable.
type Executor struct {
	engine Engine
}

// NewExecutor constructs a batch executor over the given engine.
func NewExecutor(engine Engine) *Executor {
	return &Executor{engine: engine}
}

// Execute runs the batch. Validation failures and operation failures are
// reported as a structured result naming the failing operation's index and
// cause, never as a panic; on any failure no effect of the batch remains
// visible.
func (e *Executor) Execute(ctx context.Context, tenantID uuid.UUID, b domain.Batch) domain.BatchResult {
	for i, op := range b.Ops {
		if err := op.Validate(); err != nil {
			return failure(i, err)
		}
	}

	// Degenerate batches succeed without acquiring a connection or opening
	// a transaction.
	if len(b.Ops) == 0 {
		return domain.BatchResult{Success: true, Results: []domain.OperationResult{}}
	}

	results := make([]domain.OperationResult, 0, len(b.Ops))
	var failed *domain.BatchFailure

	err := e.engine.InTx(ctx, func(runner Runner) error {
		for i, op := range b.Ops {
			result, err := applyOperation(ctx, runner, tenantID, op)
			if err != nil {
				failed = &domain.BatchFailure{Index: i, Cause: err}
				return failed
			}
			results = append(results, result)
		}
		return nil
	})

	if err != nil {
		if failed == nil {
			// Transaction-scope failure outside any single operation
			// (connection loss, commit error, cancellation).
			failed = &domain.BatchFailure{Index: 0, Cause: err}
		}
		if b.Label != "" {
			log.Printf("[BATCH] %s rolled back: %v", b.Label, failed)
		} else {
			log.Printf("[BATCH] rolled back: %v", failed)
		}
		return domain.BatchResult{Success: false, Failure: failed}
	}

	return domain.BatchResult{Success: true, Results: results}
}

func applyOperation(ctx context.Context, runner Runner, tenantID uuid.UUID, op domain.Operation) (domain.OperationResult, error) {
	switch op.Method {
	case domain.MethodCreate:
		record, err := runner.Create(ctx, tenantID, op)
		if err != nil {
			return domain.OperationResult{}, err
		}
		return domain.OperationResult{Record: &record}, nil

	case domain.MethodUpdate:
		record, err := runner.Update(ctx, tenantID, op)
		if err != nil {
			return domain.OperationResult{}, err
		}
		return domain.OperationResult{Record: &record}, nil

	case domain.MethodUpsert:
		record, err := runner.Upsert(ctx, tenantID, op)
		if err != nil {
			return domain.OperationResult{}, err
		}
		return domain.OperationResult{Record: &record}, nil

	case domain.MethodDelete:
		affected, err := runner.Delete(ctx, tenantID, op)
		if err != nil {
			return domain.OperationResult{}, err
		}
		return domain.OperationResult{Affected: affected}, nil

	case domain.MethodDeleteMany:
		affected, err := runner.DeleteMany(ctx, tenantID, op)
		if err != nil {
			return domain.OperationResult{}, err
		}
		return domain.OperationResult{Affected: affected}, nil

	default:
		return domain.OperationResult{}, fmt.Errorf("unknown batch method %q", op.Method)
	}
}

func failure(index int, cause error) domain.BatchResult {
	return domain.BatchResult{
		Success: false,
		Failure: &domain.BatchFailure{Index: index, Cause: cause},
	}
}
