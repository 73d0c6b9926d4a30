package relation

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/stelform/adminkit/internal/batch"
	"github.com/stelform/adminkit/internal/domain"
)

// JoinSpec names the join entity shape that realises one many-to-many
// association and the two properties a join row carries.
type JoinSpec struct {
	EntityType  string
	ParentField string
	OtherField  string
}

// CompoundReference derives the join row's unique reference from its two
// sides. It doubles as the upsert/delete key, so a (parent, other) pair can
// exist at most once.
func CompoundReference(parentID, otherID uuid.UUID) string {
	return parentID.String() + ":" + otherID.String()
}

// Linker reconciles a parent record's linked set against the caller's
// desired selection by diffing the two id sets and emitting the minimal
// create/delete operations on the join shape.
type Linker struct {
	executor *batch.Executor
}

// NewLinker constructs a linker over the given batch executor.
func NewLinker(executor *batch.Executor) *Linker {
	return &Linker{executor: executor}
}

// BuildBatch computes the minimal operation list: one create per id that is
// desired but not current, one delete per id that is current but no longer
// desired, and nothing for ids present in both. Ids are deduplicated and
// the emitted order is stable.
func BuildBatch(spec JoinSpec, parentID uuid.UUID, current, desired []uuid.UUID) domain.Batch {
	currentSet := idSet(current)
	desiredSet := idSet(desired)

	var ops []domain.Operation
	for _, id := range sortedIDs(desiredSet) {
		if _, linked := currentSet[id]; linked {
			continue
		}
		ops = append(ops, domain.NewCreate(spec.EntityType, CompoundReference(parentID, id), map[string]any{
			spec.ParentField: parentID.String(),
			spec.OtherField:  id.String(),
		}))
	}
	for _, id := range sortedIDs(currentSet) {
		if _, wanted := desiredSet[id]; wanted {
			continue
		}
		ops = append(ops, domain.NewDeleteByReference(spec.EntityType, CompoundReference(parentID, id)))
	}

	return domain.Batch{
		Label: fmt.Sprintf("link %s for %s", spec.EntityType, parentID),
		Ops:   ops,
	}
}

// Reconcile builds and executes the minimal batch. When current and desired
// already agree the executor receives an empty batch and reports success
// without opening a transaction.
func (l *Linker) Reconcile(ctx context.Context, tenantID uuid.UUID, spec JoinSpec, parentID uuid.UUID, current, desired []uuid.UUID) domain.BatchResult {
	return l.executor.Execute(ctx, tenantID, BuildBatch(spec, parentID, current, desired))
}

func idSet(ids []uuid.UUID) map[uuid.UUID]struct{} {
	set := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		set[id] = struct{}{}
	}
	return set
}

func sortedIDs(set map[uuid.UUID]struct{}) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}
