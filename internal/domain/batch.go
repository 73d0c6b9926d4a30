package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// Method enumerates the logical write kinds a batch operation can carry.
type Method string

const (
	MethodCreate     Method = "create"
	MethodUpdate     Method = "update"
	MethodUpsert     Method = "upsert"
	MethodDelete     Method = "delete"
	MethodDeleteMany Method = "deleteMany"
)

// Operation is one logical write against one entity shape. Operations are
// built through the New* constructors, which fix the method and the payload
// shape; Validate rejects anything a constructor could not have produced.
type Operation struct {
	Method     Method         `json:"method"`
	EntityType string         `json:"entity_type"`
	ID         uuid.UUID      `json:"id,omitempty"`
	Reference  string         `json:"reference,omitempty"`
	Properties map[string]any `json:"properties,omitempty"`
	// Upsert carries separate bodies so the write is a single conditional
	// statement keyed by Reference, never a read-then-write probe.
	CreateBody map[string]any `json:"create_body,omitempty"`
	UpdateBody map[string]any `json:"update_body,omitempty"`
	Where      Condition      `json:"where,omitempty"`
}

// NewCreate builds a create operation. Reference may be empty for shapes
// without a natural key.
func NewCreate(entityType string, reference string, properties map[string]any) Operation {
	return Operation{
		Method:     MethodCreate,
		EntityType: entityType,
		Reference:  reference,
		Properties: properties,
	}
}

// NewUpdate builds an update of an existing record's properties.
func NewUpdate(entityType string, id uuid.UUID, properties map[string]any) Operation {
	return Operation{
		Method:     MethodUpdate,
		EntityType: entityType,
		ID:         id,
		Properties: properties,
	}
}

// NewUpsert builds a conditional write keyed by the explicit unique
// reference, with separate create and update bodies.
func NewUpsert(entityType string, reference string, createBody, updateBody map[string]any) Operation {
	return Operation{
		Method:     MethodUpsert,
		EntityType: entityType,
		Reference:  reference,
		CreateBody: createBody,
		UpdateBody: updateBody,
	}
}

// NewDelete builds a delete of one record by id.
func NewDelete(entityType string, id uuid.UUID) Operation {
	return Operation{Method: MethodDelete, EntityType: entityType, ID: id}
}

// NewDeleteByReference builds a delete of one record by its unique
// reference, used for join rows addressed by their compound key.
func NewDeleteByReference(entityType string, reference string) Operation {
	return Operation{Method: MethodDelete, EntityType: entityType, Reference: reference}
}

// NewDeleteMany builds a predicate-scoped delete within one entity shape.
func NewDeleteMany(entityType string, where Condition) Operation {
	return Operation{Method: MethodDeleteMany, EntityType: entityType, Where: where}
}

// Validate checks that the operation is one of the shapes the constructors
// produce.
func (op Operation) Validate() error {
	if op.EntityType == "" {
		return fmt.Errorf("operation %s: entity type is required", op.Method)
	}
	switch op.Method {
	case MethodCreate:
		if op.Properties == nil {
			return fmt.Errorf("create %s: properties are required", op.EntityType)
		}
	case MethodUpdate:
		if op.ID == uuid.Nil {
			return fmt.Errorf("update %s: record id is required", op.EntityType)
		}
		if op.Properties == nil {
			return fmt.Errorf("update %s: properties are required", op.EntityType)
		}
	case MethodUpsert:
		if op.Reference == "" {
			return fmt.Errorf("upsert %s: unique reference is required", op.EntityType)
		}
		if op.CreateBody == nil || op.UpdateBody == nil {
			return fmt.Errorf("upsert %s: create and update bodies are required", op.EntityType)
		}
	case MethodDelete:
		if op.ID == uuid.Nil && op.Reference == "" {
			return fmt.Errorf("delete %s: record id or reference is required", op.EntityType)
		}
	case MethodDeleteMany:
		if op.Where.IsZero() {
			return fmt.Errorf("deleteMany %s: predicate is required", op.EntityType)
		}
	default:
		return fmt.Errorf("unknown batch method %q", op.Method)
	}
	return nil
}

// Batch is an ordered list of operations submitted for atomic execution.
// Label identifies the caller's logical intent in logs and failures.
type Batch struct {
	Label string      `json:"label,omitempty"`
	Ops   []Operation `json:"ops"`
}

// OperationResult carries one operation's outcome in input order. Record is
// set for create/update/upsert; Affected for delete/deleteMany.
type OperationResult struct {
	Record   *Record `json:"record,omitempty"`
	Affected int64   `json:"affected,omitempty"`
}

// BatchFailure names the operation that aborted a batch.
type BatchFailure struct {
	Index int   `json:"index"`
	Cause error `json:"-"`
}

func (f *BatchFailure) Error() string {
	return fmt.Sprintf("batch operation %d failed: %v", f.Index, f.Cause)
}

func (f *BatchFailure) Unwrap() error {
	return f.Cause
}

// BatchResult reports the all-or-nothing outcome of a batch. Success true
// means every operation's effect is durably visible; false means none are.
type BatchResult struct {
	Success bool              `json:"success"`
	Results []OperationResult `json:"results,omitempty"`
	Failure *BatchFailure     `json:"failure,omitempty"`
}
