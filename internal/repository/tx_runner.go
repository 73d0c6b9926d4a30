package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/stelform/adminkit/internal/domain"
)

// txRunner executes single batch operations against the records table inside
// a transaction owned by InTx. It never commits or rolls back itself.
type txRunner struct {
	tx pgx.Tx
}

// Create inserts a new record and returns the stored row.
func (r *txRunner) Create(ctx context.Context, tenantID uuid.UUID, op domain.Operation) (domain.Record, error) {
	propsJSON, err := marshalProperties(op.Properties)
	if err != nil {
		return domain.Record{}, fmt.Errorf("create %s: %w", op.EntityType, err)
	}

	sql := fmt.Sprintf(`
		INSERT INTO records (id, tenant_id, entity_type, reference, properties, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING %s`, recordColumns)

	row := r.tx.QueryRow(ctx, sql, uuid.New(), tenantID, op.EntityType, op.Reference, propsJSON)
	record, err := scanRecord(row)
	if err != nil {
		return domain.Record{}, fmt.Errorf("create %s: %w", op.EntityType, err)
	}
	return record, nil
}

// Update merges the operation's properties into an existing record. A
// missing record is a failure, not a silent no-op, so the batch rolls back.
func (r *txRunner) Update(ctx context.Context, tenantID uuid.UUID, op domain.Operation) (domain.Record, error) {
	propsJSON, err := marshalProperties(op.Properties)
	if err != nil {
		return domain.Record{}, fmt.Errorf("update %s: %w", op.EntityType, err)
	}

	sql := fmt.Sprintf(`
		UPDATE records
		SET properties = properties || $1::jsonb, updated_at = NOW()
		WHERE id = $2 AND tenant_id = $3 AND entity_type = $4
		RETURNING %s`, recordColumns)

	row := r.tx.QueryRow(ctx, sql, propsJSON, op.ID, tenantID, op.EntityType)
	record, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Record{}, fmt.Errorf("update %s: record %s not found", op.EntityType, op.ID)
		}
		return domain.Record{}, fmt.Errorf("update %s: %w", op.EntityType, err)
	}
	return record, nil
}

// Upsert is a single conditional write keyed by the unique reference. The
// conflict target matches the partial unique index on non-empty references,
// so concurrent upserts of the same key serialize inside the database rather
// than through a read-then-write probe.
func (r *txRunner) Upsert(ctx context.Context, tenantID uuid.UUID, op domain.Operation) (domain.Record, error) {
	createJSON, err := marshalProperties(op.CreateBody)
	if err != nil {
		return domain.Record{}, fmt.Errorf("upsert %s: %w", op.EntityType, err)
	}
	updateJSON, err := marshalProperties(op.UpdateBody)
	if err != nil {
		return domain.Record{}, fmt.Errorf("upsert %s: %w", op.EntityType, err)
	}

	sql := fmt.Sprintf(`
		INSERT INTO records (id, tenant_id, entity_type, reference, properties, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		ON CONFLICT (tenant_id, entity_type, reference) WHERE reference <> ''
		DO UPDATE SET properties = records.properties || $6::jsonb, updated_at = NOW()
		RETURNING %s`, recordColumns)

	row := r.tx.QueryRow(ctx, sql, uuid.New(), tenantID, op.EntityType, op.Reference, createJSON, updateJSON)
	record, err := scanRecord(row)
	if err != nil {
		return domain.Record{}, fmt.Errorf("upsert %s: %w", op.EntityType, err)
	}
	return record, nil
}

// Delete removes one record by id or by unique reference. Deleting a record
// that does not exist reports zero affected rows and is not an error.
func (r *txRunner) Delete(ctx context.Context, tenantID uuid.UUID, op domain.Operation) (int64, error) {
	var tag string
	var args []any
	if op.ID != uuid.Nil {
		tag = "DELETE FROM records WHERE id = $1 AND tenant_id = $2 AND entity_type = $3"
		args = []any{op.ID, tenantID, op.EntityType}
	} else {
		tag = "DELETE FROM records WHERE reference = $1 AND tenant_id = $2 AND entity_type = $3"
		args = []any{op.Reference, tenantID, op.EntityType}
	}

	result, err := r.tx.Exec(ctx, tag, args...)
	if err != nil {
		return 0, fmt.Errorf("delete %s: %w", op.EntityType, err)
	}
	return result.RowsAffected(), nil
}

// DeleteMany removes every record of one entity shape matching the
// operation's predicate.
func (r *txRunner) DeleteMany(ctx context.Context, tenantID uuid.UUID, op domain.Operation) (int64, error) {
	builder := newSQLBuilder()

	whereClauses := []string{
		fmt.Sprintf("r.tenant_id = %s", builder.placeholder(builder.addArg(tenantID))),
		fmt.Sprintf("r.entity_type = %s", builder.placeholder(builder.addArg(op.EntityType))),
	}
	filterClause, err := compileCondition("r", op.Where, builder)
	if err != nil {
		return 0, fmt.Errorf("deleteMany %s: %w", op.EntityType, err)
	}
	if filterClause != "" {
		whereClauses = append(whereClauses, filterClause)
	}

	sql := "DELETE FROM records r WHERE " + strings.Join(whereClauses, " AND ")

	result, err := r.tx.Exec(ctx, sql, builder.args...)
	if err != nil {
		return 0, fmt.Errorf("deleteMany %s: %w", op.EntityType, err)
	}
	return result.RowsAffected(), nil
}

func marshalProperties(properties map[string]any) (json.RawMessage, error) {
	if properties == nil {
		properties = map[string]any{}
	}
	data, err := json.Marshal(properties)
	if err != nil {
		return nil, fmt.Errorf("failed to encode properties: %w", err)
	}
	return data, nil
}
