package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/stelform/adminkit/internal/batch"
	"github.com/stelform/adminkit/internal/db"
	"github.com/stelform/adminkit/internal/domain"
	"github.com/stelform/adminkit/internal/query"
)

const recordColumns = "id, tenant_id, entity_type, reference, properties, created_at, updated_at"

// recordRepository implements RecordRepository over the shared records table
type recordRepository struct {
	conn *db.Connection
}

// NewRecordRepository creates a new record repository
func NewRecordRepository(conn *db.Connection) RecordRepository {
	return &recordRepository{conn: conn}
}

// List executes a compiled query descriptor.
func (r *recordRepository) List(ctx context.Context, tenantID uuid.UUID, q domain.QueryDescriptor) ([]domain.Record, int64, error) {
	builder := newSQLBuilder()

	whereClauses := []string{
		fmt.Sprintf("r.tenant_id = %s", builder.placeholder(builder.addArg(tenantID))),
		fmt.Sprintf("r.entity_type = %s", builder.placeholder(builder.addArg(q.EntityType))),
	}
	filterClause, err := compileCondition("r", q.Filter, builder)
	if err != nil {
		return nil, 0, fmt.Errorf("compile filter: %w", err)
	}
	if filterClause != "" {
		whereClauses = append(whereClauses, filterClause)
	}

	orderClause := compileOrder("r", q.Order, builder)

	limitIdx := builder.addArg(q.Window.Limit)
	offsetIdx := builder.addArg(q.Window.Offset)

	sql := fmt.Sprintf(
		"SELECT %s, COUNT(*) OVER () AS total_count FROM records r WHERE %s %s LIMIT %s OFFSET %s",
		prefixColumns("r", recordColumns),
		strings.Join(whereClauses, " AND "),
		orderClause,
		builder.placeholder(limitIdx),
		builder.placeholder(offsetIdx),
	)

	rows, err := r.conn.Pool.Query(ctx, sql, builder.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	var records []domain.Record
	var totalCount int64
	for rows.Next() {
		record, total, err := scanRecordWithTotal(rows)
		if err != nil {
			return nil, 0, err
		}
		totalCount = total
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read records: %w", err)
	}

	return records, totalCount, nil
}

// Count returns the number of records matching the filter.
func (r *recordRepository) Count(ctx context.Context, tenantID uuid.UUID, entityType string, filter domain.Condition) (int64, error) {
	builder := newSQLBuilder()

	whereClauses := []string{
		fmt.Sprintf("r.tenant_id = %s", builder.placeholder(builder.addArg(tenantID))),
		fmt.Sprintf("r.entity_type = %s", builder.placeholder(builder.addArg(entityType))),
	}
	filterClause, err := compileCondition("r", filter, builder)
	if err != nil {
		return 0, fmt.Errorf("compile filter: %w", err)
	}
	if filterClause != "" {
		whereClauses = append(whereClauses, filterClause)
	}

	sql := "SELECT COUNT(*) FROM records r WHERE " + strings.Join(whereClauses, " AND ")

	var count int64
	if err := r.conn.Pool.QueryRow(ctx, sql, builder.args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return count, nil
}

// GetByIDs retrieves multiple records by their IDs.
func (r *recordRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Record, error) {
	if len(ids) == 0 {
		return []domain.Record{}, nil
	}

	sql := fmt.Sprintf("SELECT %s FROM records WHERE id = ANY($1)", recordColumns)
	rows, err := r.conn.Pool.Query(ctx, sql, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get records by IDs: %w", err)
	}
	defer rows.Close()

	var records []domain.Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read records: %w", err)
	}

	return records, nil
}

// ListOptions executes a resolved option fetch and renders each matching
// record as a select option keyed by record id.
func (r *recordRepository) ListOptions(ctx context.Context, tenantID uuid.UUID, fetch query.OptionFetch) ([]domain.Option, error) {
	builder := newSQLBuilder()

	whereClauses := []string{
		fmt.Sprintf("r.tenant_id = %s", builder.placeholder(builder.addArg(tenantID))),
		fmt.Sprintf("r.entity_type = %s", builder.placeholder(builder.addArg(fetch.EntityType))),
	}
	filterClause, err := compileCondition("r", fetch.Where, builder)
	if err != nil {
		return nil, fmt.Errorf("compile option filter: %w", err)
	}
	if filterClause != "" {
		whereClauses = append(whereClauses, filterClause)
	}

	labelField := fetch.LabelField
	if labelField == "" {
		labelField = referenceField
	}
	labelExpr := propertyExpr("r", labelField, builder)

	orderClause := "ORDER BY " + labelExpr
	if fetch.OrderBy != "" {
		orderClause = "ORDER BY " + propertyExpr("r", fetch.OrderBy, builder)
	}

	sql := fmt.Sprintf(
		"SELECT r.id, COALESCE(%s, '') FROM records r WHERE %s %s",
		labelExpr,
		strings.Join(whereClauses, " AND "),
		orderClause,
	)

	rows, err := r.conn.Pool.Query(ctx, sql, builder.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list options: %w", err)
	}
	defer rows.Close()

	var options []domain.Option
	for rows.Next() {
		var id uuid.UUID
		var label string
		if err := rows.Scan(&id, &label); err != nil {
			return nil, fmt.Errorf("failed to scan option: %w", err)
		}
		options = append(options, domain.Option{Value: id.String(), Label: label})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read options: %w", err)
	}

	return options, nil
}

// InTx opens one transaction scope and hands the batch executor a runner
// bound to it.
func (r *recordRepository) InTx(ctx context.Context, fn func(batch.Runner) error) error {
	return r.conn.WithTx(ctx, func(tx pgx.Tx) error {
		return fn(&txRunner{tx: tx})
	})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (domain.Record, error) {
	var (
		id         uuid.UUID
		tenantID   uuid.UUID
		entityType string
		reference  string
		propsJSON  json.RawMessage
		createdAt  time.Time
		updatedAt  time.Time
	)
	if err := row.Scan(&id, &tenantID, &entityType, &reference, &propsJSON, &createdAt, &updatedAt); err != nil {
		return domain.Record{}, fmt.Errorf("failed to scan record: %w", err)
	}
	return buildRecord(id, tenantID, entityType, reference, propsJSON, createdAt, updatedAt)
}

func scanRecordWithTotal(row rowScanner) (domain.Record, int64, error) {
	var (
		id         uuid.UUID
		tenantID   uuid.UUID
		entityType string
		reference  string
		propsJSON  json.RawMessage
		createdAt  time.Time
		updatedAt  time.Time
		total      int64
	)
	if err := row.Scan(&id, &tenantID, &entityType, &reference, &propsJSON, &createdAt, &updatedAt, &total); err != nil {
		return domain.Record{}, 0, fmt.Errorf("failed to scan record: %w", err)
	}
	record, err := buildRecord(id, tenantID, entityType, reference, propsJSON, createdAt, updatedAt)
	return record, total, err
}

func buildRecord(
	id uuid.UUID,
	tenantID uuid.UUID,
	entityType string,
	reference string,
	propertiesJSON json.RawMessage,
	createdAt time.Time,
	updatedAt time.Time,
) (domain.Record, error) {
	properties, err := domain.FromJSONBProperties(propertiesJSON)
	if err != nil {
		return domain.Record{}, fmt.Errorf("failed to decode properties for record %s: %w", id, err)
	}

	return domain.Record{
		ID:         id,
		TenantID:   tenantID,
		EntityType: entityType,
		Reference:  reference,
		Properties: properties,
		CreatedAt:  createdAt,
		UpdatedAt:  updatedAt,
	}, nil
}

func prefixColumns(alias, columns string) string {
	parts := strings.Split(columns, ", ")
	for i, part := range parts {
		parts[i] = alias + "." + part
	}
	return strings.Join(parts, ", ")
}
