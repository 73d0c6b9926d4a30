package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/stelform/adminkit/internal/batch"
	"github.com/stelform/adminkit/internal/domain"
	"github.com/stelform/adminkit/internal/query"
)

// TenantRepository defines the interface for tenant operations
type TenantRepository interface {
	Create(ctx context.Context, tenant domain.Tenant) (domain.Tenant, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Tenant, error)
	GetByName(ctx context.Context, name string) (domain.Tenant, error)
	List(ctx context.Context) ([]domain.Tenant, error)
	Update(ctx context.Context, tenant domain.Tenant) (domain.Tenant, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// RecordRepository defines the read side of the record store plus the
// transactional engine the batch executor runs on.
type RecordRepository interface {
	// List executes a compiled query descriptor and returns the window's
	// records together with the unwindowed total count.
	List(ctx context.Context, tenantID uuid.UUID, q domain.QueryDescriptor) ([]domain.Record, int64, error)

	// Count executes one count under the given filter; the quick-filter
	// counter drives this concurrently.
	Count(ctx context.Context, tenantID uuid.UUID, entityType string, filter domain.Condition) (int64, error)

	// GetByIDs retrieves records in bulk for the dataloader-backed
	// hydration of include graphs.
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Record, error)

	// ListOptions executes a resolved option fetch for a query-backed
	// select field.
	ListOptions(ctx context.Context, tenantID uuid.UUID, fetch query.OptionFetch) ([]domain.Option, error)

	// InTx opens the exclusive transaction scope batches execute in.
	batch.Engine
}
