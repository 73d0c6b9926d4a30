package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/stelform/adminkit/internal/db"
	"github.com/stelform/adminkit/internal/domain"
)

const tenantColumns = "id, name, description, created_at, updated_at"

// tenantRepository implements TenantRepository interface
type tenantRepository struct {
	conn *db.Connection
}

// NewTenantRepository creates a new tenant repository
func NewTenantRepository(conn *db.Connection) TenantRepository {
	return &tenantRepository{conn: conn}
}

// Create creates a new tenant
func (r *tenantRepository) Create(ctx context.Context, tenant domain.Tenant) (domain.Tenant, error) {
	sql := fmt.Sprintf(`
		INSERT INTO tenants (id, name, description, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING %s`, tenantColumns)

	row := r.conn.Pool.QueryRow(ctx, sql, tenant.ID, tenant.Name, tenant.Description)
	out, err := scanTenant(row)
	if err != nil {
		return domain.Tenant{}, fmt.Errorf("failed to create tenant: %w", err)
	}
	return out, nil
}

// GetByID retrieves a tenant by ID
func (r *tenantRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Tenant, error) {
	sql := fmt.Sprintf("SELECT %s FROM tenants WHERE id = $1", tenantColumns)

	out, err := scanTenant(r.conn.Pool.QueryRow(ctx, sql, id))
	if err != nil {
		return domain.Tenant{}, fmt.Errorf("failed to get tenant: %w", err)
	}
	return out, nil
}

// GetByName retrieves a tenant by name
func (r *tenantRepository) GetByName(ctx context.Context, name string) (domain.Tenant, error) {
	sql := fmt.Sprintf("SELECT %s FROM tenants WHERE name = $1", tenantColumns)

	out, err := scanTenant(r.conn.Pool.QueryRow(ctx, sql, name))
	if err != nil {
		return domain.Tenant{}, fmt.Errorf("failed to get tenant by name: %w", err)
	}
	return out, nil
}

// List retrieves all tenants
func (r *tenantRepository) List(ctx context.Context) ([]domain.Tenant, error) {
	sql := fmt.Sprintf("SELECT %s FROM tenants ORDER BY name", tenantColumns)

	rows, err := r.conn.Pool.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}
	defer rows.Close()

	var tenants []domain.Tenant
	for rows.Next() {
		tenant, err := scanTenant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tenant: %w", err)
		}
		tenants = append(tenants, tenant)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read tenants: %w", err)
	}

	return tenants, nil
}

// Update updates a tenant
func (r *tenantRepository) Update(ctx context.Context, tenant domain.Tenant) (domain.Tenant, error) {
	sql := fmt.Sprintf(`
		UPDATE tenants
		SET name = $2, description = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING %s`, tenantColumns)

	out, err := scanTenant(r.conn.Pool.QueryRow(ctx, sql, tenant.ID, tenant.Name, tenant.Description))
	if err != nil {
		return domain.Tenant{}, fmt.Errorf("failed to update tenant: %w", err)
	}
	return out, nil
}

// Delete deletes a tenant
func (r *tenantRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.conn.Pool.Exec(ctx, "DELETE FROM tenants WHERE id = $1", id); err != nil {
		return fmt.Errorf("failed to delete tenant: %w", err)
	}
	return nil
}

func scanTenant(row rowScanner) (domain.Tenant, error) {
	var tenant domain.Tenant
	err := row.Scan(&tenant.ID, &tenant.Name, &tenant.Description, &tenant.CreatedAt, &tenant.UpdatedAt)
	return tenant, err
}
