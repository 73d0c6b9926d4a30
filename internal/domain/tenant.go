package domain

import (
	"time"

	"github.com/google/uuid"
)

// Tenant represents one customer whose administrative app runs on the
// shared engine. Every record, query and batch is scoped to a tenant.
type Tenant struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewTenant creates a new tenant with immutable pattern
func NewTenant(name, description string) Tenant {
	now := time.Now()
	return Tenant{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// WithDescription returns a new tenant with updated description
func (t Tenant) WithDescription(description string) Tenant {
	out := t
	out.Description = description
	out.UpdatedAt = time.Now()
	return out
}

// WithName returns a new tenant with updated name
func (t Tenant) WithName(name string) Tenant {
	out := t
	out.Name = name
	out.UpdatedAt = time.Now()
	return out
}
