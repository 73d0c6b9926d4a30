package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Record represents one persisted instance of a tenant entity shape. All
// entity shapes share this representation; the attributes declared by a
// field pipeline live in the Properties map.
type Record struct {
	ID         uuid.UUID      `json:"id"`
	TenantID   uuid.UUID      `json:"tenant_id"`
	EntityType string         `json:"entity_type"`
	Reference  string         `json:"reference"` // upsert / compound unique key, empty when unkeyed
	Properties map[string]any `json:"properties"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// NewRecord creates a new record with immutable pattern
func NewRecord(tenantID uuid.UUID, entityType string, properties map[string]any) Record {
	now := time.Now()
	return Record{
		ID:         uuid.New(),
		TenantID:   tenantID,
		EntityType: entityType,
		Properties: copyProperties(properties),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// WithProperty returns a new record with an added/updated property
func (r Record) WithProperty(key string, value any) Record {
	newProperties := copyProperties(r.Properties)
	newProperties[key] = value

	out := r
	out.Properties = newProperties
	out.UpdatedAt = time.Now()
	return out
}

// WithProperties returns a new record with replaced properties
func (r Record) WithProperties(properties map[string]any) Record {
	out := r
	out.Properties = copyProperties(properties)
	out.UpdatedAt = time.Now()
	return out
}

// WithReference returns a new record with an updated unique reference
func (r Record) WithReference(reference string) Record {
	out := r
	out.Properties = copyProperties(r.Properties)
	out.Reference = reference
	out.UpdatedAt = time.Now()
	return out
}

func (r *Record) GetPropertiesAsJSONB() (json.RawMessage, error) {
	if r.Properties == nil {
		r.Properties = make(map[string]any)
	}
	return json.Marshal(r.Properties)
}

// FromJSONBProperties creates a properties map from JSONB data
func FromJSONBProperties(propertiesJSON json.RawMessage) (map[string]any, error) {
	var properties map[string]any
	err := json.Unmarshal(propertiesJSON, &properties)
	return properties, err
}

// copyProperties creates a copy of the properties map to ensure immutability
func copyProperties(properties map[string]any) map[string]any {
	newProperties := make(map[string]any, len(properties))
	for k, v := range properties {
		newProperties[k] = v
	}
	return newProperties
}
