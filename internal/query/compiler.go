package query

import (
	"fmt"

	"github.com/stelform/adminkit/internal/domain"
)

// Compiler turns a field pipeline plus request parameters into a
// persistence-engine-neutral query descriptor. Compilation is pure and
// synchronous: no engine call is made and the same inputs always produce a
// structurally identical descriptor.
type Compiler struct {
	// QuickFilters maps the page's named one-click predicates; the request
	// selects one by name.
	QuickFilters map[string]domain.Condition
}

// Compile resolves filters, ordering, the pagination window and the
// eager-load graph. Invalid pagination and unresolvable sort columns are
// rejected here, before anything reaches the persistence engine.
func (c Compiler) Compile(p domain.Pipeline, params domain.RequestParams, base domain.Condition) (domain.QueryDescriptor, error) {
	if params.Page < 1 {
		return domain.QueryDescriptor{}, fmt.Errorf("invalid page %d: pages are 1-based", params.Page)
	}
	if params.PageSize < 1 {
		return domain.QueryDescriptor{}, fmt.Errorf("invalid page size %d", params.PageSize)
	}

	fields := p.Flatten()

	clauses := make([]domain.Condition, 0, len(fields)+2)
	for _, field := range fields {
		if !field.Search {
			continue
		}
		value, ok := params.Filters[field.ID]
		if !ok || value.IsZero() {
			continue
		}
		clause, err := filterClause(field, value)
		if err != nil {
			return domain.QueryDescriptor{}, err
		}
		clauses = append(clauses, clause)
	}

	if params.Search != "" {
		clauses = append(clauses, freeTextClause(fields, params.Search))
	}

	if params.QuickFilter != "" {
		quick, ok := c.QuickFilters[params.QuickFilter]
		if !ok {
			return domain.QueryDescriptor{}, fmt.Errorf("unknown quick filter %q", params.QuickFilter)
		}
		clauses = append(clauses, quick)
	}

	filter := domain.AllOf(append([]domain.Condition{base}, clauses...)...)

	order, err := resolveOrder(p, params)
	if err != nil {
		return domain.QueryDescriptor{}, err
	}

	return domain.QueryDescriptor{
		EntityType: p.EntityType(),
		Filter:     filter,
		Order:      order,
		Window: domain.Window{
			Limit:  params.PageSize,
			Offset: (params.Page - 1) * params.PageSize,
		},
		Include: includeGraph(fields),
	}, nil
}

// filterClause shapes one clause from a submitted value according to the
// field's semantic type: exact match for select/boolean, range for
// date/number, case-insensitive substring for text.
func filterClause(field domain.FieldDescriptor, value domain.FilterValue) (domain.Condition, error) {
	switch field.Type {
	case domain.FieldTypeSelect, domain.FieldTypeMultiSelect, domain.FieldTypeBoolean:
		if value.Value == "" {
			return domain.Condition{}, fmt.Errorf("field %s expects an exact value", field.ID)
		}
		return domain.Eq(field.ID, value.Value), nil

	case domain.FieldTypeDate, domain.FieldTypeMonth, domain.FieldTypeNumber, domain.FieldTypePrice:
		if value.Value != "" {
			return domain.Eq(field.ID, value.Value), nil
		}
		var bounds []domain.Condition
		if value.From != "" {
			bounds = append(bounds, domain.Gte(field.ID, value.From))
		}
		if value.To != "" {
			bounds = append(bounds, domain.Lte(field.ID, value.To))
		}
		if len(bounds) == 0 {
			return domain.Condition{}, fmt.Errorf("field %s expects a value or range", field.ID)
		}
		return domain.AllOf(bounds...), nil

	default:
		if value.Value == "" {
			return domain.Condition{}, fmt.Errorf("field %s expects a search term", field.ID)
		}
		return domain.Contains(field.ID, value.Value), nil
	}
}

// freeTextClause matches the term against every searchable text-like field.
func freeTextClause(fields []domain.FieldDescriptor, term string) domain.Condition {
	var perField []domain.Condition
	for _, field := range fields {
		if !field.Search {
			continue
		}
		switch field.Type {
		case domain.FieldTypeText, domain.FieldTypeTextArea, domain.FieldTypeRichText:
			perField = append(perField, domain.Contains(field.ID, term))
		}
	}
	return domain.AnyOf(perField...)
}

func resolveOrder(p domain.Pipeline, params domain.RequestParams) ([]domain.OrderTerm, error) {
	if params.Sort != nil {
		if _, ok := p.FieldByID(params.Sort.FieldID); !ok {
			return nil, fmt.Errorf("unknown sort column %q", params.Sort.FieldID)
		}
		direction := params.Sort.Direction
		if direction != domain.SortDirectionDesc {
			direction = domain.SortDirectionAsc
		}
		return []domain.OrderTerm{{
			FieldID:   params.Sort.FieldID,
			Direction: direction,
			Nulls:     defaultNulls(direction),
		}}, nil
	}

	order := p.DefaultOrder()
	for i := range order {
		if order[i].Direction != domain.SortDirectionDesc {
			order[i].Direction = domain.SortDirectionAsc
		}
		if order[i].Nulls == "" {
			order[i].Nulls = defaultNulls(order[i].Direction)
		}
	}
	return order, nil
}

// defaultNulls matches the engine's native placement so descriptors stay
// deterministic even when callers leave the position unspecified.
func defaultNulls(direction domain.SortDirection) domain.NullsPosition {
	if direction == domain.SortDirectionDesc {
		return domain.NullsFirst
	}
	return domain.NullsLast
}
