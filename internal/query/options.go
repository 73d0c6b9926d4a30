package query

import (
	"fmt"
	"log"

	"github.com/stelform/adminkit/internal/domain"
)

// OptionResolution is the resolved option source for one select field.
// Exactly one of Options or Fetch is populated unless Empty is set, in
// which case the field offers no options at all.
type OptionResolution struct {
	Options []domain.Option
	Fetch   *OptionFetch
	Empty   bool
}

// OptionFetch describes the option query the persistence adapter should run
// for a query-backed select, with dependency values already substituted.
type OptionFetch struct {
	EntityType string
	Where      domain.Condition
	OrderBy    string
	LabelField string
}

var compilableOps = map[domain.CompareOp]struct{}{
	domain.OpEq:       {},
	domain.OpNeq:      {},
	domain.OpContains: {},
	domain.OpGte:      {},
	domain.OpLte:      {},
	domain.OpIn:       {},
	domain.OpExists:   {},
}

// OptionResolver resolves every select field's option source against the
// currently submitted form values. A field whose source cannot be resolved
// degrades to an empty option set and is logged; it never fails the
// surrounding compilation.
type OptionResolver struct {
	Codes *domain.CodeRegistry
	Logf  func(format string, args ...any)
}

// Resolve returns one resolution per select field, keyed by field id.
func (r OptionResolver) Resolve(p domain.Pipeline, submitted map[string]string) map[string]OptionResolution {
	logf := r.Logf
	if logf == nil {
		logf = log.Printf
	}

	resolutions := make(map[string]OptionResolution)
	for _, field := range p.Flatten() {
		if field.Select == nil {
			continue
		}

		resolution, err := r.resolveField(field, submitted)
		if err != nil {
			logf("[QUERY] option resolution for field %s failed: %v", field.ID, err)
			resolution = OptionResolution{Empty: true}
		}
		resolutions[field.ID] = resolution
	}
	return resolutions
}

func (r OptionResolver) resolveField(field domain.FieldDescriptor, submitted map[string]string) (OptionResolution, error) {
	src := field.Select

	// A dependent field with any unsatisfied dependency offers no options,
	// never the unconstrained set: an unscoped fetch would leak rows that
	// belong to other parents.
	for _, dep := range src.DependsOn {
		if submitted[dep] == "" {
			return OptionResolution{Empty: true}, nil
		}
	}

	switch {
	case len(src.Options) > 0:
		return OptionResolution{Options: append([]domain.Option(nil), src.Options...)}, nil

	case src.CodeTable != "":
		table, ok := r.Codes.Lookup(src.CodeTable)
		if !ok {
			return OptionResolution{}, fmt.Errorf("unknown code table %q", src.CodeTable)
		}
		return OptionResolution{Options: table.Options()}, nil

	case src.Query != nil:
		where, err := substituteWhere(field, src.Query.Where, submitted)
		if err != nil {
			return OptionResolution{}, err
		}
		return OptionResolution{Fetch: &OptionFetch{
			EntityType: src.Query.EntityType,
			Where:      where,
			OrderBy:    src.Query.OrderBy,
			LabelField: src.Query.LabelField,
		}}, nil

	default:
		return OptionResolution{}, fmt.Errorf("select source declares no options, query or code table")
	}
}

// substituteWhere fills FromField terms with the dependency fields' current
// submitted values. Templates may only draw values from declared
// dependencies; anything else is a resolution error.
func substituteWhere(field domain.FieldDescriptor, templates []domain.WhereTemplate, submitted map[string]string) (domain.Condition, error) {
	declared := make(map[string]struct{}, len(field.Select.DependsOn))
	for _, dep := range field.Select.DependsOn {
		declared[dep] = struct{}{}
	}

	terms := make([]domain.Condition, 0, len(templates))
	for _, tpl := range templates {
		if tpl.Field == "" {
			return domain.Condition{}, fmt.Errorf("where template is missing a field")
		}
		if _, ok := compilableOps[tpl.Op]; !ok {
			return domain.Condition{}, fmt.Errorf("where template on %s uses unknown op %q", tpl.Field, tpl.Op)
		}

		value := tpl.Value
		if tpl.FromField != "" {
			if _, ok := declared[tpl.FromField]; !ok {
				return domain.Condition{}, fmt.Errorf("where template draws from %q which is not a declared dependency", tpl.FromField)
			}
			value = submitted[tpl.FromField]
		}

		terms = append(terms, domain.Condition{Field: tpl.Field, Op: tpl.Op, Value: value})
	}
	return domain.AllOf(terms...), nil
}
