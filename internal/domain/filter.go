package domain

// CompareOp enumerates the predicate shapes the engine can compile. The set
// is deliberately closed: declarative specs carry data, never callbacks.
type CompareOp string

const (
	OpEq       CompareOp = "eq"
	OpNeq      CompareOp = "neq"
	OpContains CompareOp = "contains" // case-insensitive substring
	OpGte      CompareOp = "gte"
	OpLte      CompareOp = "lte"
	OpIn       CompareOp = "in"
	OpExists   CompareOp = "exists"
)

// Condition is a predicate tree over record properties. A zero Condition
// matches everything. When And or Or is non-empty the node is a branch and
// the leaf fields are ignored.
type Condition struct {
	And    []Condition `json:"and,omitempty"`
	Or     []Condition `json:"or,omitempty"`
	Field  string      `json:"field,omitempty"`
	Op     CompareOp   `json:"op,omitempty"`
	Value  any         `json:"value,omitempty"`
	Values []any       `json:"values,omitempty"`
}

// IsZero reports whether the condition matches everything.
func (c Condition) IsZero() bool {
	return len(c.And) == 0 && len(c.Or) == 0 && c.Field == "" && c.Op == ""
}

// Eq builds an equality leaf.
func Eq(field string, value any) Condition {
	return Condition{Field: field, Op: OpEq, Value: value}
}

// Contains builds a case-insensitive substring leaf.
func Contains(field string, value string) Condition {
	return Condition{Field: field, Op: OpContains, Value: value}
}

// Gte builds a lower-bound leaf.
func Gte(field string, value any) Condition {
	return Condition{Field: field, Op: OpGte, Value: value}
}

// Lte builds an upper-bound leaf.
func Lte(field string, value any) Condition {
	return Condition{Field: field, Op: OpLte, Value: value}
}

// In builds a membership leaf.
func In(field string, values ...any) Condition {
	return Condition{Field: field, Op: OpIn, Values: values}
}

// Exists builds a presence leaf.
func Exists(field string) Condition {
	return Condition{Field: field, Op: OpExists}
}

// AllOf conjoins conditions, dropping zero members. A single surviving
// member is returned unwrapped so that compiling the same logical predicate
// always yields the same tree shape.
func AllOf(conds ...Condition) Condition {
	kept := make([]Condition, 0, len(conds))
	for _, c := range conds {
		if c.IsZero() {
			continue
		}
		kept = append(kept, c)
	}
	switch len(kept) {
	case 0:
		return Condition{}
	case 1:
		return kept[0]
	default:
		return Condition{And: kept}
	}
}

// AnyOf disjoins conditions, dropping zero members, with the same
// shape-normalisation as AllOf.
func AnyOf(conds ...Condition) Condition {
	kept := make([]Condition, 0, len(conds))
	for _, c := range conds {
		if c.IsZero() {
			continue
		}
		kept = append(kept, c)
	}
	switch len(kept) {
	case 0:
		return Condition{}
	case 1:
		return kept[0]
	default:
		return Condition{Or: kept}
	}
}

// SortDirection represents ordering direction for sortable fields.
type SortDirection string

const (
	SortDirectionAsc  SortDirection = "asc"
	SortDirectionDesc SortDirection = "desc"
)

// NullsPosition controls where null property values sort.
type NullsPosition string

const (
	NullsLast  NullsPosition = "last"
	NullsFirst NullsPosition = "first"
)

// OrderTerm is one ordering criterion of a compiled query.
type OrderTerm struct {
	FieldID   string        `json:"field_id"`
	Direction SortDirection `json:"direction"`
	Nulls     NullsPosition `json:"nulls"`
}

// Window is the pagination window of a compiled query.
type Window struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// IncludePath names one related entity shape to eager-load together with
// the attributes requested from it. Attributes are kept sorted so that
// compilation stays deterministic.
type IncludePath struct {
	Relation   string   `json:"relation"`
	Attributes []string `json:"attributes"`
}

// QueryDescriptor is the persistence-engine-neutral output of the query
// compiler. Compiling the same pipeline and params twice yields a
// structurally identical descriptor.
type QueryDescriptor struct {
	EntityType string        `json:"entity_type"`
	Filter     Condition     `json:"filter"`
	Order      []OrderTerm   `json:"order,omitempty"`
	Window     Window        `json:"window"`
	Include    []IncludePath `json:"include,omitempty"`
}
