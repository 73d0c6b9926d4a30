package repository

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/stelform/adminkit/internal/domain"
)

type sqlBuilder struct {
	args []any
}

func newSQLBuilder() *sqlBuilder {
	return &sqlBuilder{args: make([]any, 0)}
}

func (b *sqlBuilder) addArg(value any) int {
	b.args = append(b.args, value)
	return len(b.args)
}

func (b *sqlBuilder) placeholder(idx int) string {
	return fmt.Sprintf("$%d", idx)
}

// compileCondition renders a predicate tree as a SQL expression over the
// records table. Property leaves address the JSONB document; the reference
// column is addressed directly so compound-key lookups hit its index.
func compileCondition(alias string, c domain.Condition, b *sqlBuilder) (string, error) {
	if c.IsZero() {
		return "", nil
	}

	if len(c.And) > 0 {
		return compileBranch(alias, c.And, " AND ", b)
	}
	if len(c.Or) > 0 {
		return compileBranch(alias, c.Or, " OR ", b)
	}

	return compileLeaf(alias, c, b)
}

func compileBranch(alias string, children []domain.Condition, sep string, b *sqlBuilder) (string, error) {
	parts := make([]string, 0, len(children))
	for _, child := range children {
		part, err := compileCondition(alias, child, b)
		if err != nil {
			return "", err
		}
		if part == "" {
			continue
		}
		parts = append(parts, part)
	}
	if len(parts) == 0 {
		return "", nil
	}
	if len(parts) == 1 {
		return parts[0], nil
	}
	return "(" + strings.Join(parts, sep) + ")", nil
}

func compileLeaf(alias string, c domain.Condition, b *sqlBuilder) (string, error) {
	if c.Field == "" {
		return "", fmt.Errorf("filter leaf is missing a field")
	}

	expr := propertyExpr(alias, c.Field, b)

	switch c.Op {
	case domain.OpEq:
		idx := b.addArg(stringValue(c.Value))
		return fmt.Sprintf("%s = %s", expr, b.placeholder(idx)), nil

	case domain.OpNeq:
		idx := b.addArg(stringValue(c.Value))
		return fmt.Sprintf("%s <> %s", expr, b.placeholder(idx)), nil

	case domain.OpContains:
		idx := b.addArg(stringValue(c.Value))
		return fmt.Sprintf("%s ILIKE '%%' || %s || '%%'", expr, b.placeholder(idx)), nil

	case domain.OpGte:
		return compileBound(expr, ">=", c.Value, b)

	case domain.OpLte:
		return compileBound(expr, "<=", c.Value, b)

	case domain.OpIn:
		values := c.Values
		if len(values) == 0 && c.Value != nil {
			values = []any{c.Value}
		}
		if len(values) == 0 {
			return "FALSE", nil
		}
		members := make([]string, len(values))
		for i, v := range values {
			members[i] = stringValue(v)
		}
		idx := b.addArg(members)
		return fmt.Sprintf("%s = ANY(%s)", expr, b.placeholder(idx)), nil

	case domain.OpExists:
		if c.Field == referenceField {
			return fmt.Sprintf("%s.reference <> ''", alias), nil
		}
		idx := b.addArg(c.Field)
		return fmt.Sprintf("%s.properties ? %s", alias, b.placeholder(idx)), nil

	default:
		return "", fmt.Errorf("unknown filter op %q", c.Op)
	}
}

// compileBound casts to numeric when the bound looks like a number, so
// range filters on number/price fields order numerically while date and
// month strings keep text ordering.
func compileBound(expr, operator string, value any, b *sqlBuilder) (string, error) {
	raw := stringValue(value)
	if _, err := strconv.ParseFloat(raw, 64); err == nil {
		idx := b.addArg(raw)
		return fmt.Sprintf("(%s)::numeric %s %s::numeric", expr, operator, b.placeholder(idx)), nil
	}
	idx := b.addArg(raw)
	return fmt.Sprintf("%s %s %s", expr, operator, b.placeholder(idx)), nil
}

const referenceField = "reference"

func propertyExpr(alias, field string, b *sqlBuilder) string {
	if field == referenceField {
		return alias + ".reference"
	}
	idx := b.addArg(field)
	return fmt.Sprintf("%s.properties ->> %s", alias, b.placeholder(idx))
}

// compileOrder renders the descriptor's order terms, falling back to the
// stable engine default when none are present.
func compileOrder(alias string, terms []domain.OrderTerm, b *sqlBuilder) string {
	if len(terms) == 0 {
		return "ORDER BY " + alias + ".created_at DESC"
	}

	orderings := make([]string, 0, len(terms))
	for _, term := range terms {
		if term.FieldID == "" {
			continue
		}
		direction := "ASC"
		if term.Direction == domain.SortDirectionDesc {
			direction = "DESC"
		}
		nulls := "NULLS LAST"
		if term.Nulls == domain.NullsFirst {
			nulls = "NULLS FIRST"
		}
		orderings = append(orderings, fmt.Sprintf("%s %s %s", propertyExpr(alias, term.FieldID, b), direction, nulls))
	}
	if len(orderings) == 0 {
		return "ORDER BY " + alias + ".created_at DESC"
	}
	return "ORDER BY " + strings.Join(orderings, ", ")
}

func stringValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", value)
	}
}
