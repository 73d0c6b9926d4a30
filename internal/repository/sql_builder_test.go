package repository

import (
	"strings"
	"testing"

	"github.com/stelform/adminkit/internal/domain"
)

func TestCompileConditionZeroMatchesEverything(t *testing.T) {
	b := newSQLBuilder()
	clause, err := compileCondition("r", domain.Condition{}, b)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if clause != "" {
		t.Fatalf("expected empty clause, got %q", clause)
	}
	if len(b.args) != 0 {
		t.Fatalf("expected no args, got %v", b.args)
	}
}

func TestCompileConditionLeafShapes(t *testing.T) {
	cases := []struct {
		name string
		cond domain.Condition
		want string
		args []any
	}{
		{
			name: "eq",
			cond: domain.Eq("status", "draft"),
			want: "r.properties ->> $1 = $2",
			args: []any{"status", "draft"},
		},
		{
			name: "contains",
			cond: domain.Contains("name", "tok"),
			want: "r.properties ->> $1 ILIKE '%' || $2 || '%'",
			args: []any{"name", "tok"},
		},
		{
			name: "numeric bound",
			cond: domain.Gte("price", "100"),
			want: "(r.properties ->> $1)::numeric >= $2::numeric",
			args: []any{"price", "100"},
		},
		{
			name: "text bound",
			cond: domain.Lte("dispatch_date", "2026-08-31"),
			want: "r.properties ->> $1 <= $2",
			args: []any{"dispatch_date", "2026-08-31"},
		},
		{
			name: "in",
			cond: domain.In("status", "draft", "assigned"),
			want: "r.properties ->> $1 = ANY($2)",
			args: []any{"status", []string{"draft", "assigned"}},
		},
		{
			name: "exists",
			cond: domain.Exists("price"),
			want: "r.properties ? $1",
			args: []any{"price"},
		},
		{
			name: "reference column",
			cond: domain.Eq("reference", "ORD-1"),
			want: "r.reference = $1",
			args: []any{"ORD-1"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := newSQLBuilder()
			clause, err := compileCondition("r", tc.cond, b)
			if err != nil {
				t.Fatalf("compile: %v", err)
			}
			if clause != tc.want {
				t.Fatalf("clause mismatch:\n got %q\nwant %q", clause, tc.want)
			}
			if len(b.args) != len(tc.args) {
				t.Fatalf("arg count mismatch: got %v, want %v", b.args, tc.args)
			}
		})
	}
}

func TestCompileConditionEmptyInMatchesNothing(t *testing.T) {
	b := newSQLBuilder()
	clause, err := compileCondition("r", domain.Condition{Field: "status", Op: domain.OpIn}, b)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if clause != "FALSE" {
		t.Fatalf("expected FALSE, got %q", clause)
	}
}

func TestCompileConditionBranches(t *testing.T) {
	b := newSQLBuilder()
	cond := domain.AllOf(
		domain.Eq("region", "east"),
		domain.AnyOf(
			domain.Eq("status", "draft"),
			domain.Eq("status", "assigned"),
		),
	)

	clause, err := compileCondition("r", cond, b)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	if !strings.Contains(clause, " AND ") || !strings.Contains(clause, " OR ") {
		t.Fatalf("expected nested AND/OR clause, got %q", clause)
	}
	if !strings.HasPrefix(clause, "(") {
		t.Fatalf("branch clause should be parenthesised, got %q", clause)
	}
	if len(b.args) != 6 {
		t.Fatalf("expected 6 args, got %d", len(b.args))
	}
}

func TestCompileConditionRejectsUnknownOp(t *testing.T) {
	b := newSQLBuilder()
	if _, err := compileCondition("r", domain.Condition{Field: "x", Op: domain.CompareOp("like")}, b); err == nil {
		t.Fatal("expected unknown op error, got nil")
	}
	if _, err := compileCondition("r", domain.Condition{Op: domain.OpEq}, b); err == nil {
		t.Fatal("expected missing field error, got nil")
	}
}

func TestCompileOrder(t *testing.T) {
	b := newSQLBuilder()
	clause := compileOrder("r", nil, b)
	if clause != "ORDER BY r.created_at DESC" {
		t.Fatalf("expected engine default order, got %q", clause)
	}

	b = newSQLBuilder()
	clause = compileOrder("r", []domain.OrderTerm{
		{FieldID: "dispatch_date", Direction: domain.SortDirectionDesc, Nulls: domain.NullsFirst},
		{FieldID: "reference", Direction: domain.SortDirectionAsc, Nulls: domain.NullsLast},
	}, b)

	want := "ORDER BY r.properties ->> $1 DESC NULLS FIRST, r.reference ASC NULLS LAST"
	if clause != want {
		t.Fatalf("order mismatch:\n got %q\nwant %q", clause, want)
	}
}
