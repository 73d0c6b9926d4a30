package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stelform/adminkit/internal/domain"
)

func testPipeline(t *testing.T) domain.Pipeline {
	t.Helper()

	p, err := domain.NewPipeline("order", [][]domain.FieldDescriptor{
		{
			{ID: "reference", Type: domain.FieldTypeText, Search: true},
			{ID: "status", Type: domain.FieldTypeSelect, Search: true, Select: &domain.SelectSource{
				Options: []domain.Option{{Value: "draft", Label: "Draft"}},
			}},
		},
		{
			{ID: "price", Type: domain.FieldTypePrice, Search: true},
			{ID: "dispatch_date", Type: domain.FieldTypeDate, Search: true},
			{ID: "note", Type: domain.FieldTypeTextArea, Search: true},
		},
		{
			{ID: "route", Type: domain.FieldTypeSelect, Search: true, Select: &domain.SelectSource{
				Query: &domain.OptionQuery{
					EntityType: "route",
					LabelField: "name",
					Include:    []string{"Route.name", "Route.code"},
				},
			}},
			{ID: "vehicle", Type: domain.FieldTypeSelect, Select: &domain.SelectSource{
				DependsOn: []string{"route"},
				Query: &domain.OptionQuery{
					EntityType: "vehicle",
					Include:    []string{"Route.name"},
				},
			}},
		},
	})
	require.NoError(t, err)
	return p
}

func baseParams() domain.RequestParams {
	return domain.RequestParams{Page: 1, PageSize: 20}
}

func TestCompileRejectsInvalidPagination(t *testing.T) {
	c := Compiler{}
	p := testPipeline(t)

	_, err := c.Compile(p, domain.RequestParams{Page: 0, PageSize: 20}, domain.Condition{})
	require.Error(t, err)

	_, err = c.Compile(p, domain.RequestParams{Page: 1, PageSize: 0}, domain.Condition{})
	require.Error(t, err)
}

func TestCompileWindowMath(t *testing.T) {
	c := Compiler{}
	p := testPipeline(t)

	q, err := c.Compile(p, domain.RequestParams{Page: 3, PageSize: 25}, domain.Condition{})
	require.NoError(t, err)

	assert.Equal(t, 25, q.Window.Limit)
	assert.Equal(t, 50, q.Window.Offset)
}

func TestCompileClauseShapesPerType(t *testing.T) {
	c := Compiler{}
	p := testPipeline(t)

	params := baseParams()
	params.Filters = map[string]domain.FilterValue{
		"status":        {Value: "draft"},
		"dispatch_date": {From: "2026-08-01", To: "2026-08-31"},
		"reference":     {Value: "ORD"},
	}

	q, err := c.Compile(p, params, domain.Condition{})
	require.NoError(t, err)

	// Three clauses AND-merged in row-major field order.
	require.Len(t, q.Filter.And, 3)

	ref := q.Filter.And[0]
	assert.Equal(t, domain.OpContains, ref.Op)
	assert.Equal(t, "reference", ref.Field)

	status := q.Filter.And[1]
	assert.Equal(t, domain.OpEq, status.Op)
	assert.Equal(t, "draft", status.Value)

	date := q.Filter.And[2]
	require.Len(t, date.And, 2)
	assert.Equal(t, domain.OpGte, date.And[0].Op)
	assert.Equal(t, domain.OpLte, date.And[1].Op)
}

func TestCompileExactValueOnRangeField(t *testing.T) {
	c := Compiler{}
	p := testPipeline(t)

	params := baseParams()
	params.Filters = map[string]domain.FilterValue{"price": {Value: "1500"}}

	q, err := c.Compile(p, params, domain.Condition{})
	require.NoError(t, err)
	assert.Equal(t, domain.OpEq, q.Filter.Op)
	assert.Equal(t, "price", q.Filter.Field)
}

func TestCompileIgnoresUnsubmittedAndUnsearchableFields(t *testing.T) {
	c := Compiler{}
	p := testPipeline(t)

	params := baseParams()
	params.Filters = map[string]domain.FilterValue{
		"vehicle": {Value: "v1"}, // not marked searchable
		"status":  {},            // zero value
	}

	q, err := c.Compile(p, params, domain.Condition{})
	require.NoError(t, err)
	assert.True(t, q.Filter.IsZero())
}

func TestCompileFreeTextSearch(t *testing.T) {
	c := Compiler{}
	p := testPipeline(t)

	params := baseParams()
	params.Search = "tokyo"

	q, err := c.Compile(p, params, domain.Condition{})
	require.NoError(t, err)

	// Substring match over the searchable text-like fields only.
	require.Len(t, q.Filter.Or, 2)
	assert.Equal(t, "reference", q.Filter.Or[0].Field)
	assert.Equal(t, "note", q.Filter.Or[1].Field)
	for _, clause := range q.Filter.Or {
		assert.Equal(t, domain.OpContains, clause.Op)
		assert.Equal(t, "tokyo", clause.Value)
	}
}

func TestCompileQuickFilter(t *testing.T) {
	c := Compiler{QuickFilters: map[string]domain.Condition{
		"open": domain.In("status", "draft", "assigned"),
	}}
	p := testPipeline(t)

	params := baseParams()
	params.QuickFilter = "open"

	base := domain.Eq("region", "east")
	q, err := c.Compile(p, params, base)
	require.NoError(t, err)

	require.Len(t, q.Filter.And, 2)
	assert.Equal(t, base, q.Filter.And[0])
	assert.Equal(t, domain.OpIn, q.Filter.And[1].Op)

	params.QuickFilter = "nonexistent"
	_, err = c.Compile(p, params, base)
	require.Error(t, err)
}

func TestCompileOrderResolution(t *testing.T) {
	c := Compiler{}
	p := testPipeline(t).WithDefaultOrder(domain.OrderTerm{
		FieldID:   "dispatch_date",
		Direction: domain.SortDirectionDesc,
	})

	// Explicit sort wins over the default and gets engine-default nulls.
	params := baseParams()
	params.Sort = &domain.SortRequest{FieldID: "price", Direction: domain.SortDirectionAsc}
	q, err := c.Compile(p, params, domain.Condition{})
	require.NoError(t, err)
	require.Len(t, q.Order, 1)
	assert.Equal(t, "price", q.Order[0].FieldID)
	assert.Equal(t, domain.NullsLast, q.Order[0].Nulls)

	// Unknown sort columns are rejected.
	params.Sort = &domain.SortRequest{FieldID: "ghost"}
	_, err = c.Compile(p, params, domain.Condition{})
	require.Error(t, err)

	// No explicit sort falls back to the pipeline default, descending gets
	// nulls first.
	q, err = c.Compile(p, baseParams(), domain.Condition{})
	require.NoError(t, err)
	require.Len(t, q.Order, 1)
	assert.Equal(t, "dispatch_date", q.Order[0].FieldID)
	assert.Equal(t, domain.NullsFirst, q.Order[0].Nulls)
}

func TestCompileIncludeGraphDeduplicated(t *testing.T) {
	c := Compiler{}
	p := testPipeline(t)

	q, err := c.Compile(p, baseParams(), domain.Condition{})
	require.NoError(t, err)

	// Route is requested by two fields but appears once, attributes merged
	// and sorted.
	require.Len(t, q.Include, 1)
	assert.Equal(t, "Route", q.Include[0].Relation)
	assert.Equal(t, []string{"code", "name"}, q.Include[0].Attributes)
}

func TestCompileIsDeterministic(t *testing.T) {
	c := Compiler{QuickFilters: map[string]domain.Condition{
		"open": domain.Eq("status", "draft"),
	}}
	p := testPipeline(t)

	params := baseParams()
	params.Search = "tokyo"
	params.QuickFilter = "open"
	params.Filters = map[string]domain.FilterValue{
		"status":        {Value: "draft"},
		"price":         {From: "100"},
		"dispatch_date": {To: "2026-12-31"},
	}

	first, err := c.Compile(p, params, domain.Eq("region", "east"))
	require.NoError(t, err)
	second, err := c.Compile(p, params, domain.Eq("region", "east"))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
