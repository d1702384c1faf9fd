package planner_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/semaflow-labs/semaflow/internal/fixtures"
	"github.com/semaflow-labs/semaflow/planner"
	"github.com/semaflow-labs/semaflow/request"
	"github.com/semaflow-labs/semaflow/validator"
)

func resolve(t *testing.T, req request.Request) *request.Resolved {
	t.Helper()
	cat, err := fixtures.SalesCatalog()
	require.NoError(t, err)
	resolved, err := validator.Validate(cat, "sales", req)
	require.NoError(t, err)
	return resolved
}

func TestBuildFlatPlanWithoutJoinedFilter(t *testing.T) {
	// S1: group by joined dim, no filters -> flat plan, c is joined.
	resolved := resolve(t, request.Request{
		Dimensions: []string{"c.country"},
		Measures:   []string{"o.order_total"},
	})
	plan, err := planner.Build(resolved)
	require.NoError(t, err)
	assert.Equal(t, planner.ShapeFlat, plan.Shape)
	assert.Equal(t, []string{"c"}, plan.JoinedAliases)
}

func TestBuildPreAggregatePlanWithJoinedFilter(t *testing.T) {
	// S2: filter on joined dim forces pre-aggregate plan.
	resolved := resolve(t, request.Request{
		Dimensions: []string{"c.country"},
		Measures:   []string{"o.order_total"},
		Filters:    []request.Filter{{Field: "c.country", Op: request.OpEq, Value: "US"}},
	})
	plan, err := planner.Build(resolved)
	require.NoError(t, err)
	assert.Equal(t, planner.ShapePreAggregate, plan.Shape)
	require.Len(t, plan.JoinedFilters, 1)
	assert.Empty(t, plan.BaseFilters)
}

func TestBuildPrunesUnreferencedJoin(t *testing.T) {
	// Nothing in the request touches "c", so it should not be joined.
	resolved := resolve(t, request.Request{
		Dimensions: []string{"o.status"},
		Measures:   []string{"o.order_total"},
	})
	plan, err := planner.Build(resolved)
	require.NoError(t, err)
	assert.Empty(t, plan.JoinedAliases)
}

func TestBuildBaseFilterStaysOnBase(t *testing.T) {
	// S5: status filter on the base table never forces pre-aggregate.
	resolved := resolve(t, request.Request{
		Dimensions: []string{"o.status"},
		Measures:   []string{"o.order_total"},
		Filters:    []request.Filter{{Field: "o.status", Op: request.OpEq, Value: "complete"}},
	})
	plan, err := planner.Build(resolved)
	require.NoError(t, err)
	assert.Equal(t, planner.ShapeFlat, plan.Shape)
	require.Len(t, plan.BaseFilters, 1)
	assert.Empty(t, plan.JoinedFilters)
}

func TestBuildDerivedMeasureExpandsAggregateLayer(t *testing.T) {
	// S4: requesting only the derived measure still aggregates both its
	// base measures.
	resolved := resolve(t, request.Request{
		Dimensions: []string{"c.country"},
		Measures:   []string{"o.avg_order_amount"},
	})
	plan, err := planner.Build(resolved)
	require.NoError(t, err)
	require.Len(t, plan.AggregateLayer, 2)
	names := map[string]bool{}
	for _, m := range plan.AggregateLayer {
		names[m.Name] = true
	}
	assert.True(t, names["order_total"])
	assert.True(t, names["order_count"])
	require.Len(t, plan.ProjectedMeasures, 1)
	assert.Equal(t, "avg_order_amount", plan.ProjectedMeasures[0].Name)
}

func TestBuildDeduplicatesSharedAggregateDependency(t *testing.T) {
	// Requesting both the derived measure and one of its own dependencies
	// must not double up the aggregate layer.
	resolved := resolve(t, request.Request{
		Dimensions: []string{"c.country"},
		Measures:   []string{"o.order_total", "o.avg_order_amount"},
	})
	plan, err := planner.Build(resolved)
	require.NoError(t, err)
	assert.Len(t, plan.AggregateLayer, 2)
}

func TestBuildDeterministic(t *testing.T) {
	resolved := resolve(t, request.Request{
		Dimensions: []string{"c.country"},
		Measures:   []string{"o.order_total", "o.order_count"},
		Filters:    []request.Filter{{Field: "c.country", Op: request.OpEq, Value: "US"}},
		Order:      []request.OrderItem{{Column: "o.order_total", Direction: request.Desc}},
	})
	p1, err := planner.Build(resolved)
	require.NoError(t, err)
	p2, err := planner.Build(resolved)
	require.NoError(t, err)
	assert.Equal(t, p1.Shape, p2.Shape)
	assert.Equal(t, p1.JoinedAliases, p2.JoinedAliases)
	assert.Equal(t, len(p1.AggregateLayer), len(p2.AggregateLayer))
}
