package semaflow_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/semaflow-labs/semaflow"
	"github.com/semaflow-labs/semaflow/catalog"
	"github.com/semaflow-labs/semaflow/dialect"
	"github.com/semaflow-labs/semaflow/internal/fixtures"
	"github.com/semaflow-labs/semaflow/planner"
	"github.com/semaflow-labs/semaflow/registry"
	"github.com/semaflow-labs/semaflow/request"
)

func seededHandle(t *testing.T, rows []registry.Row, opts ...semaflow.Option) *semaflow.Handle {
	t.Helper()
	cat, err := fixtures.SalesCatalog()
	require.NoError(t, err)

	clients := map[string]registry.BackendClient{
		"warehouse": registry.NewMemoryClient(dialect.DuckDB, rows),
	}
	h, err := semaflow.FromParts(cat, clients, opts...)
	require.NoError(t, err)
	return h
}

func TestHandleListFlows(t *testing.T) {
	h := seededHandle(t, nil)
	flows := h.ListFlows()
	require.Contains(t, flows, "sales")
	require.NotNil(t, flows["sales"])
	assert.Equal(t, "orders joined to the placing customer", *flows["sales"])
}

func TestHandleGetFlowSchema(t *testing.T) {
	h := seededHandle(t, nil)
	schema, err := h.GetFlow("sales")
	require.NoError(t, err)

	assert.Equal(t, "sales", schema.Name)
	assert.Equal(t, "o.created_at", schema.TimeDimension)
	assert.Contains(t, schema.Dimensions, "c.country")
	assert.Contains(t, schema.Dimensions, "o.status")
	assert.Equal(t, catalog.DataTypeFloat, schema.Measures["o.order_total"].DataType)
	assert.Equal(t, catalog.DataTypeFloat, schema.Measures["o.avg_order_amount"].DataType)
}

func TestHandleGetFlowUnknown(t *testing.T) {
	h := seededHandle(t, nil)
	_, err := h.GetFlow("does-not-exist")
	require.Error(t, err)
}

func TestHandleBuildSQLReportsExplain(t *testing.T) {
	h := seededHandle(t, nil)
	built, err := h.BuildSQL(request.Request{
		Flow:       "sales",
		Dimensions: []string{"c.country"},
		Measures:   []string{"o.order_total"},
		Filters:    []request.Filter{{Field: "c.country", Op: request.OpEq, Value: "US"}},
	})
	require.NoError(t, err)

	assert.Equal(t, planner.ShapePreAggregate, built.Explain.Shape)
	assert.Contains(t, built.SQL, "EXISTS (SELECT 1 FROM")
	require.Len(t, built.Params, 1)
	assert.Equal(t, "US", built.Params[0])
}

func TestHandleExecuteReshapesRows(t *testing.T) {
	h := seededHandle(t, []registry.Row{
		{"o.status": "complete", "o.order_total": 350.0},
	})
	result, err := h.Execute(context.Background(), request.Request{
		Flow:       "sales",
		Dimensions: []string{"o.status"},
		Measures:   []string{"o.order_total"},
	})
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, planner.ShapeFlat, result.Explain.Shape)
}

func TestHandleExecuteEnforcesRowCap(t *testing.T) {
	rows := []registry.Row{
		{"o.status": "complete"}, {"o.status": "pending"}, {"o.status": "cancelled"},
	}
	h := seededHandle(t, rows, semaflow.WithRowCap(1))

	_, err := h.Execute(context.Background(), request.Request{
		Flow:       "sales",
		Dimensions: []string{"o.status"},
		Measures:   []string{"o.order_total"},
	})
	require.Error(t, err)
}

func TestHandleUnknownFlowRequest(t *testing.T) {
	h := seededHandle(t, nil)
	_, err := h.BuildSQL(request.Request{Flow: "missing", Dimensions: []string{"a.b"}})
	require.Error(t, err)
}
