package exec_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/semaflow-labs/semaflow/catalog"
	"github.com/semaflow-labs/semaflow/dialect"
	"github.com/semaflow-labs/semaflow/exec"
	"github.com/semaflow-labs/semaflow/internal/fixtures"
	"github.com/semaflow-labs/semaflow/planner"
	"github.com/semaflow-labs/semaflow/registry"
	"github.com/semaflow-labs/semaflow/render"
	"github.com/semaflow-labs/semaflow/request"
	"github.com/semaflow-labs/semaflow/semaerr"
	"github.com/semaflow-labs/semaflow/validator"
)

func buildPlan(t *testing.T, req request.Request) *planner.Plan {
	t.Helper()
	cat, err := fixtures.SalesCatalog()
	require.NoError(t, err)
	resolved, err := validator.Validate(cat, "sales", req)
	require.NoError(t, err)
	plan, err := planner.Build(resolved)
	require.NoError(t, err)
	return plan
}

func dataSources() render.DataSources {
	return render.DataSources{
		"warehouse": catalog.DataSource{Name: "warehouse", Kind: catalog.BackendDuckDB},
	}
}

func seededCoordinator(rows []registry.Row, rowCap int) *exec.Coordinator {
	reg := registry.New(nil)
	reg.Register("warehouse", registry.NewMemoryClient(dialect.DuckDB, rows))
	return exec.New(reg, dataSources(), rowCap, nil)
}

func TestCoordinatorExecuteReshapesRows(t *testing.T) {
	plan := buildPlan(t, request.Request{
		Dimensions: []string{"o.status"},
		Measures:   []string{"o.order_total"},
	})
	rows := []registry.Row{
		{"o.status": "complete", "o.order_total": 350.0},
		{"o.status": "pending", "o.order_total": 75.0},
	}
	c := seededCoordinator(rows, 0)

	result, err := c.Execute(context.Background(), plan)
	require.NoError(t, err)
	require.Len(t, result.Rows, 2)
	assert.Equal(t, "complete", result.Rows[0]["o.status"])
}

func TestCoordinatorEnforcesRowCap(t *testing.T) {
	plan := buildPlan(t, request.Request{
		Dimensions: []string{"o.status"},
		Measures:   []string{"o.order_total"},
	})
	rows := []registry.Row{
		{"o.status": "complete"},
		{"o.status": "pending"},
		{"o.status": "cancelled"},
	}
	c := seededCoordinator(rows, 2)

	_, err := c.Execute(context.Background(), plan)
	require.Error(t, err)
	assert.True(t, semaerr.ErrBackendFailure.Is(err))
}

func TestCoordinatorExecuteUnderNoCapIsUnbounded(t *testing.T) {
	plan := buildPlan(t, request.Request{
		Dimensions: []string{"o.status"},
		Measures:   []string{"o.order_total"},
	})
	rows := make([]registry.Row, 50)
	for i := range rows {
		rows[i] = registry.Row{"o.status": "complete"}
	}
	c := seededCoordinator(rows, 0)

	result, err := c.Execute(context.Background(), plan)
	require.NoError(t, err)
	assert.Len(t, result.Rows, 50)
}

func TestCoordinatorRenderMatchesExecuteSQL(t *testing.T) {
	plan := buildPlan(t, request.Request{
		Dimensions: []string{"o.status"},
		Measures:   []string{"o.order_total"},
	})
	c := seededCoordinator(nil, 0)

	q, err := c.Render(plan)
	require.NoError(t, err)
	assert.Contains(t, q.SQL, `"orders" AS "o"`)
}

func TestCoordinatorPropagatesUnknownDataSource(t *testing.T) {
	plan := buildPlan(t, request.Request{
		Dimensions: []string{"o.status"},
		Measures:   []string{"o.order_total"},
	})
	reg := registry.New(nil)
	c := exec.New(reg, dataSources(), 0, nil)

	_, err := c.Execute(context.Background(), plan)
	require.Error(t, err)
	assert.True(t, semaerr.ErrBackendFailure.Is(err))
}

func TestCoordinatorRespectsCancellation(t *testing.T) {
	plan := buildPlan(t, request.Request{
		Dimensions: []string{"o.status"},
		Measures:   []string{"o.order_total"},
	})
	c := seededCoordinator([]registry.Row{{"o.status": "complete"}}, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Execute(ctx, plan)
	require.Error(t, err)
}
