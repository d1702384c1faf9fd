package semaflow_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/semaflow-labs/semaflow"
	"github.com/semaflow-labs/semaflow/internal/fixtures"
	"github.com/semaflow-labs/semaflow/registry"
	"github.com/semaflow-labs/semaflow/request"
)

// seedDuckDBFile creates a file-backed DuckDB database containing the
// orders/customers tables populated with fixtures.SeedRows(), so the
// renderer's actual SQL can run against real rows instead of a fake that
// just replays them. It also computes refUSTotal, the answer to S2's
// "US total" via a flat join+filter+group+DISTINCT query run on the same
// connection — the reference query testable property 3 compares the
// pre-aggregate/EXISTS plan's output against. The seeding connection is
// closed before returning so the client under test is the only one ever
// holding the file open (DuckDB only allows one process-level connection
// per database file at a time).
func seedDuckDBFile(t *testing.T) (path string, refUSTotal float64) {
	t.Helper()
	ctx := context.Background()
	path = filepath.Join(t.TempDir(), "sales.duckdb")

	db, err := sql.Open("duckdb", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.ExecContext(ctx, `CREATE TABLE orders (id INTEGER, customer_id INTEGER, amount DOUBLE, status VARCHAR, created_at VARCHAR)`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `CREATE TABLE customers (id INTEGER, country VARCHAR)`)
	require.NoError(t, err)

	for _, row := range fixtures.SeedRows() {
		_, err := db.ExecContext(ctx, `INSERT INTO orders VALUES (?, ?, ?, ?, ?)`,
			row["id"], row["customer_id"], row["amount"], row["status"], row["created_at"])
		require.NoError(t, err)
	}
	_, err = db.ExecContext(ctx, `INSERT INTO customers VALUES (1, 'US'), (2, 'UK')`)
	require.NoError(t, err)

	require.NoError(t, db.QueryRowContext(ctx,
		`SELECT SUM(t.amount) FROM (SELECT DISTINCT o.id, o.amount FROM orders o JOIN customers c ON o.customer_id = c.id WHERE c.country = ?) t`,
		"US").Scan(&refUSTotal))

	return path, refUSTotal
}

// duckDBHandle wires a Handle against the file at path through a real
// registry.DuckDBClient, returning the client alongside it so a test can
// flip its FILTER(WHERE) capability override (§6 configuration knobs)
// between calls without opening a second connection to the same file.
func duckDBHandle(t *testing.T, path string) (*semaflow.Handle, *registry.DuckDBClient) {
	t.Helper()
	ctx := context.Background()

	cat, err := fixtures.SalesCatalog()
	require.NoError(t, err)

	ds := cat.DataSources["warehouse"]
	ds.Params = map[string]string{"path": path}

	client, err := registry.NewDuckDBClient(ctx, ds)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	h, err := semaflow.FromParts(cat, map[string]registry.BackendClient{"warehouse": client})
	require.NoError(t, err)
	return h, client
}

func rowsByCountry(rows []registry.Row) map[string]registry.Row {
	out := make(map[string]registry.Row, len(rows))
	for _, r := range rows {
		out[r["c.country"].(string)] = r
	}
	return out
}

// TestExecuteAgainstDuckDBFanOut covers S1/S2/S3: grouping by a joined
// dimension, filtering on it (the pre-aggregate/EXISTS path), and ordering
// by a measure, all against real executed SQL.
func TestExecuteAgainstDuckDBFanOut(t *testing.T) {
	path, refUSTotal := seedDuckDBFile(t)
	h, _ := duckDBHandle(t, path)
	ctx := context.Background()

	// S1
	result, err := h.Execute(ctx, request.Request{
		Flow:       "sales",
		Dimensions: []string{"c.country"},
		Measures:   []string{"o.order_total"},
	})
	require.NoError(t, err)
	require.Len(t, result.Rows, 2)
	byCountry := rowsByCountry(result.Rows)
	assert.Equal(t, 425.0, byCountry["US"]["o.order_total"])
	assert.Equal(t, 25.0, byCountry["UK"]["o.order_total"])

	// S2: filter on the joined dimension takes the pre-aggregate/EXISTS
	// path, and must agree with a flat reference join+filter+group query
	// run directly against the same fixture data (testable property 3).
	built, err := h.BuildSQL(request.Request{
		Flow:       "sales",
		Dimensions: []string{"c.country"},
		Measures:   []string{"o.order_total"},
		Filters:    []request.Filter{{Field: "c.country", Op: request.OpEq, Value: "US"}},
	})
	require.NoError(t, err)
	assert.Contains(t, built.SQL, "EXISTS (SELECT 1 FROM")

	result, err = h.Execute(ctx, request.Request{
		Flow:       "sales",
		Dimensions: []string{"c.country"},
		Measures:   []string{"o.order_total"},
		Filters:    []request.Filter{{Field: "c.country", Op: request.OpEq, Value: "US"}},
	})
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, "US", result.Rows[0]["c.country"])
	assert.Equal(t, 425.0, result.Rows[0]["o.order_total"])
	assert.Equal(t, refUSTotal, result.Rows[0]["o.order_total"])

	// S3: order by measure desc + limit 1.
	limit := 1
	result, err = h.Execute(ctx, request.Request{
		Flow:       "sales",
		Dimensions: []string{"c.country"},
		Measures:   []string{"o.order_total"},
		Order:      []request.OrderItem{{Column: "o.order_total", Direction: request.Desc}},
		Limit:      &limit,
	})
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, "US", result.Rows[0]["c.country"])
	assert.Equal(t, 425.0, result.Rows[0]["o.order_total"])
}

// TestExecuteAgainstDuckDBDerivedMeasure covers S4 and testable property 6:
// a derived measure's value doesn't change depending on whether its base
// measures are also requested alongside it.
func TestExecuteAgainstDuckDBDerivedMeasure(t *testing.T) {
	path, _ := seedDuckDBFile(t)
	h, _ := duckDBHandle(t, path)
	ctx := context.Background()

	result, err := h.Execute(ctx, request.Request{
		Flow:       "sales",
		Dimensions: []string{"c.country"},
		Measures:   []string{"o.order_total", "o.order_count", "o.avg_order_amount"},
	})
	require.NoError(t, err)
	byCountry := rowsByCountry(result.Rows)
	assert.InDelta(t, 425.0/3.0, byCountry["US"]["o.avg_order_amount"], 1e-9)

	alone, err := h.Execute(ctx, request.Request{
		Flow:       "sales",
		Dimensions: []string{"c.country"},
		Measures:   []string{"o.avg_order_amount"},
	})
	require.NoError(t, err)
	aloneByCountry := rowsByCountry(alone.Rows)
	assert.Equal(t, byCountry["US"]["o.avg_order_amount"], aloneByCountry["US"]["o.avg_order_amount"])
	assert.Equal(t, byCountry["UK"]["o.avg_order_amount"], aloneByCountry["UK"]["o.avg_order_amount"])
}

// TestExecuteAgainstDuckDBFilteredAggregate covers S5 and testable property
// 5: the FILTER(WHERE ...) form and the CASE-fallback form of a filtered
// measure must agree on fixture data. Both forms are rendered from the
// same client, toggling its capability override between calls, so only
// one connection to the database file is ever open.
func TestExecuteAgainstDuckDBFilteredAggregate(t *testing.T) {
	path, _ := seedDuckDBFile(t)
	h, client := duckDBHandle(t, path)
	ctx := context.Background()

	result, err := h.Execute(ctx, request.Request{
		Flow:       "sales",
		Dimensions: []string{"o.status"},
		Measures:   []string{"o.order_total"},
		Filters:    []request.Filter{{Field: "o.status", Op: request.OpEq, Value: "complete"}},
	})
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, "complete", result.Rows[0]["o.status"])
	assert.Equal(t, 350.0, result.Rows[0]["o.order_total"])

	nativeAll, err := h.Execute(ctx, request.Request{
		Flow:       "sales",
		Dimensions: []string{"c.country"},
		Measures:   []string{"o.complete_order_total"},
	})
	require.NoError(t, err)

	client.WithFilteredAggregateOverride(false)
	fallbackAll, err := h.Execute(ctx, request.Request{
		Flow:       "sales",
		Dimensions: []string{"c.country"},
		Measures:   []string{"o.complete_order_total"},
	})
	require.NoError(t, err)

	nativeByCountry := rowsByCountry(nativeAll.Rows)
	fallbackByCountry := rowsByCountry(fallbackAll.Rows)
	assert.Equal(t, nativeByCountry["US"]["o.complete_order_total"], fallbackByCountry["US"]["o.complete_order_total"])
	assert.Equal(t, nativeByCountry["UK"]["o.complete_order_total"], fallbackByCountry["UK"]["o.complete_order_total"])
}
