package catalogio_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/semaflow-labs/semaflow/catalogio"
)

const ordersYAML = `
name: orders
data_source_name: warehouse
table: orders
primary_key: id
time_dimension: created_at
columns: [id, customer_id, amount, status, created_at]
dimensions:
  - name: status
    expr: status
  - name: created_at
    expr: created_at
    data_type: timestamp
measures:
  - name: order_total
    expr: amount
    agg: sum
  - name: order_count
    expr: id
    agg: count
  - name: avg_order_amount
    kind: derived
    post_expr: "order_total / order_count"
`

const customersYAML = `
name: customers
data_source_name: warehouse
table: customers
primary_key: id
columns: [id, country]
dimensions:
  - name: country
    expr: country
`

const salesFlowYAML = `
name: sales
base_table: orders
base_alias: o
description: orders joined to the placing customer
joins:
  - semantic_table: customers
    alias: c
    to_table_alias: o
    join_type: left
    join_keys:
      - left_col: customer_id
        right_col: id
`

const dataSourcesYAML = `
data_sources:
  - name: warehouse
    kind: duckdb
`

func writeCatalogDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "tables"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "flows"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tables", "orders.yaml"), []byte(ordersYAML), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tables", "customers.yaml"), []byte(customersYAML), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "flows", "sales.yaml"), []byte(salesFlowYAML), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "data_sources.yaml"), []byte(dataSourcesYAML), 0o644))
	return dir
}

func TestLoadDirBuildsValidCatalog(t *testing.T) {
	dir := writeCatalogDir(t)

	cat, err := catalogio.LoadDir(dir)
	require.NoError(t, err)
	require.NoError(t, cat.Build())

	assert.Contains(t, cat.Tables, "orders")
	assert.Contains(t, cat.Tables, "customers")
	assert.Contains(t, cat.Flows, "sales")
	assert.Contains(t, cat.DataSources, "warehouse")

	orders := cat.Tables["orders"]
	assert.Equal(t, "created_at", orders.TimeDimension)
	assert.Contains(t, orders.Measures, "avg_order_amount")
	assert.Equal(t, "order_total / order_count", orders.Measures["avg_order_amount"].PostExpr)
}

func TestLoadDirMissingDataSourcesIsEmpty(t *testing.T) {
	dir := writeCatalogDir(t)
	require.NoError(t, os.Remove(filepath.Join(dir, "data_sources.yaml")))

	cat, err := catalogio.LoadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, cat.DataSources)
}

func TestLoadDirRejectsMalformedTable(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "tables"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tables", "broken.yaml"), []byte("name: \"\"\n"), 0o644))

	_, err := catalogio.LoadDir(dir)
	require.Error(t, err)
}
