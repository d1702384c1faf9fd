package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newOrdersTable(t *testing.T) *SemanticTable {
	t.Helper()

	statusDim, err := NewDimension("status", "status")
	require.NoError(t, err)
	createdAtDim, err := NewDimension("created_at", "created_at", WithDimensionDataType(DataTypeTimestamp))
	require.NoError(t, err)

	total, err := NewAggregateMeasure("order_total", "amount", AggSum)
	require.NoError(t, err)
	count, err := NewAggregateMeasure("order_count", "id", AggCount)
	require.NoError(t, err)
	avg, err := NewDerivedMeasure("avg_order_amount", "order_total / order_count")
	require.NoError(t, err)

	orders, err := NewSemanticTable(
		"orders", "warehouse", "orders",
		[]Dimension{statusDim, createdAtDim},
		[]Measure{total, count, avg},
		WithPrimaryKey("id"),
		WithTimeDimension("created_at"),
		WithColumns([]string{"id", "customer_id", "amount", "status", "created_at"}),
	)
	require.NoError(t, err)
	return orders
}

func newCustomersTable(t *testing.T) *SemanticTable {
	t.Helper()

	country, err := NewDimension("country", "country")
	require.NoError(t, err)

	customers, err := NewSemanticTable(
		"customers", "warehouse", "customers",
		[]Dimension{country},
		nil,
		WithPrimaryKey("id"),
		WithColumns([]string{"id", "country"}),
	)
	require.NoError(t, err)
	return customers
}

func newSalesCatalog(t *testing.T) *Catalog {
	t.Helper()

	c := New()
	c.AddTable(newOrdersTable(t))
	c.AddTable(newCustomersTable(t))

	join, err := NewFlowJoin("customers", "c", "o", JoinLeft, []JoinKey{{LeftCol: "customer_id", RightCol: "id"}})
	require.NoError(t, err)

	flow, err := NewSemanticFlow("sales", "orders", "o", []FlowJoin{join})
	require.NoError(t, err)
	c.AddFlow(flow)

	return c
}

func TestBuildValidCatalog(t *testing.T) {
	c := newSalesCatalog(t)
	require.NoError(t, c.Build())
}

func TestBuildRejectsUnknownDimensionColumn(t *testing.T) {
	c := New()
	bogus, err := NewDimension("nope", "not_a_column")
	require.NoError(t, err)
	tbl, err := NewSemanticTable("orders", "warehouse", "orders", []Dimension{bogus}, nil, WithColumns([]string{"id"}))
	require.NoError(t, err)
	c.AddTable(tbl)

	err = c.Build()
	require.Error(t, err)
	require.Contains(t, err.Error(), "not_a_column")
}

func TestBuildRejectsDanglingToTableAlias(t *testing.T) {
	c := newSalesCatalog(t)
	join, err := NewFlowJoin("customers", "c2", "missing", JoinInner, []JoinKey{{LeftCol: "id", RightCol: "id"}})
	require.NoError(t, err)
	flow, err := NewSemanticFlow("broken", "orders", "o", []FlowJoin{join})
	require.NoError(t, err)
	c.AddFlow(flow)

	err = c.Build()
	require.Error(t, err)
	require.Contains(t, err.Error(), "missing")
}

func TestBuildRejectsDerivedMeasureCycle(t *testing.T) {
	c := New()
	a, err := NewDerivedMeasure("a", "b + 1")
	require.NoError(t, err)
	b, err := NewDerivedMeasure("b", "a + 1")
	require.NoError(t, err)
	tbl, err := NewSemanticTable("orders", "warehouse", "orders", nil, []Measure{a, b})
	require.NoError(t, err)
	c.AddTable(tbl)

	err = c.Build()
	require.Error(t, err)
	require.Contains(t, err.Error(), "cycle")
}

func TestNewSemanticTableRejectsDuplicateDimension(t *testing.T) {
	d1, err := NewDimension("x", "x")
	require.NoError(t, err)
	d2, err := NewDimension("x", "y")
	require.NoError(t, err)

	_, err = NewSemanticTable("t", "ds", "t", []Dimension{d1, d2}, nil)
	require.Error(t, err)
}

func TestNewFlowJoinRejectsEmptyKeys(t *testing.T) {
	_, err := NewFlowJoin("customers", "c", "o", JoinInner, nil)
	require.Error(t, err)
}

func TestNewSemanticTableRejectsBadTimeDimension(t *testing.T) {
	d, err := NewDimension("country", "country")
	require.NoError(t, err)
	_, err = NewSemanticTable("t", "ds", "t", []Dimension{d}, nil, WithTimeDimension("nope"))
	require.Error(t, err)
}
