// Package fixtures builds the orders/customers/sales catalog used by the
// end-to-end scenarios in spec §8 (S1–S6), shared across every package's
// test suite so the fixture is defined exactly once.
package fixtures

import "github.com/semaflow-labs/semaflow/catalog"

// SalesCatalog returns a freshly built, Build()-validated catalog with one
// flow, "sales": orders joined to customers.
func SalesCatalog() (*catalog.Catalog, error) {
	status, err := catalog.NewDimension("status", "status")
	if err != nil {
		return nil, err
	}
	createdAt, err := catalog.NewDimension("created_at", "created_at", catalog.WithDimensionDataType(catalog.DataTypeTimestamp))
	if err != nil {
		return nil, err
	}

	orderTotal, err := catalog.NewAggregateMeasure("order_total", "amount", catalog.AggSum)
	if err != nil {
		return nil, err
	}
	orderCount, err := catalog.NewAggregateMeasure("order_count", "id", catalog.AggCount)
	if err != nil {
		return nil, err
	}
	avgOrderAmount, err := catalog.NewDerivedMeasure("avg_order_amount", "order_total / order_count")
	if err != nil {
		return nil, err
	}
	completeTotal, err := catalog.NewAggregateMeasure(
		"complete_order_total", "amount", catalog.AggSum,
		catalog.WithMeasureFilter("status = 'complete'"),
	)
	if err != nil {
		return nil, err
	}

	orders, err := catalog.NewSemanticTable(
		"orders", "warehouse", "orders",
		[]catalog.Dimension{status, createdAt},
		[]catalog.Measure{orderTotal, orderCount, avgOrderAmount, completeTotal},
		catalog.WithPrimaryKey("id"),
		catalog.WithTimeDimension("created_at"),
		catalog.WithColumns([]string{"id", "customer_id", "amount", "status", "created_at"}),
	)
	if err != nil {
		return nil, err
	}

	country, err := catalog.NewDimension("country", "country")
	if err != nil {
		return nil, err
	}

	customers, err := catalog.NewSemanticTable(
		"customers", "warehouse", "customers",
		[]catalog.Dimension{country},
		nil,
		catalog.WithPrimaryKey("id"),
		catalog.WithColumns([]string{"id", "country"}),
	)
	if err != nil {
		return nil, err
	}

	join, err := catalog.NewFlowJoin(
		"customers", "c", "o", catalog.JoinLeft,
		[]catalog.JoinKey{{LeftCol: "customer_id", RightCol: "id"}},
	)
	if err != nil {
		return nil, err
	}

	sales, err := catalog.NewSemanticFlow("sales", "orders", "o", []catalog.FlowJoin{join},
		catalog.WithFlowDescription("orders joined to the placing customer"))
	if err != nil {
		return nil, err
	}

	cat := catalog.New()
	cat.AddTable(orders)
	cat.AddTable(customers)
	cat.AddFlow(sales)
	cat.AddDataSource(catalog.DataSource{Name: "warehouse", Kind: catalog.BackendDuckDB})

	if err := cat.Build(); err != nil {
		return nil, err
	}
	return cat, nil
}

// Row is one order row, in "orders" table column shape — not the qualified
// alias.field shape a rendered query's result rows come back in.
type Row map[string]interface{}

// SeedRows are the orders rows spec §8 describes: three orders for customer
// 1 (US) and one for customer 2 (UK), with one order left "pending" to
// exercise the status filter (S5). Loaded into a real embedded database by
// the end-to-end DuckDB tests (handle_duckdb_test.go) so the renderer's
// actual SQL runs against them instead of a fake that just replays rows.
func SeedRows() []Row {
	return []Row{
		{"id": 1, "customer_id": 1, "amount": 100.0, "status": "pending", "created_at": "2026-01-01"},
		{"id": 2, "customer_id": 1, "amount": 250.0, "status": "complete", "created_at": "2026-01-02"},
		{"id": 3, "customer_id": 1, "amount": 75.0, "status": "complete", "created_at": "2026-01-03"},
		{"id": 4, "customer_id": 2, "amount": 25.0, "status": "complete", "created_at": "2026-01-04"},
	}
}
