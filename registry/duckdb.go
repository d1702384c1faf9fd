package registry

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/semaflow-labs/semaflow/catalog"
	"github.com/semaflow-labs/semaflow/dialect"
	"github.com/semaflow-labs/semaflow/render"
	"github.com/semaflow-labs/semaflow/semaerr"
)

// DuckDBClient is an embedded, in-process backend client over
// database/sql's "duckdb" driver. There is no server to dial, so
// dialWithRetry only guards opening/verifying the database file.
type DuckDBClient struct {
	db   *sql.DB
	caps dialect.Capabilities
}

// NewDuckDBClient opens ds.Params["path"], or an in-memory database when
// path is unset.
func NewDuckDBClient(ctx context.Context, ds catalog.DataSource) (*DuckDBClient, error) {
	path := ds.Params["path"]
	if path == "" {
		path = ":memory:"
	}

	var db *sql.DB
	err := dialWithRetry(ctx, func() error {
		d, err := sql.Open("duckdb", path)
		if err != nil {
			return err
		}
		if err := d.PingContext(ctx); err != nil {
			d.Close()
			return err
		}
		db = d
		return nil
	})
	if err != nil {
		return nil, semaerr.ErrBackendFailure.New(fmt.Sprintf("duckdb: open data source %q: %s", ds.Name, err))
	}

	return &DuckDBClient{db: db, caps: dialect.For(dialect.DuckDB)}, nil
}

func (c *DuckDBClient) Dialect() dialect.Name { return dialect.DuckDB }

func (c *DuckDBClient) Capabilities() dialect.Capabilities { return c.caps }

// WithFilteredAggregateOverride flips the FILTER(WHERE) capability switch
// an operator can disable per §6's configuration knobs, independent of the
// dialect's default.
func (c *DuckDBClient) WithFilteredAggregateOverride(supported bool) {
	c.caps.FilteredAggregateSupported = supported
}

func (c *DuckDBClient) Execute(ctx context.Context, query *render.Query) (RowIter, error) {
	rows, err := c.db.QueryContext(ctx, query.SQL, query.Params...)
	if err != nil {
		return nil, semaerr.ErrBackendFailure.New(fmt.Sprintf("duckdb: %s", err))
	}
	return newSQLRowIter(rows)
}

func (c *DuckDBClient) Close() error {
	return c.db.Close()
}
