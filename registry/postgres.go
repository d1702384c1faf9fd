package registry

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/semaflow-labs/semaflow/catalog"
	"github.com/semaflow-labs/semaflow/dialect"
	"github.com/semaflow-labs/semaflow/render"
	"github.com/semaflow-labs/semaflow/semaerr"
)

// PostgresClient is a client/server backend client over a pgx connection
// pool. The pool is its own internal concurrency boundary, so Execute
// itself takes no lock.
type PostgresClient struct {
	pool *pgxpool.Pool
	caps dialect.Capabilities
}

// NewPostgresClient dials ds.Params["dsn"] and verifies the connection with
// a ping, retrying transient dial failures with backoff.
func NewPostgresClient(ctx context.Context, ds catalog.DataSource) (*PostgresClient, error) {
	dsn := ds.Params["dsn"]
	if dsn == "" {
		return nil, semaerr.ErrCatalogInvalid.New(fmt.Sprintf("postgres data source %q is missing dsn", ds.Name))
	}

	var pool *pgxpool.Pool
	err := dialWithRetry(ctx, func() error {
		p, err := pgxpool.New(ctx, dsn)
		if err != nil {
			return err
		}
		if err := p.Ping(ctx); err != nil {
			p.Close()
			return err
		}
		pool = p
		return nil
	})
	if err != nil {
		return nil, semaerr.ErrBackendFailure.New(fmt.Sprintf("postgres: connect to %q: %s", ds.Name, err))
	}

	return &PostgresClient{pool: pool, caps: dialect.For(dialect.Postgres)}, nil
}

func (c *PostgresClient) Dialect() dialect.Name { return dialect.Postgres }

func (c *PostgresClient) Capabilities() dialect.Capabilities { return c.caps }

func (c *PostgresClient) Execute(ctx context.Context, query *render.Query) (RowIter, error) {
	rows, err := c.pool.Query(ctx, query.SQL, query.Params...)
	if err != nil {
		return nil, semaerr.ErrBackendFailure.New(fmt.Sprintf("postgres: %s", err))
	}
	return &pgxRowIter{rows: rows}, nil
}

func (c *PostgresClient) Close() error {
	c.pool.Close()
	return nil
}

// pgxRowIter adapts pgx.Rows, which (unlike database/sql) exposes its
// fields' names directly via FieldDescriptions, so no separate Columns
// call is needed before the first Next.
type pgxRowIter struct {
	rows pgx.Rows
}

func (it *pgxRowIter) Next(ctx context.Context) (Row, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	if !it.rows.Next() {
		if err := it.rows.Err(); err != nil {
			return nil, false, semaerr.ErrBackendFailure.New(err.Error())
		}
		return nil, false, nil
	}

	values, err := it.rows.Values()
	if err != nil {
		return nil, false, semaerr.ErrBackendFailure.New(fmt.Sprintf("scanning row: %s", err))
	}

	fields := it.rows.FieldDescriptions()
	row := make(Row, len(fields))
	for i, fd := range fields {
		row[fd.Name] = values[i]
	}
	return row, true, nil
}

func (it *pgxRowIter) Close() error {
	it.rows.Close()
	return nil
}
