package registry

import (
	"context"
	"database/sql"

	"github.com/semaflow-labs/semaflow/semaerr"
)

// sqlRowIter adapts a database/sql *sql.Rows (used by the DuckDB client)
// to the RowIter interface, scanning into interface{} so it never needs to
// know a column's static Go type ahead of time.
type sqlRowIter struct {
	rows *sql.Rows
	cols []string
}

func newSQLRowIter(rows *sql.Rows) (*sqlRowIter, error) {
	cols, err := rows.Columns()
	if err != nil {
		rows.Close()
		return nil, semaerr.ErrBackendFailure.New("reading result columns: " + err.Error())
	}
	return &sqlRowIter{rows: rows, cols: cols}, nil
}

func (it *sqlRowIter) Next(ctx context.Context) (Row, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	if !it.rows.Next() {
		if err := it.rows.Err(); err != nil {
			return nil, false, semaerr.ErrBackendFailure.New(err.Error())
		}
		return nil, false, nil
	}

	values := make([]interface{}, len(it.cols))
	ptrs := make([]interface{}, len(it.cols))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := it.rows.Scan(ptrs...); err != nil {
		return nil, false, semaerr.ErrBackendFailure.New("scanning row: " + err.Error())
	}

	row := make(Row, len(it.cols))
	for i, c := range it.cols {
		row[c] = values[i]
	}
	return row, true, nil
}

func (it *sqlRowIter) Close() error {
	return it.rows.Close()
}
