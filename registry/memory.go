package registry

import (
	"context"

	"github.com/semaflow-labs/semaflow/dialect"
	"github.com/semaflow-labs/semaflow/render"
)

// MemoryClient is a fixture-backed BackendClient used in place of a live
// database, the same role the teacher's in-memory enginetest session plays
// for exercising the engine without a real server. It ignores the rendered
// SQL entirely and replays the rows it was built with, so it is only
// suitable for exercising the Execution Coordinator's plumbing — row
// shaping, the soft row cap, cancellation — not for asserting on query
// results.
type MemoryClient struct {
	dlt  dialect.Name
	caps dialect.Capabilities
	rows []Row
}

// NewMemoryClient builds a client that reports dlt's capability profile and
// replays rows on every Execute call, regardless of the query submitted.
func NewMemoryClient(dlt dialect.Name, rows []Row) *MemoryClient {
	return &MemoryClient{dlt: dlt, caps: dialect.For(dlt), rows: rows}
}

func (c *MemoryClient) Dialect() dialect.Name { return c.dlt }

func (c *MemoryClient) Capabilities() dialect.Capabilities { return c.caps }

func (c *MemoryClient) Execute(ctx context.Context, query *render.Query) (RowIter, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &memoryRowIter{rows: c.rows}, nil
}

func (c *MemoryClient) Close() error { return nil }

type memoryRowIter struct {
	rows []Row
	pos  int
}

func (it *memoryRowIter) Next(ctx context.Context) (Row, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	if it.pos >= len(it.rows) {
		return nil, false, nil
	}
	row := it.rows[it.pos]
	it.pos++
	return row, true, nil
}

func (it *memoryRowIter) Close() error { return nil }
