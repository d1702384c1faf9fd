// Package registry implements the Connection Registry (C5): a keyed,
// concurrency-safe map of data-source name to backend client, per spec
// §4.5.
package registry

import (
	"context"

	"github.com/semaflow-labs/semaflow/dialect"
	"github.com/semaflow-labs/semaflow/render"
)

// Row is one result row, keyed by the qualified column name the renderer
// aliased it as ("alias.field").
type Row map[string]interface{}

// RowIter streams a query's result rows one at a time, so the Execution
// Coordinator can enforce a row cap without materializing the whole result
// set first. Next returns (nil, false, nil) once exhausted.
type RowIter interface {
	Next(ctx context.Context) (Row, bool, error)
	Close() error
}

// BackendClient is the uniform surface every backend family (embedded,
// client/server, cloud warehouse) implements. Clients are thread-safe and
// own whatever pooling they need internally (§4.5 "maintain their own
// pools where applicable").
type BackendClient interface {
	// Dialect names the SQL dialect this client's backend speaks, used to
	// select the renderer's Capabilities profile.
	Dialect() dialect.Name

	// Capabilities returns the capability profile the renderer should
	// render against — including any per-process override of
	// FilteredAggregateSupported (§6 Configuration knobs).
	Capabilities() dialect.Capabilities

	// Execute submits query and returns a streaming row iterator.
	Execute(ctx context.Context, query *render.Query) (RowIter, error)

	// Close releases the client's pool and any held connections.
	Close() error
}
