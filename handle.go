// Package semaflow is the public façade (C7): a Handle built once from a
// catalog and a set of backend clients, exposing flow introspection, SQL
// rendering and execution behind a thread-safe surface, per spec §4.7.
package semaflow

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/semaflow-labs/semaflow/catalog"
	"github.com/semaflow-labs/semaflow/exec"
	"github.com/semaflow-labs/semaflow/planner"
	"github.com/semaflow-labs/semaflow/registry"
	"github.com/semaflow-labs/semaflow/render"
	"github.com/semaflow-labs/semaflow/request"
	"github.com/semaflow-labs/semaflow/validator"
)

// Handle is the public entry point. Once constructed, its catalog and
// derived state (resolved flows, plan logic) are immutable; the only
// mutable shared object reachable from it is the connection registry,
// which guards itself with short-held locks (§5). A Handle is therefore
// safe to call from many concurrent goroutines.
type Handle struct {
	catalog     *catalog.Catalog
	registry    *registry.Registry
	coordinator *exec.Coordinator
	log         logrus.FieldLogger
}

// Option customizes Handle construction.
type Option func(*handleConfig)

type handleConfig struct {
	rowCap int
	log    logrus.FieldLogger
}

// WithRowCap sets the soft row cap Execute enforces; <= 0 means no cap,
// the spec's default.
func WithRowCap(n int) Option {
	return func(c *handleConfig) { c.rowCap = n }
}

// WithLogger sets the logrus.FieldLogger the Handle and everything it owns
// logs through.
func WithLogger(log logrus.FieldLogger) Option {
	return func(c *handleConfig) { c.log = log }
}

// FromParts builds a Handle from an already-constructed Catalog and a set
// of live backend clients keyed by data source name. It runs the full
// cross-entity validation pass (catalog.Build) before returning, per §4.7
// "Upon construction, the full cross-entity validation pass runs."
func FromParts(cat *catalog.Catalog, clients map[string]registry.BackendClient, opts ...Option) (*Handle, error) {
	if err := cat.Build(); err != nil {
		return nil, err
	}

	cfg := handleConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	reg := registry.New(cfg.log)
	for name, client := range clients {
		reg.Register(name, client)
	}

	dataSources := make(render.DataSources, len(cat.DataSources))
	for name, ds := range cat.DataSources {
		dataSources[name] = ds
	}

	coordinator := exec.New(reg, dataSources, cfg.rowCap, cfg.log)

	return &Handle{catalog: cat, registry: reg, coordinator: coordinator, log: cfg.log}, nil
}

// Close releases every backend client's pool. A Handle must not be used
// after Close.
func (h *Handle) Close() error {
	return h.registry.Close()
}

// ListFlows returns every declared flow's name mapped to its description,
// nil when unset, matching the `GET /flows` response shape (§6).
func (h *Handle) ListFlows() map[string]*string {
	out := make(map[string]*string, len(h.catalog.Flows))
	for name, flow := range h.catalog.Flows {
		if flow.Description == "" {
			out[name] = nil
			continue
		}
		desc := flow.Description
		out[name] = &desc
	}
	return out
}

// resolve validates req against flowName and builds its Plan — the shared
// first half of BuildSQL and Execute.
func (h *Handle) resolve(req request.Request) (*planner.Plan, error) {
	resolved, err := validator.Validate(h.catalog, req.Flow, req)
	if err != nil {
		return nil, err
	}
	return planner.Build(resolved)
}

// Explain is the "query explain" view SPEC_FULL.md adds to build_sql: the
// plan shape chosen and the joins actually rendered, so a caller can assert
// on plan shape without parsing SQL text (§8 property 3).
type Explain struct {
	Shape         planner.Shape
	JoinedAliases []string
}

// BuiltSQL is the result of BuildSQL: the rendered query plus the explain
// view of the plan that produced it.
type BuiltSQL struct {
	SQL        string
	Params     []interface{}
	ParamNames []string
	Explain    Explain
}

// BuildSQL resolves req, plans it, and renders SQL against the backend
// registered for its flow's data source, without executing it.
func (h *Handle) BuildSQL(req request.Request) (*BuiltSQL, error) {
	plan, err := h.resolve(req)
	if err != nil {
		return nil, err
	}
	query, err := h.coordinator.Render(plan)
	if err != nil {
		return nil, err
	}
	return &BuiltSQL{
		SQL:        query.SQL,
		Params:     query.Params,
		ParamNames: query.ParamNames,
		Explain:    Explain{Shape: plan.Shape, JoinedAliases: plan.JoinedAliases},
	}, nil
}

// ExecuteResult pairs the rows Execute returned with the explain view of
// the plan that produced them and, for a cursor-paginated request, the
// next page's cursor.
type ExecuteResult struct {
	Rows    []registry.Row
	Explain Explain

	// Cursor and HasMore are only meaningful when the request used
	// page_size/cursor pagination; HasMore is false and Cursor empty
	// otherwise.
	Cursor  string
	HasMore bool
}

// Execute resolves req, plans it, renders SQL, and runs it against the
// appropriate backend, reshaping rows into qualified name/value maps.
func (h *Handle) Execute(ctx context.Context, req request.Request) (*ExecuteResult, error) {
	plan, err := h.resolve(req)
	if err != nil {
		return nil, err
	}
	result, err := h.coordinator.Execute(ctx, plan)
	if err != nil {
		return nil, err
	}

	out := &ExecuteResult{Rows: result.Rows, Explain: Explain{Shape: plan.Shape, JoinedAliases: plan.JoinedAliases}}
	if req.UsesCursorPagination() && req.PageSize != nil {
		cursor, hasMore, err := render.NextPage(plan, *req.PageSize, len(result.Rows))
		if err != nil {
			return nil, err
		}
		out.Cursor, out.HasMore = cursor, hasMore
	}
	return out, nil
}
