// Package exec implements the Execution Coordinator (C6): given a Plan, it
// selects the backend serving the flow's base table, renders SQL against
// that backend's capabilities, submits it, and reshapes the resulting rows
// into qualified name/value maps, per spec §4.6.
package exec

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/semaflow-labs/semaflow/planner"
	"github.com/semaflow-labs/semaflow/registry"
	"github.com/semaflow-labs/semaflow/render"
	"github.com/semaflow-labs/semaflow/semaerr"
)

// Coordinator wires a Registry to the renderer. It holds no mutable state
// of its own beyond what the Registry already guards, so it is safe to
// share across goroutines (§5 "core plan/render path touches only
// immutable state").
type Coordinator struct {
	registry    *registry.Registry
	dataSources render.DataSources
	rowCap      int
	log         logrus.FieldLogger
}

// New builds a Coordinator. rowCap <= 0 means no cap, the spec's default.
// log may be nil, in which case logging is a no-op.
func New(reg *registry.Registry, dataSources render.DataSources, rowCap int, log logrus.FieldLogger) *Coordinator {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Coordinator{registry: reg, dataSources: dataSources, rowCap: rowCap, log: log}
}

// Result is the reshaped outcome of a successful Execute call.
type Result struct {
	Rows []registry.Row
}

// backendFor returns the client registered for the data source serving the
// plan's base table — the single connection the whole rendered query runs
// against, since a flow's joined tables are expected to share that
// connection's engine.
func (c *Coordinator) backendFor(plan *planner.Plan) (registry.BackendClient, error) {
	table, ok := plan.Resolved.AliasTables[plan.BaseAlias()]
	if !ok {
		return nil, semaerr.ErrRenderFailure.New(fmt.Sprintf("plan base alias %q has no resolved table", plan.BaseAlias()))
	}
	return c.registry.Get(table.DataSourceName)
}

// Render renders plan to SQL against the backend registered for its base
// table, without executing it. The Flow Handle's build_sql delegates here
// so the rendered SQL it reports is always exactly what Execute would
// submit.
func (c *Coordinator) Render(plan *planner.Plan) (*render.Query, error) {
	client, err := c.backendFor(plan)
	if err != nil {
		return nil, err
	}
	return render.Render(plan, client.Capabilities(), c.dataSources)
}

// Execute renders plan, submits it to the backend, and streams the result
// into memory, enforcing the soft row cap. Cancellation of ctx is
// best-effort: it is observed at the next row boundary, and no partial
// result is returned on cancellation or on cap overflow.
func (c *Coordinator) Execute(ctx context.Context, plan *planner.Plan) (*Result, error) {
	client, err := c.backendFor(plan)
	if err != nil {
		return nil, err
	}

	query, err := render.Render(plan, client.Capabilities(), c.dataSources)
	if err != nil {
		return nil, err
	}

	table := plan.Resolved.AliasTables[plan.BaseAlias()]
	flowName := plan.Resolved.Flow.Name
	dialectName := string(client.Dialect())
	logger := c.log.WithFields(logrus.Fields{
		"flow":        flowName,
		"data_source": table.DataSourceName,
		"dialect":     dialectName,
	})

	start := time.Now()
	iter, err := client.Execute(ctx, query)
	if err != nil {
		logger.WithError(err).Error("backend execution failed")
		return nil, err
	}
	defer iter.Close()

	var rows []registry.Row
	for {
		row, ok, err := iter.Next(ctx)
		if err != nil {
			logger.WithError(err).Error("backend execution failed")
			return nil, semaerr.ErrBackendFailure.New(err.Error())
		}
		if !ok {
			break
		}
		if c.rowCap > 0 && len(rows) >= c.rowCap {
			logger.WithField("row_cap", c.rowCap).Error("row cap exceeded")
			return nil, semaerr.ErrBackendFailure.New(fmt.Sprintf("row cap of %d exceeded", c.rowCap))
		}
		rows = append(rows, row)
	}

	executionDuration.WithLabelValues(flowName, dialectName).Observe(time.Since(start).Seconds())
	rowsReturned.WithLabelValues(flowName, dialectName).Observe(float64(len(rows)))
	logger.WithField("rows", len(rows)).Info("query executed")
	return &Result{Rows: rows}, nil
}
