// Package planner implements the Plan Builder (C3): deciding flat vs.
// pre-aggregate plan shape, pruning unreferenced joins, and placing filters
// and derived-measure dependencies, as described in spec §4.3.
package planner

import "github.com/semaflow-labs/semaflow/request"

// Shape is the two plan shapes spec §4.3 describes.
type Shape string

const (
	// ShapeFlat is a single SELECT over the base table joined with every
	// referenced alias, used when no filter could change the base table's
	// grain.
	ShapeFlat Shape = "flat"
	// ShapePreAggregate aggregates the base table to the requested grain
	// in an inner derived query before joining other aliases for
	// decoration, used when a joined-alias filter could otherwise change
	// the grain via a fan-out join.
	ShapePreAggregate Shape = "pre-aggregate"
)

// Plan is the fully-determined description of how SQL will be assembled
// for one resolved request. Every field here is a pure function of the
// Resolved request and the catalog (§4.3 "Determinism"): the same Resolved
// request always produces a byte-identical Plan, and thus byte-identical
// rendered SQL.
type Plan struct {
	Shape Shape

	Resolved *request.Resolved

	// JoinedAliases are the non-base aliases actually joined into the
	// query, in the flow's declaration order, after pruning aliases that
	// contribute nothing and expanding the closure of any alias whose
	// join clause depends on another joined alias.
	JoinedAliases []string

	// Dimensions are the requested dimensions, in request order.
	Dimensions []request.Field

	// ProjectedMeasures are exactly the measures the caller asked for, in
	// request order — the outer-layer projection list. A derived measure
	// here is evaluated from AggregateLayer columns; it does not itself
	// appear in AggregateLayer unless also requested directly as... it
	// never is, since a derived measure has no Agg/Expr of its own.
	ProjectedMeasures []request.ResolvedMeasure

	// AggregateLayer is the deduplicated set of aggregate measures that
	// must be computed during aggregation: every requested aggregate
	// measure plus the transitive aggregate dependencies of every
	// requested derived measure, in first-appearance order.
	AggregateLayer []request.ResolvedMeasure

	// BaseFilters are the request filters targeting the base alias; they
	// are placed in the inner/only WHERE clause.
	BaseFilters []request.ResolvedFilter

	// JoinedFilters are the request filters targeting a non-base alias.
	// Their presence is what forces ShapePreAggregate.
	JoinedFilters []request.ResolvedFilter

	Order []request.ResolvedOrder

	Limit  *int
	Offset *int

	PageSize *int
	Cursor   string
}

// BaseAlias is a convenience accessor for the flow's base alias.
func (p *Plan) BaseAlias() string {
	return p.Resolved.Flow.BaseAlias
}
