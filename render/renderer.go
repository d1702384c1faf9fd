// Package render implements the SQL Renderer (C4): turning a Plan into a
// dialect-specific, parameterized SQL string, per spec §4.4.
package render

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/semaflow-labs/semaflow/catalog"
	"github.com/semaflow-labs/semaflow/dialect"
	"github.com/semaflow-labs/semaflow/planner"
	"github.com/semaflow-labs/semaflow/request"
	"github.com/semaflow-labs/semaflow/semaerr"
)

// Query is a rendered SQL statement ready to hand to a backend client.
// Params are positional for ParamPositional/ParamDollar styles; for
// ParamNamed they correspond 1:1 with ParamNames.
type Query struct {
	SQL        string
	Params     []interface{}
	ParamNames []string

	// Shape and JoinedAliases are surfaced for the "query explain output"
	// SPEC_FULL.md adds: callers can assert on plan shape without parsing
	// the SQL text back out.
	Shape         planner.Shape
	JoinedAliases []string
}

// DataSources resolves a data source descriptor by name, the same map the
// Connection Registry is keyed by.
type DataSources map[string]catalog.DataSource

// aggAlias is the inner aggregate layer's subquery alias. The catalog does
// not reserve it: flow aliases are only checked for uniqueness, so a flow
// that declares "__agg" as an alias collides with it.
const aggAlias = "__agg"

// Render renders plan under caps, resolving each referenced table's
// physical qualification from dataSources. It is a pure function of its
// arguments (§8 property 1: determinism) — no clock, no randomness, no
// global state.
func Render(plan *planner.Plan, caps dialect.Capabilities, dataSources DataSources) (*Query, error) {
	r := &renderCtx{plan: plan, caps: caps, dataSources: dataSources}
	sql, err := r.render()
	if err != nil {
		return nil, err
	}
	return &Query{
		SQL:           sql,
		Params:        r.binder.values,
		ParamNames:    r.binder.names,
		Shape:         plan.Shape,
		JoinedAliases: plan.JoinedAliases,
	}, nil
}

type renderCtx struct {
	plan        *planner.Plan
	caps        dialect.Capabilities
	dataSources DataSources
	binder      paramBinder
}

func (r *renderCtx) render() (string, error) {
	switch {
	case r.plan.Shape == planner.ShapePreAggregate:
		return r.renderPreAggregate()
	case hasDerived(r.plan.ProjectedMeasures):
		return r.renderFlatWithOuter()
	default:
		return r.renderFlatSingle()
	}
}

func hasDerived(measures []request.ResolvedMeasure) bool {
	for _, m := range measures {
		if m.Kind == catalog.MeasureDerived {
			return true
		}
	}
	return false
}

// table looks up the SemanticTable bound to alias, panicking if the plan
// was built from a Resolved request whose AliasTables is incomplete — a
// validator bug, never something a request's shape can trigger.
func (r *renderCtx) table(alias string) *catalog.SemanticTable {
	t, ok := r.plan.Resolved.AliasTables[alias]
	if !ok {
		panic("render: no table resolved for alias " + alias)
	}
	return t
}

func (r *renderCtx) qualifiedTableRef(alias string) (string, error) {
	t := r.table(alias)
	ds, ok := r.dataSources[t.DataSourceName]
	if !ok {
		return "", semaerr.ErrRenderFailure.New("table " + t.Name + ": data source " + t.DataSourceName + " not found")
	}
	ref, err := r.caps.QualifyTable(ds, t.Table)
	if err != nil {
		return "", err
	}
	return ref + " AS " + r.caps.QuoteIdent(alias), nil
}

// renderFlatSingle handles the simplest case: a flat plan with no derived
// measures, where aggregate layer and projection are the same SELECT.
func (r *renderCtx) renderFlatSingle() (string, error) {
	cols, err := r.aggregateSelectList(r.plan.Dimensions, r.plan.AggregateLayer)
	if err != nil {
		return "", err
	}

	from, err := r.directFrom(r.plan.JoinedAliases)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(strings.Join(cols, ", "))
	b.WriteString(" FROM ")
	b.WriteString(from)

	if err := r.appendWhere(&b, r.plan.BaseFilters); err != nil {
		return "", err
	}
	if err := r.appendGroupBy(&b, r.plan.Dimensions); err != nil {
		return "", err
	}
	if err := r.appendOrderAndPagination(&b); err != nil {
		return "", err
	}
	return b.String(), nil
}

// renderFlatWithOuter handles a flat plan that requests a derived measure:
// the aggregate layer (all dimensions, all joins, at full grain) is wrapped
// as a subquery so the derived expression can be evaluated over it.
func (r *renderCtx) renderFlatWithOuter() (string, error) {
	innerCols, err := r.aggregateSelectList(r.plan.Dimensions, r.plan.AggregateLayer)
	if err != nil {
		return "", err
	}
	from, err := r.directFrom(r.plan.JoinedAliases)
	if err != nil {
		return "", err
	}

	var inner strings.Builder
	inner.WriteString("SELECT ")
	inner.WriteString(strings.Join(innerCols, ", "))
	inner.WriteString(" FROM ")
	inner.WriteString(from)
	if err := r.appendWhere(&inner, r.plan.BaseFilters); err != nil {
		return "", err
	}
	if err := r.appendGroupBy(&inner, r.plan.Dimensions); err != nil {
		return "", err
	}

	outerCols, err := r.outerProjection(r.plan.Dimensions, nil)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(strings.Join(outerCols, ", "))
	b.WriteString(" FROM (")
	b.WriteString(inner.String())
	b.WriteString(") AS ")
	b.WriteString(r.caps.QuoteIdent(aggAlias))

	if err := r.appendOrderAndPagination(&b); err != nil {
		return "", err
	}
	return b.String(), nil
}

// renderPreAggregate handles the pre-aggregate plan shape: the base table
// is aggregated to the requested grain inside a derived query, restricted
// by base filters and an EXISTS semi-join over joined-alias filters, and
// the outer query joins that result to the other aliases for dimension
// projection and derived-measure computation.
func (r *renderCtx) renderPreAggregate() (string, error) {
	base := r.plan.BaseAlias()
	baseDims := filterByAlias(r.plan.Dimensions, base)
	joinedDims := excludeByAlias(r.plan.Dimensions, base)

	passthrough, err := r.passthroughJoinKeys()
	if err != nil {
		return "", err
	}

	innerCols, err := r.aggregateSelectList(baseDims, r.plan.AggregateLayer)
	if err != nil {
		return "", err
	}
	innerCols = append(innerCols, passthrough.selectExprs...)

	baseRef, err := r.qualifiedTableRef(base)
	if err != nil {
		return "", err
	}

	var inner strings.Builder
	inner.WriteString("SELECT ")
	inner.WriteString(strings.Join(innerCols, ", "))
	inner.WriteString(" FROM ")
	inner.WriteString(baseRef)

	var whereParts []string
	if len(r.plan.BaseFilters) > 0 {
		w, err := r.renderFilterList(r.plan.BaseFilters)
		if err != nil {
			return "", err
		}
		whereParts = append(whereParts, w)
	}
	if len(r.plan.JoinedFilters) > 0 {
		exists, err := r.renderExistsSemiJoin()
		if err != nil {
			return "", err
		}
		whereParts = append(whereParts, exists)
	}
	if len(whereParts) > 0 {
		inner.WriteString(" WHERE ")
		inner.WriteString(strings.Join(whereParts, " AND "))
	}
	groupRefs := append(r.sourceRefs(baseDims), passthrough.groupExprs...)
	if len(groupRefs) > 0 {
		inner.WriteString(" GROUP BY ")
		inner.WriteString(strings.Join(groupRefs, ", "))
	}

	outerFrom, err := r.outerFromWithPassthrough(inner.String(), passthrough)
	if err != nil {
		return "", err
	}

	outerCols, err := r.outerProjection(baseDims, joinedDims)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(strings.Join(outerCols, ", "))
	b.WriteString(" FROM ")
	b.WriteString(outerFrom)

	if err := r.appendOrderAndPagination(&b); err != nil {
		return "", err
	}
	return b.String(), nil
}

var bareIdentRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// identTokenRe extracts candidate identifier tokens from a derived
// measure's post_expr, the same lightweight approach the validator and
// catalog packages use to find sibling-measure references without a full
// expression parser (Non-goals excludes one).
var identTokenRe = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)

// sourceExpr renders f's catalog expression, alias-qualified when it is a
// bare column reference. Non-goals excludes rewriting user-supplied
// expressions, so a multi-token expr (a function call, arithmetic) is
// emitted verbatim, parenthesized, and trusted to already be valid SQL in
// the context of alias — the catalog author's responsibility, the same
// trust boundary placed on any raw SQL fragment this layer does not parse.
func (r *renderCtx) sourceExpr(alias, expr string) string {
	if bareIdentRe.MatchString(expr) {
		return r.caps.QuoteIdent(alias) + "." + r.caps.QuoteIdent(expr)
	}
	return "(" + expr + ")"
}

func (r *renderCtx) sourceRefs(fields []request.Field) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = r.sourceExpr(f.Alias, f.Expr())
	}
	return out
}

func fmtErr(format string, args ...interface{}) error {
	return semaerr.ErrRenderFailure.New(fmt.Sprintf(format, args...))
}

func filterByAlias(fields []request.Field, alias string) []request.Field {
	var out []request.Field
	for _, f := range fields {
		if f.Alias == alias {
			out = append(out, f)
		}
	}
	return out
}

func excludeByAlias(fields []request.Field, alias string) []request.Field {
	var out []request.Field
	for _, f := range fields {
		if f.Alias != alias {
			out = append(out, f)
		}
	}
	return out
}
