package render

import (
	"strings"

	"github.com/semaflow-labs/semaflow/catalog"
	"github.com/semaflow-labs/semaflow/request"
)

// aggregateSelectList builds the SELECT list for an aggregate-layer query:
// every dimension's source expression followed by every measure's
// aggregate call, each aliased to its canonical qualified name so the
// order/pagination stage and the outer projection stage (when one exists)
// can both reference columns by that name alone.
func (r *renderCtx) aggregateSelectList(dims []request.Field, measures []request.ResolvedMeasure) ([]string, error) {
	cols := make([]string, 0, len(dims)+len(measures))
	for _, d := range dims {
		cols = append(cols, r.sourceExpr(d.Alias, d.Expr())+" AS "+r.caps.QuoteIdent(d.Qualified()))
	}
	for _, m := range measures {
		expr, err := r.aggregateExprFor(m)
		if err != nil {
			return nil, err
		}
		cols = append(cols, expr+" AS "+r.caps.QuoteIdent(m.Qualified()))
	}
	return cols, nil
}

// aggregateExprFor renders one aggregate measure's SQL, applying its
// catalog-declared filter predicate via FILTER (WHERE ...) when the
// dialect supports it, or a CASE-expression fallback otherwise (§4.4
// "Filtered aggregate" capability row).
func (r *renderCtx) aggregateExprFor(m request.ResolvedMeasure) (string, error) {
	if m.Kind != catalog.MeasureAggregate {
		return "", fmtErr("measure %s is not an aggregate measure", m.Qualified())
	}
	measure := m.Measure
	inner := r.sourceExpr(m.Alias, measure.Expr)
	call := renderAggCall(measure.Agg, inner)
	if measure.Filter == "" {
		return call, nil
	}

	// measure.Filter is a raw predicate, not parsed by this layer (Non-goals
	// excludes rewriting user-supplied expressions): trusted verbatim, the
	// same boundary sourceExpr applies to a non-bare dimension/measure expr.
	pred := "(" + measure.Filter + ")"
	if r.caps.FilteredAggregateSupported {
		return call + " FILTER (WHERE " + pred + ")", nil
	}
	return renderAggCallCaseFallback(measure.Agg, inner, pred), nil
}

func renderAggCall(agg catalog.AggFunc, inner string) string {
	if agg == catalog.AggCountDistinct {
		return "COUNT(DISTINCT " + inner + ")"
	}
	return strings.ToUpper(string(agg)) + "(" + inner + ")"
}

func renderAggCallCaseFallback(agg catalog.AggFunc, inner, pred string) string {
	if agg == catalog.AggCountDistinct {
		return "COUNT(DISTINCT CASE WHEN " + pred + " THEN " + inner + " END)"
	}
	caseExpr := "CASE WHEN " + pred + " THEN " + inner + " ELSE NULL END"
	return renderAggCall(agg, caseExpr)
}

// derivedValueExpr renders m's value as a standalone SQL expression read
// against the aggregate layer, which is always wrapped as the aggAlias
// subquery when this is called. An aggregate measure becomes an
// aggAlias column reference; a derived measure inlines
// its post_expr with every sibling-measure token substituted recursively,
// so a derived measure may depend on another derived measure without the
// intermediate ever needing its own aggregate-layer column.
func (r *renderCtx) derivedValueExpr(m request.ResolvedMeasure) string {
	if m.Kind == catalog.MeasureAggregate {
		return r.caps.QuoteIdent(aggAlias) + "." + r.caps.QuoteIdent(m.Qualified())
	}

	depsByName := make(map[string]request.ResolvedMeasure, len(m.Dependencies))
	for _, d := range m.Dependencies {
		depsByName[d.Name] = d
	}
	substituted := identTokenRe.ReplaceAllStringFunc(m.Measure.PostExpr, func(tok string) string {
		dep, ok := depsByName[tok]
		if !ok {
			return tok
		}
		return r.derivedValueExpr(dep)
	})
	return "(" + substituted + ")"
}

// outerProjection builds the SELECT list of a wrapping outer query: base
// dimensions are read back off the aggregate layer, joined dimensions are
// read directly off their own alias (only populated for pre-aggregate
// plans, where the outer query actually joins those aliases), and every
// requested measure is projected by kind.
func (r *renderCtx) outerProjection(baseDims, joinedDims []request.Field) ([]string, error) {
	cols := make([]string, 0, len(baseDims)+len(joinedDims)+len(r.plan.ProjectedMeasures))
	for _, d := range baseDims {
		ref := r.caps.QuoteIdent(aggAlias) + "." + r.caps.QuoteIdent(d.Qualified())
		cols = append(cols, ref+" AS "+r.caps.QuoteIdent(d.Qualified()))
	}
	for _, d := range joinedDims {
		cols = append(cols, r.sourceExpr(d.Alias, d.Expr())+" AS "+r.caps.QuoteIdent(d.Qualified()))
	}
	for _, m := range r.plan.ProjectedMeasures {
		cols = append(cols, r.derivedValueExpr(m)+" AS "+r.caps.QuoteIdent(m.Qualified()))
	}
	return cols, nil
}
