package render

import (
	"strings"

	"github.com/semaflow-labs/semaflow/catalog"
)

func joinKeyword(jt catalog.JoinType) string {
	switch jt {
	case catalog.JoinLeft:
		return "LEFT JOIN"
	case catalog.JoinRight:
		return "RIGHT JOIN"
	case catalog.JoinFull:
		return "FULL JOIN"
	default:
		return "JOIN"
	}
}

// renderJoinOnParts renders j's ON clause linking j.ToTableAlias (the
// earlier-declared side) to j.Alias (the newly joined side). JoinKey.LeftCol
// names a column on the ToTableAlias side, RightCol a column on the Alias
// side — the same convention catalog.Build checks join keys against.
func (r *renderCtx) renderJoinOnParts(j catalog.FlowJoin) string {
	parts := make([]string, len(j.JoinKeys))
	for i, k := range j.JoinKeys {
		left := r.caps.QuoteIdent(j.ToTableAlias) + "." + r.caps.QuoteIdent(k.LeftCol)
		right := r.caps.QuoteIdent(j.Alias) + "." + r.caps.QuoteIdent(k.RightCol)
		parts[i] = left + " = " + right
	}
	return strings.Join(parts, " AND ")
}

// directFrom renders a FROM clause joining the base table straight to every
// alias in joinedAliases, in the flow's declaration order — used by the
// flat plan shapes, where every referenced alias is joined in one query.
func (r *renderCtx) directFrom(joinedAliases []string) (string, error) {
	baseRef, err := r.qualifiedTableRef(r.plan.BaseAlias())
	if err != nil {
		return "", err
	}

	included := make(map[string]bool, len(joinedAliases))
	for _, a := range joinedAliases {
		included[a] = true
	}

	var b strings.Builder
	b.WriteString(baseRef)
	for _, j := range r.plan.Resolved.Flow.Joins {
		if !included[j.Alias] {
			continue
		}
		ref, err := r.qualifiedTableRef(j.Alias)
		if err != nil {
			return "", err
		}
		b.WriteString(" ")
		b.WriteString(joinKeyword(j.JoinType))
		b.WriteString(" ")
		b.WriteString(ref)
		b.WriteString(" ON ")
		b.WriteString(r.renderJoinOnParts(j))
	}
	return b.String(), nil
}

// passthroughRefs carries the base table's join-key columns through the
// inner aggregate subquery of a pre-aggregate plan, so the outer query can
// still join aggAlias to the other referenced aliases even though those
// columns were never requested as dimensions.
type passthroughRefs struct {
	// selectExprs are appended to the inner aggregate query's SELECT list.
	selectExprs []string
	// groupExprs are the same columns, unaliased, for the inner GROUP BY.
	groupExprs []string
	// onRefs maps a joined alias (whose join hangs directly off base) to
	// its already-rendered "aggAlias.col = alias.col" ON clause parts.
	onRefs map[string][]string
}

// passthroughJoinKeys computes the passthrough columns needed for every
// joined alias in the plan whose join hangs directly off the base alias.
// A join chained off another joined alias needs no passthrough: by the
// time the outer query is built, that other alias is already present in
// the outer FROM clause and the two join directly to each other.
func (r *renderCtx) passthroughJoinKeys() (*passthroughRefs, error) {
	base := r.plan.BaseAlias()
	baseDimCols := make(map[string]bool)
	for _, d := range filterByAlias(r.plan.Dimensions, base) {
		baseDimCols[d.Qualified()] = true
	}

	pt := &passthroughRefs{onRefs: map[string][]string{}}
	seenSelect := map[string]bool{}

	for _, alias := range r.plan.JoinedAliases {
		j, ok := r.plan.Resolved.Flow.JoinByAlias(alias)
		if !ok || j.ToTableAlias != base {
			continue
		}
		parts := make([]string, len(j.JoinKeys))
		for i, k := range j.JoinKeys {
			qualified := base + "." + k.LeftCol
			if !seenSelect[qualified] {
				seenSelect[qualified] = true
				if !baseDimCols[qualified] {
					ref := r.caps.QuoteIdent(base) + "." + r.caps.QuoteIdent(k.LeftCol)
					pt.selectExprs = append(pt.selectExprs, ref+" AS "+r.caps.QuoteIdent(qualified))
					pt.groupExprs = append(pt.groupExprs, ref)
				}
			}
			left := r.caps.QuoteIdent(aggAlias) + "." + r.caps.QuoteIdent(qualified)
			right := r.caps.QuoteIdent(alias) + "." + r.caps.QuoteIdent(k.RightCol)
			parts[i] = left + " = " + right
		}
		pt.onRefs[alias] = parts
	}
	return pt, nil
}

// outerFromWithPassthrough renders the pre-aggregate plan's outer FROM
// clause: the inner aggregate query as a derived table aliased aggAlias,
// joined to every other referenced alias either through the passthrough
// join keys (direct-from-base joins) or, for a join chained off another
// joined alias, a plain ON clause between the two real aliases.
func (r *renderCtx) outerFromWithPassthrough(innerSQL string, pt *passthroughRefs) (string, error) {
	base := r.plan.BaseAlias()

	var b strings.Builder
	b.WriteString("(")
	b.WriteString(innerSQL)
	b.WriteString(") AS ")
	b.WriteString(r.caps.QuoteIdent(aggAlias))

	for _, alias := range r.plan.JoinedAliases {
		j, ok := r.plan.Resolved.Flow.JoinByAlias(alias)
		if !ok {
			continue
		}
		ref, err := r.qualifiedTableRef(alias)
		if err != nil {
			return "", err
		}

		var on string
		if j.ToTableAlias == base {
			parts, ok := pt.onRefs[alias]
			if !ok {
				return "", fmtErr("passthrough join keys missing for alias %s", alias)
			}
			on = strings.Join(parts, " AND ")
		} else {
			on = r.renderJoinOnParts(j)
		}

		b.WriteString(" ")
		b.WriteString(joinKeyword(j.JoinType))
		b.WriteString(" ")
		b.WriteString(ref)
		b.WriteString(" ON ")
		b.WriteString(on)
	}
	return b.String(), nil
}

// renderExistsSemiJoin builds the correlated EXISTS subquery a
// pre-aggregate plan uses to restrict the base table by a joined-alias
// filter without letting the join itself change the base table's grain
// (§4.3 "fan-out-safe joins"). The subquery joins the transitive closure of
// aliases the joined filters reference, correlating back to the
// containing query's base alias in its WHERE clause rather than
// re-declaring it.
func (r *renderCtx) renderExistsSemiJoin() (string, error) {
	base := r.plan.BaseAlias()

	closure := map[string]bool{}
	for _, f := range r.plan.JoinedFilters {
		closure[f.Field.Alias] = true
	}
	for changed := true; changed; {
		changed = false
		for _, j := range r.plan.Resolved.Flow.Joins {
			if closure[j.Alias] && j.ToTableAlias != base && !closure[j.ToTableAlias] {
				closure[j.ToTableAlias] = true
				changed = true
			}
		}
	}

	var chain []catalog.FlowJoin
	for _, j := range r.plan.Resolved.Flow.Joins {
		if closure[j.Alias] {
			chain = append(chain, j)
		}
	}
	if len(chain) == 0 {
		return "", fmtErr("joined filter present but no joined alias resolved into the EXISTS closure")
	}

	var b strings.Builder
	b.WriteString("EXISTS (SELECT 1 FROM ")

	var correlated []string
	for i, j := range chain {
		ref, err := r.qualifiedTableRef(j.Alias)
		if err != nil {
			return "", err
		}
		if i > 0 {
			b.WriteString(" ")
			b.WriteString(joinKeyword(j.JoinType))
			b.WriteString(" ")
		}
		b.WriteString(ref)
		if j.ToTableAlias != base {
			b.WriteString(" ON ")
			b.WriteString(r.renderJoinOnParts(j))
		} else {
			for _, k := range j.JoinKeys {
				left := r.caps.QuoteIdent(base) + "." + r.caps.QuoteIdent(k.LeftCol)
				right := r.caps.QuoteIdent(j.Alias) + "." + r.caps.QuoteIdent(k.RightCol)
				correlated = append(correlated, left+" = "+right)
			}
		}
	}

	filterSQL, err := r.renderFilterList(r.plan.JoinedFilters)
	if err != nil {
		return "", err
	}
	whereParts := append(correlated, filterSQL)

	b.WriteString(" WHERE ")
	b.WriteString(strings.Join(whereParts, " AND "))
	b.WriteString(")")
	return b.String(), nil
}
