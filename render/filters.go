package render

import (
	"strings"

	"github.com/semaflow-labs/semaflow/request"
)

// renderPredicate renders one resolved filter as a SQL boolean expression,
// binding every value through the param binder rather than interpolating
// it — the one invariant that makes this renderer safe against injection
// regardless of what a caller's filter value contains.
func (r *renderCtx) renderPredicate(f request.ResolvedFilter) (string, error) {
	col := r.sourceExpr(f.Field.Alias, f.Field.Expr())

	switch f.Op {
	case request.OpEq:
		return col + " = " + r.bindParam(f.Value), nil
	case request.OpNe:
		return col + " != " + r.bindParam(f.Value), nil
	case request.OpLt:
		return col + " < " + r.bindParam(f.Value), nil
	case request.OpLe:
		return col + " <= " + r.bindParam(f.Value), nil
	case request.OpGt:
		return col + " > " + r.bindParam(f.Value), nil
	case request.OpGe:
		return col + " >= " + r.bindParam(f.Value), nil
	case request.OpIn, request.OpNotIn:
		seq, ok := f.Value.([]interface{})
		if !ok || len(seq) == 0 {
			return "", fmtErr("filter %s: %s requires a non-empty sequence", f.Field.Qualified(), f.Op)
		}
		placeholders := make([]string, len(seq))
		for i, v := range seq {
			placeholders[i] = r.bindParam(v)
		}
		kw := "IN"
		if f.Op == request.OpNotIn {
			kw = "NOT IN"
		}
		return col + " " + kw + " (" + strings.Join(placeholders, ", ") + ")", nil
	case request.OpLike:
		return col + " LIKE " + r.bindParam(f.Value), nil
	case request.OpILike:
		// bigquery has no native ILIKE (§4.4 capability table): fall back
		// to a LOWER()-wrapped LIKE, which is case-insensitive for the same
		// ASCII range ILIKE covers.
		if r.caps.NativeILike {
			return col + " ILIKE " + r.bindParam(f.Value), nil
		}
		return "LOWER(" + col + ") LIKE LOWER(" + r.bindParam(f.Value) + ")", nil
	default:
		return "", fmtErr("filter %s: unsupported operator %q", f.Field.Qualified(), f.Op)
	}
}

func (r *renderCtx) renderFilterList(filters []request.ResolvedFilter) (string, error) {
	parts := make([]string, len(filters))
	for i, f := range filters {
		p, err := r.renderPredicate(f)
		if err != nil {
			return "", err
		}
		parts[i] = p
	}
	return strings.Join(parts, " AND "), nil
}

func (r *renderCtx) appendWhere(b *strings.Builder, filters []request.ResolvedFilter) error {
	if len(filters) == 0 {
		return nil
	}
	sql, err := r.renderFilterList(filters)
	if err != nil {
		return err
	}
	b.WriteString(" WHERE ")
	b.WriteString(sql)
	return nil
}
