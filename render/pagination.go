package render

import (
	"strings"

	"github.com/semaflow-labs/semaflow/request"
)

func (r *renderCtx) appendGroupBy(b *strings.Builder, dims []request.Field) error {
	if len(dims) == 0 {
		return nil
	}
	refs := r.sourceRefs(dims)
	b.WriteString(" GROUP BY ")
	b.WriteString(strings.Join(refs, ", "))
	return nil
}

// appendOrderAndPagination appends ORDER BY (the requested order plus an
// implicit tiebreaker, per tiebreakOrder) and then the pagination clause:
// LIMIT/OFFSET for offset pagination, or LIMIT <page_size> OFFSET <cursor
// offset> for cursor pagination, decoding and schema-checking an incoming
// cursor token first.
//
// Every column ORDER BY references here was aliased by this same query's
// SELECT list as its canonical qualified name (aggregateSelectList and
// outerProjection both guarantee this), so ordering by that alias alone is
// always valid regardless of which render path produced the query.
func (r *renderCtx) appendOrderAndPagination(b *strings.Builder) error {
	order := tiebreakOrder(r.plan)
	if len(order) > 0 {
		parts := make([]string, len(order))
		for i, o := range order {
			dir := "ASC"
			if o.Direction == request.Desc {
				dir = "DESC"
			}
			parts[i] = r.caps.QuoteIdent(o.Field.Qualified()) + " " + dir
		}
		b.WriteString(" ORDER BY ")
		b.WriteString(strings.Join(parts, ", "))
	}

	switch {
	case r.plan.PageSize != nil:
		offset := 0
		if r.plan.Cursor != "" {
			schemaVersion := SchemaVersion(tiebreakFields(order))
			c, err := DecodeCursor(r.plan.Cursor, schemaVersion)
			if err != nil {
				return err
			}
			offset = c.Offset
		}
		b.WriteString(" LIMIT ")
		b.WriteString(r.bindParam(*r.plan.PageSize))
		b.WriteString(" OFFSET ")
		b.WriteString(r.bindParam(offset))
	default:
		if r.plan.Limit != nil {
			b.WriteString(" LIMIT ")
			b.WriteString(r.bindParam(*r.plan.Limit))
		}
		if r.plan.Offset != nil {
			b.WriteString(" OFFSET ")
			b.WriteString(r.bindParam(*r.plan.Offset))
		}
	}
	return nil
}
