package render

import (
	"strconv"

	"github.com/semaflow-labs/semaflow/dialect"
)

// paramBinder accumulates bound values in emission order and renders the
// placeholder text appropriate to the dialect's ParamStyle (§4.4
// "Parameter placeholder styles"). Values and ParamNames end up on the
// rendered Query in the same order placeholders were emitted, which is
// also the order WHERE and LIMIT/OFFSET clauses are rendered in — left to
// right, top to bottom.
type paramBinder struct {
	values []interface{}
	names  []string
}

func (b *paramBinder) bind(style dialect.ParamStyle, value interface{}) string {
	b.values = append(b.values, value)
	switch style {
	case dialect.ParamDollar:
		return "$" + strconv.Itoa(len(b.values))
	case dialect.ParamNamed:
		name := "p" + strconv.Itoa(len(b.values)-1)
		b.names = append(b.names, name)
		return "@" + name
	default:
		return "?"
	}
}

func (r *renderCtx) bindParam(v interface{}) string {
	return r.binder.bind(r.caps.ParamStyle, v)
}
