package catalog

// MeasureKind tags which of the two Measure variants spec §3 describes a
// given Measure is.
type MeasureKind int

const (
	// MeasureAggregate is {expr, agg, filter?}: a row-level expression
	// reduced by an aggregate function, optionally restricted by a filter
	// predicate rendered as a filtered aggregate (§4.4).
	MeasureAggregate MeasureKind = iota
	// MeasureDerived is {post_expr}: an expression referring to other
	// measures by qualified name, evaluated after aggregation.
	MeasureDerived
)

func (k MeasureKind) String() string {
	if k == MeasureDerived {
		return "derived"
	}
	return "aggregate"
}

// Measure is a numeric field exported by a SemanticTable: either an
// aggregate measure or a derived measure. Go has no sum types, so the two
// variants share a struct tagged by Kind, the way the teacher tags opcode
// variants in sql/expression rather than using an interface per variant —
// simpler here since there are exactly two shapes and no per-variant
// behavior beyond field access.
type Measure struct {
	Name        string
	Kind        MeasureKind
	Description string

	// Aggregate fields, set iff Kind == MeasureAggregate.
	Expr   string
	Agg    AggFunc
	Filter string // optional predicate; empty means unfiltered

	// Derived fields, set iff Kind == MeasureDerived.
	PostExpr string
}

// NewAggregateMeasure builds an aggregate measure. filter may be empty.
func NewAggregateMeasure(name, expr string, agg AggFunc, opts ...MeasureOption) (Measure, error) {
	if name == "" {
		return Measure{}, errStructural("measure name must not be empty")
	}
	if expr == "" {
		return Measure{}, errStructural("measure %q: expr must not be empty", name)
	}
	if !ValidAggFuncs[agg] {
		return Measure{}, errStructural("measure %q: unknown agg %q", name, agg)
	}
	m := Measure{Name: name, Kind: MeasureAggregate, Expr: expr, Agg: agg}
	for _, opt := range opts {
		opt(&m)
	}
	return m, nil
}

// NewDerivedMeasure builds a derived measure. postExpr is not parsed here;
// its referenced measure names are extracted and DAG-checked in Build.
func NewDerivedMeasure(name, postExpr string, opts ...MeasureOption) (Measure, error) {
	if name == "" {
		return Measure{}, errStructural("measure name must not be empty")
	}
	if postExpr == "" {
		return Measure{}, errStructural("measure %q: post_expr must not be empty", name)
	}
	m := Measure{Name: name, Kind: MeasureDerived, PostExpr: postExpr}
	for _, opt := range opts {
		opt(&m)
	}
	return m, nil
}

// MeasureOption customizes an optional Measure attribute.
type MeasureOption func(*Measure)

func WithMeasureDescription(desc string) MeasureOption {
	return func(m *Measure) { m.Description = desc }
}

// WithMeasureFilter sets the per-aggregate filter predicate (§4.1 Open
// Questions: supported on aggregate measures even though no catalog sample
// exercises it directly). Calling this on a derived measure is a
// programmer error caught by Build.
func WithMeasureFilter(pred string) MeasureOption {
	return func(m *Measure) { m.Filter = pred }
}
