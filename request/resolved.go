package request

import "github.com/semaflow-labs/semaflow/catalog"

// Field is a field rewritten into its canonical (alias, field_name) pair,
// with the originating SemanticTable attached, per the Request Validator's
// guarantee in spec §4.2.
type Field struct {
	Alias string
	Name  string
	Table *catalog.SemanticTable
}

// Qualified returns the field's canonical "alias.field" form, the same text
// used as the output column alias by the renderer (§4.4 Identifier policy).
func (f Field) Qualified() string {
	return f.Alias + "." + f.Name
}

// Expr returns the catalog expression backing this field: a Dimension's
// Expr or an aggregate Measure's Expr. Panics if Table is nil or Name
// names neither, which would mean the validator resolved a Field that
// does not actually exist on its Table — a validator bug, not a request
// error, so a panic here surfaces it loudly during development instead of
// rendering silently-wrong SQL.
func (f Field) Expr() string {
	if d, ok := f.Table.Dimensions[f.Name]; ok {
		return d.Expr
	}
	if m, ok := f.Table.Measures[f.Name]; ok && m.Kind == catalog.MeasureAggregate {
		return m.Expr
	}
	panic("request: Field " + f.Qualified() + " does not resolve to a dimension or aggregate measure expr")
}

// ResolvedMeasure is a Field tagged with its MeasureKind and, for derived
// measures, the base measures (on the same alias) it depends on — resolved
// transitively, so a derived measure that depends on another derived
// measure carries every aggregate measure at the bottom of that chain.
type ResolvedMeasure struct {
	Field
	Kind         catalog.MeasureKind
	Measure      catalog.Measure
	Dependencies []ResolvedMeasure // empty for aggregate measures
}

// ResolvedFilter is a Filter rewritten against a canonical Field.
type ResolvedFilter struct {
	Field Field
	Op    FilterOp
	Value interface{}
}

// ResolvedOrder is an OrderItem rewritten against a canonical Field.
type ResolvedOrder struct {
	Field     Field
	Direction Direction
}

// Resolved is the output of validation: a Request rewritten so every stage
// downstream (Plan Builder, SQL Renderer) operates on canonical data rather
// than re-deriving it from strings.
type Resolved struct {
	Flow *catalog.SemanticFlow

	// AliasTables resolves every alias declared in Flow (base and joined)
	// to its SemanticTable, so later stages never need the Catalog itself.
	AliasTables map[string]*catalog.SemanticTable

	Dimensions []Field
	Measures   []ResolvedMeasure
	Filters    []ResolvedFilter
	Order      []ResolvedOrder

	Limit  *int
	Offset *int

	PageSize *int
	Cursor   string
}
