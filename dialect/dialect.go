// Package dialect captures the small capability table spec §4.4 uses to
// parameterize SQL rendering across duckdb, postgres and bigquery, so the
// renderer itself never branches on dialect name directly.
package dialect

// Name identifies one of the three supported SQL dialects.
type Name string

const (
	DuckDB   Name = "duckdb"
	Postgres Name = "postgres"
	BigQuery Name = "bigquery"
)

// ParamStyle is the placeholder syntax a dialect's driver expects.
type ParamStyle int

const (
	// ParamPositional renders "?" for every parameter (duckdb).
	ParamPositional ParamStyle = iota
	// ParamDollar renders "$1", "$2", ... (postgres).
	ParamDollar
	// ParamNamed renders "@p0", "@p1", ... (bigquery).
	ParamNamed
)

// Capabilities is the per-dialect profile the renderer consults. Everything
// here is either a fixed fact about the dialect or an operator-overridable
// switch (FilteredAggregateSupported); it is never inferred from a request.
type Capabilities struct {
	Name Name

	// FilteredAggregateSupported reports whether AGG(expr) FILTER (WHERE
	// pred) is both legal under the dialect's grammar and currently
	// enabled; §6 lets an operator force this false on any dialect to
	// exercise the CASE-fallback path for testing.
	FilteredAggregateSupported bool

	// NativeILike reports whether the dialect has a native ILIKE
	// operator; bigquery does not and needs the LOWER(x) LIKE LOWER(y)
	// rewrite.
	NativeILike bool

	ParamStyle ParamStyle
}

// For returns the fixed capability profile for name, with
// FilteredAggregateSupported at its dialect default (on for duckdb and
// postgres, off for bigquery). Callers needing the override switch should
// flip the returned value's FilteredAggregateSupported field.
func For(name Name) Capabilities {
	switch name {
	case DuckDB:
		return Capabilities{Name: DuckDB, FilteredAggregateSupported: true, NativeILike: true, ParamStyle: ParamPositional}
	case Postgres:
		return Capabilities{Name: Postgres, FilteredAggregateSupported: true, NativeILike: true, ParamStyle: ParamDollar}
	case BigQuery:
		return Capabilities{Name: BigQuery, FilteredAggregateSupported: false, NativeILike: false, ParamStyle: ParamNamed}
	default:
		return Capabilities{Name: name, ParamStyle: ParamPositional}
	}
}

// QuoteIdent quotes a single identifier component unconditionally — the
// Identifier policy in §4.4 never leaves a bare, unquoted identifier in
// rendered SQL, which also makes reserved-word handling moot.
func (c Capabilities) QuoteIdent(name string) string {
	switch c.Name {
	case BigQuery:
		return "`" + name + "`"
	default:
		return `"` + name + `"`
	}
}
