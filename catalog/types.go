// Package catalog holds the in-memory data model for SemaFlow's semantic
// layer: tables, dimensions, measures, flows and joins. Constructors here
// perform only structural validation (uniqueness of names, non-empty join
// key lists) so that incremental construction APIs can build a catalog
// piece by piece without tripping over cross-entity invariants that can
// only be checked once the whole graph is assembled. That deeper pass lives
// in Build.
package catalog

// DataType is the declared type of a dimension or the inferred type of a
// measure. It is advisory: SemaFlow never type-checks expression text
// against it, only uses it for TypeMismatch checks against filter/order
// values and for the schema introspection endpoint (§6).
type DataType string

const (
	DataTypeUnknown   DataType = ""
	DataTypeString    DataType = "string"
	DataTypeInt       DataType = "int"
	DataTypeFloat     DataType = "float"
	DataTypeBool      DataType = "bool"
	DataTypeTimestamp DataType = "timestamp"
)

// AggFunc is the aggregation function of an aggregate measure.
type AggFunc string

const (
	AggSum           AggFunc = "sum"
	AggCount         AggFunc = "count"
	AggCountDistinct AggFunc = "count_distinct"
	AggMin           AggFunc = "min"
	AggMax           AggFunc = "max"
	AggAvg           AggFunc = "avg"
)

// ValidAggFuncs lists every AggFunc the renderer knows how to emit.
var ValidAggFuncs = map[AggFunc]bool{
	AggSum: true, AggCount: true, AggCountDistinct: true,
	AggMin: true, AggMax: true, AggAvg: true,
}

// ResultDataType reports the type a measure using this agg produces, used
// for the schema introspection endpoint's inferred data_type (SPEC_FULL.md
// "Schema introspection endpoint shape").
func (a AggFunc) ResultDataType() DataType {
	switch a {
	case AggCount, AggCountDistinct:
		return DataTypeInt
	default:
		return DataTypeFloat
	}
}

// JoinType is the SQL join variety a FlowJoin renders as.
type JoinType string

const (
	JoinInner JoinType = "inner"
	JoinLeft  JoinType = "left"
	JoinRight JoinType = "right"
	JoinFull  JoinType = "full"
)

var validJoinTypes = map[JoinType]bool{
	JoinInner: true, JoinLeft: true, JoinRight: true, JoinFull: true,
}
