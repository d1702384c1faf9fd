package catalog

// SemanticTable is a logical table bound to one data source: the unit a
// SemanticFlow joins together. Its Dimensions and Measures maps are the
// source of every qualified name (`alias.field`) a flow can expose.
type SemanticTable struct {
	Name           string
	DataSourceName string
	Table          string // physical identifier
	PrimaryKey     string // optional; empty means unset
	TimeDimension  string // optional; must name a key of Dimensions

	Dimensions map[string]Dimension
	Measures   map[string]Measure

	// Columns is the declarative list of physical columns on Table, used
	// by Build to check that simple (single-identifier) dimension and
	// measure expressions, primary keys, and join key columns reference a
	// real column. It is optional: an empty list skips the check rather
	// than rejecting every table that doesn't supply one, since many
	// catalogs are built from introspection-free YAML where listing every
	// column is extra ceremony the spec does not require.
	Columns []string

	Description string
}

// NewSemanticTable builds a SemanticTable from already-constructed
// Dimensions and Measures, checking only uniqueness of names within each
// map (duplicate keys can't happen via a Go map literal, but callers building
// incrementally from a slice can still collide) and that TimeDimension, if
// set, names a key of dimensions. Whether single-identifier Measure and
// Dimension exprs reference a column in Columns (when Columns is set) is
// checked later by Build, together with the derived-measure DAG.
func NewSemanticTable(
	name, dataSourceName, physicalTable string,
	dimensions []Dimension,
	measures []Measure,
	opts ...TableOption,
) (*SemanticTable, error) {
	if name == "" {
		return nil, errStructural("table name must not be empty")
	}
	if dataSourceName == "" {
		return nil, errStructural("table %q: data_source_name must not be empty", name)
	}
	if physicalTable == "" {
		return nil, errStructural("table %q: physical table must not be empty", name)
	}

	dimMap := make(map[string]Dimension, len(dimensions))
	for _, d := range dimensions {
		if _, exists := dimMap[d.Name]; exists {
			return nil, errStructural("table %q: duplicate dimension %q", name, d.Name)
		}
		dimMap[d.Name] = d
	}

	measureMap := make(map[string]Measure, len(measures))
	for _, m := range measures {
		if _, exists := measureMap[m.Name]; exists {
			return nil, errStructural("table %q: duplicate measure %q", name, m.Name)
		}
		measureMap[m.Name] = m
	}

	t := &SemanticTable{
		Name:           name,
		DataSourceName: dataSourceName,
		Table:          physicalTable,
		Dimensions:     dimMap,
		Measures:       measureMap,
	}
	for _, opt := range opts {
		opt(t)
	}

	if t.TimeDimension != "" {
		if _, ok := dimMap[t.TimeDimension]; !ok {
			return nil, errStructural("table %q: time_dimension %q is not a declared dimension", name, t.TimeDimension)
		}
	}

	return t, nil
}

// TableOption customizes an optional SemanticTable attribute.
type TableOption func(*SemanticTable)

func WithPrimaryKey(col string) TableOption {
	return func(t *SemanticTable) { t.PrimaryKey = col }
}

func WithTimeDimension(name string) TableOption {
	return func(t *SemanticTable) { t.TimeDimension = name }
}

func WithTableDescription(desc string) TableOption {
	return func(t *SemanticTable) { t.Description = desc }
}

func WithColumns(cols []string) TableOption {
	return func(t *SemanticTable) {
		t.Columns = append([]string(nil), cols...)
	}
}
