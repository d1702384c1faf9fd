package catalog

// Dimension is a row-level value usable for grouping and filtering: an
// expression or bare column name on a SemanticTable's physical table.
type Dimension struct {
	Name        string
	Expr        string
	Description string
	DataType    DataType
}

// NewDimension builds a Dimension. expr must be non-empty; everything else
// is structural and checked here. Whether expr actually references a
// physical column on the owning table is a cross-entity check performed by
// Build, since it requires knowing the table it will be attached to.
func NewDimension(name, expr string, opts ...DimensionOption) (Dimension, error) {
	if name == "" {
		return Dimension{}, errStructural("dimension name must not be empty")
	}
	if expr == "" {
		return Dimension{}, errStructural("dimension %q: expr must not be empty", name)
	}
	d := Dimension{Name: name, Expr: expr}
	for _, opt := range opts {
		opt(&d)
	}
	return d, nil
}

// DimensionOption customizes an optional Dimension attribute.
type DimensionOption func(*Dimension)

func WithDimensionDescription(desc string) DimensionOption {
	return func(d *Dimension) { d.Description = desc }
}

func WithDimensionDataType(dt DataType) DimensionOption {
	return func(d *Dimension) { d.DataType = dt }
}
