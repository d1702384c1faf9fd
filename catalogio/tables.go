package catalogio

import (
	"github.com/semaflow-labs/semaflow/catalog"
)

// tableFile is the yaml shape of one file under tables/.
type tableFile struct {
	Name           string          `yaml:"name"`
	DataSourceName string          `yaml:"data_source_name"`
	Table          string          `yaml:"table"`
	PrimaryKey     string          `yaml:"primary_key"`
	TimeDimension  string          `yaml:"time_dimension"`
	Columns        []string        `yaml:"columns"`
	Description    string          `yaml:"description"`
	Dimensions     []dimensionFile `yaml:"dimensions"`
	Measures       []measureFile   `yaml:"measures"`
}

type dimensionFile struct {
	Name        string `yaml:"name"`
	Expr        string `yaml:"expr"`
	DataType    string `yaml:"data_type"`
	Description string `yaml:"description"`
}

type measureFile struct {
	Name string `yaml:"name"`
	Kind string `yaml:"kind"` // "aggregate" (default) or "derived"

	// Aggregate fields.
	Expr   string `yaml:"expr"`
	Agg    string `yaml:"agg"`
	Filter string `yaml:"filter"`

	// Derived fields.
	PostExpr string `yaml:"post_expr"`

	Description string `yaml:"description"`
}

func loadTables(dir string) ([]*catalog.SemanticTable, error) {
	files, err := yamlFiles(dir)
	if err != nil {
		return nil, err
	}

	var tables []*catalog.SemanticTable
	for _, path := range files {
		var tf tableFile
		if err := readYAML(path, &tf); err != nil {
			return nil, err
		}
		t, err := buildTable(tf)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, nil
}

func buildTable(tf tableFile) (*catalog.SemanticTable, error) {
	dims := make([]catalog.Dimension, 0, len(tf.Dimensions))
	for _, df := range tf.Dimensions {
		opts := []catalog.DimensionOption{}
		if df.Description != "" {
			opts = append(opts, catalog.WithDimensionDescription(df.Description))
		}
		if df.DataType != "" {
			opts = append(opts, catalog.WithDimensionDataType(catalog.DataType(df.DataType)))
		}
		d, err := catalog.NewDimension(df.Name, df.Expr, opts...)
		if err != nil {
			return nil, err
		}
		dims = append(dims, d)
	}

	measures := make([]catalog.Measure, 0, len(tf.Measures))
	for _, mf := range tf.Measures {
		m, err := buildMeasure(mf)
		if err != nil {
			return nil, err
		}
		measures = append(measures, m)
	}

	opts := []catalog.TableOption{}
	if tf.PrimaryKey != "" {
		opts = append(opts, catalog.WithPrimaryKey(tf.PrimaryKey))
	}
	if tf.TimeDimension != "" {
		opts = append(opts, catalog.WithTimeDimension(tf.TimeDimension))
	}
	if tf.Description != "" {
		opts = append(opts, catalog.WithTableDescription(tf.Description))
	}
	if len(tf.Columns) > 0 {
		opts = append(opts, catalog.WithColumns(tf.Columns))
	}

	return catalog.NewSemanticTable(tf.Name, tf.DataSourceName, tf.Table, dims, measures, opts...)
}

func buildMeasure(mf measureFile) (catalog.Measure, error) {
	opts := []catalog.MeasureOption{}
	if mf.Description != "" {
		opts = append(opts, catalog.WithMeasureDescription(mf.Description))
	}

	if mf.Kind == "derived" {
		return catalog.NewDerivedMeasure(mf.Name, mf.PostExpr, opts...)
	}

	if mf.Filter != "" {
		opts = append(opts, catalog.WithMeasureFilter(mf.Filter))
	}
	return catalog.NewAggregateMeasure(mf.Name, mf.Expr, catalog.AggFunc(mf.Agg), opts...)
}
