package catalogio

import (
	"os"

	"github.com/semaflow-labs/semaflow/catalog"
)

// dataSourcesFile is the yaml shape of data_sources.yaml: a flat list, one
// entry per backend.
type dataSourcesFile struct {
	DataSources []dataSourceFile `yaml:"data_sources"`
}

type dataSourceFile struct {
	Name   string            `yaml:"name"`
	Kind   string            `yaml:"kind"`
	Params map[string]string `yaml:"params"`
}

func loadDataSources(path string) ([]catalog.DataSource, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}

	var df dataSourcesFile
	if err := readYAML(path, &df); err != nil {
		return nil, err
	}

	sources := make([]catalog.DataSource, 0, len(df.DataSources))
	for _, sf := range df.DataSources {
		ds, err := catalog.NewDataSource(sf.Name, catalog.BackendKind(sf.Kind), sf.Params)
		if err != nil {
			return nil, err
		}
		sources = append(sources, ds)
	}
	return sources, nil
}
