// Package catalogio implements the from_dir catalog-loading path (§4.7):
// a directory tree of small, explicitly yaml-tagged files — one per
// semantic table, one per flow, and one data_sources.yaml — assembled into
// a *catalog.Catalog and handed to catalog.Build for cross-entity
// validation, following the teacher's pattern of typed config structs
// rather than generic map[string]interface{} decoding.
package catalogio

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/semaflow-labs/semaflow/catalog"
)

// LoadDir reads every *.yaml file under dir and assembles a Catalog. Table
// files live under dir/tables/, flow files under dir/flows/, and the single
// data sources file is dir/data_sources.yaml. The returned Catalog has not
// yet been through Build; callers (FromDir) are responsible for that.
func LoadDir(dir string) (*catalog.Catalog, error) {
	cat := catalog.New()

	tables, err := loadTables(filepath.Join(dir, "tables"))
	if err != nil {
		return nil, err
	}
	for _, t := range tables {
		cat.AddTable(t)
	}

	flows, err := loadFlows(filepath.Join(dir, "flows"))
	if err != nil {
		return nil, err
	}
	for _, f := range flows {
		cat.AddFlow(f)
	}

	sources, err := loadDataSources(filepath.Join(dir, "data_sources.yaml"))
	if err != nil {
		return nil, err
	}
	for _, ds := range sources {
		cat.AddDataSource(ds)
	}

	return cat, nil
}

func yamlFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("catalogio: reading %s: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasSuffix(e.Name(), ".yaml") || strings.HasSuffix(e.Name(), ".yml") {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

func readYAML(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("catalogio: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("catalogio: parsing %s: %w", path, err)
	}
	return nil
}
