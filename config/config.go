// Package config loads handle-level knobs — row cap, per-dialect
// capability overrides, per-data-source connection parameters — from a
// single YAML file, the same small-typed-struct convention catalogio uses
// for catalog files (§6 "Configuration knobs").
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/semaflow-labs/semaflow/dialect"
)

// DialectOverride flips a Capabilities switch for one dialect, independent
// of any single backend client — §6 "filtered_aggregate_supported may be
// overridden per-process to force the CASE fallback for testing."
type DialectOverride struct {
	FilteredAggregateSupported *bool `yaml:"filtered_aggregate_supported"`
}

// DataSourceConfig carries the connection parameters for one data source,
// keyed by name in Config.DataSources. Params are the same dialect-specific
// key/value pairs catalog.DataSource.Params holds (dsn, project, dataset,
// path, ...); config is the operational complement to the catalog's
// structural DataSource descriptor, not a replacement for it.
type DataSourceConfig struct {
	Params map[string]string `yaml:"params"`
}

// Config is the top-level shape of a handle's configuration file.
type Config struct {
	// RowCap is the soft row cap the Execution Coordinator enforces;
	// zero or absent means no cap.
	RowCap int `yaml:"row_cap"`

	// DialectOverrides is keyed by dialect.Name ("duckdb", "postgres",
	// "bigquery").
	DialectOverrides map[dialect.Name]DialectOverride `yaml:"dialect_overrides"`

	// DataSources is keyed by data source name, matching catalog.DataSource.Name.
	DataSources map[string]DataSourceConfig `yaml:"data_sources"`
}

// Load reads and parses the YAML file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return &cfg, nil
}

// ApplyCapabilities returns caps with any matching DialectOverride applied.
func (c *Config) ApplyCapabilities(caps dialect.Capabilities) dialect.Capabilities {
	if c == nil {
		return caps
	}
	override, ok := c.DialectOverrides[caps.Name]
	if !ok || override.FilteredAggregateSupported == nil {
		return caps
	}
	caps.FilteredAggregateSupported = *override.FilteredAggregateSupported
	return caps
}
