package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/semaflow-labs/semaflow/config"
	"github.com/semaflow-labs/semaflow/dialect"
)

const sample = `
row_cap: 10000
dialect_overrides:
  bigquery:
    filtered_aggregate_supported: true
data_sources:
  warehouse:
    params:
      dsn: "postgres://localhost/warehouse"
`

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeSample(t)
	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 10000, cfg.RowCap)
	require.Contains(t, cfg.DataSources, "warehouse")
	assert.Equal(t, "postgres://localhost/warehouse", cfg.DataSources["warehouse"].Params["dsn"])
}

func TestApplyCapabilitiesOverridesFilteredAggregate(t *testing.T) {
	path := writeSample(t)
	cfg, err := config.Load(path)
	require.NoError(t, err)

	caps := dialect.For(dialect.BigQuery)
	assert.False(t, caps.FilteredAggregateSupported)

	overridden := cfg.ApplyCapabilities(caps)
	assert.True(t, overridden.FilteredAggregateSupported)
}

func TestApplyCapabilitiesNoOverrideLeavesDefault(t *testing.T) {
	path := writeSample(t)
	cfg, err := config.Load(path)
	require.NoError(t, err)

	caps := dialect.For(dialect.DuckDB)
	overridden := cfg.ApplyCapabilities(caps)
	assert.Equal(t, caps, overridden)
}
