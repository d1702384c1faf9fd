package main

import (
	"context"
	"fmt"

	"github.com/semaflow-labs/semaflow/catalog"
	"github.com/semaflow-labs/semaflow/catalogio"
	"github.com/semaflow-labs/semaflow/config"
	"github.com/semaflow-labs/semaflow/registry"
)

// loadCatalog reads the catalog directory tree via catalogio. It does not
// call Build itself — semaflow.FromParts/FromDir does that as part of
// handle construction, so a caller needing just the raw Catalog (the
// validate subcommand) can still surface Build's error distinctly.
func loadCatalog(dir string) (*catalog.Catalog, error) {
	return catalogio.LoadDir(dir)
}

// loadConfig reads path if non-empty, returning an empty Config otherwise
// so downstream code never needs a nil check.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return &config.Config{}, nil
	}
	return config.Load(path)
}

// buildClients constructs and connects one BackendClient per data source
// declared in cat, merging each data source's catalog params with any
// matching config.DataSourceConfig override.
func buildClients(ctx context.Context, cat *catalog.Catalog, cfg *config.Config) (map[string]registry.BackendClient, error) {
	clients := make(map[string]registry.BackendClient, len(cat.DataSources))
	for name, ds := range cat.DataSources {
		merged := mergeParams(ds, cfg)

		switch ds.Kind {
		case catalog.BackendDuckDB:
			c, err := registry.NewDuckDBClient(ctx, merged)
			if err != nil {
				return nil, err
			}
			clients[name] = c
		case catalog.BackendPostgres:
			c, err := registry.NewPostgresClient(ctx, merged)
			if err != nil {
				return nil, err
			}
			clients[name] = c
		case catalog.BackendBigQuery:
			c, err := registry.NewBigQueryClient(ctx, merged)
			if err != nil {
				return nil, err
			}
			clients[name] = c
		default:
			return nil, fmt.Errorf("semaflowd: data source %q: unsupported backend kind %q", name, ds.Kind)
		}
	}
	return clients, nil
}

func mergeParams(ds catalog.DataSource, cfg *config.Config) catalog.DataSource {
	override, ok := cfg.DataSources[ds.Name]
	if !ok {
		return ds
	}
	merged := make(map[string]string, len(ds.Params)+len(override.Params))
	for k, v := range ds.Params {
		merged[k] = v
	}
	for k, v := range override.Params {
		merged[k] = v
	}
	ds.Params = merged
	return ds
}
