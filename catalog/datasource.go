package catalog

// BackendKind names the family of backend client a DataSource is served by.
// The renderer's Dialect is inferred from this, never supplied by a
// request (§6 Configuration knobs).
type BackendKind string

const (
	BackendDuckDB   BackendKind = "duckdb"
	BackendPostgres BackendKind = "postgres"
	BackendBigQuery BackendKind = "bigquery"
)

// DataSource describes one backend a SemanticTable can be bound to. It
// carries no live connection: connection establishment is the Connection
// Registry's concern (C5), out of the catalog's scope.
type DataSource struct {
	Name   string
	Kind   BackendKind
	Params map[string]string // dialect-specific: dsn, project, dataset, ...
}

// NewDataSource builds a DataSource descriptor.
func NewDataSource(name string, kind BackendKind, params map[string]string) (DataSource, error) {
	if name == "" {
		return DataSource{}, errStructural("data source name must not be empty")
	}
	switch kind {
	case BackendDuckDB, BackendPostgres, BackendBigQuery:
	default:
		return DataSource{}, errStructural("data source %q: unknown backend kind %q", name, kind)
	}
	cp := make(map[string]string, len(params))
	for k, v := range params {
		cp[k] = v
	}
	return DataSource{Name: name, Kind: kind, Params: cp}, nil
}
