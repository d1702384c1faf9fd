package dialect

import (
	"strings"

	"github.com/semaflow-labs/semaflow/catalog"
	"github.com/semaflow-labs/semaflow/semaerr"
)

// QualifyTable renders the fully-qualified physical table reference for
// table under ds, per the "Qualified table reference" row of §4.4's
// capability table: duckdb's schema is optional, postgres requires one
// (defaulted to "public" when the catalog doesn't supply one explicitly),
// and bigquery always needs project.dataset.
func (c Capabilities) QualifyTable(ds catalog.DataSource, table string) (string, error) {
	if strings.Contains(table, ".") {
		parts := strings.Split(table, ".")
		return c.quoteParts(parts), nil
	}

	switch c.Name {
	case DuckDB:
		if db, ok := ds.Params["database"]; ok && db != "" {
			return c.quoteParts([]string{db, table}), nil
		}
		return c.QuoteIdent(table), nil
	case Postgres:
		schema := ds.Params["schema"]
		if schema == "" {
			schema = "public"
		}
		return c.quoteParts([]string{schema, table}), nil
	case BigQuery:
		project := ds.Params["project"]
		dataset := ds.Params["dataset"]
		if project == "" || dataset == "" {
			return "", semaerr.ErrRenderFailure.New("bigquery data source " + ds.Name + " is missing project/dataset")
		}
		// BigQuery standard SQL backtick-quotes the whole
		// project.dataset.table reference as a single identifier, unlike
		// duckdb/postgres where each part is its own identifier.
		return "`" + project + "." + dataset + "." + table + "`", nil
	default:
		return c.QuoteIdent(table), nil
	}
}

func (c Capabilities) quoteParts(parts []string) string {
	quoted := make([]string, len(parts))
	for i, p := range parts {
		quoted[i] = c.QuoteIdent(p)
	}
	return strings.Join(quoted, ".")
}
