package registry

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"github.com/semaflow-labs/semaflow/catalog"
	"github.com/semaflow-labs/semaflow/dialect"
	"github.com/semaflow-labs/semaflow/render"
	"github.com/semaflow-labs/semaflow/semaerr"
)

// BigQueryClient is a cloud warehouse backend client. It has no persistent
// connection to dial; dialWithRetry guards the initial client construction,
// which still performs credential discovery and can fail transiently.
type BigQueryClient struct {
	client *bigquery.Client
	caps   dialect.Capabilities
}

// NewBigQueryClient builds a client scoped to ds.Params["project"], using
// the ambient application-default credentials per the same OAuth2 pattern
// the rest of the DOMAIN STACK follows for cloud clients.
func NewBigQueryClient(ctx context.Context, ds catalog.DataSource) (*BigQueryClient, error) {
	project := ds.Params["project"]
	if project == "" {
		return nil, semaerr.ErrCatalogInvalid.New(fmt.Sprintf("bigquery data source %q is missing project", ds.Name))
	}

	var client *bigquery.Client
	err := dialWithRetry(ctx, func() error {
		c, err := bigquery.NewClient(ctx, project)
		if err != nil {
			return err
		}
		client = c
		return nil
	})
	if err != nil {
		return nil, semaerr.ErrBackendFailure.New(fmt.Sprintf("bigquery: connect to %q: %s", ds.Name, err))
	}

	return &BigQueryClient{client: client, caps: dialect.For(dialect.BigQuery)}, nil
}

func (c *BigQueryClient) Dialect() dialect.Name { return dialect.BigQuery }

func (c *BigQueryClient) Capabilities() dialect.Capabilities { return c.caps }

func (c *BigQueryClient) Execute(ctx context.Context, query *render.Query) (RowIter, error) {
	q := c.client.Query(query.SQL)

	params := make([]bigquery.QueryParameter, len(query.Params))
	for i, v := range query.Params {
		var name string
		if i < len(query.ParamNames) {
			name = query.ParamNames[i]
		}
		params[i] = bigquery.QueryParameter{Name: name, Value: v}
	}
	q.Parameters = params

	it, err := q.Read(ctx)
	if err != nil {
		return nil, semaerr.ErrBackendFailure.New(fmt.Sprintf("bigquery: %s", err))
	}
	return &bigqueryRowIter{it: it}, nil
}

func (c *BigQueryClient) Close() error {
	return c.client.Close()
}

type bigqueryRowIter struct {
	it *bigquery.RowIterator
}

func (ri *bigqueryRowIter) Next(ctx context.Context) (Row, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	var values map[string]bigquery.Value
	err := ri.it.Next(&values)
	if err == iterator.Done {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, semaerr.ErrBackendFailure.New(err.Error())
	}

	row := make(Row, len(values))
	for k, v := range values {
		row[k] = v
	}
	return row, true, nil
}

func (ri *bigqueryRowIter) Close() error { return nil }
