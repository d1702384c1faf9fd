package validator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/semaflow-labs/semaflow/catalog"
	"github.com/semaflow-labs/semaflow/internal/fixtures"
	"github.com/semaflow-labs/semaflow/request"
	"github.com/semaflow-labs/semaflow/semaerr"
	"github.com/semaflow-labs/semaflow/validator"
)

func mustCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := fixtures.SalesCatalog()
	require.NoError(t, err)
	return cat
}

func TestValidateResolvesQualifiedAndBareNames(t *testing.T) {
	cat := mustCatalog(t)

	resolved, err := validator.Validate(cat, "sales", request.Request{
		Dimensions: []string{"c.country"},
		Measures:   []string{"o.order_total"},
	})
	require.NoError(t, err)
	require.Len(t, resolved.Dimensions, 1)
	assert.Equal(t, "c.country", resolved.Dimensions[0].Qualified())
	require.Len(t, resolved.Measures, 1)
	assert.Equal(t, "o.order_total", resolved.Measures[0].Qualified())

	// "status" is unique across the flow's aliases (only orders has it),
	// so the bare name should resolve without qualification.
	resolved2, err := validator.Validate(cat, "sales", request.Request{
		Dimensions: []string{"status"},
		Measures:   []string{"order_total"},
	})
	require.NoError(t, err)
	assert.Equal(t, "o.status", resolved2.Dimensions[0].Qualified())
	assert.Equal(t, "o.order_total", resolved2.Measures[0].Qualified())
}

func TestValidateUnknownFlow(t *testing.T) {
	cat := mustCatalog(t)
	_, err := validator.Validate(cat, "nope", request.Request{Dimensions: []string{"status"}})
	require.Error(t, err)
	assert.True(t, semaerr.ErrUnknownFlow.Is(err))
}

func TestValidateUnknownField(t *testing.T) {
	// S6: dimensions:["c.nope"] -> UnknownField, field="c.nope".
	cat := mustCatalog(t)
	_, err := validator.Validate(cat, "sales", request.Request{
		Dimensions: []string{"c.nope"},
		Measures:   []string{"order_total"},
	})
	require.Error(t, err)
	assert.True(t, semaerr.ErrUnknownField.Is(err))
	assert.Contains(t, err.Error(), "c.nope")
}

func TestValidateRequiresAtLeastOneProjection(t *testing.T) {
	cat := mustCatalog(t)
	_, err := validator.Validate(cat, "sales", request.Request{})
	require.Error(t, err)
	assert.True(t, semaerr.ErrUnsupportedOp.Is(err))
}

func TestValidateOrderColumnMustBeSelected(t *testing.T) {
	cat := mustCatalog(t)
	_, err := validator.Validate(cat, "sales", request.Request{
		Dimensions: []string{"status"},
		Order:      []request.OrderItem{{Column: "country", Direction: request.Desc}},
	})
	require.Error(t, err)
	assert.True(t, semaerr.ErrUnsupportedOp.Is(err))
}

func TestValidateMutuallyExclusivePagination(t *testing.T) {
	cat := mustCatalog(t)
	limit := 10
	pageSize := 10
	_, err := validator.Validate(cat, "sales", request.Request{
		Dimensions: []string{"status"},
		Limit:      &limit,
		PageSize:   &pageSize,
	})
	require.Error(t, err)
	assert.True(t, semaerr.ErrMalformedPagination.Is(err))
}

func TestValidateInRequiresNonEmptySequence(t *testing.T) {
	cat := mustCatalog(t)
	_, err := validator.Validate(cat, "sales", request.Request{
		Dimensions: []string{"status"},
		Filters:    []request.Filter{{Field: "status", Op: request.OpIn, Value: []interface{}{}}},
	})
	require.Error(t, err)
	assert.True(t, semaerr.ErrTypeMismatch.Is(err))
}

func TestValidateLikeRequiresString(t *testing.T) {
	cat := mustCatalog(t)
	_, err := validator.Validate(cat, "sales", request.Request{
		Dimensions: []string{"status"},
		Filters:    []request.Filter{{Field: "status", Op: request.OpLike, Value: 5}},
	})
	require.Error(t, err)
	assert.True(t, semaerr.ErrTypeMismatch.Is(err))
}

func TestValidateUnsupportedOperator(t *testing.T) {
	cat := mustCatalog(t)
	_, err := validator.Validate(cat, "sales", request.Request{
		Dimensions: []string{"status"},
		Filters:    []request.Filter{{Field: "status", Op: "~=", Value: "x"}},
	})
	require.Error(t, err)
	assert.True(t, semaerr.ErrUnsupportedOp.Is(err))
}

func TestValidateDerivedMeasureResolvesDependencies(t *testing.T) {
	// S4: requesting only the derived measure still resolves its base
	// aggregate measures as Dependencies.
	cat := mustCatalog(t)
	resolved, err := validator.Validate(cat, "sales", request.Request{
		Dimensions: []string{"c.country"},
		Measures:   []string{"o.avg_order_amount"},
	})
	require.NoError(t, err)
	require.Len(t, resolved.Measures, 1)
	rm := resolved.Measures[0]
	require.Len(t, rm.Dependencies, 2)
	deps := map[string]bool{}
	for _, d := range rm.Dependencies {
		deps[d.Name] = true
	}
	assert.True(t, deps["order_total"])
	assert.True(t, deps["order_count"])
}
