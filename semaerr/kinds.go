// Package semaerr defines the error kinds produced by every stage of the
// SemaFlow pipeline, from catalog construction through backend execution.
//
// Each kind is a gopkg.in/src-d/go-errors.v1 Kind: a reusable template that
// produces a stack-carrying error when instantiated with New. Callers that
// need to distinguish one failure mode from another should use the Kind's
// own Is method (ErrUnknownFlow.Is(err)), never match on message text.
package semaerr

import errorkit "gopkg.in/src-d/go-errors.v1"

// Kinds are listed in the order of specificity given in spec §7.
var (
	// ErrCatalogInvalid is returned from handle construction when the
	// catalog fails cross-entity validation: a dangling alias reference, a
	// measure or dimension expr referencing a column absent from its
	// table, or a cycle in the derived-measure dependency graph.
	ErrCatalogInvalid = errorkit.NewKind("catalog invalid: %s")

	// ErrUnknownFlow is returned when a request names a flow the catalog
	// does not contain.
	ErrUnknownFlow = errorkit.NewKind("unknown flow: %s")

	// ErrUnknownField is returned when a request references a dimension or
	// measure name that cannot be resolved against any in-scope alias.
	ErrUnknownField = errorkit.NewKind("unknown field: %s")

	// ErrAmbiguous is returned when an unqualified field name resolves to
	// more than one alias within the flow.
	ErrAmbiguous = errorkit.NewKind("ambiguous field: %s")

	// ErrTypeMismatch is returned when a filter value's type is
	// incompatible with the operator or the field's declared data type.
	ErrTypeMismatch = errorkit.NewKind("type mismatch: %s")

	// ErrUnsupportedOp is returned for a filter operator the field or
	// dialect cannot express.
	ErrUnsupportedOp = errorkit.NewKind("unsupported operator: %s")

	// ErrMalformedPagination is returned when both limit/offset and
	// page_size/cursor are supplied, or when a cursor fails to decode or
	// carries a stale schema-version tag.
	ErrMalformedPagination = errorkit.NewKind("malformed pagination: %s")

	// ErrPlanInfeasible is returned when a derived measure is requested
	// whose dependencies cannot be computed at the chosen grain.
	ErrPlanInfeasible = errorkit.NewKind("plan infeasible: %s")

	// ErrRenderFailure is returned when the SQL renderer cannot express a
	// resolved plan under the target dialect's capabilities.
	ErrRenderFailure = errorkit.NewKind("render failure: %s")

	// ErrBackendFailure wraps any error surfaced by a backend client
	// during execution, preserving the underlying message verbatim.
	ErrBackendFailure = errorkit.NewKind("backend failure: %s")
)

// WithField formats a Kind error that names the offending field, matching
// the {kind, message, field} shape spec §7 requires without adding a
// parallel struct field to every error type.
func WithField(kind *errorkit.Kind, field string, detail string) error {
	if detail == "" {
		return kind.New(field)
	}
	return kind.New(field + ": " + detail)
}
