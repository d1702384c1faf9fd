package semaerr

import (
	"net/http"

	errorkit "gopkg.in/src-d/go-errors.v1"
)

var httpStatus = []struct {
	kind   *errorkit.Kind
	status int
}{
	{ErrCatalogInvalid, http.StatusInternalServerError},
	{ErrUnknownFlow, http.StatusNotFound},
	{ErrUnknownField, http.StatusBadRequest},
	{ErrAmbiguous, http.StatusBadRequest},
	{ErrTypeMismatch, http.StatusBadRequest},
	{ErrUnsupportedOp, http.StatusBadRequest},
	{ErrMalformedPagination, http.StatusBadRequest},
	{ErrPlanInfeasible, http.StatusBadRequest},
	{ErrRenderFailure, http.StatusInternalServerError},
	{ErrBackendFailure, http.StatusInternalServerError},
}

// HTTPStatus maps an error produced anywhere in the SemaFlow pipeline to the
// status code the HTTP surface (§6) should return for it. Errors not
// produced by this package classify as 500, matching the teacher's
// CastSQLError fallback to ERUnknownError for anything it doesn't recognize.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	for _, e := range httpStatus {
		if e.kind.Is(err) {
			return e.status
		}
	}
	return http.StatusInternalServerError
}

// Classify returns the Kind that produced err, or nil if err was not raised
// through this package.
func Classify(err error) *errorkit.Kind {
	if err == nil {
		return nil
	}
	for _, e := range httpStatus {
		if e.kind.Is(err) {
			return e.kind
		}
	}
	return nil
}
