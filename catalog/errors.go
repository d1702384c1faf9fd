package catalog

import (
	"fmt"

	"github.com/semaflow-labs/semaflow/semaerr"
)

// errStructural reports a structural violation caught by a constructor,
// classified the same as the deeper cross-entity failures Build reports:
// both are instances of CatalogInvalid, distinguished only by when they are
// caught, not by kind (spec §7 names one kind for handle construction).
func errStructural(format string, args ...interface{}) error {
	return semaerr.ErrCatalogInvalid.New(fmt.Sprintf(format, args...))
}
