package semaflow

import (
	"github.com/semaflow-labs/semaflow/catalogio"
	"github.com/semaflow-labs/semaflow/registry"
)

// FromDir builds a Handle by loading a catalog directory tree via
// catalogio.LoadDir, then delegates to FromParts — §4.7 "from_dir ... the
// product type it yields is identical" to from_parts.
func FromDir(dir string, clients map[string]registry.BackendClient, opts ...Option) (*Handle, error) {
	cat, err := catalogio.LoadDir(dir)
	if err != nil {
		return nil, err
	}
	return FromParts(cat, clients, opts...)
}
