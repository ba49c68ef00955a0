package main

import (
	"fmt"
	"os"

	"github.com/spf13/afero"

	"github.com/halvarsson/permissions/pkg/regfile"
	"github.com/halvarsson/permissions/pkg/registry"
)

// newRegistry builds the one user-id type permctl deals in: plain strings,
// same as the teacher's username-keyed authorizer.
func newRegistry() *registry.Registry[string] {
	return registry.New(
		func(s string) string { return s },
		func(s string) (string, error) { return s, nil },
	)
}

// openRegistry loads path from fs if it exists, or returns an empty
// registry if it doesn't -- a fresh file and a first grant are a normal
// way to start using permctl.
func openRegistry(fs afero.Fs, path string) (*registry.Registry[string], error) {
	r := newRegistry()
	if _, err := fs.Stat(path); os.IsNotExist(err) {
		return r, nil
	}
	if err := regfile.Load(fs, path, r); err != nil {
		return nil, fmt.Errorf("loading registry: %w", err)
	}
	return r, nil
}
