// Package regfile persists a Registry's save string to a filesystem. It is
// deliberately kept outside pkg/registry: the core registry specifies only
// the in-memory save-string format, leaving disk persistence to whatever
// application embeds it -- here, a small afero.Fs-backed helper in the
// style of the teacher's file-backed sources (pkg/authorization/
// file_source.go, pkg/users/file_source.go), generalised from os.ReadFile/
// os.WriteFile to an injectable afero.Fs so callers can test against
// afero.NewMemMapFs() instead of a real disk.
package regfile

import (
	"fmt"

	"github.com/spf13/afero"
)

// Saver is the subset of *registry.Registry[U] this package depends on,
// so it never needs to name the generic type parameter itself.
type Saver interface {
	Save() string
}

// Loader is the load-side counterpart of Saver.
type Loader interface {
	Load(string) error
}

// Save renders reg's save string and writes it to path on fs, creating or
// truncating the file.
func Save(fs afero.Fs, path string, reg Saver) error {
	if err := afero.WriteFile(fs, path, []byte(reg.Save()), 0o644); err != nil {
		return fmt.Errorf("regfile: writing %s: %w", path, err)
	}
	return nil
}

// Load reads path from fs and loads it into reg. reg's own staging
// discipline (see Registry.Load) means a malformed file leaves reg
// untouched.
func Load(fs afero.Fs, path string, reg Loader) error {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return fmt.Errorf("regfile: reading %s: %w", path, err)
	}
	if err := reg.Load(string(data)); err != nil {
		return fmt.Errorf("regfile: loading %s: %w", path, err)
	}
	return nil
}
