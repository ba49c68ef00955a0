package registry

import (
	"fmt"
	"strings"
)

// MissingPermissionError is returned by the assert_* family when one or
// more required permissions were not held. Permissions lists every path
// that was checked and found missing (for an assert_has_all check, that is
// every failing path; for assert_has_any, it is every path checked, since
// none of them passed).
type MissingPermissionError struct {
	Permissions                []string
	MultipleWereMissing        bool
	AnySingleWouldHaveSatisfied bool
}

func (e *MissingPermissionError) Error() string {
	return fmt.Sprintf("missing permission(s): %s", strings.Join(e.Permissions, ", "))
}

// Permission returns the single missing permission and true when exactly
// one permission is recorded; otherwise it returns ("", false).
func (e *MissingPermissionError) Permission() (string, bool) {
	if len(e.Permissions) == 1 {
		return e.Permissions[0], true
	}
	return "", false
}

// UserMissingPermissionError wraps a MissingPermissionError with the user
// it was raised for.
type UserMissingPermissionError struct {
	UserID string
	*MissingPermissionError
}

func (e *UserMissingPermissionError) Error() string {
	return fmt.Sprintf("user %s: %s", e.UserID, e.MissingPermissionError.Error())
}

func (e *UserMissingPermissionError) Unwrap() error {
	return e.MissingPermissionError
}

// LoadError reports a failure while loading a save string, naming the
// 1-based line within the offending block that could not be parsed.
type LoadError struct {
	Block string
	Line  int
	Err   error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("registry: loading block %q, line %d: %v", e.Block, e.Line, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
