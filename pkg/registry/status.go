package registry

import "github.com/halvarsson/permissions/pkg/permission"

// PermissionStatus is a snapshot answer to "does this user/group hold this
// permission", carrying enough detail to report on or assert about without
// a second lookup.
type PermissionStatus struct {
	Path          string
	Permission    *permission.Permission
	HasPermission bool
	PermissionArg *string
}

// AssertHasPermission returns a MissingPermissionError if the status
// reports no permission, nil otherwise.
func (s PermissionStatus) AssertHasPermission() *MissingPermissionError {
	if s.HasPermission {
		return nil
	}
	return &MissingPermissionError{
		Permissions:                 []string{s.Path},
		MultipleWereMissing:         false,
		AnySingleWouldHaveSatisfied: false,
	}
}

func statusFor(path string, m *permission.Permission) PermissionStatus {
	if m == nil {
		return PermissionStatus{Path: path}
	}
	st := PermissionStatus{Path: path, Permission: m, HasPermission: m.Permits}
	if m.Permits {
		st.PermissionArg = m.Arg
	}
	return st
}
