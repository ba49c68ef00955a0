// Package permission defines the Permission value: a verdict (permit or
// negate), a coverage flag (does it apply to the exact path, or only to
// descendants of it?), an optional argument string, and an optional
// condition predicate for deferred, runtime-evaluated grants.
package permission

// Permission is an immutable record describing one grant or denial.
// Two Permissions are equal, via Equal, iff Permits, CoversSelf and Arg all
// match; Condition is not part of identity since function values are not
// comparable and a condition's truth is evaluated fresh on every lookup.
type Permission struct {
	Permits    bool
	CoversSelf bool
	Arg        *string
	Condition  func() bool
}

// Permitting grants access to the exact path it is stored at.
var Permitting = Permission{Permits: true, CoversSelf: true}

// PermittingIndirectly grants access to descendants of the path it is
// stored at, but not the path itself. It is what a non-wildcard `set`
// installs into the descendant tree alongside an exact-tree Permitting.
var PermittingIndirectly = Permission{Permits: true, CoversSelf: false}

// Negating denies access to the exact path it is stored at.
var Negating = Permission{Permits: false, CoversSelf: true}

// NegatingIndirectly denies access to descendants of the path it is stored
// at, but not the path itself.
var NegatingIndirectly = Permission{Permits: false, CoversSelf: false}

// Of returns the canonical direct (covers-self) variant for the given
// verdict: Permitting if permits, Negating otherwise.
func Of(permits bool) Permission {
	if permits {
		return Permitting
	}
	return Negating
}

// OfIndirect returns the canonical indirect (descendants-only) variant for
// the given verdict.
func OfIndirect(permits bool) Permission {
	if permits {
		return PermittingIndirectly
	}
	return NegatingIndirectly
}

// WithArg returns a copy of p carrying the given argument.
func (p Permission) WithArg(arg *string) Permission {
	p.Arg = arg
	return p
}

// WithCondition returns a copy of p carrying the given condition predicate.
func (p Permission) WithCondition(cond func() bool) Permission {
	p.Condition = cond
	return p
}

// Satisfied reports whether p's condition, if any, currently holds. An
// unconditional Permission is always satisfied.
func (p Permission) Satisfied() bool {
	return p.Condition == nil || p.Condition()
}

// Equal reports whether p and o describe the same grant or denial: same
// verdict, same coverage, and the same argument (both absent, or both
// present with equal text).
func (p Permission) Equal(o Permission) bool {
	if p.Permits != o.Permits || p.CoversSelf != o.CoversSelf {
		return false
	}
	switch {
	case p.Arg == nil && o.Arg == nil:
		return true
	case p.Arg == nil || o.Arg == nil:
		return false
	default:
		return *p.Arg == *o.Arg
	}
}
