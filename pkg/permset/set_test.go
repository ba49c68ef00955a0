package permset

import (
	"strings"
	"testing"

	"github.com/halvarsson/permissions/pkg/permission"
	"github.com/halvarsson/permissions/pkg/permpath"
)

func TestSetAndHasPermission(t *testing.T) {
	s := New()
	if err := s.Set("first.second"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !s.HasPermission(permpath.Split("first.second")) {
		t.Fatal("expected first.second to be permitted")
	}
	if s.HasPermission(permpath.Split("first.other")) {
		t.Fatal("unrelated path should not be permitted")
	}
}

func TestWildcardCoversDescendantsNotSelf(t *testing.T) {
	s := New()
	if err := s.Set("first.second.*"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.HasPermission(permpath.Split("first.second")) {
		t.Fatal("wildcard should not cover the path itself")
	}
	if !s.HasPermission(permpath.Split("first.second.third")) {
		t.Fatal("wildcard should cover a child path")
	}
	if !s.HasPermission(permpath.Split("first.second.third.fourth")) {
		t.Fatal("wildcard should cover a deeper descendant")
	}
}

func TestNonWildcardCoversDescendantsIndirectly(t *testing.T) {
	s := New()
	if err := s.Set("first.second"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !s.HasPermission(permpath.Split("first.second.third")) {
		t.Fatal("a direct grant should also cover descendants")
	}
}

func TestDeeperEntryWins(t *testing.T) {
	s := New()
	_ = s.Set("first.*")
	_ = s.Set("-first.second")
	if !s.HasPermission(permpath.Split("first.other")) {
		t.Fatal("first.other should fall back to the wildcard grant")
	}
	if s.HasPermission(permpath.Split("first.second")) {
		t.Fatal("the deeper negation should win over the shallower wildcard grant")
	}
	if s.HasPermission(permpath.Split("first.second.third")) {
		t.Fatal("first.second's negation also covers its own descendants indirectly, overriding the shallower first.* wildcard")
	}
}

func TestNegationPrefix(t *testing.T) {
	s := New()
	if err := s.Set("-first.second"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.HasPermission(permpath.Split("first.second")) {
		t.Fatal("expected negation")
	}
	if !s.NegatesPermission(permpath.Split("first.second")) {
		t.Fatal("NegatesPermission should report true")
	}
}

func TestHasPermissionExactlyVsIndirect(t *testing.T) {
	s := New()
	_ = s.Set("first.second")
	if !s.HasPermissionExactly(permpath.Split("first.second"), false) {
		t.Fatal("expected exact grant at first.second")
	}
	if s.HasPermissionExactly(permpath.Split("first.second.third"), false) {
		t.Fatal("descendant coverage should not count as an exact grant")
	}
}

func TestHasPermissionExactlyWildcard(t *testing.T) {
	s := New()
	_ = s.Set("first.second.*")
	if !s.HasPermissionExactly(permpath.Split("first.second"), true) {
		t.Fatal("expected exact wildcard entry at first.second")
	}
	if s.HasPermissionExactly(permpath.Split("first.second"), false) {
		t.Fatal("a wildcard entry should not satisfy a non-wildcard exact check")
	}
}

func TestRemove(t *testing.T) {
	s := New()
	_ = s.Set("first.second")
	removed, ok := s.Remove("first.second")
	if !ok || !removed.Permits {
		t.Fatalf("expected removal of a permitting entry, got %+v, %v", removed, ok)
	}
	if s.HasAny() {
		t.Fatal("set should be empty after removing its only entry")
	}
}

func TestRemoveWildcardOnlyTouchesDescendantTree(t *testing.T) {
	s := New()
	_ = s.Set("first.*")
	_, ok := s.Remove("first.*")
	if !ok {
		t.Fatal("expected wildcard removal to report success")
	}
	if s.HasPermission(permpath.Split("first.anything")) {
		t.Fatal("wildcard removal should drop descendant coverage")
	}
}

func TestConditionalPermission(t *testing.T) {
	s := New()
	enabled := false
	if err := s.SetConditional("first.second", func() bool { return enabled }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.HasPermission(permpath.Split("first.second")) {
		t.Fatal("condition is false, should not permit yet")
	}
	enabled = true
	if !s.HasPermission(permpath.Split("first.second")) {
		t.Fatal("condition is now true, should permit")
	}
}

func TestConditionalSurvivesClearExceptConditionals(t *testing.T) {
	s := New()
	_ = s.Set("first.second")
	_ = s.SetConditional("third.fourth", func() bool { return true })
	s.ClearExceptConditionals()
	if s.HasPermission(permpath.Split("first.second")) {
		t.Fatal("non-conditional entry should have been cleared")
	}
	if !s.HasPermission(permpath.Split("third.fourth")) {
		t.Fatal("conditional entry should survive ClearExceptConditionals")
	}
}

func TestHasPermissionOrAnyUnder(t *testing.T) {
	s := New()
	_ = s.Set("first.second.third")
	if !s.HasPermissionOrAnyUnder(permpath.Split("first")) {
		t.Fatal("expected an entry to be found under 'first'")
	}
	if s.HasPermissionOrAnyUnder(permpath.Split("second")) {
		t.Fatal("unrelated top-level path should report false")
	}
}

func TestHasPermissionOrAnyUnderShortCircuitsOnNegation(t *testing.T) {
	s := New()
	_ = s.Set("-first.second")
	if s.HasPermissionOrAnyUnder(permpath.Split("first.second")) {
		t.Fatal("a negating entry exactly at path should short-circuit to false")
	}
}

func TestHasPermissionOrAnyUnderWhere(t *testing.T) {
	s := New()
	_ = s.Set("first.second: value")
	if !s.HasPermissionOrAnyUnderWhere(permpath.Split("first"), func(p permission.Permission) bool {
		return p.Arg != nil && *p.Arg == "value"
	}) {
		t.Fatal("expected the predicate to match the stored argument")
	}
	if s.HasPermissionOrAnyUnderWhere(permpath.Split("first"), func(p permission.Permission) bool {
		return p.Arg != nil && *p.Arg == "nope"
	}) {
		t.Fatal("predicate that never matches should report false")
	}
}

func TestGetPermissionsAsStringsSortedAndDeduped(t *testing.T) {
	s := New()
	_ = s.Set("b.path")
	_ = s.Set("a.path.*")
	lines := s.GetPermissionsAsStrings(true)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines (no shadow indirect duplicate), got %v", lines)
	}
	if lines[0] != "a.path.*" || lines[1] != "b.path" {
		t.Fatalf("expected sorted lines, got %v", lines)
	}
}

func TestToSaveStringRoundTripsArg(t *testing.T) {
	s := New()
	_ = s.Set("first.second: hello world")
	out := s.ToSaveString()
	if out != "first.second: hello world" {
		t.Fatalf("got %q", out)
	}
}

func TestGetPermissionsAsStringsSortsByPathNotRenderedArg(t *testing.T) {
	s := New()
	_ = s.Set("my.perm.other")
	_ = s.SetWhileDeIndenting("my.perm:\n    this is\n    some text\n    more")

	got := s.GetPermissionsAsStrings(true)
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %v", got)
	}
	// The rendered "my.perm:..." line would sort after "my.perm.other" under
	// a plain string comparison of the rendered lines, since ':' sorts after
	// '.'; sorting by path keeps "my.perm" first, matching a save-load
	// round trip of the same input.
	if !strings.HasPrefix(got[0], "my.perm:") {
		t.Fatalf("expected my.perm first, got %v", got)
	}
	if got[1] != "my.perm.other" {
		t.Fatalf("expected my.perm.other second, got %v", got)
	}
}

func TestSetRejectsDoubleNegation(t *testing.T) {
	s := New()
	if err := s.Set("--first.second"); err == nil {
		t.Fatal("expected an error for a second leading '-'")
	}
}

func TestSetOverwritesExistingPath(t *testing.T) {
	s := New()
	_ = s.Set("first.second")
	_ = s.Set("-first.second")
	if !s.NegatesPermission(permpath.Split("first.second")) {
		t.Fatal("second Set should overwrite the first")
	}
	if len(s.GetPermissionsAsStrings(true)) != 1 {
		t.Fatal("overwriting should not leave two entries behind")
	}
}
