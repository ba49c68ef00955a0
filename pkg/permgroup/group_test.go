package permgroup

import "testing"

func TestGetMostRelevantOwnSet(t *testing.T) {
	g := New("g1")
	_ = g.Perms.Set("first.second")
	m, ok := g.GetMostRelevant([]string{"first", "second"}, noResolve, map[string]bool{})
	if !ok || !m.Permission.Permits {
		t.Fatal("expected own set to satisfy the lookup")
	}
}

func TestGetMostRelevantFallsBackToRefs(t *testing.T) {
	fallback := New("fallback")
	_ = fallback.Perms.Set("first.second")

	g := New("g1")
	g.Refs = []string{"fallback"}
	resolve := func(name string) (*PermissionGroup, bool) {
		if name == "fallback" {
			return fallback, true
		}
		return nil, false
	}
	m, ok := g.GetMostRelevant([]string{"first", "second"}, resolve, map[string]bool{})
	if !ok || !m.Permission.Permits {
		t.Fatal("expected fallback ref to satisfy the lookup")
	}
}

func TestGetMostRelevantFallsBackToDefaultGroup(t *testing.T) {
	def := New("*")
	_ = def.Perms.Set("first.second")

	defName := "*"
	g := New("user1")
	g.DefaultGroup = &defName
	resolve := func(name string) (*PermissionGroup, bool) {
		if name == "*" {
			return def, true
		}
		return nil, false
	}
	m, ok := g.GetMostRelevant([]string{"first", "second"}, resolve, map[string]bool{})
	if !ok || !m.Permission.Permits {
		t.Fatal("expected default group to satisfy the lookup")
	}
}

func TestCycleSafety(t *testing.T) {
	g1 := New("g1")
	g2 := New("g2")
	g1.Refs = []string{"g2"}
	g2.Refs = []string{"g1"}
	groups := map[string]*PermissionGroup{"g1": g1, "g2": g2}
	resolve := func(name string) (*PermissionGroup, bool) {
		g, ok := groups[name]
		return g, ok
	}
	_, ok := g1.GetMostRelevant([]string{"anything"}, resolve, map[string]bool{})
	if ok {
		t.Fatal("a cycle with no grants anywhere should terminate with no match")
	}
}

func TestAddRemoveReference(t *testing.T) {
	g := New("g1")
	g.AddReference("a")
	g.AddReference("b")
	g.AddReference("a")
	if len(g.Refs) != 2 {
		t.Fatalf("expected no duplicate refs, got %v", g.Refs)
	}
	if !g.RemoveReference("a") {
		t.Fatal("expected removal to report success")
	}
	if g.RemoveReference("a") {
		t.Fatal("second removal of the same ref should report failure")
	}
}

func TestSortRefs(t *testing.T) {
	g := New("g1")
	g.Refs = []string{"low", "high", "mid"}
	priorities := map[string]float64{"low": -1, "high": 5, "mid": 0}
	g.SortRefs(func(name string) float64 { return priorities[name] })
	want := []string{"high", "mid", "low"}
	for i, w := range want {
		if g.Refs[i] != w {
			t.Fatalf("Refs = %v, want %v", g.Refs, want)
		}
	}
}

func TestSortRefsTiesBreakByName(t *testing.T) {
	g := New("g1")
	g.Refs = []string{"zeta", "alpha"}
	g.SortRefs(func(name string) float64 { return 0 })
	if g.Refs[0] != "alpha" || g.Refs[1] != "zeta" {
		t.Fatalf("expected alphabetical tie-break, got %v", g.Refs)
	}
}

func TestToSaveStringBareHeader(t *testing.T) {
	g := New("simple")
	if got := g.ToSaveString(); got != "simple" {
		t.Fatalf("got %q", got)
	}
}

func TestToSaveStringWithPriorityAndRefs(t *testing.T) {
	g := New("testgroup")
	g.Priority = 14
	g.Refs = []string{"fallback1", "fallback2", "fallback3"}
	want := "testgroup: 14\n    #fallback1\n    #fallback2\n    #fallback3"
	if got := g.ToSaveString(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestToSaveStringCompactSingleRef(t *testing.T) {
	g := New("g1")
	g.Refs = []string{"onlyref"}
	if got := g.ToSaveString(); got != "g1 #onlyref" {
		t.Fatalf("got %q", got)
	}
}

func TestToSaveStringMultilineArgBody(t *testing.T) {
	g := New("group1")
	_ = g.Perms.SetWhileDeIndenting("my.perm:\n    this is\n    some text\n    more")
	_ = g.Perms.Set("my.perm.other")
	want := "group1\n    my.perm:\n        this is\n        some text\n        more\n    my.perm.other"
	if got := g.ToSaveString(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestExtendsFrom(t *testing.T) {
	a := New("a")
	b := New("b")
	a.Refs = []string{"b"}
	groups := map[string]*PermissionGroup{"a": a, "b": b}
	resolve := func(name string) (*PermissionGroup, bool) {
		g, ok := groups[name]
		return g, ok
	}
	if !a.ExtendsFrom("b", resolve, map[string]bool{}) {
		t.Fatal("a should extend from its direct ref b")
	}
	if a.ExtendsFrom("*", resolve, map[string]bool{}) {
		t.Fatal("extends-from must not follow the implicit default-group fallback")
	}
}

func noResolve(name string) (*PermissionGroup, bool) { return nil, false }
