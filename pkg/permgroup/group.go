// Package permgroup implements PermissionGroup: a named PermissionSet
// augmented with an ordered list of referenced groups (fallbacks, highest
// priority first) and an optional single default-group fallback, plus the
// priority-cascaded lookup and save-string rendering described in the core
// design.
//
// Grounded on the teacher's Authorizer cascade (pkg/authorization/
// authorizer.go: GetEffectivePermission tries the user's own tree, then
// each of GetGroups(username) in turn, then the "*" tree), generalised from
// implicit character-level-derived groups to an explicit, priority-sorted
// reference list.
package permgroup

import (
	"sort"
	"strconv"
	"strings"

	"github.com/halvarsson/permissions/pkg/permset"
)

// Resolver looks up a named group, as owned by a registry. PermissionGroup
// never holds pointers to the groups it references -- only their names --
// so that forward references (a group mentioned before it is declared) and
// the registry's exclusive ownership of every PermissionGroup both hold.
type Resolver func(name string) (*PermissionGroup, bool)

// PermissionGroup is a named permission set plus its cascade.
type PermissionGroup struct {
	Name     string
	Priority float64
	Perms    *permset.PermissionSet

	// Refs holds the names of referenced groups, kept sorted by descending
	// priority (ties broken by ascending name) by SortRefs.
	Refs []string

	// DefaultGroup is a single further fallback, consulted after Refs is
	// exhausted. User groups are wired at construction time to the
	// registry's reserved "*" group; plain named groups have none, which is
	// why group-level queries never consult registry defaults (see the
	// registry package).
	DefaultGroup *string
}

// New returns an empty, zero-priority group with the given name.
func New(name string) *PermissionGroup {
	return &PermissionGroup{Name: name, Perms: permset.New()}
}

// AddReference appends name to Refs if not already present. Callers must
// call SortRefs afterwards (the registry does this as part of every
// mutation that can affect ordering, since only it knows every group's
// priority).
func (g *PermissionGroup) AddReference(name string) {
	for _, r := range g.Refs {
		if r == name {
			return
		}
	}
	g.Refs = append(g.Refs, name)
}

// RemoveReference deletes name from Refs, reporting whether it was present.
func (g *PermissionGroup) RemoveReference(name string) bool {
	for i, r := range g.Refs {
		if r == name {
			g.Refs = append(g.Refs[:i], g.Refs[i+1:]...)
			return true
		}
	}
	return false
}

// SortRefs re-sorts Refs by descending priority (as reported by
// priorityOf), ties broken by ascending name.
func (g *PermissionGroup) SortRefs(priorityOf func(name string) float64) {
	sort.SliceStable(g.Refs, func(i, j int) bool {
		pi, pj := priorityOf(g.Refs[i]), priorityOf(g.Refs[j])
		if pi != pj {
			return pi > pj
		}
		return g.Refs[i] < g.Refs[j]
	})
}

// Clear empties the group's own permission set and its reference list. The
// default-group fallback, if any, is left untouched: it is cascade wiring,
// not a permission grant.
func (g *PermissionGroup) Clear() {
	g.Perms.Clear()
	g.Refs = nil
}

// GetMostRelevant implements the cascade: the group's own set, then each
// referenced group in Refs order, then the default-group fallback, the
// first non-null result winning. visited guards against reference cycles:
// a group name already present short-circuits that branch to "no match"
// rather than recursing again.
func (g *PermissionGroup) GetMostRelevant(path []string, resolve Resolver, visited map[string]bool) (permset.Match, bool) {
	if g == nil {
		return permset.Match{}, false
	}
	if g.Name != "" {
		if visited[g.Name] {
			return permset.Match{}, false
		}
		visited[g.Name] = true
	}

	if m, ok := g.Perms.GetMostRelevant(path); ok {
		return m, true
	}
	for _, refName := range g.Refs {
		ref, ok := resolve(refName)
		if !ok {
			continue
		}
		if m, ok := ref.GetMostRelevant(path, resolve, visited); ok {
			return m, true
		}
	}
	if g.DefaultGroup != nil {
		if ref, ok := resolve(*g.DefaultGroup); ok {
			if m, ok := ref.GetMostRelevant(path, resolve, visited); ok {
				return m, true
			}
		}
	}
	return permset.Match{}, false
}

// FormatPriority renders a priority the way the save format requires:
// integer-valued priorities omit the decimal point.
func FormatPriority(priority float64) string {
	if priority == float64(int64(priority)) {
		return strconv.FormatInt(int64(priority), 10)
	}
	return strconv.FormatFloat(priority, 'g', -1, 64)
}

// ToSaveString renders the group's header and body per §4.3/§6: a bare name
// or "name: priority" header (the priority suffix appears when the group
// has a non-default priority or at least one reference), followed by a
// 4-space-indented body of "#ref" lines (in Refs order) and then the
// group's own permission lines -- or, when there is exactly one reference
// and no permissions, the compact single-line "name #ref" form (whose own
// priority suffix depends only on whether the priority is non-default,
// since the lone ref itself is what the compact form is standing in for).
func (g *PermissionGroup) ToSaveString() string {
	hasPriority := g.Priority != 0
	permLines := g.Perms.GetPermissionsAsStrings(true)

	if len(g.Refs) == 1 && len(permLines) == 0 {
		header := g.Name
		if hasPriority {
			header = g.Name + ": " + FormatPriority(g.Priority)
		}
		return header + " #" + g.Refs[0]
	}

	header := g.Name
	if hasPriority || len(g.Refs) > 0 {
		header = g.Name + ": " + FormatPriority(g.Priority)
	}

	var lines []string
	for _, r := range g.Refs {
		lines = append(lines, "#"+r)
	}
	lines = append(lines, permLines...)
	if len(lines) == 0 {
		return header
	}

	var b strings.Builder
	b.WriteString(header)
	for _, l := range lines {
		b.WriteString("\n    ")
		b.WriteString(l)
	}
	return b.String()
}
