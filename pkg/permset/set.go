// Package permset implements PermissionSet: the twin exact/descendant path
// tries (plus their conditional counterparts) that store permission grants
// and denials for one user or group, the "most relevant permission" lookup
// algorithm, and the save-string serialisation of a set.
//
// Grounded on the teacher's pkg/authorization (AccessTree/AccessNode +
// Authorizer.checkNodePermission's deepest-match recursion), generalised
// from a fixed five-level integer Permission to the spec's permit/negate +
// coverage + argument + condition record.
package permset

import (
	"sort"
	"strings"

	"github.com/halvarsson/permissions/pkg/permission"
	"github.com/halvarsson/permissions/pkg/permpath"
)

// Match is the result of GetMostRelevant: the path the winning entry was
// stored at, and the Permission itself.
type Match struct {
	Path       []string
	Permission permission.Permission
}

// PermissionSet holds one user's or group's own permission grants.
type PermissionSet struct {
	exact          *trie
	descendant     *trie
	condExact      *trie
	condDescendant *trie
}

// New returns an empty PermissionSet.
func New() *PermissionSet {
	return &PermissionSet{
		exact:          newTrie(),
		descendant:     newTrie(),
		condExact:      newTrie(),
		condDescendant: newTrie(),
	}
}

// Set parses line and installs it, overwriting any existing entry at the
// same path and wildcard-ness. Continuation lines in a multi-line argument
// are kept verbatim.
func (s *PermissionSet) Set(line string) error {
	return s.set(line, false)
}

// SetWhileDeIndenting is Set, but strips one level of four-space indent
// from each continuation line of a multi-line argument before storing it.
func (s *PermissionSet) SetWhileDeIndenting(line string) error {
	return s.set(line, true)
}

func (s *PermissionSet) set(line string, deIndent bool) error {
	parsed, err := permpath.ParseLine(line, deIndent)
	if err != nil {
		return err
	}
	s.install(parsed, nil)
	return nil
}

// SetConditional is as Set, but the entry is only considered by
// GetMostRelevant while cond() returns true. Conditional entries live in a
// parallel pair of tries and never affect, or are affected by, Set/Remove.
func (s *PermissionSet) SetConditional(line string, cond func() bool) error {
	parsed, err := permpath.ParseLine(line, false)
	if err != nil {
		return err
	}
	s.install(parsed, cond)
	return nil
}

func (s *PermissionSet) install(parsed permpath.Line, cond func() bool) {
	exactTree, descTree := s.exact, s.descendant
	if cond != nil {
		exactTree, descTree = s.condExact, s.condDescendant
	}

	permits := !parsed.Negate
	if parsed.Wildcard {
		p := permission.Of(permits).WithArg(parsed.Arg)
		if cond != nil {
			p = p.WithCondition(cond)
		}
		descTree.set(permpath.WithoutWildcard(parsed.Segments), p)
		return
	}

	exact := permission.Of(permits).WithArg(parsed.Arg)
	indirect := permission.OfIndirect(permits).WithArg(parsed.Arg)
	if cond != nil {
		exact = exact.WithCondition(cond)
		indirect = indirect.WithCondition(cond)
	}
	exactTree.set(parsed.Segments, exact)
	descTree.set(parsed.Segments, indirect)
}

// Remove parses line for its path and wildcard-ness only -- any negation
// prefix or argument on line is ignored -- and deletes the matching entry.
// It returns the removed Permission, or (zero, false) if nothing matched.
// A non-wildcard removal deletes from both trees and returns the exact-tree
// entry; a wildcard removal only ever touched the descendant tree, so that
// is what is removed and returned.
func (s *PermissionSet) Remove(line string) (permission.Permission, bool) {
	parsed, err := permpath.ParseLine(line, false)
	if err != nil {
		return permission.Permission{}, false
	}
	if parsed.Wildcard {
		return s.descendant.remove(permpath.WithoutWildcard(parsed.Segments))
	}
	removed, ok := s.exact.remove(parsed.Segments)
	s.descendant.remove(parsed.Segments)
	return removed, ok
}

// Clear empties every tree, including the conditional ones.
func (s *PermissionSet) Clear() {
	s.exact.clear()
	s.descendant.clear()
	s.condExact.clear()
	s.condDescendant.clear()
}

// ClearExceptConditionals empties only the non-conditional trees.
func (s *PermissionSet) ClearExceptConditionals() {
	s.exact.clear()
	s.descendant.clear()
}

// HasAny reports whether any tree, including the conditional ones, holds an
// entry.
func (s *PermissionSet) HasAny() bool {
	return !s.exact.isEmpty() || !s.descendant.isEmpty() || !s.condExact.isEmpty() || !s.condDescendant.isEmpty()
}

// IsEmpty is the negation of HasAny.
func (s *PermissionSet) IsEmpty() bool {
	return !s.HasAny()
}

// HasAnyExceptConditionals ignores the conditional trees.
func (s *PermissionSet) HasAnyExceptConditionals() bool {
	return !s.exact.isEmpty() || !s.descendant.isEmpty()
}

// IsEmptyExceptConditionals is the negation of HasAnyExceptConditionals.
func (s *PermissionSet) IsEmptyExceptConditionals() bool {
	return !s.HasAnyExceptConditionals()
}

// GetMostRelevant walks path through all four tries in lockstep and
// returns the deepest matching entry: a descendant-tree (or conditional
// descendant-tree, with a currently-true condition) entry counts only at a
// depth strictly less than len(path); an exact-tree (or satisfied
// conditional exact-tree) entry counts only at depth equal to len(path).
// Ties prefer the exact-tree entry over the descendant-tree one.
func (s *PermissionSet) GetMostRelevant(path []string) (Match, bool) {
	type candidate struct {
		depth   int
		isExact bool
		perm    permission.Permission
	}
	var best *candidate
	consider := func(depth int, isExact bool, perm permission.Permission) {
		if best == nil || depth > best.depth || (depth == best.depth && isExact && !best.isExact) {
			best = &candidate{depth: depth, isExact: isExact, perm: perm}
		}
	}

	en, dn := s.exact.root, s.descendant.root
	cen, cdn := s.condExact.root, s.condDescendant.root

	for d := 0; d <= len(path); d++ {
		if d < len(path) {
			if dn != nil && dn.has {
				consider(d, false, dn.perm)
			}
			if cdn != nil && cdn.has && cdn.perm.Satisfied() {
				consider(d, false, cdn.perm)
			}
		}
		if d == len(path) {
			if en != nil && en.has {
				consider(d, true, en.perm)
			}
			if cen != nil && cen.has && cen.perm.Satisfied() {
				consider(d, true, cen.perm)
			}
		}
		if d < len(path) {
			seg := path[d]
			en, dn = child(en, seg), child(dn, seg)
			cen, cdn = child(cen, seg), child(cdn, seg)
		}
	}

	if best == nil {
		return Match{}, false
	}
	return Match{Path: path[:best.depth], Permission: best.perm}, true
}

// HasPermission reports whether the most relevant entry at path permits.
func (s *PermissionSet) HasPermission(path []string) bool {
	m, ok := s.GetMostRelevant(path)
	return ok && m.Permission.Permits
}

// NegatesPermission reports whether the most relevant entry at path denies.
func (s *PermissionSet) NegatesPermission(path []string) bool {
	m, ok := s.GetMostRelevant(path)
	return ok && !m.Permission.Permits
}

// HasPermissionExactly reports whether path was itself directly set to
// permit: via an exact-tree entry for a non-wildcard path, or via a
// wildcard-origin descendant-tree entry (CoversSelf true) for a wildcard
// path. Unlike GetMostRelevant, ancestor coverage never satisfies this.
func (s *PermissionSet) HasPermissionExactly(path []string, wildcard bool) bool {
	return s.exactly(path, wildcard, true)
}

// NegatesPermissionExactly is HasPermissionExactly's negating counterpart.
func (s *PermissionSet) NegatesPermissionExactly(path []string, wildcard bool) bool {
	return s.exactly(path, wildcard, false)
}

func (s *PermissionSet) exactly(path []string, wildcard bool, permits bool) bool {
	if wildcard {
		n := lookup(s.descendant.root, path)
		return n != nil && n.has && n.perm.CoversSelf && n.perm.Permits == permits
	}
	n := lookup(s.exact.root, path)
	return n != nil && n.has && n.perm.Permits == permits
}

func lookup(n *node, path []string) *node {
	for _, seg := range path {
		n = child(n, seg)
		if n == nil {
			return nil
		}
	}
	return n
}

// HasPermissionOrAnyUnder reports whether path, or anything beneath it, is
// covered by a permission. The most relevant entry at path is checked
// first: if it negates, the whole query is false. Otherwise the four tries
// are searched for any stored entry at path or under it (descendant-tree
// entries recorded exactly at path already mean "covers children of path",
// per the wildcard semantics in §3, so an exact-path hit there is exactly
// the "anything under path" the method asks about).
func (s *PermissionSet) HasPermissionOrAnyUnder(path []string) bool {
	ok, _ := s.orAnyUnder(path, nil)
	return ok
}

// HasPermissionOrAnyUnderWhere is HasPermissionOrAnyUnder, but additionally
// requires pred to hold for the permitting entry that satisfies the query.
func (s *PermissionSet) HasPermissionOrAnyUnderWhere(path []string, pred func(permission.Permission) bool) bool {
	ok, found := s.orAnyUnder(path, pred)
	return ok && found
}

func (s *PermissionSet) orAnyUnder(path []string, pred func(permission.Permission) bool) (anyEntry bool, predSatisfied bool) {
	if m, ok := s.GetMostRelevant(path); ok && !m.Permission.Permits {
		return false, false
	}

	var firstPermitting *permission.Permission
	visit := func(n *node) bool {
		anyEntry = true
		if n.perm.Permits && firstPermitting == nil {
			p := n.perm
			firstPermitting = &p
		}
		return false
	}
	for _, t := range []*trie{s.exact, s.descendant} {
		t.walkPrefix(path, visit)
	}
	for _, t := range []*trie{s.condExact, s.condDescendant} {
		t.walkPrefix(path, func(n *node) bool {
			if !n.perm.Satisfied() {
				return false
			}
			return visit(n)
		})
	}

	if pred == nil {
		return anyEntry, firstPermitting != nil
	}
	return anyEntry, firstPermitting != nil && pred(*firstPermitting)
}

// GetPermissionsAsStrings renders every directly-set (non-conditional,
// since a condition is an opaque closure with no textual form) permission
// as a save-string line, sorted lexicographically by path (negation prefix
// and wildcard segment included, argument excluded) rather than by the
// rendered line itself -- the ':' that introduces an argument sorts after
// '.', which would otherwise place "my.perm: x" after a sibling such as
// "my.perm.other" that shares its prefix (see §8 S6). includeArgs controls
// whether an argument, if any, is rendered.
func (s *PermissionSet) GetPermissionsAsStrings(includeArgs bool) []string {
	var entries []renderedLine
	for _, pp := range s.exact.collect() {
		entries = append(entries, renderedLine{
			key:  render(pp.path, false, pp.perm, false),
			line: render(pp.path, false, pp.perm, includeArgs),
		})
	}
	for _, pp := range s.descendant.collect() {
		if !pp.perm.CoversSelf {
			// The shadow "indirectly" entry a non-wildcard Set also wrote;
			// it is implied by the exact-tree entry, not its own line.
			continue
		}
		entries = append(entries, renderedLine{
			key:  render(pp.path, true, pp.perm, false),
			line: render(pp.path, true, pp.perm, includeArgs),
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].key < entries[j].key })
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = e.line
	}
	return lines
}

type renderedLine struct {
	key  string
	line string
}

func render(path []string, wildcard bool, perm permission.Permission, includeArgs bool) string {
	segments := path
	if wildcard {
		segments = append(append([]string{}, path...), "*")
	}
	if includeArgs {
		return permpath.ApplyToPath(segments, !perm.Permits, perm.Arg)
	}
	return permpath.ApplyToPathWithoutArg(segments, !perm.Permits)
}

// ToSaveString joins GetPermissionsAsStrings(true) with newlines.
func (s *PermissionSet) ToSaveString() string {
	return strings.Join(s.GetPermissionsAsStrings(true), "\n")
}
