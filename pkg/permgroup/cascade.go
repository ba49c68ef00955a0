package permgroup

// FindExact walks the same self -> refs -> default_group cascade as
// GetMostRelevant, but asks each group's own set for an exact (non-covering)
// match instead of the deepest-covering one. The first group along the
// cascade that has ANY exact entry at path -- permitting or negating --
// decides the result; groups with no exact entry at all are skipped in
// favour of the next one in line.
func (g *PermissionGroup) FindExact(path []string, wildcard bool, resolve Resolver, visited map[string]bool) (permits bool, found bool) {
	if g == nil {
		return false, false
	}
	if g.Name != "" {
		if visited[g.Name] {
			return false, false
		}
		visited[g.Name] = true
	}

	if g.Perms.HasPermissionExactly(path, wildcard) {
		return true, true
	}
	if g.Perms.NegatesPermissionExactly(path, wildcard) {
		return false, true
	}
	for _, refName := range g.Refs {
		ref, ok := resolve(refName)
		if !ok {
			continue
		}
		if p, f := ref.FindExact(path, wildcard, resolve, visited); f {
			return p, true
		}
	}
	if g.DefaultGroup != nil {
		if ref, ok := resolve(*g.DefaultGroup); ok {
			if p, f := ref.FindExact(path, wildcard, resolve, visited); f {
				return p, true
			}
		}
	}
	return false, false
}

// AnySubPermission reports whether any group along the self -> refs ->
// default_group cascade has a permission at path or anywhere beneath it,
// per PermissionSet.HasPermissionOrAnyUnder.
func (g *PermissionGroup) AnySubPermission(path []string, resolve Resolver, visited map[string]bool) bool {
	if g == nil {
		return false
	}
	if g.Name != "" {
		if visited[g.Name] {
			return false
		}
		visited[g.Name] = true
	}
	if g.Perms.HasPermissionOrAnyUnder(path) {
		return true
	}
	for _, refName := range g.Refs {
		ref, ok := resolve(refName)
		if !ok {
			continue
		}
		if ref.AnySubPermission(path, resolve, visited) {
			return true
		}
	}
	if g.DefaultGroup != nil {
		if ref, ok := resolve(*g.DefaultGroup); ok {
			if ref.AnySubPermission(path, resolve, visited) {
				return true
			}
		}
	}
	return false
}

// ExtendsFrom reports whether name is reachable by following only the Refs
// chain (never the default-group fallback) transitively from g. It is the
// basis of group_extends_from_group and user_has_group: the implicit
// default-group fallback wired onto every user's own group does not count
// as "extending" from the default group, matching the rule that defaults
// apply at query time without counting as group membership.
func (g *PermissionGroup) ExtendsFrom(name string, resolve Resolver, visited map[string]bool) bool {
	if g == nil {
		return false
	}
	if g.Name != "" {
		if visited[g.Name] {
			return false
		}
		visited[g.Name] = true
	}
	for _, refName := range g.Refs {
		if refName == name {
			return true
		}
		ref, ok := resolve(refName)
		if !ok {
			continue
		}
		if ref.ExtendsFrom(name, resolve, visited) {
			return true
		}
	}
	return false
}
