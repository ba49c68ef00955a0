// Package registry implements the top-level permissions registry: users,
// named groups, and the reserved default group "*", exposing the full
// query and mutation surface described by the core design, plus the
// textual save/load format for the whole collection.
//
// Grounded on the teacher's Authorizer (pkg/authorization/authorizer.go),
// generalised from its fixed five-level integer Permission and hardcoded
// "players/<name>" implicit-permission rules to an arbitrary-path,
// priority-cascaded registry parameterised over a caller-supplied user-id
// type, following the same self -> groups -> "*" fallback order the
// teacher's GetEffectivePermission already walks.
package registry

import (
	"sort"

	"github.com/halvarsson/permissions/pkg/permgroup"
	"github.com/halvarsson/permissions/pkg/permlog"
	"github.com/halvarsson/permissions/pkg/permpath"
	"github.com/halvarsson/permissions/pkg/permset"
)

const defaultGroupName = "*"

// Registry is the top-level collection of user groups, named groups, and
// the default group. It is generic over U, the caller's user-id type;
// idToStr and strToID round-trip U to and from the strings used by the
// save format.
type Registry[U comparable] struct {
	users  map[U]*permgroup.PermissionGroup
	groups map[string]*permgroup.PermissionGroup
	def    *permgroup.PermissionGroup

	idToStr func(U) string
	strToID func(string) (U, error)

	logger *permlog.Logger
}

// New returns an empty registry. idToStr and strToID must be total
// functions and inverses of each other on the round-tripped domain. The
// registry logs nothing until SetLogger is called.
func New[U comparable](idToStr func(U) string, strToID func(string) (U, error)) *Registry[U] {
	return &Registry[U]{
		users:   make(map[U]*permgroup.PermissionGroup),
		groups:  make(map[string]*permgroup.PermissionGroup),
		def:     permgroup.New(defaultGroupName),
		idToStr: idToStr,
		strToID: strToID,
	}
}

// SetLogger attaches logger to the registry: every subsequent mutation
// (assign/revoke/clear) and every Save/Load logs one structured entry
// through it. Passing nil (the default) silences logging entirely; a
// read-only query never logs regardless of logger.
func (r *Registry[U]) SetLogger(logger *permlog.Logger) {
	r.logger = logger
}

func (r *Registry[U]) resolve(name string) (*permgroup.PermissionGroup, bool) {
	if name == defaultGroupName {
		return r.def, true
	}
	g, ok := r.groups[name]
	return g, ok
}

func (r *Registry[U]) priorityOf(name string) float64 {
	if name == defaultGroupName {
		return r.def.Priority
	}
	if g, ok := r.groups[name]; ok {
		return g.Priority
	}
	return 0
}

// resortAllRefs re-sorts every group's Refs (users, named groups, and the
// default group itself) by current priority. It is called after adding a
// reference and after assigning a group's priority.
func (r *Registry[U]) resortAllRefs() {
	for _, g := range r.users {
		g.SortRefs(r.priorityOf)
	}
	for _, g := range r.groups {
		g.SortRefs(r.priorityOf)
	}
	r.def.SortRefs(r.priorityOf)
}

// GetUserGroupOrNew returns the user's own group, lazily creating an empty
// one -- wired with an implicit fallback to the default group -- on first
// reference.
func (r *Registry[U]) GetUserGroupOrNew(uid U) *permgroup.PermissionGroup {
	if g, ok := r.users[uid]; ok {
		return g
	}
	g := permgroup.New("")
	def := defaultGroupName
	g.DefaultGroup = &def
	r.users[uid] = g
	return g
}

// GetGroupOrNew returns the named group, creating it if necessary. When
// priority is supplied it is applied whether or not the group already
// existed (so that a group referenced before its declaration in a save
// file still picks up the priority given when it is finally declared);
// omitting it leaves an existing group's priority untouched, and a newly
// created group defaults to priority 0.
func (r *Registry[U]) GetGroupOrNew(name string, priority ...float64) *permgroup.PermissionGroup {
	g, ok := r.groups[name]
	if !ok {
		g = permgroup.New(name)
		r.groups[name] = g
	}
	if len(priority) > 0 {
		g.Priority = priority[0]
		r.resortAllRefs()
	}
	return g
}

// --- Assignment mutators ---

// AssignUserPermission parses and installs line into uid's own set.
func (r *Registry[U]) AssignUserPermission(uid U, line string) error {
	err := r.GetUserGroupOrNew(uid).Perms.Set(line)
	r.logger.Info("assign_user_permission", "user", r.idToStr(uid), "line", line, "error", errStr(err))
	return err
}

// AssignGroupPermission parses and installs line into name's own set.
func (r *Registry[U]) AssignGroupPermission(name, line string) error {
	err := r.GetGroupOrNew(name).Perms.Set(line)
	r.logger.Info("assign_group_permission", "group", name, "line", line, "error", errStr(err))
	return err
}

// AssignDefaultPermission parses and installs line into the default
// group's own set.
func (r *Registry[U]) AssignDefaultPermission(line string) error {
	err := r.def.Perms.Set(line)
	r.logger.Info("assign_default_permission", "line", line, "error", errStr(err))
	return err
}

// AssignGroupToUser adds name as a reference of uid's own group, creating
// both if necessary.
func (r *Registry[U]) AssignGroupToUser(uid U, name string) {
	r.GetGroupOrNew(name)
	r.GetUserGroupOrNew(uid).AddReference(name)
	r.resortAllRefs()
	r.logger.Info("assign_group_to_user", "user", r.idToStr(uid), "group", name)
}

// AssignGroupToGroup adds supername as a reference of subname, creating
// both if necessary.
func (r *Registry[U]) AssignGroupToGroup(subname, supername string) {
	r.GetGroupOrNew(supername)
	r.GetGroupOrNew(subname).AddReference(supername)
	r.resortAllRefs()
	r.logger.Info("assign_group_to_group", "sub", subname, "super", supername)
}

// AssignDefaultGroup adds name as a reference of the registry's own
// default group, creating it if necessary. The default group's refs ARE
// the list of default groups (see the data model).
func (r *Registry[U]) AssignDefaultGroup(name string) {
	r.GetGroupOrNew(name)
	r.def.AddReference(name)
	r.resortAllRefs()
	r.logger.Info("assign_default_group", "group", name)
}

// RevokeUserPermission removes line's permission from uid's own set, if
// uid has ever been referenced.
func (r *Registry[U]) RevokeUserPermission(uid U, line string) {
	if g, ok := r.users[uid]; ok {
		g.Perms.Remove(line)
	}
	r.logger.Info("revoke_user_permission", "user", r.idToStr(uid), "line", line)
}

// RevokeGroupPermission removes line's permission from name's own set, if
// name exists.
func (r *Registry[U]) RevokeGroupPermission(name, line string) {
	if g, ok := r.groups[name]; ok {
		g.Perms.Remove(line)
	}
	r.logger.Info("revoke_group_permission", "group", name, "line", line)
}

// RevokeDefaultPermission removes line's permission from the default
// group's own set.
func (r *Registry[U]) RevokeDefaultPermission(line string) {
	r.def.Perms.Remove(line)
	r.logger.Info("revoke_default_permission", "line", line)
}

// RevokeGroupFromUser removes name from uid's own references.
func (r *Registry[U]) RevokeGroupFromUser(uid U, name string) {
	if g, ok := r.users[uid]; ok {
		g.RemoveReference(name)
	}
	r.logger.Info("revoke_group_from_user", "user", r.idToStr(uid), "group", name)
}

// RevokeGroupFromGroup removes supername from subname's own references.
func (r *Registry[U]) RevokeGroupFromGroup(subname, supername string) {
	if g, ok := r.groups[subname]; ok {
		g.RemoveReference(supername)
	}
	r.logger.Info("revoke_group_from_group", "sub", subname, "super", supername)
}

// RevokeDefaultGroup removes name from the default group's references.
func (r *Registry[U]) RevokeDefaultGroup(name string) {
	r.def.RemoveReference(name)
	r.logger.Info("revoke_default_group", "group", name)
}

// Clear empties users, groups, and the default group.
func (r *Registry[U]) Clear() {
	r.users = make(map[U]*permgroup.PermissionGroup)
	r.groups = make(map[string]*permgroup.PermissionGroup)
	r.def = permgroup.New(defaultGroupName)
	r.logger.Info("clear")
}

// errStr renders err for a log keyval, using "" in place of nil so a
// successful mutation's log line doesn't carry a literal "<nil>".
func errStr(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// --- Cascaded lookup ---

// UserHasPermission is the cascaded query: self -> referenced groups,
// priority order -> default group. An unknown uid still consults the
// default group directly, since defaults apply to known and unknown
// users equivalently.
func (r *Registry[U]) UserHasPermission(uid U, path string) bool {
	m, ok := r.userLookup(uid, permpath.Split(path))
	return ok && m.Permission.Permits
}

func (r *Registry[U]) userLookup(uid U, segments []string) (permset.Match, bool) {
	if g, ok := r.users[uid]; ok {
		return g.GetMostRelevant(segments, r.resolve, map[string]bool{})
	}
	return r.def.GetMostRelevant(segments, r.resolve, map[string]bool{})
}

// GroupHasPermission looks up name's own cascade (self -> refs) only. A
// named group's own set never consults the default group, per the
// default-permission scoping rule: defaults do not cascade into
// non-default groups.
func (r *Registry[U]) GroupHasPermission(name, path string) bool {
	g, ok := r.groups[name]
	if !ok {
		return false
	}
	m, found := g.GetMostRelevant(permpath.Split(path), r.resolve, map[string]bool{})
	return found && m.Permission.Permits
}

// HasDefaultPermission looks up the default group's own cascade (its own
// set, then the other default groups referenced via AssignDefaultGroup).
func (r *Registry[U]) HasDefaultPermission(path string) bool {
	m, found := r.def.GetMostRelevant(permpath.Split(path), r.resolve, map[string]bool{})
	return found && m.Permission.Permits
}

// UserHasAllPermissions is UserHasPermission conjoined, short-circuiting
// on the first miss.
func (r *Registry[U]) UserHasAllPermissions(uid U, paths ...string) bool {
	for _, p := range paths {
		if !r.UserHasPermission(uid, p) {
			return false
		}
	}
	return true
}

// UserHasAnyPermissions is UserHasPermission disjoined, short-circuiting
// on the first hit.
func (r *Registry[U]) UserHasAnyPermissions(uid U, paths ...string) bool {
	for _, p := range paths {
		if r.UserHasPermission(uid, p) {
			return true
		}
	}
	return false
}

// GroupHasAllPermissions is GroupHasPermission conjoined.
func (r *Registry[U]) GroupHasAllPermissions(name string, paths ...string) bool {
	for _, p := range paths {
		if !r.GroupHasPermission(name, p) {
			return false
		}
	}
	return true
}

// GroupHasAnyPermissions is GroupHasPermission disjoined.
func (r *Registry[U]) GroupHasAnyPermissions(name string, paths ...string) bool {
	for _, p := range paths {
		if r.GroupHasPermission(name, p) {
			return true
		}
	}
	return false
}

// DefaultHasAllPermissions is HasDefaultPermission conjoined.
func (r *Registry[U]) DefaultHasAllPermissions(paths ...string) bool {
	for _, p := range paths {
		if !r.HasDefaultPermission(p) {
			return false
		}
	}
	return true
}

// DefaultHasAnyPermissions is HasDefaultPermission disjoined.
func (r *Registry[U]) DefaultHasAnyPermissions(paths ...string) bool {
	for _, p := range paths {
		if r.HasDefaultPermission(p) {
			return true
		}
	}
	return false
}

// UserNegatesPermission reports whether the cascade's most relevant entry
// for uid at path denies.
func (r *Registry[U]) UserNegatesPermission(uid U, path string) bool {
	m, ok := r.userLookup(uid, permpath.Split(path))
	return ok && !m.Permission.Permits
}

// UserHasPermissionExactly reports whether path was directly granted
// somewhere along uid's cascade (own set, refs, default group), per
// PermissionGroup.FindExact.
func (r *Registry[U]) UserHasPermissionExactly(uid U, path string, wildcard bool) bool {
	permits, found := r.userFindExact(uid, permpath.Split(path), wildcard)
	return found && permits
}

// UserNegatesPermissionExactly is UserHasPermissionExactly's negating
// counterpart.
func (r *Registry[U]) UserNegatesPermissionExactly(uid U, path string, wildcard bool) bool {
	permits, found := r.userFindExact(uid, permpath.Split(path), wildcard)
	return found && !permits
}

func (r *Registry[U]) userFindExact(uid U, segments []string, wildcard bool) (bool, bool) {
	if g, ok := r.users[uid]; ok {
		return g.FindExact(segments, wildcard, r.resolve, map[string]bool{})
	}
	return r.def.FindExact(segments, wildcard, r.resolve, map[string]bool{})
}

// UserHasAnySubPermissionOf reports whether any group along uid's cascade
// grants path or anything beneath it, without a negating entry exactly
// covering path itself (see PermissionSet.HasPermissionOrAnyUnder).
func (r *Registry[U]) UserHasAnySubPermissionOf(uid U, path string) bool {
	segments := permpath.Split(path)
	if m, ok := r.userLookup(uid, segments); ok && !m.Permission.Permits {
		return false
	}
	if g, ok := r.users[uid]; ok {
		return g.AnySubPermission(segments, r.resolve, map[string]bool{})
	}
	return r.def.AnySubPermission(segments, r.resolve, map[string]bool{})
}

// GetUserPermissionArg returns the argument of the winning permitting
// entry along uid's cascade, or nil if the path is not permitted or the
// winning entry has no argument.
func (r *Registry[U]) GetUserPermissionArg(uid U, path string) *string {
	m, ok := r.userLookup(uid, permpath.Split(path))
	if !ok || !m.Permission.Permits {
		return nil
	}
	return m.Permission.Arg
}

// GetGroupPermissionArg returns the argument of the winning permitting
// entry along name's own cascade (self -> refs, no default group), or nil.
func (r *Registry[U]) GetGroupPermissionArg(name, path string) *string {
	g, ok := r.groups[name]
	if !ok {
		return nil
	}
	m, found := g.GetMostRelevant(permpath.Split(path), r.resolve, map[string]bool{})
	if !found || !m.Permission.Permits {
		return nil
	}
	return m.Permission.Arg
}

// GetUserPermissionStatus returns a snapshot of uid's cascaded answer at
// path.
func (r *Registry[U]) GetUserPermissionStatus(uid U, path string) PermissionStatus {
	m, ok := r.userLookup(uid, permpath.Split(path))
	if !ok {
		return statusFor(path, nil)
	}
	p := m.Permission
	return statusFor(path, &p)
}

// GetUserPermissionStatuses is GetUserPermissionStatus for each of paths.
func (r *Registry[U]) GetUserPermissionStatuses(uid U, paths ...string) map[string]PermissionStatus {
	out := make(map[string]PermissionStatus, len(paths))
	for _, p := range paths {
		out[p] = r.GetUserPermissionStatus(uid, p)
	}
	return out
}

// AssertUserHasPermission returns a UserMissingPermissionError if uid does
// not hold path.
func (r *Registry[U]) AssertUserHasPermission(uid U, path string) error {
	st := r.GetUserPermissionStatus(uid, path)
	if me := st.AssertHasPermission(); me != nil {
		return &UserMissingPermissionError{UserID: r.idToStr(uid), MissingPermissionError: me}
	}
	return nil
}

// AssertUserHasAllPermissions returns a UserMissingPermissionError listing
// every path in paths that uid does not hold, or nil if uid holds all of
// them.
func (r *Registry[U]) AssertUserHasAllPermissions(uid U, paths ...string) error {
	var missing []string
	for _, p := range paths {
		if !r.UserHasPermission(uid, p) {
			missing = append(missing, p)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return &UserMissingPermissionError{
		UserID: r.idToStr(uid),
		MissingPermissionError: &MissingPermissionError{
			Permissions:                 missing,
			MultipleWereMissing:         len(missing) > 1,
			AnySingleWouldHaveSatisfied: false,
		},
	}
}

// AssertUserHasAnyPermission returns a UserMissingPermissionError covering
// every path in paths if uid holds none of them, or nil if uid holds at
// least one.
func (r *Registry[U]) AssertUserHasAnyPermission(uid U, paths ...string) error {
	for _, p := range paths {
		if r.UserHasPermission(uid, p) {
			return nil
		}
	}
	return &UserMissingPermissionError{
		UserID: r.idToStr(uid),
		MissingPermissionError: &MissingPermissionError{
			Permissions:                 append([]string(nil), paths...),
			MultipleWereMissing:         len(paths) > 1,
			AnySingleWouldHaveSatisfied: true,
		},
	}
}

// --- Group membership ---

// UserHasGroup reports whether name is reachable by following uid's
// reference chain, directly or transitively.
func (r *Registry[U]) UserHasGroup(uid U, name string) bool {
	g, ok := r.users[uid]
	if !ok {
		return false
	}
	return g.ExtendsFrom(name, r.resolve, map[string]bool{})
}

// GroupExtendsFromGroup reports whether target is reachable from name's
// reference chain transitively. It is false for the default group even
// though defaults apply at query time: the implicit default-group
// fallback is never part of the Refs chain this walks.
func (r *Registry[U]) GroupExtendsFromGroup(name, target string) bool {
	g, ok := r.groups[name]
	if !ok {
		return false
	}
	return g.ExtendsFrom(target, r.resolve, map[string]bool{})
}

// UserHasAllGroups reports whether uid extends from every name in names.
func (r *Registry[U]) UserHasAllGroups(uid U, names ...string) bool {
	for _, n := range names {
		if !r.UserHasGroup(uid, n) {
			return false
		}
	}
	return true
}

// UserHasAnyGroups reports whether uid extends from at least one of names.
func (r *Registry[U]) UserHasAnyGroups(uid U, names ...string) bool {
	for _, n := range names {
		if r.UserHasGroup(uid, n) {
			return true
		}
	}
	return false
}

// GroupHasAllGroups reports whether name extends from every one of targets.
func (r *Registry[U]) GroupHasAllGroups(name string, targets ...string) bool {
	for _, t := range targets {
		if !r.GroupExtendsFromGroup(name, t) {
			return false
		}
	}
	return true
}

// GroupHasAnyGroups reports whether name extends from at least one of
// targets.
func (r *Registry[U]) GroupHasAnyGroups(name string, targets ...string) bool {
	for _, t := range targets {
		if r.GroupExtendsFromGroup(name, t) {
			return true
		}
	}
	return false
}

// --- Introspection ---

// GetUsers returns every user id with an own group, in ascending order of
// their string form.
func (r *Registry[U]) GetUsers() []U {
	out := make([]U, 0, len(r.users))
	for uid := range r.users {
		out = append(out, uid)
	}
	sort.Slice(out, func(i, j int) bool { return r.idToStr(out[i]) < r.idToStr(out[j]) })
	return out
}

// GetGroupNames returns every named group, sorted ascending.
func (r *Registry[U]) GetGroupNames() []string {
	out := make([]string, 0, len(r.groups))
	for name := range r.groups {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// GetUserPermissions returns uid's own permissions (not cascaded), in
// save-string form.
func (r *Registry[U]) GetUserPermissions(uid U) []string {
	g, ok := r.users[uid]
	if !ok {
		return nil
	}
	return g.Perms.GetPermissionsAsStrings(true)
}

// GetAllUserPermissionStatuses returns a status for each of uid's own,
// directly-set permissions -- ignoring the cascade entirely, both for
// finding the permission and for evaluating its status.
func (r *Registry[U]) GetAllUserPermissionStatuses(uid U) []PermissionStatus {
	g, ok := r.users[uid]
	if !ok {
		return nil
	}
	var out []PermissionStatus
	for _, line := range g.Perms.GetPermissionsAsStrings(true) {
		parsed, err := permpath.ParseLine(line, false)
		if err != nil {
			continue
		}
		path := permpath.Join(parsed.Segments)
		m, found := g.Perms.GetMostRelevant(parsed.Segments)
		if !found {
			out = append(out, statusFor(path, nil))
			continue
		}
		p := m.Permission
		out = append(out, statusFor(path, &p))
	}
	return out
}
