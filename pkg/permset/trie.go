package permset

import "github.com/halvarsson/permissions/pkg/permission"

// node is one position in a path trie, grounded on the teacher's
// AccessNode{Children map[string]*AccessNode} (pkg/authorization/types.go),
// generalised from a fixed DotAccess/StarAccess pair to an arbitrary-depth
// trie whose leaves may or may not carry a stored Permission.
type node struct {
	has      bool
	perm     permission.Permission
	children map[string]*node
}

func newNode() *node {
	return &node{children: make(map[string]*node)}
}

// trie is a path-indexed store of Permission values, one tree per
// exact/descendant/conditional-exact/conditional-descendant role inside a
// PermissionSet.
type trie struct {
	root    *node
	entries int
}

func newTrie() *trie {
	return &trie{root: newNode()}
}

func (t *trie) set(path []string, perm permission.Permission) {
	n := t.root
	for _, seg := range path {
		child, ok := n.children[seg]
		if !ok {
			child = newNode()
			n.children[seg] = child
		}
		n = child
	}
	if !n.has {
		t.entries++
	}
	n.has = true
	n.perm = perm
}

// remove deletes the entry at path, if any, returning it.
func (t *trie) remove(path []string) (permission.Permission, bool) {
	n := t.root
	for _, seg := range path {
		child, ok := n.children[seg]
		if !ok {
			return permission.Permission{}, false
		}
		n = child
	}
	if !n.has {
		return permission.Permission{}, false
	}
	old := n.perm
	n.has = false
	n.perm = permission.Permission{}
	t.entries--
	return old, true
}

func (t *trie) clear() {
	t.root = newNode()
	t.entries = 0
}

func (t *trie) isEmpty() bool {
	return t.entries == 0
}

// child returns the child of n named seg, or nil if n is nil or has no such
// child. It lets the depth-by-depth walk in get_most_relevant advance four
// trees in lockstep without special-casing the "ran out of trie" case.
func child(n *node, seg string) *node {
	if n == nil {
		return nil
	}
	return n.children[seg]
}

// walkPrefix calls visit for every node at or below the node reached by
// following path from the root (path itself included), stopping the moment
// visit reports a match it is satisfied with. It backs the "entry at path
// or a descendant of it" existence check used by has_permission_or_any_under.
func (t *trie) walkPrefix(path []string, visit func(*node) (stop bool)) {
	n := t.root
	for _, seg := range path {
		n = child(n, seg)
		if n == nil {
			return
		}
	}
	walkSubtree(n, visit)
}

func walkSubtree(n *node, visit func(*node) (stop bool)) bool {
	if n == nil {
		return false
	}
	if n.has {
		if visit(n) {
			return true
		}
	}
	for _, c := range n.children {
		if walkSubtree(c, visit) {
			return true
		}
	}
	return false
}

// collect returns every (path, Permission) pair stored in the trie, in no
// particular order; callers sort as needed.
func (t *trie) collect() []pathPerm {
	var out []pathPerm
	var walk func(n *node, prefix []string)
	walk = func(n *node, prefix []string) {
		if n == nil {
			return
		}
		if n.has {
			p := make([]string, len(prefix))
			copy(p, prefix)
			out = append(out, pathPerm{path: p, perm: n.perm})
		}
		for seg, c := range n.children {
			walk(c, append(prefix, seg))
		}
	}
	walk(t.root, nil)
	return out
}

type pathPerm struct {
	path []string
	perm permission.Permission
}
