package tree

import (
	"strings"

	"github.com/aretw0/strata/pkg/domain"
)

// Parent returns the node's parent, or the nil handle when detached.
func (t *Tree) Parent(node domain.NodeID) domain.NodeID {
	if s, ok := t.get(node); ok {
		return s.parent
	}
	return domain.NilNode
}

// Children returns a read-only view of node's children.
func (t *Tree) Children(node domain.NodeID) ChildView {
	if s, ok := t.get(node); ok {
		return s.children.view()
	}
	return ChildView{}
}

func (t *Tree) ChildCount(node domain.NodeID) int { return t.Children(node).Len() }

func (t *Tree) FirstChild(node domain.NodeID) domain.NodeID { return t.Children(node).First() }

func (t *Tree) LastChild(node domain.NodeID) domain.NodeID { return t.Children(node).Last() }

// At returns the child of parent at index, or the nil handle.
func (t *Tree) At(parent domain.NodeID, index int) domain.NodeID {
	return t.Children(parent).At(index)
}

// IndexOf returns node's position in its parent, or -1 when detached.
func (t *Tree) IndexOf(node domain.NodeID) int {
	s, ok := t.get(node)
	if !ok || s.parent.IsNil() {
		return -1
	}
	return t.Children(s.parent).IndexOf(node, -1)
}

// PrevSibling returns the sibling right before node, or the nil handle.
func (t *Tree) PrevSibling(node domain.NodeID) domain.NodeID {
	i := t.IndexOf(node)
	if i <= 0 {
		return domain.NilNode
	}
	return t.At(t.Parent(node), i-1)
}

// NextSibling returns the sibling right after node, or the nil handle.
func (t *Tree) NextSibling(node domain.NodeID) domain.NodeID {
	i := t.IndexOf(node)
	if i < 0 {
		return domain.NilNode
	}
	return t.At(t.Parent(node), i+1)
}

// IsAncestor reports whether anc is node itself or one of its ancestors.
func (t *Tree) IsAncestor(anc, node domain.NodeID) bool {
	for id := node; !id.IsNil(); id = t.Parent(id) {
		if id == anc {
			return true
		}
	}
	return false
}

// Walk visits start and its descendants in pre-order. Returning false from fn
// skips the children of the node just visited.
func (t *Tree) Walk(start domain.NodeID, fn func(id domain.NodeID, depth int) bool) {
	if !t.Valid(start) {
		return
	}
	type frame struct {
		id    domain.NodeID
		depth int
	}
	stack := []frame{{id: start}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(f.id, f.depth) {
			continue
		}
		kids := t.Children(f.id)
		for i := kids.Len() - 1; i >= 0; i-- {
			stack = append(stack, frame{id: kids.At(i), depth: f.depth + 1})
		}
	}
}

// Path returns the slash separated names from the root to node, "/" for the
// root. Unnamed nodes use their handle. Detached subtrees start with their
// top node's handle instead of "/".
func (t *Tree) Path(node domain.NodeID) string {
	if !t.Valid(node) {
		return ""
	}
	if node == t.root {
		return "/"
	}
	var parts []string
	id := node
	for ; !id.IsNil() && id != t.root; id = t.Parent(id) {
		parts = append(parts, t.segment(id))
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	prefix := "/"
	if id.IsNil() {
		prefix = ""
	}
	return prefix + strings.Join(parts, "/")
}

func (t *Tree) segment(id domain.NodeID) string {
	if name := t.Name(id); name != "" {
		return name
	}
	return id.String()
}

// Lookup resolves a path produced by Path. The first child matching each
// segment wins.
func (t *Tree) Lookup(path string) (domain.NodeID, bool) {
	if !strings.HasPrefix(path, "/") {
		return domain.NilNode, false
	}
	cur := t.root
	for _, seg := range strings.Split(strings.Trim(path, "/"), "/") {
		if seg == "" {
			continue
		}
		next := domain.NilNode
		for _, c := range t.Children(cur).All() {
			if t.segment(c) == seg {
				next = c
				break
			}
		}
		if next.IsNil() {
			return domain.NilNode, false
		}
		cur = next
	}
	return cur, true
}

// FindByKey returns the live node with the given snapshot key.
func (t *Tree) FindByKey(key string) (domain.NodeID, bool) {
	if key == "" {
		return domain.NilNode, false
	}
	for i := range t.slots {
		s := &t.slots[i]
		if s.alive && s.key == key {
			return domain.NodeID{Slot: uint32(i), Gen: s.gen}, true
		}
	}
	return domain.NilNode, false
}

// FindByName returns every live node carrying name, attached or not.
func (t *Tree) FindByName(name string) []domain.NodeID {
	var out []domain.NodeID
	for i := range t.slots {
		s := &t.slots[i]
		if s.alive && s.name == name {
			out = append(out, domain.NodeID{Slot: uint32(i), Gen: s.gen})
		}
	}
	return out
}
