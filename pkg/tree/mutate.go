package tree

import (
	"github.com/aretw0/strata/pkg/domain"
)

// Add inserts node into parent's children right after anchor. A nil anchor
// inserts at index 0. It returns false, with nothing mutated and nothing
// notified, when the attach is not legal.
func (t *Tree) Add(parent, node, anchor domain.NodeID) bool {
	index, ok := t.addIndex(parent, node, anchor)
	if !ok {
		return false
	}
	t.insert(parent, node, index)
	return true
}

// CanAdd reports whether Add would succeed, without mutating anything.
func (t *Tree) CanAdd(parent, node, anchor domain.NodeID) bool {
	_, ok := t.addIndex(parent, node, anchor)
	return ok
}

func (t *Tree) addIndex(parent, node, anchor domain.NodeID) (int, bool) {
	p, n, ok := t.attachable(parent, node)
	if !ok {
		return 0, false
	}
	index := 0
	if !anchor.IsNil() {
		if anchor == node {
			return 0, false
		}
		a, ok := t.get(anchor)
		if !ok || a.parent != parent {
			return 0, false
		}
		index = p.children.view().IndexOf(anchor, -1) + 1
	}
	if !t.allowed(p, n, parent, node) {
		return 0, false
	}
	return index, true
}

// AddAt inserts node into parent's children at index, 0 <= index <= ChildCount.
func (t *Tree) AddAt(parent, node domain.NodeID, index int) bool {
	p, n, ok := t.attachable(parent, node)
	if !ok {
		return false
	}
	if index < 0 || index > p.children.len() {
		return false
	}
	if !t.allowed(p, n, parent, node) {
		return false
	}
	t.insert(parent, node, index)
	return true
}

// Append inserts node as the last child of parent.
func (t *Tree) Append(parent, node domain.NodeID) bool {
	p, ok := t.get(parent)
	if !ok {
		return false
	}
	return t.AddAt(parent, node, p.children.len())
}

// Remove detaches the child of parent at index.
func (t *Tree) Remove(parent domain.NodeID, index int) bool {
	p, ok := t.get(parent)
	if !ok || index < 0 || index >= p.children.len() {
		return false
	}
	t.detach(parent, index)
	return true
}

// RemoveNode detaches node from its parent. Detached nodes return false.
func (t *Tree) RemoveNode(node domain.NodeID) bool {
	n, ok := t.get(node)
	if !ok || n.parent.IsNil() {
		return false
	}
	index := t.IndexOf(node)
	if index < 0 {
		return false
	}
	t.detach(n.parent, index)
	return true
}

// Move relocates an attached node right after anchor in newParent (index 0
// for a nil anchor). Within the same parent a single AboutToMove/Moved pair is
// emitted; across parents the node is removed and added with the matching
// notifications.
func (t *Tree) Move(node, newParent, anchor domain.NodeID) bool {
	if !t.CanMove(node, newParent, anchor) {
		return false
	}
	p, _ := t.get(newParent)
	oldParent := t.Parent(node)
	oldIndex := t.IndexOf(node)

	if oldParent == newParent {
		newIndex := 0
		if !anchor.IsNil() {
			newIndex = p.children.view().IndexOf(anchor, oldIndex) + 1
			if newIndex > oldIndex {
				newIndex--
			}
		}
		t.reorder(newParent, oldIndex, newIndex)
		return true
	}

	t.detach(oldParent, oldIndex)
	index := 0
	if !anchor.IsNil() {
		index = p.children.view().IndexOf(anchor, -1) + 1
	}
	t.insert(newParent, node, index)
	return true
}

// CanMove reports whether Move would succeed, without mutating anything.
func (t *Tree) CanMove(node, newParent, anchor domain.NodeID) bool {
	n, ok := t.get(node)
	if !ok || n.parent.IsNil() || node == newParent || anchor == node {
		return false
	}
	p, ok := t.get(newParent)
	if !ok {
		return false
	}
	if !anchor.IsNil() {
		a, ok := t.get(anchor)
		if !ok || a.parent != newParent {
			return false
		}
	}
	if n.parent != newParent && !t.allowed(p, n, newParent, node) {
		return false
	}
	return true
}

// MoveTo relocates an attached node to index in newParent. The index is
// interpreted in newParent's sequence with node already taken out.
func (t *Tree) MoveTo(node, newParent domain.NodeID, index int) bool {
	n, ok := t.get(node)
	if !ok || n.parent.IsNil() {
		return false
	}
	p, ok := t.get(newParent)
	if !ok {
		return false
	}
	size := p.children.len()
	if n.parent == newParent {
		size--
	}
	if index < 0 || index > size {
		return false
	}
	if index == 0 {
		return t.Move(node, newParent, domain.NilNode)
	}
	anchors := p.children.view().Slice()
	if n.parent == newParent {
		anchors = removeID(anchors, node)
	}
	return t.Move(node, newParent, anchors[index-1])
}

func removeID(ids []domain.NodeID, id domain.NodeID) []domain.NodeID {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// attachable performs the checks shared by every attach that do not depend on
// the insertion position.
func (t *Tree) attachable(parent, node domain.NodeID) (*slot, *slot, bool) {
	if node == t.root || node == parent {
		return nil, nil, false
	}
	p, ok := t.get(parent)
	if !ok {
		return nil, nil, false
	}
	n, ok := t.get(node)
	if !ok || !n.parent.IsNil() {
		return nil, nil, false
	}
	if p.children.view().Contains(node) {
		return nil, nil, false
	}
	return p, n, true
}

// allowed checks the capability predicate and the dependency cycle rule.
func (t *Tree) allowed(p, n *slot, parent, node domain.NodeID) bool {
	if !t.registry.AllowedAsChild(p.kind, n.kind) {
		t.logger.Debug("attach rejected by capabilities", "parent", p.kind, "child", n.kind)
		return false
	}
	if t.dependsOn(node, parent) {
		t.logger.Debug("attach rejected: dependency cycle", "parent", parent.String(), "node", node.String())
		return false
	}
	return true
}

func (t *Tree) insert(parent, node domain.NodeID, index int) {
	p, _ := t.get(parent)
	n, _ := t.get(node)
	listener := p.listener

	if listener != nil {
		listener.AboutToAdd(parent, index)
	}
	switch index {
	case 0:
		p.children.prepend(node)
	case p.children.len():
		p.children.append(node)
	default:
		p.children.insert(index, node)
	}
	n.parent = parent
	t.propagate(node, listener)
	if listener != nil {
		listener.Added(parent, index)
	}
}

func (t *Tree) detach(parent domain.NodeID, index int) {
	p, _ := t.get(parent)
	node := p.children.view().At(index)
	n, _ := t.get(node)
	listener := p.listener

	if listener != nil {
		listener.AboutToRemove(parent, index)
	}
	n.parent = domain.NilNode
	t.propagate(node, nil)
	p.children.removeAt(index)
	if listener != nil {
		listener.Removed(parent, index)
	}
}

func (t *Tree) reorder(parent domain.NodeID, oldIndex, newIndex int) {
	p, _ := t.get(parent)
	listener := p.listener

	if listener != nil {
		listener.AboutToMove(parent, oldIndex, newIndex)
	}
	node := p.children.removeAt(oldIndex)
	p.children.insert(newIndex, node)
	if listener != nil {
		listener.Moved(parent, oldIndex, newIndex)
	}
}
