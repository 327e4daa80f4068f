package command

import (
	"github.com/aretw0/strata/pkg/domain"
	"github.com/aretw0/strata/pkg/tree"
)

// AddNode attaches a detached node under parent.
type AddNode struct {
	state
	tree   *tree.Tree
	node   domain.NodeID
	parent domain.NodeID
	anchor domain.NodeID
	index  int
	byIdx  bool
}

// NewAddNode inserts node right after anchor (index 0 for a nil anchor).
func NewAddNode(t *tree.Tree, node, parent, anchor domain.NodeID) *AddNode {
	return &AddNode{tree: t, node: node, parent: parent, anchor: anchor}
}

// NewAddNodeAt inserts node at a fixed index of parent.
func NewAddNodeAt(t *tree.Tree, node, parent domain.NodeID, index int) *AddNode {
	return &AddNode{tree: t, node: node, parent: parent, index: index, byIdx: true}
}

func (c *AddNode) Name() string { return "Add Node" }

// Node returns the handle being attached.
func (c *AddNode) Node() domain.NodeID { return c.node }

func (c *AddNode) Redo() {
	if c.applied {
		return
	}
	var ok bool
	if c.byIdx {
		ok = c.tree.AddAt(c.parent, c.node, c.index)
	} else {
		ok = c.tree.Add(c.parent, c.node, c.anchor)
	}
	if !c.tree.Assert(ok, "add node rejected", "node", c.node.String(), "parent", c.parent.String()) {
		return
	}
	c.applied = true
}

func (c *AddNode) Undo() {
	if !c.applied {
		return
	}
	index := c.tree.IndexOf(c.node)
	if !c.tree.Assert(c.tree.RemoveNode(c.node), "undo add: node not attached", "node", c.node.String()) {
		return
	}
	detached(c.tree, c.parent, index, c.node)
	c.applied = false
}
