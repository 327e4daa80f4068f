package command

import (
	"github.com/aretw0/strata/pkg/domain"
	"github.com/aretw0/strata/pkg/tree"
)

// RemoveNode detaches a single node. Its parent and previous sibling are
// captured when the command is built and used by Undo to put it back.
type RemoveNode struct {
	state
	tree   *tree.Tree
	node   domain.NodeID
	parent domain.NodeID
	anchor domain.NodeID
}

func NewRemoveNode(t *tree.Tree, node domain.NodeID) *RemoveNode {
	return &RemoveNode{
		tree:   t,
		node:   node,
		parent: t.Parent(node),
		anchor: t.PrevSibling(node),
	}
}

func (c *RemoveNode) Name() string { return "Remove Node" }

// Anchor returns the sibling the node is restored after.
func (c *RemoveNode) Anchor() domain.NodeID { return c.anchor }

// Node returns the handle being removed.
func (c *RemoveNode) Node() domain.NodeID { return c.node }

func (c *RemoveNode) Redo() {
	if c.applied {
		return
	}
	index := c.tree.IndexOf(c.node)
	if !c.tree.Assert(c.tree.Parent(c.node) == c.parent && c.tree.RemoveNode(c.node),
		"remove node: not attached where recorded", "node", c.node.String(), "parent", c.parent.String()) {
		return
	}
	detached(c.tree, c.parent, index, c.node)
	c.applied = true
}

func (c *RemoveNode) Undo() {
	if !c.applied {
		return
	}
	if !c.tree.Assert(c.tree.Add(c.parent, c.node, c.anchor),
		"undo remove: cannot restore node", "node", c.node.String(), "anchor", c.anchor.String()) {
		return
	}
	c.applied = false
}
