package command

import (
	"github.com/aretw0/strata/pkg/domain"
	"github.com/aretw0/strata/pkg/tree"
)

// MoveNode relocates an attached node, possibly to another parent.
type MoveNode struct {
	state
	tree      *tree.Tree
	node      domain.NodeID
	oldParent domain.NodeID
	oldAnchor domain.NodeID
	newParent domain.NodeID
	newAnchor domain.NodeID
}

func NewMoveNode(t *tree.Tree, node, newParent, newAnchor domain.NodeID) *MoveNode {
	return &MoveNode{
		tree:      t,
		node:      node,
		oldParent: t.Parent(node),
		oldAnchor: t.PrevSibling(node),
		newParent: newParent,
		newAnchor: newAnchor,
	}
}

func (c *MoveNode) Name() string { return "Move Node" }

func (c *MoveNode) Redo() {
	if c.applied {
		return
	}
	if !c.tree.Assert(c.tree.Move(c.node, c.newParent, c.newAnchor),
		"move node rejected", "node", c.node.String(), "parent", c.newParent.String()) {
		return
	}
	c.applied = true
}

func (c *MoveNode) Undo() {
	if !c.applied {
		return
	}
	if !c.tree.Assert(c.tree.Move(c.node, c.oldParent, c.oldAnchor),
		"undo move: cannot restore node", "node", c.node.String(), "parent", c.oldParent.String()) {
		return
	}
	c.applied = false
}
