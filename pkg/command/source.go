package command

import (
	"github.com/aretw0/strata/pkg/domain"
	"github.com/aretw0/strata/pkg/tree"
)

// SetSource retargets a clone. Undo restores the old source and the clone's
// old position in that source's registry.
type SetSource struct {
	state
	tree      *tree.Tree
	clone     domain.NodeID
	oldSource domain.NodeID
	oldPos    int
	newSource domain.NodeID
}

func NewSetSource(t *tree.Tree, clone, source domain.NodeID) *SetSource {
	old := t.Source(clone)
	return &SetSource{
		tree:      t,
		clone:     clone,
		oldSource: old,
		oldPos:    t.CloneIndex(old, clone),
		newSource: source,
	}
}

func (c *SetSource) Name() string { return "Set Clone Source" }

func (c *SetSource) Redo() {
	if c.applied {
		return
	}
	if !c.tree.Assert(c.tree.SetSource(c.clone, c.newSource),
		"set source rejected", "clone", c.clone.String(), "source", c.newSource.String()) {
		return
	}
	c.applied = true
}

func (c *SetSource) Undo() {
	if !c.applied {
		return
	}
	if !c.tree.Assert(c.tree.SetSourceAt(c.clone, c.oldSource, c.oldPos),
		"undo set source: cannot restore", "clone", c.clone.String(), "source", c.oldSource.String()) {
		return
	}
	c.applied = false
}
