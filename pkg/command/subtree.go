package command

import (
	"github.com/aretw0/strata/pkg/domain"
	"github.com/aretw0/strata/pkg/tree"
)

// RemoveSubtree removes one or more attached nodes together with their
// descendants. Clones living outside the removed set are reincarnated first,
// so nothing left in the tree mirrors a node that is gone.
//
// The sub-commands are built on the first Redo, each one right before it runs,
// and then cached: later Redo/Undo cycles replay the same steps and reuse the
// same reincarnated nodes.
type RemoveSubtree struct {
	state
	tree  *tree.Tree
	tops  []domain.NodeID
	steps []Command
	built bool

	reincarnated map[domain.NodeID]domain.NodeID
}

// NewRemoveSubtree removes nodes and everything below them. Nodes nested under
// another listed node, and detached nodes, are ignored.
func NewRemoveSubtree(t *tree.Tree, nodes ...domain.NodeID) *RemoveSubtree {
	var tops []domain.NodeID
	for _, n := range nodes {
		if t.Parent(n).IsNil() {
			continue
		}
		nested := false
		for _, other := range nodes {
			if other != n && t.IsAncestor(other, n) {
				nested = true
				break
			}
		}
		if !nested && !containsID(tops, n) {
			tops = append(tops, n)
		}
	}
	return &RemoveSubtree{tree: t, tops: tops}
}

func containsID(ids []domain.NodeID, id domain.NodeID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func (c *RemoveSubtree) Name() string {
	if len(c.tops) > 1 {
		return "Remove Nodes"
	}
	return "Remove Node"
}

// Steps returns the recorded sub-commands, empty before the first Redo.
func (c *RemoveSubtree) Steps() []Command { return c.steps }

// Reincarnated maps each replaced clone to its standalone replacement.
func (c *RemoveSubtree) Reincarnated() map[domain.NodeID]domain.NodeID {
	return c.reincarnated
}

func (c *RemoveSubtree) Redo() {
	if c.applied {
		return
	}
	if !c.built {
		c.build()
		c.built = true
	} else {
		for _, step := range c.steps {
			step.Redo()
		}
	}
	c.applied = true
}

func (c *RemoveSubtree) Undo() {
	if !c.applied {
		return
	}
	for i := len(c.steps) - 1; i >= 0; i-- {
		c.steps[i].Undo()
	}
	c.applied = false
}

func (c *RemoveSubtree) run(cmd Command) {
	c.steps = append(c.steps, cmd)
	cmd.Redo()
}

func (c *RemoveSubtree) build() {
	removed := make(map[domain.NodeID]bool)
	var members []domain.NodeID
	for _, top := range c.tops {
		c.tree.Walk(top, func(id domain.NodeID, _ int) bool {
			removed[id] = true
			members = append(members, id)
			return true
		})
	}

	var clones []domain.NodeID
	sources := make(map[domain.NodeID]domain.NodeID)
	for _, x := range members {
		for _, cl := range c.tree.Clones(x) {
			if !removed[cl] && c.tree.Valid(cl) && !c.tree.Parent(cl).IsNil() {
				clones = append(clones, cl)
				sources[cl] = x
			}
		}
	}

	c.reincarnated = make(map[domain.NodeID]domain.NodeID, len(clones))
	for _, cl := range clones {
		if r, ok := c.reincarnate(cl, sources[cl]); ok {
			c.reincarnated[cl] = r
		}
	}
	c.tree.Assert(len(c.reincarnated) == len(clones),
		"reincarnation count mismatch", "clones", len(clones), "reincarnated", len(c.reincarnated))

	for i := len(c.tops) - 1; i >= 0; i-- {
		for _, id := range bottomUp(c.tree, c.tops[i]) {
			c.run(NewRemoveNode(c.tree, id))
		}
	}
}

// reincarnate replaces clone with a standalone paint node holding a snapshot
// of source's composed content, carrying over the clone's children and the
// clones that mirror it.
func (c *RemoveSubtree) reincarnate(clone, source domain.NodeID) (domain.NodeID, bool) {
	info, err := c.tree.Node(clone)
	if err != nil {
		return domain.NilNode, false
	}
	style := info.Style
	r, err := c.tree.NewNode(tree.NodeInit{
		Kind:    domain.KindPaint,
		Name:    info.Name,
		Bounds:  info.Bounds,
		Style:   &style,
		Content: c.tree.ComposedContent(source).Snapshot(),
	})
	if !c.tree.Assert(err == nil, "reincarnation node not created", "clone", clone.String(), "err", err) {
		return domain.NilNode, false
	}

	add := NewAddNode(c.tree, r, info.Parent, c.tree.PrevSibling(clone))
	c.run(add)
	if !add.Applied() {
		return domain.NilNode, false
	}

	// Last to first, each landing at the front, keeps the order and lets Undo
	// restore every child after a sibling that is already back in place.
	kids := c.tree.Children(clone)
	for i := kids.Len() - 1; i >= 0; i-- {
		c.run(NewMoveNode(c.tree, kids.At(i), r, domain.NilNode))
	}
	for _, cc := range c.tree.Clones(clone) {
		c.run(NewSetSource(c.tree, cc, r))
	}
	c.run(NewRemoveNode(c.tree, clone))
	return r, true
}

// bottomUp lists top and its descendants so that every node comes after its
// children and siblings are visited last to first. It walks with an explicit
// stack of (node, next child) frames.
func bottomUp(t *tree.Tree, top domain.NodeID) []domain.NodeID {
	type frame struct {
		id   domain.NodeID
		next int
	}
	var out []domain.NodeID
	stack := []frame{{id: top, next: t.ChildCount(top) - 1}}
	for len(stack) > 0 {
		f := &stack[len(stack)-1]
		if f.next < 0 {
			out = append(out, f.id)
			stack = stack[:len(stack)-1]
			continue
		}
		child := t.At(f.id, f.next)
		f.next--
		stack = append(stack, frame{id: child, next: t.ChildCount(child) - 1})
	}
	return out
}
