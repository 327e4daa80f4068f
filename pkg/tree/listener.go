package tree

import (
	"github.com/aretw0/strata/pkg/domain"
	"github.com/aretw0/strata/pkg/ports"
)

// SetListener installs l on node and every node below it. Nodes attached to
// the subtree later inherit it.
func (t *Tree) SetListener(node domain.NodeID, l ports.GraphListener) bool {
	if !t.Valid(node) {
		return false
	}
	t.propagate(node, l)
	return true
}

// Listener returns the listener currently installed on node.
func (t *Tree) Listener(node domain.NodeID) ports.GraphListener {
	if s, ok := t.get(node); ok {
		return s.listener
	}
	return nil
}

func (t *Tree) propagate(node domain.NodeID, l ports.GraphListener) {
	t.Walk(node, func(id domain.NodeID, _ int) bool {
		s, _ := t.get(id)
		s.listener = l
		return true
	})
}
