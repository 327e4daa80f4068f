package command

import (
	"github.com/aretw0/strata/pkg/domain"
	"github.com/aretw0/strata/pkg/tree"
)

// Command is a reversible edit.
type Command interface {
	Name() string
	Redo()
	Undo()
}

// state tracks the Created/Applied machine shared by every command.
type state struct {
	applied bool
}

// Applied reports whether the command's effect is currently in the tree.
func (s *state) Applied() bool { return s.applied }

// detached refreshes the area a node leaves behind.
func detached(t *tree.Tree, parent domain.NodeID, index int, node domain.NodeID) {
	UpdateTarget(t, parent, index, t.Bounds(node))
}
