package observability

import (
	"github.com/aretw0/strata/pkg/domain"
	"github.com/aretw0/strata/pkg/ports"
)

// Fanout forwards every notification to each listener in order.
type Fanout []ports.GraphListener

// Combine builds a listener from the non-nil ones. It returns nil when none are
// left and the listener itself when only one is.
func Combine(listeners ...ports.GraphListener) ports.GraphListener {
	var out Fanout
	for _, l := range listeners {
		if l != nil {
			out = append(out, l)
		}
	}
	switch len(out) {
	case 0:
		return nil
	case 1:
		return out[0]
	}
	return out
}

func (f Fanout) AboutToAdd(parent domain.NodeID, index int) {
	for _, l := range f {
		l.AboutToAdd(parent, index)
	}
}

func (f Fanout) Added(parent domain.NodeID, index int) {
	for _, l := range f {
		l.Added(parent, index)
	}
}

func (f Fanout) AboutToRemove(parent domain.NodeID, index int) {
	for _, l := range f {
		l.AboutToRemove(parent, index)
	}
}

func (f Fanout) Removed(parent domain.NodeID, index int) {
	for _, l := range f {
		l.Removed(parent, index)
	}
}

func (f Fanout) AboutToMove(parent domain.NodeID, oldIndex, newIndex int) {
	for _, l := range f {
		l.AboutToMove(parent, oldIndex, newIndex)
	}
}

func (f Fanout) Moved(parent domain.NodeID, oldIndex, newIndex int) {
	for _, l := range f {
		l.Moved(parent, oldIndex, newIndex)
	}
}
