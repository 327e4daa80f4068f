package ports

import "github.com/aretw0/strata/pkg/domain"

// GraphListener observes structural mutations of a document tree.
// Notifications always come in pairs that bracket the mutation: during the
// "about to" half the tree still shows the old structure, during the second half
// it shows the new one. Each is called exactly once per logical mutation.
type GraphListener interface {
	AboutToAdd(parent domain.NodeID, index int)
	Added(parent domain.NodeID, index int)
	AboutToRemove(parent domain.NodeID, index int)
	Removed(parent domain.NodeID, index int)
	AboutToMove(parent domain.NodeID, oldIndex, newIndex int)
	Moved(parent domain.NodeID, oldIndex, newIndex int)
}

// Refresher receives the minimal region to recomposite after a node leaves the tree.
type Refresher interface {
	// Dirty marks region of node as needing a refresh.
	Dirty(node domain.NodeID, region Region)
	// DirtyFull marks node as needing a full recomposite over region.
	DirtyFull(node domain.NodeID, region Region)
}
