package domain

// SpecDiff summarizes the structural changes between two snapshots of the same
// document. It is designed to be serialized to JSON for partial updates on clients.
type SpecDiff struct {
	DocumentID string `json:"document_id"`

	// Added and Removed list node IDs present in only one snapshot.
	Added   []string `json:"added,omitempty"`
	Removed []string `json:"removed,omitempty"`

	// Moved lists nodes whose parent or sibling position changed.
	Moved []string `json:"moved,omitempty"`

	// Retargeted lists clones whose source changed.
	Retargeted []string `json:"retargeted,omitempty"`
}

type placement struct {
	parent string
	index  int
	source string
}

func placements(d *DocumentSpec) (map[string]placement, []string) {
	out := make(map[string]placement)
	var order []string
	if d == nil {
		return out, order
	}
	indexOf := make(map[*NodeSpec]int)
	d.Walk(func(_ string, n *NodeSpec) bool {
		for i := range n.Children {
			indexOf[&n.Children[i]] = i
		}
		return true
	})
	d.Walk(func(parent string, n *NodeSpec) bool {
		out[n.ID] = placement{parent: parent, index: indexOf[n], source: n.Source}
		order = append(order, n.ID)
		return true
	})
	return out, order
}

// Diff calculates the difference between oldDoc and newDoc.
// If oldDoc is nil, every node of newDoc is reported as added (initial load).
// It returns nil when nothing changed.
func Diff(oldDoc, newDoc *DocumentSpec) *SpecDiff {
	if newDoc == nil {
		return nil
	}
	diff := &SpecDiff{DocumentID: newDoc.ID}

	oldPlaces, oldOrder := placements(oldDoc)
	newPlaces, newOrder := placements(newDoc)

	for _, id := range newOrder {
		np := newPlaces[id]
		op, existed := oldPlaces[id]
		if !existed {
			diff.Added = append(diff.Added, id)
			continue
		}
		if op.parent != np.parent || op.index != np.index {
			diff.Moved = append(diff.Moved, id)
		}
		if op.source != np.source {
			diff.Retargeted = append(diff.Retargeted, id)
		}
	}
	for _, id := range oldOrder {
		if _, ok := newPlaces[id]; !ok {
			diff.Removed = append(diff.Removed, id)
		}
	}

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *SpecDiff) IsEmpty() bool {
	return len(d.Added) == 0 &&
		len(d.Removed) == 0 &&
		len(d.Moved) == 0 &&
		len(d.Retargeted) == 0
}
