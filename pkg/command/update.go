package command

import (
	"image"

	"github.com/aretw0/strata/pkg/domain"
	"github.com/aretw0/strata/pkg/tree"
)

// UpdateTarget picks what to refresh after a node left parent at index: the
// nearest following sibling that bears content, else the nearest preceding
// one, else a full refresh of parent. It returns the chosen node and whether a
// full refresh was requested. Nothing is sent when the tree has no Refresher.
func UpdateTarget(t *tree.Tree, parent domain.NodeID, index int, region image.Rectangle) (domain.NodeID, bool) {
	target, full := findTarget(t, parent, index)
	r := t.Refresher()
	if r == nil || target.IsNil() {
		return target, full
	}
	if full {
		r.DirtyFull(target, region)
	} else {
		r.Dirty(target, region)
	}
	return target, full
}

func findTarget(t *tree.Tree, parent domain.NodeID, index int) (domain.NodeID, bool) {
	siblings := t.Children(parent)
	if index < 0 {
		index = 0
	}
	for i := index; i < siblings.Len(); i++ {
		if id := siblings.At(i); t.BearsContent(id) {
			return id, false
		}
	}
	for i := min(index, siblings.Len()) - 1; i >= 0; i-- {
		if id := siblings.At(i); t.BearsContent(id) {
			return id, false
		}
	}
	return parent, true
}
