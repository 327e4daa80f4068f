package tree

import (
	"iter"
	"slices"

	"github.com/aretw0/strata/pkg/domain"
)

// ChildView is a read-only snapshot of a node's children. Writers replace the
// underlying sequence instead of editing it, so a view taken before a mutation
// keeps describing the old order.
type ChildView struct {
	ids []domain.NodeID
}

// First returns the first child, or the nil handle if there is none.
func (v ChildView) First() domain.NodeID {
	if len(v.ids) == 0 {
		return domain.NilNode
	}
	return v.ids[0]
}

// Last returns the last child, or the nil handle if there is none.
func (v ChildView) Last() domain.NodeID {
	if len(v.ids) == 0 {
		return domain.NilNode
	}
	return v.ids[len(v.ids)-1]
}

// At returns the child at index i, or the nil handle when out of range.
func (v ChildView) At(i int) domain.NodeID {
	if i < 0 || i >= len(v.ids) {
		return domain.NilNode
	}
	return v.ids[i]
}

func (v ChildView) Len() int { return len(v.ids) }

func (v ChildView) IsEmpty() bool { return len(v.ids) == 0 }

// Contains reports whether id is in the sequence.
func (v ChildView) Contains(id domain.NodeID) bool {
	return v.IndexOf(id, -1) >= 0
}

// IndexOf returns the index of id, or -1. The search starts at hint and widens
// in both directions, so a good guess makes repeated lookups near-constant.
// An out of range hint starts from the middle.
func (v ChildView) IndexOf(id domain.NodeID, hint int) int {
	n := len(v.ids)
	if n == 0 || id.IsNil() {
		return -1
	}
	if hint < 0 || hint >= n {
		hint = n / 2
	}
	upi := hint
	dni := hint - 1
	for upi < n || dni >= 0 {
		if upi < n {
			if v.ids[upi] == id {
				return upi
			}
			upi++
		}
		if dni >= 0 {
			if v.ids[dni] == id {
				return dni
			}
			dni--
		}
	}
	return -1
}

// All iterates over the children in order.
func (v ChildView) All() iter.Seq2[int, domain.NodeID] {
	return func(yield func(int, domain.NodeID) bool) {
		for i, id := range v.ids {
			if !yield(i, id) {
				return
			}
		}
	}
}

// Slice returns a copy of the sequence.
func (v ChildView) Slice() []domain.NodeID {
	return slices.Clone(v.ids)
}

// childWriter is the write group of a child sequence. Every write installs a
// fresh slice so outstanding views stay valid.
type childWriter struct {
	ids []domain.NodeID
}

func (w *childWriter) view() ChildView { return ChildView{ids: w.ids} }

func (w *childWriter) len() int { return len(w.ids) }

func (w *childWriter) append(id domain.NodeID) {
	w.insert(len(w.ids), id)
}

func (w *childWriter) prepend(id domain.NodeID) {
	w.insert(0, id)
}

func (w *childWriter) insert(i int, id domain.NodeID) {
	next := make([]domain.NodeID, 0, len(w.ids)+1)
	next = append(next, w.ids[:i]...)
	next = append(next, id)
	next = append(next, w.ids[i:]...)
	w.ids = next
}

func (w *childWriter) removeAt(i int) domain.NodeID {
	id := w.ids[i]
	next := make([]domain.NodeID, 0, len(w.ids)-1)
	next = append(next, w.ids[:i]...)
	next = append(next, w.ids[i+1:]...)
	w.ids = next
	return id
}

func (w *childWriter) clear() {
	w.ids = nil
}
