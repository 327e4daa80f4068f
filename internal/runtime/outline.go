package runtime

import (
	"github.com/aretw0/strata/pkg/domain"
)

// OutlineEntry is one line of a tree outline.
type OutlineEntry struct {
	Depth    int           `json:"depth"`
	ID       domain.NodeID `json:"id"`
	Key      string        `json:"key,omitempty"`
	Kind     domain.Kind   `json:"kind"`
	Name     string        `json:"name,omitempty"`
	Path     string        `json:"path"`
	Source   string        `json:"source,omitempty"`
	Clones   int           `json:"clones,omitempty"`
	Content  bool          `json:"content"`
	Visible  bool          `json:"visible"`
	Children int           `json:"children"`
}

// Outline lists the attached tree in pre-order.
func (e *Editor) Outline() []OutlineEntry {
	var out []OutlineEntry
	t := e.tree
	t.Walk(t.Root(), func(id domain.NodeID, depth int) bool {
		info, err := t.Node(id)
		if err != nil {
			return false
		}
		entry := OutlineEntry{
			Depth:    depth,
			ID:       id,
			Key:      info.Key,
			Kind:     info.Kind,
			Name:     info.Name,
			Path:     t.Path(id),
			Clones:   info.Clones,
			Content:  t.BearsContent(id),
			Visible:  info.Style.Visible,
			Children: info.Children,
		}
		if !info.Source.IsNil() {
			entry.Source = t.Path(info.Source)
		}
		out = append(out, entry)
		return true
	})
	return out
}
