package tree

import (
	"encoding/base64"
	"fmt"

	"github.com/aretw0/strata/pkg/domain"
)

// Export captures the attached part of the tree as a document snapshot. Node
// ids are the node keys, falling back to the handle (suffixed until unique)
// for unkeyed or duplicate keys. Clone sources that are not attached export as dangling.
func (t *Tree) Export(docID, title string) *domain.DocumentSpec {
	order := t.preorder()

	ids := make(map[domain.NodeID]string, len(order))
	used := make(map[string]bool, len(order))
	for _, id := range order {
		if key := t.Key(id); key != "" && !used[key] {
			used[key] = true
			ids[id] = key
		}
	}
	for _, id := range order {
		if _, ok := ids[id]; ok {
			continue
		}
		key := id.String()
		for n := 2; used[key]; n++ {
			key = fmt.Sprintf("%s-%d", id, n)
		}
		used[key] = true
		ids[id] = key
	}

	specs := make(map[domain.NodeID]*domain.NodeSpec, len(order))
	for i := len(order) - 1; i >= 0; i-- {
		id := order[i]
		s, _ := t.get(id)
		style := s.style
		spec := &domain.NodeSpec{
			ID:     ids[id],
			Kind:   s.kind,
			Name:   s.name,
			Bounds: domain.RectOf(s.bounds),
			Style:  &style,
		}
		if !s.source.IsNil() {
			spec.Source = ids[s.source]
		}
		if data := domain.Bytes(s.content); len(data) > 0 {
			spec.Content = base64.StdEncoding.EncodeToString(data)
		}
		for _, c := range s.children.ids {
			spec.Children = append(spec.Children, *specs[c])
			delete(specs, c)
		}
		specs[id] = spec
	}

	return &domain.DocumentSpec{ID: docID, Title: title, Root: *specs[t.root]}
}

// Import builds a new tree from a snapshot. Children are attached through the
// regular checks, so a snapshot violating capabilities or forming a cycle is
// rejected.
func Import(doc *domain.DocumentSpec, opts ...Option) (*Tree, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: nil document", domain.ErrRejected)
	}
	if doc.Root.Kind != domain.KindRoot {
		return nil, fmt.Errorf("%w: root has kind %q", domain.ErrRejected, doc.Root.Kind)
	}

	t := New(opts...)
	rs, _ := t.get(t.root)
	rs.key = doc.Root.ID
	rs.name = doc.Root.Name
	rs.bounds = doc.Root.Bounds.Image()
	if doc.Root.Style != nil {
		rs.style = *doc.Root.Style
	}

	byID := map[string]domain.NodeID{doc.Root.ID: t.root}
	sources := map[domain.NodeID]string{}
	var err error

	doc.Walk(func(parentID string, n *domain.NodeSpec) bool {
		if n == &doc.Root {
			return true
		}
		if _, dup := byID[n.ID]; dup || n.ID == "" {
			err = fmt.Errorf("%w: duplicate or empty node id %q", domain.ErrRejected, n.ID)
			return false
		}
		content, cerr := decodeContent(n.Content)
		if cerr != nil {
			err = fmt.Errorf("node %q: %w", n.ID, cerr)
			return false
		}
		id, nerr := t.NewNode(NodeInit{
			Kind:    n.Kind,
			Key:     n.ID,
			Name:    n.Name,
			Bounds:  n.Bounds.Image(),
			Style:   n.Style,
			Content: content,
		})
		if nerr != nil {
			err = fmt.Errorf("node %q: %w", n.ID, nerr)
			return false
		}
		if !t.Append(byID[parentID], id) {
			err = fmt.Errorf("%w: node %q cannot be placed under %q", domain.ErrRejected, n.ID, parentID)
			return false
		}
		byID[n.ID] = id
		if n.Source != "" {
			sources[id] = n.Source
		}
		return true
	})
	if err != nil {
		return nil, err
	}

	// Sources are bound after every node exists so forward references work.
	for _, id := range t.preorder() {
		ref, ok := sources[id]
		if !ok {
			continue
		}
		src, found := byID[ref]
		if !found {
			return nil, fmt.Errorf("clone %q source %q: %w", t.Key(id), ref, domain.ErrNodeNotFound)
		}
		if !t.SetSource(id, src) {
			return nil, fmt.Errorf("%w: clone %q cannot mirror %q", domain.ErrRejected, t.Key(id), ref)
		}
	}
	return t, nil
}

func (t *Tree) preorder() []domain.NodeID {
	var out []domain.NodeID
	t.Walk(t.root, func(id domain.NodeID, _ int) bool {
		out = append(out, id)
		return true
	})
	return out
}

func decodeContent(s string) (domain.Content, error) {
	if s == "" {
		return domain.Empty, nil
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode content: %w", err)
	}
	return domain.NewRaster(data), nil
}
