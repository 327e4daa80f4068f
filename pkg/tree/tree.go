package tree

import (
	"fmt"
	"image"
	"log/slog"

	"github.com/aretw0/strata/pkg/domain"
	"github.com/aretw0/strata/pkg/ports"
	"github.com/aretw0/strata/pkg/registry"
)

// NodeInit carries the attributes of a node created with NewNode.
type NodeInit struct {
	Kind    domain.Kind
	Key     string
	Name    string
	Bounds  image.Rectangle
	Style   *domain.Style
	Content domain.Content
	// Source registers the new node as a clone of Source. Only kinds that
	// mirror a source accept one.
	Source domain.NodeID
}

// Info is a read-only copy of a node's attributes.
type Info struct {
	ID       domain.NodeID
	Kind     domain.Kind
	Key      string
	Name     string
	Bounds   image.Rectangle
	Style    domain.Style
	Content  domain.Content
	Parent   domain.NodeID
	Source   domain.NodeID
	Children int
	Clones   int
}

type slot struct {
	gen   uint32
	alive bool

	kind    domain.Kind
	key     string
	name    string
	bounds  image.Rectangle
	style   domain.Style
	content domain.Content

	parent   domain.NodeID
	listener ports.GraphListener
	children childWriter

	source domain.NodeID
	clones []domain.NodeID
}

// Tree is the arena holding every node of one document.
type Tree struct {
	slots []slot
	free  []uint32
	live  int
	root  domain.NodeID

	registry     *registry.Registry
	refresher    ports.Refresher
	rootListener ports.GraphListener
	logger       *slog.Logger
	debug        bool
}

// New creates a tree holding only a root node.
func New(opts ...Option) *Tree {
	t := &Tree{
		logger: nopLogger(),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.registry == nil {
		t.registry = registry.Init()
	}

	t.root = t.alloc(NodeInit{Kind: domain.KindRoot, Key: "root"})
	if t.rootListener != nil {
		t.SetListener(t.root, t.rootListener)
	}
	return t
}

// Root returns the handle of the root node.
func (t *Tree) Root() domain.NodeID { return t.root }

// Registry returns the capability registry used by the tree.
func (t *Tree) Registry() *registry.Registry { return t.registry }

// Refresher returns the configured dirty-region sink, or nil.
func (t *Tree) Refresher() ports.Refresher { return t.refresher }

// Logger returns the tree's logger.
func (t *Tree) Logger() *slog.Logger { return t.logger }

// Len returns the number of live nodes, attached or not, including the root.
func (t *Tree) Len() int { return t.live }

// NewNode allocates a detached node. The root kind cannot be created this way.
func (t *Tree) NewNode(init NodeInit) (domain.NodeID, error) {
	if init.Kind == domain.KindRoot {
		return domain.NilNode, fmt.Errorf("%w: only one root per tree", domain.ErrRejected)
	}
	if _, err := t.registry.Lookup(init.Kind); err != nil {
		return domain.NilNode, err
	}
	if !init.Source.IsNil() {
		if !t.registry.Mirrors(init.Kind) {
			return domain.NilNode, fmt.Errorf("%w: kind %s cannot have a clone source", domain.ErrRejected, init.Kind)
		}
		if !t.Valid(init.Source) {
			return domain.NilNode, fmt.Errorf("clone source %s: %w", init.Source, domain.ErrNodeNotFound)
		}
	}

	id := t.alloc(init)
	if !init.Source.IsNil() {
		t.register(init.Source, id, -1)
	}
	t.logger.Debug("node created", "node", id.String(), "kind", init.Kind)
	return id, nil
}

func (t *Tree) alloc(init NodeInit) domain.NodeID {
	var idx uint32
	if n := len(t.free); n > 0 {
		idx = t.free[n-1]
		t.free = t.free[:n-1]
	} else {
		t.slots = append(t.slots, slot{})
		idx = uint32(len(t.slots) - 1)
	}

	s := &t.slots[idx]
	gen := s.gen + 1
	if gen == 0 {
		gen = 1
	}
	style := domain.DefaultStyle()
	if init.Style != nil {
		style = *init.Style
	}
	content := init.Content
	if content == nil {
		content = domain.Empty
	}
	*s = slot{
		gen:     gen,
		alive:   true,
		kind:    init.Kind,
		key:     init.Key,
		name:    init.Name,
		bounds:  init.Bounds,
		style:   style,
		content: content,
		source:  init.Source,
	}
	t.live++
	return domain.NodeID{Slot: idx, Gen: gen}
}

func (t *Tree) get(id domain.NodeID) (*slot, bool) {
	if id.IsNil() || int(id.Slot) >= len(t.slots) {
		return nil, false
	}
	s := &t.slots[id.Slot]
	if !s.alive || s.gen != id.Gen {
		return nil, false
	}
	return s, true
}

// Valid reports whether id refers to a live node.
func (t *Tree) Valid(id domain.NodeID) bool {
	_, ok := t.get(id)
	return ok
}

// Node returns a copy of the node's attributes.
func (t *Tree) Node(id domain.NodeID) (Info, error) {
	s, ok := t.get(id)
	if !ok {
		return Info{}, fmt.Errorf("%s: %w", id, domain.ErrNodeNotFound)
	}
	return Info{
		ID:       id,
		Kind:     s.kind,
		Key:      s.key,
		Name:     s.name,
		Bounds:   s.bounds,
		Style:    s.style,
		Content:  s.content,
		Parent:   s.parent,
		Source:   s.source,
		Children: s.children.len(),
		Clones:   len(s.clones),
	}, nil
}

// Kind returns the node's kind, or "" for a stale handle.
func (t *Tree) Kind(id domain.NodeID) domain.Kind {
	if s, ok := t.get(id); ok {
		return s.kind
	}
	return ""
}

// Name returns the node's display name.
func (t *Tree) Name(id domain.NodeID) string {
	if s, ok := t.get(id); ok {
		return s.name
	}
	return ""
}

// Key returns the node's stable key used by snapshots.
func (t *Tree) Key(id domain.NodeID) string {
	if s, ok := t.get(id); ok {
		return s.key
	}
	return ""
}

// Bounds returns the node's extent.
func (t *Tree) Bounds(id domain.NodeID) image.Rectangle {
	if s, ok := t.get(id); ok {
		return s.bounds
	}
	return image.Rectangle{}
}

// Style returns the node's presentation attributes.
func (t *Tree) Style(id domain.NodeID) domain.Style {
	if s, ok := t.get(id); ok {
		return s.style
	}
	return domain.Style{}
}

// Content returns the node's own content. Clones own none; see ComposedContent.
func (t *Tree) Content(id domain.NodeID) domain.Content {
	if s, ok := t.get(id); ok {
		return s.content
	}
	return domain.Empty
}

// SetName renames a node.
func (t *Tree) SetName(id domain.NodeID, name string) bool {
	s, ok := t.get(id)
	if ok {
		s.name = name
	}
	return ok
}

// SetContent replaces the node's own content. A nil content is stored as empty.
func (t *Tree) SetContent(id domain.NodeID, c domain.Content) bool {
	s, ok := t.get(id)
	if !ok {
		return false
	}
	if c == nil {
		c = domain.Empty
	}
	s.content = c
	return true
}

// Destroy frees a detached node and everything below it. The node is
// unregistered from its source and its clones become dangling.
func (t *Tree) Destroy(id domain.NodeID) error {
	s, ok := t.get(id)
	if !ok {
		return fmt.Errorf("%s: %w", id, domain.ErrNodeNotFound)
	}
	if id == t.root {
		return fmt.Errorf("%w: cannot destroy the root", domain.ErrRejected)
	}
	if !s.parent.IsNil() {
		return fmt.Errorf("%w: node %s is still attached", domain.ErrRejected, id)
	}

	var doomed []domain.NodeID
	t.Walk(id, func(n domain.NodeID, _ int) bool {
		doomed = append(doomed, n)
		return true
	})

	for _, n := range doomed {
		ns, _ := t.get(n)
		if !ns.source.IsNil() {
			t.unregister(ns.source, n)
		}
		for _, c := range ns.clones {
			if cs, ok := t.get(c); ok {
				cs.source = domain.NilNode
			}
		}
	}
	for i := len(doomed) - 1; i >= 0; i-- {
		n := doomed[i]
		ns := &t.slots[n.Slot]
		ns.children.clear()
		ns.clones = nil
		ns.listener = nil
		ns.content = nil
		ns.alive = false
		t.free = append(t.free, n.Slot)
		t.live--
	}
	t.logger.Debug("node destroyed", "node", id.String(), "freed", len(doomed))
	return nil
}
