package dsl

import (
	"fmt"

	"github.com/aretw0/strata/pkg/adapters/memory"
	"github.com/aretw0/strata/pkg/domain"
	"github.com/aretw0/strata/pkg/registry"
	"github.com/aretw0/strata/pkg/schema"
)

// Builder manages the document construction.
type Builder struct {
	id       string
	title    string
	registry *registry.Registry
	nodes    map[string]*NodeBuilder
	children []*NodeBuilder
}

// New creates a new document builder.
func New(id string) *Builder {
	return &Builder{
		id:    id,
		nodes: make(map[string]*NodeBuilder),
	}
}

// Title sets the document title.
func (b *Builder) Title(title string) *Builder {
	b.title = title
	return b
}

// Registry validates against reg instead of the default registry.
func (b *Builder) Registry(reg *registry.Registry) *Builder {
	b.registry = reg
	return b
}

// Add creates a new node at the top of the root stack.
// If the node already exists, it returns the existing builder.
func (b *Builder) Add(id string) *NodeBuilder {
	nb, created := b.node(id)
	if created {
		b.children = append(b.children, nb)
	}
	return nb
}

func (b *Builder) node(id string) (*NodeBuilder, bool) {
	if nb, ok := b.nodes[id]; ok {
		return nb, false
	}
	nb := &NodeBuilder{
		node: domain.NodeSpec{
			ID:   id,
			Kind: domain.KindPaint,
		},
		builder: b,
	}
	b.nodes[id] = nb
	return nb, true
}

// Spec assembles the snapshot without validating it.
func (b *Builder) Spec() *domain.DocumentSpec {
	doc := &domain.DocumentSpec{
		ID:    b.id,
		Title: b.title,
		Root:  domain.NodeSpec{ID: "root", Kind: domain.KindRoot},
	}
	doc.Root.Children = assemble(b.children)
	return doc
}

func assemble(builders []*NodeBuilder) []domain.NodeSpec {
	if len(builders) == 0 {
		return nil
	}
	out := make([]domain.NodeSpec, 0, len(builders))
	for _, nb := range builders {
		spec := nb.node.Clone()
		spec.Children = assemble(nb.children)
		out = append(out, spec)
	}
	return out
}

// Build assembles and validates the snapshot.
func (b *Builder) Build() (*domain.DocumentSpec, error) {
	doc := b.Spec()
	if err := schema.ValidateDocument(doc, b.registry); err != nil {
		return nil, fmt.Errorf("invalid document %q: %w", b.id, err)
	}
	return doc, nil
}

// Loader builds the document and serves it from a memory loader.
func (b *Builder) Loader() (*memory.Loader, error) {
	doc, err := b.Build()
	if err != nil {
		return nil, err
	}

	loader, err := memory.NewFromDocuments(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to build memory loader: %w", err)
	}
	return loader, nil
}
