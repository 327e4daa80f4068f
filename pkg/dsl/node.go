package dsl

import (
	"encoding/base64"

	"github.com/aretw0/strata/pkg/domain"
)

// NodeBuilder provides a fluent API for configuring a node.
type NodeBuilder struct {
	node     domain.NodeSpec
	children []*NodeBuilder
	builder  *Builder
}

// Add creates a child node on top of this node's stack.
// If the ID is already used anywhere in the document, it returns that builder.
func (n *NodeBuilder) Add(id string) *NodeBuilder {
	nb, created := n.builder.node(id)
	if created {
		n.children = append(n.children, nb)
	}
	return nb
}

// Paint marks the node as a paint layer owning data.
func (n *NodeBuilder) Paint(data []byte) *NodeBuilder {
	n.node.Kind = domain.KindPaint
	n.node.Source = ""
	n.node.Content = ""
	if len(data) > 0 {
		n.node.Content = base64.StdEncoding.EncodeToString(data)
	}
	return n
}

// Group marks the node as a group layer.
func (n *NodeBuilder) Group() *NodeBuilder {
	return n.kind(domain.KindGroup)
}

// Clone marks the node as a clone of the node with ID source.
func (n *NodeBuilder) Clone(source string) *NodeBuilder {
	n.kind(domain.KindClone)
	n.node.Source = source
	return n
}

// Filter marks the node as an adjustment layer.
func (n *NodeBuilder) Filter() *NodeBuilder {
	return n.kind(domain.KindFilter)
}

// Mask marks the node as a mask.
func (n *NodeBuilder) Mask() *NodeBuilder {
	return n.kind(domain.KindMask)
}

func (n *NodeBuilder) kind(k domain.Kind) *NodeBuilder {
	n.node.Kind = k
	n.node.Source = ""
	n.node.Content = ""
	return n
}

// Name sets the display name.
func (n *NodeBuilder) Name(name string) *NodeBuilder {
	n.node.Name = name
	return n
}

// Bounds sets the node rectangle.
func (n *NodeBuilder) Bounds(x, y, w, h int) *NodeBuilder {
	n.node.Bounds = domain.Rect{X: x, Y: y, W: w, H: h}
	return n
}

func (n *NodeBuilder) style() *domain.Style {
	if n.node.Style == nil {
		s := domain.DefaultStyle()
		n.node.Style = &s
	}
	return n.node.Style
}

// Opacity sets the layer opacity.
func (n *NodeBuilder) Opacity(opacity float64) *NodeBuilder {
	n.style().Opacity = opacity
	return n
}

// Blend sets the blending mode.
func (n *NodeBuilder) Blend(mode domain.BlendMode) *NodeBuilder {
	n.style().Blend = mode
	return n
}

// Hidden makes the layer invisible.
func (n *NodeBuilder) Hidden() *NodeBuilder {
	n.style().Visible = false
	return n
}

// Locked prevents edits in hosts that honour it.
func (n *NodeBuilder) Locked() *NodeBuilder {
	n.style().Locked = true
	return n
}
