package domain

import "image"

// Rect is the serializable form of a node's bounds.
type Rect struct {
	X int `json:"x" yaml:"x" mapstructure:"x"`
	Y int `json:"y" yaml:"y" mapstructure:"y"`
	W int `json:"w" yaml:"w" mapstructure:"w"`
	H int `json:"h" yaml:"h" mapstructure:"h"`
}

// Image converts r to an image.Rectangle.
func (r Rect) Image() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.W, r.Y+r.H)
}

// RectOf converts an image.Rectangle to a Rect.
func RectOf(r image.Rectangle) Rect {
	return Rect{X: r.Min.X, Y: r.Min.Y, W: r.Dx(), H: r.Dy()}
}

// NodeSpec is the structural snapshot of one node and its subtree.
// Source holds the ID of the clone source (clones only); it may reference any
// node of the same document.
type NodeSpec struct {
	ID       string     `json:"id" yaml:"id" mapstructure:"id"`
	Kind     Kind       `json:"kind" yaml:"kind" mapstructure:"kind"`
	Name     string     `json:"name,omitempty" yaml:"name,omitempty" mapstructure:"name"`
	Bounds   Rect       `json:"bounds" yaml:"bounds" mapstructure:"bounds"`
	Style    *Style     `json:"style,omitempty" yaml:"style,omitempty" mapstructure:"style"`
	Source   string     `json:"source,omitempty" yaml:"source,omitempty" mapstructure:"source"`
	Content  string     `json:"content,omitempty" yaml:"content,omitempty" mapstructure:"content"`
	Children []NodeSpec `json:"children,omitempty" yaml:"children,omitempty" mapstructure:"children"`
}

// DocumentSpec is the persisted form of a whole document tree.
type DocumentSpec struct {
	ID    string   `json:"id" yaml:"id" mapstructure:"id"`
	Title string   `json:"title,omitempty" yaml:"title,omitempty" mapstructure:"title"`
	Root  NodeSpec `json:"root" yaml:"root" mapstructure:"root"`
}

// Clone returns a deep copy of the spec.
func (d *DocumentSpec) Clone() *DocumentSpec {
	if d == nil {
		return nil
	}
	c := *d
	c.Root = d.Root.Clone()
	return &c
}

// Clone returns a deep copy of the node spec and its children.
func (n NodeSpec) Clone() NodeSpec {
	c := n
	if n.Style != nil {
		s := *n.Style
		c.Style = &s
	}
	if n.Children != nil {
		c.Children = make([]NodeSpec, len(n.Children))
		for i, child := range n.Children {
			c.Children[i] = child.Clone()
		}
	}
	return c
}

// Walk visits the spec depth-first in document order, passing each node's parent
// ID ("" for the root). Returning false stops the walk.
func (d *DocumentSpec) Walk(fn func(parentID string, n *NodeSpec) bool) {
	type frame struct {
		parent string
		node   *NodeSpec
	}
	stack := []frame{{node: &d.Root}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(f.parent, f.node) {
			return
		}
		for i := len(f.node.Children) - 1; i >= 0; i-- {
			stack = append(stack, frame{parent: f.node.ID, node: &f.node.Children[i]})
		}
	}
}

// Find returns the spec with the given ID, or nil.
func (d *DocumentSpec) Find(id string) *NodeSpec {
	var found *NodeSpec
	d.Walk(func(_ string, n *NodeSpec) bool {
		if n.ID == id {
			found = n
			return false
		}
		return true
	})
	return found
}
