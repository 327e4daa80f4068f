package schema

import (
	"encoding/base64"
	"fmt"
	"sort"

	"github.com/aretw0/strata/pkg/domain"
	"github.com/aretw0/strata/pkg/registry"
)

// ValidateDocument checks doc against the capabilities of reg.
// A nil reg uses the default registry.
// Returns an *AggregateError with all validation failures found.
func ValidateDocument(doc *domain.DocumentSpec, reg *registry.Registry) error {
	if doc == nil {
		return &AggregateError{Errors: []error{&ValidationError{Reason: "document is nil"}}}
	}
	if reg == nil {
		reg = registry.Init()
	}

	v := &validator{
		reg:    reg,
		byID:   make(map[string]*domain.NodeSpec),
		parent: make(map[string]string),
	}

	if doc.Root.Kind != domain.KindRoot {
		v.fail(doc.Root.ID, "kind", "document root must be of kind root", doc.Root.Kind)
	}

	doc.Walk(func(parentID string, n *domain.NodeSpec) bool {
		v.node(parentID, n, n == &doc.Root)
		return true
	})
	v.sources()

	if len(v.errs) > 0 {
		return &AggregateError{Errors: v.errs}
	}
	return nil
}

type validator struct {
	reg    *registry.Registry
	byID   map[string]*domain.NodeSpec
	parent map[string]string
	errs   []error
}

func (v *validator) fail(node, field, reason string, value any) {
	v.errs = append(v.errs, &ValidationError{Node: node, Field: field, Reason: reason, Value: value})
}

func (v *validator) node(parentID string, n *domain.NodeSpec, isRoot bool) {
	if n.ID == "" {
		v.fail("", "id", fmt.Sprintf("node of kind %s under %q has no id", n.Kind, parentID), nil)
	} else if _, dup := v.byID[n.ID]; dup {
		v.fail(n.ID, "id", "duplicate id", nil)
	} else {
		v.byID[n.ID] = n
		v.parent[n.ID] = parentID
	}

	if !isRoot && n.Kind == domain.KindRoot {
		v.fail(n.ID, "kind", "only the document root may be of kind root", nil)
	}
	if _, err := v.reg.Lookup(n.Kind); err != nil {
		v.fail(n.ID, "kind", err.Error(), nil)
		return
	}

	for _, child := range n.Children {
		if child.Kind.Valid() && !v.reg.AllowedAsChild(n.Kind, child.Kind) {
			v.fail(child.ID, "kind", fmt.Sprintf("%s cannot be a child of %s", child.Kind, n.Kind), nil)
		}
	}

	if n.Source != "" && !v.reg.Mirrors(n.Kind) {
		v.fail(n.ID, "source", fmt.Sprintf("kind %s cannot have a clone source", n.Kind), n.Source)
	}
	if n.Content != "" {
		if _, err := base64.StdEncoding.DecodeString(n.Content); err != nil {
			v.fail(n.ID, "content", "content is not valid base64", nil)
		}
	}
	if n.Bounds.W < 0 || n.Bounds.H < 0 {
		v.fail(n.ID, "bounds", "width and height must not be negative", n.Bounds)
	}
	if n.Style != nil && (n.Style.Opacity < 0 || n.Style.Opacity > 1) {
		v.fail(n.ID, "style.opacity", "opacity must be within [0, 1]", n.Style.Opacity)
	}
}

// sources checks that clone sources exist and that no clone depends on
// itself through children and clone sources.
func (v *validator) sources() {
	ids := make([]string, 0, len(v.byID))
	for id := range v.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		n := v.byID[id]
		if n.Source == "" {
			continue
		}
		if _, ok := v.byID[n.Source]; !ok {
			v.fail(id, "source", "clone source does not exist", n.Source)
			continue
		}
		if v.dependsOn(n.Source, id) {
			v.fail(id, "source", "clone source makes the node depend on itself", n.Source)
		}
	}
}

// dependsOn reports whether from reaches to through children and sources.
func (v *validator) dependsOn(from, to string) bool {
	seen := make(map[string]bool)
	stack := []string{from}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if id == to {
			return true
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		n, ok := v.byID[id]
		if !ok {
			continue
		}
		for _, c := range n.Children {
			stack = append(stack, c.ID)
		}
		if n.Source != "" {
			stack = append(stack, n.Source)
		}
	}
	return false
}
