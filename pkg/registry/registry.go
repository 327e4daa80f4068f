package registry

import (
	"fmt"
	"sync"

	"github.com/aretw0/strata/pkg/domain"
)

// Capabilities describes what a node kind is allowed to do in a tree.
type Capabilities struct {
	// Children lists the kinds a node of this kind may host.
	Children []domain.Kind
	// OwnsContent is true when nodes of this kind carry their own pixels.
	OwnsContent bool
	// Mirrors is true when the kind composes the content of a clone source.
	Mirrors bool
}

func (c Capabilities) hosts(kind domain.Kind) bool {
	for _, k := range c.Children {
		if k == kind {
			return true
		}
	}
	return false
}

// Registry maps node kinds to their capabilities.
type Registry struct {
	mu    sync.RWMutex
	kinds map[domain.Kind]Capabilities
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		kinds: make(map[domain.Kind]Capabilities),
	}
}

// Register adds a kind to the registry.
// If the kind is already registered, its capabilities are overwritten.
func (r *Registry) Register(kind domain.Kind, caps Capabilities) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.kinds[kind] = caps
}

// Lookup returns the capabilities registered for kind.
func (r *Registry) Lookup(kind domain.Kind) (Capabilities, error) {
	r.mu.RLock()
	caps, ok := r.kinds[kind]
	r.mu.RUnlock()

	if !ok {
		return Capabilities{}, fmt.Errorf("%w: %s", domain.ErrUnknownKind, kind)
	}
	return caps, nil
}

// AllowedAsChild reports whether a node of kind child may be attached under a
// node of kind parent. Unknown kinds are never allowed.
func (r *Registry) AllowedAsChild(parent, child domain.Kind) bool {
	caps, err := r.Lookup(parent)
	if err != nil {
		return false
	}
	if _, err := r.Lookup(child); err != nil {
		return false
	}
	return caps.hosts(child)
}

// OwnsContent reports whether nodes of kind carry their own content.
func (r *Registry) OwnsContent(kind domain.Kind) bool {
	caps, err := r.Lookup(kind)
	return err == nil && caps.OwnsContent
}

// Mirrors reports whether nodes of kind compose a clone source.
func (r *Registry) Mirrors(kind domain.Kind) bool {
	caps, err := r.Lookup(kind)
	return err == nil && caps.Mirrors
}
