package registry

import (
	"sync"

	"github.com/aretw0/strata/pkg/domain"
)

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Init builds the default registry with the built-in kinds and returns it.
// It is safe to call from several goroutines; the table is built once.
func Init() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = NewRegistry()
		RegisterBuiltins(defaultRegistry)
	})
	return defaultRegistry
}

// RegisterBuiltins installs the capability table of the built-in kinds into r.
func RegisterBuiltins(r *Registry) {
	var layers []domain.Kind
	for _, k := range domain.Kinds {
		if k.IsLayer() {
			layers = append(layers, k)
		}
	}
	masks := []domain.Kind{domain.KindMask}

	r.Register(domain.KindRoot, Capabilities{Children: layers})
	r.Register(domain.KindGroup, Capabilities{Children: append(append([]domain.Kind{}, layers...), masks...)})
	r.Register(domain.KindPaint, Capabilities{Children: masks, OwnsContent: true})
	r.Register(domain.KindClone, Capabilities{Children: masks, Mirrors: true})
	r.Register(domain.KindFilter, Capabilities{Children: masks})
	r.Register(domain.KindMask, Capabilities{OwnsContent: true})
}
