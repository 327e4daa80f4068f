package tree

import (
	"io"
	"log/slog"

	"github.com/aretw0/strata/pkg/ports"
	"github.com/aretw0/strata/pkg/registry"
)

// Option configures a Tree.
type Option func(*Tree)

// WithLogger sets a custom logger for the tree.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Tree) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithDebug makes invariant violations panic instead of being logged and skipped.
func WithDebug(debug bool) Option {
	return func(t *Tree) {
		t.debug = debug
	}
}

// WithRegistry sets the kind capability registry. Defaults to registry.Init().
func WithRegistry(r *registry.Registry) Option {
	return func(t *Tree) {
		if r != nil {
			t.registry = r
		}
	}
}

// WithRefresher sets the sink for dirty regions computed after a node is detached.
func WithRefresher(r ports.Refresher) Option {
	return func(t *Tree) {
		t.refresher = r
	}
}

// WithListener installs a listener on the root, observing the whole tree.
func WithListener(l ports.GraphListener) Option {
	return func(t *Tree) {
		t.rootListener = l
	}
}

func nopLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}
