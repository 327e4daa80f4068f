package strata

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/strata/internal/logging"
	"github.com/aretw0/strata/internal/runtime"
	loamAdapter "github.com/aretw0/strata/pkg/adapters/loam"
	"github.com/aretw0/strata/pkg/domain"
	"github.com/aretw0/strata/pkg/observability"
	"github.com/aretw0/strata/pkg/ports"
	"github.com/aretw0/strata/pkg/tree"
	"github.com/aretw0/strata/pkg/undo"
)

// NodeInit describes a node to create.
type NodeInit = tree.NodeInit

// OutlineEntry is one line of Document.Inspect.
type OutlineEntry = runtime.OutlineEntry

// ErrAmbiguous is returned by Resolve when a name matches several nodes.
var ErrAmbiguous = runtime.ErrAmbiguous

// Document is the high-level entry point of the library: a node tree plus the
// editor and undo history operating on it.
type Document struct {
	ID    string
	Title string

	editor *runtime.Editor
	tree   *tree.Tree

	hooks        []domain.LifecycleHooks
	listeners    []ports.GraphListener
	refresher    ports.Refresher
	logger       *slog.Logger
	debug        bool
	historyLimit int
}

// Option defines a functional option for configuring a Document.
type Option func(*Document)

// WithLifecycleHooks registers observability hooks. Repeated options add up.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(d *Document) {
		d.hooks = append(d.hooks, hooks)
	}
}

// WithListener observes every structural change of the tree. Repeated options
// add listeners, notified in order.
func WithListener(l ports.GraphListener) Option {
	return func(d *Document) {
		d.listeners = append(d.listeners, l)
	}
}

// WithRefresher receives the regions to refresh after nodes leave the tree.
func WithRefresher(r ports.Refresher) Option {
	return func(d *Document) {
		d.refresher = r
	}
}

// WithLogger sets a custom structured logger for the document.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Document) {
		d.logger = logger
	}
}

// WithDebug makes invariant violations panic.
func WithDebug(debug bool) Option {
	return func(d *Document) {
		d.debug = debug
	}
}

// WithHistoryLimit caps the number of undo steps (0 means unlimited).
func WithHistoryLimit(n int) Option {
	return func(d *Document) {
		d.historyLimit = n
	}
}

// WithTitle sets the document title.
func WithTitle(title string) Option {
	return func(d *Document) {
		d.Title = title
	}
}

func configure(id string, opts []Option) *Document {
	d := &Document{ID: id, historyLimit: undo.DefaultLimit}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = logging.NewNop()
	}
	if d.ID != "" {
		d.logger = d.logger.With("document", d.ID)
	}
	return d
}

func (d *Document) treeOptions() []tree.Option {
	return []tree.Option{
		tree.WithLogger(d.logger),
		tree.WithDebug(d.debug),
		tree.WithListener(observability.Combine(d.listeners...)),
		tree.WithRefresher(d.refresher),
	}
}

func (d *Document) attach(t *tree.Tree) *Document {
	d.tree = t
	d.editor = runtime.NewEditor(t,
		runtime.WithLogger(d.logger),
		runtime.WithLifecycleHooks(observability.MergeHooks(d.hooks...)),
		runtime.WithHistory(undo.New(undo.WithLimit(d.historyLimit), undo.WithLogger(d.logger))),
	)
	return d
}

// New creates an empty document holding only a root.
func New(id string, opts ...Option) *Document {
	d := configure(id, opts)
	return d.attach(tree.New(d.treeOptions()...))
}

// Open builds a document from a snapshot.
func Open(spec *domain.DocumentSpec, opts ...Option) (*Document, error) {
	if spec == nil {
		return nil, fmt.Errorf("open document: %w", domain.ErrDocumentNotFound)
	}
	d := configure(spec.ID, opts)
	if d.Title == "" {
		d.Title = spec.Title
	}
	t, err := tree.Import(spec, d.treeOptions()...)
	if err != nil {
		return nil, fmt.Errorf("open document %q: %w", spec.ID, err)
	}
	return d.attach(t), nil
}

// Load reads a document through loader and opens it.
func Load(ctx context.Context, loader ports.DocumentLoader, id string, opts ...Option) (*Document, error) {
	spec, err := loader.LoadDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	return Open(spec, opts...)
}

// LoadFromRepo opens document id from a Loam repository at repoPath.
func LoadFromRepo(ctx context.Context, repoPath, id string, opts ...Option) (*Document, error) {
	loader, err := loamAdapter.Open(repoPath)
	if err != nil {
		return nil, err
	}
	return Load(ctx, loader, id, opts...)
}

// Save stores the current snapshot and marks the history clean.
func (d *Document) Save(ctx context.Context, store ports.DocumentStore) error {
	if err := store.Save(ctx, d.ID, d.Spec()); err != nil {
		return fmt.Errorf("save document %q: %w", d.ID, err)
	}
	d.editor.History().SetClean()
	return nil
}

// Root returns the root handle.
func (d *Document) Root() domain.NodeID { return d.tree.Root() }

// Tree exposes the node tree for read access.
func (d *Document) Tree() *tree.Tree { return d.tree }

// History exposes the undo stack.
func (d *Document) History() *undo.Stack { return d.editor.History() }

// Modified reports whether there are edits since the last Save.
func (d *Document) Modified() bool { return !d.editor.History().IsClean() }

// AddNode creates a node and inserts it after anchor (first for a nil anchor).
func (d *Document) AddNode(ctx context.Context, init NodeInit, parent, anchor domain.NodeID) (domain.NodeID, error) {
	return d.editor.AddNode(ctx, init, parent, anchor)
}

// AddNodeAt creates a node and inserts it at index.
func (d *Document) AddNodeAt(ctx context.Context, init NodeInit, parent domain.NodeID, index int) (domain.NodeID, error) {
	return d.editor.AddNodeAt(ctx, init, parent, index)
}

// Attach inserts an existing detached node after anchor.
func (d *Document) Attach(ctx context.Context, node, parent, anchor domain.NodeID) error {
	return d.editor.Attach(ctx, node, parent, anchor)
}

// RemoveNodes removes nodes with their subtrees as one undo step.
func (d *Document) RemoveNodes(ctx context.Context, nodes ...domain.NodeID) error {
	return d.editor.RemoveNodes(ctx, nodes...)
}

// MoveNode relocates node after anchor in parent.
func (d *Document) MoveNode(ctx context.Context, node, parent, anchor domain.NodeID) error {
	return d.editor.MoveNode(ctx, node, parent, anchor)
}

// SetSource retargets a clone.
func (d *Document) SetSource(ctx context.Context, clone, source domain.NodeID) error {
	return d.editor.SetSource(ctx, clone, source)
}

func (d *Document) Undo(ctx context.Context) error { return d.editor.Undo(ctx) }

func (d *Document) Redo(ctx context.Context) error { return d.editor.Redo(ctx) }

// Batch groups every edit made by fn into one undo step.
func (d *Document) Batch(ctx context.Context, name string, fn func() error) error {
	return d.editor.Batch(ctx, name, fn)
}

// Apply executes a serialized operation.
func (d *Document) Apply(ctx context.Context, op domain.Operation) (domain.OperationResult, error) {
	return d.editor.Apply(ctx, op)
}

// Resolve turns a handle, path, key or unique name into a node handle.
func (d *Document) Resolve(ref string) (domain.NodeID, error) {
	return d.editor.Resolve(ref)
}

// Spec exports the current snapshot.
func (d *Document) Spec() *domain.DocumentSpec {
	return d.editor.Spec(d.ID, d.Title)
}

// Inspect returns the outline of the attached tree.
func (d *Document) Inspect() []OutlineEntry {
	return d.editor.Outline()
}

// Check verifies the tree invariants.
func (d *Document) Check() error {
	return d.editor.Check()
}
