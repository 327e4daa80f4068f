package runtime

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/strata/pkg/command"
	"github.com/aretw0/strata/pkg/domain"
	"github.com/aretw0/strata/pkg/tree"
	"github.com/aretw0/strata/pkg/undo"
)

// Editor validates structural edits, turns them into commands and records
// them on an undo stack. It holds no lock: callers serialize writers.
type Editor struct {
	tree    *tree.Tree
	history *undo.Stack
	logger  *slog.Logger
	hooks   domain.LifecycleHooks
}

// EditorOption configures an Editor.
type EditorOption func(*Editor)

// WithLogger sets a custom logger for the editor.
func WithLogger(logger *slog.Logger) EditorOption {
	return func(e *Editor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithHistory replaces the default undo stack.
func WithHistory(s *undo.Stack) EditorOption {
	return func(e *Editor) {
		if s != nil {
			e.history = s
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EditorOption {
	return func(e *Editor) {
		e.hooks = hooks
	}
}

// NewEditor creates an editor over t.
func NewEditor(t *tree.Tree, opts ...EditorOption) *Editor {
	e := &Editor{
		tree:   t,
		logger: slog.New(slog.NewJSONHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.history == nil {
		e.history = undo.New(undo.WithLogger(e.logger))
	}
	return e
}

func (e *Editor) Tree() *tree.Tree { return e.tree }

func (e *Editor) History() *undo.Stack { return e.history }

// push runs cmd through the history and reports it to the hooks.
func (e *Editor) push(ctx context.Context, cmd command.Command) {
	start := time.Now()
	e.history.Push(cmd)
	e.emit(ctx, e.hooks.OnCommand, cmd.Name(), start, nil)
	e.logger.Debug("command applied", "command", cmd.Name(), "duration", time.Since(start))
}

func (e *Editor) emit(ctx context.Context, hook func(context.Context, *domain.CommandEvent), name string, start time.Time, err error) {
	if hook == nil {
		return
	}
	ev := &domain.CommandEvent{
		Timestamp: start,
		Command:   name,
		Duration:  time.Since(start),
	}
	if err != nil {
		ev.IsError = true
		ev.Error = err.Error()
	}
	hook(ctx, ev)
}

func rejected(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrRejected, fmt.Sprintf(format, args...))
}

func (e *Editor) require(id domain.NodeID, what string) error {
	if !e.tree.Valid(id) {
		return fmt.Errorf("%s %s: %w", what, id, domain.ErrNodeNotFound)
	}
	return nil
}

// AddNode creates a node from init and attaches it right after anchor.
func (e *Editor) AddNode(ctx context.Context, init tree.NodeInit, parent, anchor domain.NodeID) (domain.NodeID, error) {
	node, err := e.create(init, parent)
	if err != nil {
		return domain.NilNode, err
	}
	if err := e.Attach(ctx, node, parent, anchor); err != nil {
		_ = e.tree.Destroy(node)
		return domain.NilNode, err
	}
	return node, nil
}

// AddNodeAt creates a node from init and attaches it at index.
func (e *Editor) AddNodeAt(ctx context.Context, init tree.NodeInit, parent domain.NodeID, index int) (domain.NodeID, error) {
	node, err := e.create(init, parent)
	if err != nil {
		return domain.NilNode, err
	}
	if err := e.AttachAt(ctx, node, parent, index); err != nil {
		_ = e.tree.Destroy(node)
		return domain.NilNode, err
	}
	return node, nil
}

func (e *Editor) create(init tree.NodeInit, parent domain.NodeID) (domain.NodeID, error) {
	if err := e.require(parent, "parent"); err != nil {
		return domain.NilNode, err
	}
	node, err := e.tree.NewNode(init)
	if err != nil {
		return domain.NilNode, fmt.Errorf("create node: %w", err)
	}
	return node, nil
}

// Attach adds an existing detached node under parent, right after anchor.
func (e *Editor) Attach(ctx context.Context, node, parent, anchor domain.NodeID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := e.require(node, "node"); err != nil {
		return err
	}
	if err := e.require(parent, "parent"); err != nil {
		return err
	}
	if !e.tree.CanAdd(parent, node, anchor) {
		return rejected("cannot add %s under %s after %s", node, parent, anchor)
	}
	e.push(ctx, command.NewAddNode(e.tree, node, parent, anchor))
	return nil
}

// AttachAt adds an existing detached node under parent at index.
func (e *Editor) AttachAt(ctx context.Context, node, parent domain.NodeID, index int) error {
	if index < 0 || index > e.tree.ChildCount(parent) {
		return rejected("index %d out of range for %s", index, parent)
	}
	anchor := domain.NilNode
	if index > 0 {
		anchor = e.tree.At(parent, index-1)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := e.require(node, "node"); err != nil {
		return err
	}
	if !e.tree.CanAdd(parent, node, anchor) {
		return rejected("cannot add %s under %s at %d", node, parent, index)
	}
	e.push(ctx, command.NewAddNodeAt(e.tree, node, parent, index))
	return nil
}

// RemoveNodes removes the given attached nodes and their subtrees in one step.
func (e *Editor) RemoveNodes(ctx context.Context, nodes ...domain.NodeID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(nodes) == 0 {
		return rejected("nothing to remove")
	}
	for _, n := range nodes {
		if err := e.require(n, "node"); err != nil {
			return err
		}
		if n == e.tree.Root() {
			return rejected("cannot remove the root")
		}
		if e.tree.Parent(n).IsNil() {
			return rejected("node %s is not attached", n)
		}
	}
	e.push(ctx, command.NewRemoveSubtree(e.tree, nodes...))
	return nil
}

// MoveNode relocates node right after anchor in parent.
func (e *Editor) MoveNode(ctx context.Context, node, parent, anchor domain.NodeID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := e.require(node, "node"); err != nil {
		return err
	}
	if err := e.require(parent, "parent"); err != nil {
		return err
	}
	if !e.tree.CanMove(node, parent, anchor) {
		return rejected("cannot move %s under %s after %s", node, parent, anchor)
	}
	e.push(ctx, command.NewMoveNode(e.tree, node, parent, anchor))
	return nil
}

// MoveNodeTo relocates node to index in parent, counted without node itself.
func (e *Editor) MoveNodeTo(ctx context.Context, node, parent domain.NodeID, index int) error {
	var anchors []domain.NodeID
	for _, c := range e.tree.Children(parent).All() {
		if c != node {
			anchors = append(anchors, c)
		}
	}
	if index < 0 || index > len(anchors) {
		return rejected("index %d out of range for %s", index, parent)
	}
	anchor := domain.NilNode
	if index > 0 {
		anchor = anchors[index-1]
	}
	return e.MoveNode(ctx, node, parent, anchor)
}

// SetSource retargets clone onto source. A nil source makes it dangling.
func (e *Editor) SetSource(ctx context.Context, clone, source domain.NodeID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := e.require(clone, "clone"); err != nil {
		return err
	}
	if !source.IsNil() {
		if err := e.require(source, "source"); err != nil {
			return err
		}
	}
	if !e.tree.CanSetSource(clone, source) {
		return rejected("%s cannot mirror %s", clone, source)
	}
	e.push(ctx, command.NewSetSource(e.tree, clone, source))
	return nil
}

// Undo reverts the last step.
func (e *Editor) Undo(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()
	name := e.history.UndoText()
	err := e.history.Undo()
	e.emit(ctx, e.hooks.OnUndo, name, start, err)
	return err
}

// Redo re-applies the last undone step.
func (e *Editor) Redo(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()
	name := e.history.RedoText()
	err := e.history.Redo()
	e.emit(ctx, e.hooks.OnRedo, name, start, err)
	return err
}

// Batch records everything fn does as one undo step named name. If fn fails,
// its edits are reverted and nothing is recorded.
func (e *Editor) Batch(ctx context.Context, name string, fn func() error) error {
	e.history.BeginMacro(name)
	if err := fn(); err != nil {
		if abortErr := e.history.AbortMacro(); abortErr != nil {
			e.logger.Error("abort batch", "batch", name, "err", abortErr)
		}
		return err
	}
	return e.history.EndMacro()
}

// Check verifies the tree invariants.
func (e *Editor) Check() error {
	return e.tree.Check()
}

// Spec exports the attached tree as a document snapshot.
func (e *Editor) Spec(docID, title string) *domain.DocumentSpec {
	return e.tree.Export(docID, title)
}
