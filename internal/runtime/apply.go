package runtime

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/aretw0/strata/pkg/domain"
	"github.com/aretw0/strata/pkg/tree"
)

// Apply executes a serialized operation and reports the history afterwards.
func (e *Editor) Apply(ctx context.Context, op domain.Operation) (domain.OperationResult, error) {
	var res domain.OperationResult
	if err := e.apply(ctx, op, &res); err != nil {
		return e.result(res), fmt.Errorf("%s: %w", op.Op, err)
	}
	return e.result(res), nil
}

func (e *Editor) result(res domain.OperationResult) domain.OperationResult {
	res.CanUndo = e.history.CanUndo()
	res.CanRedo = e.history.CanRedo()
	res.Undo = e.history.UndoText()
	res.Redo = e.history.RedoText()
	return res
}

func (e *Editor) apply(ctx context.Context, op domain.Operation, res *domain.OperationResult) error {
	switch op.Op {
	case domain.OpAdd:
		id, err := e.applyAdd(ctx, op)
		if err != nil {
			return err
		}
		res.Created = append(res.Created, id)
		return nil

	case domain.OpRemove:
		refs := op.Nodes
		if op.Node != "" {
			refs = append([]string{op.Node}, refs...)
		}
		nodes, err := e.resolveAll(refs)
		if err != nil {
			return err
		}
		return e.RemoveNodes(ctx, nodes...)

	case domain.OpMove:
		node, err := e.resolveNode(op.Node)
		if err != nil {
			return err
		}
		parent := e.tree.Parent(node)
		if op.Parent != "" {
			if parent, err = e.resolveNode(op.Parent); err != nil {
				return err
			}
		}
		if op.Index != nil {
			return e.MoveNodeTo(ctx, node, parent, *op.Index)
		}
		anchor, err := e.Resolve(op.Anchor)
		if err != nil {
			return err
		}
		return e.MoveNode(ctx, node, parent, anchor)

	case domain.OpSetSource:
		clone, err := e.resolveNode(op.Node)
		if err != nil {
			return err
		}
		source, err := e.Resolve(op.Source)
		if err != nil {
			return err
		}
		return e.SetSource(ctx, clone, source)

	case domain.OpUndo:
		return e.Undo(ctx)

	case domain.OpRedo:
		return e.Redo(ctx)

	case domain.OpBatch:
		name := op.Name
		if name == "" {
			name = "Batch"
		}
		return e.Batch(ctx, name, func() error {
			for i, sub := range op.Ops {
				if sub.Op == domain.OpUndo || sub.Op == domain.OpRedo {
					return fmt.Errorf("batch step %d: %w: %s inside a batch", i, domain.ErrRejected, sub.Op)
				}
				if err := e.apply(ctx, sub, res); err != nil {
					return fmt.Errorf("batch step %d (%s): %w", i, sub.Op, err)
				}
			}
			return nil
		})

	default:
		return fmt.Errorf("%w: %q", domain.ErrUnknownOperation, op.Op)
	}
}

func (e *Editor) resolveNode(ref string) (domain.NodeID, error) {
	id, err := e.Resolve(ref)
	if err != nil {
		return domain.NilNode, err
	}
	if id.IsNil() {
		return domain.NilNode, fmt.Errorf("missing node reference: %w", domain.ErrNodeNotFound)
	}
	return id, nil
}

func (e *Editor) applyAdd(ctx context.Context, op domain.Operation) (domain.NodeID, error) {
	if op.Spec == nil {
		return domain.NilNode, fmt.Errorf("%w: add needs a node spec", domain.ErrRejected)
	}
	parent := e.tree.Root()
	if op.Parent != "" {
		var err error
		if parent, err = e.resolveNode(op.Parent); err != nil {
			return domain.NilNode, err
		}
	}
	anchor, err := e.Resolve(op.Anchor)
	if err != nil {
		return domain.NilNode, err
	}

	node, err := e.Build(*op.Spec)
	if err != nil {
		return domain.NilNode, err
	}
	if op.Index != nil {
		err = e.AttachAt(ctx, node, parent, *op.Index)
	} else {
		err = e.Attach(ctx, node, parent, anchor)
	}
	if err != nil {
		_ = e.tree.Destroy(node)
		return domain.NilNode, err
	}
	return node, nil
}

// Build creates a detached subtree from spec. Clone sources may name nodes of
// the tree or of the spec itself.
func (e *Editor) Build(spec domain.NodeSpec) (domain.NodeID, error) {
	type pending struct {
		id     domain.NodeID
		source string
	}
	var (
		top     domain.NodeID
		sources []pending
		err     error
	)
	ids := map[*domain.NodeSpec]domain.NodeID{}
	doc := domain.DocumentSpec{Root: spec}

	doc.Walk(func(_ string, n *domain.NodeSpec) bool {
		var content domain.Content = domain.Empty
		if n.Content != "" {
			data, derr := base64.StdEncoding.DecodeString(n.Content)
			if derr != nil {
				err = fmt.Errorf("node %q content: %w", n.ID, derr)
				return false
			}
			content = domain.NewRaster(data)
		}
		if n.ID != "" {
			if _, taken := e.tree.FindByKey(n.ID); taken {
				err = fmt.Errorf("%w: key %q already in use", domain.ErrRejected, n.ID)
				return false
			}
		}
		id, nerr := e.tree.NewNode(tree.NodeInit{
			Kind:    n.Kind,
			Key:     n.ID,
			Name:    n.Name,
			Bounds:  n.Bounds.Image(),
			Style:   n.Style,
			Content: content,
		})
		if nerr != nil {
			err = fmt.Errorf("node %q: %w", n.Name, nerr)
			return false
		}
		ids[n] = id
		if top.IsNil() {
			top = id
		}
		if n.Source != "" {
			sources = append(sources, pending{id: id, source: n.Source})
		}
		return true
	})

	// Children are attached while the subtree is still detached, so no
	// listener hears about them.
	if err == nil {
		doc.Walk(func(_ string, n *domain.NodeSpec) bool {
			for i := range n.Children {
				if !e.tree.Append(ids[n], ids[&n.Children[i]]) {
					err = fmt.Errorf("%w: %s cannot hold %s", domain.ErrRejected, n.Kind, n.Children[i].Kind)
					return false
				}
			}
			return true
		})
	}
	if err == nil {
		for _, p := range sources {
			src, rerr := e.resolveNode(p.source)
			if rerr != nil {
				err = fmt.Errorf("clone source: %w", rerr)
				break
			}
			if !e.tree.SetSource(p.id, src) {
				err = fmt.Errorf("%w: %s cannot mirror %q", domain.ErrRejected, p.id, p.source)
				break
			}
		}
	}

	if err != nil {
		for _, id := range ids {
			if e.tree.Valid(id) && e.tree.Parent(id).IsNil() {
				_ = e.tree.Destroy(id)
			}
		}
		return domain.NilNode, err
	}
	return top, nil
}
