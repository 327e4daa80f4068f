// Package script reads operation scripts: YAML (or JSON) lists of structural
// edits applied in order by `strata apply`.
package script

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/strata/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Script is the file form. A bare list of operations is accepted too.
type Script struct {
	Document string             `yaml:"document,omitempty"`
	Ops      []domain.Operation `yaml:"ops"`
}

// Applier applies one operation, e.g. *strata.Document.
type Applier interface {
	Apply(ctx context.Context, op domain.Operation) (domain.OperationResult, error)
}

// Parse decodes a script and checks every operation name.
func Parse(data []byte) (*Script, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("failed to parse script: %w", err)
	}

	var s Script
	if len(node.Content) > 0 && node.Content[0].Kind == yaml.SequenceNode {
		if err := node.Content[0].Decode(&s.Ops); err != nil {
			return nil, fmt.Errorf("failed to decode operations: %w", err)
		}
	} else if err := node.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to decode script: %w", err)
	}

	for i, op := range s.Ops {
		if err := check(op, fmt.Sprintf("ops[%d]", i)); err != nil {
			return nil, err
		}
	}
	return &s, nil
}

func check(op domain.Operation, at string) error {
	switch op.Op {
	case domain.OpAdd:
		if op.Spec == nil {
			return fmt.Errorf("%s: add requires a spec", at)
		}
	case domain.OpRemove:
		if len(op.Nodes) == 0 && op.Node == "" {
			return fmt.Errorf("%s: remove requires nodes", at)
		}
	case domain.OpMove, domain.OpSetSource:
		if op.Node == "" {
			return fmt.Errorf("%s: %s requires a node", at, op.Op)
		}
	case domain.OpUndo, domain.OpRedo:
	case domain.OpBatch:
		for i, sub := range op.Ops {
			if err := check(sub, fmt.Sprintf("%s.ops[%d]", at, i)); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("%s: %w: %q", at, domain.ErrUnknownOperation, op.Op)
	}
	return nil
}

// Load reads and parses the script at path.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	return Parse(data)
}

// Run applies the operations in order and stops at the first failure.
// It returns the results of the operations that succeeded.
func (s *Script) Run(ctx context.Context, target Applier) ([]domain.OperationResult, error) {
	results := make([]domain.OperationResult, 0, len(s.Ops))
	for i, op := range s.Ops {
		res, err := target.Apply(ctx, op)
		if err != nil {
			return results, fmt.Errorf("ops[%d]: %w", i, err)
		}
		results = append(results, res)
	}
	return results, nil
}
