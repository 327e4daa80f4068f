package runtime

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/strata/pkg/domain"
)

// ErrAmbiguous is returned when a name matches more than one node.
var ErrAmbiguous = errors.New("ambiguous node reference")

// Resolve turns a reference into a handle. A reference is, in order of
// precedence: a handle ("3.1"), a path ("/Group/Layer"), a snapshot key or a
// unique node name. The empty string resolves to the nil handle.
func (e *Editor) Resolve(ref string) (domain.NodeID, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" || ref == "nil" {
		return domain.NilNode, nil
	}
	if id, err := domain.ParseNodeID(ref); err == nil && e.tree.Valid(id) {
		return id, nil
	}
	if strings.HasPrefix(ref, "/") {
		if id, ok := e.tree.Lookup(ref); ok {
			return id, nil
		}
		return domain.NilNode, fmt.Errorf("path %q: %w", ref, domain.ErrNodeNotFound)
	}
	if id, ok := e.tree.FindByKey(ref); ok {
		return id, nil
	}
	switch matches := e.tree.FindByName(ref); len(matches) {
	case 0:
		return domain.NilNode, fmt.Errorf("%q: %w", ref, domain.ErrNodeNotFound)
	case 1:
		return matches[0], nil
	default:
		return domain.NilNode, fmt.Errorf("%w: %q matches %d nodes", ErrAmbiguous, ref, len(matches))
	}
}

// resolveAll resolves every reference, stopping at the first failure.
func (e *Editor) resolveAll(refs []string) ([]domain.NodeID, error) {
	out := make([]domain.NodeID, 0, len(refs))
	for _, r := range refs {
		id, err := e.Resolve(r)
		if err != nil {
			return nil, err
		}
		if id.IsNil() {
			return nil, fmt.Errorf("empty node reference: %w", domain.ErrNodeNotFound)
		}
		out = append(out, id)
	}
	return out, nil
}
