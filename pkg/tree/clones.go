package tree

import (
	"slices"

	"github.com/aretw0/strata/pkg/domain"
)

// Source returns the clone source of node, or the nil handle.
func (t *Tree) Source(node domain.NodeID) domain.NodeID {
	if s, ok := t.get(node); ok {
		return s.source
	}
	return domain.NilNode
}

// Clones returns the clones registered on node, in registration order.
func (t *Tree) Clones(node domain.NodeID) []domain.NodeID {
	if s, ok := t.get(node); ok {
		return slices.Clone(s.clones)
	}
	return nil
}

// CloneIndex returns the position of clone in source's registry, or -1.
func (t *Tree) CloneIndex(source, clone domain.NodeID) int {
	if s, ok := t.get(source); ok {
		return slices.Index(s.clones, clone)
	}
	return -1
}

// SetSource retargets clone onto source, registering it last. A nil source
// leaves the clone dangling.
func (t *Tree) SetSource(clone, source domain.NodeID) bool {
	return t.SetSourceAt(clone, source, -1)
}

// SetSourceAt retargets clone onto source and registers it at position pos of
// the source's registry (-1 or out of range appends). It rejects kinds that do
// not mirror, stale handles and dependency cycles.
func (t *Tree) SetSourceAt(clone, source domain.NodeID, pos int) bool {
	if !t.CanSetSource(clone, source) {
		return false
	}
	c, _ := t.get(clone)
	if !c.source.IsNil() {
		t.unregister(c.source, clone)
	}
	c.source = source
	if !source.IsNil() {
		t.register(source, clone, pos)
	}
	return true
}

// CanSetSource reports whether SetSource would succeed.
func (t *Tree) CanSetSource(clone, source domain.NodeID) bool {
	c, ok := t.get(clone)
	if !ok || !t.registry.Mirrors(c.kind) {
		return false
	}
	if source.IsNil() {
		return true
	}
	if !t.Valid(source) || source == clone {
		return false
	}
	if c.source != source && t.dependsOn(source, clone) {
		t.logger.Debug("set source rejected: dependency cycle", "clone", clone.String(), "source", source.String())
		return false
	}
	return true
}

func (t *Tree) register(source, clone domain.NodeID, pos int) {
	s, ok := t.get(source)
	if !ok || slices.Contains(s.clones, clone) {
		return
	}
	if pos < 0 || pos > len(s.clones) {
		pos = len(s.clones)
	}
	s.clones = slices.Insert(slices.Clone(s.clones), pos, clone)
}

func (t *Tree) unregister(source, clone domain.NodeID) {
	s, ok := t.get(source)
	if !ok {
		return
	}
	if i := slices.Index(s.clones, clone); i >= 0 {
		s.clones = slices.Delete(slices.Clone(s.clones), i, i+1)
	}
}

// ComposedContent resolves what node shows: its own content for kinds that
// own content, or for a clone the composed content of its source. Dangling
// clones and containers compose as empty.
func (t *Tree) ComposedContent(node domain.NodeID) domain.Content {
	seen := 0
	for {
		s, ok := t.get(node)
		if !ok {
			return domain.Empty
		}
		if !t.registry.Mirrors(s.kind) {
			if !t.registry.OwnsContent(s.kind) {
				return domain.Empty
			}
			return s.content
		}
		if s.source.IsNil() || seen > t.live {
			return domain.Empty
		}
		node = s.source
		seen++
	}
}

// BearsContent reports whether node composes into any pixels.
func (t *Tree) BearsContent(node domain.NodeID) bool {
	return t.ComposedContent(node).BearsContent()
}

// dependsOn reports whether to is reachable from from over dependency edges:
// parent to child, and clone to source.
func (t *Tree) dependsOn(from, to domain.NodeID) bool {
	if from == to {
		return true
	}
	visited := map[domain.NodeID]bool{from: true}
	stack := []domain.NodeID{from}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		s, ok := t.get(id)
		if !ok {
			continue
		}
		next := s.children.view().Slice()
		if !s.source.IsNil() {
			next = append(next, s.source)
		}
		for _, n := range next {
			if n == to {
				return true
			}
			if !visited[n] {
				visited[n] = true
				stack = append(stack, n)
			}
		}
	}
	return false
}
