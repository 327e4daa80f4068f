package tree

import (
	"errors"
	"fmt"
	"slices"

	"github.com/aretw0/strata/pkg/domain"
)

// Assert reports cond. When cond is false the tree panics in debug mode,
// otherwise it logs the violation and lets the caller skip the step.
func (t *Tree) Assert(cond bool, msg string, args ...any) bool {
	if cond {
		return true
	}
	if t.debug {
		panic(fmt.Sprintf("%s: %s %v", domain.ErrInvariant, msg, args))
	}
	t.logger.Error(msg, append([]any{"err", domain.ErrInvariant}, args...)...)
	return false
}

// Debug reports whether the tree was built with WithDebug(true).
func (t *Tree) Debug() bool { return t.debug }

// Check verifies the structural invariants of the whole arena and returns every
// violation joined, each wrapping domain.ErrInvariant.
func (t *Tree) Check() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: %s", domain.ErrInvariant, fmt.Sprintf(format, args...)))
	}

	if root, ok := t.get(t.root); !ok {
		fail("root %s is not live", t.root)
	} else if !root.parent.IsNil() {
		fail("root has parent %s", root.parent)
	}

	for i := range t.slots {
		s := &t.slots[i]
		if !s.alive {
			continue
		}
		id := domain.NodeID{Slot: uint32(i), Gen: s.gen}

		if !s.parent.IsNil() {
			p, ok := t.get(s.parent)
			if !ok {
				fail("node %s has stale parent %s", id, s.parent)
			} else if n := count(p.children.ids, id); n != 1 {
				fail("node %s appears %d times in parent %s", id, n, s.parent)
			}
		}
		for _, c := range s.children.ids {
			cs, ok := t.get(c)
			if !ok {
				fail("node %s has stale child %s", id, c)
			} else if cs.parent != id {
				fail("child %s of %s points at parent %s", c, id, cs.parent)
			}
		}

		if !s.source.IsNil() {
			src, ok := t.get(s.source)
			if !ok {
				fail("clone %s has stale source %s", id, s.source)
			} else if count(src.clones, id) != 1 {
				fail("clone %s missing from registry of %s", id, s.source)
			}
		}
		for _, c := range s.clones {
			cs, ok := t.get(c)
			if !ok {
				fail("registry of %s holds stale clone %s", id, c)
			} else if cs.source != id {
				fail("registry of %s holds %s whose source is %s", id, c, cs.source)
			}
		}
	}

	if cyc, ok := t.findCycle(); ok {
		fail("dependency cycle through %s", cyc)
	}
	return errors.Join(errs...)
}

func count(ids []domain.NodeID, id domain.NodeID) int {
	n := 0
	for _, v := range ids {
		if v == id {
			n++
		}
	}
	return n
}

// findCycle runs an iterative three-colour DFS over the dependency edges.
func (t *Tree) findCycle() (domain.NodeID, bool) {
	const (
		white = iota
		grey
		black
	)
	colour := make(map[domain.NodeID]int)
	type frame struct {
		id   domain.NodeID
		deps []domain.NodeID
		next int
	}

	for i := range t.slots {
		s := &t.slots[i]
		if !s.alive {
			continue
		}
		start := domain.NodeID{Slot: uint32(i), Gen: s.gen}
		if colour[start] != white {
			continue
		}
		stack := []*frame{{id: start, deps: t.deps(start)}}
		colour[start] = grey
		for len(stack) > 0 {
			f := stack[len(stack)-1]
			if f.next >= len(f.deps) {
				colour[f.id] = black
				stack = stack[:len(stack)-1]
				continue
			}
			d := f.deps[f.next]
			f.next++
			switch colour[d] {
			case grey:
				return d, true
			case white:
				if t.Valid(d) {
					colour[d] = grey
					stack = append(stack, &frame{id: d, deps: t.deps(d)})
				}
			}
		}
	}
	return domain.NilNode, false
}

func (t *Tree) deps(id domain.NodeID) []domain.NodeID {
	s, ok := t.get(id)
	if !ok {
		return nil
	}
	out := slices.Clone(s.children.ids)
	if !s.source.IsNil() {
		out = append(out, s.source)
	}
	return out
}
