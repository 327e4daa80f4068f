package tree

import (
	"fmt"
	"testing"

	"github.com/aretw0/strata/pkg/domain"
	"github.com/stretchr/testify/require"
)

// recorder logs every notification as a compact string.
type recorder struct {
	calls []string
}

func (r *recorder) AboutToAdd(p domain.NodeID, i int) { r.log("aboutToAdd", p, i) }
func (r *recorder) Added(p domain.NodeID, i int)      { r.log("added", p, i) }
func (r *recorder) AboutToRemove(p domain.NodeID, i int) {
	r.log("aboutToRemove", p, i)
}
func (r *recorder) Removed(p domain.NodeID, i int) { r.log("removed", p, i) }
func (r *recorder) AboutToMove(p domain.NodeID, o, n int) {
	r.calls = append(r.calls, fmt.Sprintf("aboutToMove %s %d->%d", p, o, n))
}
func (r *recorder) Moved(p domain.NodeID, o, n int) {
	r.calls = append(r.calls, fmt.Sprintf("moved %s %d->%d", p, o, n))
}

func (r *recorder) log(ev string, p domain.NodeID, i int) {
	r.calls = append(r.calls, fmt.Sprintf("%s %s %d", ev, p, i))
}

func (r *recorder) reset() { r.calls = nil }

func newNode(t *testing.T, tr *Tree, kind domain.Kind, name string) domain.NodeID {
	t.Helper()
	id, err := tr.NewNode(NodeInit{Kind: kind, Name: name})
	require.NoError(t, err)
	return id
}

func names(tr *Tree, parent domain.NodeID) []string {
	var out []string
	for _, c := range tr.Children(parent).All() {
		out = append(out, tr.Name(c))
	}
	return out
}

// requireDuality checks that every child points back at its parent and is found by IndexOf.
func requireDuality(t *testing.T, tr *Tree) {
	t.Helper()
	tr.Walk(tr.Root(), func(n domain.NodeID, _ int) bool {
		for _, c := range tr.Children(n).All() {
			require.Equal(t, n, tr.Parent(c))
			require.NotEqual(t, -1, tr.Children(n).IndexOf(c, -1))
		}
		return true
	})
	require.NoError(t, tr.Check())
}
