package command

import (
	"fmt"
	"image"
	"sort"
	"strings"
	"testing"

	"github.com/aretw0/strata/pkg/domain"
	"github.com/aretw0/strata/pkg/tree"
	"github.com/stretchr/testify/require"
)

// fixture builds nodes by name and attaches them in one call.
type fixture struct {
	t  *testing.T
	tr *tree.Tree
	id map[string]domain.NodeID
}

func newFixture(t *testing.T, opts ...tree.Option) *fixture {
	tr := tree.New(append([]tree.Option{tree.WithDebug(true)}, opts...)...)
	return &fixture{t: t, tr: tr, id: map[string]domain.NodeID{"Root": tr.Root()}}
}

func (f *fixture) node(name string, kind domain.Kind, parent string) domain.NodeID {
	f.t.Helper()
	return f.nodeWith(name, parent, tree.NodeInit{Kind: kind})
}

func (f *fixture) paint(name, parent, pixels string) domain.NodeID {
	f.t.Helper()
	return f.nodeWith(name, parent, tree.NodeInit{
		Kind:    domain.KindPaint,
		Content: domain.NewRaster([]byte(pixels)),
		Bounds:  image.Rect(0, 0, 8, 8),
	})
}

func (f *fixture) clone(name, parent, source string) domain.NodeID {
	f.t.Helper()
	style := domain.Style{Opacity: 0.5, Visible: true, Blend: domain.BlendMultiply}
	return f.nodeWith(name, parent, tree.NodeInit{
		Kind:   domain.KindClone,
		Source: f.id[source],
		Style:  &style,
		Bounds: image.Rect(1, 2, 3, 4),
	})
}

func (f *fixture) nodeWith(name, parent string, init tree.NodeInit) domain.NodeID {
	f.t.Helper()
	init.Name = name
	id, err := f.tr.NewNode(init)
	require.NoError(f.t, err)
	if parent != "" {
		require.True(f.t, f.tr.Append(f.id[parent], id), "attach %s under %s", name, parent)
	}
	f.id[name] = id
	return id
}

func (f *fixture) names(parent string) []string {
	var out []string
	for _, c := range f.tr.Children(f.id[parent]).All() {
		out = append(out, f.tr.Name(c))
	}
	return out
}

// shape captures identities, order, parents and clone bindings of everything
// reachable from the root.
func shape(tr *tree.Tree) string {
	var lines []string
	tr.Walk(tr.Root(), func(id domain.NodeID, depth int) bool {
		lines = append(lines, fmt.Sprintf("%s%s parent=%s source=%s clones=%v",
			strings.Repeat("  ", depth), id, tr.Parent(id), tr.Source(id), tr.Clones(id)))
		return true
	})
	return strings.Join(lines, "\n")
}

// removals records, for every AboutToRemove, the name of the child leaving.
type removals struct {
	tr    *tree.Tree
	order []string
	pairs int
}

func (r *removals) AboutToAdd(domain.NodeID, int) { r.pairs++ }
func (r *removals) Added(domain.NodeID, int)      { r.pairs-- }
func (r *removals) AboutToRemove(p domain.NodeID, i int) {
	r.pairs++
	r.order = append(r.order, r.tr.Name(r.tr.At(p, i)))
}
func (r *removals) Removed(domain.NodeID, int)          { r.pairs-- }
func (r *removals) AboutToMove(domain.NodeID, int, int) { r.pairs++ }
func (r *removals) Moved(domain.NodeID, int, int)       { r.pairs-- }

// dirtyLog records Refresher calls.
type dirtyLog struct {
	calls []string
}

func (d *dirtyLog) Dirty(node domain.NodeID, region image.Rectangle) {
	d.calls = append(d.calls, fmt.Sprintf("dirty %s %v", node, region))
}

func (d *dirtyLog) DirtyFull(node domain.NodeID, region image.Rectangle) {
	d.calls = append(d.calls, fmt.Sprintf("full %s %v", node, region))
}

func sortedNames(tr *tree.Tree, ids []domain.NodeID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, tr.Name(id))
	}
	sort.Strings(out)
	return out
}
