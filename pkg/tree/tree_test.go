package tree

import (
	"testing"

	"github.com/aretw0/strata/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdd_AnchorPlacement(t *testing.T) {
	tr := New()
	root := tr.Root()
	a := newNode(t, tr, domain.KindPaint, "LayerA")
	b := newNode(t, tr, domain.KindPaint, "LayerB")
	c := newNode(t, tr, domain.KindPaint, "LayerC")

	require.True(t, tr.Add(root, a, domain.NilNode))
	require.True(t, tr.Add(root, b, a))
	require.True(t, tr.Add(root, c, a))

	assert.Equal(t, []string{"LayerA", "LayerC", "LayerB"}, names(tr, root))
	assert.Equal(t, a, tr.PrevSibling(c))
	assert.Equal(t, b, tr.NextSibling(c))
	assert.Equal(t, "/LayerC", tr.Path(c))
	requireDuality(t, tr)
}

func TestAdd_Rejections(t *testing.T) {
	tr := New()
	root := tr.Root()
	grp := newNode(t, tr, domain.KindGroup, "Group")
	inner := newNode(t, tr, domain.KindPaint, "Inner")
	outer := newNode(t, tr, domain.KindPaint, "Outer")
	mask := newNode(t, tr, domain.KindMask, "Mask")
	require.True(t, tr.Append(root, grp))
	require.True(t, tr.Append(grp, inner))

	stale := newNode(t, tr, domain.KindPaint, "Stale")
	require.NoError(t, tr.Destroy(stale))

	tests := []struct {
		name   string
		parent domain.NodeID
		node   domain.NodeID
		anchor domain.NodeID
	}{
		{"nil node", root, domain.NilNode, domain.NilNode},
		{"nil parent", domain.NilNode, outer, domain.NilNode},
		{"stale node", root, stale, domain.NilNode},
		{"root as child", grp, root, domain.NilNode},
		{"already parented", root, inner, domain.NilNode},
		{"foreign anchor", root, outer, inner},
		{"mask under root", root, mask, domain.NilNode},
		{"paint under paint", inner, outer, domain.NilNode},
		{"self as parent", outer, outer, domain.NilNode},
		{"anchor is node", root, outer, outer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			tr.SetListener(root, rec)
			before := tr.Export("doc", "")

			assert.False(t, tr.Add(tt.parent, tt.node, tt.anchor))
			assert.Empty(t, rec.calls, "rejected add must not notify")
			assert.Equal(t, before, tr.Export("doc", ""))
		})
	}
}

// A foreign anchor leaves the tree unchanged.
func TestAdd_ForeignAnchorLeavesTreeUnchanged(t *testing.T) {
	tr := New()
	root := tr.Root()
	g1 := newNode(t, tr, domain.KindGroup, "G1")
	g2 := newNode(t, tr, domain.KindGroup, "G2")
	x := newNode(t, tr, domain.KindPaint, "X")
	n := newNode(t, tr, domain.KindPaint, "N")
	require.True(t, tr.Append(root, g1))
	require.True(t, tr.Append(root, g2))
	require.True(t, tr.Append(g1, x))

	assert.False(t, tr.Add(g2, n, x))
	assert.True(t, tr.Parent(n).IsNil())
	assert.Equal(t, 0, tr.ChildCount(g2))
	assert.Equal(t, []string{"X"}, names(tr, g1))
}

func TestAdd_RejectsDependencyCycle(t *testing.T) {
	tr := New()
	root := tr.Root()
	grp := newNode(t, tr, domain.KindGroup, "Group")
	require.True(t, tr.Append(root, grp))

	clone, err := tr.NewNode(NodeInit{Kind: domain.KindClone, Name: "Clone", Source: grp})
	require.NoError(t, err)

	// The clone mirrors the group, so it cannot live inside it.
	assert.False(t, tr.Append(grp, clone))
	assert.True(t, tr.Append(root, clone))
	requireDuality(t, tr)
}

func TestListener_NotificationOrder(t *testing.T) {
	rec := &recorder{}
	tr := New(WithListener(rec))
	root := tr.Root()
	a := newNode(t, tr, domain.KindPaint, "A")
	b := newNode(t, tr, domain.KindPaint, "B")

	var seenDuringAdd int
	var parentDuringAdd domain.NodeID
	spy := &hookListener{recorder: rec, onAdded: func() {
		seenDuringAdd = tr.ChildCount(root)
		parentDuringAdd = tr.Parent(a)
	}}
	tr.SetListener(root, spy)

	require.True(t, tr.Append(root, a))
	require.True(t, tr.Append(root, b))
	require.True(t, tr.Move(b, root, domain.NilNode))
	require.True(t, tr.RemoveNode(a))

	assert.Equal(t, 1, seenDuringAdd, "Added sees the inserted child")
	assert.Equal(t, root, parentDuringAdd)
	assert.Equal(t, []string{
		"aboutToAdd 0.1 0", "added 0.1 0",
		"aboutToAdd 0.1 1", "added 0.1 1",
		"aboutToMove 0.1 1->0", "moved 0.1 1->0",
		"aboutToRemove 0.1 1", "removed 0.1 1",
	}, rec.calls)
}

type hookListener struct {
	*recorder
	onAdded func()
}

func (h *hookListener) Added(p domain.NodeID, i int) {
	if h.onAdded != nil {
		h.onAdded()
		h.onAdded = nil
	}
	h.recorder.Added(p, i)
}

func TestListener_PropagatesAndClears(t *testing.T) {
	rec := &recorder{}
	tr := New(WithListener(rec))
	root := tr.Root()
	grp := newNode(t, tr, domain.KindGroup, "G")
	leaf := newNode(t, tr, domain.KindPaint, "L")
	require.True(t, tr.Append(grp, leaf))
	assert.Nil(t, tr.Listener(leaf))

	require.True(t, tr.Append(root, grp))
	assert.Same(t, rec, tr.Listener(grp))
	assert.Same(t, rec, tr.Listener(leaf))

	require.True(t, tr.RemoveNode(grp))
	assert.Nil(t, tr.Listener(grp))
	assert.Nil(t, tr.Listener(leaf))
}

func TestMove_AcrossParents(t *testing.T) {
	rec := &recorder{}
	tr := New(WithListener(rec))
	root := tr.Root()
	g1 := newNode(t, tr, domain.KindGroup, "G1")
	g2 := newNode(t, tr, domain.KindGroup, "G2")
	x := newNode(t, tr, domain.KindPaint, "X")
	require.True(t, tr.Append(root, g1))
	require.True(t, tr.Append(root, g2))
	require.True(t, tr.Append(g1, x))
	rec.reset()

	require.True(t, tr.Move(x, g2, domain.NilNode))
	assert.Equal(t, g2, tr.Parent(x))
	assert.Equal(t, []string{
		"aboutToRemove " + g1.String() + " 0", "removed " + g1.String() + " 0",
		"aboutToAdd " + g2.String() + " 0", "added " + g2.String() + " 0",
	}, rec.calls)

	assert.False(t, tr.Move(g2, g2, domain.NilNode))
	assert.False(t, tr.Move(g1, g1, domain.NilNode))
	requireDuality(t, tr)
}

func TestMoveTo_SameParent(t *testing.T) {
	tr := New()
	root := tr.Root()
	var ids []domain.NodeID
	for _, n := range []string{"A", "B", "C", "D"} {
		id := newNode(t, tr, domain.KindPaint, n)
		require.True(t, tr.Append(root, id))
		ids = append(ids, id)
	}

	require.True(t, tr.MoveTo(ids[0], root, 3))
	assert.Equal(t, []string{"B", "C", "D", "A"}, names(tr, root))
	require.True(t, tr.MoveTo(ids[0], root, 0))
	assert.Equal(t, []string{"A", "B", "C", "D"}, names(tr, root))
	require.True(t, tr.Move(ids[3], root, ids[0]))
	assert.Equal(t, []string{"A", "D", "B", "C"}, names(tr, root))
	assert.False(t, tr.MoveTo(ids[0], root, 4))
}

func TestChildView_IsSnapshot(t *testing.T) {
	tr := New()
	root := tr.Root()
	a := newNode(t, tr, domain.KindPaint, "A")
	b := newNode(t, tr, domain.KindPaint, "B")
	require.True(t, tr.Append(root, a))

	view := tr.Children(root)
	require.True(t, tr.Add(root, b, domain.NilNode))

	assert.Equal(t, 1, view.Len())
	assert.Equal(t, a, view.First())
	assert.Equal(t, 2, tr.Children(root).Len())
}

func TestChildView_IndexOfHint(t *testing.T) {
	ids := make([]domain.NodeID, 10)
	for i := range ids {
		ids[i] = domain.NodeID{Slot: uint32(i), Gen: 1}
	}
	v := ChildView{ids: ids}

	for hint := -1; hint <= 10; hint++ {
		for want, id := range ids {
			assert.Equal(t, want, v.IndexOf(id, hint))
		}
	}
	assert.Equal(t, -1, v.IndexOf(domain.NodeID{Slot: 99, Gen: 1}, 3))
	assert.Equal(t, -1, v.IndexOf(domain.NilNode, 0))
	assert.True(t, v.Contains(ids[7]))
	assert.Equal(t, ids[9], v.Last())
	assert.Equal(t, domain.NilNode, v.At(10))
}

func TestDestroy_StaleHandles(t *testing.T) {
	tr := New()
	src := newNode(t, tr, domain.KindPaint, "Src")
	clone, err := tr.NewNode(NodeInit{Kind: domain.KindClone, Source: src})
	require.NoError(t, err)
	require.True(t, tr.Append(tr.Root(), clone))

	require.NoError(t, tr.Destroy(src))
	assert.False(t, tr.Valid(src))
	assert.True(t, tr.Source(clone).IsNil(), "clone becomes dangling")
	assert.Equal(t, domain.Empty, tr.ComposedContent(clone))

	reused := newNode(t, tr, domain.KindPaint, "Reused")
	assert.Equal(t, src.Slot, reused.Slot)
	assert.NotEqual(t, src.Gen, reused.Gen)

	_, err = tr.Node(src)
	assert.ErrorIs(t, err, domain.ErrNodeNotFound)
	assert.Error(t, tr.Destroy(clone), "attached nodes cannot be destroyed")
	assert.Error(t, tr.Destroy(tr.Root()))
	require.NoError(t, tr.Check())
}

func TestCheck_DetectsCorruption(t *testing.T) {
	tr := New()
	a := newNode(t, tr, domain.KindPaint, "A")
	require.True(t, tr.Append(tr.Root(), a))

	s, _ := tr.get(a)
	s.parent = domain.NilNode

	err := tr.Check()
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvariant)
}

func TestAssert_DebugPanics(t *testing.T) {
	assert.Panics(t, func() { New(WithDebug(true)).Assert(false, "boom") })
	assert.False(t, New().Assert(false, "logged"))
	assert.True(t, New(WithDebug(true)).Assert(true, "fine"))
}
