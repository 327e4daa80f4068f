package command

import (
	"testing"

	"github.com/aretw0/strata/pkg/domain"
	"github.com/aretw0/strata/pkg/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Add after an anchor, remove, undo the removal.
func TestAddRemoveUndo_RestoresIdentityAndOrder(t *testing.T) {
	f := newFixture(t)
	a := f.paint("LayerA", "Root", "a")
	f.paint("LayerB", "Root", "b")
	c := f.nodeWith("LayerC", "", tree.NodeInit{Kind: domain.KindPaint})

	add := NewAddNode(f.tr, c, f.tr.Root(), a)
	add.Redo()
	assert.Equal(t, []string{"LayerA", "LayerC", "LayerB"}, f.names("Root"))

	rm := NewRemoveNode(f.tr, c)
	rm.Redo()
	assert.Equal(t, []string{"LayerA", "LayerB"}, f.names("Root"))

	rm.Undo()
	assert.Equal(t, []string{"LayerA", "LayerC", "LayerB"}, f.names("Root"))
	assert.Equal(t, c, f.tr.At(f.tr.Root(), 1), "same identity")
	require.NoError(t, f.tr.Check())
}

func TestCommands_IdempotentAlternation(t *testing.T) {
	f := newFixture(t)
	a := f.paint("A", "Root", "a")
	g := f.node("G", domain.KindGroup, "Root")
	before := shape(f.tr)

	move := NewMoveNode(f.tr, a, g, domain.NilNode)
	move.Undo()
	assert.Equal(t, before, shape(f.tr), "undo before redo is a no-op")

	move.Redo()
	after := shape(f.tr)
	move.Redo()
	assert.Equal(t, after, shape(f.tr), "second redo is a no-op")

	for i := 0; i < 3; i++ {
		move.Undo()
		assert.Equal(t, before, shape(f.tr))
		move.Redo()
		assert.Equal(t, after, shape(f.tr))
	}
}

// Redo then undo restores the prior shape for every command kind.
func TestCommands_RoundTrip(t *testing.T) {
	f := newFixture(t)
	f.paint("A", "Root", "a")
	f.paint("B", "Root", "b")
	f.node("G", domain.KindGroup, "Root")
	f.node("M", domain.KindMask, "G")
	f.clone("C", "G", "A")
	loose := f.nodeWith("Loose", "", tree.NodeInit{Kind: domain.KindPaint})

	build := []func() Command{
		func() Command { return NewAddNode(f.tr, loose, f.id["G"], f.id["C"]) },
		func() Command { return NewAddNodeAt(f.tr, loose, f.tr.Root(), 0) },
		func() Command { return NewMoveNode(f.tr, f.id["A"], f.id["G"], domain.NilNode) },
		func() Command { return NewMoveNode(f.tr, f.id["B"], f.tr.Root(), f.id["G"]) },
		func() Command { return NewSetSource(f.tr, f.id["C"], f.id["B"]) },
		func() Command { return NewSetSource(f.tr, f.id["C"], domain.NilNode) },
		func() Command { return NewRemoveNode(f.tr, f.id["M"]) },
		func() Command { return NewRemoveSubtree(f.tr, f.id["G"]) },
		func() Command { return NewRemoveSubtree(f.tr, f.id["A"], f.id["B"]) },
	}

	for _, mk := range build {
		cmd := mk()
		t.Run(cmd.Name(), func(t *testing.T) {
			before := shape(f.tr)
			cmd.Redo()
			assert.NotEqual(t, before, shape(f.tr))
			cmd.Undo()
			assert.Equal(t, before, shape(f.tr))
			require.NoError(t, f.tr.Check())
		})
	}
}

func TestCommands_SequenceUndoneInReverse(t *testing.T) {
	f := newFixture(t)
	f.paint("A", "Root", "a")
	f.node("G", domain.KindGroup, "Root")
	f.clone("C1", "Root", "A")
	f.clone("C2", "G", "C1")

	var shapes []string
	var done []Command
	steps := []Command{
		NewMoveNode(f.tr, f.id["C1"], f.id["G"], domain.NilNode),
		NewRemoveSubtree(f.tr, f.id["A"]),
	}
	for _, s := range steps {
		shapes = append(shapes, shape(f.tr))
		s.Redo()
		done = append(done, s)
	}
	// Built after the first two ran so it sees the reincarnated node.
	last := NewRemoveSubtree(f.tr, f.id["G"])
	shapes = append(shapes, shape(f.tr))
	last.Redo()
	done = append(done, last)

	for i := len(done) - 1; i >= 0; i-- {
		done[i].Undo()
		assert.Equal(t, shapes[i], shape(f.tr), "undo step %d", i)
	}
	require.NoError(t, f.tr.Check())
}

func TestAddNode_RejectedRedoLeavesCreated(t *testing.T) {
	f := newFixture(t)
	tr := tree.New()
	mask, err := tr.NewNode(tree.NodeInit{Kind: domain.KindMask})
	require.NoError(t, err)

	add := NewAddNode(tr, mask, tr.Root(), domain.NilNode)
	add.Redo()
	assert.False(t, add.Applied())
	assert.Equal(t, 0, tr.ChildCount(tr.Root()))

	// Debug trees panic on the same violation.
	dbgMask := f.nodeWith("Mask", "", tree.NodeInit{Kind: domain.KindMask})
	assert.Panics(t, func() { NewAddNode(f.tr, dbgMask, f.tr.Root(), domain.NilNode).Redo() })
}

func TestUpdateTarget(t *testing.T) {
	log := &dirtyLog{}
	f := newFixture(t, tree.WithRefresher(log))
	f.node("Empty1", domain.KindGroup, "Root")
	f.paint("Below", "Root", "below")
	f.node("Doomed", domain.KindGroup, "Root")
	f.node("Empty2", domain.KindGroup, "Root")
	f.paint("Above", "Root", "above")

	rm := NewRemoveNode(f.tr, f.id["Doomed"])
	rm.Redo()
	require.Len(t, log.calls, 1)
	assert.Equal(t, "dirty "+f.id["Above"].String()+" (0,0)-(0,0)", log.calls[0], "forward search wins")

	log.calls = nil
	NewRemoveNode(f.tr, f.id["Above"]).Redo()
	assert.Equal(t, "dirty "+f.id["Below"].String()+" (0,0)-(8,8)", log.calls[0], "backward when nothing follows")

	log.calls = nil
	g := f.node("G", domain.KindGroup, "Root")
	f.node("Only", domain.KindGroup, "G")
	NewRemoveNode(f.tr, f.id["Only"]).Redo()
	assert.Equal(t, "full "+g.String()+" (0,0)-(0,0)", log.calls[0], "full refresh of the former parent")
}

func TestUpdateTarget_NoRefresher(t *testing.T) {
	f := newFixture(t)
	f.node("G", domain.KindGroup, "Root")
	target, full := UpdateTarget(f.tr, f.tr.Root(), 0, f.tr.Bounds(f.id["G"]))
	assert.Equal(t, f.tr.Root(), target)
	assert.True(t, full)
}
