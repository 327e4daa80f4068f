package undo

import (
	"testing"

	"github.com/aretw0/strata/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// counter is a command that adds delta to a shared total.
type counter struct {
	name    string
	total   *int
	delta   int
	applied bool
}

func (c *counter) Name() string { return c.name }

func (c *counter) Redo() {
	if !c.applied {
		*c.total += c.delta
		c.applied = true
	}
}

func (c *counter) Undo() {
	if c.applied {
		*c.total -= c.delta
		c.applied = false
	}
}

func TestStack_UndoRedo(t *testing.T) {
	total := 0
	s := New()

	s.Push(&counter{name: "one", total: &total, delta: 1})
	s.Push(&counter{name: "ten", total: &total, delta: 10})
	assert.Equal(t, 11, total)
	assert.Equal(t, "ten", s.UndoText())

	require.NoError(t, s.Undo())
	assert.Equal(t, 1, total)
	assert.Equal(t, "ten", s.RedoText())
	assert.True(t, s.CanRedo())

	require.NoError(t, s.Undo())
	assert.Equal(t, 0, total)
	assert.ErrorIs(t, s.Undo(), domain.ErrNothingToUndo)

	require.NoError(t, s.Redo())
	require.NoError(t, s.Redo())
	assert.Equal(t, 11, total)
	assert.ErrorIs(t, s.Redo(), domain.ErrNothingToRedo)
}

func TestStack_PushTruncatesRedoBranch(t *testing.T) {
	total := 0
	s := New()
	s.Push(&counter{name: "a", total: &total, delta: 1})
	s.Push(&counter{name: "b", total: &total, delta: 2})
	require.NoError(t, s.Undo())

	s.Push(&counter{name: "c", total: &total, delta: 4})
	assert.Equal(t, 5, total)
	assert.Equal(t, 2, s.Len())
	assert.False(t, s.CanRedo())
	assert.Equal(t, "c", s.UndoText())
}

func TestStack_NestedMacros(t *testing.T) {
	total := 0
	s := New()

	s.BeginMacro("outer")
	s.Push(&counter{name: "a", total: &total, delta: 1})
	s.BeginMacro("inner")
	s.Push(&counter{name: "b", total: &total, delta: 2})
	require.NoError(t, s.EndMacro())
	assert.True(t, s.InMacro())
	assert.ErrorIs(t, s.Undo(), domain.ErrMacroOpen)
	require.NoError(t, s.EndMacro())

	assert.Equal(t, 3, total)
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, "outer", s.UndoText())

	require.NoError(t, s.Undo())
	assert.Equal(t, 0, total)
	require.NoError(t, s.Redo())
	assert.Equal(t, 3, total)
	assert.ErrorIs(t, s.EndMacro(), domain.ErrNoMacro)
}

func TestStack_EmptyMacroLeavesNoStep(t *testing.T) {
	s := New()
	s.BeginMacro("nothing")
	require.NoError(t, s.EndMacro())
	assert.Equal(t, 0, s.Len())
}

func TestStack_AbortMacro(t *testing.T) {
	total := 0
	s := New()
	s.BeginMacro("batch")
	s.Push(&counter{name: "a", total: &total, delta: 1})
	s.Push(&counter{name: "b", total: &total, delta: 2})
	require.NoError(t, s.AbortMacro())

	assert.Equal(t, 0, total)
	assert.Equal(t, 0, s.Len())
	assert.ErrorIs(t, s.AbortMacro(), domain.ErrNoMacro)
}

func TestStack_Limit(t *testing.T) {
	total := 0
	s := New(WithLimit(2))
	for i := 1; i <= 3; i++ {
		s.Push(&counter{name: "c", total: &total, delta: i})
	}
	assert.Equal(t, 2, s.Len())
	require.NoError(t, s.Undo())
	require.NoError(t, s.Undo())
	assert.Equal(t, 1, total, "the oldest step fell off the history")
	assert.False(t, s.CanUndo())
}

func TestStack_CleanIndex(t *testing.T) {
	total := 0
	s := New(WithLimit(0))
	assert.True(t, s.IsClean())

	s.Push(&counter{name: "a", total: &total, delta: 1})
	assert.False(t, s.IsClean())
	s.SetClean()
	assert.True(t, s.IsClean())

	s.Push(&counter{name: "b", total: &total, delta: 1})
	require.NoError(t, s.Undo())
	assert.True(t, s.IsClean())

	require.NoError(t, s.Undo())
	s.Push(&counter{name: "c", total: &total, delta: 1})
	require.NoError(t, s.Undo())
	assert.False(t, s.IsClean(), "saved state is unreachable once its branch is dropped")

	s.Clear()
	assert.False(t, s.IsClean(), "clearing does not save the unsaved edits")
	assert.Equal(t, 0, s.Len())
}

func TestStack_ClearKeepsCleanness(t *testing.T) {
	total := 0
	s := New()
	s.Push(&counter{name: "a", total: &total, delta: 1})
	s.SetClean()
	s.Clear()
	assert.True(t, s.IsClean(), "a saved history stays saved")

	s.Push(&counter{name: "b", total: &total, delta: 1})
	s.Clear()
	assert.False(t, s.IsClean())
	assert.False(t, s.CanUndo())

	s.SetClean()
	assert.True(t, s.IsClean())
}
