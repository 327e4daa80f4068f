package domain

import "errors"

// Node errors
var (
	// ErrNodeNotFound is returned when a handle is nil, out of range or stale.
	ErrNodeNotFound = errors.New("node not found")

	// ErrInvalidNodeID is returned when a textual node id cannot be parsed.
	ErrInvalidNodeID = errors.New("invalid node id")

	// ErrRejected is returned when the tree refuses a structural mutation
	// (already parented node, foreign anchor, disallowed child kind, cycle...).
	ErrRejected = errors.New("structural mutation rejected")

	// ErrUnknownKind is returned for kinds outside the closed set.
	ErrUnknownKind = errors.New("unknown node kind")
)

// History errors
var (
	// ErrNothingToUndo is returned when the undo stack is at its start.
	ErrNothingToUndo = errors.New("nothing to undo")

	// ErrNothingToRedo is returned when there is no undone command to reapply.
	ErrNothingToRedo = errors.New("nothing to redo")

	// ErrMacroOpen is returned when undo/redo is attempted while a macro is recording.
	ErrMacroOpen = errors.New("macro still recording")

	// ErrNoMacro is returned when ending a macro that was never started.
	ErrNoMacro = errors.New("no macro recording")
)

// Document errors
var (
	// ErrDocumentNotFound is returned when a document ID cannot be found in the store.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrInvariant wraps a detected violation of the tree invariants.
	ErrInvariant = errors.New("tree invariant violated")

	// ErrUnknownOperation is returned for operations the editor does not know.
	ErrUnknownOperation = errors.New("unknown operation")
)
