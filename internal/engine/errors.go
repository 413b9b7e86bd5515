package engine

import (
	"errors"

	"github.com/dshills/structedit/internal/engine/history"
	"github.com/dshills/structedit/internal/engine/tree"
)

// Errors returned by engine operations.
var (
	// ErrReadOnly indicates an operation was attempted on a read-only engine.
	ErrReadOnly = errors.New("engine is read-only")

	// ErrNotInDocument indicates a node or caret outside the edited document.
	ErrNotInDocument = errors.New("not in document")

	// ErrNoView indicates a view operation on an engine created without one.
	ErrNoView = errors.New("engine has no view")

	// ErrEmptyClipboard indicates a paste with nothing cut.
	ErrEmptyClipboard = errors.New("clipboard is empty")

	// ErrRootNode indicates an edit that would remove or replace the root.
	ErrRootNode = errors.New("operation not allowed on the root")

	// ErrUnknownCheckpoint indicates a checkpoint no longer in the history.
	ErrUnknownCheckpoint = history.ErrUnknownCheckpoint

	// ErrNothingToUndo indicates the undo stack is empty.
	ErrNothingToUndo = history.ErrNothingToUndo

	// ErrNothingToRedo indicates the redo stack is empty.
	ErrNothingToRedo = history.ErrNothingToRedo
)

// Errors from the editing core, re-exported for callers of the engine.
var (
	ErrNotText          = tree.ErrNotText
	ErrDetached         = tree.ErrDetached
	ErrNotInTree        = tree.ErrNotInTree
	ErrDisconnected     = tree.ErrDisconnected
	ErrMalformedRange   = tree.ErrMalformedRange
	ErrOffsetOutOfRange = tree.ErrOffsetOutOfRange
	ErrInternal         = tree.ErrInternal
)
