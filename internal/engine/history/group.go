package history

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrUnknownCheckpoint indicates a checkpoint that is no longer reachable
// from the current history position.
var ErrUnknownCheckpoint = errors.New("unknown checkpoint")

// Transaction runs fn with every command it pushes folded into one entry
// called name. When fn fails, the commands it pushed are handed to undo,
// newest first, and none of them is recorded. Inside an open group the
// commands join that group instead.
func (h *History) Transaction(name string, fn func() error, undo func(Command) error) error {
	h.mu.Lock()
	outer := h.grouping
	if !outer {
		h.grouping, h.groupName, h.groupCmds = true, name, nil
	}
	mark := len(h.groupCmds)
	h.mu.Unlock()

	err := fn()

	var failed []Command
	h.mu.Lock()
	if err != nil && h.grouping && len(h.groupCmds) >= mark {
		failed = append(failed, h.groupCmds[mark:]...)
		h.groupCmds = h.groupCmds[:mark]
	}
	h.mu.Unlock()

	if !outer {
		if err != nil {
			h.CancelGroup()
		} else {
			h.EndGroup()
		}
	}
	if err == nil {
		return nil
	}
	for i := len(failed) - 1; i >= 0; i-- {
		if uerr := undo(failed[i]); uerr != nil {
			return fmt.Errorf("%s: %w (rollback failed: %v)", name, err, uerr)
		}
	}
	return err
}

// Checkpoint marks a history position by the entry that was on top of the
// undo stack when it was taken. The zero Checkpoint is the empty history.
type Checkpoint struct {
	id uuid.UUID
}

// String returns the checkpoint in a form ParseCheckpoint accepts.
func (c Checkpoint) String() string {
	return c.id.String()
}

// ParseCheckpoint reads a checkpoint written by Checkpoint.String.
func ParseCheckpoint(s string) (Checkpoint, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return Checkpoint{}, fmt.Errorf("checkpoint %q: %w", s, ErrUnknownCheckpoint)
	}
	return Checkpoint{id: id}, nil
}

// CreateCheckpoint marks the current position.
func (h *History) CreateCheckpoint() Checkpoint {
	h.mu.Lock()
	defer h.mu.Unlock()
	return Checkpoint{id: h.topLocked()}
}

// UndoTo undoes entries until cp is the current position. The checkpoint
// must still be on the undo stack.
func (h *History) UndoTo(cp Checkpoint, r *Recorder) error {
	h.mu.Lock()
	known := cp.id == uuid.Nil || holds(h.undoStack, cp.id)
	h.mu.Unlock()
	if !known {
		return fmt.Errorf("undo to %s: %w", cp, ErrUnknownCheckpoint)
	}
	for h.top() != cp.id {
		if err := h.Undo(r); err != nil {
			return err
		}
	}
	return nil
}

// RedoTo redoes entries until cp is the current position. The checkpoint
// must be the current position or on the redo stack.
func (h *History) RedoTo(cp Checkpoint, r *Recorder) error {
	h.mu.Lock()
	known := h.topLocked() == cp.id || holds(h.redoStack, cp.id)
	h.mu.Unlock()
	if !known {
		return fmt.Errorf("redo to %s: %w", cp, ErrUnknownCheckpoint)
	}
	for h.top() != cp.id {
		if err := h.Redo(r); err != nil {
			return err
		}
	}
	return nil
}

func (h *History) top() uuid.UUID {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.topLocked()
}

func (h *History) topLocked() uuid.UUID {
	if n := len(h.undoStack); n > 0 {
		return h.undoStack[n-1].id
	}
	return uuid.Nil
}

func holds(stack []*undoEntry, id uuid.UUID) bool {
	for _, e := range stack {
		if e.id == id {
			return true
		}
	}
	return false
}
