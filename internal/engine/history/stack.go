package history

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Common errors for history operations.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// DefaultMaxEntries is the undo depth used when none is configured.
const DefaultMaxEntries = 1000

// undoEntry wraps a command with metadata.
type undoEntry struct {
	id        uuid.UUID
	command   Command
	timestamp time.Time
}

func (e *undoEntry) info() OperationInfo {
	return OperationInfo{
		ID:          e.id,
		Description: e.command.Description(),
		Timestamp:   e.timestamp,
		Operations:  operationCount(e.command),
	}
}

// History manages undo/redo state for a document.
type History struct {
	mu sync.Mutex

	undoStack []*undoEntry
	redoStack []*undoEntry

	// Grouping state
	grouping  bool
	groupName string
	groupCmds []Command

	// Configuration
	maxEntries int
}

// NewHistory creates a new history manager.
func NewHistory(maxEntries int) *History {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &History{
		maxEntries: maxEntries,
	}
}

// Execute runs a command and adds it to the undo stack.
func (h *History) Execute(cmd Command, r *Recorder) error {
	if err := cmd.Execute(r); err != nil {
		return err
	}

	h.Push(cmd)
	return nil
}

// Push records an already applied command. Inside a group the command is
// held until EndGroup; otherwise it becomes a new entry and the redo stack
// is discarded.
func (h *History) Push(cmd Command) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.grouping {
		h.groupCmds = append(h.groupCmds, cmd)
		return
	}

	h.pushLocked(cmd)
}

// pushLocked adds a command without acquiring the lock.
func (h *History) pushLocked(cmd Command) {
	h.undoStack = append(h.undoStack, &undoEntry{
		id:        uuid.New(),
		command:   cmd,
		timestamp: time.Now(),
	})

	h.redoStack = nil
	h.trimLocked()
}

// trimLocked drops the oldest entries beyond maxEntries.
func (h *History) trimLocked() {
	if excess := len(h.undoStack) - h.maxEntries; excess > 0 {
		h.undoStack = h.undoStack[excess:]
	}
}

// Undo reverts the newest entry and moves it to the redo stack. The lock is
// released while the command runs so observers may query the history.
func (h *History) Undo(r *Recorder) error {
	return h.step(&h.undoStack, &h.redoStack, ErrNothingToUndo, func(c Command) error {
		return c.Undo(r)
	})
}

// Redo reapplies the newest undone entry.
func (h *History) Redo(r *Recorder) error {
	return h.step(&h.redoStack, &h.undoStack, ErrNothingToRedo, func(c Command) error {
		return c.Execute(r)
	})
}

// step pops an entry from src, runs apply on it and pushes it onto dst. On
// failure the entry goes back to src.
func (h *History) step(src, dst *[]*undoEntry, empty error, apply func(Command) error) error {
	h.mu.Lock()
	n := len(*src)
	if n == 0 {
		h.mu.Unlock()
		return empty
	}
	entry := (*src)[n-1]
	*src = (*src)[:n-1]
	h.mu.Unlock()

	err := apply(entry.command)

	h.mu.Lock()
	defer h.mu.Unlock()
	if err != nil {
		*src = append(*src, entry)
		return err
	}
	*dst = append(*dst, entry)
	return nil
}

// CanUndo returns true if undo is available.
func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack) > 0
}

// CanRedo returns true if redo is available.
func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redoStack) > 0
}

// UndoCount returns the number of undo entries available.
func (h *History) UndoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack)
}

// RedoCount returns the number of redo entries available.
func (h *History) RedoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redoStack)
}

// BeginGroup starts a command group.
// Commands pushed while grouping will be combined into a single undo unit.
func (h *History) BeginGroup(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.grouping {
		return // nested groups fold into the outer one
	}

	h.grouping = true
	h.groupName = name
	h.groupCmds = nil
}

// EndGroup closes the group. The commands pushed since BeginGroup become a
// single CompoundCommand entry; an empty group leaves no entry.
func (h *History) EndGroup() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.grouping {
		return
	}

	cmds := h.groupCmds
	h.grouping, h.groupCmds = false, nil
	if len(cmds) > 0 {
		h.pushLocked(&CompoundCommand{Name: h.groupName, Commands: cmds})
	}
}

// CancelGroup drops the open group without recording it. Commands already
// applied stay applied.
func (h *History) CancelGroup() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.grouping, h.groupCmds = false, nil
}

// IsGrouping returns true if currently in a command group.
func (h *History) IsGrouping() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.grouping
}

// Clear removes all undo/redo history.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.undoStack = nil
	h.redoStack = nil
	h.grouping = false
	h.groupCmds = nil
}

// UndoInfo returns info about available undo entries, oldest first.
func (h *History) UndoInfo() []OperationInfo {
	h.mu.Lock()
	defer h.mu.Unlock()

	result := make([]OperationInfo, len(h.undoStack))
	for i, entry := range h.undoStack {
		result[i] = entry.info()
	}
	return result
}

// RedoInfo returns info about available redo entries.
func (h *History) RedoInfo() []OperationInfo {
	h.mu.Lock()
	defer h.mu.Unlock()

	result := make([]OperationInfo, len(h.redoStack))
	for i, entry := range h.redoStack {
		result[i] = entry.info()
	}
	return result
}

// PeekUndo returns info about the next undo entry without removing it.
func (h *History) PeekUndo() (OperationInfo, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.undoStack) == 0 {
		return OperationInfo{}, false
	}
	return h.undoStack[len(h.undoStack)-1].info(), true
}

// PeekRedo returns info about the next redo entry without removing it.
func (h *History) PeekRedo() (OperationInfo, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.redoStack) == 0 {
		return OperationInfo{}, false
	}
	return h.redoStack[len(h.redoStack)-1].info(), true
}

// SetMaxEntries changes the maximum number of undo entries.
// If the current stack is larger, oldest entries are removed.
func (h *History) SetMaxEntries(max int) {
	if max <= 0 {
		max = DefaultMaxEntries
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.maxEntries = max
	h.trimLocked()
}

// MaxEntries returns the maximum number of undo entries.
func (h *History) MaxEntries() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.maxEntries
}
