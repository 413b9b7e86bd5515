package history

import (
	"fmt"

	"github.com/dshills/structedit/internal/engine/tree"
)

// Observer is called after each operation a Recorder applies. For a
// removal, the operation still carries the parent and index the node was
// detached from.
type Observer func(op *Operation) error

// Recorder applies tree changes to a document and records them as
// operations. It implements edit.MutationSink and edit.FragmentInserter.
type Recorder struct {
	doc      *tree.Document
	ops      OperationList
	observer Observer
}

// NewRecorder creates a recorder over d.
func NewRecorder(d *tree.Document) *Recorder {
	return &Recorder{doc: d}
}

// Document returns the recorded document.
func (r *Recorder) Document() *tree.Document {
	return r.doc
}

// SetObserver installs fn as the observer, replacing any previous one. A
// nil fn removes it.
func (r *Recorder) SetObserver(fn Observer) {
	r.observer = fn
}

// InsertChildAt attaches child and records the change.
func (r *Recorder) InsertChildAt(parent tree.NodeID, index int, child tree.NodeID) error {
	if err := r.doc.InsertChildAt(parent, index, child); err != nil {
		return err
	}
	return r.record(NewInsertOperation(parent, index, child))
}

// InsertFragmentAt attaches nodes in one change and records one insert
// operation per node.
func (r *Recorder) InsertFragmentAt(parent tree.NodeID, index int, nodes []tree.NodeID) error {
	if err := r.doc.InsertFragmentAt(parent, index, nodes); err != nil {
		return err
	}
	for i, n := range nodes {
		if err := r.record(NewInsertOperation(parent, index+i, n)); err != nil {
			return err
		}
	}
	return nil
}

// RemoveChild detaches child and records the change.
func (r *Recorder) RemoveChild(child tree.NodeID) error {
	parent := r.doc.Parent(child)
	if parent == tree.Nil {
		return fmt.Errorf("remove %d: %w", child, tree.ErrDetached)
	}
	op := NewRemoveOperation(parent, r.doc.IndexOf(child), child)
	if err := r.doc.RemoveChild(child); err != nil {
		return err
	}
	return r.record(op)
}

// SetText replaces the content of a text node and records the change.
func (r *Recorder) SetText(node tree.NodeID, value string) error {
	old := r.doc.Text(node)
	if err := r.doc.SetText(node, value); err != nil {
		return err
	}
	op := NewSetTextOperation(node, old, value)
	if op.IsNoop() {
		return nil
	}
	return r.record(op)
}

func (r *Recorder) record(op *Operation) error {
	r.ops = append(r.ops, op)
	return r.notify(op)
}

func (r *Recorder) notify(op *Operation) error {
	if r.observer == nil {
		return nil
	}
	return r.observer(op)
}

// Pending returns the number of operations recorded since the last Take.
func (r *Recorder) Pending() int {
	return len(r.ops)
}

// Take returns the operations recorded since the last Take and clears them.
func (r *Recorder) Take() OperationList {
	ops := r.ops
	r.ops = nil
	return ops
}

// Rollback reverts the operations recorded since the last Take.
func (r *Recorder) Rollback() error {
	return r.Replay(r.Take().Invert())
}

// Replay applies ops in order without recording them. The observer is
// notified as for recorded changes.
func (r *Recorder) Replay(ops OperationList) error {
	for i, op := range ops {
		if err := op.Apply(r.doc); err != nil {
			return fmt.Errorf("replay step %d: %w", i, err)
		}
		if err := r.notify(op); err != nil {
			return fmt.Errorf("replay step %d: %w", i, err)
		}
	}
	return nil
}
