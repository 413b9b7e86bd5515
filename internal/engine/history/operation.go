package history

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/structedit/internal/engine/tree"
)

// OpKind identifies the tree change an Operation makes.
type OpKind uint8

const (
	// OpInsert attaches Node under Parent at Index.
	OpInsert OpKind = iota
	// OpRemove detaches Node, found under Parent at Index.
	OpRemove
	// OpSetText replaces the content of the text node Node.
	OpSetText
)

// String returns the operation kind name.
func (k OpKind) String() string {
	switch k {
	case OpInsert:
		return "insert"
	case OpRemove:
		return "remove"
	case OpSetText:
		return "set-text"
	default:
		return fmt.Sprintf("OpKind(%d)", k)
	}
}

// Operation represents a single undoable tree change.
type Operation struct {
	Kind   OpKind
	Parent tree.NodeID // Parent of Node for insert and remove
	Index  int         // Child index of Node for insert and remove
	Node   tree.NodeID

	OldText string // Text before a set-text (for undo)
	NewText string // Text after a set-text (for redo)

	// Metadata
	Timestamp time.Time
}

// NewInsertOperation creates an operation for attaching node.
func NewInsertOperation(parent tree.NodeID, index int, node tree.NodeID) *Operation {
	return &Operation{
		Kind:      OpInsert,
		Parent:    parent,
		Index:     index,
		Node:      node,
		Timestamp: time.Now(),
	}
}

// NewRemoveOperation creates an operation for detaching node.
func NewRemoveOperation(parent tree.NodeID, index int, node tree.NodeID) *Operation {
	return &Operation{
		Kind:      OpRemove,
		Parent:    parent,
		Index:     index,
		Node:      node,
		Timestamp: time.Now(),
	}
}

// NewSetTextOperation creates an operation for replacing text content.
func NewSetTextOperation(node tree.NodeID, oldText, newText string) *Operation {
	return &Operation{
		Kind:      OpSetText,
		Node:      node,
		OldText:   oldText,
		NewText:   newText,
		Timestamp: time.Now(),
	}
}

// IsInsert returns true if this operation attaches a node.
func (op *Operation) IsInsert() bool {
	return op.Kind == OpInsert
}

// IsRemove returns true if this operation detaches a node.
func (op *Operation) IsRemove() bool {
	return op.Kind == OpRemove
}

// IsSetText returns true if this operation replaces text.
func (op *Operation) IsSetText() bool {
	return op.Kind == OpSetText
}

// IsNoop returns true if this operation makes no changes.
func (op *Operation) IsNoop() bool {
	return op.Kind == OpSetText && op.OldText == op.NewText
}

// Invert returns an operation that undoes this one.
func (op *Operation) Invert() *Operation {
	inv := *op
	inv.Timestamp = time.Now()
	switch op.Kind {
	case OpInsert:
		inv.Kind = OpRemove
	case OpRemove:
		inv.Kind = OpInsert
	case OpSetText:
		inv.OldText, inv.NewText = op.NewText, op.OldText
	}
	return &inv
}

// Apply performs the operation on d. A removal checks that the node is
// still where it was recorded.
func (op *Operation) Apply(d *tree.Document) error {
	switch op.Kind {
	case OpInsert:
		return d.InsertChildAt(op.Parent, op.Index, op.Node)
	case OpRemove:
		if d.Parent(op.Node) != op.Parent || d.IndexOf(op.Node) != op.Index {
			return fmt.Errorf("remove %d: not at (%d, %d): %w", op.Node, op.Parent, op.Index, tree.ErrInternal)
		}
		return d.RemoveChild(op.Node)
	case OpSetText:
		return d.SetText(op.Node, op.NewText)
	default:
		return fmt.Errorf("apply %v: %w", op.Kind, tree.ErrInternal)
	}
}

// String returns a debug representation.
func (op *Operation) String() string {
	if op.Kind == OpSetText {
		return fmt.Sprintf("set-text %d %q -> %q", op.Node, op.OldText, op.NewText)
	}
	return fmt.Sprintf("%v %d at (%d, %d)", op.Kind, op.Node, op.Parent, op.Index)
}

// OperationInfo provides read-only info about a history entry.
// Used for listing undo/redo history.
type OperationInfo struct {
	ID          uuid.UUID // Stable identifier of the entry
	Description string    // Human-readable description
	Timestamp   time.Time // When the entry was pushed
	Operations  int       // Number of tree operations in the entry
}

// OperationList is a collection of operations that are applied together.
type OperationList []*Operation

// Invert returns a list of inverse operations in reverse order.
func (ops OperationList) Invert() OperationList {
	result := make(OperationList, len(ops))
	for i, op := range ops {
		result[len(ops)-1-i] = op.Invert()
	}
	return result
}
