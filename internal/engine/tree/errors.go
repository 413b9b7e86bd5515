package tree

import "errors"

// Errors returned by tree operations and shared by the editing packages.
var (
	// ErrNotText indicates a text-only operation was invoked on a non-text node.
	ErrNotText = errors.New("node is not a text node")

	// ErrNotContainer indicates an element-only operation was invoked on a text node.
	ErrNotContainer = errors.New("node is not an element or document")

	// ErrDetached indicates an operation needed a parent the node does not have.
	ErrDetached = errors.New("detached node")

	// ErrAttached indicates a node that must be detached still has a parent.
	ErrAttached = errors.New("node already has a parent")

	// ErrNotInTree indicates a node is not the given root or a descendant of it.
	ErrNotInTree = errors.New("node is not in tree")

	// ErrDisconnected indicates two nodes do not share a root.
	ErrDisconnected = errors.New("cannot compare disconnected nodes")

	// ErrMalformedRange indicates a range spans more than one element.
	ErrMalformedRange = errors.New("range is not well-formed")

	// ErrOffsetOutOfRange indicates an offset outside a node's valid range.
	ErrOffsetOutOfRange = errors.New("offset out of range")

	// ErrCycle indicates an insertion would make a node its own ancestor.
	ErrCycle = errors.New("insertion would create a cycle")

	// ErrInvalidPath indicates a malformed child-index path.
	ErrInvalidPath = errors.New("malformed path")

	// ErrInternal indicates a state that should be unreachable. Errors wrapping
	// it are defects, not recoverable conditions.
	ErrInternal = errors.New("internal invariant violated")
)
