package caret

import (
	"fmt"

	"github.com/dshills/structedit/internal/engine/tree"
)

// Order is the result of comparing two positions in document order.
type Order int

const (
	// Before means the first position precedes the second.
	Before Order = -1
	// Equal means the positions are the same.
	Equal Order = 0
	// After means the first position follows the second.
	After Order = 1
)

// String returns the order name.
func (o Order) String() string {
	switch o {
	case Before:
		return "before"
	case Equal:
		return "equal"
	case After:
		return "after"
	default:
		return fmt.Sprintf("Order(%d)", int(o))
	}
}

// Compare orders a and b in document order. It fails with
// tree.ErrDisconnected when the carets are in unrelated trees and with
// tree.ErrOffsetOutOfRange when either caret does not resolve.
func Compare(d *tree.Document, a, b Caret) (Order, error) {
	return ComparePositions(d, a.Node, a.Offset, b.Node, b.Offset)
}

// ComparePositions is Compare on unpacked carets.
func ComparePositions(d *tree.Document, nodeA tree.NodeID, offsetA int, nodeB tree.NodeID, offsetB int) (Order, error) {
	if !New(nodeA, offsetA).Valid(d) || !New(nodeB, offsetB).Valid(d) {
		return Equal, fmt.Errorf("compare (%d, %d) and (%d, %d): %w", nodeA, offsetA, nodeB, offsetB, tree.ErrOffsetOutOfRange)
	}
	if nodeA == nodeB {
		switch {
		case offsetA < offsetB:
			return Before, nil
		case offsetA > offsetB:
			return After, nil
		default:
			return Equal, nil
		}
	}

	switch rel := d.Relation(nodeA, nodeB); rel {
	case tree.RelationDisconnected:
		return Equal, fmt.Errorf("compare %d and %d: %w", nodeA, nodeB, tree.ErrDisconnected)
	case tree.RelationContainedBy:
		return parentChildCompare(d, nodeA, offsetA, nodeB), nil
	case tree.RelationContains:
		return -parentChildCompare(d, nodeB, offsetB, nodeA), nil
	case tree.RelationPreceding:
		return After, nil
	case tree.RelationFollowing:
		return Before, nil
	default:
		return Equal, fmt.Errorf("compare %d and %d: relation %v: %w", nodeA, nodeB, rel, tree.ErrInternal)
	}
}

// parentChildCompare orders a position in parent against any position in
// child, which must already be known to lie inside parent. An offset equal
// to the index of the child holding the descendant still comes first.
func parentChildCompare(d *tree.Document, parent tree.NodeID, parentOffset int, child tree.NodeID) Order {
	ix := 0
	for _, c := range d.Children(parent) {
		if d.Contains(c, child) {
			break
		}
		ix++
	}
	if parentOffset <= ix {
		return Before
	}
	return After
}
