package caret

import (
	"fmt"

	"github.com/dshills/structedit/internal/engine/tree"
)

// Caret is an editing position.
type Caret struct {
	Node   tree.NodeID
	Offset int
}

// New creates a caret.
func New(node tree.NodeID, offset int) Caret {
	return Caret{Node: node, Offset: offset}
}

// BeforeNode returns the caret just before node in its parent.
func BeforeNode(d *tree.Document, node tree.NodeID) (Caret, error) {
	p := d.Parent(node)
	if p == tree.Nil {
		return Caret{}, fmt.Errorf("caret before %d: %w", node, tree.ErrDetached)
	}
	return Caret{Node: p, Offset: d.IndexOf(node)}, nil
}

// AfterNode returns the caret just after node in its parent.
func AfterNode(d *tree.Document, node tree.NodeID) (Caret, error) {
	c, err := BeforeNode(d, node)
	if err != nil {
		return Caret{}, err
	}
	c.Offset++
	return c, nil
}

// IsZero reports whether c is the zero caret.
func (c Caret) IsZero() bool {
	return c.Node == tree.Nil && c.Offset == 0
}

// String returns a debug representation.
func (c Caret) String() string {
	return fmt.Sprintf("(%d, %d)", c.Node, c.Offset)
}

// Valid reports whether c points at a node of d with an offset in range.
func (c Caret) Valid(d *tree.Document) bool {
	return d.Valid(c.Node) && c.Offset >= 0 && c.Offset <= d.Len(c.Node)
}

// In reports whether c is valid and its node lies inside root.
func (c Caret) In(d *tree.Document, root tree.NodeID) bool {
	return c.Valid(d) && d.Contains(root, c.Node)
}

// Normalize clamps the offset into the node's range.
func (c Caret) Normalize(d *tree.Document) Caret {
	if c.Offset < 0 {
		c.Offset = 0
	}
	if n := d.Len(c.Node); c.Offset > n {
		c.Offset = n
	}
	return c
}

// InParent converts a caret in a text node into the equivalent position
// before that text node in its parent. Element carets are returned as is.
// A caret at the end of a text node maps to the gap after it.
func (c Caret) InParent(d *tree.Document) (Caret, error) {
	if !d.IsText(c.Node) {
		return c, nil
	}
	if c.Offset >= d.Len(c.Node) && c.Offset > 0 {
		return AfterNode(d, c.Node)
	}
	return BeforeNode(d, c.Node)
}

// Container returns the element or document that holds the caret: the node
// itself, or the parent of a text node.
func (c Caret) Container(d *tree.Document) (tree.NodeID, error) {
	if !d.IsText(c.Node) {
		return c.Node, nil
	}
	p := d.Parent(c.Node)
	if p == tree.Nil {
		return tree.Nil, fmt.Errorf("container of %d: %w", c.Node, tree.ErrDetached)
	}
	return p, nil
}

// CharBefore returns the character immediately before c without walking
// the tree beyond a text node adjacent to an element caret.
func CharBefore(d *tree.Document, c Caret) (rune, bool) {
	n, off := c.Node, c.Offset
	if !d.IsText(n) {
		n = d.Child(c.Node, c.Offset-1)
		if !d.IsText(n) {
			return 0, false
		}
		off = d.Len(n)
	}
	if off <= 0 || off > d.Len(n) {
		return 0, false
	}
	return []rune(d.TextSlice(n, off-1, off))[0], true
}

// CharAt returns the character immediately after c, with the same limits
// as CharBefore.
func CharAt(d *tree.Document, c Caret) (rune, bool) {
	n, off := c.Node, c.Offset
	if !d.IsText(n) {
		n = d.Child(c.Node, c.Offset)
		if !d.IsText(n) {
			return 0, false
		}
		off = 0
	}
	if off < 0 || off >= d.Len(n) {
		return 0, false
	}
	return []rune(d.TextSlice(n, off, off+1))[0], true
}
