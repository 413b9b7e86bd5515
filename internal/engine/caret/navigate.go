package caret

import (
	"unicode"

	"github.com/dshills/structedit/internal/engine/tree"
)

// Next returns the caret position one step forward from c without leaving
// container. It reports false when there is no such position or when c is
// not inside container.
//
// Every text offset and every child gap is a stop, with one exception:
// whitespace at the end of a text node that is the last child of a
// collapsing (WhiteSpaceNormal) element is skipped. Only the immediate
// parent's mode is consulted; nested collapsing contexts are not.
//
// When noText is set and the result lands in a text node, the position
// before that text node in its parent is returned instead.
//
// Prev(Next(c)) == c except where Next enters text or an element that
// starts with text: from a gap right before a text node, from the end of a
// text node followed by an element, and from the end gap of an element
// whose last child is text. Prev lands on a neighboring gap in those cases.
func Next(d *tree.Document, c Caret, container tree.NodeID, noText bool) (Caret, bool) {
	if !d.Valid(c.Node) || !d.Contains(container, c.Node) {
		return Caret{}, false
	}
	node, offset := c.Node, c.Offset
	found := false

search:
	for !found {
		parent := d.Parent(node)
		if d.IsText(node) {
			if offset >= d.Len(node) || trailingCollapsed(d, node, parent, offset) {
				if parent == tree.Nil || node == container {
					break search
				}
				offset = d.IndexOf(node) + 1
				node = parent
				continue
			}
			offset++
			found = true
			continue
		}

		if offset >= d.ChildCount(node) {
			if parent == tree.Nil || node == container {
				break search
			}
			offset = d.IndexOf(node) + 1
			node = parent
			found = true
			continue
		}
		node = d.Child(node, offset)
		offset = 0
		found = !(d.ChildCount(node) > 0 && d.IsText(d.FirstChild(node)))
	}

	if !found {
		return Caret{}, false
	}
	return settle(d, node, offset, container, noText, func(n tree.NodeID, off int) bool {
		return n == container && off >= d.ChildCount(n)
	})
}

// Prev is the backward counterpart of Next. Leading whitespace of a text
// node that is the first child of a collapsing element is skipped.
func Prev(d *tree.Document, c Caret, container tree.NodeID, noText bool) (Caret, bool) {
	if !d.Valid(c.Node) || !d.Contains(container, c.Node) {
		return Caret{}, false
	}
	node, offset := c.Node, c.Offset
	found := false

search:
	for !found {
		offset--
		if node == container && offset < 0 {
			return Caret{}, false
		}

		parent := d.Parent(node)
		if d.IsText(node) {
			if offset < 0 || leadingCollapsed(d, node, parent, offset) {
				if parent == tree.Nil || node == container {
					break search
				}
				offset = d.IndexOf(node)
				node = parent
				continue
			}
			found = true
			continue
		}

		if offset < 0 || d.ChildCount(node) == 0 {
			if parent == tree.Nil || node == container {
				break search
			}
			offset = d.IndexOf(node)
			node = parent
			found = true
			continue
		}
		node = d.Child(node, offset)
		if d.IsText(node) {
			// The next iteration decrements into the last character gap.
			offset = d.Len(node) + 1
			continue
		}
		offset = d.ChildCount(node)
		found = !(offset > 0 && d.IsText(d.Child(node, offset-1)))
	}

	if !found {
		return Caret{}, false
	}
	return settle(d, node, offset, container, noText, func(n tree.NodeID, off int) bool {
		return n == container && off < 0
	})
}

// settle applies the noText collapse and the final containment check shared
// by Next and Prev.
func settle(d *tree.Document, node tree.NodeID, offset int, container tree.NodeID, noText bool, outside func(tree.NodeID, int) bool) (Caret, bool) {
	if noText && d.IsText(node) {
		parent := d.Parent(node)
		if parent == tree.Nil {
			return Caret{}, false
		}
		offset = d.IndexOf(node)
		node = parent
	}
	if !d.Contains(container, node) || outside(node, offset) {
		return Caret{}, false
	}
	return Caret{Node: node, Offset: offset}, true
}

// trailingCollapsed reports whether everything from offset to the end of a
// text node is whitespace its collapsing parent would not render.
func trailingCollapsed(d *tree.Document, text, parent tree.NodeID, offset int) bool {
	if parent == tree.Nil || d.LastChild(parent) != text || d.WhiteSpace(parent) != tree.WhiteSpaceNormal {
		return false
	}
	return allSpace(d.TextSlice(text, offset, d.Len(text)))
}

// leadingCollapsed mirrors trailingCollapsed for the start of a first child.
func leadingCollapsed(d *tree.Document, text, parent tree.NodeID, offset int) bool {
	if parent == tree.Nil || d.FirstChild(parent) != text || d.WhiteSpace(parent) != tree.WhiteSpaceNormal {
		return false
	}
	return allSpace(d.TextSlice(text, 0, offset))
}

// allSpace reports whether s is non-empty and made only of whitespace.
func allSpace(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}
