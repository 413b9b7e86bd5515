package edit

import (
	"fmt"
	"unicode/utf8"

	"github.com/dshills/structedit/internal/engine/caret"
	"github.com/dshills/structedit/internal/engine/tree"
)

// InsertIntoText splits text at index and places node between the two
// halves in a single replacement. The returned boundaries mark the gap
// before and after the inserted node. At index 0 the start boundary is the
// element gap before the original text rather than an offset into an empty
// piece; the end boundary behaves the same way at the end of the text.
func (e *Editor) InsertIntoText(text tree.NodeID, index int, node tree.NodeID) (Boundaries, error) {
	if node == tree.Nil {
		return Boundaries{}, ErrNoNode
	}
	return e.insertIntoText(text, index, []tree.NodeID{node})
}

func (e *Editor) insertIntoText(text tree.NodeID, index int, nodes []tree.NodeID) (Boundaries, error) {
	d := e.doc
	if !d.IsText(text) {
		return Boundaries{}, fmt.Errorf("insert into node %d: %w", text, tree.ErrNotText)
	}
	parent := d.Parent(text)
	if parent == tree.Nil {
		return Boundaries{}, fmt.Errorf("insert into node %d: %w", text, tree.ErrDetached)
	}

	if err := d.CanInsert(parent, nodes...); err != nil {
		return Boundaries{}, err
	}

	length := d.Len(text)
	index = max(0, min(index, length))
	if !hasContent(d, nodes) {
		c := caret.New(text, index)
		return Boundaries{Start: c, End: c}, nil
	}

	at := d.IndexOf(text)
	nextLen := length - index
	pieces := make([]tree.NodeID, 0, len(nodes)+2)
	if index > 0 {
		pieces = append(pieces, d.NewText(d.TextSlice(text, 0, index)))
	}
	pieces = append(pieces, nodes...)
	if nextLen > 0 {
		pieces = append(pieces, d.NewText(d.TextSlice(text, index, length)))
	}
	pieces = e.normalize(pieces)

	var b Boundaries
	if index == 0 {
		b.Start = caret.New(parent, at)
	} else {
		b.Start = caret.New(pieces[0], index)
	}
	if nextLen == 0 {
		b.End = caret.New(parent, at+len(pieces))
	} else {
		last := pieces[len(pieces)-1]
		b.End = caret.New(last, d.Len(last)-nextLen)
	}

	if err := e.sink.RemoveChild(text); err != nil {
		return Boundaries{}, err
	}
	if err := e.insertAll(parent, at, pieces); err != nil {
		return Boundaries{}, err
	}
	return b, nil
}

func hasContent(d *tree.Document, nodes []tree.NodeID) bool {
	for _, n := range nodes {
		if !d.IsText(n) || d.Len(n) > 0 {
			return true
		}
	}
	return false
}

// SplitResult holds the nodes on either side of a split. For SplitTextNode
// at either end of the text, the missing side is the parent element and the
// tree is left unchanged. For SplitAt both sides are the new elements.
type SplitResult struct {
	Before tree.NodeID
	After  tree.NodeID
}

// SplitTextNode splits text at index into two adjacent text nodes. The
// halves stay adjacent until the caller inserts between them or merges them
// back with MergeTextNodes.
func (e *Editor) SplitTextNode(text tree.NodeID, index int) (SplitResult, error) {
	d := e.doc
	if !d.IsText(text) {
		return SplitResult{}, fmt.Errorf("split node %d: %w", text, tree.ErrNotText)
	}
	parent := d.Parent(text)
	if parent == tree.Nil {
		return SplitResult{}, fmt.Errorf("split node %d: %w", text, tree.ErrDetached)
	}

	length := d.Len(text)
	switch {
	case index <= 0:
		return SplitResult{Before: parent, After: text}, nil
	case index >= length:
		return SplitResult{Before: text, After: parent}, nil
	}

	at := d.IndexOf(text)
	before := d.NewText(d.TextSlice(text, 0, index))
	after := d.NewText(d.TextSlice(text, index, length))
	if err := e.sink.RemoveChild(text); err != nil {
		return SplitResult{}, err
	}
	if err := e.insertAll(parent, at, []tree.NodeID{before, after}); err != nil {
		return SplitResult{}, err
	}
	return SplitResult{Before: before, After: after}, nil
}

// TextInsertion describes the outcome of InsertText.
type TextInsertion struct {
	// Node holds the inserted text. It is tree.Nil when nothing was inserted.
	Node tree.NodeID
	// IsNew reports whether Node was created rather than modified.
	IsNew bool
	// Caret is at the start or end of the inserted run.
	Caret caret.Caret
}

// InsertText inserts text at (node, index), reusing an existing text node
// whenever one is adjacent. On an element, the text child at index is
// prepended to, else the text child before index is appended to, else a new
// text node is created. Inserting the empty string changes nothing.
func (e *Editor) InsertText(node tree.NodeID, index int, text string, caretAtEnd bool) (TextInsertion, error) {
	d := e.doc
	if text == "" {
		return TextInsertion{Caret: caret.New(node, index)}, nil
	}
	if index < 0 || index > d.Len(node) {
		return TextInsertion{}, fmt.Errorf("insert text at (%d, %d): %w", node, index, tree.ErrOffsetOutOfRange)
	}

	if d.IsContainer(node) {
		if child := d.Child(node, index); d.IsText(child) {
			node, index = child, 0
		} else if prev := d.Child(node, index-1); d.IsText(prev) {
			node, index = prev, d.Len(prev)
		} else {
			t := d.NewText(text)
			if err := e.sink.InsertChildAt(node, index, t); err != nil {
				return TextInsertion{}, err
			}
			c := caret.New(t, 0)
			if caretAtEnd {
				c.Offset = d.Len(t)
			}
			return TextInsertion{Node: t, IsNew: true, Caret: c}, nil
		}
	}

	value := d.TextSlice(node, 0, index) + text + d.TextSlice(node, index, d.Len(node))
	if err := e.sink.SetText(node, value); err != nil {
		return TextInsertion{}, err
	}
	c := caret.New(node, index)
	if caretAtEnd {
		c.Offset += utf8.RuneCountInString(text)
	}
	return TextInsertion{Node: node, Caret: c}, nil
}

// DeleteText removes length characters starting at index from a text node.
// A node left empty is removed from its parent. A length running past the
// end of the text is clamped.
func (e *Editor) DeleteText(node tree.NodeID, index, length int) error {
	d := e.doc
	if !d.IsText(node) {
		return fmt.Errorf("delete text in node %d: %w", node, tree.ErrNotText)
	}
	n := d.Len(node)
	if index < 0 || index > n || length < 0 {
		return fmt.Errorf("delete [%d,+%d) in node %d: %w", index, length, node, tree.ErrOffsetOutOfRange)
	}
	end := min(n, index+length)
	if end == index {
		return nil
	}
	if index == 0 && end == n {
		if d.Parent(node) == tree.Nil {
			return fmt.Errorf("delete all of node %d: %w", node, tree.ErrDetached)
		}
		return e.sink.RemoveChild(node)
	}
	return e.sink.SetText(node, d.TextSlice(node, 0, index)+d.TextSlice(node, end, n))
}

// MergeTextNodes appends the next sibling of node onto node when both are
// text, removes the sibling and returns the caret at the seam. Otherwise the
// tree is unchanged and the caret after node in its parent is returned.
func (e *Editor) MergeTextNodes(node tree.NodeID) (caret.Caret, error) {
	d := e.doc
	next := d.NextSibling(node)
	if d.IsText(node) && d.IsText(next) {
		offset := d.Len(node)
		if err := e.sink.SetText(node, d.Text(node)+d.Text(next)); err != nil {
			return caret.Caret{}, err
		}
		if err := e.sink.RemoveChild(next); err != nil {
			return caret.Caret{}, err
		}
		return caret.New(node, offset), nil
	}
	return caret.AfterNode(d, node)
}
