package edit

import (
	"fmt"

	"github.com/dshills/structedit/internal/engine/caret"
	"github.com/dshills/structedit/internal/engine/tree"
)

// CutResult is the outcome of Cut.
type CutResult struct {
	// Caret is where the removed content used to start.
	Caret caret.Caret
	// Removed holds the detached content in document order. Partial text
	// at either end appears as new text nodes.
	Removed []tree.NodeID
}

// Cut removes the content between start and end and merges the text nodes
// left adjacent by the removal. Both carets must resolve to the same
// element once text carets are generalized to their parent; the ends may be
// given in either order.
func (e *Editor) Cut(start, end caret.Caret) (CutResult, error) {
	d := e.doc
	if !start.Valid(d) || !end.Valid(d) {
		return CutResult{}, fmt.Errorf("cut %v-%v: %w", start, end, tree.ErrOffsetOutOfRange)
	}
	ok, err := caret.IsWellFormed(d, start, end)
	if err != nil {
		return CutResult{}, err
	}
	if !ok {
		return CutResult{}, fmt.Errorf("cut %v-%v: %w", start, end, tree.ErrMalformedRange)
	}
	if o, err := caret.Compare(d, start, end); err != nil {
		return CutResult{}, err
	} else if o == caret.After {
		start, end = end, start
	}

	if d.IsText(start.Node) && start.Offset == 0 {
		if start, err = caret.BeforeNode(d, start.Node); err != nil {
			return CutResult{}, err
		}
	}

	var (
		final     caret.Caret
		startText tree.NodeID
		endText   tree.NodeID
	)
	container, offset := start.Node, start.Offset

	if d.IsText(container) {
		text := container
		parent := d.Parent(text)
		at := d.IndexOf(text)
		same := text == end.Node
		stop := d.Len(text)
		if same {
			stop = end.Offset
		}

		if stop > offset {
			startText = d.NewText(d.TextSlice(text, offset, stop))
			if err := e.DeleteText(text, offset, stop-offset); err != nil {
				return CutResult{}, err
			}
		}
		if same {
			return CutResult{Caret: start, Removed: nonNil(startText)}, nil
		}
		// The start text keeps at least the characters before offset.
		final = start
		container, offset = parent, at+1
	} else {
		final = start
	}

	endContainer, endOffset := end.Node, end.Offset
	if d.IsText(endContainer) {
		text := endContainer
		parent := d.Parent(text)
		at := d.IndexOf(text)
		if endOffset > 0 {
			endText = d.NewText(d.TextSlice(text, 0, endOffset))
			if err := e.DeleteText(text, 0, endOffset); err != nil {
				return CutResult{}, err
			}
		}
		endContainer, endOffset = parent, at
	}

	if container != endContainer || !d.IsContainer(container) {
		return CutResult{}, fmt.Errorf("cut: containers %d and %d differ: %w", container, endContainer, tree.ErrInternal)
	}

	var removed []tree.NodeID
	for i := endOffset - 1; i >= offset; i-- {
		child := d.Child(container, i)
		if err := e.sink.RemoveChild(child); err != nil {
			return CutResult{}, err
		}
		removed = append(removed, child)
	}
	for i, j := 0, len(removed)-1; i < j; i, j = i+1, j-1 {
		removed[i], removed[j] = removed[j], removed[i]
	}

	if seam := d.Child(container, offset-1); seam != tree.Nil {
		c, err := e.MergeTextNodes(seam)
		if err != nil {
			return CutResult{}, err
		}
		if d.IsText(c.Node) && final == caret.New(container, offset) {
			final = c
		}
	}

	out := nonNil(startText)
	out = append(out, removed...)
	out = append(out, nonNil(endText)...)
	return CutResult{Caret: final, Removed: out}, nil
}

func nonNil(id tree.NodeID) []tree.NodeID {
	if id == tree.Nil {
		return nil
	}
	return []tree.NodeID{id}
}

// InsertNodes inserts a list of detached nodes at c, as a paste. At a text
// caret the text is split around the nodes; at an element caret the nodes
// are inserted as children. Text left adjacent on either side is merged.
// The returned boundaries enclose the inserted content.
func (e *Editor) InsertNodes(c caret.Caret, nodes []tree.NodeID) (Boundaries, error) {
	d := e.doc
	if !c.Valid(d) {
		return Boundaries{}, fmt.Errorf("insert at %v: %w", c, tree.ErrOffsetOutOfRange)
	}
	if d.IsText(c.Node) {
		return e.insertIntoText(c.Node, c.Offset, nodes)
	}
	if err := d.CanInsert(c.Node, nodes...); err != nil {
		return Boundaries{}, err
	}

	nodes = e.normalize(nodes)
	b := Boundaries{Start: c, End: caret.New(c.Node, c.Offset+len(nodes))}
	if len(nodes) == 0 {
		b.End = c
		return b, nil
	}
	if err := e.insertAll(c.Node, c.Offset, nodes); err != nil {
		return Boundaries{}, err
	}

	first, last := nodes[0], nodes[len(nodes)-1]
	if d.IsText(last) && d.IsText(d.NextSibling(last)) {
		m, err := e.MergeTextNodes(last)
		if err != nil {
			return Boundaries{}, err
		}
		b.End = m
	}
	if prev := d.PrevSibling(first); d.IsText(prev) && d.IsText(first) {
		m, err := e.MergeTextNodes(prev)
		if err != nil {
			return Boundaries{}, err
		}
		b.Start = m
		switch b.End.Node {
		case first:
			b.End = caret.New(prev, m.Offset+b.End.Offset)
		case c.Node:
			if first == last {
				b.End = caret.New(prev, d.Len(prev))
			} else {
				b.End.Offset--
			}
		}
	}
	return b, nil
}
