package edit

import (
	"fmt"

	"github.com/dshills/structedit/internal/engine/caret"
	"github.com/dshills/structedit/internal/engine/tree"
)

// SplitAt splits the subtree of top in two at c, which must lie inside top.
// Every element on the way from c up to top is split; nothing above top is
// touched. top is replaced by the two halves, which are copies of top
// holding the content before and after c. Either half may be empty.
//
// A caret at the very start or end of a text node splits before or after
// that node. top must be an attached element.
func (e *Editor) SplitAt(top tree.NodeID, c caret.Caret) (SplitResult, error) {
	d := e.doc
	if !c.Valid(d) {
		return SplitResult{}, fmt.Errorf("split at %v: %w", c, tree.ErrOffsetOutOfRange)
	}
	if !d.IsContainer(top) || d.Kind(top) != tree.KindElement {
		return SplitResult{}, fmt.Errorf("split %d: %w", top, tree.ErrNotContainer)
	}
	parent := d.Parent(top)
	if parent == tree.Nil {
		return SplitResult{}, fmt.Errorf("split %d: %w", top, tree.ErrDetached)
	}
	path, err := d.IndexPath(top, c.Node)
	if err != nil {
		return SplitResult{}, fmt.Errorf("split %d at %v: %w", top, c, err)
	}

	first, second := d.Clone(top), d.Clone(top)
	if err := keepBefore(d, first, path, c.Offset); err != nil {
		return SplitResult{}, err
	}
	if err := keepAfter(d, second, path, c.Offset); err != nil {
		return SplitResult{}, err
	}

	at := d.IndexOf(top)
	if err := e.sink.RemoveChild(top); err != nil {
		return SplitResult{}, err
	}
	if err := e.insertAll(parent, at, []tree.NodeID{first, second}); err != nil {
		return SplitResult{}, err
	}
	return SplitResult{Before: first, After: second}, nil
}

// keepBefore trims the detached copy rooted at root down to the content
// before (path, offset). The copy is not attached yet, so it is edited in
// place.
func keepBefore(d *tree.Document, root tree.NodeID, path []int, offset int) error {
	node, err := d.Follow(root, path)
	if err != nil {
		return err
	}
	cut := offset
	if d.IsText(node) {
		text := node
		node = d.Parent(text)
		cut = d.IndexOf(text)
		if offset > 0 {
			if err := d.SetText(text, d.TextSlice(text, 0, offset)); err != nil {
				return err
			}
			cut++
		}
	}
	for {
		for d.ChildCount(node) > cut {
			if err := d.RemoveChild(d.LastChild(node)); err != nil {
				return err
			}
		}
		if node == root {
			return nil
		}
		cut = d.IndexOf(node) + 1
		node = d.Parent(node)
	}
}

// keepAfter is the counterpart of keepBefore for the content after the
// split point.
func keepAfter(d *tree.Document, root tree.NodeID, path []int, offset int) error {
	node, err := d.Follow(root, path)
	if err != nil {
		return err
	}
	cut := offset
	if d.IsText(node) {
		text := node
		node = d.Parent(text)
		cut = d.IndexOf(text)
		if offset >= d.Len(text) {
			cut++
		} else if err := d.SetText(text, d.TextSlice(text, offset, d.Len(text))); err != nil {
			return err
		}
	}
	for {
		for i := 0; i < cut; i++ {
			if err := d.RemoveChild(d.FirstChild(node)); err != nil {
				return err
			}
		}
		if node == root {
			return nil
		}
		cut = d.IndexOf(node)
		node = d.Parent(node)
	}
}

// InsertBefore inserts nodes under parent in front of ref, or at the end
// when ref is tree.Nil. Text left adjacent is merged as in InsertNodes.
func (e *Editor) InsertBefore(parent, ref tree.NodeID, nodes ...tree.NodeID) (Boundaries, error) {
	d := e.doc
	if !d.IsContainer(parent) {
		return Boundaries{}, fmt.Errorf("insert into %d: %w", parent, tree.ErrNotContainer)
	}
	index := d.ChildCount(parent)
	if ref != tree.Nil {
		if !d.Valid(ref) || d.Parent(ref) != parent {
			return Boundaries{}, fmt.Errorf("insert before %d: not a child of %d: %w", ref, parent, tree.ErrNotInTree)
		}
		index = d.IndexOf(ref)
	}
	return e.InsertNodes(caret.New(parent, index), nodes)
}
