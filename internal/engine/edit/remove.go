package edit

import (
	"fmt"
	"slices"

	"github.com/dshills/structedit/internal/engine/caret"
	"github.com/dshills/structedit/internal/engine/tree"
)

// DeleteNode removes node from its parent and merges the text nodes that
// the removal leaves adjacent. The returned caret is where node used to be.
func (e *Editor) DeleteNode(node tree.NodeID) (caret.Caret, error) {
	d := e.doc
	if !d.Valid(node) {
		return caret.Caret{}, fmt.Errorf("delete node %d: %w", node, tree.ErrNotInTree)
	}
	parent := d.Parent(node)
	if parent == tree.Nil {
		return caret.Caret{}, fmt.Errorf("delete node %d: %w", node, tree.ErrDetached)
	}
	at := d.IndexOf(node)
	prev := d.PrevSibling(node)
	if err := e.sink.RemoveChild(node); err != nil {
		return caret.Caret{}, err
	}
	if d.IsText(prev) && d.IsText(d.NextSibling(prev)) {
		return e.MergeTextNodes(prev)
	}
	return caret.New(parent, at), nil
}

// RemoveNodes removes a set of attached nodes, which may have different
// parents. Nodes inside another listed node go with it. Removal runs in
// reverse document order so earlier indices stay valid; the seams are
// merged once everything is gone.
func (e *Editor) RemoveNodes(nodes []tree.NodeID) error {
	d := e.doc
	for _, n := range nodes {
		if !d.Valid(n) {
			return fmt.Errorf("remove node %d: %w", n, tree.ErrNotInTree)
		}
		if d.Parent(n) == tree.Nil {
			return fmt.Errorf("remove node %d: %w", n, tree.ErrDetached)
		}
	}

	var todo []tree.NodeID
	for _, n := range nodes {
		if !slices.Contains(todo, n) && !coveredBy(d, n, nodes) {
			todo = append(todo, n)
		}
	}
	slices.SortFunc(todo, func(a, b tree.NodeID) int {
		switch d.Relation(a, b) {
		case tree.RelationPreceding:
			return -1
		case tree.RelationFollowing:
			return 1
		}
		return 0
	})

	var seams []tree.NodeID
	for _, n := range todo {
		if prev := d.PrevSibling(n); d.IsText(prev) {
			seams = append(seams, prev)
		}
		if err := e.sink.RemoveChild(n); err != nil {
			return err
		}
	}
	for _, s := range seams {
		if d.Parent(s) == tree.Nil || !d.IsText(d.NextSibling(s)) {
			continue
		}
		if _, err := e.MergeTextNodes(s); err != nil {
			return err
		}
	}
	return nil
}

// coveredBy reports whether a proper ancestor of n is in nodes.
func coveredBy(d *tree.Document, n tree.NodeID, nodes []tree.NodeID) bool {
	for p := d.Parent(n); p != tree.Nil; p = d.Parent(p) {
		if slices.Contains(nodes, p) {
			return true
		}
	}
	return false
}
