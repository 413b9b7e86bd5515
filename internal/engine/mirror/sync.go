package mirror

import (
	"fmt"

	"github.com/dshills/structedit/internal/engine/tree"
)

// Syncer replays changes made to a data tree onto its view tree. Each
// method takes the change as it was described to the data tree: the parent
// and child index in data-tree terms, captured before the change was
// applied for removals.
type Syncer struct {
	doc  *tree.Document
	data tree.NodeID
	view tree.NodeID
	link *Link
}

// NewSyncer links data and view and returns a syncer over them.
func NewSyncer(d *tree.Document, data, view tree.NodeID) *Syncer {
	s := &Syncer{doc: d, data: data, view: view, link: NewLink()}
	s.link.LinkTrees(d, data, view)
	return s
}

// Link returns the element association maintained by the syncer.
func (s *Syncer) Link() *Link {
	return s.link
}

// Roots returns the data and view roots.
func (s *Syncer) Roots() (data, view tree.NodeID) {
	return s.data, s.view
}

func (s *Syncer) viewOf(dataNode tree.NodeID) (tree.NodeID, error) {
	if v, ok := s.link.Mirror(dataNode); ok {
		return v, nil
	}
	v, err := CorrespondingNode(s.doc, s.data, s.view, dataNode)
	if err != nil {
		return tree.Nil, fmt.Errorf("no view node for %d: %w", dataNode, err)
	}
	return v, nil
}

// ApplyInsert mirrors the insertion of node at index under parent. The view
// receives a clone of node, linked to it.
func (s *Syncer) ApplyInsert(parent tree.NodeID, index int, node tree.NodeID) error {
	vp, err := s.viewOf(parent)
	if err != nil {
		return err
	}
	clone := s.doc.Clone(node)
	if err := s.doc.InsertChildAt(vp, index, clone); err != nil {
		return err
	}
	if s.doc.IsContainer(node) {
		s.link.LinkTrees(s.doc, node, clone)
	}
	return nil
}

// ApplyRemove mirrors the removal of the child at index under parent.
func (s *Syncer) ApplyRemove(parent tree.NodeID, index int) error {
	vp, err := s.viewOf(parent)
	if err != nil {
		return err
	}
	child := s.doc.Child(vp, index)
	if child == tree.Nil {
		return fmt.Errorf("view child %d of %d: %w", index, vp, tree.ErrNotInTree)
	}
	if s.doc.IsContainer(child) {
		s.link.UnlinkTree(s.doc, child)
	}
	return s.doc.RemoveChild(child)
}

// ApplySetText mirrors a text change. The view node is found by position,
// so node must still be attached under the data root.
func (s *Syncer) ApplySetText(node tree.NodeID, value string) error {
	v, err := s.viewOf(node)
	if err != nil {
		return err
	}
	return s.doc.SetText(v, value)
}
