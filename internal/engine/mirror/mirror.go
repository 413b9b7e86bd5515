// Package mirror keeps an editable view tree in correspondence with a data
// tree of the same shape.
//
// Correspondence can be computed on demand from child-index paths
// (CorrespondingNode) or kept as a bidirectional element map (Link). A
// Syncer replays each structural change made to the data tree onto the
// view tree and keeps the map current.
package mirror

import (
	"fmt"

	"github.com/dshills/structedit/internal/engine/caret"
	"github.com/dshills/structedit/internal/engine/tree"
)

// CorrespondingNode returns the node under rootB whose child-index path
// from rootB equals the path of nodeA from rootA. It fails with
// tree.ErrNotInTree when nodeA is not under rootA or the path does not
// exist under rootB.
func CorrespondingNode(d *tree.Document, rootA, rootB, nodeA tree.NodeID) (tree.NodeID, error) {
	path, err := d.IndexPath(rootA, nodeA)
	if err != nil {
		return tree.Nil, err
	}
	return d.Follow(rootB, path)
}

// CorrespondingCaret maps a caret under rootA to the same position under
// rootB.
func CorrespondingCaret(d *tree.Document, rootA, rootB tree.NodeID, c caret.Caret) (caret.Caret, error) {
	n, err := CorrespondingNode(d, rootA, rootB, c.Node)
	if err != nil {
		return caret.Caret{}, err
	}
	out := caret.New(n, c.Offset)
	if !out.Valid(d) {
		return caret.Caret{}, fmt.Errorf("caret %v maps outside node %d: %w", c, n, tree.ErrOffsetOutOfRange)
	}
	return out, nil
}

// Link is a bidirectional association between corresponding elements of
// two trees. Text nodes are not linked; they are resolved through their
// parent.
type Link struct {
	peer map[tree.NodeID]tree.NodeID
}

// NewLink creates an empty link table.
func NewLink() *Link {
	return &Link{peer: make(map[tree.NodeID]tree.NodeID)}
}

// LinkTrees associates every container under rootA with the container at
// the same position under rootB. The trees are assumed to mirror each
// other; extra children on either side are ignored.
func (l *Link) LinkTrees(d *tree.Document, rootA, rootB tree.NodeID) {
	l.peer[rootA] = rootB
	l.peer[rootB] = rootA
	ca, cb := d.Children(rootA), d.Children(rootB)
	for i := 0; i < len(ca) && i < len(cb); i++ {
		if d.IsContainer(ca[i]) && d.IsContainer(cb[i]) {
			l.LinkTrees(d, ca[i], cb[i])
		}
	}
}

// UnlinkTree removes the associations of every container under root, on
// both sides.
func (l *Link) UnlinkTree(d *tree.Document, root tree.NodeID) {
	if p, ok := l.peer[root]; ok {
		delete(l.peer, p)
		delete(l.peer, root)
	}
	for _, c := range d.Children(root) {
		if d.IsContainer(c) {
			l.UnlinkTree(d, c)
		}
	}
}

// Mirror returns the node linked to id.
func (l *Link) Mirror(id tree.NodeID) (tree.NodeID, bool) {
	p, ok := l.peer[id]
	return p, ok
}

// Len returns the number of linked pairs.
func (l *Link) Len() int {
	return len(l.peer) / 2
}
