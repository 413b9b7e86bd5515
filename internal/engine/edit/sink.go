package edit

import (
	"errors"
	"strings"

	"github.com/dshills/structedit/internal/engine/caret"
	"github.com/dshills/structedit/internal/engine/tree"
)

// ErrNoNode indicates an insertion was requested with nothing to insert.
var ErrNoNode = errors.New("no node to insert")

// MutationSink receives every structural change made by the primitives.
// *tree.Document implements it directly.
type MutationSink interface {
	InsertChildAt(parent tree.NodeID, index int, child tree.NodeID) error
	RemoveChild(child tree.NodeID) error
	SetText(node tree.NodeID, value string) error
}

// FragmentInserter is implemented by sinks that can insert several siblings
// as a single change.
type FragmentInserter interface {
	InsertFragmentAt(parent tree.NodeID, index int, nodes []tree.NodeID) error
}

// Editor applies the editing primitives to one document.
type Editor struct {
	doc  *tree.Document
	sink MutationSink
}

// New creates an editor over d. A nil sink applies changes to d directly.
func New(d *tree.Document, sink MutationSink) *Editor {
	if sink == nil {
		sink = d
	}
	return &Editor{doc: d, sink: sink}
}

// Document returns the document being edited.
func (e *Editor) Document() *tree.Document {
	return e.doc
}

// Boundaries are the carets on either side of inserted material.
type Boundaries struct {
	Start caret.Caret
	End   caret.Caret
}

func (e *Editor) insertAll(parent tree.NodeID, index int, nodes []tree.NodeID) error {
	if len(nodes) == 0 {
		return nil
	}
	if fi, ok := e.sink.(FragmentInserter); ok {
		return fi.InsertFragmentAt(parent, index, nodes)
	}
	for i, n := range nodes {
		if err := e.sink.InsertChildAt(parent, index+i, n); err != nil {
			return err
		}
	}
	return nil
}

// normalize drops empty text nodes from a detached node list and replaces
// each run of adjacent text nodes with one new text node. Nodes supplied by
// the caller are never modified.
func (e *Editor) normalize(nodes []tree.NodeID) []tree.NodeID {
	out := make([]tree.NodeID, 0, len(nodes))
	var run []tree.NodeID
	flush := func() {
		switch len(run) {
		case 0:
		case 1:
			out = append(out, run[0])
		default:
			var sb strings.Builder
			for _, n := range run {
				sb.WriteString(e.doc.Text(n))
			}
			out = append(out, e.doc.NewText(sb.String()))
		}
		run = run[:0]
	}
	for _, n := range nodes {
		if !e.doc.IsText(n) {
			flush()
			out = append(out, n)
			continue
		}
		if e.doc.Len(n) > 0 {
			run = append(run, n)
		}
	}
	flush()
	return out
}
