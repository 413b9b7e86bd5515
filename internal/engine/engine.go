package engine

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/dshills/structedit/internal/engine/caret"
	"github.com/dshills/structedit/internal/engine/edit"
	"github.com/dshills/structedit/internal/engine/history"
	"github.com/dshills/structedit/internal/engine/mirror"
	"github.com/dshills/structedit/internal/engine/notify"
	"github.com/dshills/structedit/internal/engine/tree"
	"github.com/dshills/structedit/internal/xmlio"
)

// Re-export commonly used types for convenience.
type (
	// NodeID is a handle to a document node.
	NodeID = tree.NodeID

	// Caret is an editing position.
	Caret = caret.Caret

	// Range is a pair of carets.
	Range = caret.Range

	// Order is the result of comparing two carets.
	Order = caret.Order

	// Boundaries encloses inserted content.
	Boundaries = edit.Boundaries

	// SplitResult is the outcome of a split.
	SplitResult = edit.SplitResult

	// TextInsertion is the outcome of a text insertion.
	TextInsertion = edit.TextInsertion

	// Change is a document change event.
	Change = notify.Change

	// Observer receives change events.
	Observer = notify.Observer

	// Subscription is an active observer registration.
	Subscription = notify.Subscription

	// OperationInfo describes a history entry.
	OperationInfo = history.OperationInfo

	// Checkpoint marks a position in the undo history.
	Checkpoint = history.Checkpoint
)

// Change types published by the engine.
const (
	ChangeInsert = notify.ChangeInsert
	ChangeRemove = notify.ChangeRemove
	ChangeText   = notify.ChangeText
	ChangeEdit   = notify.ChangeEdit
)

// Engine is a structural document editor. It owns a document tree, applies
// edits through a recording sink so every edit can be undone, keeps an
// optional view tree mirrored, and publishes change events.
type Engine struct {
	mu sync.RWMutex

	doc  *tree.Document
	root tree.NodeID
	view tree.NodeID

	recorder *history.Recorder
	editor   *edit.Editor
	history  *history.History
	syncer   *mirror.Syncer
	notifier *notify.Notifier
	logger   *slog.Logger

	// batch collects the changes of the edit in progress.
	batch *notify.Batch

	// clipboard holds the content of the last cut, detached.
	clipboard []tree.NodeID

	// Configuration
	maxUndoEntries int
	readOnly       bool
	withView       bool
	preserve       []string
	rootWS         tree.WhiteSpace
	asyncEvents    int
}

// New creates an engine over an empty document.
func New(opts ...Option) *Engine {
	e := configure(opts)
	e.root = e.doc.NewRoot()
	e.doc.SetWhiteSpace(e.root, e.rootWS)
	e.init()
	return e
}

// NewFromReader creates an engine over the XML read from r.
func NewFromReader(r io.Reader, opts ...Option) (*Engine, error) {
	e := configure(opts)
	root, err := xmlio.Parse(e.doc, r,
		xmlio.WithPreserve(e.preserve...),
		xmlio.WithRootWhiteSpace(e.rootWS),
	)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	e.root = root
	e.init()
	return e, nil
}

// NewFromString creates an engine over an XML string.
func NewFromString(s string, opts ...Option) (*Engine, error) {
	return NewFromReader(strings.NewReader(s), opts...)
}

func configure(opts []Option) *Engine {
	e := &Engine{
		doc:            tree.NewDocument(),
		maxUndoEntries: DefaultMaxUndoEntries,
		logger:         slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) init() {
	e.recorder = history.NewRecorder(e.doc)
	e.recorder.SetObserver(e.observe)
	e.editor = edit.New(e.doc, e.recorder)
	e.history = history.NewHistory(e.maxUndoEntries)

	var nopts []notify.Option
	if e.asyncEvents > 0 {
		nopts = append(nopts, notify.WithAsync(e.asyncEvents))
	}
	e.notifier = notify.New(nopts...)

	if e.withView {
		e.view = e.doc.Clone(e.root)
		e.syncer = mirror.NewSyncer(e.doc, e.root, e.view)
	}
}

// Close stops event delivery. Pending asynchronous events are delivered
// first.
func (e *Engine) Close() {
	e.notifier.Close()
}

// ============================================================================
// Document Access
// ============================================================================

// Document returns the underlying document. Callers must not mutate it and
// must not read it concurrently with edits.
func (e *Engine) Document() *tree.Document {
	return e.doc
}

// Root returns the root of the edited tree.
func (e *Engine) Root() NodeID {
	return e.root
}

// View returns the root of the view tree, if the engine keeps one.
func (e *Engine) View() (NodeID, bool) {
	return e.view, e.view != tree.Nil
}

// XML returns the document serialized as XML.
func (e *Engine) XML() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return xmlio.String(e.doc, e.root)
}

// WriteTo writes the document as XML.
func (e *Engine) WriteTo(w io.Writer) error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return xmlio.Write(w, e.doc, e.root)
}

// Format returns the compact debug rendering of the document.
func (e *Engine) Format() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.doc.Format(e.root)
}

// ViewFormat returns the compact debug rendering of the view tree.
func (e *Engine) ViewFormat() (string, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.view == tree.Nil {
		return "", ErrNoView
	}
	return e.doc.Format(e.view), nil
}

// NodeAt resolves an index path such as "0/1" under the root.
func (e *Engine) NodeAt(path string) (NodeID, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.doc.NodeAt(e.root, path)
}

// PathOf returns the index path of node under the root.
func (e *Engine) PathOf(node NodeID) (string, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if err := e.checkNode(node); err != nil {
		return "", err
	}
	return e.doc.PathOf(e.root, node)
}

// Text returns the content of a text node, or the concatenated text below
// an element.
func (e *Engine) Text(node NodeID) (string, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if err := e.checkNode(node); err != nil {
		return "", err
	}
	return e.doc.TextContent(node), nil
}

// Name returns the element name of node, or "" for text.
func (e *Engine) Name(node NodeID) (string, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if err := e.checkNode(node); err != nil {
		return "", err
	}
	return e.doc.Name(node), nil
}

// Attr returns the value of an attribute of node.
func (e *Engine) Attr(node NodeID, name string) (string, bool, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if err := e.checkNode(node); err != nil {
		return "", false, err
	}
	v, ok := e.doc.Attr(node, name)
	return v, ok, nil
}

// ChildCount returns the number of children of node. Text nodes have none.
func (e *Engine) ChildCount(node NodeID) (int, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if err := e.checkNode(node); err != nil {
		return 0, err
	}
	if e.doc.IsText(node) {
		return 0, nil
	}
	return e.doc.ChildCount(node), nil
}

// IsText reports whether node is a text node.
func (e *Engine) IsText(node NodeID) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.doc.IsText(node)
}

// CheckNormalized verifies that the document has no empty or adjacent text
// nodes.
func (e *Engine) CheckNormalized() error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.doc.CheckNormalized(e.root)
}

// IsReadOnly returns true if the engine is read-only.
func (e *Engine) IsReadOnly() bool {
	return e.readOnly
}

func (e *Engine) checkNode(node NodeID) error {
	if !e.doc.Valid(node) || !e.doc.Contains(e.root, node) {
		return fmt.Errorf("node %d: %w", node, ErrNotInDocument)
	}
	return nil
}

func (e *Engine) checkCaret(c Caret) error {
	if err := e.checkNode(c.Node); err != nil {
		return err
	}
	if !c.Valid(e.doc) {
		return fmt.Errorf("caret %v: %w", c, ErrOffsetOutOfRange)
	}
	return nil
}

// ============================================================================
// Editing
// ============================================================================

// InsertText inserts text at c. When c is in an element and no text node is
// next to it a new text node is created. The returned caret is placed after
// the inserted text when caretAtEnd is set, before it otherwise.
func (e *Engine) InsertText(c Caret, text string, caretAtEnd bool) (TextInsertion, error) {
	var res TextInsertion
	err := e.edit("insert text", func() error {
		if err := e.checkCaret(c); err != nil {
			return err
		}
		var err error
		res, err = e.editor.InsertText(c.Node, c.Offset, text, caretAtEnd)
		return err
	})
	return res, err
}

// InsertElement inserts a new empty element at c, splitting text when c is
// inside a text node.
func (e *Engine) InsertElement(c Caret, name string, attrs ...tree.Attr) (NodeID, Boundaries, error) {
	var (
		el NodeID
		b  Boundaries
	)
	err := e.edit("insert element", func() error {
		if err := e.checkCaret(c); err != nil {
			return err
		}
		el = e.doc.NewElement(name, attrs...)
		if p, err := c.Container(e.doc); err == nil {
			e.doc.SetWhiteSpace(el, e.doc.WhiteSpace(p))
		}
		var err error
		if e.doc.IsText(c.Node) {
			b, err = e.editor.InsertIntoText(c.Node, c.Offset, el)
		} else {
			b, err = e.editor.InsertNodes(c, []tree.NodeID{el})
		}
		return err
	})
	return el, b, err
}

// InsertXML parses markup and inserts the resulting nodes at c.
func (e *Engine) InsertXML(c Caret, markup string) (Boundaries, error) {
	var b Boundaries
	err := e.edit("insert xml", func() error {
		if err := e.checkCaret(c); err != nil {
			return err
		}
		nodes, err := e.parseFragment(markup)
		if err != nil {
			return err
		}
		b, err = e.editor.InsertNodes(c, nodes)
		return err
	})
	return b, err
}

// InsertXMLBefore parses markup and inserts the resulting nodes as
// siblings in front of ref.
func (e *Engine) InsertXMLBefore(ref NodeID, markup string) (Boundaries, error) {
	var b Boundaries
	err := e.edit("insert before", func() error {
		if err := e.checkNode(ref); err != nil {
			return err
		}
		if ref == e.root {
			return fmt.Errorf("insert before %d: %w", ref, ErrRootNode)
		}
		nodes, err := e.parseFragment(markup)
		if err != nil {
			return err
		}
		b, err = e.editor.InsertBefore(e.doc.Parent(ref), ref, nodes...)
		return err
	})
	return b, err
}

// parseFragment parses markup into detached nodes.
func (e *Engine) parseFragment(markup string) ([]tree.NodeID, error) {
	frag, err := xmlio.ParseString(e.doc, markup, xmlio.WithPreserve(e.preserve...))
	if err != nil {
		return nil, err
	}
	nodes := e.doc.Children(frag)
	for _, n := range nodes {
		if err := e.doc.RemoveChild(n); err != nil {
			return nil, err
		}
	}
	return nodes, nil
}

// DeleteText removes up to length characters of node starting at index.
// A text node left empty is removed.
func (e *Engine) DeleteText(node NodeID, index, length int) error {
	return e.edit("delete text", func() error {
		if err := e.checkNode(node); err != nil {
			return err
		}
		return e.editor.DeleteText(node, index, length)
	})
}

// Split splits a text node at index.
func (e *Engine) Split(node NodeID, index int) (SplitResult, error) {
	var res SplitResult
	err := e.edit("split", func() error {
		if err := e.checkNode(node); err != nil {
			return err
		}
		var err error
		res, err = e.editor.SplitTextNode(node, index)
		return err
	})
	return res, err
}

// Merge merges node with the text node that follows it. The returned caret
// marks the former boundary.
func (e *Engine) Merge(node NodeID) (Caret, error) {
	var c Caret
	err := e.edit("merge", func() error {
		if err := e.checkNode(node); err != nil {
			return err
		}
		var err error
		c, err = e.editor.MergeTextNodes(node)
		return err
	})
	return c, err
}

// DeleteNode removes node and merges the text it leaves adjacent. The
// returned caret marks where node was.
func (e *Engine) DeleteNode(node NodeID) (Caret, error) {
	var c Caret
	err := e.edit("delete node", func() error {
		if err := e.checkRemovable(node); err != nil {
			return err
		}
		var err error
		c, err = e.editor.DeleteNode(node)
		return err
	})
	return c, err
}

// RemoveNodes removes all of nodes as one edit.
func (e *Engine) RemoveNodes(nodes ...NodeID) error {
	return e.edit("remove nodes", func() error {
		for _, n := range nodes {
			if err := e.checkRemovable(n); err != nil {
				return err
			}
		}
		return e.editor.RemoveNodes(nodes)
	})
}

func (e *Engine) checkRemovable(node NodeID) error {
	if err := e.checkNode(node); err != nil {
		return err
	}
	if node == e.root {
		return fmt.Errorf("remove %d: %w", node, ErrRootNode)
	}
	return nil
}

// SplitAt splits top, an element below the root, in two at c. Elements
// between c and top are split along with it.
func (e *Engine) SplitAt(top NodeID, c Caret) (SplitResult, error) {
	var res SplitResult
	err := e.edit("split at", func() error {
		if err := e.checkRemovable(top); err != nil {
			return err
		}
		if err := e.checkCaret(c); err != nil {
			return err
		}
		var err error
		res, err = e.editor.SplitAt(top, c)
		return err
	})
	return res, err
}

// Cut removes the content between start and end and keeps it as the
// clipboard. It returns the caret where the content was.
func (e *Engine) Cut(start, end Caret) (Caret, error) {
	var at Caret
	err := e.edit("cut", func() error {
		if err := e.checkCaret(start); err != nil {
			return err
		}
		if err := e.checkCaret(end); err != nil {
			return err
		}
		res, err := e.editor.Cut(start, end)
		if err != nil {
			return err
		}
		// Undo reattaches the removed nodes, so the clipboard keeps copies.
		e.clipboard = e.cloneAll(res.Removed)
		at = res.Caret
		return nil
	})
	if err != nil {
		return Caret{}, err
	}
	return at, nil
}

func (e *Engine) cloneAll(nodes []tree.NodeID) []tree.NodeID {
	out := make([]tree.NodeID, len(nodes))
	for i, n := range nodes {
		out[i] = e.doc.Clone(n)
	}
	return out
}

// Paste inserts a copy of the clipboard at c.
func (e *Engine) Paste(c Caret) (Boundaries, error) {
	var b Boundaries
	err := e.edit("paste", func() error {
		if len(e.clipboard) == 0 {
			return ErrEmptyClipboard
		}
		if err := e.checkCaret(c); err != nil {
			return err
		}
		var err error
		b, err = e.editor.InsertNodes(c, e.cloneAll(e.clipboard))
		return err
	})
	return b, err
}

// Clipboard returns the markup of the clipboard content.
func (e *Engine) Clipboard() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	var sb strings.Builder
	for _, n := range e.clipboard {
		sb.WriteString(xmlio.String(e.doc, n))
	}
	return sb.String()
}

// edit runs fn as one undoable command. Changes it makes are published
// once the lock is released.
func (e *Engine) edit(name string, fn func() error) error {
	e.mu.Lock()
	if e.readOnly {
		e.mu.Unlock()
		return ErrReadOnly
	}
	b := e.notifier.NewBatch()
	e.batch = b
	cmd := history.NewFuncCommand(name, fn)
	err := e.history.Execute(cmd, e.recorder)
	e.batch = nil
	e.mu.Unlock()

	if err != nil {
		e.logger.Warn("edit failed", "op", name, "error", err)
		return err
	}
	e.logger.Debug("edit applied", "op", name, "undo", e.history.UndoCount())
	e.publish(b, name)
	return nil
}

// observe is called by the recorder after every applied operation,
// including undo and redo replays.
func (e *Engine) observe(op *history.Operation) error {
	if e.syncer != nil {
		var err error
		switch op.Kind {
		case history.OpInsert:
			err = e.syncer.ApplyInsert(op.Parent, op.Index, op.Node)
		case history.OpRemove:
			err = e.syncer.ApplyRemove(op.Parent, op.Index)
		case history.OpSetText:
			err = e.syncer.ApplySetText(op.Node, op.NewText)
		}
		if err != nil {
			return fmt.Errorf("sync view: %w", err)
		}
	}

	if e.batch == nil {
		return nil
	}
	ch := notify.Change{Node: op.Node, Index: op.Index}
	at := op.Parent
	switch op.Kind {
	case history.OpInsert:
		ch.Type = notify.ChangeInsert
	case history.OpRemove:
		ch.Type = notify.ChangeRemove
	case history.OpSetText:
		ch.Type = notify.ChangeText
		ch.OldValue, ch.NewValue = op.OldText, op.NewText
		at = op.Node
	}
	// Operations on content outside the root are not published.
	path, err := e.doc.PathOf(e.root, at)
	if err != nil {
		return nil
	}
	ch.Path = path
	e.batch.Add(ch)
	return nil
}

func (e *Engine) publish(b *notify.Batch, source string) {
	b.Add(notify.Change{Type: notify.ChangeEdit, Source: source})
	b.Commit()
}

// ============================================================================
// Undo/Redo
// ============================================================================

// Undo undoes the last edit.
func (e *Engine) Undo() error {
	return e.replay("undo", e.history.Undo)
}

// Redo redoes the last undone edit.
func (e *Engine) Redo() error {
	return e.replay("redo", e.history.Redo)
}

func (e *Engine) replay(name string, fn func(*history.Recorder) error) error {
	e.mu.Lock()
	if e.readOnly {
		e.mu.Unlock()
		return ErrReadOnly
	}
	b := e.notifier.NewBatch()
	e.batch = b
	err := fn(e.recorder)
	e.batch = nil
	e.mu.Unlock()

	if err != nil {
		e.logger.Debug(name+" failed", "error", err)
		return err
	}
	e.logger.Debug(name, "undo", e.history.UndoCount(), "redo", e.history.RedoCount())
	e.publish(b, name)
	return nil
}

// CanUndo returns true if there are edits to undo.
func (e *Engine) CanUndo() bool {
	return e.history.CanUndo()
}

// CanRedo returns true if there are edits to redo.
func (e *Engine) CanRedo() bool {
	return e.history.CanRedo()
}

// UndoHistory returns the undo entries, oldest first.
func (e *Engine) UndoHistory() []OperationInfo {
	return e.history.UndoInfo()
}

// RedoHistory returns the redo entries.
func (e *Engine) RedoHistory() []OperationInfo {
	return e.history.RedoInfo()
}

// BeginGroup starts grouping edits into one undo entry.
func (e *Engine) BeginGroup(name string) {
	e.history.BeginGroup(name)
}

// EndGroup ends the current group.
func (e *Engine) EndGroup() {
	e.history.EndGroup()
}

// ClearHistory removes all undo and redo entries.
func (e *Engine) ClearHistory() {
	e.history.Clear()
}

// Transaction runs fn as one undo entry. Edits made by fn are rolled back
// when it returns an error.
func (e *Engine) Transaction(name string, fn func() error) error {
	err := e.history.Transaction(name, fn, func(c history.Command) error {
		return e.replay("rollback", c.Undo)
	})
	if err != nil {
		e.logger.Warn("transaction failed", "name", name, "error", err)
	}
	return err
}

// Checkpoint marks the current history position.
func (e *Engine) Checkpoint() Checkpoint {
	return e.history.CreateCheckpoint()
}

// ParseCheckpoint reads a checkpoint from its string form.
func ParseCheckpoint(s string) (Checkpoint, error) {
	return history.ParseCheckpoint(s)
}

// UndoTo undoes edits back to cp.
func (e *Engine) UndoTo(cp Checkpoint) error {
	return e.replay("undo to", func(r *history.Recorder) error {
		return e.history.UndoTo(cp, r)
	})
}

// RedoTo redoes edits forward to cp.
func (e *Engine) RedoTo(cp Checkpoint) error {
	return e.replay("redo to", func(r *history.Recorder) error {
		return e.history.RedoTo(cp, r)
	})
}

// ============================================================================
// Carets
// ============================================================================

// Compare orders two carets in document order.
func (e *Engine) Compare(a, b Caret) (Order, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if err := e.checkCaret(a); err != nil {
		return caret.Equal, err
	}
	if err := e.checkCaret(b); err != nil {
		return caret.Equal, err
	}
	return caret.Compare(e.doc, a, b)
}

// NextCaret returns the caret following c without leaving container. A
// container of Nil means the root.
func (e *Engine) NextCaret(c Caret, container NodeID, noText bool) (Caret, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if container == tree.Nil {
		container = e.root
	}
	if e.checkCaret(c) != nil {
		return Caret{}, false
	}
	return caret.Next(e.doc, c, container, noText)
}

// PrevCaret returns the caret preceding c without leaving container.
func (e *Engine) PrevCaret(c Caret, container NodeID, noText bool) (Caret, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if container == tree.Nil {
		container = e.root
	}
	if e.checkCaret(c) != nil {
		return Caret{}, false
	}
	return caret.Prev(e.doc, c, container, noText)
}

// ToView maps a document caret to the view tree.
func (e *Engine) ToView(c Caret) (Caret, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.view == tree.Nil {
		return Caret{}, ErrNoView
	}
	return mirror.CorrespondingCaret(e.doc, e.root, e.view, c)
}

// ToData maps a view caret back to the document.
func (e *Engine) ToData(c Caret) (Caret, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.view == tree.Nil {
		return Caret{}, ErrNoView
	}
	return mirror.CorrespondingCaret(e.doc, e.view, e.root, c)
}

// ============================================================================
// Events
// ============================================================================

// Subscribe registers an observer for all changes.
func (e *Engine) Subscribe(fn Observer) *Subscription {
	return e.notifier.Subscribe(fn)
}

// SubscribePath registers an observer for changes at or below an index
// path.
func (e *Engine) SubscribePath(path string, fn Observer) *Subscription {
	return e.notifier.SubscribePath(path, fn)
}
