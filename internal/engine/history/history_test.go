package history

import (
	"errors"
	"testing"

	"github.com/dshills/structedit/internal/engine/caret"
	"github.com/dshills/structedit/internal/engine/edit"
	"github.com/dshills/structedit/internal/engine/tree"
	"github.com/dshills/structedit/internal/xmlio"
)

// newTestDocument parses src and returns a recorder and editor over it.
func newTestDocument(t *testing.T, src string) (*Recorder, *edit.Editor, tree.NodeID) {
	t.Helper()
	d := tree.NewDocument()
	root, err := xmlio.ParseString(d, src)
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	rec := NewRecorder(d)
	return rec, edit.New(d, rec), root
}

func mustNode(t *testing.T, d *tree.Document, root tree.NodeID, path string) tree.NodeID {
	t.Helper()
	n, err := d.NodeAt(root, path)
	if err != nil {
		t.Fatalf("NodeAt(%q): %v", path, err)
	}
	return n
}

// Operation Tests

func TestOperationKinds(t *testing.T) {
	tests := []struct {
		name string
		op   *Operation
		kind OpKind
		noop bool
	}{
		{"insert", NewInsertOperation(1, 0, 2), OpInsert, false},
		{"remove", NewRemoveOperation(1, 0, 2), OpRemove, false},
		{"set text", NewSetTextOperation(2, "a", "b"), OpSetText, false},
		{"same text", NewSetTextOperation(2, "a", "a"), OpSetText, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.op.Kind != tt.kind {
				t.Errorf("Kind = %v, want %v", tt.op.Kind, tt.kind)
			}
			if tt.op.IsNoop() != tt.noop {
				t.Errorf("IsNoop() = %v, want %v", tt.op.IsNoop(), tt.noop)
			}
			if tt.op.Timestamp.IsZero() {
				t.Error("timestamp not set")
			}
		})
	}
}

func TestOperationInvert(t *testing.T) {
	ins := NewInsertOperation(1, 3, 7)
	inv := ins.Invert()
	if !inv.IsRemove() || inv.Parent != 1 || inv.Index != 3 || inv.Node != 7 {
		t.Errorf("Invert(insert) = %v", inv)
	}
	if !inv.Invert().IsInsert() {
		t.Error("double invert should be insert")
	}

	set := NewSetTextOperation(4, "old", "new")
	inv = set.Invert()
	if inv.OldText != "new" || inv.NewText != "old" {
		t.Errorf("Invert(set-text) = %v", inv)
	}
}

func TestOperationListInvert(t *testing.T) {
	ops := OperationList{
		NewInsertOperation(1, 0, 2),
		NewSetTextOperation(2, "a", "b"),
	}
	inv := ops.Invert()
	if len(inv) != 2 {
		t.Fatalf("len = %d, want 2", len(inv))
	}
	if !inv[0].IsSetText() || !inv[1].IsRemove() {
		t.Errorf("inverted order = %v, %v", inv[0], inv[1])
	}
}

func TestApplyRemoveChecksPosition(t *testing.T) {
	rec, _, root := newTestDocument(t, "<p><a/><b/></p>")
	d := rec.Document()
	p := mustNode(t, d, root, "0")
	b := mustNode(t, d, root, "0/1")

	op := NewRemoveOperation(p, 0, b)
	if err := op.Apply(d); !errors.Is(err, tree.ErrInternal) {
		t.Errorf("Apply error = %v, want ErrInternal", err)
	}
	if d.Parent(b) != p {
		t.Error("misplaced remove should not detach")
	}
}

// Recorder Tests

func TestRecorderRecordsEdits(t *testing.T) {
	rec, ed, root := newTestDocument(t, "<p>abcd</p>")
	d := rec.Document()
	text := mustNode(t, d, root, "0/0")

	if _, err := ed.InsertIntoText(text, 2, d.NewElement("e")); err != nil {
		t.Fatal(err)
	}
	if rec.Pending() != 4 {
		t.Errorf("Pending() = %d, want 4", rec.Pending())
	}
	ops := rec.Take()
	if rec.Pending() != 0 {
		t.Error("Take should clear pending operations")
	}
	if !ops[0].IsRemove() || ops[0].Node != text {
		t.Errorf("first op = %v, want remove of original text", ops[0])
	}
	for i, op := range ops[1:] {
		if !op.IsInsert() || op.Index != i {
			t.Errorf("op %d = %v", i+1, op)
		}
	}
}

func TestRecorderReplayRestores(t *testing.T) {
	rec, ed, root := newTestDocument(t, "<p>ab<b>cd</b>ef</p>")
	d := rec.Document()
	before := d.Format(root)

	start := mustNode(t, d, root, "0/0")
	end := mustNode(t, d, root, "0/2")
	if _, err := ed.Cut(caret.New(start, 1), caret.New(end, 1)); err != nil {
		t.Fatal(err)
	}
	after := d.Format(root)
	ops := rec.Take()

	if err := rec.Replay(ops.Invert()); err != nil {
		t.Fatalf("replay inverse: %v", err)
	}
	if got := d.Format(root); got != before {
		t.Errorf("after undo = %s, want %s", got, before)
	}
	if err := rec.Replay(ops); err != nil {
		t.Fatalf("replay: %v", err)
	}
	if got := d.Format(root); got != after {
		t.Errorf("after redo = %s, want %s", got, after)
	}
	if rec.Pending() != 0 {
		t.Error("Replay should not record")
	}
}

func TestRecorderObserver(t *testing.T) {
	rec, ed, root := newTestDocument(t, "<p>ab</p>")
	d := rec.Document()

	var kinds []OpKind
	rec.SetObserver(func(op *Operation) error {
		kinds = append(kinds, op.Kind)
		return nil
	})
	if _, err := ed.InsertText(mustNode(t, d, root, "0/0"), 1, "x", true); err != nil {
		t.Fatal(err)
	}
	if err := rec.Rollback(); err != nil {
		t.Fatal(err)
	}
	if len(kinds) != 2 || kinds[0] != OpSetText || kinds[1] != OpSetText {
		t.Errorf("observed %v", kinds)
	}
	if got := d.Format(root); got != "<p>ab</p>" {
		t.Errorf("after rollback = %s", got)
	}

	wantErr := errors.New("stop")
	rec.SetObserver(func(*Operation) error { return wantErr })
	if _, err := ed.InsertText(mustNode(t, d, root, "0/0"), 0, "y", true); !errors.Is(err, wantErr) {
		t.Errorf("observer error = %v, want %v", err, wantErr)
	}
}

// History Tests

func pushEdit(t *testing.T, h *History, rec *Recorder, name string, fn func() error) {
	t.Helper()
	if err := h.Execute(NewFuncCommand(name, fn), rec); err != nil {
		t.Fatalf("%s: %v", name, err)
	}
}

func TestHistoryUndoRedo(t *testing.T) {
	rec, ed, root := newTestDocument(t, "<p>ab</p>")
	d := rec.Document()
	h := NewHistory(100)
	text := mustNode(t, d, root, "0/0")

	pushEdit(t, h, rec, "Insert", func() error {
		_, err := ed.InsertText(text, 2, "cd", true)
		return err
	})
	pushEdit(t, h, rec, "Delete", func() error {
		return ed.DeleteText(text, 0, 1)
	})
	if got := d.Format(root); got != "<p>bcd</p>" {
		t.Fatalf("after edits = %s", got)
	}

	if err := h.Undo(rec); err != nil {
		t.Fatal(err)
	}
	if got := d.Format(root); got != "<p>abcd</p>" {
		t.Errorf("after undo = %s", got)
	}
	if err := h.Undo(rec); err != nil {
		t.Fatal(err)
	}
	if got := d.Format(root); got != "<p>ab</p>" {
		t.Errorf("after second undo = %s", got)
	}
	if err := h.Undo(rec); !errors.Is(err, ErrNothingToUndo) {
		t.Errorf("expected ErrNothingToUndo, got %v", err)
	}

	if err := h.Redo(rec); err != nil {
		t.Fatal(err)
	}
	if err := h.Redo(rec); err != nil {
		t.Fatal(err)
	}
	if got := d.Format(root); got != "<p>bcd</p>" {
		t.Errorf("after redo = %s", got)
	}
	if err := h.Redo(rec); !errors.Is(err, ErrNothingToRedo) {
		t.Errorf("expected ErrNothingToRedo, got %v", err)
	}
}

func TestHistoryRemovedNodeIdentity(t *testing.T) {
	rec, ed, root := newTestDocument(t, "<p>x</p>")
	d := rec.Document()
	h := NewHistory(100)
	text := mustNode(t, d, root, "0/0")

	pushEdit(t, h, rec, "Delete", func() error {
		return ed.DeleteText(text, 0, 1)
	})
	if d.Parent(text) != tree.Nil {
		t.Fatal("emptied text should be removed")
	}
	if err := h.Undo(rec); err != nil {
		t.Fatal(err)
	}
	if d.Parent(text) == tree.Nil || d.Text(text) != "x" {
		t.Error("undo should re-attach the same node")
	}
}

func TestHistoryFailedCommandRollsBack(t *testing.T) {
	rec, ed, root := newTestDocument(t, "<p>ab</p>")
	d := rec.Document()
	h := NewHistory(100)
	text := mustNode(t, d, root, "0/0")

	wantErr := errors.New("boom")
	err := h.Execute(NewFuncCommand("Broken", func() error {
		if _, err := ed.InsertText(text, 0, "zz", true); err != nil {
			return err
		}
		return wantErr
	}), rec)
	if !errors.Is(err, wantErr) {
		t.Fatalf("error = %v, want %v", err, wantErr)
	}
	if got := d.Format(root); got != "<p>ab</p>" {
		t.Errorf("after failed command = %s", got)
	}
	if h.CanUndo() {
		t.Error("failed command should not be pushed")
	}
}

func TestHistoryRedoClearedOnPush(t *testing.T) {
	rec, ed, root := newTestDocument(t, "<p>ab</p>")
	h := NewHistory(100)
	text := mustNode(t, rec.Document(), root, "0/0")
	insert := func(s string) func() error {
		return func() error {
			_, err := ed.InsertText(text, 0, s, true)
			return err
		}
	}

	pushEdit(t, h, rec, "One", insert("1"))
	if err := h.Undo(rec); err != nil {
		t.Fatal(err)
	}
	if !h.CanRedo() {
		t.Fatal("should be able to redo")
	}
	pushEdit(t, h, rec, "Two", insert("2"))
	if h.CanRedo() {
		t.Error("push should clear redo stack")
	}
}

func TestHistoryMaxEntries(t *testing.T) {
	rec, ed, root := newTestDocument(t, "<p>ab</p>")
	h := NewHistory(3)
	text := mustNode(t, rec.Document(), root, "0/0")

	for i := 0; i < 5; i++ {
		pushEdit(t, h, rec, "Type", func() error {
			_, err := ed.InsertText(text, 0, "x", true)
			return err
		})
	}
	if h.UndoCount() != 3 {
		t.Errorf("UndoCount() = %d, want 3", h.UndoCount())
	}

	h.SetMaxEntries(2)
	if h.UndoCount() != 2 || h.MaxEntries() != 2 {
		t.Errorf("after SetMaxEntries: count %d, max %d", h.UndoCount(), h.MaxEntries())
	}
	h.SetMaxEntries(0)
	if h.MaxEntries() != DefaultMaxEntries {
		t.Errorf("MaxEntries() = %d, want default", h.MaxEntries())
	}
}

func TestHistoryGrouping(t *testing.T) {
	rec, ed, root := newTestDocument(t, "<p>ab</p>")
	d := rec.Document()
	h := NewHistory(100)
	text := mustNode(t, d, root, "0/0")

	h.BeginGroup("Typing")
	if !h.IsGrouping() {
		t.Error("should be grouping")
	}
	h.BeginGroup("Nested")
	for _, s := range []string{"x", "y", "z"} {
		pushEdit(t, h, rec, "Type", func() error {
			_, err := ed.InsertText(text, 2, s, true)
			return err
		})
	}
	h.EndGroup()

	if h.UndoCount() != 1 {
		t.Fatalf("UndoCount() = %d, want 1", h.UndoCount())
	}
	info, ok := h.PeekUndo()
	if !ok || info.Description != "Typing" || info.Operations != 3 {
		t.Errorf("PeekUndo() = %+v, %v", info, ok)
	}
	if err := h.Undo(rec); err != nil {
		t.Fatal(err)
	}
	if got := d.Format(root); got != "<p>ab</p>" {
		t.Errorf("after group undo = %s", got)
	}
}

func TestHistoryEmptyGroup(t *testing.T) {
	h := NewHistory(100)
	h.BeginGroup("Nothing")
	h.EndGroup()
	if h.CanUndo() {
		t.Error("empty group should not be pushed")
	}
}

func TestTransaction(t *testing.T) {
	rec, ed, root := newTestDocument(t, "<p>ab</p>")
	d := rec.Document()
	h := NewHistory(100)
	text := mustNode(t, d, root, "0/0")
	typeX := func() error {
		return h.Execute(NewFuncCommand("t", func() error {
			_, err := ed.InsertText(text, 0, "x", true)
			return err
		}), rec)
	}
	undo := func(c Command) error { return c.Undo(rec) }

	err := h.Transaction("Ok", func() error {
		if err := typeX(); err != nil {
			return err
		}
		return typeX()
	}, undo)
	if err != nil || h.UndoCount() != 1 {
		t.Fatalf("Transaction: %v, count %d", err, h.UndoCount())
	}
	if info, _ := h.PeekUndo(); info.Description != "Ok" || info.Operations != 2 {
		t.Errorf("PeekUndo() = %+v", info)
	}

	wantErr := errors.New("fail")
	err = h.Transaction("Fail", func() error {
		if err := typeX(); err != nil {
			return err
		}
		return wantErr
	}, undo)
	if !errors.Is(err, wantErr) {
		t.Errorf("error = %v", err)
	}
	if h.IsGrouping() || h.UndoCount() != 1 {
		t.Error("failed transaction should leave no entry")
	}
	if got := d.Format(root); got != "<p>xxab</p>" {
		t.Errorf("failed transaction not rolled back: %s", got)
	}
}

func TestTransactionInsideGroup(t *testing.T) {
	rec, ed, root := newTestDocument(t, "<p>ab</p>")
	d := rec.Document()
	h := NewHistory(100)
	text := mustNode(t, d, root, "0/0")
	typeX := func() error {
		return h.Execute(NewFuncCommand("t", func() error {
			_, err := ed.InsertText(text, 0, "x", true)
			return err
		}), rec)
	}

	h.BeginGroup("Outer")
	if err := typeX(); err != nil {
		t.Fatal(err)
	}
	boom := errors.New("boom")
	err := h.Transaction("Inner", func() error {
		if err := typeX(); err != nil {
			return err
		}
		return boom
	}, func(c Command) error { return c.Undo(rec) })
	if !errors.Is(err, boom) {
		t.Fatalf("error = %v", err)
	}
	if !h.IsGrouping() {
		t.Error("inner transaction should not close the outer group")
	}
	h.EndGroup()

	if h.UndoCount() != 1 || d.Format(root) != "<p>xab</p>" {
		t.Errorf("count %d, tree %s", h.UndoCount(), d.Format(root))
	}
}

func TestCheckpoint(t *testing.T) {
	rec, ed, root := newTestDocument(t, "<p>ab</p>")
	d := rec.Document()
	h := NewHistory(100)
	text := mustNode(t, d, root, "0/0")
	typeX := func() error {
		_, err := ed.InsertText(text, 0, "x", true)
		return err
	}

	empty := h.CreateCheckpoint()
	pushEdit(t, h, rec, "1", typeX)
	cp := h.CreateCheckpoint()
	pushEdit(t, h, rec, "2", typeX)
	pushEdit(t, h, rec, "3", typeX)
	end := h.CreateCheckpoint()

	parsed, err := ParseCheckpoint(cp.String())
	if err != nil || parsed != cp {
		t.Fatalf("ParseCheckpoint(%s) = %v, %v", cp, parsed, err)
	}
	if err := h.UndoTo(parsed, rec); err != nil {
		t.Fatal(err)
	}
	if got := d.Format(root); got != "<p>xab</p>" {
		t.Errorf("at checkpoint = %s", got)
	}
	if err := h.UndoTo(end, rec); !errors.Is(err, ErrUnknownCheckpoint) {
		t.Errorf("undo to a redo position: error = %v", err)
	}
	if err := h.RedoTo(end, rec); err != nil {
		t.Fatal(err)
	}
	if got := d.Format(root); got != "<p>xxxab</p>" {
		t.Errorf("after redo to checkpoint = %s", got)
	}
	if err := h.RedoTo(end, rec); err != nil {
		t.Errorf("redo to the current position: %v", err)
	}
	if err := h.UndoTo(empty, rec); err != nil {
		t.Fatal(err)
	}
	if got := d.Format(root); got != "<p>ab</p>" || h.CanUndo() {
		t.Errorf("at empty checkpoint = %s", got)
	}

	// A new edit drops the redo stack and the checkpoints on it.
	pushEdit(t, h, rec, "4", typeX)
	if err := h.RedoTo(end, rec); !errors.Is(err, ErrUnknownCheckpoint) {
		t.Errorf("stale checkpoint: error = %v", err)
	}
	if _, err := ParseCheckpoint("nope"); !errors.Is(err, ErrUnknownCheckpoint) {
		t.Errorf("ParseCheckpoint error = %v", err)
	}
}

func TestUndoInfoIDs(t *testing.T) {
	rec, ed, root := newTestDocument(t, "<p>ab</p>")
	h := NewHistory(100)
	text := mustNode(t, rec.Document(), root, "0/0")

	for i := 0; i < 3; i++ {
		pushEdit(t, h, rec, "Type", func() error {
			_, err := ed.InsertText(text, 0, "x", true)
			return err
		})
	}
	infos := h.UndoInfo()
	seen := map[string]bool{}
	for _, info := range infos {
		if seen[info.ID.String()] {
			t.Errorf("duplicate id %v", info.ID)
		}
		seen[info.ID.String()] = true
	}
	if err := h.Undo(rec); err != nil {
		t.Fatal(err)
	}
	redo := h.RedoInfo()
	if len(redo) != 1 || redo[0].ID != infos[2].ID {
		t.Errorf("RedoInfo() = %+v", redo)
	}
	if p, ok := h.PeekRedo(); !ok || p.ID != infos[2].ID {
		t.Errorf("PeekRedo() = %+v, %v", p, ok)
	}

	h.Clear()
	if h.CanUndo() || h.CanRedo() {
		t.Error("Clear should empty both stacks")
	}
}
