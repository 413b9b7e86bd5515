// Package history provides undo/redo for structural edits.
//
// Every change the editing primitives make to a document passes through a
// Recorder, which applies it and keeps an Operation describing it. The
// operations of one edit become a Command on the History stacks; undoing a
// command replays the inverse operations in reverse order.
//
// # Operations
//
// An Operation is one of three tree changes, each with an exact inverse:
//   - OpInsert: a detached node attached under a parent at an index
//   - OpRemove: a child detached from its parent
//   - OpSetText: the content of a text node replaced
//
// Removed nodes keep their identity, so undoing a removal re-attaches the
// very same node and carets held by callers into that subtree stay valid.
//
// # History Stack
//
//	rec := history.NewRecorder(doc)
//	h := history.NewHistory(1000)
//
//	editor := edit.New(doc, rec)
//	editor.InsertText(p, 0, "hi", true)
//	h.Push(history.NewRecordedCommand("Insert text", rec.Take()))
//
//	h.Undo(rec)
//	h.Redo(rec)
//
// # Command Grouping
//
// Several commands can be grouped as a single undo unit:
//
//	h.BeginGroup("Paste")
//	// ... multiple edits ...
//	h.EndGroup()
//
// # Observers
//
// A Recorder reports every operation it applies, including those replayed
// by undo and redo, to its observer. Views kept in sync with the document
// subscribe there.
package history
