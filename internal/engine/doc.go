// Package engine provides the structural document editor for structedit.
//
// The engine package is the facade over the editing core. It owns a
// document tree, runs every edit as an undoable command, keeps an optional
// view tree mirrored, and publishes change events, behind one thread-safe
// API.
//
// # Architecture
//
// The engine is built on several sub-packages:
//
//   - tree: node arena with elements, text nodes and index paths
//   - caret: carets, ranges, document-order comparison and navigation
//   - edit: text insertion, deletion, split, merge, cut and paste
//   - history: recorded tree operations and the undo/redo stack
//   - mirror: data/view tree correspondence and synchronization
//   - notify: change subscriptions and batched delivery
//
// # Thread Safety
//
// All Engine operations are thread-safe. The engine uses a read-write mutex
// to allow concurrent reads while serializing edits. Change events are
// delivered after the mutex is released, so observers may call back into
// the engine.
//
// # Basic Usage
//
//	e, err := engine.NewFromString("<p>hello</p>")
//	if err != nil {
//		return err
//	}
//
//	p, _ := e.NodeAt("0")
//	text, _ := e.NodeAt("0/0")
//
//	// Insert at the end of the text
//	e.InsertText(engine.Caret{Node: text, Offset: 5}, " world", true)
//
//	// Cut "hello " and paste it after the paragraph content
//	at, _ := e.Cut(engine.Caret{Node: text, Offset: 0}, engine.Caret{Node: text, Offset: 6})
//	e.Paste(engine.Caret{Node: p, Offset: 1})
//
//	e.Undo()
//	e.XML()
//
// # Invariants
//
// After every edit, undo and redo the document holds no empty text node
// and no two adjacent text siblings, and every caret an operation returns
// can be resolved in the current tree.
//
// # Events
//
// Each structural change is published as a Change with the index path of
// its parent. An edit ends with a ChangeEdit event naming it:
//
//	e.SubscribePath("0", func(ch engine.Change) {
//		fmt.Println(ch.Type, ch.Path)
//	})
package engine
