// Package script runs Lua edit scripts against an engine.Engine.
//
// Scripts run in a sandboxed gopher-lua state with only the base, table,
// string and math libraries. The document is exposed as the global table
// "doc" (also available through require("structedit")). Nodes are named by
// child-index paths such as "0/1/0"; the empty path is the document root.
// A caret is passed and returned as a path followed by an offset.
//
//	local p, off = doc.insert_text("0/0", 0, "Hello, ")
//	doc.insert_element("0", 1, "br")
//	local at, at_off = doc.cut("0/0", 0, "0/0", 5)
//	doc.paste("", 1)
//	doc.undo()
//	print(doc.xml())
//
// Every document call that edits creates one undo entry unless calls are
// grouped with doc.begin_group and doc.end_group. A failing call raises a
// Lua error carrying the engine error message.
package script
