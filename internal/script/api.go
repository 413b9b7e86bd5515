package script

import (
	"errors"
	"slices"
	"strings"

	"github.com/dshills/structedit/internal/engine"
	"github.com/dshills/structedit/internal/engine/tree"
	lua "github.com/yuin/gopher-lua"
)

// module builds the doc table.
func (r *Runtime) module(L *lua.LState) *lua.LTable {
	fns := map[string]func(L *lua.LState) int{
		"xml":            r.xml,
		"text":           r.text,
		"name":           r.name,
		"attr":           r.attr,
		"children":       r.children,
		"insert_text":    r.insertText,
		"delete_text":    r.deleteText,
		"insert_element": r.insertElement,
		"insert_xml":     r.insertXML,
		"split":          r.split,
		"merge":          r.merge,
		"delete_node":    r.deleteNode,
		"remove_nodes":   r.removeNodes,
		"split_at":       r.splitAt,
		"insert_before":  r.insertBefore,
		"cut":            r.cut,
		"paste":          r.paste,
		"undo":           r.undo,
		"redo":           r.redo,
		"begin_group":    r.beginGroup,
		"end_group":      r.endGroup,
		"transaction":    r.transaction,
		"checkpoint":     r.checkpoint,
		"undo_to":        r.undoTo,
		"redo_to":        r.redoTo,
		"compare":        r.compare,
		"next_caret":     r.nextCaret,
		"prev_caret":     r.prevCaret,
	}
	mod := L.NewTable()
	for name, fn := range fns {
		wrapped := fn
		L.SetField(mod, name, L.NewFunction(func(L *lua.LState) int {
			r.count(L)
			return wrapped(L)
		}))
	}
	return mod
}

// node resolves the path argument at index n.
func (r *Runtime) node(L *lua.LState, n int) tree.NodeID {
	id, err := r.eng.NodeAt(L.CheckString(n))
	if err != nil {
		L.ArgError(n, err.Error())
	}
	return id
}

// caretArg resolves a path and offset starting at argument n.
func (r *Runtime) caretArg(L *lua.LState, n int) engine.Caret {
	return engine.Caret{Node: r.node(L, n), Offset: L.CheckInt(n + 1)}
}

// pushCaret pushes a caret as path, offset.
func (r *Runtime) pushCaret(L *lua.LState, fn string, c engine.Caret) int {
	path, err := r.eng.PathOf(c.Node)
	if err != nil {
		raise(L, fn, err)
	}
	L.Push(lua.LString(path))
	L.Push(lua.LNumber(c.Offset))
	return 2
}

func (r *Runtime) pushPath(L *lua.LState, fn string, id tree.NodeID) {
	path, err := r.eng.PathOf(id)
	if err != nil {
		raise(L, fn, err)
	}
	L.Push(lua.LString(path))
}

// doc.xml() -> string
func (r *Runtime) xml(L *lua.LState) int {
	L.Push(lua.LString(r.eng.XML()))
	return 1
}

// doc.text(path) -> string
func (r *Runtime) text(L *lua.LState) int {
	s, err := r.eng.Text(r.node(L, 1))
	if err != nil {
		raise(L, "text", err)
	}
	L.Push(lua.LString(s))
	return 1
}

// doc.name(path) -> element name, or nil for text
func (r *Runtime) name(L *lua.LState) int {
	id := r.node(L, 1)
	if r.eng.IsText(id) {
		L.Push(lua.LNil)
		return 1
	}
	name, err := r.eng.Name(id)
	if err != nil {
		raise(L, "name", err)
	}
	L.Push(lua.LString(name))
	return 1
}

// doc.attr(path, name) -> value or nil
func (r *Runtime) attr(L *lua.LState) int {
	v, ok, err := r.eng.Attr(r.node(L, 1), L.CheckString(2))
	if err != nil {
		raise(L, "attr", err)
	}
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LString(v))
	return 1
}

// doc.children(path) -> count
func (r *Runtime) children(L *lua.LState) int {
	n, err := r.eng.ChildCount(r.node(L, 1))
	if err != nil {
		raise(L, "children", err)
	}
	L.Push(lua.LNumber(n))
	return 1
}

// doc.insert_text(path, offset, text [, at_end=true]) -> path, offset
func (r *Runtime) insertText(L *lua.LState) int {
	c := r.caretArg(L, 1)
	text := L.CheckString(3)
	atEnd := L.OptBool(4, true)
	res, err := r.eng.InsertText(c, text, atEnd)
	if err != nil {
		raise(L, "insert_text", err)
	}
	return r.pushCaret(L, "insert_text", res.Caret)
}

// doc.delete_text(path, offset, length)
func (r *Runtime) deleteText(L *lua.LState) int {
	id := r.node(L, 1)
	if err := r.eng.DeleteText(id, L.CheckInt(2), L.CheckInt(3)); err != nil {
		raise(L, "delete_text", err)
	}
	return 0
}

// doc.insert_element(path, offset, name [, attrs]) -> path
func (r *Runtime) insertElement(L *lua.LState) int {
	c := r.caretArg(L, 1)
	name := L.CheckString(3)
	var attrs []tree.Attr
	if t := L.OptTable(4, nil); t != nil {
		t.ForEach(func(k, v lua.LValue) {
			attrs = append(attrs, tree.Attr{Name: k.String(), Value: v.String()})
		})
		slices.SortFunc(attrs, func(a, b tree.Attr) int {
			return strings.Compare(a.Name, b.Name)
		})
	}
	el, _, err := r.eng.InsertElement(c, name, attrs...)
	if err != nil {
		raise(L, "insert_element", err)
	}
	r.pushPath(L, "insert_element", el)
	return 1
}

// doc.insert_xml(path, offset, markup) -> start path, offset, end path, offset
func (r *Runtime) insertXML(L *lua.LState) int {
	c := r.caretArg(L, 1)
	b, err := r.eng.InsertXML(c, L.CheckString(3))
	if err != nil {
		raise(L, "insert_xml", err)
	}
	r.pushCaret(L, "insert_xml", b.Start)
	return 2 + r.pushCaret(L, "insert_xml", b.End)
}

// doc.split(path, offset) -> before path, after path
func (r *Runtime) split(L *lua.LState) int {
	id := r.node(L, 1)
	res, err := r.eng.Split(id, L.CheckInt(2))
	if err != nil {
		raise(L, "split", err)
	}
	r.pushPath(L, "split", res.Before)
	r.pushPath(L, "split", res.After)
	return 2
}

// doc.merge(path) -> path, offset
func (r *Runtime) merge(L *lua.LState) int {
	c, err := r.eng.Merge(r.node(L, 1))
	if err != nil {
		raise(L, "merge", err)
	}
	return r.pushCaret(L, "merge", c)
}

// doc.delete_node(path) -> path, offset
func (r *Runtime) deleteNode(L *lua.LState) int {
	c, err := r.eng.DeleteNode(r.node(L, 1))
	if err != nil {
		raise(L, "delete_node", err)
	}
	return r.pushCaret(L, "delete_node", c)
}

// doc.remove_nodes(path, ...)
func (r *Runtime) removeNodes(L *lua.LState) int {
	// Paths are resolved up front; they shift once removal starts.
	ids := make([]tree.NodeID, L.GetTop())
	for i := range ids {
		ids[i] = r.node(L, i+1)
	}
	if err := r.eng.RemoveNodes(ids...); err != nil {
		raise(L, "remove_nodes", err)
	}
	return 0
}

// doc.split_at(top, path, offset) -> first path, second path
func (r *Runtime) splitAt(L *lua.LState) int {
	top := r.node(L, 1)
	res, err := r.eng.SplitAt(top, r.caretArg(L, 2))
	if err != nil {
		raise(L, "split_at", err)
	}
	r.pushPath(L, "split_at", res.Before)
	r.pushPath(L, "split_at", res.After)
	return 2
}

// doc.insert_before(path, markup) -> start path, offset, end path, offset
func (r *Runtime) insertBefore(L *lua.LState) int {
	b, err := r.eng.InsertXMLBefore(r.node(L, 1), L.CheckString(2))
	if err != nil {
		raise(L, "insert_before", err)
	}
	r.pushCaret(L, "insert_before", b.Start)
	return 2 + r.pushCaret(L, "insert_before", b.End)
}

// doc.cut(path, offset, path, offset) -> path, offset
func (r *Runtime) cut(L *lua.LState) int {
	start := r.caretArg(L, 1)
	end := r.caretArg(L, 3)
	c, err := r.eng.Cut(start, end)
	if err != nil {
		raise(L, "cut", err)
	}
	return r.pushCaret(L, "cut", c)
}

// doc.paste(path, offset) -> start path, offset, end path, offset
func (r *Runtime) paste(L *lua.LState) int {
	b, err := r.eng.Paste(r.caretArg(L, 1))
	if err != nil {
		raise(L, "paste", err)
	}
	r.pushCaret(L, "paste", b.Start)
	return 2 + r.pushCaret(L, "paste", b.End)
}

// doc.undo() -> bool
func (r *Runtime) undo(L *lua.LState) int {
	err := r.eng.Undo()
	if err != nil && !errors.Is(err, engine.ErrNothingToUndo) {
		raise(L, "undo", err)
	}
	L.Push(lua.LBool(err == nil))
	return 1
}

// doc.redo() -> bool
func (r *Runtime) redo(L *lua.LState) int {
	err := r.eng.Redo()
	if err != nil && !errors.Is(err, engine.ErrNothingToRedo) {
		raise(L, "redo", err)
	}
	L.Push(lua.LBool(err == nil))
	return 1
}

// doc.begin_group(name)
func (r *Runtime) beginGroup(L *lua.LState) int {
	r.eng.BeginGroup(L.OptString(1, "script"))
	return 0
}

// doc.end_group()
func (r *Runtime) endGroup(L *lua.LState) int {
	r.eng.EndGroup()
	return 0
}

// doc.transaction(fn [, name]) runs fn as one undo entry. An error raised
// by fn rolls its edits back and is raised again.
func (r *Runtime) transaction(L *lua.LState) int {
	fn := L.CheckFunction(1)
	name := L.OptString(2, "script")
	err := r.eng.Transaction(name, func() error {
		return L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true})
	})
	if err != nil {
		raise(L, "transaction", err)
	}
	return 0
}

// doc.checkpoint() -> id
func (r *Runtime) checkpoint(L *lua.LState) int {
	L.Push(lua.LString(r.eng.Checkpoint().String()))
	return 1
}

// doc.undo_to(id)
func (r *Runtime) undoTo(L *lua.LState) int {
	if err := r.eng.UndoTo(r.checkpointArg(L, 1)); err != nil {
		raise(L, "undo_to", err)
	}
	return 0
}

// doc.redo_to(id)
func (r *Runtime) redoTo(L *lua.LState) int {
	if err := r.eng.RedoTo(r.checkpointArg(L, 1)); err != nil {
		raise(L, "redo_to", err)
	}
	return 0
}

func (r *Runtime) checkpointArg(L *lua.LState, n int) engine.Checkpoint {
	cp, err := engine.ParseCheckpoint(L.CheckString(n))
	if err != nil {
		L.ArgError(n, err.Error())
	}
	return cp
}

// doc.compare(path, offset, path, offset) -> -1, 0 or 1
func (r *Runtime) compare(L *lua.LState) int {
	o, err := r.eng.Compare(r.caretArg(L, 1), r.caretArg(L, 3))
	if err != nil {
		raise(L, "compare", err)
	}
	L.Push(lua.LNumber(o))
	return 1
}

// doc.next_caret(path, offset [, container [, no_text]]) -> path, offset or nil
func (r *Runtime) nextCaret(L *lua.LState) int {
	return r.step(L, "next_caret", r.eng.NextCaret)
}

// doc.prev_caret(path, offset [, container [, no_text]]) -> path, offset or nil
func (r *Runtime) prevCaret(L *lua.LState) int {
	return r.step(L, "prev_caret", r.eng.PrevCaret)
}

func (r *Runtime) step(L *lua.LState, fn string, move func(engine.Caret, tree.NodeID, bool) (engine.Caret, bool)) int {
	c := r.caretArg(L, 1)
	container := tree.Nil
	if L.GetTop() >= 3 && L.Get(3) != lua.LNil {
		container = r.node(L, 3)
	}
	next, ok := move(c, container, L.OptBool(4, false))
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	return r.pushCaret(L, fn, next)
}
