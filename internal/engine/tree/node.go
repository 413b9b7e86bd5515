package tree

import "fmt"

// NodeID is a handle to a node in a Document. The zero value is Nil.
type NodeID int32

// Nil is the handle that refers to no node.
const Nil NodeID = 0

// IsNil reports whether id is the Nil handle.
func (id NodeID) IsNil() bool {
	return id == Nil
}

// Kind identifies the type of a node.
type Kind uint8

const (
	// KindDocument is a tree root.
	KindDocument Kind = iota + 1
	// KindElement is a named node that can hold children.
	KindElement
	// KindText holds a run of character data.
	KindText
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindDocument:
		return "document"
	case KindElement:
		return "element"
	case KindText:
		return "text"
	default:
		return "unknown"
	}
}

// WhiteSpace is the whitespace handling of an element's content.
type WhiteSpace uint8

const (
	// WhiteSpaceNormal collapses runs of whitespace. Trailing or leading
	// whitespace in a collapsing element cannot hold the caret.
	WhiteSpaceNormal WhiteSpace = iota
	// WhiteSpacePre preserves all whitespace.
	WhiteSpacePre
)

// String returns the whitespace mode name.
func (w WhiteSpace) String() string {
	if w == WhiteSpacePre {
		return "pre"
	}
	return "normal"
}

// Attr is an element attribute.
type Attr struct {
	Name  string
	Value string
}

// node is the arena record behind a NodeID.
type node struct {
	kind     Kind
	name     string
	attrs    []Attr
	text     []rune
	ws       WhiteSpace
	parent   NodeID
	children []NodeID
}

// Document is an arena of nodes. The zero value is not usable; create one
// with NewDocument.
//
// Document is not safe for concurrent use. Callers that share it between
// goroutines must serialize access (see engine.Engine).
type Document struct {
	nodes []node
}

// NewDocument creates an empty arena.
func NewDocument() *Document {
	// Slot 0 backs Nil and is never handed out.
	return &Document{nodes: make([]node, 1, 64)}
}

// NodeCount returns the number of nodes ever allocated in the arena.
func (d *Document) NodeCount() int {
	return len(d.nodes) - 1
}

// Valid reports whether id refers to a node in this arena.
func (d *Document) Valid(id NodeID) bool {
	return id > 0 && int(id) < len(d.nodes)
}

func (d *Document) rec(id NodeID) *node {
	if !d.Valid(id) {
		panic(fmt.Sprintf("tree: invalid node id %d", id))
	}
	return &d.nodes[id]
}

func (d *Document) alloc(n node) NodeID {
	d.nodes = append(d.nodes, n)
	return NodeID(len(d.nodes) - 1)
}

// NewRoot allocates a document node.
func (d *Document) NewRoot() NodeID {
	return d.alloc(node{kind: KindDocument})
}

// NewElement allocates a detached element.
func (d *Document) NewElement(name string, attrs ...Attr) NodeID {
	var a []Attr
	if len(attrs) > 0 {
		a = append(a, attrs...)
	}
	return d.alloc(node{kind: KindElement, name: name, attrs: a})
}

// NewText allocates a detached text node. An empty value is allowed here;
// the editing primitives never attach one.
func (d *Document) NewText(value string) NodeID {
	return d.alloc(node{kind: KindText, text: []rune(value)})
}

// Kind returns the node kind.
func (d *Document) Kind(id NodeID) Kind {
	return d.rec(id).kind
}

// IsText reports whether id is a text node. Nil is not.
func (d *Document) IsText(id NodeID) bool {
	return d.Valid(id) && d.nodes[id].kind == KindText
}

// IsContainer reports whether id is an element or document node.
func (d *Document) IsContainer(id NodeID) bool {
	return d.Valid(id) && d.nodes[id].kind != KindText
}

// Name returns the element name, or "" for other kinds.
func (d *Document) Name(id NodeID) string {
	return d.rec(id).name
}

// Attrs returns a copy of the element attributes.
func (d *Document) Attrs(id NodeID) []Attr {
	n := d.rec(id)
	if len(n.attrs) == 0 {
		return nil
	}
	out := make([]Attr, len(n.attrs))
	copy(out, n.attrs)
	return out
}

// Attr returns the value of the named attribute.
func (d *Document) Attr(id NodeID, name string) (string, bool) {
	for _, a := range d.rec(id).attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// SetAttr sets or replaces an attribute.
func (d *Document) SetAttr(id NodeID, name, value string) {
	n := d.rec(id)
	for i := range n.attrs {
		if n.attrs[i].Name == name {
			n.attrs[i].Value = value
			return
		}
	}
	n.attrs = append(n.attrs, Attr{Name: name, Value: value})
}

// WhiteSpace returns the whitespace handling of a container. Text nodes
// report WhiteSpaceNormal.
func (d *Document) WhiteSpace(id NodeID) WhiteSpace {
	return d.rec(id).ws
}

// SetWhiteSpace sets the whitespace handling of a container.
func (d *Document) SetWhiteSpace(id NodeID, ws WhiteSpace) {
	d.rec(id).ws = ws
}

// Text returns the content of a text node, or "" for other kinds.
func (d *Document) Text(id NodeID) string {
	return string(d.rec(id).text)
}

// TextSlice returns runes [start, end) of a text node. Bounds are clamped.
func (d *Document) TextSlice(id NodeID, start, end int) string {
	r := d.rec(id).text
	if start < 0 {
		start = 0
	}
	if end > len(r) {
		end = len(r)
	}
	if start >= end {
		return ""
	}
	return string(r[start:end])
}

// Len returns the rune length of a text node or the child count of a
// container. It is the upper bound of a caret offset in id.
func (d *Document) Len(id NodeID) int {
	n := d.rec(id)
	if n.kind == KindText {
		return len(n.text)
	}
	return len(n.children)
}
