package tree

import (
	"fmt"
	"strings"
)

// Parent returns the parent of id, or Nil.
func (d *Document) Parent(id NodeID) NodeID {
	return d.rec(id).parent
}

// Children returns a copy of the child list.
func (d *Document) Children(id NodeID) []NodeID {
	c := d.rec(id).children
	out := make([]NodeID, len(c))
	copy(out, c)
	return out
}

// ChildCount returns the number of children. Text nodes have none.
func (d *Document) ChildCount(id NodeID) int {
	return len(d.rec(id).children)
}

// Child returns the child at index i, or Nil if i is out of range.
func (d *Document) Child(id NodeID, i int) NodeID {
	c := d.rec(id).children
	if i < 0 || i >= len(c) {
		return Nil
	}
	return c[i]
}

// FirstChild returns the first child, or Nil.
func (d *Document) FirstChild(id NodeID) NodeID {
	return d.Child(id, 0)
}

// LastChild returns the last child, or Nil.
func (d *Document) LastChild(id NodeID) NodeID {
	return d.Child(id, d.ChildCount(id)-1)
}

// IndexOf returns the index of id among its parent's children, or -1 if id
// is detached.
func (d *Document) IndexOf(id NodeID) int {
	p := d.rec(id).parent
	if p == Nil {
		return -1
	}
	for i, c := range d.nodes[p].children {
		if c == id {
			return i
		}
	}
	return -1
}

// NextSibling returns the sibling after id, or Nil.
func (d *Document) NextSibling(id NodeID) NodeID {
	p := d.rec(id).parent
	if p == Nil {
		return Nil
	}
	return d.Child(p, d.IndexOf(id)+1)
}

// PrevSibling returns the sibling before id, or Nil.
func (d *Document) PrevSibling(id NodeID) NodeID {
	p := d.rec(id).parent
	if p == Nil {
		return Nil
	}
	return d.Child(p, d.IndexOf(id)-1)
}

// Root returns the topmost ancestor of id (id itself when detached).
func (d *Document) Root(id NodeID) NodeID {
	for {
		p := d.rec(id).parent
		if p == Nil {
			return id
		}
		id = p
	}
}

// Contains reports whether descendant is container or one of its descendants.
func (d *Document) Contains(container, descendant NodeID) bool {
	if !d.Valid(container) || !d.Valid(descendant) {
		return false
	}
	for n := descendant; n != Nil; n = d.nodes[n].parent {
		if n == container {
			return true
		}
	}
	return false
}

// Attached reports whether id is root itself or lies inside root.
func (d *Document) Attached(root, id NodeID) bool {
	return d.Contains(root, id)
}

// ancestry returns the path from the root down to id, inclusive.
func (d *Document) ancestry(id NodeID) []NodeID {
	var up []NodeID
	for n := id; n != Nil; n = d.nodes[n].parent {
		up = append(up, n)
	}
	for i, j := 0, len(up)-1; i < j; i, j = i+1, j-1 {
		up[i], up[j] = up[j], up[i]
	}
	return up
}

// Relation describes where one node lies relative to another.
type Relation uint8

const (
	// RelationSame means both handles are the same node.
	RelationSame Relation = iota
	// RelationDisconnected means the nodes have different roots.
	RelationDisconnected
	// RelationContains means the other node is an ancestor of the reference.
	RelationContains
	// RelationContainedBy means the other node is a descendant of the reference.
	RelationContainedBy
	// RelationPreceding means the other node comes before the reference.
	RelationPreceding
	// RelationFollowing means the other node comes after the reference.
	RelationFollowing
)

// String returns the relation name.
func (r Relation) String() string {
	switch r {
	case RelationSame:
		return "same"
	case RelationDisconnected:
		return "disconnected"
	case RelationContains:
		return "contains"
	case RelationContainedBy:
		return "contained-by"
	case RelationPreceding:
		return "preceding"
	case RelationFollowing:
		return "following"
	default:
		return "unknown"
	}
}

// Relation reports where other lies relative to ref, in the manner of DOM
// compareDocumentPosition: RelationContainedBy means other is inside ref,
// RelationPreceding means other comes first in document order. A handle
// outside the arena is disconnected from everything.
func (d *Document) Relation(ref, other NodeID) Relation {
	if !d.Valid(ref) || !d.Valid(other) {
		return RelationDisconnected
	}
	if ref == other {
		return RelationSame
	}
	a := d.ancestry(ref)
	b := d.ancestry(other)
	if a[0] != b[0] {
		return RelationDisconnected
	}

	i := 0
	for i < len(a) && i < len(b) && a[i] == b[i] {
		i++
	}
	switch {
	case i == len(a):
		return RelationContainedBy
	case i == len(b):
		return RelationContains
	}

	// a[i] and b[i] are distinct children of a[i-1].
	for _, c := range d.nodes[a[i-1]].children {
		switch c {
		case a[i]:
			return RelationFollowing
		case b[i]:
			return RelationPreceding
		}
	}
	panic(fmt.Sprintf("tree: child %d missing from parent %d", a[i], a[i-1]))
}

// FirstDescendantOrSelf returns the first node in document order under id
// that has no children, or id itself when it is childless.
func (d *Document) FirstDescendantOrSelf(id NodeID) NodeID {
	if !d.Valid(id) {
		return Nil
	}
	for d.ChildCount(id) > 0 {
		id = d.FirstChild(id)
	}
	return id
}

// LastDescendantOrSelf is the reverse-order counterpart of
// FirstDescendantOrSelf.
func (d *Document) LastDescendantOrSelf(id NodeID) NodeID {
	if !d.Valid(id) {
		return Nil
	}
	for d.ChildCount(id) > 0 {
		id = d.LastChild(id)
	}
	return id
}

// TextContent returns the concatenated text of id and its descendants.
func (d *Document) TextContent(id NodeID) string {
	var sb strings.Builder
	d.writeText(&sb, id)
	return sb.String()
}

func (d *Document) writeText(sb *strings.Builder, id NodeID) {
	n := d.rec(id)
	if n.kind == KindText {
		sb.WriteString(string(n.text))
		return
	}
	for _, c := range n.children {
		d.writeText(sb, c)
	}
}

// Equal reports whether the subtrees at a and b have the same shape, names,
// attributes and text. Node identity is ignored.
func (d *Document) Equal(a, b NodeID) bool {
	na, nb := d.rec(a), d.rec(b)
	if na.kind != nb.kind || na.name != nb.name || string(na.text) != string(nb.text) {
		return false
	}
	if len(na.attrs) != len(nb.attrs) || len(na.children) != len(nb.children) {
		return false
	}
	for i := range na.attrs {
		if na.attrs[i] != nb.attrs[i] {
			return false
		}
	}
	for i := range na.children {
		if !d.Equal(na.children[i], nb.children[i]) {
			return false
		}
	}
	return true
}
