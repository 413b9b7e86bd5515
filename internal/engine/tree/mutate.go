package tree

import "fmt"

// InsertChildAt attaches the detached node child to parent before the child
// currently at index. An index equal to the child count appends.
func (d *Document) InsertChildAt(parent NodeID, index int, child NodeID) error {
	if err := d.checkInsert(parent, index, child); err != nil {
		return err
	}
	p := d.rec(parent)
	p.children = append(p.children, Nil)
	copy(p.children[index+1:], p.children[index:])
	p.children[index] = child
	d.nodes[child].parent = parent
	return nil
}

// InsertFragmentAt attaches a list of detached nodes to parent, in order,
// starting at index.
func (d *Document) InsertFragmentAt(parent NodeID, index int, nodes []NodeID) error {
	if len(nodes) == 0 {
		return nil
	}
	if err := d.checkInsert(parent, index, nodes...); err != nil {
		return err
	}
	p := d.rec(parent)
	tail := append([]NodeID(nil), p.children[index:]...)
	p.children = append(append(p.children[:index], nodes...), tail...)
	for _, c := range nodes {
		d.nodes[c].parent = parent
	}
	return nil
}

func (d *Document) checkInsert(parent NodeID, index int, children ...NodeID) error {
	if err := d.CanInsert(parent, children...); err != nil {
		return err
	}
	if index < 0 || index > d.ChildCount(parent) {
		return fmt.Errorf("insert at index %d of %d: %w", index, parent, ErrOffsetOutOfRange)
	}
	return nil
}

// CanInsert reports, without changing anything, why children could not be
// attached under parent. Each child must be a detached, distinct,
// non-document node that is not parent or one of its ancestors.
func (d *Document) CanInsert(parent NodeID, children ...NodeID) error {
	if !d.IsContainer(parent) {
		return fmt.Errorf("insert into %d: %w", parent, ErrNotContainer)
	}
	seen := make(map[NodeID]bool, len(children))
	for _, c := range children {
		if !d.Valid(c) {
			return fmt.Errorf("insert %d: %w", c, ErrNotInTree)
		}
		n := d.rec(c)
		if n.parent != Nil || seen[c] {
			return fmt.Errorf("insert %d: %w", c, ErrAttached)
		}
		if n.kind == KindDocument || d.Contains(c, parent) {
			return fmt.Errorf("insert %d into %d: %w", c, parent, ErrCycle)
		}
		seen[c] = true
	}
	return nil
}

// RemoveChild detaches child from its parent.
func (d *Document) RemoveChild(child NodeID) error {
	n := d.rec(child)
	if n.parent == Nil {
		return fmt.Errorf("remove %d: %w", child, ErrDetached)
	}
	p := &d.nodes[n.parent]
	i := d.IndexOf(child)
	p.children = append(p.children[:i], p.children[i+1:]...)
	n.parent = Nil
	return nil
}

// SetText replaces the content of a text node.
func (d *Document) SetText(id NodeID, value string) error {
	n := d.rec(id)
	if n.kind != KindText {
		return fmt.Errorf("set text of %d: %w", id, ErrNotText)
	}
	n.text = []rune(value)
	return nil
}

// Clone deep-copies the subtree at id. The copy is detached.
func (d *Document) Clone(id NodeID) NodeID {
	src := *d.rec(id)
	cp := node{
		kind: src.kind,
		name: src.name,
		ws:   src.ws,
		text: append([]rune(nil), src.text...),
	}
	if len(src.attrs) > 0 {
		cp.attrs = append([]Attr(nil), src.attrs...)
	}
	out := d.alloc(cp)
	for _, c := range src.children {
		cc := d.Clone(c)
		d.nodes[cc].parent = out
		d.nodes[out].children = append(d.nodes[out].children, cc)
	}
	return out
}

// CheckNormalized walks the subtree at id and reports the first empty text
// node or pair of adjacent text siblings it finds.
func (d *Document) CheckNormalized(id NodeID) error {
	n := d.rec(id)
	if n.kind == KindText {
		if len(n.text) == 0 {
			return fmt.Errorf("empty text node %d", id)
		}
		return nil
	}
	prevText := false
	for _, c := range n.children {
		isText := d.nodes[c].kind == KindText
		if isText && prevText {
			return fmt.Errorf("adjacent text nodes under %d at %d", id, c)
		}
		prevText = isText
		if err := d.CheckNormalized(c); err != nil {
			return err
		}
	}
	return nil
}
