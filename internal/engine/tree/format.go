package tree

import "strings"

// Format renders the subtree at id in a compact markup used by tests and
// debug output: elements as <name>...</name> (or <name/> when empty), text
// verbatim, documents as their children only. Attributes and escaping are
// left to the xmlio package.
func (d *Document) Format(id NodeID) string {
	var sb strings.Builder
	d.format(&sb, id)
	return sb.String()
}

func (d *Document) format(sb *strings.Builder, id NodeID) {
	n := d.rec(id)
	switch n.kind {
	case KindText:
		sb.WriteString(string(n.text))
	case KindDocument:
		for _, c := range n.children {
			d.format(sb, c)
		}
	default:
		sb.WriteByte('<')
		sb.WriteString(n.name)
		if len(n.children) == 0 {
			sb.WriteString("/>")
			return
		}
		sb.WriteByte('>')
		for _, c := range n.children {
			d.format(sb, c)
		}
		sb.WriteString("</")
		sb.WriteString(n.name)
		sb.WriteByte('>')
	}
}

// Texts returns the content of every direct text child of id, in order.
func (d *Document) Texts(id NodeID) []string {
	var out []string
	for _, c := range d.rec(id).children {
		if d.nodes[c].kind == KindText {
			out = append(out, string(d.nodes[c].text))
		}
	}
	return out
}
