// Package xmlio reads XML into a tree.Document and writes it back out.
//
// Parsing keeps the editing invariants: adjacent character data is merged
// into one text node and empty runs are dropped. Comments, processing
// instructions and directives are discarded. Each element's whitespace mode
// is inherited from its parent unless the element is listed with
// WithPreserve or carries xml:space.
//
// Names are kept as written. A prefixed element such as t:b is stored under
// the name "t:b" and xmlns declarations stay ordinary attributes, so a
// document writes back with the prefixes it was read with.
package xmlio

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/dshills/structedit/internal/engine/tree"
)

type options struct {
	preserve map[string]bool
	rootWS   tree.WhiteSpace
}

// Option configures parsing.
type Option func(*options)

// WithPreserve marks elements whose content keeps all whitespace.
func WithPreserve(names ...string) Option {
	return func(o *options) {
		for _, n := range names {
			o.preserve[n] = true
		}
	}
}

// WithRootWhiteSpace sets the whitespace mode inherited by top-level elements.
func WithRootWhiteSpace(ws tree.WhiteSpace) Option {
	return func(o *options) {
		o.rootWS = ws
	}
}

// ParseString is Parse on a string.
func ParseString(d *tree.Document, s string, opts ...Option) (tree.NodeID, error) {
	return Parse(d, strings.NewReader(s), opts...)
}

// Parse decodes XML from r into a new document node of d and returns it.
// Several top-level elements (a fragment) are accepted.
func Parse(d *tree.Document, r io.Reader, opts ...Option) (tree.NodeID, error) {
	o := options{preserve: make(map[string]bool)}
	for _, opt := range opts {
		opt(&o)
	}

	root := d.NewRoot()
	d.SetWhiteSpace(root, o.rootWS)

	dec := xml.NewDecoder(r)
	stack := []tree.NodeID{root}
	var names []string
	var pending strings.Builder

	flush := func() error {
		if pending.Len() == 0 {
			return nil
		}
		parent := stack[len(stack)-1]
		t := d.NewText(pending.String())
		pending.Reset()
		return d.InsertChildAt(parent, d.ChildCount(parent), t)
	}

	for {
		tok, err := dec.RawToken()
		if err == io.EOF {
			if len(names) > 0 {
				return tree.Nil, fmt.Errorf("parsing xml: element <%s> not closed", names[len(names)-1])
			}
			break
		}
		if err != nil {
			return tree.Nil, fmt.Errorf("parsing xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if err := flush(); err != nil {
				return tree.Nil, err
			}
			parent := stack[len(stack)-1]
			name := qualified(t.Name)
			el := d.NewElement(name)
			ws := d.WhiteSpace(parent)
			if o.preserve[name] {
				ws = tree.WhiteSpacePre
			}
			for _, a := range t.Attr {
				if a.Name.Space == "xml" && a.Name.Local == "space" {
					ws = spaceMode(a.Value, ws)
				}
				d.SetAttr(el, qualified(a.Name), a.Value)
			}
			d.SetWhiteSpace(el, ws)
			if err := d.InsertChildAt(parent, d.ChildCount(parent), el); err != nil {
				return tree.Nil, err
			}
			stack = append(stack, el)
			names = append(names, name)
		case xml.EndElement:
			if err := flush(); err != nil {
				return tree.Nil, err
			}
			name := qualified(t.Name)
			if len(names) == 0 || names[len(names)-1] != name {
				return tree.Nil, fmt.Errorf("parsing xml: unexpected end element </%s>", name)
			}
			stack = stack[:len(stack)-1]
			names = names[:len(names)-1]
		case xml.CharData:
			pending.Write(t)
		}
	}
	if err := flush(); err != nil {
		return tree.Nil, err
	}
	return root, nil
}

// qualified joins a raw name with its prefix.
func qualified(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}

func spaceMode(v string, inherited tree.WhiteSpace) tree.WhiteSpace {
	switch v {
	case "preserve":
		return tree.WhiteSpacePre
	case "default":
		return tree.WhiteSpaceNormal
	default:
		return inherited
	}
}

// Write serializes the subtree at id. A document node writes its children.
func Write(w io.Writer, d *tree.Document, id tree.NodeID) error {
	switch d.Kind(id) {
	case tree.KindText:
		_, err := io.WriteString(w, EscapeText(d.Text(id)))
		return err
	case tree.KindDocument:
		for _, c := range d.Children(id) {
			if err := Write(w, d, c); err != nil {
				return err
			}
		}
		return nil
	}

	var b bytes.Buffer
	b.WriteByte('<')
	b.WriteString(d.Name(id))
	for _, a := range d.Attrs(id) {
		b.WriteByte(' ')
		b.WriteString(a.Name)
		b.WriteString(`="`)
		b.WriteString(escapeAttr(a.Value))
		b.WriteByte('"')
	}
	if d.ChildCount(id) == 0 {
		b.WriteString("/>")
		_, err := w.Write(b.Bytes())
		return err
	}
	b.WriteByte('>')
	if _, err := w.Write(b.Bytes()); err != nil {
		return err
	}
	for _, c := range d.Children(id) {
		if err := Write(w, d, c); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "</"+d.Name(id)+">")
	return err
}

// String serializes the subtree at id to a string.
func String(d *tree.Document, id tree.NodeID) string {
	var sb strings.Builder
	// strings.Builder never returns a write error.
	_ = Write(&sb, d, id)
	return sb.String()
}

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", "\r", "&#xD;")
	attrEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"\t", "&#x9;",
		"\n", "&#xA;",
		"\r", "&#xD;",
	)
)

// EscapeText escapes s for use as character data. Line breaks and tabs are
// written as is.
func EscapeText(s string) string {
	return textEscaper.Replace(s)
}

func escapeAttr(s string) string {
	return attrEscaper.Replace(s)
}
