package edit

import (
	"errors"
	"math/rand/v2"
	"strconv"
	"strings"
	"testing"

	"github.com/dshills/structedit/internal/engine/caret"
	"github.com/dshills/structedit/internal/engine/tree"
	"github.com/dshills/structedit/internal/xmlio"
)

func parse(t *testing.T, src string) (*Editor, tree.NodeID) {
	t.Helper()
	d := tree.NewDocument()
	root, err := xmlio.ParseString(d, src)
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	return New(d, nil), root
}

func at(t *testing.T, e *Editor, root tree.NodeID, path string) tree.NodeID {
	t.Helper()
	n, err := e.Document().NodeAt(root, path)
	if err != nil {
		t.Fatalf("NodeAt(%q): %v", path, err)
	}
	return n
}

// show renders a caret as "text"@offset for text nodes and <name>@offset
// for containers.
func show(d *tree.Document, c caret.Caret) string {
	if d.IsText(c.Node) {
		return strconv.Quote(d.Text(c.Node)) + "@" + strconv.Itoa(c.Offset)
	}
	return "<" + d.Name(c.Node) + ">@" + strconv.Itoa(c.Offset)
}

func formatAll(d *tree.Document, nodes []tree.NodeID) string {
	var sb strings.Builder
	for _, n := range nodes {
		sb.WriteString(d.Format(n))
	}
	return sb.String()
}

func checkNormalized(t *testing.T, d *tree.Document, root tree.NodeID) {
	t.Helper()
	if err := d.CheckNormalized(root); err != nil {
		t.Errorf("tree %s not normalized: %v", d.Format(root), err)
	}
}

func TestInsertIntoText(t *testing.T) {
	tests := []struct {
		index      int
		want       string
		start, end string
	}{
		{2, "<p>ab<e/>cd</p>", `"ab"@2`, `"cd"@0`},
		{0, "<p><e/>abcd</p>", "<p>@0", `"abcd"@0`},
		{4, "<p>abcd<e/></p>", `"abcd"@4`, "<p>@2"},
		{9, "<p>abcd<e/></p>", `"abcd"@4`, "<p>@2"},
	}
	for _, tt := range tests {
		t.Run(strconv.Itoa(tt.index), func(t *testing.T) {
			e, root := parse(t, "<p>abcd</p>")
			d := e.Document()
			el := d.NewElement("e")

			b, err := e.InsertIntoText(at(t, e, root, "0/0"), tt.index, el)
			if err != nil {
				t.Fatalf("InsertIntoText: %v", err)
			}
			if got := d.Format(root); got != tt.want {
				t.Errorf("tree = %s, want %s", got, tt.want)
			}
			if got := show(d, b.Start); got != tt.start {
				t.Errorf("start = %s, want %s", got, tt.start)
			}
			if got := show(d, b.End); got != tt.end {
				t.Errorf("end = %s, want %s", got, tt.end)
			}
			checkNormalized(t, d, root)
		})
	}
}

func TestInsertIntoTextErrors(t *testing.T) {
	e, root := parse(t, "<p>abcd</p>")
	d := e.Document()

	if _, err := e.InsertIntoText(at(t, e, root, "0"), 0, d.NewElement("e")); !errors.Is(err, tree.ErrNotText) {
		t.Errorf("element target error = %v, want ErrNotText", err)
	}
	if _, err := e.InsertIntoText(at(t, e, root, "0/0"), 1, tree.Nil); !errors.Is(err, ErrNoNode) {
		t.Errorf("nil node error = %v, want ErrNoNode", err)
	}
	if _, err := e.InsertIntoText(d.NewText("loose"), 1, d.NewElement("e")); !errors.Is(err, tree.ErrDetached) {
		t.Errorf("detached error = %v, want ErrDetached", err)
	}
	if got := d.Format(root); got != "<p>abcd</p>" {
		t.Errorf("failed calls changed the tree: %s", got)
	}
}

func TestInsertRejectsUnusableNodes(t *testing.T) {
	e, root := parse(t, "<p>abcd<i/></p>")
	d := e.Document()
	p := at(t, e, root, "0")
	text := at(t, e, root, "0/0")
	loose := d.NewElement("x")

	tests := []struct {
		name  string
		nodes []tree.NodeID
		want  error
	}{
		{"attached", []tree.NodeID{at(t, e, root, "0/1")}, tree.ErrAttached},
		{"document node", []tree.NodeID{d.NewRoot()}, tree.ErrCycle},
		{"ancestor", []tree.NodeID{p}, tree.ErrAttached},
		{"duplicate", []tree.NodeID{loose, loose}, tree.ErrAttached},
		{"invalid handle", []tree.NodeID{tree.NodeID(9999)}, tree.ErrNotInTree},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := e.InsertNodes(caret.New(text, 2), tt.nodes); !errors.Is(err, tt.want) {
				t.Errorf("into text: error = %v, want %v", err, tt.want)
			}
			if _, err := e.InsertNodes(caret.New(p, 1), tt.nodes); !errors.Is(err, tt.want) {
				t.Errorf("into element: error = %v, want %v", err, tt.want)
			}
			if got := d.Format(root); got != "<p>abcd<i/></p>" {
				t.Errorf("failed insert changed the tree: %s", got)
			}
		})
	}

	// A detached ancestor of the target is a cycle.
	outer := d.NewElement("outer")
	inner := d.NewText("xy")
	if err := d.InsertChildAt(outer, 0, inner); err != nil {
		t.Fatal(err)
	}
	if _, err := e.InsertIntoText(inner, 1, outer); !errors.Is(err, tree.ErrCycle) {
		t.Errorf("ancestor of target: error = %v, want ErrCycle", err)
	}
	if got := d.Format(outer); got != "<outer>xy</outer>" {
		t.Errorf("failed insert changed the tree: %s", got)
	}
}

func TestDeleteText(t *testing.T) {
	tests := []struct {
		name          string
		src           string
		index, length int
		want          string
	}{
		{"only child emptied", "<p>x</p>", 0, 1, "<p/>"},
		{"emptied between elements", "<p><b/>x<i/></p>", 0, 1, "<p><b/><i/></p>"},
		{"middle", "<p>abcd</p>", 1, 2, "<p>ad</p>"},
		{"clamped length", "<p>abcd</p>", 2, 10, "<p>ab</p>"},
		{"zero length", "<p>abcd</p>", 2, 0, "<p>abcd</p>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, root := parse(t, tt.src)
			d := e.Document()
			p := at(t, e, root, "0")
			var text tree.NodeID
			for _, c := range d.Children(p) {
				if d.IsText(c) {
					text = c
				}
			}
			if err := e.DeleteText(text, tt.index, tt.length); err != nil {
				t.Fatalf("DeleteText: %v", err)
			}
			if got := d.Format(root); got != tt.want {
				t.Errorf("tree = %s, want %s", got, tt.want)
			}
			checkNormalized(t, d, root)
		})
	}
}

func TestDeleteTextErrors(t *testing.T) {
	e, root := parse(t, "<p>abcd</p>")
	d := e.Document()

	if err := e.DeleteText(at(t, e, root, "0"), 0, 1); !errors.Is(err, tree.ErrNotText) {
		t.Errorf("element error = %v, want ErrNotText", err)
	}
	if err := e.DeleteText(d.NewText("x"), 0, 1); !errors.Is(err, tree.ErrDetached) {
		t.Errorf("detached error = %v, want ErrDetached", err)
	}
	if err := e.DeleteText(at(t, e, root, "0/0"), 5, 1); !errors.Is(err, tree.ErrOffsetOutOfRange) {
		t.Errorf("range error = %v, want ErrOffsetOutOfRange", err)
	}
}

func TestInsertText(t *testing.T) {
	tests := []struct {
		name       string
		src        string
		path       string
		index      int
		text       string
		caretAtEnd bool
		want       string
		isNew      bool
		caret      string
	}{
		{"empty element", "<p/>", "0", 0, "hi", true, "<p>hi</p>", true, `"hi"@2`},
		{"prepend to next text", "<p>ab<b/>cd</p>", "0", 2, "X", false, "<p>ab<b/>Xcd</p>", false, `"Xcd"@0`},
		{"append to previous text", "<p>ab<b/>cd</p>", "0", 1, "Y", true, "<p>abY<b/>cd</p>", false, `"abY"@3`},
		{"between elements", "<p><b/><i/></p>", "0", 1, "Z", false, "<p><b/>Z<i/></p>", true, `"Z"@0`},
		{"splice into text", "<p>ab</p>", "0/0", 1, "éé", true, "<p>aééb</p>", false, `"aééb"@3`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, root := parse(t, tt.src)
			d := e.Document()
			res, err := e.InsertText(at(t, e, root, tt.path), tt.index, tt.text, tt.caretAtEnd)
			if err != nil {
				t.Fatalf("InsertText: %v", err)
			}
			if got := d.Format(root); got != tt.want {
				t.Errorf("tree = %s, want %s", got, tt.want)
			}
			if res.IsNew != tt.isNew {
				t.Errorf("IsNew = %v, want %v", res.IsNew, tt.isNew)
			}
			if res.Node != res.Caret.Node {
				t.Errorf("Node %d differs from caret node %d", res.Node, res.Caret.Node)
			}
			if got := show(d, res.Caret); got != tt.caret {
				t.Errorf("caret = %s, want %s", got, tt.caret)
			}
			checkNormalized(t, d, root)
		})
	}
}

func TestInsertTextEmpty(t *testing.T) {
	e, root := parse(t, "<p>ab</p>")
	p := at(t, e, root, "0")
	res, err := e.InsertText(p, 1, "", true)
	if err != nil {
		t.Fatal(err)
	}
	if res.Node != tree.Nil || res.IsNew || res.Caret != caret.New(p, 1) {
		t.Errorf("empty insert = %+v", res)
	}
	if _, err := e.InsertText(p, 3, "x", true); !errors.Is(err, tree.ErrOffsetOutOfRange) {
		t.Errorf("error = %v, want ErrOffsetOutOfRange", err)
	}
}

func TestMergeTextNodes(t *testing.T) {
	d := tree.NewDocument()
	e := New(d, nil)
	root := d.NewRoot()
	p := d.NewElement("p")
	foo, bar, b := d.NewText("foo"), d.NewText("bar"), d.NewElement("b")
	if err := d.InsertChildAt(root, 0, p); err != nil {
		t.Fatal(err)
	}
	if err := d.InsertFragmentAt(p, 0, []tree.NodeID{foo, bar, b}); err != nil {
		t.Fatal(err)
	}

	c, err := e.MergeTextNodes(foo)
	if err != nil {
		t.Fatal(err)
	}
	if got := d.Format(root); got != "<p>foobar<b/></p>" {
		t.Errorf("tree = %s", got)
	}
	if c != caret.New(foo, 3) {
		t.Errorf("caret = %v, want (foo, 3)", c)
	}
	if d.Parent(bar) != tree.Nil {
		t.Error("merged sibling should be detached")
	}

	c, err = e.MergeTextNodes(foo)
	if err != nil {
		t.Fatal(err)
	}
	if c != caret.New(p, 1) {
		t.Errorf("no-op merge caret = %v, want (p, 1)", c)
	}
	if _, err := e.MergeTextNodes(d.NewElement("x")); !errors.Is(err, tree.ErrDetached) {
		t.Errorf("detached error = %v, want ErrDetached", err)
	}
}

func TestSplitMergeRoundTrip(t *testing.T) {
	for k := 0; k <= 4; k++ {
		e, root := parse(t, "<p><b/>abcd<i/></p>")
		d := e.Document()
		text := at(t, e, root, "0/1")

		s, err := e.SplitTextNode(text, k)
		if err != nil {
			t.Fatalf("split at %d: %v", k, err)
		}
		if k > 0 && k < 4 {
			if got := d.Texts(at(t, e, root, "0")); len(got) != 2 || got[0] != "abcd"[:k] || got[1] != "abcd"[k:] {
				t.Errorf("split at %d texts = %q", k, got)
			}
		}
		if _, err := e.MergeTextNodes(s.Before); err != nil {
			t.Fatalf("merge after split at %d: %v", k, err)
		}
		if got := d.Format(root); got != "<p><b/>abcd<i/></p>" {
			t.Errorf("round trip at %d = %s", k, got)
		}
		checkNormalized(t, d, root)
	}
}

func TestCutAndPaste(t *testing.T) {
	const src = "<p>ab<b>cd</b>ef</p>"
	tests := []struct {
		name       string
		start, end caret.Caret
		startPath  string
		endPath    string
		want       string
		removed    string
		caret      string
	}{
		{"inside one text", caret.New(0, 1), caret.New(0, 2), "0/0", "0/0", "<p>a<b>cd</b>ef</p>", "b", `"a"@1`},
		{"text to text", caret.New(0, 1), caret.New(0, 1), "0/0", "0/2", "<p>af</p>", "b<b>cd</b>e", `"af"@1`},
		{"reversed ends", caret.New(0, 1), caret.New(0, 1), "0/2", "0/0", "<p>af</p>", "b<b>cd</b>e", `"af"@1`},
		{"element gaps", caret.New(0, 1), caret.New(0, 2), "0", "0", "<p>abef</p>", "<b>cd</b>", `"abef"@2`},
		{"start of text", caret.New(0, 0), caret.New(0, 2), "0/0", "0/2", "<p/>", "ab<b>cd</b>ef", "<p>@0"},
		{"collapsed", caret.New(0, 1), caret.New(0, 1), "0/0", "0/0", src, "", `"ab"@1`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, root := parse(t, src)
			d := e.Document()
			start, end := tt.start, tt.end
			start.Node = at(t, e, root, tt.startPath)
			end.Node = at(t, e, root, tt.endPath)

			res, err := e.Cut(start, end)
			if err != nil {
				t.Fatalf("Cut: %v", err)
			}
			if got := d.Format(root); got != tt.want {
				t.Errorf("after cut = %s, want %s", got, tt.want)
			}
			if got := formatAll(d, res.Removed); got != tt.removed {
				t.Errorf("removed = %s, want %s", got, tt.removed)
			}
			if got := show(d, res.Caret); got != tt.caret {
				t.Errorf("caret = %s, want %s", got, tt.caret)
			}
			checkNormalized(t, d, root)

			if _, err := e.InsertNodes(res.Caret, res.Removed); err != nil {
				t.Fatalf("InsertNodes: %v", err)
			}
			if got := d.Format(root); got != src {
				t.Errorf("after paste = %s, want %s", got, src)
			}
			checkNormalized(t, d, root)
		})
	}
}

func TestCutMalformed(t *testing.T) {
	e, root := parse(t, "<p>ab<b>cd</b></p>")
	start := caret.New(at(t, e, root, "0/0"), 1)
	end := caret.New(at(t, e, root, "0/1/0"), 1)
	if _, err := e.Cut(start, end); !errors.Is(err, tree.ErrMalformedRange) {
		t.Errorf("error = %v, want ErrMalformedRange", err)
	}
	if got := e.Document().Format(root); got != "<p>ab<b>cd</b></p>" {
		t.Errorf("failed cut changed the tree: %s", got)
	}
}

func TestInsertNodesBoundaries(t *testing.T) {
	e, root := parse(t, "<p>ab<i/>cd</p>")
	d := e.Document()
	p := at(t, e, root, "0")

	x, y := d.NewText("X"), d.NewText("Y")
	b, err := e.InsertNodes(caret.New(p, 1), []tree.NodeID{x, d.NewElement("b"), y})
	if err != nil {
		t.Fatal(err)
	}
	if got := d.Format(root); got != "<p>abX<b/>Y<i/>cd</p>" {
		t.Errorf("tree = %s", got)
	}
	if got := show(d, b.Start); got != `"abX"@2` {
		t.Errorf("start = %s", got)
	}
	if got := show(d, b.End); got != "<p>@3" {
		t.Errorf("end = %s", got)
	}

	b, err = e.InsertNodes(caret.New(p, 5), []tree.NodeID{d.NewText("Z")})
	if err != nil {
		t.Fatal(err)
	}
	if got := d.Format(root); got != "<p>abX<b/>Y<i/>cdZ</p>" {
		t.Errorf("tree = %s", got)
	}
	if got := show(d, b.Start); got != `"cdZ"@2` {
		t.Errorf("start = %s", got)
	}
	if got := show(d, b.End); got != `"cdZ"@3` {
		t.Errorf("end = %s", got)
	}
	checkNormalized(t, d, root)
}

// recordingSink counts the calls that reach it and forwards to the document.
type recordingSink struct {
	*tree.Document
	calls []string
}

func (s *recordingSink) InsertChildAt(parent tree.NodeID, index int, child tree.NodeID) error {
	s.calls = append(s.calls, "insert")
	return s.Document.InsertChildAt(parent, index, child)
}

func (s *recordingSink) RemoveChild(child tree.NodeID) error {
	s.calls = append(s.calls, "remove")
	return s.Document.RemoveChild(child)
}

func (s *recordingSink) SetText(node tree.NodeID, value string) error {
	s.calls = append(s.calls, "set")
	return s.Document.SetText(node, value)
}

type plainSink struct {
	s *recordingSink
}

func (p plainSink) InsertChildAt(parent tree.NodeID, index int, child tree.NodeID) error {
	return p.s.InsertChildAt(parent, index, child)
}

func (p plainSink) RemoveChild(child tree.NodeID) error { return p.s.RemoveChild(child) }

func (p plainSink) SetText(node tree.NodeID, value string) error { return p.s.SetText(node, value) }

func TestSinkWithoutFragments(t *testing.T) {
	d := tree.NewDocument()
	root, err := xmlio.ParseString(d, "<p>abcd</p>")
	if err != nil {
		t.Fatal(err)
	}
	rec := &recordingSink{Document: d}
	e := New(d, plainSink{s: rec})
	text, _ := d.NodeAt(root, "0/0")

	if _, err := e.InsertIntoText(text, 2, d.NewElement("e")); err != nil {
		t.Fatal(err)
	}
	want := []string{"remove", "insert", "insert", "insert"}
	if strings.Join(rec.calls, ",") != strings.Join(want, ",") {
		t.Errorf("calls = %v, want %v", rec.calls, want)
	}
	if got := d.Format(root); got != "<p>ab<e/>cd</p>" {
		t.Errorf("tree = %s", got)
	}
}

func TestRandomEditsStayNormalized(t *testing.T) {
	e, root := parse(t, "<doc><p>ab<b>cd</b>ef</p><q/><r>gh</r></doc>")
	d := e.Document()
	rng := rand.New(rand.NewPCG(7, 11))
	words := []string{"x", " ", "yz"}

	for step := 0; step < 300; step++ {
		nodes := descendants(d, root)
		n := nodes[rng.IntN(len(nodes))]
		var err error
		switch op := rng.IntN(4); {
		case op == 0:
			_, err = e.InsertText(n, rng.IntN(d.Len(n)+1), words[rng.IntN(len(words))], rng.IntN(2) == 0)
		case op == 1 && d.IsText(n):
			i := rng.IntN(d.Len(n) + 1)
			err = e.DeleteText(n, i, rng.IntN(3))
		case op == 2 && d.IsText(n):
			_, err = e.InsertIntoText(n, rng.IntN(d.Len(n)+1), d.NewElement("e"))
		case op == 3 && d.IsContainer(n):
			stops := stopsIn(d, n)
			_, err = e.Cut(stops[rng.IntN(len(stops))], stops[rng.IntN(len(stops))])
		}
		if err != nil {
			t.Fatalf("step %d: %v", step, err)
		}
		if err := d.CheckNormalized(root); err != nil {
			t.Fatalf("step %d: %s: %v", step, d.Format(root), err)
		}
	}
}

func descendants(d *tree.Document, root tree.NodeID) []tree.NodeID {
	out := []tree.NodeID{root}
	for i := 0; i < len(out); i++ {
		out = append(out, d.Children(out[i])...)
	}
	return out
}

// stopsIn lists every caret whose container is n.
func stopsIn(d *tree.Document, n tree.NodeID) []caret.Caret {
	var out []caret.Caret
	for i := 0; i <= d.ChildCount(n); i++ {
		out = append(out, caret.New(n, i))
	}
	for _, c := range d.Children(n) {
		if d.IsText(c) {
			for i := 0; i <= d.Len(c); i++ {
				out = append(out, caret.New(c, i))
			}
		}
	}
	return out
}

func TestDeleteNode(t *testing.T) {
	tests := []struct {
		src   string
		path  string
		want  string
		caret string
	}{
		{"<p>ab<b>cd</b>ef</p>", "0/1", "<p>abef</p>", `"abef"@2`},
		{"<p><i/>ab</p>", "0/0", "<p>ab</p>", "<p>@0"},
		{"<p>ab<i/></p>", "0/0", "<p><i/></p>", "<p>@0"},
		{"<p>ab</p><q/>", "0", "<q/>", "<>@0"},
	}
	for _, tt := range tests {
		t.Run(tt.src+"/"+tt.path, func(t *testing.T) {
			e, root := parse(t, tt.src)
			d := e.Document()
			c, err := e.DeleteNode(at(t, e, root, tt.path))
			if err != nil {
				t.Fatalf("DeleteNode: %v", err)
			}
			if got := d.Format(root); got != tt.want {
				t.Errorf("tree = %s, want %s", got, tt.want)
			}
			if got := show(d, c); got != tt.caret {
				t.Errorf("caret = %s, want %s", got, tt.caret)
			}
			checkNormalized(t, d, root)
		})
	}

	e, root := parse(t, "<p>ab</p>")
	if _, err := e.DeleteNode(root); !errors.Is(err, tree.ErrDetached) {
		t.Errorf("deleting the root: error = %v, want ErrDetached", err)
	}
}

func TestRemoveNodes(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		paths []string
		want  string
	}{
		{"two elements", "<p>a<x/>b<y/>c</p>", []string{"0/1", "0/3"}, "<p>abc</p>"},
		{"any order", "<p>a<x/>b<y/>c</p>", []string{"0/3", "0/1"}, "<p>abc</p>"},
		{"text between", "<p>a<x/>b<y/>c</p>", []string{"0/1", "0/2", "0/3"}, "<p>ac</p>"},
		{"text only", "<p>a<x/>b<y/>c</p>", []string{"0/2"}, "<p>a<x/><y/>c</p>"},
		{"nested", "<p>a<x>b<y/></x>c</p>", []string{"0/1/1", "0/1"}, "<p>ac</p>"},
		{"different parents", "<p>a<x/>b</p><q>c<y/>d</q>", []string{"1/1", "0/1"}, "<p>ab</p><q>cd</q>"},
		{"duplicates", "<p>a<x/>b</p>", []string{"0/1", "0/1"}, "<p>ab</p>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, root := parse(t, tt.src)
			d := e.Document()
			var nodes []tree.NodeID
			for _, p := range tt.paths {
				nodes = append(nodes, at(t, e, root, p))
			}
			if err := e.RemoveNodes(nodes); err != nil {
				t.Fatalf("RemoveNodes: %v", err)
			}
			if got := d.Format(root); got != tt.want {
				t.Errorf("tree = %s, want %s", got, tt.want)
			}
			checkNormalized(t, d, root)
		})
	}

	e, root := parse(t, "<p>a<x/>b</p>")
	d := e.Document()
	x := at(t, e, root, "0/1")
	if err := e.RemoveNodes([]tree.NodeID{x, d.NewElement("loose")}); !errors.Is(err, tree.ErrDetached) {
		t.Errorf("error = %v, want ErrDetached", err)
	}
	if got := d.Format(root); got != "<p>a<x/>b</p>" {
		t.Errorf("failed removal changed the tree: %s", got)
	}
}

func TestSplitAt(t *testing.T) {
	const src = "<p>ab<b>cd</b>ef</p>"
	tests := []struct {
		name  string
		top   string
		node  string
		off   int
		want  string
		first string
	}{
		{"nested text", "0", "0/1/0", 1, "<p>ab<b>c</b></p><p><b>d</b>ef</p>", "<p>ab<b>c</b></p>"},
		{"inner top", "0/1", "0/1/0", 1, "<p>ab<b>c</b><b>d</b>ef</p>", "<b>c</b>"},
		{"start of text", "0", "0/0", 0, "<p/><p>ab<b>cd</b>ef</p>", "<p/>"},
		{"end of text", "0", "0/0", 2, "<p>ab</p><p><b>cd</b>ef</p>", "<p>ab</p>"},
		{"element gap", "0", "0", 3, "<p>ab<b>cd</b>ef</p><p/>", "<p>ab<b>cd</b>ef</p>"},
		{"element gap in child", "0", "0/1", 0, "<p>ab<b/></p><p><b>cd</b>ef</p>", "<p>ab<b/></p>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, root := parse(t, src)
			d := e.Document()
			c := caret.New(at(t, e, root, tt.node), tt.off)
			res, err := e.SplitAt(at(t, e, root, tt.top), c)
			if err != nil {
				t.Fatalf("SplitAt: %v", err)
			}
			if got := d.Format(root); got != tt.want {
				t.Errorf("tree = %s, want %s", got, tt.want)
			}
			if got := d.Format(res.Before); got != tt.first {
				t.Errorf("first half = %s, want %s", got, tt.first)
			}
			if d.NextSibling(res.Before) != res.After {
				t.Error("halves should be adjacent")
			}
			checkNormalized(t, d, root)
		})
	}
}

func TestSplitAtErrors(t *testing.T) {
	e, root := parse(t, "<p>ab<b>cd</b>ef</p>")
	d := e.Document()
	ab := at(t, e, root, "0/0")
	b := at(t, e, root, "0/1")

	if _, err := e.SplitAt(b, caret.New(ab, 1)); !errors.Is(err, tree.ErrNotInTree) {
		t.Errorf("caret outside top: error = %v, want ErrNotInTree", err)
	}
	if _, err := e.SplitAt(ab, caret.New(ab, 1)); !errors.Is(err, tree.ErrNotContainer) {
		t.Errorf("text top: error = %v, want ErrNotContainer", err)
	}
	if _, err := e.SplitAt(root, caret.New(ab, 1)); !errors.Is(err, tree.ErrNotContainer) {
		t.Errorf("document top: error = %v, want ErrNotContainer", err)
	}
	if _, err := e.SplitAt(b, caret.New(ab, 9)); !errors.Is(err, tree.ErrOffsetOutOfRange) {
		t.Errorf("bad caret: error = %v, want ErrOffsetOutOfRange", err)
	}
	if got := d.Format(root); got != "<p>ab<b>cd</b>ef</p>" {
		t.Errorf("failed splits changed the tree: %s", got)
	}
}

func TestInsertBefore(t *testing.T) {
	e, root := parse(t, "<p>ab<i/>cd</p>")
	d := e.Document()
	p := at(t, e, root, "0")
	i := at(t, e, root, "0/1")

	if _, err := e.InsertBefore(p, i, d.NewText("X")); err != nil {
		t.Fatal(err)
	}
	if _, err := e.InsertBefore(p, tree.Nil, d.NewElement("z")); err != nil {
		t.Fatal(err)
	}
	if got := d.Format(root); got != "<p>abX<i/>cd<z/></p>" {
		t.Errorf("tree = %s", got)
	}
	checkNormalized(t, d, root)

	if _, err := e.InsertBefore(p, root, d.NewElement("z")); !errors.Is(err, tree.ErrNotInTree) {
		t.Errorf("foreign ref: error = %v, want ErrNotInTree", err)
	}
}
