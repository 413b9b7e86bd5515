package caret

import (
	"fmt"

	"github.com/dshills/structedit/internal/engine/tree"
)

// Range is a pair of carets in document order. Reversed records that the
// user-facing anchor was the end rather than the start.
type Range struct {
	Start    Caret
	End      Caret
	Reversed bool
}

// NewRange builds a range from an anchor and a focus in any order.
func NewRange(d *tree.Document, anchor, focus Caret) (Range, error) {
	o, err := Compare(d, anchor, focus)
	if err != nil {
		return Range{}, err
	}
	if o == After {
		return Range{Start: focus, End: anchor, Reversed: true}, nil
	}
	return Range{Start: anchor, End: focus}, nil
}

// Collapsed returns the empty range at c.
func Collapsed(c Caret) Range {
	return Range{Start: c, End: c}
}

// Anchor returns where the selection began.
func (r Range) Anchor() Caret {
	if r.Reversed {
		return r.End
	}
	return r.Start
}

// Focus returns where the selection currently ends.
func (r Range) Focus() Caret {
	if r.Reversed {
		return r.Start
	}
	return r.End
}

// IsCollapsed reports whether start and end are the same caret.
func (r Range) IsCollapsed() bool {
	return r.Start == r.End
}

// String returns a debug representation.
func (r Range) String() string {
	if r.Reversed {
		return fmt.Sprintf("%v<-%v", r.Start, r.End)
	}
	return fmt.Sprintf("%v->%v", r.Start, r.End)
}

// Containers returns the elements holding each end of the range, text
// carets being generalized to their parent.
func (r Range) Containers(d *tree.Document) (start, end tree.NodeID, err error) {
	if start, err = r.Start.Container(d); err != nil {
		return tree.Nil, tree.Nil, err
	}
	if end, err = r.End.Container(d); err != nil {
		return tree.Nil, tree.Nil, err
	}
	return start, end, nil
}

// WellFormed reports whether both ends of r lie in the same element once
// text carets are generalized to their parent.
func (r Range) WellFormed(d *tree.Document) (bool, error) {
	s, e, err := r.Containers(d)
	if err != nil {
		return false, err
	}
	return s == e, nil
}

// IsWellFormed is WellFormed for a start/end pair.
func IsWellFormed(d *tree.Document, start, end Caret) (bool, error) {
	return Range{Start: start, End: end}.WellFormed(d)
}

// Contains reports whether c lies within r, ends included.
func (r Range) Contains(d *tree.Document, c Caret) (bool, error) {
	o, err := Compare(d, r.Start, c)
	if err != nil || o == After {
		return false, err
	}
	o, err = Compare(d, c, r.End)
	if err != nil {
		return false, err
	}
	return o != After, nil
}
