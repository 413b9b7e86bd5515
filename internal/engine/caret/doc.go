// Package caret defines editing positions in a tree and the queries that
// operate on them.
//
// A Caret is a (node, offset) pair. In a text node the offset is a rune
// index in [0, len]. In an element or document node it is a child index in
// [0, childCount] and denotes the gap before that child.
//
// The package provides:
//
//   - Compare: document-order comparison of two carets.
//   - Next / Prev: caret movement constrained to a container, skipping
//     whitespace a collapsing element would not render.
//   - Range: a start/end pair with the anchor/focus orientation, and the
//     well-formedness test used by the cut engine.
//
// Carets are values. Nothing in this package holds on to one across a
// mutation; callers recompute them.
package caret
