// Package edit implements the structural editing primitives: inserting nodes
// and text into text runs, deleting text, splitting and merging text nodes,
// and cutting or pasting a range.
//
// Every primitive reads the tree through a *tree.Document and performs its
// changes through a MutationSink, so the same algorithm runs against the
// plain document or against a recorder that captures each change for undo.
//
// After each primitive returns, a tree that started out normalized is still
// normalized: no text node is empty and no two text nodes are adjacent
// siblings. Carets returned by the primitives always point into the tree.
//
// Validation happens before the first mutation wherever possible, so a
// failed call leaves the tree unchanged.
package edit
