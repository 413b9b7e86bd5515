// Package tree provides the node arena that structured documents live in.
//
// A Document owns every node created for an editing session. Nodes are
// addressed by NodeID handles rather than pointers, which lets several trees
// (for example a data tree and the view tree mirroring it) share one arena
// and be cross-linked with plain maps.
//
// # Node kinds
//
//   - KindDocument: a root. It has children but never a parent.
//   - KindElement: a named node with attributes and children.
//   - KindText: a run of character data. Text nodes never have children.
//
// Offsets into text nodes count runes, not bytes.
//
// # Mutations
//
// The mutation methods on Document (InsertChildAt, InsertFragmentAt,
// RemoveChild, SetText) apply changes directly and record nothing. Editing
// code should not call them itself; it goes through an edit.MutationSink so
// that a recording backend can be substituted for undo support. Document
// satisfies that interface, which makes it the "plain tree" backend.
//
// # Invariants
//
// The arena does not enforce the editing invariants (no empty text nodes, no
// adjacent text siblings). Those are the responsibility of the edit package.
// CheckNormalized reports violations and is mostly useful in tests.
package tree
