// Package tree holds the node model shared by every pipeline stage.
//
// A Forest owns an ordered list of root Nodes; each Node exclusively owns its
// children. Parent links are written only through AddChild and AddRoot so the
// parent/children pair can never disagree, and because a child is always
// created after the node it is attached to, cycles cannot be constructed.
//
// Validate checks the whole-tree invariants (consistent back-references,
// levels, unique normalized sibling names) that must hold before an export.
package tree
