// Package outline rebuilds a forest from a flat, level-tagged record stream.
//
// Build makes a single forward pass while keeping a stack of the currently
// open node at each depth. Input that jumps more than one level deeper than
// the open lineage is never dropped: the record is attached under the deepest
// open node, flagged OutOfOrder, and reported as a warning. Blank or
// negative-level records are skipped with a MalformedInput warning.
package outline
