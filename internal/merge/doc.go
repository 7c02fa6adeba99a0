// Package merge folds the curated secondary hierarchy into the primary
// forest.
//
// Matching is scoped: a secondary entry is compared only against the
// children of the node its parent matched (or the roots for top-level
// entries), so identically named topics under different parents never
// collapse together. Unmatched entries are inserted with their whole
// subtree and marked as secondary origin. Merging the same input twice
// inserts nothing the second time.
package merge
