// Package collision renames nodes so that no two nodes on the same level
// share a normalized name.
//
// Levels are processed top-down, so ancestor labels used as prefixes are
// already final. Within a level, nodes are grouped by normalized name in
// pre-order. A group whose members share one parent keeps its first member
// unchanged; a group spanning several parents renames every member so each
// carries its own context. Renames try the parent prefix first, then climb
// the ancestry, then fall back to a positional suffix. Only names change.
package collision
