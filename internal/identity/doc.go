// Package identity derives stable, path-based identifiers for every node and
// flattens the forest into the export record list.
package identity
