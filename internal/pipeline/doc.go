// Package pipeline sequences the in-memory stages: build the primary forest,
// merge the secondary hierarchy, resolve collisions, validate, and assign
// identifiers. Each run owns its forest; nothing is shared between runs.
package pipeline
