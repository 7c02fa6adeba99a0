// Package source decodes the two input artifacts into core types.
//
// ReadTokens turns the primary outline (a JSON array, JSON Lines, or the
// nested six-level hierarchy document) into outline records. ReadHierarchy
// turns the curated secondary document (JSON or YAML) into Entry values,
// resolving the loose key schema once at the boundary so the merger only
// sees leaves and branches. Neither function fails on individual bad
// records; those become warnings.
package source
