// Package config loads, normalizes, and validates filtertree configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the FILTERTREE_STORE_PATH
// environment fallback. Matching thresholds, depth limits, collision and
// identifier formats, and store batching all live here so the CLI can hand
// one sanitized value to every stage.
package config
