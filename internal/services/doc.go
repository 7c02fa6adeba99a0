// Package services defines shared utilities consumed by the pipeline stages
// and the store adapter.
//
// Key responsibilities:
//   - Context helpers that stamp run identifiers and stage names for logging.
//   - Structured error markers plus the Wrap helper that separate recoverable
//     per-record problems (warnings) from whole-tree invariant violations that
//     must abort an export.
//   - The Warning value collected by every stage and surfaced in run reports.
//
// Use these helpers when wiring new stage logic so error handling and
// observability stay uniform across the pipeline.
package services
