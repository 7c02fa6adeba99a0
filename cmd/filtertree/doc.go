// Package main hosts the filtertree CLI entrypoint and command graph.
//
// The Cobra-based command tree reads the primary outline and the curated
// hierarchy, runs the reconstruction pipeline, and either writes the export
// JSON (build), pushes it into the SQLite store (import), or repairs stored
// parent links (repair). The check, stats, and find commands inspect exports
// and the store without rebuilding anything.
//
// Keep this package lean: new behavior belongs in the internal packages
// first, then surfaces here as a flag or command.
package main
