// Package store persists exported nodes in SQLite.
//
// A Store is opened explicitly for each command and closed when the command
// finishes; writers hold an exclusive advisory lock beside the database for
// the lifetime of the Store. Apply upserts records in batches keyed by
// identifier, retrying busy errors with exponential backoff and pausing
// between batches. Deleting a node orphans its children rather than
// cascading. Each import also records an audit row in the runs table.
//
// Schema changes bump schemaVersion in schema.go; an existing database with
// another version is rejected rather than migrated.
package store
