// Package stores persists reconciliation run history in a local SQLite
// database.
//
// Each completed run is stored as one row in the runs table plus one row
// per planned action in the actions table, preserving plan order. The
// store implements engine.RunRecorder so the reconciler can record runs
// without depending on the storage layer, and the history command reads
// the same tables back for display.
//
// The schema is managed with embedded golang-migrate migrations and the
// database runs in WAL mode with foreign keys enabled.
package stores
