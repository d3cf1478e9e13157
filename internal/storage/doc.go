// Package storage persists scan output: findings in SQLite and raw
// page markup in a content-addressed archive directory.
//
// The SQLite layer uses modernc.org/sqlite, a pure-Go driver, so the
// binary cross-compiles without cgo. Findings are keyed by (url,
// observed_at); saving the same observation twice is an upsert, never
// a duplicate.
package storage
