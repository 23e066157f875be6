// Package store persists analysis runs in a local SQLite database.
//
// Each run records the synthesized contract document plus enough metadata
// (contract id, confidence, detection method, timing) to list and compare
// runs without decoding the full document. The database is a single file,
// opened in WAL mode with a single writer connection.
package store
