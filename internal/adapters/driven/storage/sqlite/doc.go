// Package sqlite provides the persistent vector index and conversation
// store on a single SQLite database.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO. Vectors are stored as little-endian float32 blobs and
// searched by exact cosine similarity over the whole collection, which
// suits the few thousand chunks a personal document set produces.
//
// # Schema
//
// The schema is managed through versioned migrations in the migrations/
// directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.jarvis/data/jarvis.db
package sqlite
