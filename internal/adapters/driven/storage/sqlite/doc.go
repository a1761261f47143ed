// Package sqlite provides a SQLite-based implementation of the passage store and
// the supplier directory.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. Both ports share one database connection:
//
//   - PassageStore: embedded passages, searched by brute-force cosine similarity
//   - Directory: owners, roles, owner-role links and availability slots
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.tradematch/data/tradematch.db
//
// # Thread Safety
//
// All operations are thread-safe. Passage replacement runs in one transaction,
// and WAL mode lets readers keep the previous snapshot until it commits.
package sqlite
