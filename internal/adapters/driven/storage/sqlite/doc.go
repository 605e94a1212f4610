// Package sqlite provides a unified SQLite-based implementation of driven port interfaces.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements multiple store interfaces
// through a single database connection:
//
//   - SourceStore: connected source persistence, cursor lifecycle
//   - FileStateStore: per-item content digest tracking
//   - DraftStore: draft documents awaiting review
//   - SyncOperationStore: the append-only run ledger
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Two invariants live in the schema itself: the
// UNIQUE(org_id, external_id, content_digest) constraint on drafts makes
// re-ingestion idempotent, and the partial unique index on running
// operations allows at most one running sync per source.
//
// # Data Location
//
// By default, the database is stored at ~/.triago/data/triago.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
