// Package sqlite provides SQLite-based implementations of driven port interfaces.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It provides:
//
//   - Store: the waste_items seed table (driven.WasteStore)
//   - VectorIndex: documents, float32 vectors and the document-set fingerprint
//     (driven.VectorIndex)
//
// # Schema
//
// The seed schema is managed through versioned migrations stored in the
// migrations/ directory. The vector index schema is recreated on every Reset
// because the whole index directory is discarded.
//
// # Data Location
//
// By default, the seed database is ~/.pilah/data/pilah.db and the vector
// index is ~/.pilah/index/index.db.
//
// # Thread Safety
//
// Store relies on SQLite locking in WAL mode. VectorIndex guards its
// connection and in-memory vectors with a sync.RWMutex.
package sqlite
