package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pilah-labs/pilah/internal/adapters/driven/storage/vecmath"
	"github.com/pilah-labs/pilah/internal/core/domain"
	"github.com/pilah-labs/pilah/internal/core/ports/driven"
)

// IndexFile is the vector database name inside the index directory.
const IndexFile = "index.db"

const fingerprintKey = "fingerprint"

const vectorSchema = `
CREATE TABLE IF NOT EXISTS documents (
    seq      INTEGER PRIMARY KEY AUTOINCREMENT,
    id       TEXT NOT NULL UNIQUE,
    content  TEXT NOT NULL,
    source   TEXT NOT NULL,
    category TEXT NOT NULL DEFAULT '',
    vector   BLOB NOT NULL
);

CREATE TABLE IF NOT EXISTS meta (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`

// Ensure VectorIndex implements the interface.
var _ driven.VectorIndex = (*VectorIndex)(nil)

// VectorIndex persists documents and float32 vectors in a SQLite file
// and answers queries by brute-force cosine similarity.
// Vectors are cached in memory after the first search.
type VectorIndex struct {
	mu  sync.RWMutex
	dir string
	db  *sql.DB

	loaded  bool
	docs    []domain.IndexedDocument
	vectors [][]float32
}

// NewVectorIndex opens (or creates) the index in dir.
// If dir is empty, defaults to ~/.pilah/index.
func NewVectorIndex(dir string) (*VectorIndex, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dir = filepath.Join(home, ".pilah", "index")
	}

	v := &VectorIndex{dir: dir}
	if err := v.open(); err != nil {
		return nil, err
	}
	return v, nil
}

// open creates the directory and schema (caller must hold lock or own v).
func (v *VectorIndex) open() error {
	if err := os.MkdirAll(v.dir, 0700); err != nil {
		return fmt.Errorf("creating index directory: %w", err)
	}
	db, err := openDB(filepath.Join(v.dir, IndexFile))
	if err != nil {
		return err
	}
	if _, err := db.Exec(vectorSchema); err != nil {
		db.Close()
		return fmt.Errorf("creating index schema: %w", err)
	}
	v.db = db
	v.loaded = false
	v.docs = nil
	v.vectors = nil
	return nil
}

// Dir returns the index directory.
func (v *VectorIndex) Dir() string {
	return v.dir
}

// indexFiles are the files Reset removes: the database and its sqlite sidecars.
var indexFiles = []string{IndexFile, IndexFile + "-wal", IndexFile + "-shm", IndexFile + "-journal"}

// Reset deletes the index database and recreates it empty. Other files in
// the directory are left alone.
func (v *VectorIndex) Reset(_ context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.db != nil {
		if err := v.db.Close(); err != nil {
			return fmt.Errorf("closing index: %w", err)
		}
		v.db = nil
	}
	for _, name := range indexFiles {
		if err := os.Remove(filepath.Join(v.dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("removing %s: %w", name, err)
		}
	}
	return v.open()
}

// Add inserts documents with their embeddings in one transaction.
func (v *VectorIndex) Add(ctx context.Context, docs []domain.IndexedDocument, embeddings [][]float32) error {
	if len(docs) != len(embeddings) {
		return fmt.Errorf("%w: %d documents but %d embeddings", domain.ErrInvalidInput, len(docs), len(embeddings))
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.db == nil {
		return domain.ErrVectorIndexUnavailable
	}

	tx, err := v.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO documents (id, content, source, category, vector)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			content = excluded.content,
			source = excluded.source,
			category = excluded.category,
			vector = excluded.vector
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, d := range docs {
		_, err := stmt.ExecContext(ctx, d.ID, d.Content, d.Metadata.Source,
			string(d.Metadata.Category), vecmath.Encode(embeddings[i]))
		if err != nil {
			return fmt.Errorf("inserting document %s: %w", d.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing documents: %w", err)
	}
	v.loaded = false
	return nil
}

// Search returns the k most similar documents, best first.
func (v *VectorIndex) Search(ctx context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if err := v.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	v.mu.RLock()
	defer v.mu.RUnlock()

	scored := vecmath.TopK(query, v.vectors, k)
	hits := make([]driven.VectorHit, len(scored))
	for i, s := range scored {
		hits[i] = driven.VectorHit{Document: v.docs[s.Index], Similarity: s.Similarity}
	}
	return hits, nil
}

// Documents returns every document in insertion order.
func (v *VectorIndex) Documents(ctx context.Context) ([]domain.IndexedDocument, error) {
	if err := v.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]domain.IndexedDocument, len(v.docs))
	copy(out, v.docs)
	return out, nil
}

// Count returns the number of documents.
func (v *VectorIndex) Count(ctx context.Context) (int, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.db == nil {
		return 0, domain.ErrVectorIndexUnavailable
	}

	var n int
	if err := v.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting documents: %w", err)
	}
	return n, nil
}

// Fingerprint returns the stored fingerprint, or "" if none.
func (v *VectorIndex) Fingerprint(ctx context.Context) (string, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.db == nil {
		return "", domain.ErrVectorIndexUnavailable
	}

	var fp string
	err := v.db.QueryRowContext(ctx, "SELECT value FROM meta WHERE key = ?", fingerprintKey).Scan(&fp)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading fingerprint: %w", err)
	}
	return fp, nil
}

// SetFingerprint records the document-set fingerprint.
func (v *VectorIndex) SetFingerprint(ctx context.Context, fingerprint string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.db == nil {
		return domain.ErrVectorIndexUnavailable
	}

	_, err := v.db.ExecContext(ctx, `
		INSERT INTO meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, fingerprintKey, fingerprint)
	if err != nil {
		return fmt.Errorf("writing fingerprint: %w", err)
	}
	return nil
}

// Close closes the database.
func (v *VectorIndex) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.db == nil {
		return nil
	}
	err := v.db.Close()
	v.db = nil
	return err
}

// ensureLoaded reads all rows into memory once per change.
func (v *VectorIndex) ensureLoaded(ctx context.Context) error {
	v.mu.RLock()
	loaded := v.loaded
	v.mu.RUnlock()
	if loaded {
		return nil
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.loaded {
		return nil
	}
	if v.db == nil {
		return domain.ErrVectorIndexUnavailable
	}

	rows, err := v.db.QueryContext(ctx,
		"SELECT id, content, source, category, vector FROM documents ORDER BY seq")
	if err != nil {
		return fmt.Errorf("loading documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.IndexedDocument
	var vectors [][]float32
	for rows.Next() {
		var d domain.IndexedDocument
		var category string
		var blob []byte
		if err := rows.Scan(&d.ID, &d.Content, &d.Metadata.Source, &category, &blob); err != nil {
			return fmt.Errorf("scanning document: %w", err)
		}
		vec, err := vecmath.Decode(blob)
		if err != nil {
			return fmt.Errorf("document %s: %w", d.ID, err)
		}
		d.Metadata.Category = domain.Category(category)
		docs = append(docs, d)
		vectors = append(vectors, vec)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("loading documents: %w", err)
	}

	v.docs = docs
	v.vectors = vectors
	v.loaded = true
	return nil
}
