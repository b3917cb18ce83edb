package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/pilah-labs/pilah/internal/adapters/driven/storage/vecmath"
	"github.com/pilah-labs/pilah/internal/core/domain"
	"github.com/pilah-labs/pilah/internal/core/ports/driven"
)

// Ensure VectorIndex implements the interface.
var _ driven.VectorIndex = (*VectorIndex)(nil)

// VectorIndex is an in-memory brute-force cosine index.
type VectorIndex struct {
	mu          sync.RWMutex
	docs        []domain.IndexedDocument
	vectors     [][]float32
	fingerprint string
}

// NewVectorIndex creates an empty index.
func NewVectorIndex() *VectorIndex {
	return &VectorIndex{}
}

// Reset discards all documents and the fingerprint.
func (v *VectorIndex) Reset(_ context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.docs = nil
	v.vectors = nil
	v.fingerprint = ""
	return nil
}

// Add inserts documents with their embeddings.
func (v *VectorIndex) Add(_ context.Context, docs []domain.IndexedDocument, embeddings [][]float32) error {
	if len(docs) != len(embeddings) {
		return fmt.Errorf("%w: %d documents but %d embeddings", domain.ErrInvalidInput, len(docs), len(embeddings))
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.docs = append(v.docs, docs...)
	for _, e := range embeddings {
		v.vectors = append(v.vectors, append([]float32(nil), e...))
	}
	return nil
}

// Search returns the k most similar documents.
func (v *VectorIndex) Search(_ context.Context, query []float32, k int) ([]driven.VectorHit, error) {
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
func (v *VectorIndex) Documents(_ context.Context) ([]domain.IndexedDocument, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]domain.IndexedDocument, len(v.docs))
	copy(out, v.docs)
	return out, nil
}

// Count returns the number of documents.
func (v *VectorIndex) Count(_ context.Context) (int, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.docs), nil
}

// Fingerprint returns the stored fingerprint.
func (v *VectorIndex) Fingerprint(_ context.Context) (string, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.fingerprint, nil
}

// SetFingerprint records the fingerprint.
func (v *VectorIndex) SetFingerprint(_ context.Context, fingerprint string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.fingerprint = fingerprint
	return nil
}

// Close is a no-op.
func (v *VectorIndex) Close() error {
	return nil
}
