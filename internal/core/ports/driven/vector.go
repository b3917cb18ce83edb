package driven

import (
	"context"

	"github.com/pilah-labs/pilah/internal/core/domain"
)

// VectorIndex stores documents with their embeddings and answers
// nearest-neighbour queries by cosine similarity.
type VectorIndex interface {
	// Reset discards every persisted document, vector and fingerprint.
	Reset(ctx context.Context) error

	// Add inserts documents with their embeddings. len(docs) must equal len(embeddings).
	Add(ctx context.Context, docs []domain.IndexedDocument, embeddings [][]float32) error

	// Search finds the k nearest documents to the query vector, best first.
	Search(ctx context.Context, query []float32, k int) ([]VectorHit, error)

	// Documents returns every indexed document in insertion order.
	Documents(ctx context.Context) ([]domain.IndexedDocument, error)

	// Count returns the number of indexed documents.
	Count(ctx context.Context) (int, error)

	// Fingerprint returns the stored document-set fingerprint, or "" if none.
	Fingerprint(ctx context.Context) (string, error)

	// SetFingerprint records the document-set fingerprint.
	SetFingerprint(ctx context.Context, fingerprint string) error

	// Close releases resources.
	Close() error
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// Document is the matched document.
	Document domain.IndexedDocument

	// Similarity is the cosine similarity score.
	Similarity float64
}
