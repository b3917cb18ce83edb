package driving

import (
	"context"

	"github.com/pilah-labs/pilah/internal/core/domain"
)

// IndexService builds the vector index from the seed store.
type IndexService interface {
	// Rebuild discards the index and embeds the full document set.
	Rebuild(ctx context.Context) (domain.IndexStats, error)

	// Ensure brings the index up to date according to mode.
	Ensure(ctx context.Context, mode domain.IndexMode) (domain.IndexStats, error)

	// Documents returns the document set the index should contain.
	Documents(ctx context.Context) ([]domain.IndexedDocument, error)
}
