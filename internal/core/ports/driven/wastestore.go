package driven

import (
	"context"

	"github.com/pilah-labs/pilah/internal/core/domain"
)

// WasteStore persists the seed table of waste items.
// The schema is created by the adapter when it is opened.
type WasteStore interface {
	// Count returns the number of rows.
	Count(ctx context.Context) (int, error)

	// InsertMany inserts all items in a single transaction.
	// IDs are assigned by the store.
	InsertMany(ctx context.Context, items []domain.WasteItem) error

	// List returns all rows ordered by id.
	List(ctx context.Context) ([]domain.WasteItem, error)

	// Get returns one row by id.
	// Returns domain.ErrNotFound if absent.
	Get(ctx context.Context, id int64) (*domain.WasteItem, error)

	// Close releases the connection.
	Close() error
}
