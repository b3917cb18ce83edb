package driving

import (
	"context"

	"github.com/pilah-labs/pilah/internal/core/domain"
)

// SeedService manages the seed store of waste items.
type SeedService interface {
	// Initialise inserts the reference list when the store is empty.
	// It returns the number of rows inserted, which is zero on every later run.
	Initialise(ctx context.Context) (int, error)

	// Items returns every seed row ordered by id.
	Items(ctx context.Context) ([]domain.WasteItem, error)
}
