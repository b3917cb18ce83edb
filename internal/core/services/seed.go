package services

import (
	"context"
	"fmt"

	"github.com/pilah-labs/pilah/internal/core/domain"
	"github.com/pilah-labs/pilah/internal/core/ports/driven"
	"github.com/pilah-labs/pilah/internal/core/ports/driving"
	"github.com/pilah-labs/pilah/internal/logger"
)

// Ensure SeedService implements the interface.
var _ driving.SeedService = (*SeedService)(nil)

// SeedService populates the seed store with the reference waste items.
type SeedService struct {
	store driven.WasteStore
	items []domain.WasteItem
}

// NewSeedService creates a seed service over store using the reference list.
func NewSeedService(store driven.WasteStore) *SeedService {
	return &SeedService{store: store, items: ReferenceWasteItems()}
}

// Initialise inserts the reference list only when the store is empty.
func (s *SeedService) Initialise(ctx context.Context) (int, error) {
	logger.Section("Seed Store")

	n, err := s.store.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("counting waste items: %w", err)
	}
	if n > 0 {
		logger.Debug("Seed store already has %d rows, nothing to insert", n)
		return 0, nil
	}

	for _, item := range s.items {
		if err := item.Validate(); err != nil {
			return 0, fmt.Errorf("reference item %q: %w", item.Name, err)
		}
	}

	if err := s.store.InsertMany(ctx, s.items); err != nil {
		return 0, fmt.Errorf("inserting reference items: %w", err)
	}
	logger.Info("Inserted %d reference waste items", len(s.items))
	return len(s.items), nil
}

// Items returns every seed row ordered by id.
func (s *SeedService) Items(ctx context.Context) ([]domain.WasteItem, error) {
	items, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing waste items: %w", err)
	}
	return items, nil
}
