package memory

import (
	"context"
	"sync"

	"github.com/pilah-labs/pilah/internal/core/domain"
	"github.com/pilah-labs/pilah/internal/core/ports/driven"
)

// Ensure WasteStore implements the interface.
var _ driven.WasteStore = (*WasteStore)(nil)

// WasteStore is an in-memory implementation of driven.WasteStore.
type WasteStore struct {
	mu     sync.RWMutex
	items  []domain.WasteItem
	nextID int64
}

// NewWasteStore creates an empty store.
func NewWasteStore() *WasteStore {
	return &WasteStore{nextID: 1}
}

// Count returns the number of rows.
func (s *WasteStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items), nil
}

// InsertMany appends items, assigning sequential IDs.
// Nothing is stored if any item is invalid.
func (s *WasteStore) InsertMany(_ context.Context, items []domain.WasteItem) error {
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range items {
		item.ID = s.nextID
		s.nextID++
		s.items = append(s.items, item)
	}
	return nil
}

// List returns all rows ordered by id.
func (s *WasteStore) List(_ context.Context) ([]domain.WasteItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.WasteItem, len(s.items))
	copy(out, s.items)
	return out, nil
}

// Get returns one row by id.
func (s *WasteStore) Get(_ context.Context, id int64) (*domain.WasteItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, item := range s.items {
		if item.ID == id {
			found := item
			return &found, nil
		}
	}
	return nil, domain.ErrNotFound
}

// Close is a no-op.
func (s *WasteStore) Close() error {
	return nil
}
