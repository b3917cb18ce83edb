package domain

// Category is the waste classification stored with every seed row.
type Category string

// Known waste categories.
const (
	// CategoryOrganic is biodegradable waste (food scraps, leaves).
	CategoryOrganic Category = "Organik"

	// CategoryNonOrganic is non-biodegradable waste (plastic, glass, metal).
	CategoryNonOrganic Category = "Non-Organik"

	// CategoryB3 is hazardous and toxic waste (Bahan Berbahaya dan Beracun).
	CategoryB3 Category = "B3"
)

// Categories returns all known categories in display order.
func Categories() []Category {
	return []Category{CategoryOrganic, CategoryNonOrganic, CategoryB3}
}

// IsValid returns true if the category is recognised.
func (c Category) IsValid() bool {
	switch c {
	case CategoryOrganic, CategoryNonOrganic, CategoryB3:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (c Category) String() string {
	return string(c)
}

// WasteItem is one row of the seed store.
// Rows are inserted once on first run and are read-only thereafter.
type WasteItem struct {
	// ID is assigned by the store.
	ID int64 `json:"id"`

	// Name is the common name of the item, e.g. "Kulit pisang".
	Name string `json:"name"`

	// Category is the waste classification.
	Category Category `json:"category"`

	// Description explains how the item should be handled.
	Description string `json:"description"`
}

// Validate checks the fields required before insertion.
func (w WasteItem) Validate() error {
	if w.Name == "" {
		return ErrInvalidInput
	}
	if !w.Category.IsValid() {
		return ErrInvalidInput
	}
	return nil
}
