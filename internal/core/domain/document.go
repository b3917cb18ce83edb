package domain

// Document sources.
const (
	// SourceWasteItems marks documents built from seed store rows.
	SourceWasteItems = "waste_items"

	// SourceDefinition marks the fixed category definitions.
	SourceDefinition = "definition"
)

// DocumentMetadata travels with an indexed document.
type DocumentMetadata struct {
	// Source is SourceWasteItems or SourceDefinition.
	Source string `json:"source"`

	// Category is the waste category the document talks about.
	Category Category `json:"category"`
}

// IndexedDocument is a retrievable unit in the vector index.
// It has no identity beyond its content; ID is derived from it.
type IndexedDocument struct {
	ID       string           `json:"id"`
	Content  string           `json:"content"`
	Metadata DocumentMetadata `json:"metadata"`
}

// IndexMode controls how the index is brought up to date at startup.
type IndexMode string

// Available index modes.
const (
	// IndexModeRebuild discards and rebuilds the index on every start.
	IndexModeRebuild IndexMode = "rebuild"

	// IndexModeIncremental rebuilds only when the document set changed.
	IndexModeIncremental IndexMode = "incremental"
)

// IsValid returns true if the mode is recognised.
func (m IndexMode) IsValid() bool {
	return m == IndexModeRebuild || m == IndexModeIncremental
}

// IndexStats describes the outcome of bringing the index up to date.
type IndexStats struct {
	// Documents is the number of documents now in the index.
	Documents int `json:"documents"`

	// Fingerprint identifies the document set.
	Fingerprint string `json:"fingerprint"`

	// Rebuilt is false when an incremental check found nothing to do.
	Rebuilt bool `json:"rebuilt"`
}
