package driving

import (
	"context"

	"github.com/pilah-labs/pilah/internal/core/domain"
)

// ChatService answers questions about waste from the indexed documents.
type ChatService interface {
	// Ask answers a question. Failures are reported in the answer's status,
	// never as an error.
	Ask(ctx context.Context, question string) domain.Answer

	// Retrieve returns the documents most similar to the question.
	// Returns domain.ErrNoRelevantInformation when nothing qualifies.
	Retrieve(ctx context.Context, question string) ([]domain.IndexedDocument, error)
}
