package driven

import (
	"context"

	"github.com/pilah-labs/pilah/internal/core/domain"
)

// FrameSource provides frames from a live video stream.
// A source is opened once and held for the process lifetime.
type FrameSource interface {
	// Open connects to the stream. It must succeed before Read is called.
	Open(ctx context.Context) error

	// Read blocks until the next frame is available.
	// A failed read does not close the source; callers may retry.
	Read(ctx context.Context) (domain.Frame, error)

	// Close releases the stream.
	Close() error
}
