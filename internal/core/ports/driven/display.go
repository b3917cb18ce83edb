package driven

import (
	"context"
	"image"

	"github.com/pilah-labs/pilah/internal/core/domain"
)

// Display renders annotated frames for a human observer.
type Display interface {
	// Show presents a frame. It returns quit=true once the user asked to stop.
	Show(ctx context.Context, img image.Image, dets []domain.Detection, code domain.OutputCode) (quit bool, err error)

	// Close releases the display.
	Close() error
}
