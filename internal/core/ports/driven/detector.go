package driven

import (
	"context"
	"image"

	"github.com/pilah-labs/pilah/internal/core/domain"
)

// Detector runs a pretrained object detection model on a frame.
// Detections are returned in the order the model produced them.
type Detector interface {
	// Detect returns detections with confidence at or above minConfidence.
	Detect(ctx context.Context, img image.Image, minConfidence float32) ([]domain.Detection, error)

	// ClassNames returns the model's class labels indexed by class id.
	// May be nil when the detector does not report them.
	ClassNames() []string

	// Ping checks the detector is reachable and has a model loaded.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
