package driving

import (
	"context"

	"github.com/pilah-labs/pilah/internal/core/domain"
)

// SorterLoop runs the detection-to-actuator pipeline.
type SorterLoop interface {
	// Run processes frames until the display reports quit or ctx is cancelled.
	// Only an actuator failure ends the loop with an error.
	Run(ctx context.Context) error

	// Step processes one frame and returns the code that was sent.
	Step(ctx context.Context, frame domain.Frame) (code domain.OutputCode, quit bool, err error)

	// Stats returns counters for the current run.
	Stats() SorterStats
}

// SorterStats counts what the loop has done.
type SorterStats struct {
	FramesRead    uint64
	FramesSkipped uint64
	DetectorFails uint64
	CodesSent     map[domain.OutputCode]uint64
}
