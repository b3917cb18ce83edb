//go:build !opencv

// Package window shows annotated frames in a native OpenCV window.
// This build does not include OpenCV; rebuild with -tags opencv.
package window

import (
	"context"
	"fmt"
	"image"

	"github.com/pilah-labs/pilah/internal/core/domain"
	"github.com/pilah-labs/pilah/internal/core/ports/driven"
)

// Ensure Display implements the interface.
var _ driven.Display = (*Display)(nil)

// Display is a stub for builds without OpenCV.
type Display struct{}

// New always fails in this build.
func New(string) (*Display, error) {
	return nil, fmt.Errorf("%w: opencv window (build with -tags opencv)", domain.ErrNotImplemented)
}

// Show always fails in this build.
func (d *Display) Show(context.Context, image.Image, []domain.Detection, domain.OutputCode) (bool, error) {
	return false, domain.ErrNotImplemented
}

// Close is a no-op.
func (d *Display) Close() error {
	return nil
}

// Available reports whether this build includes OpenCV.
func Available() bool { return false }
