//go:build !opencv

// Package opencv reads frames through OpenCV's VideoCapture.
// This build does not include OpenCV; rebuild with -tags opencv.
package opencv

import (
	"context"
	"fmt"

	"github.com/pilah-labs/pilah/internal/core/domain"
	"github.com/pilah-labs/pilah/internal/core/ports/driven"
)

// Ensure Source implements the interface.
var _ driven.FrameSource = (*Source)(nil)

// Config holds configuration for the OpenCV source.
type Config struct {
	URL    string
	Width  int
	Height int
}

// Source is a stub for builds without OpenCV.
type Source struct {
	cfg Config
}

// NewSource creates a stub source.
func NewSource(cfg Config) *Source {
	return &Source{cfg: cfg}
}

// Open always fails in this build.
func (s *Source) Open(context.Context) error {
	return fmt.Errorf("%w: opencv capture (build with -tags opencv)", domain.ErrNotImplemented)
}

// Read always fails in this build.
func (s *Source) Read(context.Context) (domain.Frame, error) {
	return domain.Frame{}, domain.ErrNotImplemented
}

// Close is a no-op.
func (s *Source) Close() error {
	return nil
}

// Available reports whether this build includes OpenCV.
func Available() bool { return false }
