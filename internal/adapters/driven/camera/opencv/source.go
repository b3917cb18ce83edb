//go:build opencv

// Package opencv reads frames through OpenCV's VideoCapture, which accepts
// device indices, files and network streams.
package opencv

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"gocv.io/x/gocv"

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

// Source wraps a gocv.VideoCapture.
type Source struct {
	cfg Config

	mu  sync.Mutex
	vc  *gocv.VideoCapture
	mat gocv.Mat
	seq uint64
}

// NewSource creates an unopened source.
func NewSource(cfg Config) *Source {
	return &Source{cfg: cfg}
}

// Open starts the capture.
func (s *Source) Open(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	vc, err := gocv.OpenVideoCapture(s.cfg.URL)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrStreamUnavailable, s.cfg.URL, err)
	}
	if !vc.IsOpened() {
		_ = vc.Close()
		return fmt.Errorf("%w: %s", domain.ErrStreamUnavailable, s.cfg.URL)
	}
	if s.cfg.Width > 0 {
		vc.Set(gocv.VideoCaptureFrameWidth, float64(s.cfg.Width))
	}
	if s.cfg.Height > 0 {
		vc.Set(gocv.VideoCaptureFrameHeight, float64(s.cfg.Height))
	}

	s.vc = vc
	s.mat = gocv.NewMat()
	return nil
}

// Read grabs and decodes the next frame.
func (s *Source) Read(ctx context.Context) (domain.Frame, error) {
	if err := ctx.Err(); err != nil {
		return domain.Frame{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.vc == nil {
		return domain.Frame{}, fmt.Errorf("%w: source not open", domain.ErrStreamUnavailable)
	}
	if ok := s.vc.Read(&s.mat); !ok || s.mat.Empty() {
		return domain.Frame{}, errors.New("reading frame: capture returned no image")
	}

	img, err := s.mat.ToImage()
	if err != nil {
		return domain.Frame{}, fmt.Errorf("converting frame: %w", err)
	}
	s.seq++
	return domain.Frame{Image: img, Seq: s.seq, CapturedAt: time.Now()}, nil
}

// Close releases the capture.
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.vc == nil {
		return nil
	}
	_ = s.mat.Close()
	err := s.vc.Close()
	s.vc = nil
	return err
}

// Available reports whether this build includes OpenCV.
func Available() bool { return true }
