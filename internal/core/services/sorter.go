package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/pilah-labs/pilah/internal/core/domain"
	"github.com/pilah-labs/pilah/internal/core/ports/driven"
	"github.com/pilah-labs/pilah/internal/core/ports/driving"
	"github.com/pilah-labs/pilah/internal/logger"
)

// Ensure SorterService implements the interface.
var _ driving.SorterLoop = (*SorterService)(nil)

// SorterConfig holds the fixed per-frame processing constants.
type SorterConfig struct {
	Alpha      float64
	Beta       float64
	Confidence float32
	Selection  domain.SelectionPolicy
	ClassNames []string
}

// SorterConfigFromSettings extracts the loop constants from settings.
func SorterConfigFromSettings(s *domain.Settings) SorterConfig {
	return SorterConfig{
		Alpha:      s.Preprocess.Alpha,
		Beta:       s.Preprocess.Beta,
		Confidence: s.Detector.Confidence,
		Selection:  s.Detector.Selection,
		ClassNames: s.Detector.Classes,
	}
}

// SorterService is the detection-to-actuator loop.
// It processes one frame at a time and writes exactly one code per successful read.
type SorterService struct {
	source   driven.FrameSource
	detector driven.Detector
	actuator driven.Actuator
	display  driven.Display
	cfg      SorterConfig
	console  io.Writer

	mu    sync.Mutex
	stats driving.SorterStats
}

// NewSorterService creates a sorter loop. The source must already be open.
// console receives the "Deteksi kelas" line for every non-zero code; nil discards it.
func NewSorterService(
	source driven.FrameSource,
	detector driven.Detector,
	actuator driven.Actuator,
	display driven.Display,
	cfg SorterConfig,
	console io.Writer,
) *SorterService {
	if cfg.Selection == "" {
		cfg.Selection = domain.SelectLast
	}
	if console == nil {
		console = io.Discard
	}
	return &SorterService{
		source:   source,
		detector: detector,
		actuator: actuator,
		display:  display,
		cfg:      cfg,
		console:  console,
		stats:    driving.SorterStats{CodesSent: make(map[domain.OutputCode]uint64)},
	}
}

// Run processes frames until quit, cancellation or an actuator failure.
func (s *SorterService) Run(ctx context.Context) error {
	logger.Section("Detection Loop")
	logger.Debug("alpha=%.2f beta=%.1f conf=%.2f selection=%s",
		s.cfg.Alpha, s.cfg.Beta, s.cfg.Confidence, s.cfg.Selection)

	for {
		if ctx.Err() != nil {
			return nil
		}

		frame, err := s.source.Read(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			s.count(func(st *driving.SorterStats) { st.FramesSkipped++ })
			logger.Debug("Frame read failed, skipping: %v", err)
			continue
		}

		_, quit, err := s.Step(ctx, frame)
		if err != nil {
			return err
		}
		if quit {
			logger.Info("Quit requested")
			return nil
		}
	}
}

// Step runs one frame through preprocess, detect, annotate, send and show.
func (s *SorterService) Step(ctx context.Context, frame domain.Frame) (domain.OutputCode, bool, error) {
	if frame.Image == nil {
		return domain.CodeNone, false, fmt.Errorf("%w: frame has no image", domain.ErrInvalidInput)
	}
	s.count(func(st *driving.SorterStats) { st.FramesRead++ })

	img := Preprocess(frame.Image, s.cfg.Alpha, s.cfg.Beta)

	dets, err := s.detector.Detect(ctx, img, s.cfg.Confidence)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			// The frame was read, so it still gets its byte.
			if err := s.actuator.Send(domain.CodeNone); err != nil {
				return domain.CodeNone, true, fmt.Errorf("sending code %s: %w", domain.CodeNone, err)
			}
			s.count(func(st *driving.SorterStats) { st.CodesSent[domain.CodeNone]++ })
			return domain.CodeNone, true, nil
		}
		s.count(func(st *driving.SorterStats) { st.DetectorFails++ })
		logger.Warn("Detection failed on frame %d: %v", frame.Seq, err)
		dets = nil
	}

	names := s.cfg.ClassNames
	if len(names) == 0 {
		names = s.detector.ClassNames()
	}
	Annotate(img, dets, names)

	code := domain.SelectCode(dets, s.cfg.Selection)
	if err := s.actuator.Send(code); err != nil {
		return code, false, fmt.Errorf("sending code %s: %w", code, err)
	}
	s.count(func(st *driving.SorterStats) { st.CodesSent[code]++ })

	if code != domain.CodeNone {
		fmt.Fprintf(s.console, "Deteksi kelas: %s\n", code)
		logger.Info("Frame %d: %d detections, sent %s", frame.Seq, len(dets), code)
	} else {
		logger.Debug("Frame %d: no mapped detections, sent 0", frame.Seq)
	}

	quit, err := s.display.Show(ctx, img, dets, code)
	if err != nil {
		logger.Warn("Display failed: %v", err)
	}
	return code, quit, nil
}

// Stats returns a copy of the loop counters.
func (s *SorterService) Stats() driving.SorterStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.stats
	out.CodesSent = make(map[domain.OutputCode]uint64, len(s.stats.CodesSent))
	for k, v := range s.stats.CodesSent {
		out.CodesSent[k] = v
	}
	return out
}

func (s *SorterService) count(fn func(*driving.SorterStats)) {
	s.mu.Lock()
	fn(&s.stats)
	s.mu.Unlock()
}
