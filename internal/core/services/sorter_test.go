package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pilah-labs/pilah/internal/core/domain"
)

func uniformFrame(seq uint64, v uint8) domain.Frame {
	img := image.NewRGBA(image.Rect(0, 0, 64, 48))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = v, v, v, 255
	}
	return domain.Frame{Image: img, Seq: seq}
}

func det(class int, conf float32) domain.Detection {
	return domain.Detection{
		ClassIndex: class,
		Confidence: conf,
		Box:        domain.BoundingBox{X1: 5, Y1: 15, X2: 30, Y2: 40},
	}
}

func defaultSorterConfig() SorterConfig {
	s := domain.DefaultSettings()
	return SorterConfigFromSettings(&s)
}

type sorterFixture struct {
	source   *fakeFrameSource
	detector *fakeDetector
	actuator *fakeActuator
	display  *fakeDisplay
	console  *bytes.Buffer
	sorter   *SorterService
}

func newSorterFixture(cfg SorterConfig) *sorterFixture {
	f := &sorterFixture{
		source:   &fakeFrameSource{},
		detector: &fakeDetector{},
		actuator: &fakeActuator{},
		display:  &fakeDisplay{},
		console:  &bytes.Buffer{},
	}
	f.sorter = NewSorterService(f.source, f.detector, f.actuator, f.display, cfg, f.console)
	return f
}

func TestSorter_Step_NoDetectionsSendsZero(t *testing.T) {
	f := newSorterFixture(defaultSorterConfig())

	code, quit, err := f.sorter.Step(context.Background(), uniformFrame(1, 100))
	require.NoError(t, err)
	assert.False(t, quit)
	assert.Equal(t, domain.CodeNone, code)
	assert.Equal(t, []domain.OutputCode{'0'}, f.actuator.sent)
	assert.Empty(t, f.console.String())
	assert.Equal(t, 1, f.display.shown)
}

func TestSorter_Step_LastDetectionWins(t *testing.T) {
	f := newSorterFixture(defaultSorterConfig())
	f.detector.dets = []domain.Detection{det(0, 0.95), det(1, 0.6), det(2, 0.35)}

	code, _, err := f.sorter.Step(context.Background(), uniformFrame(1, 100))
	require.NoError(t, err)
	assert.Equal(t, domain.CodeB3, code)
	assert.Equal(t, []domain.OutputCode{'3'}, f.actuator.sent)
	assert.Equal(t, "Deteksi kelas: 3\n", f.console.String())
}

func TestSorter_Step_ConfidenceSelection(t *testing.T) {
	cfg := defaultSorterConfig()
	cfg.Selection = domain.SelectConfidence
	f := newSorterFixture(cfg)
	f.detector.dets = []domain.Detection{det(0, 0.95), det(1, 0.6), det(2, 0.35)}

	code, _, err := f.sorter.Step(context.Background(), uniformFrame(1, 100))
	require.NoError(t, err)
	assert.Equal(t, domain.CodeOrganic, code)
}

func TestSorter_Step_UnmappedClassKeepsPreviousCode(t *testing.T) {
	f := newSorterFixture(defaultSorterConfig())
	f.detector.dets = []domain.Detection{det(1, 0.8), det(7, 0.9)}

	code, _, err := f.sorter.Step(context.Background(), uniformFrame(1, 100))
	require.NoError(t, err)
	assert.Equal(t, domain.CodeNonOrganic, code)
}

func TestSorter_Step_PreprocessesBeforeDetection(t *testing.T) {
	f := newSorterFixture(defaultSorterConfig())

	_, _, err := f.sorter.Step(context.Background(), uniformFrame(1, 100))
	require.NoError(t, err)

	require.NotNil(t, f.detector.lastImg)
	r, g, b, _ := f.detector.lastImg.At(0, 0).RGBA()
	// 1.2*100 + 30 = 150
	assert.Equal(t, uint32(150), r>>8)
	assert.Equal(t, uint32(150), g>>8)
	assert.Equal(t, uint32(150), b>>8)
	assert.InDelta(t, 0.3, f.detector.lastMin, 1e-6)
}

func TestSorter_Step_AnnotatesDetections(t *testing.T) {
	f := newSorterFixture(defaultSorterConfig())
	f.detector.dets = []domain.Detection{det(0, 0.9)}

	_, _, err := f.sorter.Step(context.Background(), uniformFrame(1, 0))
	require.NoError(t, err)

	img, ok := f.detector.lastImg.(*image.RGBA)
	require.True(t, ok)
	assert.Equal(t, color.RGBA{G: 255, A: 255}, img.RGBAAt(5, 20))
}

func TestSorter_Step_DetectorErrorSendsZero(t *testing.T) {
	f := newSorterFixture(defaultSorterConfig())
	f.detector.err = errors.New("sidecar down")

	code, quit, err := f.sorter.Step(context.Background(), uniformFrame(1, 100))
	require.NoError(t, err)
	assert.False(t, quit)
	assert.Equal(t, domain.CodeNone, code)
	assert.Equal(t, []domain.OutputCode{'0'}, f.actuator.sent)
	assert.Equal(t, uint64(1), f.sorter.Stats().DetectorFails)
}

func TestSorter_Step_CancelledDetectionSendsZeroAndQuits(t *testing.T) {
	f := newSorterFixture(defaultSorterConfig())
	f.detector.err = fmt.Errorf("posting frame: %w", context.Canceled)

	code, quit, err := f.sorter.Step(context.Background(), uniformFrame(1, 100))
	require.NoError(t, err)
	assert.True(t, quit)
	assert.Equal(t, domain.CodeNone, code)
	assert.Equal(t, []domain.OutputCode{'0'}, f.actuator.sent)
	assert.Equal(t, uint64(1), f.sorter.Stats().CodesSent[domain.CodeNone])
	assert.Zero(t, f.sorter.Stats().DetectorFails)
}

func TestSorter_Step_ActuatorErrorIsFatal(t *testing.T) {
	f := newSorterFixture(defaultSorterConfig())
	f.actuator.err = domain.ErrActuatorUnavailable

	_, _, err := f.sorter.Step(context.Background(), uniformFrame(1, 100))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrActuatorUnavailable)
}

func TestSorter_Step_NilImage(t *testing.T) {
	f := newSorterFixture(defaultSorterConfig())

	_, _, err := f.sorter.Step(context.Background(), domain.Frame{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, f.actuator.sent)
}

func TestSorter_Run_SkipsFailedReadsAndStopsOnQuit(t *testing.T) {
	f := newSorterFixture(defaultSorterConfig())
	f.source.results = []frameResult{
		{frame: uniformFrame(1, 10)},
		{err: errors.New("truncated frame")},
		{frame: uniformFrame(2, 10)},
		{frame: uniformFrame(3, 10)},
	}
	f.display.quitAfter = 2
	f.detector.dets = []domain.Detection{det(2, 0.5)}

	err := f.sorter.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []domain.OutputCode{'3', '3'}, f.actuator.sent)
	stats := f.sorter.Stats()
	assert.Equal(t, uint64(2), stats.FramesRead)
	assert.Equal(t, uint64(1), stats.FramesSkipped)
	assert.Equal(t, uint64(2), stats.CodesSent[domain.CodeB3])
	assert.Len(t, f.source.results, 1)
}

func TestSorter_Run_StopsOnCancel(t *testing.T) {
	f := newSorterFixture(defaultSorterConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, f.sorter.Run(ctx))
	assert.Empty(t, f.actuator.sent)
}

func TestSorter_Run_ReturnsActuatorError(t *testing.T) {
	f := newSorterFixture(defaultSorterConfig())
	f.source.results = []frameResult{{frame: uniformFrame(1, 10)}}
	f.actuator.err = errors.New("port closed")

	err := f.sorter.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "port closed")
}

func TestSorter_Stats_ReturnsCopy(t *testing.T) {
	f := newSorterFixture(defaultSorterConfig())
	_, _, err := f.sorter.Step(context.Background(), uniformFrame(1, 10))
	require.NoError(t, err)

	stats := f.sorter.Stats()
	stats.CodesSent[domain.CodeB3] = 99

	assert.Zero(t, f.sorter.Stats().CodesSent[domain.CodeB3])
	assert.Equal(t, uint64(1), f.sorter.Stats().CodesSent[domain.CodeNone])
}
