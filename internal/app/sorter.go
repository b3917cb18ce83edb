package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/pilah-labs/pilah/internal/adapters/driven/actuator/dryrun"
	"github.com/pilah-labs/pilah/internal/adapters/driven/actuator/serial"
	"github.com/pilah-labs/pilah/internal/adapters/driven/camera/mjpeg"
	"github.com/pilah-labs/pilah/internal/adapters/driven/camera/opencv"
	"github.com/pilah-labs/pilah/internal/adapters/driven/detector/yolo"
	"github.com/pilah-labs/pilah/internal/adapters/driven/display/headless"
	"github.com/pilah-labs/pilah/internal/adapters/driven/display/preview"
	"github.com/pilah-labs/pilah/internal/adapters/driven/display/window"
	"github.com/pilah-labs/pilah/internal/core/domain"
	"github.com/pilah-labs/pilah/internal/core/ports/driven"
	"github.com/pilah-labs/pilah/internal/core/ports/driving"
	"github.com/pilah-labs/pilah/internal/core/services"
	"github.com/pilah-labs/pilah/internal/logger"
)

// Backend names for the detection pipeline.
const (
	CameraMJPEG  = "mjpeg"
	CameraOpenCV = "opencv"

	ActuatorSerial = "serial"
	ActuatorLog    = "log"

	DisplayPreview = "preview"
	DisplayWindow  = "window"
	DisplayNone    = "none"
)

// Sorter opens the camera, detector, actuator and display and returns the
// detection loop with a cleanup func that closes them in reverse order.
// keys is read for the quit key and may be nil. console receives the
// per-frame class lines.
func (a *App) Sorter(ctx context.Context, keys io.Reader, console io.Writer) (driving.SorterLoop, func() error, error) {
	settings, err := a.Settings()
	if err != nil {
		return nil, nil, err
	}

	var closers []func() error
	cleanup := func() error {
		var errs []error
		for i := len(closers) - 1; i >= 0; i-- {
			errs = append(errs, closers[i]())
		}
		return errors.Join(errs...)
	}
	fail := func(err error) (driving.SorterLoop, func() error, error) {
		_ = cleanup()
		return nil, nil, err
	}

	logger.Section("Detection Startup")

	source, err := newFrameSource(settings)
	if err != nil {
		return fail(err)
	}
	if err := source.Open(ctx); err != nil {
		return fail(fmt.Errorf("opening camera stream: %w", err))
	}
	closers = append(closers, source.Close)
	logger.Info("Camera stream open: %s", settings.Camera.StreamURL)

	detector := yolo.New(yolo.Config{
		Endpoint: settings.Detector.Endpoint,
		Model:    settings.Detector.Model,
		Timeout:  settings.Detector.Timeout,
	})
	closers = append(closers, detector.Close)
	if err := detector.Ping(ctx); err != nil {
		return fail(fmt.Errorf("checking detector: %w", err))
	}
	logger.Info("Detector ready at %s", settings.Detector.Endpoint)

	actuator, err := newActuator(settings, console)
	if err != nil {
		return fail(err)
	}
	closers = append(closers, actuator.Close)

	display, err := newDisplay(settings, keys)
	if err != nil {
		return fail(err)
	}
	closers = append(closers, display.Close)

	loop := services.NewSorterService(
		source,
		detector,
		actuator,
		display,
		services.SorterConfigFromSettings(settings),
		console,
	)
	return loop, cleanup, nil
}

func newFrameSource(settings *domain.Settings) (driven.FrameSource, error) {
	switch settings.Camera.Backend {
	case CameraMJPEG, "":
		return mjpeg.NewSource(mjpeg.Config{URL: settings.Camera.StreamURL}), nil
	case CameraOpenCV:
		if !opencv.Available() {
			return nil, fmt.Errorf("%w: camera backend opencv needs a build with -tags opencv",
				domain.ErrNotImplemented)
		}
		return opencv.NewSource(opencv.Config{
			URL:    settings.Camera.StreamURL,
			Width:  settings.Camera.Width,
			Height: settings.Camera.Height,
		}), nil
	default:
		return nil, fmt.Errorf("%w: unknown camera backend %q", domain.ErrInvalidInput, settings.Camera.Backend)
	}
}

func newActuator(settings *domain.Settings, console io.Writer) (driven.Actuator, error) {
	switch settings.Serial.Backend {
	case ActuatorSerial, "":
		act, err := serial.Open(serial.Config{Port: settings.Serial.Port, Baud: settings.Serial.Baud})
		if err != nil {
			return nil, err
		}
		return act, nil
	case ActuatorLog:
		if console == nil {
			console = io.Discard
		}
		return dryrun.New(console), nil
	default:
		return nil, fmt.Errorf("%w: unknown serial backend %q", domain.ErrInvalidInput, settings.Serial.Backend)
	}
}

func newDisplay(settings *domain.Settings, keys io.Reader) (driven.Display, error) {
	switch settings.Display.Backend {
	case DisplayPreview, "":
		d := preview.New(preview.Config{
			Addr:  settings.Display.Addr,
			Title: settings.Display.Title,
			Keys:  keys,
		})
		if err := d.Start(); err != nil {
			return nil, fmt.Errorf("starting preview: %w", err)
		}
		logger.Info("Preview on http://%s", d.Addr())
		return d, nil
	case DisplayWindow:
		d, err := window.New(settings.Display.Title)
		if err != nil {
			return nil, err
		}
		return d, nil
	case DisplayNone:
		return headless.New(keys), nil
	default:
		return nil, fmt.Errorf("%w: unknown display backend %q", domain.ErrInvalidInput, settings.Display.Backend)
	}
}
