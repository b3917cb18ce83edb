//go:build opencv

// Package window shows annotated frames in a native OpenCV window.
package window

import (
	"context"
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/pilah-labs/pilah/internal/core/domain"
	"github.com/pilah-labs/pilah/internal/core/ports/driven"
)

// Ensure Display implements the interface.
var _ driven.Display = (*Display)(nil)

// Display wraps a gocv.Window. It must be used from the main goroutine.
type Display struct {
	win *gocv.Window
}

// New opens a window with the given title.
func New(title string) (*Display, error) {
	return &Display{win: gocv.NewWindow(title)}, nil
}

// Show draws img and polls the keyboard for one millisecond.
func (d *Display) Show(ctx context.Context, img image.Image, _ []domain.Detection, _ domain.OutputCode) (bool, error) {
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return false, fmt.Errorf("convert frame: %w", err)
	}
	defer mat.Close()

	d.win.IMShow(mat)
	key := d.win.WaitKey(1)
	return key == 'q' || key == 'Q' || ctx.Err() != nil, nil
}

// Close destroys the window.
func (d *Display) Close() error {
	return d.win.Close()
}

// Available reports whether this build includes OpenCV.
func Available() bool { return true }
