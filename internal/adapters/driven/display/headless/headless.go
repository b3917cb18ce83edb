// Package headless is a display that shows nothing and only listens for quit.
package headless

import (
	"context"
	"image"
	"io"

	"github.com/pilah-labs/pilah/internal/adapters/driven/display/keys"
	"github.com/pilah-labs/pilah/internal/core/domain"
	"github.com/pilah-labs/pilah/internal/core/ports/driven"
)

// Ensure Display implements the interface.
var _ driven.Display = (*Display)(nil)

// Display discards frames.
type Display struct {
	watcher *keys.Watcher
}

// New creates a headless display reading quit keys from r, which may be nil.
func New(r io.Reader) *Display {
	w := keys.NewWatcher()
	w.Watch(r)
	return &Display{watcher: w}
}

// Show reports whether quit was requested.
func (d *Display) Show(ctx context.Context, _ image.Image, _ []domain.Detection, _ domain.OutputCode) (bool, error) {
	return d.watcher.Quit() || ctx.Err() != nil, nil
}

// Close is a no-op.
func (d *Display) Close() error {
	return nil
}
