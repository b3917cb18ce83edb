// Package watch re-ensures the vector index when the seed database changes on disk.
package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/pilah-labs/pilah/internal/core/domain"
	"github.com/pilah-labs/pilah/internal/core/ports/driving"
	"github.com/pilah-labs/pilah/internal/logger"
)

// DefaultDebounce is the quiet period after the last change before the index is ensured.
const DefaultDebounce = 500 * time.Millisecond

// ErrMissingIndexService is returned when no index service is provided.
var ErrMissingIndexService = errors.New("watch: index service is required")

// Watcher watches a sqlite database file and its journal files.
type Watcher struct {
	path     string
	index    driving.IndexService
	debounce time.Duration
	fs       *fsnotify.Watcher
}

// New watches the directory holding path. A debounce of zero uses DefaultDebounce.
func New(path string, index driving.IndexService, debounce time.Duration) (*Watcher, error) {
	if index == nil {
		return nil, ErrMissingIndexService
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	// sqlite replaces and journals the file, so the directory is watched.
	if err := fs.Add(filepath.Dir(path)); err != nil {
		fs.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(path), err)
	}

	return &Watcher{
		path:     filepath.Clean(path),
		index:    index,
		debounce: debounce,
		fs:       fs,
	}, nil
}

// Run processes file events until ctx is cancelled.
// Bursts of events collapse into one incremental Ensure.
func (w *Watcher) Run(ctx context.Context) error {
	logger.Info("watch: watching %s", w.path)

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if w.relevant(event) {
				logger.Debug("watch: %s %s", event.Op, event.Name)
				timer.Reset(w.debounce)
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch: %v", err)

		case <-timer.C:
			w.ensure(ctx)
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fs.Close()
}

func (w *Watcher) ensure(ctx context.Context) {
	stats, err := w.index.Ensure(ctx, domain.IndexModeIncremental)
	if err != nil {
		logger.Error("watch: ensuring index: %v", err)
		return
	}
	if stats.Rebuilt {
		logger.Info("watch: index rebuilt with %d documents", stats.Documents)
	} else {
		logger.Debug("watch: index unchanged")
	}
}

// relevant reports whether event touches the database or its journal files.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.Clean(event.Name)
	if name == w.path {
		return true
	}
	suffix, ok := strings.CutPrefix(name, w.path)
	if !ok {
		return false
	}
	return suffix == "-wal" || suffix == "-journal"
}
