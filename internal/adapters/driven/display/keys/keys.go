// Package keys watches an input stream for the quit key.
package keys

import (
	"bytes"
	"errors"
	"io"
	"os"
	"sync"
	"sync/atomic"

	"golang.org/x/term"

	"github.com/pilah-labs/pilah/internal/logger"
)

// Watcher latches once a quit key is read or Trigger is called.
type Watcher struct {
	quit atomic.Bool
	once sync.Once
	done chan struct{}
}

// NewWatcher creates an untriggered watcher.
func NewWatcher() *Watcher {
	return &Watcher{done: make(chan struct{})}
}

// Watch reads r in the background until EOF, an error or a quit key.
// A nil reader is ignored.
func (w *Watcher) Watch(r io.Reader) {
	if r == nil {
		return
	}
	go func() {
		buf := make([]byte, 1)
		for {
			n, err := r.Read(buf)
			if n == 1 && IsQuitKey(buf[0]) {
				w.Trigger()
				return
			}
			if err != nil {
				if !errors.Is(err, io.EOF) {
					logger.Debug("key reader stopped: %v", err)
				}
				return
			}
		}
	}()
}

// Trigger requests quit.
func (w *Watcher) Trigger() {
	w.once.Do(func() {
		w.quit.Store(true)
		close(w.done)
	})
}

// Quit reports whether quit was requested.
func (w *Watcher) Quit() bool {
	return w.quit.Load()
}

// Done is closed once quit is requested.
func (w *Watcher) Done() <-chan struct{} {
	return w.done
}

// IsQuitKey reports whether b is 'q', 'Q' or Ctrl-C.
func IsQuitKey(b byte) bool {
	return b == 'q' || b == 'Q' || b == 0x03
}

// Terminal is stdin switched to raw mode so single key presses are readable.
type Terminal struct {
	fd    int
	state *term.State
}

// OpenTerminal puts stdin in raw mode. It returns nil when stdin is not a terminal.
func OpenTerminal() (*Terminal, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, nil
	}
	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, err
	}
	return &Terminal{fd: fd, state: state}, nil
}

// Reader returns stdin.
func (t *Terminal) Reader() io.Reader {
	return os.Stdin
}

// Restore returns the terminal to its previous mode. Safe on nil.
func (t *Terminal) Restore() error {
	if t == nil || t.state == nil {
		return nil
	}
	err := term.Restore(t.fd, t.state)
	t.state = nil
	return err
}

// CRLFWriter rewrites "\n" as "\r\n" for output to a raw terminal.
type CRLFWriter struct {
	W io.Writer
}

// Write converts line endings. It reports len(p) on success.
func (c CRLFWriter) Write(p []byte) (int, error) {
	if bytes.IndexByte(p, '\n') < 0 {
		return c.W.Write(p)
	}
	out := bytes.ReplaceAll(p, []byte("\n"), []byte("\r\n"))
	if _, err := c.W.Write(out); err != nil {
		return 0, err
	}
	return len(p), nil
}
