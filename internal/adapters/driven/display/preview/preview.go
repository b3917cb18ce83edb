// Package preview shows annotated frames in a browser.
//
// GET /stream serves multipart/x-mixed-replace JPEG. GET /ws pushes one JSON
// message per frame. Pressing q on the page, POST /quit or a quit key on the
// console stops the detection loop.
package preview

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"image"
	"image/jpeg"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	goahttp "goa.design/goa/v3/http"

	"github.com/pilah-labs/pilah/internal/adapters/driven/display/keys"
	"github.com/pilah-labs/pilah/internal/core/domain"
	"github.com/pilah-labs/pilah/internal/core/ports/driven"
	"github.com/pilah-labs/pilah/internal/logger"
)

// Ensure Display implements the interface.
var _ driven.Display = (*Display)(nil)

// Default configuration values.
const (
	DefaultAddr        = ":8090"
	DefaultTitle       = "Deteksi Sampah"
	DefaultJPEGQuality = 80
	clientBuffer       = 2
)

// Config holds configuration for the preview server.
type Config struct {
	Addr        string
	Title       string
	JPEGQuality int

	// Keys is read for the quit key, typically a raw terminal. May be nil.
	Keys io.Reader
}

// Display is a driven.Display backed by an HTTP server.
type Display struct {
	cfg     Config
	watcher *keys.Watcher
	hub     *hub
	page    *template.Template

	mu      sync.RWMutex
	streams map[chan []byte]struct{}
	seq     uint64

	server   *http.Server
	listener net.Listener
}

// New creates a preview display. Call Start to begin serving.
func New(cfg Config) *Display {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.Title == "" {
		cfg.Title = DefaultTitle
	}
	if cfg.JPEGQuality == 0 {
		cfg.JPEGQuality = DefaultJPEGQuality
	}

	w := keys.NewWatcher()
	w.Watch(cfg.Keys)
	return &Display{
		cfg:     cfg,
		watcher: w,
		hub:     newHub(w.Trigger),
		page:    template.Must(template.New("page").Parse(pageHTML)),
		streams: make(map[chan []byte]struct{}),
	}
}

// Handler returns the preview routes.
func (d *Display) Handler() http.Handler {
	mux := goahttp.NewMuxer()
	mux.Handle(http.MethodGet, "/", d.servePage)
	mux.Handle(http.MethodGet, "/stream", d.serveStream)
	mux.Handle(http.MethodGet, "/ws", d.hub.serveWS)
	mux.Handle(http.MethodPost, "/quit", d.serveQuit)
	return mux
}

// Start listens on the configured address and serves in the background.
func (d *Display) Start() error {
	ln, err := net.Listen("tcp", d.cfg.Addr)
	if err != nil {
		return fmt.Errorf("preview listen on %s: %w", d.cfg.Addr, err)
	}
	d.listener = ln
	d.server = &http.Server{Handler: d.Handler(), ReadHeaderTimeout: 10 * time.Second}

	go func() {
		if err := d.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("preview server: %v", err)
		}
	}()
	logger.Info("Preview at http://%s/", ln.Addr())
	return nil
}

// Addr returns the bound address once started.
func (d *Display) Addr() string {
	if d.listener == nil {
		return ""
	}
	return d.listener.Addr().String()
}

// Show encodes the frame for stream clients and broadcasts its detections.
func (d *Display) Show(ctx context.Context, img image.Image, dets []domain.Detection, code domain.OutputCode) (bool, error) {
	d.mu.Lock()
	d.seq++
	seq := d.seq
	n := len(d.streams)
	d.mu.Unlock()

	if n > 0 {
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: d.cfg.JPEGQuality}); err != nil {
			return d.watcher.Quit(), fmt.Errorf("encode preview frame: %w", err)
		}
		d.publish(buf.Bytes())
	}

	b := img.Bounds()
	if dets == nil {
		dets = []domain.Detection{}
	}
	d.hub.broadcast(&DetectionMessage{
		Type:        "detection",
		Seq:         seq,
		Timestamp:   time.Now(),
		FrameWidth:  b.Dx(),
		FrameHeight: b.Dy(),
		Code:        code.String(),
		Objects:     dets,
	})

	return d.watcher.Quit() || ctx.Err() != nil, nil
}

// publish hands the frame to every stream client, dropping it for slow ones.
func (d *Display) publish(frame []byte) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for ch := range d.streams {
		select {
		case ch <- frame:
		default:
		}
	}
}

func (d *Display) servePage(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := d.page.Execute(w, struct{ Title string }{d.cfg.Title}); err != nil {
		logger.Warn("preview: render page: %v", err)
	}
}

func (d *Display) serveStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := make(chan []byte, clientBuffer)
	d.mu.Lock()
	d.streams[ch] = struct{}{}
	d.mu.Unlock()
	defer func() {
		d.mu.Lock()
		delete(d.streams, ch)
		d.mu.Unlock()
	}()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-d.watcher.Done():
			return
		case frame := <-ch:
			if _, err := fmt.Fprintf(w, "--frame\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", len(frame)); err != nil {
				return
			}
			if _, err := w.Write(frame); err != nil {
				return
			}
			if _, err := io.WriteString(w, "\r\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func (d *Display) serveQuit(w http.ResponseWriter, _ *http.Request) {
	logger.Info("Quit requested from preview page")
	d.watcher.Trigger()
	w.WriteHeader(http.StatusNoContent)
}

// StreamClients returns the number of connected /stream clients.
func (d *Display) StreamClients() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.streams)
}

// Close stops the server and disconnects clients.
func (d *Display) Close() error {
	d.watcher.Trigger()
	d.hub.closeAll()
	if d.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return d.server.Shutdown(ctx)
}

const pageHTML = `<!DOCTYPE html>
<html lang="id">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { background: #111; color: #eee; font-family: sans-serif; margin: 0; text-align: center; }
h1 { font-size: 1.2rem; margin: .6rem; }
img { max-width: 100%; border: 2px solid #333; }
#code { font-size: 2rem; margin: .4rem; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<img src="/stream" alt="{{.Title}}">
<div id="code">-</div>
<div id="objects"></div>
<p>Tekan <b>q</b> untuk berhenti.</p>
<script>
const ws = new WebSocket((location.protocol === "https:" ? "wss://" : "ws://") + location.host + "/ws");
ws.onmessage = (ev) => {
  const m = JSON.parse(ev.data);
  document.getElementById("code").textContent = "Kode: " + m.code;
  document.getElementById("objects").textContent =
    m.objects.map(o => (o.class || o.class_id) + " " + o.confidence.toFixed(2)).join(", ");
};
document.addEventListener("keydown", (ev) => {
  if (ev.key === "q" || ev.key === "Q") {
    fetch("/quit", {method: "POST"});
  }
});
</script>
</body>
</html>
`
