// Package mjpeg reads frames from an HTTP MJPEG stream such as an ESP32-CAM.
//
// multipart/x-mixed-replace responses are split on their boundary. Any other
// response body is scanned for JPEG start and end markers.
package mjpeg

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/jpeg"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/pilah-labs/pilah/internal/core/domain"
	"github.com/pilah-labs/pilah/internal/core/ports/driven"
	"github.com/pilah-labs/pilah/internal/logger"
)

// Ensure Source implements the interface.
var _ driven.FrameSource = (*Source)(nil)

// Default configuration values.
const (
	DefaultConnectTimeout = 10 * time.Second
	DefaultMaxFrameBytes  = 4 << 20
	DefaultFailDelay      = time.Second
	readChunk             = 32 << 10
)

var (
	jpegStart = []byte{0xFF, 0xD8}
	jpegEnd   = []byte{0xFF, 0xD9}
)

// Config holds configuration for the MJPEG source.
type Config struct {
	URL            string
	ConnectTimeout time.Duration
	MaxFrameBytes  int
	FailDelay      time.Duration
}

// Source is a FrameSource over one HTTP connection.
// A transport failure ends the stream; later reads fail.
type Source struct {
	cfg    Config
	client *http.Client

	mu     sync.Mutex
	cancel context.CancelFunc
	body   io.ReadCloser
	parts  *multipart.Reader
	raw    *bufio.Reader
	buf    []byte
	seq    uint64
	ended  bool
}

// NewSource creates an unopened source.
func NewSource(cfg Config) *Source {
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = DefaultConnectTimeout
	}
	if cfg.MaxFrameBytes == 0 {
		cfg.MaxFrameBytes = DefaultMaxFrameBytes
	}
	if cfg.FailDelay == 0 {
		cfg.FailDelay = DefaultFailDelay
	}
	return &Source{
		cfg: cfg,
		client: &http.Client{
			Transport: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				ResponseHeaderTimeout: cfg.ConnectTimeout,
			},
		},
	}
}

// Open connects to the stream and checks the response.
func (s *Source) Open(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connect(ctx)
}

func (s *Source) connect(ctx context.Context) error {
	if strings.TrimSpace(s.cfg.URL) == "" {
		return fmt.Errorf("%w: no stream URL configured", domain.ErrStreamUnavailable)
	}
	s.disconnect()

	// The stream outlives the Open call, so it gets its own context.
	streamCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	req, err := http.NewRequestWithContext(streamCtx, http.MethodGet, s.cfg.URL, http.NoBody)
	if err != nil {
		cancel()
		return fmt.Errorf("%w: %w", domain.ErrStreamUnavailable, err)
	}

	connectDone := make(chan struct{})
	stop := context.AfterFunc(ctx, func() {
		select {
		case <-connectDone:
		default:
			cancel()
		}
	})
	resp, err := s.client.Do(req)
	close(connectDone)
	stop()
	if err != nil {
		cancel()
		return fmt.Errorf("%w: %s: %w", domain.ErrStreamUnavailable, s.cfg.URL, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		cancel()
		return fmt.Errorf("%w: %s: status %d", domain.ErrStreamUnavailable, s.cfg.URL, resp.StatusCode)
	}

	s.cancel = cancel
	s.body = resp.Body
	s.ended = false
	s.buf = s.buf[:0]

	mediaType, params, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if strings.HasPrefix(mediaType, "multipart/") && params["boundary"] != "" {
		s.parts = multipart.NewReader(resp.Body, params["boundary"])
		logger.Debug("MJPEG stream %s: multipart boundary %q", s.cfg.URL, params["boundary"])
	} else {
		s.raw = bufio.NewReaderSize(resp.Body, readChunk)
		logger.Debug("MJPEG stream %s: scanning %q for JPEG markers", s.cfg.URL, mediaType)
	}
	return nil
}

func (s *Source) disconnect() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if s.body != nil {
		_ = s.body.Close()
		s.body = nil
	}
	s.parts = nil
	s.raw = nil
}

// Read returns the next decoded frame. Cancelling ctx aborts a blocked read
// and drops the connection.
func (s *Source) Read(ctx context.Context) (domain.Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return domain.Frame{}, err
	}
	if s.body == nil {
		if !s.ended {
			return domain.Frame{}, fmt.Errorf("%w: source not open", domain.ErrStreamUnavailable)
		}
		// A dead stream keeps failing reads at a steady pace instead of spinning.
		if err := wait(ctx, s.cfg.FailDelay); err != nil {
			return domain.Frame{}, err
		}
		return domain.Frame{}, fmt.Errorf("%w: stream ended", domain.ErrStreamUnavailable)
	}

	cancel := s.cancel
	stop := context.AfterFunc(ctx, cancel)
	data, err := s.next()
	stop()
	if err != nil {
		s.disconnect()
		s.ended = true
		return domain.Frame{}, fmt.Errorf("reading frame: %w", err)
	}

	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		return domain.Frame{}, fmt.Errorf("decoding frame: %w", err)
	}

	s.seq++
	return domain.Frame{Image: img, Seq: s.seq, CapturedAt: time.Now()}, nil
}

func (s *Source) next() ([]byte, error) {
	if s.parts != nil {
		return s.nextPart()
	}
	return s.nextScanned()
}

func (s *Source) nextPart() ([]byte, error) {
	for {
		part, err := s.parts.NextPart()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(io.LimitReader(part, int64(s.cfg.MaxFrameBytes)+1))
		part.Close()
		if err != nil {
			return nil, err
		}
		if len(data) > s.cfg.MaxFrameBytes {
			logger.Debug("Skipping oversized part (%d bytes)", len(data))
			continue
		}
		// Some cameras send empty keep-alive parts.
		if len(data) == 0 {
			continue
		}
		return data, nil
	}
}

func (s *Source) nextScanned() ([]byte, error) {
	chunk := make([]byte, readChunk)
	for {
		if frame := ExtractJPEG(&s.buf); frame != nil {
			return frame, nil
		}
		if len(s.buf) > s.cfg.MaxFrameBytes {
			s.buf = s.buf[:0]
		}

		n, err := s.raw.Read(chunk)
		s.buf = append(s.buf, chunk[:n]...)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, io.ErrUnexpectedEOF
			}
			return nil, err
		}
	}
}

// Close releases the connection.
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disconnect()
	return nil
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// ExtractJPEG removes and returns the first complete JPEG in buf.
// Bytes before the start marker are discarded. Returns nil when no complete
// image is buffered yet.
func ExtractJPEG(buf *[]byte) []byte {
	b := *buf
	start := bytes.Index(b, jpegStart)
	if start < 0 {
		// Keep a trailing 0xFF in case the marker straddles reads.
		if n := len(b); n > 0 && b[n-1] == 0xFF {
			*buf = append(b[:0], 0xFF)
		} else {
			*buf = b[:0]
		}
		return nil
	}

	end := bytes.Index(b[start+2:], jpegEnd)
	if end < 0 {
		if start > 0 {
			*buf = append(b[:0], b[start:]...)
		}
		return nil
	}
	end += start + 2 + len(jpegEnd)

	frame := make([]byte, end-start)
	copy(frame, b[start:end])
	*buf = append(b[:0], b[end:]...)
	return frame
}
