// Package yolo talks to a YOLO inference sidecar over HTTP.
//
// Frames are posted as JPEG to /detect with a conf_threshold form field. The
// sidecar replies with detections in model output order.
package yolo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"sync"
	"time"

	"github.com/pilah-labs/pilah/internal/core/domain"
	"github.com/pilah-labs/pilah/internal/core/ports/driven"
	"github.com/pilah-labs/pilah/internal/logger"
)

// Ensure Detector implements the interface.
var _ driven.Detector = (*Detector)(nil)

// Default configuration values.
const (
	DefaultEndpoint    = "http://localhost:8000"
	DefaultTimeout     = 15 * time.Second
	DefaultJPEGQuality = 90
)

// Config holds configuration for the detector client.
type Config struct {
	// Endpoint is the sidecar base URL.
	Endpoint string

	// Model is passed to the sidecar so it loads the right weights.
	Model string

	// Timeout bounds one request.
	Timeout time.Duration

	// JPEGQuality is used when encoding frames for upload.
	JPEGQuality int
}

// Detector is a driven.Detector backed by the sidecar.
type Detector struct {
	endpoint string
	model    string
	quality  int
	client   *http.Client

	mu      sync.RWMutex
	classes []string
}

type wireDetection struct {
	Class      string    `json:"class"`
	ClassID    int       `json:"class_id"`
	Confidence float32   `json:"confidence"`
	BBox       []float32 `json:"bbox"`
}

type detectResponse struct {
	Detections      []wireDetection `json:"detections"`
	Count           int             `json:"count"`
	InferenceTimeMs float32         `json:"inference_time_ms"`
}

type healthResponse struct {
	Status      string   `json:"status"`
	Device      string   `json:"device"`
	ModelLoaded bool     `json:"model_loaded"`
	Classes     []string `json:"classes"`
}

// New creates a detector client with defaults for empty fields.
func New(cfg Config) *Detector {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.JPEGQuality == 0 {
		cfg.JPEGQuality = DefaultJPEGQuality
	}
	return &Detector{
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		model:    cfg.Model,
		quality:  cfg.JPEGQuality,
		client:   &http.Client{Timeout: cfg.Timeout},
	}
}

// Detect uploads img and returns detections at or above minConfidence,
// in the order the sidecar produced them.
func (d *Detector) Detect(ctx context.Context, img image.Image, minConfidence float32) ([]domain.Detection, error) {
	body, contentType, err := d.encodeRequest(img, minConfidence)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint+"/detect", body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrDetectorUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("detector error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var result detectResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode detections: %w", err)
	}

	dets := make([]domain.Detection, 0, len(result.Detections))
	for _, w := range result.Detections {
		if w.Confidence < minConfidence {
			continue
		}
		dets = append(dets, domain.Detection{
			ClassIndex: w.ClassID,
			Label:      w.Class,
			Confidence: w.Confidence,
			Box:        toBox(w.BBox),
		})
	}
	logger.Debug("detector: %d detections in %.1fms", len(dets), result.InferenceTimeMs)
	return dets, nil
}

func (d *Detector) encodeRequest(img image.Image, minConfidence float32) (io.Reader, string, error) {
	var b bytes.Buffer
	w := multipart.NewWriter(&b)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="frame.jpg"`)
	h.Set("Content-Type", "image/jpeg")
	fw, err := w.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("create file part: %w", err)
	}
	if err := jpeg.Encode(fw, img, &jpeg.Options{Quality: d.quality}); err != nil {
		return nil, "", fmt.Errorf("encode frame: %w", err)
	}

	if err := w.WriteField("conf_threshold", fmt.Sprintf("%.3f", minConfidence)); err != nil {
		return nil, "", err
	}
	if d.model != "" {
		if err := w.WriteField("model", d.model); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &b, w.FormDataContentType(), nil
}

// toBox converts [x1, y1, x2, y2]. Malformed boxes become the zero box.
func toBox(v []float32) domain.BoundingBox {
	if len(v) < 4 {
		return domain.BoundingBox{}
	}
	r := func(f float32) int { return int(math.Round(float64(f))) }
	return domain.BoundingBox{X1: r(v[0]), Y1: r(v[1]), X2: r(v[2]), Y2: r(v[3])}
}

// ClassNames returns the labels the sidecar reported on the last Ping.
func (d *Detector) ClassNames() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.classes
}

// Ping checks /health and requires a loaded model.
func (d *Detector) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.endpoint+"/health", http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrDetectorUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: health returned status %d", domain.ErrDetectorUnavailable, resp.StatusCode)
	}

	var health healthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return fmt.Errorf("%w: decode health: %w", domain.ErrDetectorUnavailable, err)
	}
	if !health.ModelLoaded {
		return fmt.Errorf("%w: model not loaded", domain.ErrDetectorUnavailable)
	}

	if len(health.Classes) > 0 {
		d.mu.Lock()
		d.classes = health.Classes
		d.mu.Unlock()
	}
	logger.Debug("detector ready on %s (device %s)", d.endpoint, health.Device)
	return nil
}

// Close releases idle connections.
func (d *Detector) Close() error {
	d.client.CloseIdleConnections()
	return nil
}
