package app

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/jpeg"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pilah-labs/pilah/internal/core/domain"
)

func cameraServer(t *testing.T, frames int) *httptest.Server {
	t.Helper()
	var frame bytes.Buffer
	require.NoError(t, jpeg.Encode(&frame, image.NewRGBA(image.Rect(0, 0, 32, 24)), nil))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		mw := multipart.NewWriter(w)
		_ = mw.SetBoundary("frame")
		w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
		for i := 0; i < frames; i++ {
			part, err := mw.CreatePart(textproto.MIMEHeader{"Content-Type": {"image/jpeg"}})
			if err != nil {
				return
			}
			_, _ = part.Write(frame.Bytes())
		}
		_ = mw.Close()
	}))
	t.Cleanup(srv.Close)
	return srv
}

func sidecarServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":       "ok",
			"model_loaded": true,
			"classes":      []string{"organik", "anorganik", "B3"},
		})
	})
	mux.HandleFunc("/detect", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"detections": []map[string]any{
				{"class": "B3", "class_id": 2, "confidence": 0.9, "bbox": []float32{2, 2, 20, 20}},
				{"class": "organik", "class_id": 0, "confidence": 0.4, "bbox": []float32{1, 1, 5, 5}},
			},
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestSorter_StreamUnavailableAborts(t *testing.T) {
	camera := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "busy", http.StatusServiceUnavailable)
	}))
	defer camera.Close()

	a := openApp(t, map[string]string{
		"camera.stream_url": camera.URL,
		"serial.backend":    "log",
		"display.backend":   "none",
	})

	loop, cleanup, err := a.Sorter(context.Background(), nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStreamUnavailable)
	assert.Nil(t, loop)
	assert.Nil(t, cleanup)
}

func TestSorter_DetectorDownAborts(t *testing.T) {
	camera := cameraServer(t, 1)
	sidecar := httptest.NewServer(http.NotFoundHandler())
	defer sidecar.Close()

	a := openApp(t, map[string]string{
		"camera.stream_url": camera.URL,
		"detector.endpoint": sidecar.URL,
		"serial.backend":    "log",
		"display.backend":   "none",
	})

	_, _, err := a.Sorter(context.Background(), nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "checking detector")
}

func TestSorter_UnknownBackends(t *testing.T) {
	camera := cameraServer(t, 1)
	sidecar := sidecarServer(t)

	tests := []struct {
		name   string
		values map[string]string
	}{
		{"camera", map[string]string{"camera.backend": "v4l2"}},
		{"actuator", map[string]string{"serial.backend": "gpio"}},
		{"display", map[string]string{"serial.backend": "log", "display.backend": "tv"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values := map[string]string{
				"camera.stream_url": camera.URL,
				"detector.endpoint": sidecar.URL,
			}
			for k, v := range tt.values {
				values[k] = v
			}
			a := openApp(t, values)

			_, _, err := a.Sorter(context.Background(), nil, nil)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestSorter_DryRunSendsLastDetection(t *testing.T) {
	camera := cameraServer(t, 3)
	sidecar := sidecarServer(t)

	a := openApp(t, map[string]string{
		"camera.stream_url": camera.URL,
		"detector.endpoint": sidecar.URL,
		"serial.backend":    "log",
		"display.backend":   "none",
	})

	var console bytes.Buffer
	loop, cleanup, err := a.Sorter(context.Background(), strings.NewReader("q"), &console)
	require.NoError(t, err)
	defer func() { assert.NoError(t, cleanup()) }()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, loop.Run(ctx))

	stats := loop.Stats()
	require.GreaterOrEqual(t, stats.FramesRead, uint64(1))
	assert.Equal(t, stats.FramesRead, stats.CodesSent[domain.CodeOrganic])
	assert.Contains(t, console.String(), "Deteksi kelas: 1")
}
