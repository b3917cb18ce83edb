package web

import (
	"net/http"
	"time"

	"goa.design/goa/v3/middleware"

	"github.com/pilah-labs/pilah/internal/logger"
)

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// logRequests logs method, path, status, duration and request id of every request.
// It must run inside the RequestID middleware.
func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		id, _ := r.Context().Value(middleware.RequestIDKey).(string)
		logger.Info("web: %s %s %d %s id=%s", r.Method, r.URL.Path, rec.status, time.Since(start), id)
	})
}
