// Package ratelimit throttles calls to hosted AI APIs.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DefaultBackoff is used when a provider rejects a call without saying when to retry.
const DefaultBackoff = 30 * time.Second

// Limiter is a token bucket sized in requests per minute, plus a backoff
// window set after the provider reports a quota error.
type Limiter struct {
	mu      sync.Mutex
	bucket  *rate.Limiter
	retryAt time.Time
}

// PerMinute creates a limiter allowing n calls per minute with a burst of one
// second's worth (at least 1). n <= 0 disables the bucket.
func PerMinute(n int) *Limiter {
	if n <= 0 {
		return &Limiter{bucket: rate.NewLimiter(rate.Inf, 1)}
	}
	burst := n / 60
	if burst < 1 {
		burst = 1
	}
	return &Limiter{bucket: rate.NewLimiter(rate.Limit(float64(n)/60), burst)}
}

// Wait blocks until a call may be made or ctx ends.
func (l *Limiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	retryAt := l.retryAt
	l.mu.Unlock()

	if d := time.Until(retryAt); d > 0 {
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
	return l.bucket.Wait(ctx)
}

// Backoff pauses all callers for d, or DefaultBackoff when d <= 0.
func (l *Limiter) Backoff(d time.Duration) {
	if d <= 0 {
		d = DefaultBackoff
	}
	l.mu.Lock()
	l.retryAt = time.Now().Add(d)
	l.mu.Unlock()
}

// Allow reports whether a call may be made now without blocking.
func (l *Limiter) Allow() bool {
	l.mu.Lock()
	retryAt := l.retryAt
	l.mu.Unlock()

	if time.Now().Before(retryAt) {
		return false
	}
	return l.bucket.Allow()
}
