package coach

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter paces requests to the coach endpoint and honors Retry-After
type RateLimiter struct {
	limiter *rate.Limiter

	mu          sync.Mutex
	pausedUntil time.Time
}

// NewRateLimiter allows requestsPerMinute with a burst of one.
// A non-positive rate disables pacing.
func NewRateLimiter(requestsPerMinute float64) *RateLimiter {
	limit := rate.Inf
	if requestsPerMinute > 0 {
		limit = rate.Limit(requestsPerMinute / 60)
	}
	return &RateLimiter{limiter: rate.NewLimiter(limit, 1)}
}

// Wait blocks until a request can be made without exceeding the rate limit
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	pause := time.Until(r.pausedUntil)
	r.mu.Unlock()

	if pause > 0 {
		select {
		case <-time.After(pause):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return r.limiter.Wait(ctx)
}

// UpdateFromHeaders pauses requests when the server sends Retry-After (seconds)
func (r *RateLimiter) UpdateFromHeaders(h http.Header) {
	retry := h.Get("Retry-After")
	if retry == "" {
		return
	}
	secs, err := strconv.Atoi(retry)
	if err != nil || secs <= 0 {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	until := time.Now().Add(time.Duration(secs) * time.Second)
	if until.After(r.pausedUntil) {
		r.pausedUntil = until
	}
}

// PausedUntil returns the time before which no request will be sent
func (r *RateLimiter) PausedUntil() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pausedUntil
}
