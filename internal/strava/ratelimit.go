package strava

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Strava rate limits: 100 requests per 15 minutes, 1000 per day.

// limitWindow tracks usage against one rolling limit.
type limitWindow struct {
	limit    int
	usage    int
	span     time.Duration
	resetsAt time.Time
}

func (w *limitWindow) resetIfExpired(now time.Time) {
	if now.After(w.resetsAt) {
		w.usage = 0
		w.resetsAt = now.Add(w.span)
	}
}

// RateLimiter manages Strava API rate limits
type RateLimiter struct {
	mu sync.Mutex

	short limitWindow // 15-minute window
	daily limitWindow

	// Minimum interval between requests
	minInterval time.Duration
	lastRequest time.Time
}

// NewRateLimiter creates a new rate limiter with Strava's limits
func NewRateLimiter() *RateLimiter {
	now := time.Now()
	return &RateLimiter{
		short: limitWindow{
			limit:    100,
			span:     15 * time.Minute,
			resetsAt: now.Add(15 * time.Minute),
		},
		daily: limitWindow{
			limit:    1000,
			span:     24 * time.Hour,
			resetsAt: now.Truncate(24 * time.Hour).Add(24 * time.Hour),
		},
		minInterval: 150 * time.Millisecond, // ~6.6 req/s max
	}
}

// Wait blocks until a request can be made without exceeding rate limits
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	r.short.resetIfExpired(now)
	r.daily.resetIfExpired(now)

	for _, w := range []*limitWindow{&r.short, &r.daily} {
		if w.usage < w.limit {
			continue
		}
		waitTime := time.Until(w.resetsAt)
		r.mu.Unlock()
		select {
		case <-time.After(waitTime):
		case <-ctx.Done():
			r.mu.Lock()
			return ctx.Err()
		}
		r.mu.Lock()
		w.usage = 0
		w.resetsAt = time.Now().Add(w.span)
	}

	// Enforce minimum interval between requests
	if elapsed := time.Since(r.lastRequest); elapsed < r.minInterval {
		waitTime := r.minInterval - elapsed
		r.mu.Unlock()
		select {
		case <-time.After(waitTime):
		case <-ctx.Done():
			r.mu.Lock()
			return ctx.Err()
		}
		r.mu.Lock()
	}

	r.short.usage++
	r.daily.usage++
	r.lastRequest = time.Now()

	return nil
}

// UpdateFromHeaders updates rate limit state from Strava response headers.
// Strava returns X-RateLimit-Limit: "100,1000" and X-RateLimit-Usage: "34,512".
func (r *RateLimiter) UpdateFromHeaders(h http.Header) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if short, daily, ok := parsePair(h.Get("X-RateLimit-Usage")); ok {
		r.short.usage = short
		r.daily.usage = daily
	}
	if short, daily, ok := parsePair(h.Get("X-RateLimit-Limit")); ok {
		r.short.limit = short
		r.daily.limit = daily
	}
}

func parsePair(v string) (short, daily int, ok bool) {
	parts := strings.Split(v, ",")
	if len(parts) < 2 {
		return 0, 0, false
	}
	short, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	daily, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return short, daily, true
}

// Status returns remaining requests in each window
func (r *RateLimiter) Status() (shortRemaining, dailyRemaining int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.short.limit - r.short.usage, r.daily.limit - r.daily.usage
}
