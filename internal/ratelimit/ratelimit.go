// Package ratelimit paces outbound fetches so a run never hammers the
// listing sites.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter enforces a minimum delay between requests plus a sliding hourly
// cap. Safe for concurrent use.
type Limiter struct {
	minDelay        time.Duration
	requestsPerHour int
	enabled         bool

	mu          sync.Mutex
	lastRequest time.Time
	hourWindow  []time.Time
}

// NewLimiter creates a limiter. A requestsPerHour of 0 disables the hourly
// cap; enabled=false disables pacing entirely.
func NewLimiter(minDelay time.Duration, requestsPerHour int, enabled bool) *Limiter {
	return &Limiter{
		minDelay:        minDelay,
		requestsPerHour: requestsPerHour,
		enabled:         enabled,
	}
}

// Wait blocks until the next request is allowed or the context is done.
func (l *Limiter) Wait(ctx context.Context) error {
	if !l.enabled {
		return nil
	}

	l.mu.Lock()
	now := time.Now()
	l.cleanup(now)

	var delay time.Duration
	if !l.lastRequest.IsZero() {
		if elapsed := now.Sub(l.lastRequest); elapsed < l.minDelay {
			delay = l.minDelay - elapsed
		}
	}
	if l.requestsPerHour > 0 && len(l.hourWindow) >= l.requestsPerHour {
		// Wait for the oldest entry to leave the window.
		if until := l.hourWindow[0].Add(time.Hour).Sub(now); until > delay {
			delay = until
		}
	}

	l.lastRequest = now.Add(delay)
	l.hourWindow = append(l.hourWindow, l.lastRequest)
	l.mu.Unlock()

	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// cleanup drops window entries older than one hour. Caller holds the lock.
func (l *Limiter) cleanup(now time.Time) {
	cutoff := now.Add(-time.Hour)
	kept := l.hourWindow[:0]
	for _, t := range l.hourWindow {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	l.hourWindow = kept
}

// Stats reports the current hourly usage.
func (l *Limiter) Stats() (used, limit int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cleanup(time.Now())
	return len(l.hourWindow), l.requestsPerHour
}
