// Package ratelimit provides sliding-window admission control for
// quota-limited external APIs.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

const (
	// DefaultMaxRequests is the default number of calls allowed per window
	DefaultMaxRequests = 5
	// DefaultWindow is the default trailing window size
	DefaultWindow = 10 * time.Second
)

// Limiter admits at most maxRequests calls in any trailing window. Timestamps
// use the monotonic clock embedded in time.Time, so wall clock adjustments do
// not affect the window. Safe for concurrent use.
type Limiter struct {
	maxRequests int
	window      time.Duration

	mu     sync.Mutex
	stamps []time.Time
}

type Option func(*Limiter)

// WithMaxRequests sets the number of calls allowed per window
func WithMaxRequests(n int) Option {
	return func(l *Limiter) {
		l.maxRequests = n
	}
}

// WithWindow sets the trailing window size
func WithWindow(d time.Duration) Option {
	return func(l *Limiter) {
		l.window = d
	}
}

// New creates a Limiter with the given options
func New(opts ...Option) *Limiter {
	l := &Limiter{
		maxRequests: DefaultMaxRequests,
		window:      DefaultWindow,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Wait blocks until one more call is compliant with the limit, then records
// the call. The lock is held only for bookkeeping, never while sleeping, and
// the loop re-evaluates after each sleep because concurrent waiters race for
// the freed slot. Returns early only when ctx is cancelled.
func (l *Limiter) Wait(ctx context.Context) error {
	for {
		l.mu.Lock()
		now := time.Now()

		// Drop timestamps that left the window
		kept := l.stamps[:0]
		for _, ts := range l.stamps {
			if now.Sub(ts) < l.window {
				kept = append(kept, ts)
			}
		}
		l.stamps = kept

		if len(l.stamps) < l.maxRequests {
			l.stamps = append(l.stamps, now)
			l.mu.Unlock()
			return nil
		}

		// Wait until the oldest recorded call exits the window
		oldest := l.stamps[0]
		for _, ts := range l.stamps[1:] {
			if ts.Before(oldest) {
				oldest = ts
			}
		}
		wait := l.window - now.Sub(oldest)
		l.mu.Unlock()

		if wait <= 0 {
			continue
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
