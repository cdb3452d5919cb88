// Package ratelimit bounds how many completion requests a single session may
// issue, protecting the external completion budget.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter implements a fixed-window per-session request counter. Bursts at
// window boundaries are accepted as a trade-off for simplicity; state lives
// in process memory only, so a multi-instance deployment needs a shared
// counter store behind the same interface.
type Limiter struct {
	mu      sync.Mutex
	entries map[string]entry
	window  time.Duration
	limit   int
	now     func() time.Time
}

type entry struct {
	count       int
	windowStart time.Time
}

// Option customises a Limiter.
type Option func(*Limiter)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		l.now = now
	}
}

// New returns a Limiter allowing at most limit requests per session within
// each window.
func New(window time.Duration, limit int, opts ...Option) *Limiter {
	l := &Limiter{
		entries: make(map[string]entry),
		window:  window,
		limit:   limit,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Allow reports whether the session may issue another request. It never
// fails; an unknown session is always allowed and starts a fresh window.
// Rejected calls do not grow the counter, so denial decisions stay tied to
// actual window usage.
func (l *Limiter) Allow(sessionID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e, ok := l.entries[sessionID]
	if !ok || now.Sub(e.windowStart) > l.window {
		l.entries[sessionID] = entry{count: 1, windowStart: now}
		return true
	}

	if e.count >= l.limit {
		return false
	}

	e.count++
	l.entries[sessionID] = e
	return true
}
