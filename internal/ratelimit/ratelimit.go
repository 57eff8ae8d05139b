// Package ratelimit implements a sliding window rate limiter keyed by string.
package ratelimit

import (
	"errors"
	"sync"
	"time"
)

// ErrLimited is returned by Check when a key has used up its window.
var ErrLimited = errors.New("rate limit exceeded")

// Limiter admits at most limit hits per key inside any window of the
// configured length.
type Limiter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	hits   map[string][]time.Time
	now    func() time.Time
}

// New creates a limiter. Non-positive limits reject every hit.
func New(limit int, window time.Duration) *Limiter {
	return &Limiter{
		limit:  limit,
		window: window,
		hits:   make(map[string][]time.Time),
		now:    time.Now,
	}
}

// WithClock replaces the time source. Used by tests.
func (l *Limiter) WithClock(now func() time.Time) *Limiter {
	l.mu.Lock()
	l.now = now
	l.mu.Unlock()
	return l
}

// SetLimit changes limit and window for all keys. Hits already recorded
// are kept and judged against the new window.
func (l *Limiter) SetLimit(limit int, window time.Duration) {
	l.mu.Lock()
	l.limit = limit
	l.window = window
	l.mu.Unlock()
}

// Limit returns the current limit and window.
func (l *Limiter) Limit() (int, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.limit, l.window
}

// prune drops hits that fell out of the window. Caller holds mu.
func (l *Limiter) prune(key string, now time.Time) []time.Time {
	hits := l.hits[key]
	i := 0
	for i < len(hits) && now.Sub(hits[i]) >= l.window {
		i++
	}
	hits = hits[i:]
	if len(hits) == 0 {
		delete(l.hits, key)
		return nil
	}
	l.hits[key] = hits
	return hits
}

// Allow records a hit for key and reports whether it was admitted.
// Rejected hits are not recorded.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	hits := l.prune(key, now)
	if len(hits) >= l.limit {
		return false
	}
	l.hits[key] = append(hits, now)
	return true
}

// Check is Allow returning ErrLimited instead of false.
func (l *Limiter) Check(key string) error {
	if !l.Allow(key) {
		return ErrLimited
	}
	return nil
}

// Remaining reports how many hits key may still make in the current window.
func (l *Limiter) Remaining(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	left := l.limit - len(l.prune(key, l.now()))
	if left < 0 {
		return 0
	}
	return left
}

// RetryAfter is the time until the oldest hit of key leaves the window, or
// zero if key is not limited.
func (l *Limiter) RetryAfter(key string) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	hits := l.prune(key, now)
	if len(hits) < l.limit || len(hits) == 0 {
		return 0
	}
	return l.window - now.Sub(hits[0])
}

// Reset forgets every hit of key.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	delete(l.hits, key)
	l.mu.Unlock()
}

// Clear forgets every key.
func (l *Limiter) Clear() {
	l.mu.Lock()
	l.hits = make(map[string][]time.Time)
	l.mu.Unlock()
}

// Keys returns the number of keys currently tracked.
func (l *Limiter) Keys() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.hits)
}
