// Package ratelimit provides a fixed-window request limiter keyed by an
// opaque string (callers typically combine identity and source address).
// The in-memory store is only sound for a single instance; multi-instance
// deployments should use the Redis store.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

type Limiter interface {
	// Allow reports whether another attempt is permitted for the key
	// within the current window.
	Allow(ctx context.Context, key string) (bool, error)
}

type memoryLimiter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	hits   map[string]*windowCount
}

type windowCount struct {
	count   int
	resetAt time.Time
}

func NewMemoryLimiter(limit int, window time.Duration) Limiter {
	return &memoryLimiter{
		limit:  limit,
		window: window,
		hits:   make(map[string]*windowCount),
	}
}

func (l *memoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	w := l.hits[key]
	if w == nil || now.After(w.resetAt) {
		l.prune(now)
		l.hits[key] = &windowCount{count: 1, resetAt: now.Add(l.window)}
		return true, nil
	}

	w.count++
	return w.count <= l.limit, nil
}

// prune drops expired windows so the map does not grow unbounded.
// Called with the lock held.
func (l *memoryLimiter) prune(now time.Time) {
	for k, w := range l.hits {
		if now.After(w.resetAt) {
			delete(l.hits, k)
		}
	}
}
