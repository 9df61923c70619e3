// Package ratelimit provides a keyed fixed-window rate limiter used to gate
// identifier generation. The limiter tracks request counts per key over a
// rolling window and evicts idle entries in the background.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/idforge/idforge/pkg/idgen"
)

// Default limiter values.
const (
	DefaultMaxRequests     = 100
	DefaultWindow          = 1 * time.Minute
	DefaultCleanupInterval = 1 * time.Minute
)

// windowEntry tracks one key's current window.
type windowEntry struct {
	count       int
	windowStart time.Time
	lastSeen    time.Time
}

// Config configures a KeyedLimiter.
type Config struct {
	// MaxRequests is the number of requests allowed per key per window.
	MaxRequests int

	// Window is the fixed window duration.
	Window time.Duration

	// CleanupInterval controls how often idle entries are evicted.
	CleanupInterval time.Duration
}

// KeyedLimiter is a fixed-window rate limiter keyed by an arbitrary string.
// It is safe for concurrent use.
type KeyedLimiter struct {
	max       int
	window    time.Duration
	mu        sync.Mutex
	entries   map[string]*windowEntry
	stopCh    chan struct{}
	stoppedCh chan struct{}
}

// NewKeyedLimiter creates a limiter and starts its cleanup goroutine. Call
// Stop when the limiter is no longer needed.
func NewKeyedLimiter(cfg Config) *KeyedLimiter {
	max := cfg.MaxRequests
	if max <= 0 {
		max = DefaultMaxRequests
	}
	window := cfg.Window
	if window <= 0 {
		window = DefaultWindow
	}
	interval := cfg.CleanupInterval
	if interval <= 0 {
		interval = DefaultCleanupInterval
	}

	l := &KeyedLimiter{
		max:       max,
		window:    window,
		entries:   make(map[string]*windowEntry),
		stopCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
	go l.cleanupLoop(interval)
	return l
}

// Allow reports whether one more request for key fits in the current window.
func (l *KeyedLimiter) Allow(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok || now.Sub(e.windowStart) >= l.window {
		l.entries[key] = &windowEntry{count: 1, windowStart: now, lastSeen: now}
		return true, nil
	}
	e.lastSeen = now
	if e.count >= l.max {
		return false, nil
	}
	e.count++
	return true, nil
}

// Remaining reports how many requests key has left in its current window.
func (l *KeyedLimiter) Remaining(key string) int {
	now := time.Now()
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok || now.Sub(e.windowStart) >= l.window {
		return l.max
	}
	remaining := l.max - e.count
	if remaining < 0 {
		return 0
	}
	return remaining
}

var _ idgen.RateLimiter = (*KeyedLimiter)(nil)

// Stop terminates the cleanup goroutine. The limiter stays usable but idle
// entries are no longer evicted.
func (l *KeyedLimiter) Stop() {
	close(l.stopCh)
	<-l.stoppedCh
}

func (l *KeyedLimiter) cleanupLoop(interval time.Duration) {
	defer close(l.stoppedCh)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-l.stopCh:
			return
		case <-ticker.C:
			l.cleanup()
		}
	}
}

func (l *KeyedLimiter) cleanup() {
	cutoff := time.Now().Add(-2 * l.window)
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, e := range l.entries {
		if e.lastSeen.Before(cutoff) {
			delete(l.entries, key)
		}
	}
}
