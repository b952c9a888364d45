package store

import (
	"sync"
	"time"

	"github.com/docslice/go-pdf-splitter/internal/domain"
)

// RateLimitStore enforces a fixed window per client: at most one accepted
// request per key per window. Distinct from the edge token-bucket guard,
// which smooths bursts across all routes; this store is the business rule.
type RateLimitStore interface {
	// CheckAndRecord is the atomic read-check-write for one key at now.
	// If the key is unknown, or its last accepted request is at least one
	// window old, the request is allowed and recorded. Otherwise it is
	// denied and retryAfter holds the time left until the window reopens.
	// The table is mutated only on allow.
	CheckAndRecord(key string, now time.Time) (allowed bool, retryAfter time.Duration)

	// PruneStale drops entries whose window has fully elapsed at now, so the
	// table is bounded by the number of distinct clients per window. Returns
	// the number of entries removed.
	PruneStale(now time.Time) int

	// Len reports the number of tracked clients.
	Len() int
}

// MemoryRateLimiter is the in-process RateLimitStore. One mutex covers the
// whole table; two simultaneous requests from the same key cannot both pass.
type MemoryRateLimiter struct {
	window  time.Duration
	mu      sync.Mutex
	entries map[string]domain.RateLimitEntry
}

// NewMemoryRateLimiter returns a limiter with the given window (e.g. 24h).
func NewMemoryRateLimiter(window time.Duration) *MemoryRateLimiter {
	return &MemoryRateLimiter{
		window:  window,
		entries: make(map[string]domain.RateLimitEntry),
	}
}

// CheckAndRecord implements RateLimitStore.
func (l *MemoryRateLimiter) CheckAndRecord(key string, now time.Time) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if e, ok := l.entries[key]; ok {
		elapsed := now.Sub(e.LastRequestAt)
		if elapsed < l.window {
			return false, l.window - elapsed
		}
	}
	l.entries[key] = domain.RateLimitEntry{ClientKey: key, LastRequestAt: now}
	return true, 0
}

// PruneStale implements RateLimitStore.
func (l *MemoryRateLimiter) PruneStale(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := 0
	for key, e := range l.entries {
		if now.Sub(e.LastRequestAt) >= l.window {
			delete(l.entries, key)
			n++
		}
	}
	return n
}

// Len implements RateLimitStore.
func (l *MemoryRateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
