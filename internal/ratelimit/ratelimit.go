// Package ratelimit bounds outbound verification requests per target
// domain using token buckets. One limiter instance is constructed per
// process and shared by reference across concurrent analyses; it is the
// only cross-analysis mutable state in the engine.
package ratelimit

import (
	"sync"
	"time"
)

// tokenBucket allows a number of requests per window, refilling at a
// steady rate.
type tokenBucket struct {
	mu         sync.Mutex
	capacity   int
	refillRate float64 // tokens per second
	tokens     float64
	lastRefill time.Time
}

func newTokenBucket(capacity int, refillRate float64) *tokenBucket {
	return &tokenBucket{
		capacity:   capacity,
		refillRate: refillRate,
		tokens:     float64(capacity),
		lastRefill: time.Now(),
	}
}

// allow consumes a token if one is available. Callers that are denied
// must not queue; the provider reports Unavailable instead.
func (tb *tokenBucket) allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(tb.lastRefill)
	tb.tokens = min(float64(tb.capacity), tb.tokens+elapsed.Seconds()*tb.refillRate)
	tb.lastRefill = now

	if tb.tokens >= 1.0 {
		tb.tokens -= 1.0
		return true
	}
	return false
}

// DomainLimiter manages one token bucket per target domain.
type DomainLimiter struct {
	mu         sync.RWMutex
	buckets    map[string]*tokenBucket
	burst      int
	refillRate float64

	accessMu   sync.RWMutex
	lastAccess map[string]time.Time

	cleanupTicker *time.Ticker
	cleanupStop   chan struct{}
}

// NewDomainLimiter creates a limiter that permits burst requests per
// domain, refilling one token per window. The default verification
// policy is one request per domain per 10 second window.
func NewDomainLimiter(window time.Duration, burst int) *DomainLimiter {
	if window <= 0 {
		window = 10 * time.Second
	}
	if burst <= 0 {
		burst = 1
	}

	l := &DomainLimiter{
		buckets:    make(map[string]*tokenBucket),
		burst:      burst,
		refillRate: 1.0 / window.Seconds(),
		lastAccess: make(map[string]time.Time),
	}

	l.cleanupTicker = time.NewTicker(5 * time.Minute)
	l.cleanupStop = make(chan struct{})
	go l.cleanup()

	return l
}

// Allow reports whether a request against the given domain may proceed
// right now. A denied request is never queued.
func (l *DomainLimiter) Allow(domain string) bool {
	bucket := l.getBucket(domain)

	l.accessMu.Lock()
	l.lastAccess[domain] = time.Now()
	l.accessMu.Unlock()

	return bucket.allow()
}

func (l *DomainLimiter) getBucket(domain string) *tokenBucket {
	l.mu.RLock()
	bucket, exists := l.buckets[domain]
	l.mu.RUnlock()
	if exists {
		return bucket
	}

	bucket = newTokenBucket(l.burst, l.refillRate)

	l.mu.Lock()
	defer l.mu.Unlock()
	if existing, exists := l.buckets[domain]; exists {
		return existing
	}
	l.buckets[domain] = bucket
	return bucket
}

func (l *DomainLimiter) cleanup() {
	for {
		select {
		case <-l.cleanupTicker.C:
			l.dropStale()
		case <-l.cleanupStop:
			return
		}
	}
}

// dropStale removes buckets for domains not seen in over an hour.
func (l *DomainLimiter) dropStale() {
	cutoff := time.Now().Add(-1 * time.Hour)

	l.accessMu.RLock()
	stale := make([]string, 0)
	for domain, last := range l.lastAccess {
		if last.Before(cutoff) {
			stale = append(stale, domain)
		}
	}
	l.accessMu.RUnlock()

	if len(stale) == 0 {
		return
	}

	l.mu.Lock()
	l.accessMu.Lock()
	for _, domain := range stale {
		delete(l.buckets, domain)
		delete(l.lastAccess, domain)
	}
	l.accessMu.Unlock()
	l.mu.Unlock()
}

// Stop terminates the background cleanup goroutine.
func (l *DomainLimiter) Stop() {
	if l.cleanupTicker != nil {
		l.cleanupTicker.Stop()
	}
	if l.cleanupStop != nil {
		close(l.cleanupStop)
	}
}
