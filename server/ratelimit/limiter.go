package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter decides whether a keyed request may proceed.
type Limiter interface {
	// Allow consumes one unit of budget for key if available.
	Allow(key string) bool

	// Reset drops all state for key.
	Reset(key string)

	// GetInfo reports the current budget for key.
	GetInfo(key string) *LimitInfo
}

// LimitInfo describes the budget for one key.
type LimitInfo struct {
	Limit     int       // burst capacity
	Remaining int       // whole tokens left
	ResetAt   time.Time // when the next token becomes available
}

// KeyedLimiter keeps one token bucket per key and evicts idle keys in
// the background. Buckets refill continuously at the configured rate.
type KeyedLimiter struct {
	mu      sync.Mutex
	entries map[string]*entry
	rate    rate.Limit
	burst   int
	idleTTL time.Duration
}

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewKeyedLimiter creates a limiter refilling perSecond tokens with the
// given burst capacity. Keys idle longer than idleTTL are evicted.
func NewKeyedLimiter(perSecond float64, burst int, idleTTL time.Duration) *KeyedLimiter {
	if perSecond <= 0 {
		perSecond = 1
	}
	if burst <= 0 {
		burst = 1
	}
	if idleTTL <= 0 {
		idleTTL = 3 * time.Minute
	}

	l := &KeyedLimiter{
		entries: make(map[string]*entry),
		rate:    rate.Limit(perSecond),
		burst:   burst,
		idleTTL: idleTTL,
	}

	go l.janitor()

	return l
}

func (l *KeyedLimiter) get(key string) *entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.entries[key] = e
	}
	e.lastSeen = time.Now()
	return e
}

// Allow consumes one token for key if one is available.
func (l *KeyedLimiter) Allow(key string) bool {
	return l.get(key).limiter.Allow()
}

// Reset drops all state for key.
func (l *KeyedLimiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, key)
}

// GetInfo reports the budget for key without consuming anything.
func (l *KeyedLimiter) GetInfo(key string) *LimitInfo {
	l.mu.Lock()
	e, ok := l.entries[key]
	l.mu.Unlock()

	if !ok {
		return &LimitInfo{
			Limit:     l.burst,
			Remaining: l.burst,
			ResetAt:   time.Now(),
		}
	}

	tokens := e.limiter.Tokens()
	if tokens < 0 {
		tokens = 0
	}

	resetAt := time.Now()
	if tokens < 1 {
		wait := (1 - tokens) / float64(l.rate)
		resetAt = resetAt.Add(time.Duration(wait * float64(time.Second)))
	}

	return &LimitInfo{
		Limit:     l.burst,
		Remaining: int(tokens),
		ResetAt:   resetAt,
	}
}

// janitor evicts keys that have not been seen for idleTTL.
func (l *KeyedLimiter) janitor() {
	ticker := time.NewTicker(l.idleTTL)
	defer ticker.Stop()

	for range ticker.C {
		cutoff := time.Now().Add(-l.idleTTL)
		l.mu.Lock()
		for key, e := range l.entries {
			if e.lastSeen.Before(cutoff) {
				delete(l.entries, key)
			}
		}
		l.mu.Unlock()
	}
}
