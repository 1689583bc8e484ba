// Package ratelimit tracks per-provider request quotas so the cascade never
// burns a rate-limited provider's daily budget on requests it cannot serve.
package ratelimit

import (
	"sync"
	"time"

	"newshub/internal/logger"
)

// Limiter counts requests per provider against configured daily quotas.
// A quota of 0 means unlimited.
type Limiter struct {
	mu        sync.Mutex
	counts    map[string]int
	quotas    map[string]int
	resetTime time.Time
}

func New(quotas map[string]int) *Limiter {
	return &Limiter{
		counts:    make(map[string]int),
		quotas:    quotas,
		resetTime: time.Now().Add(24 * time.Hour), // Reset daily
	}
}

// Allow reports whether provider still has quota and records the request.
func (l *Limiter) Allow(provider string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.checkReset()

	quota := l.quotas[provider]
	if quota > 0 && l.counts[provider] >= quota {
		logger.Warn("provider daily quota reached", "provider", provider, "quota", quota)
		return false
	}

	l.counts[provider]++
	return true
}

// checkReset clears counters once the daily window has passed. Caller holds
// the lock.
func (l *Limiter) checkReset() {
	if time.Now().After(l.resetTime) {
		l.counts = make(map[string]int)
		l.resetTime = time.Now().Add(24 * time.Hour)
		logger.Info("provider quotas reset")
	}
}

// Stats returns the current request counts per provider.
func (l *Limiter) Stats() map[string]int {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make(map[string]int, len(l.counts))
	for name, count := range l.counts {
		out[name] = count
	}
	return out
}
