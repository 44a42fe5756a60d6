package handlers

import (
	"sync"

	"golang.org/x/time/rate"
)

// RateLimiter hands out one token bucket per checkout.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(perSecond),
		burst:    burst,
	}
}

func (l *RateLimiter) Allow(checkoutID string) bool {
	if l == nil {
		return true
	}
	l.mu.Lock()
	limiter, ok := l.limiters[checkoutID]
	if !ok {
		limiter = rate.NewLimiter(l.limit, l.burst)
		l.limiters[checkoutID] = limiter
	}
	l.mu.Unlock()
	return limiter.Allow()
}

// Forget drops the bucket of a closed checkout.
func (l *RateLimiter) Forget(checkoutID string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	delete(l.limiters, checkoutID)
	l.mu.Unlock()
}
