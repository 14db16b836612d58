// Package ratelimit paces requests across all actors and tracks load
// profile phases.
package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// RateLimiter is a token bucket shared by every actor of a run. A rate of 0
// disables limiting.
type RateLimiter struct {
	mu      sync.RWMutex
	limiter *rate.Limiter
	rps     int
}

// NewRateLimiter allows rps requests per second with a burst of rps.
func NewRateLimiter(rps int) *RateLimiter {
	if rps < 0 {
		rps = 0
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(rps), rps),
		rps:     rps,
	}
}

// Wait blocks until a request may be sent or ctx is done.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.RLock()
	limiter, rps := r.limiter, r.rps
	r.mu.RUnlock()

	if rps == 0 {
		return ctx.Err()
	}
	return limiter.Wait(ctx)
}

// SetRate changes the rate. Setting the current rate keeps the bucket as is.
func (r *RateLimiter) SetRate(rps int) {
	if rps < 0 {
		rps = 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if rps == r.rps {
		return
	}
	r.rps = rps
	r.limiter.SetLimit(rate.Limit(rps))
	r.limiter.SetBurst(rps)
}

// Rate returns the current requests per second, 0 when unlimited.
func (r *RateLimiter) Rate() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.rps
}
