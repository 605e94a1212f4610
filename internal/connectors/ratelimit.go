package connectors

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/triago-cli/internal/core/domain"
)

// RateLimitConfig holds rate limiting configuration for a provider.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate limit.
	RequestsPerSecond float64
	// BurstSize is the maximum burst size.
	BurstSize int
}

// DefaultRateLimits are conservative per-provider defaults, well below
// the published quotas so a busy scheduler never trips them.
var DefaultRateLimits = map[domain.ProviderType]RateLimitConfig{
	domain.ProviderDrive: {RequestsPerSecond: 8.0, BurstSize: 10},
	domain.ProviderTeams: {RequestsPerSecond: 4.0, BurstSize: 8},
}

// RateLimiter paces provider API requests. It uses a token bucket plus a
// backoff window set when the provider answers 429.
type RateLimiter struct {
	mu       sync.Mutex
	limiter  *rate.Limiter
	retryAt  time.Time
	provider domain.ProviderType
}

// NewRateLimiter creates a rate limiter for the given provider.
func NewRateLimiter(provider domain.ProviderType) *RateLimiter {
	cfg, ok := DefaultRateLimits[provider]
	if !ok {
		cfg = RateLimitConfig{RequestsPerSecond: 4.0, BurstSize: 8}
	}
	return &RateLimiter{
		limiter:  rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.BurstSize),
		provider: provider,
	}
}

// Wait blocks until a request may proceed, honouring any backoff window
// before draining the token bucket.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if time.Now().Before(retryAt) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Until(retryAt)):
		}
	}

	return r.limiter.Wait(ctx)
}

// RecordRateLimitError sets a backoff window after a 429 response. A
// non-positive hint selects a 60 second default.
func (r *RateLimiter) RecordRateLimitError(retryAfterSeconds int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if retryAfterSeconds <= 0 {
		retryAfterSeconds = 60
	}
	r.retryAt = time.Now().Add(time.Duration(retryAfterSeconds) * time.Second)
}

// Allow reports whether a request may proceed immediately.
func (r *RateLimiter) Allow() bool {
	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if time.Now().Before(retryAt) {
		return false
	}
	return r.limiter.Allow()
}
