/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package ratelimit

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/acronis/taskgate/internal/clock"
	"github.com/acronis/taskgate/internal/keyzone"
)

// TokenBucketLimiter implements token bucket algorithm. The bucket holds Rate.Count tokens
// and is refilled continuously with Rate.Count tokens per Rate.Duration.
type TokenBucketLimiter struct {
	maxRate Rate
	clock   clock.Clock
	buckets *keyzone.Zone[*rate.Limiter]
}

// NewTokenBucketLimiter creates a new token bucket rate limiter.
func NewTokenBucketLimiter(maxRate Rate, maxKeys int, opts LimiterOpts) (*TokenBucketLimiter, error) {
	buckets, err := keyzone.New[*rate.Limiter](maxKeys, opts.MetricsCollector)
	if err != nil {
		return nil, fmt.Errorf("new key zone for buckets: %w", err)
	}
	clk := opts.Clock
	if clk == nil {
		clk = clock.System{}
	}
	return &TokenBucketLimiter{maxRate: maxRate, clock: clk, buckets: buckets}, nil
}

// Allow checks if the request should be allowed based on the rate limit.
func (l *TokenBucketLimiter) Allow(_ context.Context, key string) (allow bool, retryAfter time.Duration, err error) {
	bucket, _ := l.buckets.GetOrAdd(key, func() *rate.Limiter {
		return rate.NewLimiter(rate.Every(l.maxRate.Duration/time.Duration(l.maxRate.Count)), l.maxRate.Count)
	})
	now := l.clock.Now()
	r := bucket.ReserveN(now, 1)
	if !r.OK() {
		return false, 0, nil
	}
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, delay, nil
	}
	return true, 0, nil
}
