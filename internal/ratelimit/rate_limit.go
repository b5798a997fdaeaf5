/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/acronis/taskgate/internal/clock"
	"github.com/acronis/taskgate/internal/keyzone"
)

// Rate describes the frequency of requests.
type Rate struct {
	Count    int
	Duration time.Duration
}

// Limiter interface defines the rate limiting contract.
type Limiter interface {
	Allow(ctx context.Context, key string) (allow bool, retryAfter time.Duration, err error)
}

// Algorithm is a rate limiting algorithm.
type Algorithm string

// Supported algorithms.
const (
	AlgorithmFixedWindow   Algorithm = "fixedWindow"
	AlgorithmTokenBucket   Algorithm = "tokenBucket"
	AlgorithmLeakyBucket   Algorithm = "leakyBucket"
	AlgorithmSlidingWindow Algorithm = "slidingWindow"
)

// Algorithms lists all supported algorithms.
var Algorithms = []Algorithm{AlgorithmFixedWindow, AlgorithmTokenBucket, AlgorithmLeakyBucket, AlgorithmSlidingWindow}

// LimiterOpts represents options for NewLimiter.
type LimiterOpts struct {
	// Clock is a time source, clock.System is used when nil.
	Clock clock.Clock

	// MetricsCollector collects statistics about the per-identity state. May be nil.
	MetricsCollector keyzone.MetricsCollector
}

// NewLimiter creates a limiter with the given algorithm.
func NewLimiter(alg Algorithm, maxRate Rate, maxKeys int, opts LimiterOpts) (Limiter, error) {
	if maxRate.Count <= 0 {
		return nil, fmt.Errorf("rate count must be greater than 0, got %d", maxRate.Count)
	}
	if maxRate.Duration <= 0 {
		return nil, fmt.Errorf("rate duration must be greater than 0, got %s", maxRate.Duration)
	}
	if opts.Clock == nil {
		opts.Clock = clock.System{}
	}
	switch alg {
	case AlgorithmFixedWindow, "":
		return NewFixedWindowLimiter(maxRate, maxKeys, opts)
	case AlgorithmTokenBucket:
		return NewTokenBucketLimiter(maxRate, maxKeys, opts)
	case AlgorithmLeakyBucket:
		return NewLeakyBucketLimiter(maxRate, maxRate.Count-1, maxKeys, opts)
	case AlgorithmSlidingWindow:
		return NewSlidingWindowLimiter(maxRate, maxKeys, opts)
	default:
		return nil, fmt.Errorf("unknown rate limiting algorithm %q", alg)
	}
}
