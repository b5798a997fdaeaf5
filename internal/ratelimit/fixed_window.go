/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/acronis/taskgate/internal/clock"
	"github.com/acronis/taskgate/internal/keyzone"
)

type fixedWindow struct {
	mu    sync.Mutex
	start time.Time
	count int
}

// FixedWindowLimiter allows up to Rate.Count requests per window of Rate.Duration.
// The window of an identity starts at its first request. The counter is reset lazily
// by the first request that arrives at or after the window end, and the new window starts at that request.
type FixedWindowLimiter struct {
	maxRate Rate
	clock   clock.Clock
	windows *keyzone.Zone[*fixedWindow]
}

// NewFixedWindowLimiter creates a new fixed window rate limiter.
func NewFixedWindowLimiter(maxRate Rate, maxKeys int, opts LimiterOpts) (*FixedWindowLimiter, error) {
	windows, err := keyzone.New[*fixedWindow](maxKeys, opts.MetricsCollector)
	if err != nil {
		return nil, fmt.Errorf("new key zone for windows: %w", err)
	}
	clk := opts.Clock
	if clk == nil {
		clk = clock.System{}
	}
	return &FixedWindowLimiter{maxRate: maxRate, clock: clk, windows: windows}, nil
}

// Allow checks if the request should be allowed based on the rate limit.
func (l *FixedWindowLimiter) Allow(_ context.Context, key string) (allow bool, retryAfter time.Duration, err error) {
	w, _ := l.windows.GetOrAdd(key, func() *fixedWindow { return &fixedWindow{} })
	now := l.clock.Now()

	w.mu.Lock()
	defer w.mu.Unlock()

	end := w.start.Add(l.maxRate.Duration)
	if !now.Before(end) {
		w.start = now
		w.count = 0
		end = now.Add(l.maxRate.Duration)
	}
	if w.count < l.maxRate.Count {
		w.count++
		return true, 0, nil
	}
	return false, end.Sub(now), nil
}
