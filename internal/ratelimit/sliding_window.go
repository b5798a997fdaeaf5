/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/RussellLuo/slidingwindow"

	"github.com/acronis/taskgate/internal/clock"
	"github.com/acronis/taskgate/internal/keyzone"
)

// SlidingWindowLimiter implements sliding window rate limiting algorithm.
// The count of the previous window is weighted by its overlap with the sliding window.
type SlidingWindowLimiter struct {
	maxRate Rate
	clock   clock.Clock
	windows *keyzone.Zone[*slidingwindow.Limiter]
}

// NewSlidingWindowLimiter creates a new sliding window rate limiter.
func NewSlidingWindowLimiter(maxRate Rate, maxKeys int, opts LimiterOpts) (*SlidingWindowLimiter, error) {
	windows, err := keyzone.New[*slidingwindow.Limiter](maxKeys, opts.MetricsCollector)
	if err != nil {
		return nil, fmt.Errorf("new key zone for windows: %w", err)
	}
	clk := opts.Clock
	if clk == nil {
		clk = clock.System{}
	}
	return &SlidingWindowLimiter{maxRate: maxRate, clock: clk, windows: windows}, nil
}

// Allow checks if the request should be allowed based on the rate limit.
func (l *SlidingWindowLimiter) Allow(_ context.Context, key string) (allow bool, retryAfter time.Duration, err error) {
	lim, _ := l.windows.GetOrAdd(key, func() *slidingwindow.Limiter {
		lim, _ := slidingwindow.NewLimiter(
			l.maxRate.Duration, int64(l.maxRate.Count), func() (slidingwindow.Window, slidingwindow.StopFunc) {
				return slidingwindow.NewLocalWindow()
			})
		return lim
	})
	now := l.clock.Now()
	if lim.AllowN(now, 1) {
		return true, 0, nil
	}
	retryAfter = now.Truncate(l.maxRate.Duration).Add(l.maxRate.Duration).Sub(now)
	return false, retryAfter, nil
}
