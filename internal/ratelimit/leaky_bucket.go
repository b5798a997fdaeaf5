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

	"github.com/throttled/throttled/v2"

	"github.com/acronis/taskgate/internal/clock"
	"github.com/acronis/taskgate/internal/keyzone"
)

// LeakyBucketLimiter implements GCRA (Generic Cell Rate Algorithm). It's a leaky bucket variant algorithm.
// More details and good explanation of this alg is provided here: https://brandur.org/rate-limiting#gcra.
// The theoretical arrival time of every identity is kept in a key zone.
type LeakyBucketLimiter struct {
	limiter *throttled.GCRARateLimiterCtx
}

// NewLeakyBucketLimiter creates a new leaky bucket rate limiter.
// maxBurst is the number of tasks allowed on top of the first one before the rate applies.
func NewLeakyBucketLimiter(maxRate Rate, maxBurst, maxKeys int, opts LimiterOpts) (*LeakyBucketLimiter, error) {
	cells, err := keyzone.New[*gcraCell](maxKeys, opts.MetricsCollector)
	if err != nil {
		return nil, fmt.Errorf("new key zone for GCRA cells: %w", err)
	}
	clk := opts.Clock
	if clk == nil {
		clk = clock.System{}
	}
	quota := throttled.RateQuota{
		MaxRate:  throttled.PerDuration(maxRate.Count, maxRate.Duration),
		MaxBurst: maxBurst,
	}
	gcraLimiter, err := throttled.NewGCRARateLimiterCtx(&gcraStore{cells: cells, clock: clk}, quota)
	if err != nil {
		return nil, fmt.Errorf("new GCRA rate limiter: %w", err)
	}
	return &LeakyBucketLimiter{limiter: gcraLimiter}, nil
}

// Allow checks if the request should be allowed based on the rate limit.
func (l *LeakyBucketLimiter) Allow(ctx context.Context, key string) (allow bool, retryAfter time.Duration, err error) {
	limited, res, err := l.limiter.RateLimitCtx(ctx, key, 1)
	if err != nil {
		return false, 0, fmt.Errorf("check GCRA rate limit: %w", err)
	}
	return !limited, res.RetryAfter, nil
}

type gcraCell struct {
	mu        sync.Mutex
	tat       int64
	set       bool
	expiresAt time.Time
}

func (c *gcraCell) loadLocked(now time.Time) (int64, bool) {
	if !c.set || (!c.expiresAt.IsZero() && !now.Before(c.expiresAt)) {
		return -1, false
	}
	return c.tat, true
}

func (c *gcraCell) storeLocked(tat int64, now time.Time, ttl time.Duration) {
	c.tat = tat
	c.set = true
	c.expiresAt = time.Time{}
	if ttl > 0 {
		c.expiresAt = now.Add(ttl)
	}
}

// gcraStore implements throttled.GCRAStoreCtx on top of a key zone.
// An evicted identity loses its cell, so its next swap fails and throttled starts it over.
type gcraStore struct {
	cells *keyzone.Zone[*gcraCell]
	clock clock.Clock
}

var _ throttled.GCRAStoreCtx = (*gcraStore)(nil)

func (s *gcraStore) cell(key string) *gcraCell {
	c, _ := s.cells.GetOrAdd(key, func() *gcraCell { return &gcraCell{} })
	return c
}

func (s *gcraStore) GetWithTime(_ context.Context, key string) (int64, time.Time, error) {
	now := s.clock.Now()
	c := s.cell(key)
	c.mu.Lock()
	defer c.mu.Unlock()
	tat, _ := c.loadLocked(now)
	return tat, now, nil
}

func (s *gcraStore) SetIfNotExistsWithTTL(_ context.Context, key string, value int64, ttl time.Duration) (bool, error) {
	now := s.clock.Now()
	c := s.cell(key)
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.loadLocked(now); ok {
		return false, nil
	}
	c.storeLocked(value, now, ttl)
	return true, nil
}

func (s *gcraStore) CompareAndSwapWithTTL(_ context.Context, key string, oldTAT, newTAT int64, ttl time.Duration) (bool, error) {
	now := s.clock.Now()
	c := s.cell(key)
	c.mu.Lock()
	defer c.mu.Unlock()
	if tat, ok := c.loadLocked(now); !ok || tat != oldTAT {
		return false, nil
	}
	c.storeLocked(newTAT, now, ttl)
	return true, nil
}
