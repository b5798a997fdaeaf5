/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/acronis/taskgate/internal/clock"
)

// FixedWindowLimiterTestSuite contains tests for FixedWindowLimiter
type FixedWindowLimiterTestSuite struct {
	suite.Suite
	clk *clock.Manual
}

func TestFixedWindowLimiter(t *testing.T) {
	suite.Run(t, new(FixedWindowLimiterTestSuite))
}

func (ts *FixedWindowLimiterTestSuite) SetupTest() {
	ts.clk = clock.NewManual(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC))
}

func (ts *FixedWindowLimiterTestSuite) newLimiter(maxRate Rate, maxKeys int) *FixedWindowLimiter {
	limiter, err := NewFixedWindowLimiter(maxRate, maxKeys, LimiterOpts{Clock: ts.clk})
	ts.Require().NoError(err)
	return limiter
}

func (ts *FixedWindowLimiterTestSuite) TestAllowSequential() {
	limiter := ts.newLimiter(Rate{Count: 2, Duration: time.Second}, 100)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		allow, retryAfter, err := limiter.Allow(ctx, "alice")
		ts.NoError(err)
		ts.True(allow)
		ts.Equal(time.Duration(0), retryAfter)
	}

	ts.clk.Advance(300 * time.Millisecond)
	allow, retryAfter, err := limiter.Allow(ctx, "alice")
	ts.NoError(err)
	ts.False(allow)
	ts.Equal(700*time.Millisecond, retryAfter)
}

func (ts *FixedWindowLimiterTestSuite) TestWindowResetsAtWindowEnd() {
	limiter := ts.newLimiter(Rate{Count: 1, Duration: time.Second}, 100)
	ctx := context.Background()

	allow, _, _ := limiter.Allow(ctx, "alice")
	ts.True(allow)

	ts.clk.Advance(999 * time.Millisecond)
	allow, _, _ = limiter.Allow(ctx, "alice")
	ts.False(allow)

	// A request exactly at the window end starts a new window.
	ts.clk.Advance(time.Millisecond)
	allow, _, _ = limiter.Allow(ctx, "alice")
	ts.True(allow)

	// The new window starts at that request, not at a boundary aligned to the previous one.
	ts.clk.Advance(999 * time.Millisecond)
	allow, _, _ = limiter.Allow(ctx, "alice")
	ts.False(allow)
}

func (ts *FixedWindowLimiterTestSuite) TestIdentitiesAreIndependent() {
	limiter := ts.newLimiter(Rate{Count: 1, Duration: time.Minute}, 100)
	ctx := context.Background()

	allow, _, _ := limiter.Allow(ctx, "alice")
	ts.True(allow)
	allow, _, _ = limiter.Allow(ctx, "bob")
	ts.True(allow)
	allow, _, _ = limiter.Allow(ctx, "alice")
	ts.False(allow)
}

func (ts *FixedWindowLimiterTestSuite) TestEvictionResetsWindow() {
	limiter := ts.newLimiter(Rate{Count: 1, Duration: time.Minute}, 1)
	ctx := context.Background()

	allow, _, _ := limiter.Allow(ctx, "alice")
	ts.True(allow)
	allow, _, _ = limiter.Allow(ctx, "bob") // evicts alice
	ts.True(allow)
	allow, _, _ = limiter.Allow(ctx, "alice")
	ts.True(allow)
}
