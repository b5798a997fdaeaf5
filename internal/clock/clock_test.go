/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package clock

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestManual(t *testing.T) {
	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	clk := NewManual(start)
	require.Equal(t, start, clk.Now())

	clk.Advance(1500 * time.Millisecond)
	require.Equal(t, start.Add(1500*time.Millisecond), clk.Now())

	clk.Advance(-time.Hour)
	require.Equal(t, start.Add(1500*time.Millisecond), clk.Now())

	clk.Set(start)
	require.Equal(t, start, clk.Now())
}

func TestManualConcurrentAdvance(t *testing.T) {
	start := time.Unix(0, 0)
	clk := NewManual(start)
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			clk.Advance(time.Millisecond)
		}()
	}
	wg.Wait()
	require.Equal(t, start.Add(100*time.Millisecond), clk.Now())
}

func TestSystem(t *testing.T) {
	before := time.Now()
	now := System{}.Now()
	require.False(t, now.Before(before))
}
