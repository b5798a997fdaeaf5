/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestKeyPrefixedDataProvider(t *testing.T) {
	va := newTestViperAdapter(t)
	dp := NewKeyPrefixedDataProvider(va, "scheduler")

	interval, err := dp.GetDuration("drainInterval")
	require.NoError(t, err)
	require.Equal(t, 2*time.Second, interval)

	dp.SetDefault("sweepInterval", "30s")
	sweep, err := va.GetDuration("scheduler.sweepInterval")
	require.NoError(t, err)
	require.Equal(t, 30*time.Second, sweep)

	dp.Set("workers", 2)
	workers, err := va.GetInt("scheduler.workers")
	require.NoError(t, err)
	require.Equal(t, 2, workers)

	require.EqualError(t, dp.WrapKeyErr("workers", errTest), "scheduler.workers: test error")
}
