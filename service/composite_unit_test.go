/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
)

type mockUnit struct {
	startErr error
	stopErr  error
	started  atomic.Bool
	stopped  atomic.Bool
	metrics  atomic.Int32
}

func (u *mockUnit) Start(fatalErr chan<- error) {
	u.started.Store(true)
	if u.startErr != nil {
		fatalErr <- u.startErr
	}
}

func (u *mockUnit) Stop(gracefully bool) error {
	u.stopped.Store(true)
	return u.stopErr
}

func (u *mockUnit) MustRegisterMetrics() { u.metrics.Inc() }

func (u *mockUnit) UnregisterMetrics() { u.metrics.Dec() }

func TestCompositeUnit_Start(t *testing.T) {
	t.Run("all units start", func(t *testing.T) {
		u1, u2 := &mockUnit{}, &mockUnit{}
		fatalErr := make(chan error, 1)
		NewCompositeUnit(u1, u2).Start(fatalErr)

		require.True(t, u1.started.Load())
		require.True(t, u2.started.Load())
		require.False(t, u1.stopped.Load())
		require.Empty(t, fatalErr)
	})

	t.Run("failed unit stops the others", func(t *testing.T) {
		startErr := errors.New("listen tcp :3000: address already in use")
		stopErr := errors.New("flush task log")
		u1, u2 := &mockUnit{startErr: startErr}, &mockUnit{stopErr: stopErr}
		fatalErr := make(chan error, 1)
		NewCompositeUnit(u1, u2).Start(fatalErr)

		err := <-fatalErr
		var cuErr *CompositeUnitError
		require.ErrorAs(t, err, &cuErr)
		require.ErrorIs(t, err, startErr)
		require.ErrorIs(t, err, stopErr)
		require.True(t, u2.stopped.Load())
	})
}

func TestCompositeUnit_Stop(t *testing.T) {
	stopErr := errors.New("stop failed")
	u1, u2 := &mockUnit{}, &mockUnit{stopErr: stopErr}
	err := NewCompositeUnit(u1, u2).Stop(true)
	require.EqualError(t, err, "stop failed")
	require.True(t, u1.stopped.Load())

	require.NoError(t, NewCompositeUnit(&mockUnit{}).Stop(true))
}

func TestCompositeUnit_Metrics(t *testing.T) {
	u1, u2 := &mockUnit{}, &mockUnit{}
	cu := NewCompositeUnit(u1, u2)
	cu.MustRegisterMetrics()
	require.Equal(t, int32(1), u1.metrics.Load())
	require.Equal(t, int32(1), u2.metrics.Load())
	cu.UnregisterMetrics()
	require.Zero(t, u1.metrics.Load())
}
