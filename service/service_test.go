/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package service

import (
	"context"
	"errors"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/acronis/taskgate/log/logtest"
)

func TestService_StartContext(t *testing.T) {
	t.Run("stops on signal", func(t *testing.T) {
		unit := &mockUnit{}
		logRecorder := logtest.NewRecorder()
		svc := NewWithOpts(logRecorder, unit, Opts{})
		go func() {
			time.Sleep(20 * time.Millisecond)
			svc.Signals <- syscall.SIGTERM
		}()

		require.NoError(t, svc.Start())
		require.True(t, unit.stopped.Load())
		require.Zero(t, unit.metrics.Load())
		entry, found := logRecorder.FindEntry("service got signal")
		require.True(t, found)
		require.Equal(t, syscall.SIGTERM.String(), entry.FieldString("signal"))
	})

	t.Run("stops on context cancellation", func(t *testing.T) {
		unit := &mockUnit{}
		svc := NewWithOpts(logtest.NewRecorder(), unit, Opts{ShutdownSignals: []os.Signal{syscall.SIGUSR1}})
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		require.NoError(t, svc.StartContext(ctx))
		require.True(t, unit.stopped.Load())
	})

	t.Run("fatal error", func(t *testing.T) {
		startErr := errors.New("boom")
		svc := New(logtest.NewRecorder(), &mockUnit{startErr: startErr})
		err := svc.Start()
		require.ErrorIs(t, err, startErr)
	})

	t.Run("stop error", func(t *testing.T) {
		stopErr := errors.New("flush failed")
		svc := NewWithOpts(logtest.NewRecorder(), &mockUnit{stopErr: stopErr}, Opts{})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		require.ErrorIs(t, svc.StartContext(ctx), stopErr)
	})
}
