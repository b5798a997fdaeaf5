/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDoWithRetry(t *testing.T) {
	errWrite := errors.New("write failed")
	errPermanent := errors.New("permanent")

	t.Run("succeeds after retries", func(t *testing.T) {
		var attempts, notified int
		err := DoWithRetry(context.Background(), ConstantBackoffPolicy{Interval: time.Millisecond, MaxRetries: 3}, nil,
			func(err error, d time.Duration) { notified++ },
			func(ctx context.Context) error {
				attempts++
				if attempts < 3 {
					return errWrite
				}
				return nil
			})
		require.NoError(t, err)
		require.Equal(t, 3, attempts)
		require.Equal(t, 2, notified)
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		var attempts int
		err := DoWithRetry(context.Background(), ConstantBackoffPolicy{Interval: time.Millisecond, MaxRetries: 2}, nil, nil,
			func(ctx context.Context) error {
				attempts++
				return errWrite
			})
		require.ErrorIs(t, err, errWrite)
		require.Equal(t, 3, attempts)
	})

	t.Run("zero max retries makes a single attempt", func(t *testing.T) {
		var attempts, notified int
		err := DoWithRetry(context.Background(), ConstantBackoffPolicy{Interval: time.Millisecond}, nil,
			func(err error, d time.Duration) { notified++ },
			func(ctx context.Context) error {
				attempts++
				return errWrite
			})
		require.ErrorIs(t, err, errWrite)
		require.Equal(t, 1, attempts)
		require.Equal(t, 0, notified)
	})

	t.Run("non-retryable error", func(t *testing.T) {
		var attempts int
		err := DoWithRetry(context.Background(), ConstantBackoffPolicy{Interval: time.Millisecond, MaxRetries: 5},
			func(err error) bool { return !errors.Is(err, errPermanent) }, nil,
			func(ctx context.Context) error {
				attempts++
				return errPermanent
			})
		require.ErrorIs(t, err, errPermanent)
		require.Equal(t, 1, attempts)
	})

	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := DoWithRetry(ctx, ConstantBackoffPolicy{Interval: time.Hour}, nil, nil,
			func(ctx context.Context) error { return errWrite })
		require.Error(t, err)
	})
}
