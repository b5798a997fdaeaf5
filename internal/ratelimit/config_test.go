/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package ratelimit

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/acronis/taskgate/config"
)

func TestConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg := NewConfig()
		require.NoError(t, config.NewDefaultLoader("taskgate").Load(cfg))
		want := NewDefaultConfig()
		require.Equal(t, want.MaxKeys, cfg.MaxKeys)
		require.Equal(t, want.Burst, cfg.Burst)
		require.Equal(t, want.Sustained, cfg.Sustained)
		require.Equal(t, Rate{Count: 1, Duration: time.Second}, cfg.Burst.Rate())
		require.Equal(t, Rate{Count: 20, Duration: time.Minute}, cfg.Sustained.Rate())
	})

	t.Run("from yaml", func(t *testing.T) {
		cfg := NewConfig()
		err := config.NewDefaultLoader("taskgate").LoadFromReader(bytes.NewBufferString(`
rateLimit:
  maxKeys: 500
  burst:
    count: 3
    duration: 2s
    algorithm: tokenbucket
  sustained:
    algorithm: slidingWindow
`), config.DataTypeYAML, cfg)
		require.NoError(t, err)
		require.Equal(t, 500, cfg.MaxKeys)
		require.Equal(t, WindowConfig{
			Count: 3, Duration: config.TimeDuration(2 * time.Second), Algorithm: AlgorithmTokenBucket,
		}, cfg.Burst)
		require.Equal(t, WindowConfig{
			Count: 20, Duration: config.TimeDuration(time.Minute), Algorithm: AlgorithmSlidingWindow,
		}, cfg.Sustained)
	})

	t.Run("errors", func(t *testing.T) {
		tests := []struct {
			name    string
			yaml    string
			wantErr string
		}{
			{"zero max keys", "rateLimit:\n  maxKeys: 0\n", "rateLimit.maxKeys: should be > 0"},
			{"zero count", "rateLimit:\n  burst:\n    count: 0\n", "rateLimit.burst.count: should be > 0"},
			{"zero duration", "rateLimit:\n  sustained:\n    duration: 0s\n", "rateLimit.sustained.duration: should be > 0"},
			{
				"unknown algorithm", "rateLimit:\n  burst:\n    algorithm: magic\n",
				`rateLimit.burst.algorithm: unknown value "magic", should be one of [fixedWindow tokenBucket leakyBucket slidingWindow]`,
			},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				err := config.NewDefaultLoader("taskgate").LoadFromReader(
					bytes.NewBufferString(tt.yaml), config.DataTypeYAML, NewConfig())
				require.EqualError(t, err, tt.wantErr)
			})
		}
	})
}
