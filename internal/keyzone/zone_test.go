/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package keyzone

import (
	"strconv"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	_, err := New[int](0, nil)
	require.EqualError(t, err, "maxKeys must be greater than 0")

	z, err := New[int](1, nil)
	require.NoError(t, err)
	require.Equal(t, 0, len(z.entries))
}

func TestZoneGetOrAdd(t *testing.T) {
	z, err := New[*int](10, nil)
	require.NoError(t, err)

	calls := 0
	newCounter := func() *int {
		calls++
		return new(int)
	}

	v1, exists := z.GetOrAdd("alice", newCounter)
	require.False(t, exists)
	*v1 = 5

	v2, exists := z.GetOrAdd("alice", newCounter)
	require.True(t, exists)
	require.Equal(t, 5, *v2)
	require.Same(t, v1, v2)
	require.Equal(t, 1, calls)

	_, exists = z.GetOrAdd("bob", newCounter)
	require.False(t, exists)
	require.Equal(t, 2, calls)
	require.Equal(t, 2, len(z.entries))
}

func TestZoneEviction(t *testing.T) {
	metrics := NewPrometheusMetrics("test")
	z, err := New[string](2, metrics.ForZone("burst"))
	require.NoError(t, err)

	z.GetOrAdd("alice", func() string { return "a" })
	z.GetOrAdd("bob", func() string { return "b" })
	_, exists := z.GetOrAdd("alice", func() string { return "a2" }) // bob becomes the least recently used
	require.True(t, exists)
	z.GetOrAdd("carol", func() string { return "c" })

	require.Equal(t, 2, len(z.entries))
	v, exists := z.GetOrAdd("alice", func() string { return "a2" })
	require.True(t, exists)
	require.Equal(t, "a", v)

	require.Equal(t, 2.0, testutil.ToFloat64(metrics.Identities.WithLabelValues("burst")))
	require.Equal(t, 1.0, testutil.ToFloat64(metrics.EvictionsTotal.WithLabelValues("burst")))

	// An evicted identity starts from a fresh state.
	v, exists = z.GetOrAdd("bob", func() string { return "fresh" })
	require.False(t, exists)
	require.Equal(t, "fresh", v)
}

func TestZoneConcurrentAccess(t *testing.T) {
	z, err := New[int](50, nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			z.GetOrAdd(strconv.Itoa(i%100), func() int { return i })
		}(i)
	}
	wg.Wait()
	require.Equal(t, 50, len(z.entries))
}
