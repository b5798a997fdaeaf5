/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package backlog

import (
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var testTime = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func TestNewToken(t *testing.T) {
	token := NewToken("alice", testTime)
	require.Equal(t, "alice", token.Identity)
	require.Equal(t, testTime, token.EnqueuedAt)
	_, err := uuid.Parse(token.ID)
	require.NoError(t, err)
	require.NotEqual(t, token.ID, NewToken("alice", testTime).ID)
}

func TestMemoryStoreFIFO(t *testing.T) {
	s, err := NewMemoryStore(0)
	require.NoError(t, err)

	d1, d2, d3 := NewToken("alice", testTime), NewToken("alice", testTime), NewToken("alice", testTime)
	for _, token := range []Token{d1, d2, d3} {
		require.NoError(t, s.Enqueue(token))
	}
	require.NoError(t, s.Enqueue(NewToken("bob", testTime)))

	require.Equal(t, 3, s.Len("alice"))
	require.Equal(t, 4, s.Total())
	require.Equal(t, []string{"alice", "bob"}, s.Identities())

	for _, want := range []Token{d1, d2, d3} {
		got, ok := s.Dequeue("alice")
		require.True(t, ok)
		require.Equal(t, want, got)
	}
	_, ok := s.Dequeue("alice")
	require.False(t, ok)

	// Empty sequences are removed.
	require.Equal(t, []string{"bob"}, s.Identities())
	require.Equal(t, 0, s.Len("alice"))
	require.Equal(t, 1, s.Total())
}

func TestMemoryStoreRequeue(t *testing.T) {
	s, err := NewMemoryStore(0)
	require.NoError(t, err)

	d1, d2 := NewToken("alice", testTime), NewToken("alice", testTime)
	require.NoError(t, s.Enqueue(d1))
	require.NoError(t, s.Enqueue(d2))

	head, ok := s.Dequeue("alice")
	require.True(t, ok)
	s.Requeue(head)
	require.Equal(t, 2, s.Len("alice"))
	require.Equal(t, 2, s.Total())
	for _, want := range []Token{d1, d2} {
		got, ok := s.Dequeue("alice")
		require.True(t, ok)
		require.Equal(t, want, got)
	}
}

func TestMemoryStoreBoundHoldsDequeuedSlot(t *testing.T) {
	s, err := NewMemoryStore(2)
	require.NoError(t, err)
	require.NoError(t, s.Enqueue(NewToken("alice", testTime)))
	require.NoError(t, s.Enqueue(NewToken("alice", testTime)))

	head, ok := s.Dequeue("alice")
	require.True(t, ok)
	require.ErrorIs(t, s.Enqueue(NewToken("alice", testTime)), ErrBacklogFull)

	s.Requeue(head)
	require.Equal(t, 2, s.Len("alice"))
	require.ErrorIs(t, s.Enqueue(NewToken("alice", testTime)), ErrBacklogFull)

	_, ok = s.Dequeue("alice")
	require.True(t, ok)
	s.Release("alice")
	require.NoError(t, s.Enqueue(NewToken("alice", testTime)))
	require.Equal(t, 2, s.Len("alice"))
	require.ErrorIs(t, s.Enqueue(NewToken("alice", testTime)), ErrBacklogFull)
}

func TestMemoryStoreBound(t *testing.T) {
	_, err := NewMemoryStore(-1)
	require.EqualError(t, err, "max tasks per identity should not be negative, got -1")

	s, err := NewMemoryStore(2)
	require.NoError(t, err)
	require.NoError(t, s.Enqueue(NewToken("alice", testTime)))
	require.NoError(t, s.Enqueue(NewToken("alice", testTime)))
	require.ErrorIs(t, s.Enqueue(NewToken("alice", testTime)), ErrBacklogFull)
	require.NoError(t, s.Enqueue(NewToken("bob", testTime)))
	require.Equal(t, 3, s.Total())
}

func TestMemoryStoreConcurrentEnqueue(t *testing.T) {
	s, err := NewMemoryStore(0)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			require.NoError(t, s.Enqueue(NewToken("user"+strconv.Itoa(i%5), testTime)))
		}(i)
	}
	wg.Wait()
	require.Equal(t, 100, s.Total())
	require.Len(t, s.Identities(), 5)
	require.Equal(t, 20, s.Len("user0"))
}
