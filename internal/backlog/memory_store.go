/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package backlog

import (
	"fmt"
	"sort"
	"sync"
)

// MemoryStore is an in-memory Store. It's safe for concurrent use.
type MemoryStore struct {
	maxPerIdentity int

	mu       sync.Mutex
	queues   map[string][]Token
	inflight map[string]int
	total    int
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates a new MemoryStore.
// Zero maxPerIdentity means the backlog of an identity is unbounded.
func NewMemoryStore(maxPerIdentity int) (*MemoryStore, error) {
	if maxPerIdentity < 0 {
		return nil, fmt.Errorf("max tasks per identity should not be negative, got %d", maxPerIdentity)
	}
	return &MemoryStore{
		maxPerIdentity: maxPerIdentity,
		queues:         make(map[string][]Token),
		inflight:       make(map[string]int),
	}, nil
}

// Enqueue appends the token to the tail of its identity sequence.
// Dequeued tokens that are not released yet count against the bound.
func (s *MemoryStore) Enqueue(token Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := s.queues[token.Identity]
	if s.maxPerIdentity > 0 && len(q)+s.inflight[token.Identity] >= s.maxPerIdentity {
		return ErrBacklogFull
	}
	s.queues[token.Identity] = append(q, token)
	s.total++
	return nil
}

// Dequeue removes and returns the head of the identity sequence.
func (s *MemoryStore) Dequeue(identity string) (Token, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := s.queues[identity]
	if len(q) == 0 {
		return Token{}, false
	}
	token := q[0]
	q[0] = Token{}
	if len(q) == 1 {
		delete(s.queues, identity)
	} else {
		s.queues[identity] = q[1:]
	}
	s.inflight[identity]++
	s.total--
	return token, true
}

// Requeue puts the dequeued token back to the head of its identity sequence.
// The token takes its own slot back, so the bound holds.
func (s *MemoryStore) Requeue(token Token) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.releaseLocked(token.Identity)
	q := s.queues[token.Identity]
	s.queues[token.Identity] = append([]Token{token}, q...)
	s.total++
}

// Release frees the slot of the dequeued token that will not be requeued.
func (s *MemoryStore) Release(identity string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.releaseLocked(identity)
}

func (s *MemoryStore) releaseLocked(identity string) {
	switch n := s.inflight[identity]; {
	case n > 1:
		s.inflight[identity] = n - 1
	case n == 1:
		delete(s.inflight, identity)
	}
}

// Len returns the number of pending tokens of the identity.
func (s *MemoryStore) Len(identity string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queues[identity])
}

// Identities returns identities that have pending tokens, sorted.
func (s *MemoryStore) Identities() []string {
	s.mu.Lock()
	identities := make([]string, 0, len(s.queues))
	for identity := range s.queues {
		identities = append(identities, identity)
	}
	s.mu.Unlock()
	sort.Strings(identities)
	return identities
}

// Total returns the number of pending tokens of all identities.
func (s *MemoryStore) Total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}
