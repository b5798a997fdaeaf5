/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

// Package backlog keeps tasks that were denied admission, in arrival order per identity.
package backlog

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrBacklogFull is returned by Enqueue when the backlog of the identity reached its bound.
var ErrBacklogFull = errors.New("backlog is full")

// Token is a record of one deferred task. It is never mutated once created.
type Token struct {
	ID         string
	Identity   string
	EnqueuedAt time.Time
}

// NewToken creates a token for the identity.
func NewToken(identity string, enqueuedAt time.Time) Token {
	return Token{ID: uuid.NewString(), Identity: identity, EnqueuedAt: enqueuedAt}
}

// Store is a per-identity FIFO of deferred tasks.
type Store interface {
	// Enqueue appends the token to the tail of its identity sequence.
	Enqueue(token Token) error

	// Dequeue removes and returns the head of the identity sequence.
	// The token keeps its slot until it's requeued or released.
	Dequeue(identity string) (Token, bool)

	// Requeue puts the dequeued token back to the head of its identity sequence.
	Requeue(token Token)

	// Release frees the slot of the dequeued token that will not be requeued.
	Release(identity string)

	// Len returns the number of pending tokens of the identity.
	Len(identity string) int

	// Identities returns identities that have pending tokens.
	Identities() []string

	// Total returns the number of pending tokens of all identities.
	Total() int
}
