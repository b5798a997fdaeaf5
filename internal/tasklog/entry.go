/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

// Package tasklog writes the append-only audit trail of completed tasks.
//
// Appending never blocks the caller: entries go to a bounded queue
// and are written to the sink by Writer.Run in arrival order.
package tasklog

import "time"

const completedAtLayout = "2006-01-02T15:04:05.000Z"

// Entry is a record of one completed task.
type Entry struct {
	Identity    string
	CompletedAt time.Time
}

// Line renders the entry as one line of the task log.
func (e Entry) Line() string {
	return e.Identity + " - task completed at - " + e.CompletedAt.UTC().Format(completedAtLayout) + "\n"
}
