/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package task

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/acronis/taskgate/internal/clock"
	"github.com/acronis/taskgate/internal/tasklog"
	"github.com/acronis/taskgate/log/logtest"
)

type recordingLog struct {
	mu      sync.Mutex
	entries []tasklog.Entry
	reject  bool
}

func (l *recordingLog) Append(entry tasklog.Entry) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.reject {
		return false
	}
	l.entries = append(l.entries, entry)
	return true
}

func TestRunnerRun(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	taskLog := &recordingLog{}
	logRecorder := logtest.NewRecorder()
	runner := NewRunner(taskLog, logRecorder, RunnerOpts{Clock: clock.NewManual(now)})

	completion := runner.Run(context.Background(), "alice")
	require.Equal(t, Completion{Identity: "alice", CompletedAt: now}, completion)
	require.Equal(t, []tasklog.Entry{{Identity: "alice", CompletedAt: now}}, taskLog.entries)

	entry, found := logRecorder.FindEntry("task completed")
	require.True(t, found)
	require.Equal(t, "alice", entry.FieldString("identity"))
	require.Equal(t, SourceSubmission, entry.FieldString("source"))
	require.Equal(t, 1.0, testutil.ToFloat64(runner.CompletedTotal(SourceSubmission)))

	runner.Run(WithSource(context.Background(), SourceBacklog), "alice")
	require.Equal(t, 1.0, testutil.ToFloat64(runner.CompletedTotal(SourceBacklog)))
	require.Len(t, taskLog.entries, 2)
}

func TestRunnerIgnoresTaskLogFailures(t *testing.T) {
	runner := NewRunner(&recordingLog{reject: true}, logtest.NewRecorder(), RunnerOpts{})
	completion := runner.Run(context.Background(), "bob")
	require.Equal(t, "bob", completion.Identity)
	require.Equal(t, 1.0, testutil.ToFloat64(runner.CompletedTotal(SourceSubmission)))
}
