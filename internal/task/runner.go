/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

// Package task executes the standard task of an identity.
package task

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/acronis/taskgate/internal/clock"
	"github.com/acronis/taskgate/internal/tasklog"
	"github.com/acronis/taskgate/log"
)

// Log accepts entries of completed tasks.
type Log interface {
	Append(entry tasklog.Entry) bool
}

// Completion describes a finished task.
type Completion struct {
	Identity    string
	CompletedAt time.Time
}

// Runner executes tasks. It's safe for concurrent use.
type Runner struct {
	taskLog   Log
	logger    log.FieldLogger
	clock     clock.Clock
	completed *prometheus.CounterVec
}

// RunnerOpts represents options for NewRunner.
type RunnerOpts struct {
	Clock clock.Clock

	// MetricsNamespace is prepended to the name of the completed tasks counter.
	MetricsNamespace string
}

// NewRunner creates a new Runner.
func NewRunner(taskLog Log, logger log.FieldLogger, opts RunnerOpts) *Runner {
	if opts.Clock == nil {
		opts.Clock = clock.System{}
	}
	return &Runner{
		taskLog: taskLog,
		logger:  logger,
		clock:   opts.Clock,
		completed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: opts.MetricsNamespace,
			Name:      "tasks_completed_total",
			Help:      "Number of completed tasks.",
		}, []string{"source"}),
	}
}

type sourceKey struct{}

// Sources of task execution.
const (
	SourceSubmission = "submission"
	SourceBacklog    = "backlog"
)

// WithSource returns a copy of ctx which tells the runner where the task comes from.
func WithSource(ctx context.Context, source string) context.Context {
	return context.WithValue(ctx, sourceKey{}, source)
}

func sourceFrom(ctx context.Context) string {
	if source, ok := ctx.Value(sourceKey{}).(string); ok {
		return source
	}
	return SourceSubmission
}

// Run executes the task of the identity. It submits an entry to the task log and records the completion.
// Task log failures never fail the run.
func (r *Runner) Run(ctx context.Context, identity string) Completion {
	c := Completion{Identity: identity, CompletedAt: r.clock.Now()}
	r.taskLog.Append(tasklog.Entry{Identity: c.Identity, CompletedAt: c.CompletedAt})

	source := sourceFrom(ctx)
	r.completed.WithLabelValues(source).Inc()
	r.logger.Info("task completed",
		log.String("identity", identity), log.String("source", source), log.Time("completed_at", c.CompletedAt))
	return c
}

// MustRegisterMetrics registers metrics of the runner in Prometheus.
func (r *Runner) MustRegisterMetrics() {
	prometheus.MustRegister(r.completed)
}

// UnregisterMetrics unregisters metrics of the runner.
func (r *Runner) UnregisterMetrics() {
	prometheus.Unregister(r.completed)
}

// CompletedTotal returns the counter of tasks completed from the given source.
func (r *Runner) CompletedTotal(source string) prometheus.Counter {
	return r.completed.WithLabelValues(source)
}
