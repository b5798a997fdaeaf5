/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package tasklog

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/atomic"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/acronis/taskgate/log"
	"github.com/acronis/taskgate/retry"
)

// WriterOpts represents options for NewWriter.
type WriterOpts struct {
	// Sink receives rendered lines. A rotated file described by Config is used when nil.
	Sink io.WriteCloser

	// Metrics may be nil.
	Metrics *PrometheusMetrics
}

// Writer is an asynchronous best-effort writer of the task log.
// Append may be called concurrently, Run must be called once.
type Writer struct {
	sink         io.WriteCloser
	entries      chan Entry
	retryPolicy  retry.Policy
	flushTimeout time.Duration
	logger       log.FieldLogger
	metrics      *PrometheusMetrics
	closed       atomic.Bool
}

// NewWriter creates a new Writer.
func NewWriter(cfg *Config, logger log.FieldLogger, opts WriterOpts) *Writer {
	sink := opts.Sink
	if sink == nil {
		sink = &lumberjack.Logger{
			Filename:   cfg.Path,
			MaxSize:    int(cfg.Rotation.MaxSize / 1024 / 1024),
			MaxBackups: cfg.Rotation.MaxBackups,
			Compress:   cfg.Rotation.Compress,
		}
	}
	queueSize := cfg.QueueSize
	if queueSize < 1 {
		queueSize = defaultQueueSize
	}
	flushTimeout := time.Duration(cfg.FlushTimeout)
	if flushTimeout <= 0 {
		flushTimeout = defaultFlushTimeout
	}
	return &Writer{
		sink:    sink,
		entries: make(chan Entry, queueSize),
		retryPolicy: retry.ConstantBackoffPolicy{
			Interval:   time.Duration(cfg.WriteRetry.Interval),
			MaxRetries: cfg.WriteRetry.Attempts,
		},
		flushTimeout: flushTimeout,
		logger:       logger,
		metrics:      opts.Metrics,
	}
}

// Append puts the entry into the write queue without blocking.
// It returns false when the queue is full and the entry is dropped.
// Entries appended after Run has returned are dropped.
func (w *Writer) Append(entry Entry) bool {
	if w.closed.Load() {
		w.logger.Error("task log is closed, entry is dropped", log.String("identity", entry.Identity))
		w.countFailures(failureReasonClosed, 1)
		return false
	}
	select {
	case w.entries <- entry:
		return true
	default:
		w.logger.Error("task log queue is full, entry is dropped", log.String("identity", entry.Identity))
		w.countFailures(failureReasonQueueFull, 1)
		return false
	}
}

// QueueFull reports whether the next Append would drop the entry.
func (w *Writer) QueueFull() bool {
	return len(w.entries) == cap(w.entries)
}

// Run writes queued entries until ctx is canceled.
// Then it flushes entries that are already queued (within the flush timeout) and closes the sink.
// A write in progress is not interrupted by ctx, it ends when the retry policy gives up.
func (w *Writer) Run(ctx context.Context) error {
	defer func() {
		w.closed.Store(true)
		if err := w.sink.Close(); err != nil {
			w.logger.Error("failed to close task log", log.Error(err))
		}
	}()
	for ctx.Err() == nil {
		select {
		case <-ctx.Done():
		case entry := <-w.entries:
			w.write(context.WithoutCancel(ctx), entry)
		}
	}
	flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), w.flushTimeout)
	defer cancel()
	w.flush(flushCtx)
	return nil
}

func (w *Writer) flush(ctx context.Context) {
	for {
		select {
		case entry := <-w.entries:
			if ctx.Err() != nil {
				w.dropQueued(entry)
				return
			}
			w.write(ctx, entry)
		default:
			return
		}
	}
}

func (w *Writer) dropQueued(first Entry) {
	dropped := 1 + len(w.entries)
	for i := 1; i < dropped; i++ {
		<-w.entries
	}
	w.logger.Error("task log flush timed out, entries are dropped",
		log.String("identity", first.Identity), log.Int("dropped", dropped))
	w.countFailures(failureReasonFlushTimeout, dropped)
}

func (w *Writer) countFailures(reason string, n int) {
	if w.metrics != nil {
		w.metrics.WriteFailures.WithLabelValues(reason).Add(float64(n))
	}
}

func (w *Writer) write(ctx context.Context, entry Entry) {
	line := []byte(entry.Line())
	notify := func(err error, next time.Duration) {
		w.logger.Warn("task log write failed, will retry",
			log.String("identity", entry.Identity), log.Error(err), log.Duration("retry_in", next))
		if w.metrics != nil {
			w.metrics.WriteRetries.Inc()
		}
	}
	err := retry.DoWithRetry(ctx, w.retryPolicy, nil, notify, func(ctx context.Context) error {
		if _, err := w.sink.Write(line); err != nil {
			return fmt.Errorf("write task log line: %w", err)
		}
		return nil
	})
	if err != nil {
		w.logger.Error("task log write failed", log.String("identity", entry.Identity), log.Error(err))
		w.countFailures(failureReasonWriteError, 1)
		return
	}
	if w.metrics != nil {
		w.metrics.EntriesWritten.Inc()
	}
}

// MustRegisterMetrics registers metrics of the writer in Prometheus.
func (w *Writer) MustRegisterMetrics() {
	if w.metrics != nil {
		w.metrics.MustRegister()
	}
}

// UnregisterMetrics unregisters metrics of the writer.
func (w *Writer) UnregisterMetrics() {
	if w.metrics != nil {
		w.metrics.Unregister()
	}
}
