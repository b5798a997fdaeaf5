/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

// Package scheduler decides what happens to a submitted task: it runs now or waits in the backlog.
//
// Every identity is either Idle or Draining. An admitted submission starts draining of its identity:
// a loop that waits for the drain interval, takes the head of the identity backlog and asks the gate again.
// A denied task is put back to the head, an admitted one is run. The loop ends (the identity becomes Idle)
// when the backlog of the identity is empty. A denied submission only appends to the backlog.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/atomic"

	"github.com/acronis/taskgate/internal/backlog"
	"github.com/acronis/taskgate/internal/clock"
	"github.com/acronis/taskgate/internal/task"
	"github.com/acronis/taskgate/log"
	"github.com/acronis/taskgate/service"
)

// Outcome is the result of a task submission.
type Outcome int

// Submission outcomes.
const (
	OutcomeAdmitted Outcome = iota
	OutcomeQueued
	OutcomeDropped
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAdmitted:
		return "admitted"
	case OutcomeQueued:
		return "queued"
	case OutcomeDropped:
		return "dropped"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// Admitter decides whether a task of the identity may run now.
type Admitter interface {
	TryAdmit(ctx context.Context, identity string) (bool, error)
}

// Runner executes a task of the identity.
type Runner interface {
	Run(ctx context.Context, identity string) task.Completion
}

// Opts represents options for New.
type Opts struct {
	Clock clock.Clock

	// Metrics may be shared by several schedulers. Instance distinguishes them.
	Metrics  *PrometheusMetrics
	Instance string
}

// Scheduler admits submitted tasks and drains the backlog of deferred ones.
// It implements service.Unit, Start runs the optional starvation sweep.
type Scheduler struct {
	gate          Admitter
	backlog       backlog.Store
	runner        Runner
	logger        log.FieldLogger
	clock         clock.Clock
	drainInterval time.Duration
	sweepInterval time.Duration
	metrics       *instanceMetrics

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	draining map[string]struct{}
	stopped  bool

	activeDrains atomic.Int32
}

var _ service.Unit = (*Scheduler)(nil)

// New creates a new Scheduler.
func New(
	gate Admitter, store backlog.Store, runner Runner, logger log.FieldLogger, cfg *Config, opts Opts,
) *Scheduler {
	if opts.Clock == nil {
		opts.Clock = clock.System{}
	}
	if opts.Metrics == nil {
		opts.Metrics = NewPrometheusMetrics("")
	}
	drainInterval := time.Duration(cfg.DrainInterval)
	if drainInterval <= 0 {
		drainInterval = defaultDrainInterval
	}
	if opts.Instance != "" {
		logger = logger.With(log.String("instance", opts.Instance))
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		gate:          gate,
		backlog:       store,
		runner:        runner,
		logger:        logger,
		clock:         opts.Clock,
		drainInterval: drainInterval,
		sweepInterval: time.Duration(cfg.SweepInterval),
		metrics:       opts.Metrics.forInstance(opts.Instance),
		ctx:           ctx,
		cancel:        cancel,
		draining:      make(map[string]struct{}),
	}
}

// Submit runs the task of the identity if the gate admits it, otherwise defers the task.
// An error is returned only when the admission decision could not be made.
func (s *Scheduler) Submit(ctx context.Context, identity string) (Outcome, error) {
	admitted, err := s.gate.TryAdmit(ctx, identity)
	if err != nil {
		return OutcomeDropped, fmt.Errorf("admit task: %w", err)
	}

	if admitted {
		s.runner.Run(task.WithSource(ctx, task.SourceSubmission), identity)
		s.armDrain(identity)
		return OutcomeAdmitted, nil
	}

	token := backlog.NewToken(identity, s.clock.Now())
	if err = s.backlog.Enqueue(token); err != nil {
		if errors.Is(err, backlog.ErrBacklogFull) {
			s.metrics.dropped.Inc()
			s.logger.Warn("task is rate limited and dropped, backlog is full", log.String("identity", identity))
			return OutcomeDropped, nil
		}
		return OutcomeDropped, fmt.Errorf("enqueue task: %w", err)
	}
	s.metrics.queued.Inc()
	s.observeBacklog()
	s.logger.Debug("task is rate limited and queued",
		log.String("identity", identity), log.String("token_id", token.ID))
	return OutcomeQueued, nil
}

// IsDraining reports whether a drain loop exists for the identity.
func (s *Scheduler) IsDraining(identity string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.draining[identity]
	return ok
}

// ActiveDrains returns the number of identities being drained.
func (s *Scheduler) ActiveDrains() int {
	return int(s.activeDrains.Load())
}

// Backlog returns the backlog of the scheduler.
func (s *Scheduler) Backlog() backlog.Store {
	return s.backlog
}

// Sweep starts draining for every identity that has deferred tasks and is Idle.
func (s *Scheduler) Sweep(_ context.Context) error {
	armed := 0
	for _, identity := range s.backlog.Identities() {
		if s.armDrain(identity) {
			armed++
		}
	}
	if armed > 0 {
		s.logger.Info("sweep started draining of starving identities", log.Int("identities", armed))
	}
	return nil
}

// Start runs the starvation sweep if it's enabled. It doesn't block.
func (s *Scheduler) Start(_ chan<- error) {
	if s.sweepInterval <= 0 {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		sweeper := service.NewPeriodicWorkerWithOpts(service.WorkerFunc(s.Sweep), s.sweepInterval, s.logger,
			service.PeriodicWorkerOpts{Name: "backlog-sweep", InitialDelay: s.sweepInterval})
		_ = sweeper.Run(s.ctx)
	}()
}

// Stop abandons all drain loops. Deferred tasks stay in the backlog.
// If gracefully is true, Stop waits until the loops exit.
func (s *Scheduler) Stop(gracefully bool) error {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()

	s.cancel()
	if gracefully {
		s.wg.Wait()
	}
	return nil
}

func (s *Scheduler) armDrain(identity string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return false
	}
	if _, ok := s.draining[identity]; ok {
		return false
	}
	s.draining[identity] = struct{}{}
	s.activeDrains.Inc()
	s.metrics.activeDrains.Inc()
	s.wg.Add(1)
	go s.drainLoop(identity)
	return true
}

func (s *Scheduler) drainLoop(identity string) {
	defer func() {
		s.activeDrains.Dec()
		s.metrics.activeDrains.Dec()
		s.wg.Done()
	}()

	timer := time.NewTimer(s.drainInterval)
	defer timer.Stop()
	for {
		select {
		case <-s.ctx.Done():
			s.setIdle(identity)
			return
		case <-timer.C:
		}

		token, ok := s.dequeueOrSetIdle(identity)
		if !ok {
			return
		}
		s.drainToken(token)
		timer.Reset(s.drainInterval)
	}
}

// dequeueOrSetIdle makes the identity Idle when its backlog is empty.
// Checking the backlog and leaving the draining set happen under one lock, so armDrain never sees a stale state.
func (s *Scheduler) dequeueOrSetIdle(identity string) (backlog.Token, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, ok := s.backlog.Dequeue(identity)
	if !ok {
		delete(s.draining, identity)
	}
	return token, ok
}

func (s *Scheduler) setIdle(identity string) {
	s.mu.Lock()
	delete(s.draining, identity)
	s.mu.Unlock()
}

func (s *Scheduler) drainToken(token backlog.Token) {
	logger := s.logger.With(log.String("identity", token.Identity), log.String("token_id", token.ID))

	admitted, err := s.gate.TryAdmit(s.ctx, token.Identity)
	if err != nil {
		s.backlog.Requeue(token)
		logger.Error("failed to check admission of queued task", log.Error(err))
		return
	}
	if !admitted {
		s.backlog.Requeue(token)
		logger.Debug("queued task is still rate limited")
		return
	}

	s.backlog.Release(token.Identity)
	s.observeBacklog()
	waited := s.clock.Now().Sub(token.EnqueuedAt)
	s.metrics.drained.Inc()
	s.metrics.backlogWait.Observe(waited.Seconds())
	s.runner.Run(task.WithSource(s.ctx, task.SourceBacklog), token.Identity)
	logger.Debug("queued task is run", log.Duration("waited", waited))
}

func (s *Scheduler) observeBacklog() {
	s.metrics.backlogTasks.Set(float64(s.backlog.Total()))
}
