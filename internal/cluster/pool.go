/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

// Package cluster runs several independent scheduler instances in one process.
//
// Instances share nothing but the task runner, submissions are dispatched round-robin.
// With more than one instance, tasks of the same identity may be admitted by different instances,
// so the effective rate of an identity may be up to N times higher than configured.
package cluster

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/atomic"

	"github.com/acronis/taskgate/internal/backlog"
	"github.com/acronis/taskgate/internal/clock"
	"github.com/acronis/taskgate/internal/keyzone"
	"github.com/acronis/taskgate/internal/ratelimit"
	"github.com/acronis/taskgate/internal/scheduler"
	"github.com/acronis/taskgate/log"
	"github.com/acronis/taskgate/service"
)

// Instance is one independent gate, backlog and scheduler triple.
type Instance struct {
	Gate      *ratelimit.Gate
	Backlog   *backlog.MemoryStore
	Scheduler *scheduler.Scheduler
}

// Config aggregates configurations of the pool components.
type Config struct {
	RateLimit *ratelimit.Config
	Backlog   *backlog.Config
	Scheduler *scheduler.Config
}

// Opts represents options for NewPool.
type Opts struct {
	Clock            clock.Clock
	KeyZoneMetrics   *keyzone.PrometheusMetrics
	SchedulerMetrics *scheduler.PrometheusMetrics
}

// Pool dispatches submissions to its instances round-robin. It implements service.Unit.
type Pool struct {
	instances []*Instance
	units     *service.CompositeUnit
	next      atomic.Uint64
	stopped   atomic.Bool
}

var _ service.Unit = (*Pool)(nil)

// NewPool creates a pool of cfg.Scheduler.Workers instances.
func NewPool(cfg Config, runner scheduler.Runner, logger log.FieldLogger, opts Opts) (*Pool, error) {
	workers := cfg.Scheduler.Workers
	if workers < 1 {
		workers = 1
	}
	p := &Pool{units: service.NewCompositeUnit()}
	for i := 0; i < workers; i++ {
		name := strconv.Itoa(i)
		gate, err := ratelimit.NewGateFromConfig(cfg.RateLimit, ratelimit.GateOpts{
			Clock:      opts.Clock,
			Metrics:    opts.KeyZoneMetrics,
			ZonePrefix: "instance" + name + "_",
		})
		if err != nil {
			return nil, fmt.Errorf("new gate for instance %d: %w", i, err)
		}
		store, err := backlog.NewMemoryStore(cfg.Backlog.MaxPerIdentity)
		if err != nil {
			return nil, fmt.Errorf("new backlog for instance %d: %w", i, err)
		}
		sched := scheduler.New(gate, store, runner, logger, cfg.Scheduler, scheduler.Opts{
			Clock:    opts.Clock,
			Metrics:  opts.SchedulerMetrics,
			Instance: name,
		})
		p.instances = append(p.instances, &Instance{Gate: gate, Backlog: store, Scheduler: sched})
		p.units.Units = append(p.units.Units, sched)
	}
	return p, nil
}

// Submit dispatches the submission to the next instance.
func (p *Pool) Submit(ctx context.Context, identity string) (scheduler.Outcome, error) {
	idx := (p.next.Inc() - 1) % uint64(len(p.instances))
	return p.instances[idx].Scheduler.Submit(ctx, identity)
}

// Instances returns instances of the pool.
func (p *Pool) Instances() []*Instance {
	return p.instances
}

// BacklogTotal returns the number of deferred tasks in all instances.
func (p *Pool) BacklogTotal() int {
	total := 0
	for _, inst := range p.instances {
		total += inst.Backlog.Total()
	}
	return total
}

// Stopped reports whether the pool was stopped.
func (p *Pool) Stopped() bool {
	return p.stopped.Load()
}

// Start starts all instances.
func (p *Pool) Start(fatalErr chan<- error) {
	p.units.Start(fatalErr)
}

// Stop stops all instances.
func (p *Pool) Stop(gracefully bool) error {
	p.stopped.Store(true)
	return p.units.Stop(gracefully)
}
