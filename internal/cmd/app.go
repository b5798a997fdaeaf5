/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package cmd

import (
	"context"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/acronis/taskgate/httpserver"
	"github.com/acronis/taskgate/internal/api"
	"github.com/acronis/taskgate/internal/buildinfo"
	"github.com/acronis/taskgate/internal/clock"
	"github.com/acronis/taskgate/internal/cluster"
	"github.com/acronis/taskgate/internal/keyzone"
	"github.com/acronis/taskgate/internal/scheduler"
	"github.com/acronis/taskgate/internal/task"
	"github.com/acronis/taskgate/internal/tasklog"
	"github.com/acronis/taskgate/log"
	"github.com/acronis/taskgate/profserver"
	"github.com/acronis/taskgate/restapi"
	"github.com/acronis/taskgate/service"
)

// MetricsNamespace prefixes all Prometheus metrics of the application.
const MetricsNamespace = "taskgate"

const (
	healthComponentScheduler = "scheduler"
	healthComponentTaskLog   = "task_log"
)

// AppOpts represents options for NewApp.
type AppOpts struct {
	// Listener replaces the configured server address when not nil.
	Listener net.Listener
	// TaskLogSink replaces the rotated task log file when not nil.
	TaskLogSink io.WriteCloser
	// ProfListener replaces the configured profiling server address when not nil.
	ProfListener net.Listener
	Clock        clock.Clock
}

// App binds the HTTP server, the scheduler pool, the task log writer and the optional profiling server
// into one service.Unit. Stop shuts the components down in order: the server stops accepting tasks,
// then the pool stops draining, then the task log flushes what was completed.
type App struct {
	HTTPServer *httpserver.HTTPServer
	Pool       *cluster.Pool
	TaskLog    *tasklog.Writer
	Runner     *task.Runner
	ProfServer *profserver.ProfServer

	taskLogUnit      *service.WorkerUnit
	units            *service.CompositeUnit
	keyZoneMetrics   *keyzone.PrometheusMetrics
	schedulerMetrics *scheduler.PrometheusMetrics
	buildInfo        prometheus.Collector

	stopOnce sync.Once
	stopErr  error
}

var (
	_ service.Unit              = (*App)(nil)
	_ service.MetricsRegisterer = (*App)(nil)
)

// NewApp creates the application from its configuration.
func NewApp(cfg *AppConfig, logger log.FieldLogger, opts AppOpts) (*App, error) {
	taskLog := tasklog.NewWriter(cfg.TaskLog, logger, tasklog.WriterOpts{
		Sink:    opts.TaskLogSink,
		Metrics: tasklog.NewPrometheusMetrics(MetricsNamespace),
	})
	runner := task.NewRunner(taskLog, logger, task.RunnerOpts{Clock: opts.Clock, MetricsNamespace: MetricsNamespace})

	keyZoneMetrics := keyzone.NewPrometheusMetrics(MetricsNamespace)
	schedulerMetrics := scheduler.NewPrometheusMetrics(MetricsNamespace)
	pool, err := cluster.NewPool(cluster.Config{
		RateLimit: cfg.RateLimit,
		Backlog:   cfg.Backlog,
		Scheduler: cfg.Scheduler,
	}, runner, logger, cluster.Opts{
		Clock:            opts.Clock,
		KeyZoneMetrics:   keyZoneMetrics,
		SchedulerMetrics: schedulerMetrics,
	})
	if err != nil {
		return nil, fmt.Errorf("new scheduler pool: %w", err)
	}

	app := &App{
		Pool:             pool,
		TaskLog:          taskLog,
		Runner:           runner,
		keyZoneMetrics:   keyZoneMetrics,
		schedulerMetrics: schedulerMetrics,
		buildInfo:        buildinfo.NewPrometheusCollector(MetricsNamespace),
	}
	app.HTTPServer = httpserver.New(cfg.Server, logger, httpserver.Opts{
		Routes:           api.Routes(pool, logger),
		ErrorDomain:      api.ErrorDomain,
		HealthCheck:      app.healthCheck,
		MetricsNamespace: MetricsNamespace,
		Listener:         opts.Listener,
	})
	app.taskLogUnit = service.NewWorkerUnitWithOpts(taskLog, service.WorkerUnitOpts{MetricsRegisterer: taskLog})
	app.units = service.NewCompositeUnit(app.HTTPServer, pool, app.taskLogUnit)
	if cfg.ProfServer.Enabled {
		app.ProfServer = profserver.New(cfg.ProfServer, logger, opts.ProfListener)
		app.units.Units = append(app.units.Units, app.ProfServer)
	}
	return app, nil
}

func (a *App) healthCheck(_ context.Context) (httpserver.HealthCheckResult, error) {
	res := httpserver.HealthCheckResult{
		healthComponentScheduler: httpserver.HealthCheckStatusOK,
		healthComponentTaskLog:   httpserver.HealthCheckStatusOK,
	}
	if a.Pool.Stopped() {
		res[healthComponentScheduler] = httpserver.HealthCheckStatusFail
	}
	if a.TaskLog.QueueFull() {
		res[healthComponentTaskLog] = httpserver.HealthCheckStatusFail
	}
	return res, nil
}

// Start starts all components and blocks until they are stopped.
func (a *App) Start(fatalErr chan<- error) {
	a.units.Start(fatalErr)
}

// Stop stops the components one by one. Errors of all of them are joined into service.CompositeUnitError.
func (a *App) Stop(gracefully bool) error {
	a.stopOnce.Do(func() {
		var errs []error
		units := []service.Unit{a.HTTPServer, a.Pool, a.taskLogUnit}
		if a.ProfServer != nil {
			units = append(units, a.ProfServer)
		}
		for _, unit := range units {
			if err := unit.Stop(gracefully); err != nil {
				errs = append(errs, err)
			}
		}
		if len(errs) != 0 {
			a.stopErr = &service.CompositeUnitError{UnitErrors: errs}
		}
	})
	return a.stopErr
}

// MustRegisterMetrics registers metrics of all components in the default Prometheus registry.
func (a *App) MustRegisterMetrics() {
	restapi.MustInitAndRegisterMetrics(MetricsNamespace)
	a.keyZoneMetrics.MustRegister()
	a.schedulerMetrics.MustRegister()
	a.Runner.MustRegisterMetrics()
	prometheus.MustRegister(a.buildInfo)
	a.units.MustRegisterMetrics()
}

// UnregisterMetrics unregisters metrics of all components.
func (a *App) UnregisterMetrics() {
	a.units.UnregisterMetrics()
	prometheus.Unregister(a.buildInfo)
	a.Runner.UnregisterMetrics()
	a.schedulerMetrics.Unregister()
	a.keyZoneMetrics.Unregister()
	restapi.UnregisterMetrics()
}
