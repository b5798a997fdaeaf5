/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

// Package httpserver provides the taskgate HTTP server: a chi router with default middlewares,
// /metrics and /healthz endpoints, run as a service.Unit.
package httpserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/acronis/taskgate/httpserver/middleware"
	"github.com/acronis/taskgate/log"
	"github.com/acronis/taskgate/service"
)

// systemEndpoints are not measured by HTTP request metrics and not logged by default.
var systemEndpoints = []string{"/metrics", "/healthz"}

// Opts represents options for creating HTTPServer.
type Opts struct {
	// Routes registers application routes on the root router.
	Routes func(router chi.Router)
	// ErrorDomain is used for error response formatting.
	ErrorDomain string
	// HealthCheck reports the health of service components at /healthz.
	HealthCheck HealthCheck
	// MetricsHandler serves /metrics. promhttp.Handler() is used when nil.
	MetricsHandler http.Handler
	// MetricsNamespace is a namespace for HTTP request metrics.
	MetricsNamespace string
	// Listener is used instead of listening on the configured address when not nil.
	Listener net.Listener
}

// HTTPServer is a wrapper around http.Server implementing service.Unit and service.MetricsRegisterer.
type HTTPServer struct {
	HTTPServer      *http.Server
	HTTPRouter      chi.Router
	Logger          log.FieldLogger
	ShutdownTimeout time.Duration

	mu       sync.Mutex
	listener net.Listener
	done     chan struct{}

	httpReqMetrics *middleware.HTTPRequestMetricsCollector
}

var _ service.Unit = (*HTTPServer)(nil)
var _ service.MetricsRegisterer = (*HTTPServer)(nil)

// New creates a new HTTPServer with request id, logging, recovery and metrics middlewares.
func New(cfg *Config, logger log.FieldLogger, opts Opts) *HTTPServer { //nolint:gocritic // hugeParam: opts is passed once.
	httpReqMetrics := middleware.NewHTTPRequestMetricsCollector(
		middleware.HTTPRequestMetricsCollectorOpts{Namespace: opts.MetricsNamespace})
	router := NewRouter(cfg, logger, httpReqMetrics, opts)
	return &HTTPServer{
		HTTPServer: &http.Server{
			Addr:              cfg.Address,
			WriteTimeout:      time.Duration(cfg.Timeouts.Write),
			ReadTimeout:       time.Duration(cfg.Timeouts.Read),
			ReadHeaderTimeout: time.Duration(cfg.Timeouts.ReadHeader),
			IdleTimeout:       time.Duration(cfg.Timeouts.Idle),
			Handler:           router,
		},
		HTTPRouter:      router,
		Logger:          logger,
		ShutdownTimeout: time.Duration(cfg.Timeouts.Shutdown),
		listener:        opts.Listener,
		done:            make(chan struct{}),
		httpReqMetrics:  httpReqMetrics,
	}
}

// Start starts the HTTP server and blocks until it is stopped.
// If a fatal error occurs, it will be sent to the fatalErr channel.
func (s *HTTPServer) Start(fatalErr chan<- error) {
	defer close(s.done)

	logger := s.Logger.With(
		log.String("address", s.HTTPServer.Addr),
		log.Duration("write_timeout", s.HTTPServer.WriteTimeout),
		log.Duration("read_timeout", s.HTTPServer.ReadTimeout),
		log.Duration("shutdown_timeout", s.ShutdownTimeout),
	)
	logger.Info("starting application HTTP server...")

	s.mu.Lock()
	if s.listener == nil {
		ln, err := net.Listen("tcp", s.HTTPServer.Addr)
		if err != nil {
			s.mu.Unlock()
			logger.Error("application HTTP server error", log.Error(err))
			fatalErr <- err
			return
		}
		s.listener = ln
	}
	ln := s.listener
	s.mu.Unlock()

	if err := s.HTTPServer.Serve(ln); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			logger.Info("application HTTP server closed")
			return
		}
		logger.Error("application HTTP server error", log.Error(err))
		fatalErr <- err
	}
}

// Stop stops the HTTP server. A graceful stop waits for active requests up to ShutdownTimeout.
func (s *HTTPServer) Stop(gracefully bool) error {
	if !gracefully {
		s.Logger.Info("closing application HTTP server...")
		if err := s.HTTPServer.Close(); err != nil {
			s.Logger.Error("application HTTP server closing error", log.Error(err))
			return err
		}
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.ShutdownTimeout)
	defer cancel()
	s.Logger.Info("shutting down application HTTP server...", log.Duration("timeout", s.ShutdownTimeout))
	if err := s.HTTPServer.Shutdown(ctx); err != nil {
		s.Logger.Error("application HTTP server shutting down error", log.Error(err))
		return err
	}
	s.Logger.Info("application HTTP server shut down")
	return nil
}

// Addr returns the address the server listens on, or nil if it has not started listening yet.
func (s *HTTPServer) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Done is closed when Start returns.
func (s *HTTPServer) Done() <-chan struct{} {
	return s.done
}

// MustRegisterMetrics registers metrics in Prometheus client and panics if any error occurs.
func (s *HTTPServer) MustRegisterMetrics() {
	s.httpReqMetrics.MustRegister()
}

// UnregisterMetrics unregisters metrics in Prometheus client.
func (s *HTTPServer) UnregisterMetrics() {
	s.httpReqMetrics.Unregister()
}
