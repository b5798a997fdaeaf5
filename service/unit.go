/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

// Package service runs taskgate components (HTTP server, task log writer, background workers)
// as units with a common start/stop lifecycle.
package service

// Unit is a component of a service with its own lifecycle.
type Unit interface {
	// Start runs the unit. It may return right after initialization or block for the whole unit lifetime.
	// A failure is reported by writing exactly one error to fatalErr. The channel must not be used
	// after Start has returned successfully.
	Start(fatalErr chan<- error)

	// Stop halts the unit. It may be called even if Start failed or was never called.
	Stop(gracefully bool) error
}

// MetricsRegisterer is an interface for objects that can register its own metrics.
type MetricsRegisterer interface {
	MustRegisterMetrics()
	UnregisterMetrics()
}
