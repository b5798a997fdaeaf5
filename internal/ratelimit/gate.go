/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package ratelimit

import (
	"context"
	"fmt"
)

// Gate admits a task of an identity only when both the burst and the sustained limiters allow it.
// The burst limiter is consulted first. A request that passes the burst limiter and fails the sustained one
// has consumed its burst slot.
type Gate struct {
	burst     Limiter
	sustained Limiter
}

// NewGate creates a new Gate.
func NewGate(burst, sustained Limiter) *Gate {
	return &Gate{burst: burst, sustained: sustained}
}

// NewGateFromConfig creates a Gate with the limiters described by cfg.
func NewGateFromConfig(cfg *Config, opts GateOpts) (*Gate, error) {
	burstOpts := LimiterOpts{Clock: opts.Clock}
	sustainedOpts := LimiterOpts{Clock: opts.Clock}
	if opts.Metrics != nil {
		burstOpts.MetricsCollector = opts.Metrics.ForZone(opts.ZonePrefix + "burst")
		sustainedOpts.MetricsCollector = opts.Metrics.ForZone(opts.ZonePrefix + "sustained")
	}
	burst, err := NewLimiter(cfg.Burst.Algorithm, cfg.Burst.Rate(), cfg.MaxKeys, burstOpts)
	if err != nil {
		return nil, fmt.Errorf("new burst limiter: %w", err)
	}
	sustained, err := NewLimiter(cfg.Sustained.Algorithm, cfg.Sustained.Rate(), cfg.MaxKeys, sustainedOpts)
	if err != nil {
		return nil, fmt.Errorf("new sustained limiter: %w", err)
	}
	return NewGate(burst, sustained), nil
}

// TryAdmit reports whether a task of the identity may run now.
func (g *Gate) TryAdmit(ctx context.Context, identity string) (bool, error) {
	allow, _, err := g.burst.Allow(ctx, identity)
	if err != nil {
		return false, fmt.Errorf("check burst limit: %w", err)
	}
	if !allow {
		return false, nil
	}
	if allow, _, err = g.sustained.Allow(ctx, identity); err != nil {
		return false, fmt.Errorf("check sustained limit: %w", err)
	}
	return allow, nil
}
