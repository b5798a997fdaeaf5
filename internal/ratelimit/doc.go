/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

// Package ratelimit decides whether a task of an identity may run now.
//
// A Limiter answers the question for one window. Four algorithms are available:
//   - fixed window (default), the window starts at the first request and is reset lazily
//   - token bucket on top of golang.org/x/time/rate
//   - leaky bucket (GCRA) on top of github.com/throttled/throttled/v2
//   - sliding window on top of github.com/RussellLuo/slidingwindow
//
// Gate combines two limiters (burst and sustained) into a single admission decision.
// Per-identity limiter state is bounded by the maximum number of keys,
// evicting a cold identity resets its windows.
package ratelimit
