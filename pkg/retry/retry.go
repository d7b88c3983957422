// Copyright (C) 2026 StrataView Systems (eng@strataview.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package retry provides the shared retry wrapper used by the graph and
// time-series query services.
//
// # Description
//
// Both store clients wrap every read query in the same resilience idiom:
// attempt the query a fixed number of times with linear backoff, and when
// all attempts fail, hand back a caller-supplied empty-shaped fallback so
// dashboard endpoints never surface a store outage to the browser.
//
// # Basic Usage
//
//	summary, err := retry.Do(ctx, retry.DefaultConfig(), func(ctx context.Context) (TopologySummary, error) {
//	    return store.querySummary(ctx)
//	}, TopologySummary{})
//	if err != nil {
//	    // summary is the fallback value; err is the last attempt's error
//	}
//
// # Thread Safety
//
// Do holds no state between calls and is safe for concurrent use.
package retry

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Config controls retry behavior.
//
// # Fields
//
//   - Attempts: Total tries before giving up. Default: 3.
//   - Backoff: Base delay unit. The delay before try N+1 is N*Backoff
//     (linear backoff). Default: 250ms.
//   - OnRetry: Optional hook invoked after each failed attempt, before
//     the backoff sleep. Used by tests and metrics.
type Config struct {
	Attempts int
	Backoff  time.Duration
	OnRetry  func(attempt int, err error)
}

// DefaultConfig returns the retry policy used by the store clients:
// 3 attempts with a 250ms linear backoff.
func DefaultConfig() Config {
	return Config{
		Attempts: 3,
		Backoff:  250 * time.Millisecond,
	}
}

// normalized applies defaults for zero values.
func (c Config) normalized() Config {
	if c.Attempts <= 0 {
		c.Attempts = 3
	}
	if c.Backoff <= 0 {
		c.Backoff = 250 * time.Millisecond
	}
	return c
}

// Do runs op up to cfg.Attempts times and returns its first successful
// result.
//
// # Description
//
// After each failure the wrapper sleeps attempt*cfg.Backoff (linear) and
// tries again. Once attempts are exhausted it returns the fallback value
// together with the last error, so callers can serve an empty-shaped
// payload while still observing the failure. Context cancellation is
// honored between attempts and during backoff; a cancelled context
// returns the fallback and ctx.Err() without further tries.
//
// # Inputs
//
//   - ctx: Context for cancellation.
//   - cfg: Retry policy. Zero values fall back to DefaultConfig.
//   - op: The operation to attempt. Must be safe to call repeatedly.
//   - fallback: Value returned when every attempt fails.
//
// # Outputs
//
//   - T: op's result, or fallback on exhaustion.
//   - error: nil on success, otherwise the last attempt's error.
func Do[T any](ctx context.Context, cfg Config, op func(ctx context.Context) (T, error), fallback T) (T, error) {
	cfg = cfg.normalized()

	var lastErr error
	for attempt := 1; attempt <= cfg.Attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return fallback, err
		}

		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		slog.Warn("query attempt failed",
			"attempt", attempt,
			"max_attempts", cfg.Attempts,
			"error", err,
		)
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, err)
		}

		// No sleep after the final attempt.
		if attempt == cfg.Attempts {
			break
		}

		select {
		case <-ctx.Done():
			return fallback, ctx.Err()
		case <-time.After(time.Duration(attempt) * cfg.Backoff):
		}
	}

	return fallback, fmt.Errorf("all %d attempts failed: %w", cfg.Attempts, lastErr)
}
