// Copyright (C) 2026 StrataView Systems (eng@strataview.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDo_ExactlyThreeAttemptsBeforeFallback(t *testing.T) {
	calls := 0
	cfg := Config{Attempts: 3, Backoff: time.Millisecond}

	got, err := Do(context.Background(), cfg, func(ctx context.Context) (string, error) {
		calls++
		return "", errors.New("store down")
	}, "fallback")

	assert.Equal(t, 3, calls, "must attempt exactly 3 times")
	assert.Equal(t, "fallback", got)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all 3 attempts failed")
}

func TestDo_SucceedsOnSecondAttempt(t *testing.T) {
	calls := 0
	cfg := Config{Attempts: 3, Backoff: time.Millisecond}

	got, err := Do(context.Background(), cfg, func(ctx context.Context) (int, error) {
		calls++
		if calls < 2 {
			return 0, errors.New("transient")
		}
		return 42, nil
	}, -1)

	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Equal(t, 2, calls, "must stop retrying after first success")
}

func TestDo_LinearBackoffBetweenAttempts(t *testing.T) {
	var delays []int
	cfg := Config{
		Attempts: 3,
		Backoff:  time.Millisecond,
		OnRetry: func(attempt int, err error) {
			delays = append(delays, attempt)
		},
	}

	start := time.Now()
	_, err := Do(context.Background(), cfg, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, errors.New("nope")
	}, struct{}{})
	elapsed := time.Since(start)

	require.Error(t, err)
	// OnRetry fires for every failed attempt, including the last.
	assert.Equal(t, []int{1, 2, 3}, delays)
	// Sleeps are 1*base + 2*base; no sleep after the final attempt.
	assert.GreaterOrEqual(t, elapsed, 3*time.Millisecond)
}

func TestDo_ContextCancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	cfg := Config{Attempts: 3, Backoff: time.Hour}

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	got, err := Do(ctx, cfg, func(ctx context.Context) (string, error) {
		calls++
		return "", errors.New("slow failure")
	}, "fallback")

	assert.Equal(t, 1, calls, "cancellation must stop further attempts")
	assert.Equal(t, "fallback", got)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDo_ZeroConfigUsesDefaults(t *testing.T) {
	cfg := Config{}.normalized()
	assert.Equal(t, 3, cfg.Attempts)
	assert.Equal(t, 250*time.Millisecond, cfg.Backoff)
}

func TestDo_FallbackValuePreserved(t *testing.T) {
	type summary struct {
		Nodes int
		Edges int
	}
	empty := summary{}

	got, err := Do(context.Background(), Config{Attempts: 2, Backoff: time.Millisecond},
		func(ctx context.Context) (summary, error) {
			return summary{Nodes: 99}, errors.New("partial results discarded")
		}, empty)

	require.Error(t, err)
	assert.Equal(t, empty, got, "partial results from failed attempts must not leak")
}
