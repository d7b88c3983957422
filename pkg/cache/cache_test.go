// Copyright (C) 2026 StrataView Systems (eng@strataview.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mapKV is an in-memory kv backend. TTLs are recorded, not enforced.
type mapKV struct {
	data map[string]string
	ttls map[string]time.Duration
	err  error
}

func newMapKV() *mapKV {
	return &mapKV{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *mapKV) Get(ctx context.Context, key string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	v, ok := m.data[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (m *mapKV) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if m.err != nil {
		return m.err
	}
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}

func (m *mapKV) Del(ctx context.Context, keys ...string) error {
	if m.err != nil {
		return m.err
	}
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

type payload struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

func TestCache_RoundTrip(t *testing.T) {
	backend := newMapKV()
	c := NewWithKV(backend)
	ctx := context.Background()

	require.NoError(t, c.SetJSON(ctx, "executive", payload{Name: "summary", Score: 98}, 30*time.Second))

	var got payload
	require.NoError(t, c.GetJSON(ctx, "executive", &got))
	assert.Equal(t, payload{Name: "summary", Score: 98}, got)
	assert.Equal(t, 30*time.Second, backend.ttls["strataview:executive"], "TTL passed through")
}

func TestCache_AbsentKeyIsMiss(t *testing.T) {
	c := NewWithKV(newMapKV())

	var got payload
	err := c.GetJSON(context.Background(), "nothing", &got)
	assert.ErrorIs(t, err, ErrMiss)
}

func TestCache_BackendFailureIsMiss(t *testing.T) {
	backend := newMapKV()
	backend.err = errors.New("connection refused")
	c := NewWithKV(backend)

	var got payload
	err := c.GetJSON(context.Background(), "executive", &got)
	assert.ErrorIs(t, err, ErrMiss, "a dead backend must look like a miss")

	assert.NoError(t, c.SetJSON(context.Background(), "executive", payload{}, time.Second),
		"writes swallow backend failures")
}

func TestCache_CorruptEntryIsMiss(t *testing.T) {
	backend := newMapKV()
	backend.data["strataview:executive"] = "{not json"
	c := NewWithKV(backend)

	var got payload
	err := c.GetJSON(context.Background(), "executive", &got)
	assert.ErrorIs(t, err, ErrMiss)
}

func TestCache_Invalidate(t *testing.T) {
	backend := newMapKV()
	c := NewWithKV(backend)
	ctx := context.Background()

	require.NoError(t, c.SetJSON(ctx, "a", payload{}, time.Second))
	require.NoError(t, c.SetJSON(ctx, "b", payload{}, time.Second))

	c.Invalidate(ctx, "a")

	var got payload
	assert.ErrorIs(t, c.GetJSON(ctx, "a", &got), ErrMiss)
	assert.NoError(t, c.GetJSON(ctx, "b", &got))
}
