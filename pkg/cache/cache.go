// Copyright (C) 2026 StrataView Systems (eng@strataview.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package cache is the Redis payload cache.
//
// The gateway uses it for two things: short-TTL caching of the
// dashboard payloads and persistence of scenario run state across
// gateway restarts. Every Redis failure is treated as a cache miss and
// logged at debug; a dead Redis never degrades a dashboard read into
// an error.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v9"
)

// ErrMiss is returned by GetJSON when the key is absent. Backend
// failures are reported as misses too, after a debug log.
var ErrMiss = errors.New("cache miss")

// kv is the slice of the Redis API the cache needs. Tests supply an
// in-memory fake.
type kv interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// redisKV adapts a *redis.Client to the kv interface.
type redisKV struct {
	client *redis.Client
}

func (r *redisKV) Get(ctx context.Context, key string) (string, error) {
	return r.client.Get(ctx, key).Result()
}

func (r *redisKV) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *redisKV) Del(ctx context.Context, keys ...string) error {
	return r.client.Del(ctx, keys...).Err()
}

// Cache is a JSON-over-Redis payload cache.
type Cache struct {
	kv     kv
	prefix string
}

// New connects to Redis. The connection is lazy; a down Redis shows up
// as misses on first use, not as a constructor error.
func New(addr string, db int) *Cache {
	client := redis.NewClient(&redis.Options{
		Addr:        addr,
		DB:          db,
		DialTimeout: 2 * time.Second,
		ReadTimeout: 1 * time.Second,
	})
	return &Cache{kv: &redisKV{client: client}, prefix: "strataview:"}
}

// NewWithKV builds a Cache over an arbitrary kv. Used by tests.
func NewWithKV(backend kv) *Cache {
	return &Cache{kv: backend, prefix: "strataview:"}
}

// GetJSON loads and unmarshals a cached value into dest. Returns
// ErrMiss when the key is absent or the backend is unavailable.
func (c *Cache) GetJSON(ctx context.Context, key string, dest any) error {
	raw, err := c.kv.Get(ctx, c.prefix+key)
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Debug("cache read failed, treating as miss", "key", key, "error", err)
		}
		return ErrMiss
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		// A corrupt entry is a miss; the caller will overwrite it.
		slog.Debug("cache entry corrupt, treating as miss", "key", key, "error", err)
		return ErrMiss
	}
	return nil
}

// SetJSON marshals and stores a value with a TTL. Backend failures are
// logged and swallowed.
func (c *Cache) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("could not marshal cache value for %q: %w", key, err)
	}
	if err := c.kv.Set(ctx, c.prefix+key, string(raw), ttl); err != nil {
		slog.Debug("cache write failed", "key", key, "error", err)
	}
	return nil
}

// Invalidate removes keys. Used when a scenario mutates the state the
// cached payloads were derived from.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) {
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = c.prefix + k
	}
	if err := c.kv.Del(ctx, prefixed...); err != nil {
		slog.Debug("cache invalidation failed", "keys", keys, "error", err)
	}
}
