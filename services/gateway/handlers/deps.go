// Copyright (C) 2026 StrataView Systems (eng@strataview.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package handlers implements the gateway's HTTP endpoints.
//
// Every dashboard read follows the same contract: query the stores,
// and on any failure serve a synthesized payload with HTTP 200. The
// demo never shows an error page; the fallback counter in /metrics is
// the only place a failure is visible.
package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/strataview/strataview/pkg/cache"
	"github.com/strataview/strataview/pkg/graphstore"
	"github.com/strataview/strataview/pkg/tsdb"
	"github.com/strataview/strataview/services/gateway/middleware"
	"github.com/strataview/strataview/services/gateway/observability"
)

// payloadTTL is how long a composed dashboard payload stays cached.
const payloadTTL = 15 * time.Second

// Deps carries the stores the handlers read from. Cache may be nil.
type Deps struct {
	Graph   *graphstore.Store
	TS      *tsdb.Store
	Cache   *cache.Cache
	Metrics *observability.Metrics

	// Window bounds the time-series aggregates. Defaults to 24h.
	Window time.Duration
}

func (d Deps) window() time.Time {
	w := d.Window
	if w <= 0 {
		w = 24 * time.Hour
	}
	return time.Now().UTC().Add(-w)
}

// respond writes the payload with HTTP 200 and records the request.
// fellBack marks payloads synthesized after a store failure.
func (d Deps) respond(c *gin.Context, group, endpoint string, payload gin.H, fellBack bool) {
	status := "ok"
	if fellBack {
		status = "fallback"
		d.Metrics.FallbacksTotal.WithLabelValues(endpoint).Inc()
		slog.Warn("serving synthesized payload",
			"endpoint", endpoint,
			"request_id", middleware.GetRequestID(c))
	}
	d.Metrics.RequestsTotal.WithLabelValues(group, status).Inc()

	payload["generated_at"] = time.Now().UTC()
	c.JSON(http.StatusOK, payload)
}

// cacheGet is a nil-safe cache read.
func (d Deps) cacheGet(ctx context.Context, key string, dest any) bool {
	if d.Cache == nil {
		return false
	}
	return d.Cache.GetJSON(ctx, key, dest) == nil
}

// cacheSet is a nil-safe cache write.
func (d Deps) cacheSet(ctx context.Context, key string, value any) {
	if d.Cache == nil {
		return
	}
	_ = d.Cache.SetJSON(ctx, key, value, payloadTTL)
}

// observe times one store read for the latency histogram.
func (d Deps) observe(store, operation string, start time.Time) {
	d.Metrics.StoreLatencySeconds.WithLabelValues(store, operation).
		Observe(time.Since(start).Seconds())
}

// HealthCheck reports liveness.
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "strataview-gateway"})
}
