// Copyright (C) 2026 StrataView Systems (eng@strataview.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package observability provides metrics and tracing for the gateway.
//
// # Description
//
// Prometheus metrics exposed at /metrics:
//   - Request counters by route group and status
//   - Fallback counter: how often a randomized payload replaced a
//     failed store read
//   - Active WebSocket client gauge
//   - Scenario steps broadcast counter
//   - Store query latency histograms
//
// # Thread Safety
//
// All metric operations are thread-safe via Prometheus's internal
// locking.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "strataview"

const gatewaySubsystem = "gateway"

// Metrics holds every Prometheus metric the gateway emits. Initialize
// once at startup via NewMetrics.
type Metrics struct {
	// RequestsTotal counts API requests.
	// Labels: group (executive, infrastructure, network, arb, dr,
	// demo), status (ok, fallback)
	RequestsTotal *prometheus.CounterVec

	// FallbacksTotal counts reads served from synthesized data after a
	// store failure. Labels: endpoint
	FallbacksTotal *prometheus.CounterVec

	// WSClients tracks connected WebSocket clients.
	WSClients prometheus.Gauge

	// ScenarioStepsTotal counts broadcast scenario steps.
	// Labels: scenario
	ScenarioStepsTotal *prometheus.CounterVec

	// StoreLatencySeconds measures store read latency.
	// Labels: store (neo4j, timescale), operation
	StoreLatencySeconds *prometheus.HistogramVec
}

// NewMetrics registers the gateway metrics with the given registerer.
// Pass prometheus.DefaultRegisterer in production; tests use a fresh
// registry so repeated construction doesn't panic.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: gatewaySubsystem,
			Name:      "requests_total",
			Help:      "API requests by route group and serving status.",
		}, []string{"group", "status"}),

		FallbacksTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: gatewaySubsystem,
			Name:      "fallbacks_total",
			Help:      "Reads served from synthesized data after a store failure.",
		}, []string{"endpoint"}),

		WSClients: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: gatewaySubsystem,
			Name:      "ws_clients",
			Help:      "Currently connected WebSocket clients.",
		}),

		ScenarioStepsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: gatewaySubsystem,
			Name:      "scenario_steps_total",
			Help:      "Scenario steps broadcast to clients.",
		}, []string{"scenario"}),

		StoreLatencySeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: gatewaySubsystem,
			Name:      "store_latency_seconds",
			Help:      "Store read latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"store", "operation"}),
	}
}
