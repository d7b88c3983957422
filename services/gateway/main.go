// Copyright (C) 2026 StrataView Systems (eng@strataview.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// The gateway serves the demo dashboards: REST reads over the graph
// and metrics stores, the scenario WebSocket, and /metrics.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/time/rate"

	"github.com/strataview/strataview/pkg/cache"
	"github.com/strataview/strataview/pkg/config"
	"github.com/strataview/strataview/pkg/graphstore"
	"github.com/strataview/strataview/pkg/logging"
	"github.com/strataview/strataview/pkg/tsdb"
	"github.com/strataview/strataview/services/gateway/handlers"
	"github.com/strataview/strataview/services/gateway/middleware"
	"github.com/strataview/strataview/services/gateway/observability"
	"github.com/strataview/strataview/services/gateway/routes"
	"github.com/strataview/strataview/services/gateway/scenario"
)

// sampleRate caps live-sample broadcasts per second.
const sampleRate = rate.Limit(4)

func main() {
	if err := config.Load(); err != nil {
		log.Fatalf("failed to load the configuration: %v", err)
	}
	cfg := config.Global

	logger := logging.New(logging.Config{
		Level:   logging.ParseLevel(cfg.Server.LogLevel),
		LogDir:  cfg.Server.LogDir,
		Service: "gateway",
		JSON:    true,
	}).Install()
	defer logger.Close()

	cleanup, err := observability.InitTracer("strataview-gateway")
	if err != nil {
		log.Fatalf("failed to setup the OTLP tracer: %v", err)
	}
	defer cleanup(context.Background())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Stores ---
	// A down store is not fatal: every dashboard read degrades to a
	// synthesized payload. Only a config-level failure stops the boot.
	graph, err := graphstore.New(cfg.Neo4j.URI, cfg.Neo4j.Username,
		cfg.Neo4j.Password, cfg.Neo4j.Database)
	if err != nil {
		log.Fatalf("invalid Neo4j configuration: %v", err)
	}
	defer graph.Close(context.Background())
	if err := graph.Verify(ctx); err != nil {
		slog.Warn("Neo4j unreachable, dashboards will serve synthesized data", "error", err)
	}

	ts, err := tsdb.Open(cfg.Timescale.DSN)
	if err != nil {
		log.Fatalf("invalid TimescaleDB configuration: %v", err)
	}
	defer ts.Close()

	payloadCache := cache.New(cfg.Redis.Addr, cfg.Redis.DB)

	metrics := observability.NewMetrics(prometheus.DefaultRegisterer)

	// --- Scenario orchestration ---
	hub := scenario.NewHub(sampleRate, func(n int64) {
		metrics.WSClients.Set(float64(n))
	})
	go hub.Run(ctx)

	if err := os.MkdirAll(cfg.Scenario.Dir, 0750); err != nil {
		log.Fatalf("could not create the scenarios directory: %v", err)
	}
	manager, err := scenario.NewManager(cfg.Scenario.Dir, cfg.Scenario.TickInterval.Std(),
		hub, scenario.ManagerOpts{
			Cache:       payloadCache,
			BaseContext: ctx,
			OnStep: func(scenarioID string) {
				metrics.ScenarioStepsTotal.WithLabelValues(scenarioID).Inc()
			},
		})
	if err != nil {
		log.Fatalf("could not load the scenario timelines: %v", err)
	}
	if err := manager.Watch(ctx); err != nil {
		slog.Warn("timeline hot reload disabled", "error", err)
	}

	var primary scenario.Sampler
	if sampler := scenario.NewInfluxSampler(cfg.Influx); sampler != nil {
		primary = sampler
		defer sampler.Close()
		slog.Info("live feed sampling from the influx mirror", "bucket", cfg.Influx.Bucket)
	}
	feed := scenario.NewLiveFeed(hub, primary, 2*time.Second)
	go feed.Run(ctx)

	// --- HTTP server ---
	deps := handlers.Deps{
		Graph:   graph,
		TS:      ts,
		Cache:   payloadCache,
		Metrics: metrics,
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(otelgin.Middleware("strataview-gateway"))
	routes.SetupRoutes(router, deps, manager, hub, cfg.Server.AuthToken)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("gateway listening", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("gateway server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}
}
