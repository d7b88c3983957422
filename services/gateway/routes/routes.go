// Copyright (C) 2026 StrataView Systems (eng@strataview.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/strataview/strataview/services/gateway/handlers"
	"github.com/strataview/strataview/services/gateway/middleware"
	"github.com/strataview/strataview/services/gateway/scenario"
)

// SetupRoutes wires every gateway endpoint. authToken guards the
// mutating scenario routes; empty disables the check.
func SetupRoutes(router *gin.Engine, deps handlers.Deps, manager *scenario.Manager,
	hub *scenario.Hub, authToken string) {

	router.GET("/health", handlers.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(
		prometheus.DefaultGatherer, promhttp.HandlerOpts{})))

	api := router.Group("/api")
	{
		executive := api.Group("/executive")
		{
			executive.GET("/summary", handlers.ExecutiveSummary(deps))
			executive.GET("/savings", handlers.ExecutiveSavings(deps))
			executive.GET("/kpis", handlers.ExecutiveKPIs(deps))
		}

		infrastructure := api.Group("/infrastructure")
		{
			infrastructure.GET("/topology", handlers.InfrastructureTopology(deps))
			infrastructure.GET("/clusters", handlers.InfrastructureClusters(deps))
			infrastructure.GET("/health", handlers.InfrastructureHealth(deps))
			infrastructure.GET("/dependencies", handlers.InfrastructureDependencies(deps))
		}

		network := api.Group("/network")
		{
			network.GET("/traffic", handlers.NetworkTraffic(deps))
			network.GET("/latency", handlers.NetworkLatency(deps))
			network.GET("/hotspots", handlers.NetworkHotspots(deps))
		}

		arb := api.Group("/arb")
		{
			arb.GET("/recommendations", handlers.ARBRecommendations(deps))
			arb.GET("/findings", handlers.ARBFindings(deps))
		}

		dr := api.Group("/dr")
		{
			dr.GET("/readiness", handlers.DRReadiness(deps))
			dr.GET("/failover-plan", handlers.DRFailoverPlan(deps))
		}

		demo := api.Group("/demo")
		{
			demo.GET("/scenarios", handlers.ListScenarios(manager))
			demo.GET("/scenarios/:id/status", handlers.ScenarioStatus(manager))
			demo.GET("/ws", handlers.DemoWebSocket(hub))

			// Only the run controls need the token; watching is free.
			controls := demo.Group("/scenarios/:id")
			controls.Use(middleware.BearerAuth(authToken))
			{
				controls.POST("/start", handlers.StartScenario(manager))
				controls.POST("/pause", handlers.PauseScenario(manager))
				controls.POST("/resume", handlers.ResumeScenario(manager))
				controls.POST("/stop", handlers.StopScenario(manager))
			}
		}
	}
}
