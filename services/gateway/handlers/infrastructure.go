// Copyright (C) 2026 StrataView Systems (eng@strataview.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
)

// InfrastructureTopology serves the node/relationship census.
func InfrastructureTopology(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var cached gin.H
		if deps.cacheGet(ctx, "infrastructure:topology", &cached) {
			deps.respond(c, "infrastructure", "infra_topology", cached, false)
			return
		}

		start := time.Now()
		summary, err := deps.Graph.TopologySummary(ctx)
		deps.observe("neo4j", "topology_summary", start)
		if err != nil {
			deps.respond(c, "infrastructure", "infra_topology", fallbackTopology(), true)
			return
		}

		payload := gin.H{
			"source":                "live",
			"nodes_by_label":        summary.NodesByLabel,
			"relationships_by_type": summary.RelationshipsByType,
			"total_nodes":           summary.TotalNodes,
			"total_relationships":   summary.TotalRelationships,
		}
		deps.cacheSet(ctx, "infrastructure:topology", payload)
		deps.respond(c, "infrastructure", "infra_topology", payload, false)
	}
}

// InfrastructureClusters serves the EKS cluster inventory.
func InfrastructureClusters(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		start := time.Now()
		clusters, err := deps.Graph.ClusterInventory(ctx)
		deps.observe("neo4j", "cluster_inventory", start)
		if err != nil {
			deps.respond(c, "infrastructure", "infra_clusters", fallbackClusters(), true)
			return
		}

		deps.respond(c, "infrastructure", "infra_clusters", gin.H{
			"source":   "live",
			"clusters": clusters,
		}, false)
	}
}

// InfrastructureHealth serves the resource-usage rollup with open
// incidents.
func InfrastructureHealth(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		start := time.Now()
		health, err := deps.TS.HealthSummary(ctx, deps.window())
		deps.observe("timescale", "health_summary", start)
		if err != nil {
			deps.respond(c, "infrastructure", "infra_health", fallbackInfraHealth(), true)
			return
		}
		incidents, err := deps.TS.OpenIncidents(ctx, 10)
		if err != nil {
			deps.respond(c, "infrastructure", "infra_health", fallbackInfraHealth(), true)
			return
		}

		deps.respond(c, "infrastructure", "infra_health", gin.H{
			"source":           "live",
			"avg_cpu_percent":  health.AvgCPUPercent,
			"avg_mem_percent":  health.AvgMemPercent,
			"max_cpu_percent":  health.MaxCPUPercent,
			"sampled_entities": health.SampledEntities,
			"open_incidents":   incidents,
		}, false)
	}
}

// InfrastructureDependencies serves the direct dependencies of one
// service (?service=name).
func InfrastructureDependencies(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		service := c.Query("service")

		dependencies, err := deps.Graph.ServiceDependencies(ctx, service)
		if err != nil {
			deps.respond(c, "infrastructure", "infra_dependencies", gin.H{
				"source":       "synthetic",
				"service":      service,
				"dependencies": []gin.H{},
			}, true)
			return
		}

		deps.respond(c, "infrastructure", "infra_dependencies", gin.H{
			"source":       "live",
			"service":      service,
			"dependencies": dependencies,
		}, false)
	}
}
