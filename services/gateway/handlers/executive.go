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

// ExecutiveSummary composes the top-of-dashboard view from the graph
// estate, the cost aggregates, and the business KPI stream.
func ExecutiveSummary(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var cached gin.H
		if deps.cacheGet(ctx, "executive:summary", &cached) {
			deps.respond(c, "executive", "executive_summary", cached, false)
			return
		}

		start := time.Now()
		estate, err := deps.Graph.TopologySummary(ctx)
		deps.observe("neo4j", "topology_summary", start)
		if err != nil {
			deps.respond(c, "executive", "executive_summary", fallbackExecutiveSummary(), true)
			return
		}

		start = time.Now()
		spend, err := deps.TS.CostSummary(ctx, deps.window())
		deps.observe("timescale", "cost_summary", start)
		if err != nil {
			deps.respond(c, "executive", "executive_summary", fallbackExecutiveSummary(), true)
			return
		}

		kpis, err := deps.TS.BusinessSummary(ctx, deps.window())
		if err != nil {
			deps.respond(c, "executive", "executive_summary", fallbackExecutiveSummary(), true)
			return
		}

		payload := gin.H{
			"source": "live",
			"estate": gin.H{
				"total_nodes":         estate.TotalNodes,
				"total_relationships": estate.TotalRelationships,
				"nodes_by_label":      estate.NodesByLabel,
			},
			"spend": gin.H{
				"monthly_usd":         spend.TotalUSD,
				"waste_usd":           spend.WasteUSD,
				"avg_utilization_pct": spend.AvgUtilization,
			},
			"kpis": gin.H{
				"transactions_per_min": kpis.AvgTransactionsMin,
				"revenue_usd":          kpis.RevenueUSD,
				"peak_active_users":    kpis.PeakActiveUsers,
			},
		}
		deps.cacheSet(ctx, "executive:summary", payload)
		deps.respond(c, "executive", "executive_summary", payload, false)
	}
}

// ExecutiveSavings derives savings opportunities from the waste share
// of the cost aggregates.
func ExecutiveSavings(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		spend, err := deps.TS.CostSummary(ctx, deps.window())
		if err != nil {
			deps.respond(c, "executive", "executive_savings", fallbackSavings(), true)
			return
		}
		hotspots, err := deps.Graph.CostHotspots(ctx, 5)
		if err != nil {
			deps.respond(c, "executive", "executive_savings", fallbackSavings(), true)
			return
		}

		opportunities := make([]gin.H, 0, len(hotspots))
		for _, h := range hotspots {
			opportunities = append(opportunities, gin.H{
				"title":       "Rightsize " + h.Name,
				"entity":      h.Name,
				"label":       h.Label,
				"monthly_usd": h.MonthlyCost * 0.3,
				"confidence":  0.8,
			})
		}
		deps.respond(c, "executive", "executive_savings", gin.H{
			"source":              "live",
			"waste_usd":           spend.WasteUSD,
			"avg_utilization_pct": spend.AvgUtilization,
			"opportunities":       opportunities,
		}, false)
	}
}

// ExecutiveKPIs serves the KPI strip.
func ExecutiveKPIs(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		health, err := deps.TS.HealthSummary(ctx, deps.window())
		if err != nil {
			deps.respond(c, "executive", "executive_kpis", fallbackKPIs(), true)
			return
		}
		business, err := deps.TS.BusinessSummary(ctx, deps.window())
		if err != nil {
			deps.respond(c, "executive", "executive_kpis", fallbackKPIs(), true)
			return
		}

		deps.respond(c, "executive", "executive_kpis", gin.H{
			"source":               "live",
			"avg_cpu_percent":      health.AvgCPUPercent,
			"avg_mem_percent":      health.AvgMemPercent,
			"transactions_per_min": business.AvgTransactionsMin,
			"revenue_usd":          business.RevenueUSD,
			"peak_active_users":    business.PeakActiveUsers,
		}, false)
	}
}
