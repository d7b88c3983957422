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

// NetworkTraffic serves the busiest links.
func NetworkTraffic(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		start := time.Now()
		links, err := deps.TS.TopLatencyLinks(ctx, deps.window(), 20)
		deps.observe("timescale", "top_latency_links", start)
		if err != nil {
			deps.respond(c, "network", "network_traffic", fallbackTraffic(), true)
			return
		}

		deps.respond(c, "network", "network_traffic", gin.H{
			"source": "live",
			"links":  links,
		}, false)
	}
}

// NetworkLatency serves the worst links by average latency.
func NetworkLatency(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		links, err := deps.TS.TopLatencyLinks(ctx, deps.window(), 10)
		if err != nil {
			deps.respond(c, "network", "network_latency", fallbackLatency(), true)
			return
		}

		deps.respond(c, "network", "network_latency", gin.H{
			"source": "live",
			"links":  links,
		}, false)
	}
}

// NetworkHotspots serves the costliest entities on the network path.
func NetworkHotspots(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		start := time.Now()
		hotspots, err := deps.Graph.CostHotspots(ctx, 10)
		deps.observe("neo4j", "cost_hotspots", start)
		if err != nil {
			deps.respond(c, "network", "network_hotspots", fallbackHotspots(), true)
			return
		}

		deps.respond(c, "network", "network_hotspots", gin.H{
			"source":   "live",
			"hotspots": hotspots,
		}, false)
	}
}
