// Copyright (C) 2026 StrataView Systems (eng@strataview.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"github.com/gin-gonic/gin"
)

// DRReadiness scores disaster-recovery readiness per region from the
// cluster inventory. Scores are synthesized; the inventory is real.
func DRReadiness(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		clusters, err := deps.Graph.ClusterInventory(ctx)
		if err != nil {
			deps.respond(c, "dr", "dr_readiness", fallbackReadiness(), true)
			return
		}

		byRegion := map[string]int64{}
		for _, cl := range clusters {
			byRegion[cl.Region] += cl.Services
		}
		regions := make([]gin.H, 0, len(byRegion))
		for region, services := range byRegion {
			regions = append(regions, gin.H{
				"region":          region,
				"services":        services,
				"readiness_score": synthFloat(0.75, 0.98),
				"rpo_minutes":     synthInt(5, 30),
				"rto_minutes":     synthInt(15, 90),
			})
		}
		deps.respond(c, "dr", "dr_readiness", gin.H{
			"source":  "live",
			"regions": regions,
		}, false)
	}
}

// DRFailoverPlan builds a failover plan for one service
// (?service=name): the blast radius is real, the steps are scripted.
func DRFailoverPlan(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		service := c.DefaultQuery("service", "payments-api")

		impacted, err := deps.Graph.BlastRadius(ctx, service)
		if err != nil {
			deps.respond(c, "dr", "dr_failover_plan", fallbackFailoverPlan(service), true)
			return
		}

		steps := []gin.H{
			{"order": 1, "action": "Freeze writes", "target": service},
			{"order": 2, "action": "Promote standby replica", "target": service + "-standby"},
			{"order": 3, "action": "Shift traffic via weighted DNS", "target": service},
			{"order": 4, "action": "Verify downstream consumers", "target": service},
		}
		deps.respond(c, "dr", "dr_failover_plan", gin.H{
			"source":            "live",
			"service":           service,
			"impacted":          impacted,
			"estimated_rto_min": 10 + len(impacted),
			"steps":             steps,
		}, false)
	}
}
