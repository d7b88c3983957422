// Copyright (C) 2026 StrataView Systems (eng@strataview.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"fmt"

	"github.com/gin-gonic/gin"
)

// ARBRecommendations serves the Architecture Review Board's cost
// recommendations: the top cost hotspots turned into rightsizing
// advice with synthesized savings figures.
func ARBRecommendations(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		hotspots, err := deps.Graph.CostHotspots(ctx, 5)
		if err != nil {
			deps.respond(c, "arb", "arb_recommendations", fallbackRecommendations(), true)
			return
		}
		spend, err := deps.TS.CostSummary(ctx, deps.window())
		if err != nil {
			deps.respond(c, "arb", "arb_recommendations", fallbackRecommendations(), true)
			return
		}

		recs := make([]gin.H, 0, len(hotspots))
		for i, h := range hotspots {
			recs = append(recs, gin.H{
				"id":                  fmt.Sprintf("ARB-%03d", i+1),
				"entity":              h.Name,
				"label":               h.Label,
				"recommendation":      "Rightsize " + h.Name,
				"monthly_savings_usd": h.MonthlyCost * 0.3,
				"risk":                "low",
			})
		}
		deps.respond(c, "arb", "arb_recommendations", gin.H{
			"source":          "live",
			"total_waste_usd": spend.WasteUSD,
			"recommendations": recs,
		}, false)
	}
}

// ARBFindings serves architecture findings: critical dependencies and
// the recent security posture.
func ARBFindings(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		severities, err := deps.TS.SecurityEventCounts(ctx, deps.window())
		if err != nil {
			deps.respond(c, "arb", "arb_findings", fallbackFindings(), true)
			return
		}
		hotspots, err := deps.Graph.CostHotspots(ctx, 3)
		if err != nil {
			deps.respond(c, "arb", "arb_findings", fallbackFindings(), true)
			return
		}

		findings := make([]gin.H, 0, len(hotspots))
		for i, h := range hotspots {
			findings = append(findings, gin.H{
				"id":       fmt.Sprintf("FND-%03d", i+1),
				"entity":   h.Name,
				"severity": "medium",
				"summary":  fmt.Sprintf("%s concentrates %.0f USD of monthly spend on a single node", h.Name, h.MonthlyCost),
			})
		}
		deps.respond(c, "arb", "arb_findings", gin.H{
			"source":          "live",
			"security_events": severities,
			"findings":        findings,
		}, false)
	}
}
