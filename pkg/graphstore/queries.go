// Copyright (C) 2026 StrataView Systems (eng@strataview.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package graphstore

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/strataview/strataview/pkg/retry"
	"github.com/strataview/strataview/pkg/validation"
)

// =============================================================================
// Read Path (gateway)
//
// Every read goes through the shared retry wrapper and returns an
// empty-shaped fallback plus the last error on exhaustion. Callers
// decide whether to serve the empty shape or a randomized payload.
// =============================================================================

// TopologySummary returns node and relationship counts by kind.
func (s *Store) TopologySummary(ctx context.Context) (TopologySummary, error) {
	return retry.Do(ctx, s.retry, func(ctx context.Context) (TopologySummary, error) {
		summary := EmptyTopologySummary()

		nodes, err := s.runner.Run(ctx,
			"MATCH (n) RETURN labels(n)[0] AS label, count(n) AS count", nil)
		if err != nil {
			return summary, err
		}
		for _, rec := range nodes.Records {
			label, _ := stringValue(rec, "label")
			count, _ := intValue(rec, "count")
			summary.NodesByLabel[label] = count
			summary.TotalNodes += count
		}

		rels, err := s.runner.Run(ctx,
			"MATCH ()-[r]->() RETURN type(r) AS type, count(r) AS count", nil)
		if err != nil {
			return summary, err
		}
		for _, rec := range rels.Records {
			relType, _ := stringValue(rec, "type")
			count, _ := intValue(rec, "count")
			summary.RelationshipsByType[relType] = count
			summary.TotalRelationships += count
		}

		return summary, nil
	}, EmptyTopologySummary())
}

// ServiceDependencies returns the direct downstream dependencies of a
// service.
func (s *Store) ServiceDependencies(ctx context.Context, service string) ([]Dependency, error) {
	if err := validation.ValidateEntityName(service); err != nil {
		return []Dependency{}, err
	}

	return retry.Do(ctx, s.retry, func(ctx context.Context) ([]Dependency, error) {
		result, err := s.runner.Run(ctx,
			"MATCH (s:Service {name: $name})-[d:DEPENDS_ON]->(dep) "+
				"RETURN dep.name AS name, labels(dep)[0] AS label, "+
				"coalesce(dep.tier, '') AS tier, coalesce(d.critical, false) AS critical",
			map[string]any{"name": service})
		if err != nil {
			return nil, err
		}

		deps := make([]Dependency, 0, len(result.Records))
		for _, rec := range result.Records {
			var dep Dependency
			dep.Name, _ = stringValue(rec, "name")
			dep.Label, _ = stringValue(rec, "label")
			dep.Tier, _ = stringValue(rec, "tier")
			dep.Critical, _ = boolValue(rec, "critical")
			deps = append(deps, dep)
		}
		return deps, nil
	}, []Dependency{})
}

// BlastRadius returns everything within two DEPENDS_ON hops upstream of
// a service: the entities that would feel an outage of it.
func (s *Store) BlastRadius(ctx context.Context, service string) ([]ImpactedEntity, error) {
	if err := validation.ValidateEntityName(service); err != nil {
		return []ImpactedEntity{}, err
	}

	return retry.Do(ctx, s.retry, func(ctx context.Context) ([]ImpactedEntity, error) {
		result, err := s.runner.Run(ctx,
			"MATCH path = (impacted)-[:DEPENDS_ON*1..2]->(s:Service {name: $name}) "+
				"RETURN DISTINCT impacted.name AS name, labels(impacted)[0] AS label, "+
				"min(length(path)) AS hops",
			map[string]any{"name": service})
		if err != nil {
			return nil, err
		}

		impacted := make([]ImpactedEntity, 0, len(result.Records))
		for _, rec := range result.Records {
			var e ImpactedEntity
			e.Name, _ = stringValue(rec, "name")
			e.Label, _ = stringValue(rec, "label")
			e.Hops, _ = intValue(rec, "hops")
			impacted = append(impacted, e)
		}
		return impacted, nil
	}, []ImpactedEntity{})
}

// ClusterInventory returns every EKS cluster with its deployed service
// count.
func (s *Store) ClusterInventory(ctx context.Context) ([]ClusterInfo, error) {
	return retry.Do(ctx, s.retry, func(ctx context.Context) ([]ClusterInfo, error) {
		result, err := s.runner.Run(ctx,
			"MATCH (c:EKSCluster) "+
				"OPTIONAL MATCH (svc:Service)-[:DEPLOYED_ON]->(c) "+
				"RETURN c.name AS name, coalesce(c.region, '') AS region, "+
				"coalesce(c.version, '') AS version, count(svc) AS services "+
				"ORDER BY name", nil)
		if err != nil {
			return nil, err
		}

		clusters := make([]ClusterInfo, 0, len(result.Records))
		for _, rec := range result.Records {
			var c ClusterInfo
			c.Name, _ = stringValue(rec, "name")
			c.Region, _ = stringValue(rec, "region")
			c.Version, _ = stringValue(rec, "version")
			c.Services, _ = intValue(rec, "services")
			clusters = append(clusters, c)
		}
		return clusters, nil
	}, []ClusterInfo{})
}

// CostHotspots returns the top-N nodes by synthetic monthly cost.
func (s *Store) CostHotspots(ctx context.Context, limit int) ([]CostHotspot, error) {
	if limit <= 0 {
		limit = 10
	}

	return retry.Do(ctx, s.retry, func(ctx context.Context) ([]CostHotspot, error) {
		result, err := s.runner.Run(ctx,
			"MATCH (n) WHERE n.monthly_cost IS NOT NULL "+
				"RETURN n.name AS name, labels(n)[0] AS label, n.monthly_cost AS monthly_cost "+
				"ORDER BY n.monthly_cost DESC LIMIT $limit",
			map[string]any{"limit": limit})
		if err != nil {
			return nil, err
		}

		hotspots := make([]CostHotspot, 0, len(result.Records))
		for _, rec := range result.Records {
			var h CostHotspot
			h.Name, _ = stringValue(rec, "name")
			h.Label, _ = stringValue(rec, "label")
			h.MonthlyCost, _ = floatValue(rec, "monthly_cost")
			hotspots = append(hotspots, h)
		}
		return hotspots, nil
	}, []CostHotspot{})
}

// =============================================================================
// Record Helpers
// =============================================================================

func stringValue(rec *neo4j.Record, key string) (string, bool) {
	v, ok := rec.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func intValue(rec *neo4j.Record, key string) (int64, bool) {
	v, ok := rec.Get(key)
	if !ok {
		return 0, false
	}
	n, ok := v.(int64)
	return n, ok
}

func floatValue(rec *neo4j.Record, key string) (float64, bool) {
	v, ok := rec.Get(key)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func boolValue(rec *neo4j.Record, key string) (bool, bool) {
	v, ok := rec.Get(key)
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}
