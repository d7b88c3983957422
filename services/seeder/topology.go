// Copyright (C) 2026 StrataView Systems (eng@strataview.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package seeder

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/strataview/strataview/pkg/config"
	"github.com/strataview/strataview/pkg/graphstore"
)

// ScalePreset sizes the generated estate.
type ScalePreset struct {
	Clusters         int
	Services         int
	RDSInstances     int
	EC2Instances     int
	LoadBalancers    int
	WebServices      int
	Applications     int
	ExternalServices int
}

// Preset totals: demo ~600 nodes, standard ~5k, enterprise ~50k.
var presets = map[string]ScalePreset{
	"demo": {
		Clusters: 5, Services: 150, RDSInstances: 40, EC2Instances: 280,
		LoadBalancers: 15, WebServices: 40, Applications: 50, ExternalServices: 20,
	},
	"standard": {
		Clusters: 12, Services: 1000, RDSInstances: 120, EC2Instances: 3200,
		LoadBalancers: 60, WebServices: 200, Applications: 250, ExternalServices: 60,
	},
	"enterprise": {
		Clusters: 60, Services: 9000, RDSInstances: 1200, EC2Instances: 36000,
		LoadBalancers: 300, WebServices: 1200, Applications: 1500, ExternalServices: 240,
	},
}

// PresetFor maps a configured scale name to its preset. Unknown names
// fall back to demo.
func PresetFor(scale string) ScalePreset {
	if p, ok := presets[scale]; ok {
		return p
	}
	return presets["demo"]
}

// Edge is one directed service-to-service link, kept for the network
// metrics backfill.
type Edge struct {
	Source string
	Target string
}

// Roster lists every generated entity by kind. The metrics generator
// consumes it so the two stores describe the same estate.
type Roster struct {
	Clusters         []string
	Services         []string
	RDSInstances     []string
	EC2Instances     []string
	LoadBalancers    []string
	WebServices      []string
	Applications     []string
	ExternalServices []string
	ServiceEdges     []Edge
}

// TopologyGenerator writes the synthetic estate into the graph store.
type TopologyGenerator struct {
	graph *graphstore.Store
	cfg   config.SeederConfig
	log   *slog.Logger
	cat   *Catalog
}

// NewTopologyGenerator builds a generator. A zero cfg.Seed still
// produces a valid estate; it is just seeded with zero.
func NewTopologyGenerator(graph *graphstore.Store, cfg config.SeederConfig, log *slog.Logger) *TopologyGenerator {
	seedFaker(cfg.Seed)
	return &TopologyGenerator{
		graph: graph,
		cfg:   cfg,
		log:   log,
		cat:   NewCatalog(cfg.Seed),
	}
}

// Generate wipes the graph and recreates the full estate. The returned
// summary counts what was submitted for insert, so callers can verify
// it against the store.
func (g *TopologyGenerator) Generate(ctx context.Context) (graphstore.TopologySummary, *Roster, error) {
	summary := graphstore.EmptyTopologySummary()
	preset := PresetFor(g.cfg.Scale)

	g.log.Info("generating topology",
		"scale", g.cfg.Scale, "seed", g.cfg.Seed, "batch_size", g.cfg.BatchSize)

	if err := g.graph.Wipe(ctx); err != nil {
		return summary, nil, err
	}
	if err := g.graph.EnsureConstraints(ctx); err != nil {
		return summary, nil, err
	}

	roster, nodes := g.buildNodes(preset)
	for _, label := range graphstore.AllLabels {
		rows := nodes[label]
		for _, batch := range chunkRows(rows, g.cfg.BatchSize) {
			if err := g.graph.CreateNodes(ctx, label, batch); err != nil {
				return summary, nil, err
			}
			summary.NodesByLabel[label] += int64(len(batch))
			summary.TotalNodes += int64(len(batch))
		}
	}

	for _, spec := range g.buildRelationships(preset, roster) {
		for _, batch := range chunkSpec(spec, g.cfg.BatchSize) {
			if err := g.graph.CreateRelationships(ctx, batch); err != nil {
				return summary, nil, err
			}
			summary.RelationshipsByType[batch.Type] += int64(len(batch.Rows))
			summary.TotalRelationships += int64(len(batch.Rows))
		}
	}

	g.log.Info("topology generated",
		"nodes", summary.TotalNodes, "relationships", summary.TotalRelationships)
	return summary, roster, nil
}

// buildNodes produces every node row, keyed by label.
func (g *TopologyGenerator) buildNodes(p ScalePreset) (*Roster, map[string][]map[string]any) {
	roster := &Roster{}
	nodes := map[string][]map[string]any{}

	for i := 0; i < p.Clusters; i++ {
		name := g.cat.ClusterName(i)
		roster.Clusters = append(roster.Clusters, name)
		nodes[graphstore.LabelEKSCluster] = append(nodes[graphstore.LabelEKSCluster], map[string]any{
			"name":         name,
			"region":       regions[i%len(regions)],
			"version":      g.cat.EKSVersion(),
			"node_count":   8 + g.cat.Intn(56),
			"monthly_cost": g.cat.MonthlyCost(4000, 30000),
		})
	}

	for i := 0; i < p.Services; i++ {
		name := g.cat.ServiceName(i)
		roster.Services = append(roster.Services, name)
		nodes[graphstore.LabelService] = append(nodes[graphstore.LabelService], map[string]any{
			"name":         name,
			"tier":         g.cat.Tier(),
			"owner":        g.cat.Owner(),
			"replicas":     2 + g.cat.Intn(10),
			"monthly_cost": g.cat.MonthlyCost(150, 3500),
		})
	}

	for i := 0; i < p.RDSInstances; i++ {
		name := g.cat.RDSName(i)
		roster.RDSInstances = append(roster.RDSInstances, name)
		nodes[graphstore.LabelRDSInstance] = append(nodes[graphstore.LabelRDSInstance], map[string]any{
			"name":           name,
			"engine":         g.cat.RDSEngine(),
			"instance_class": "db." + g.cat.EC2Type(),
			"storage_gb":     100 + g.cat.Intn(1900),
			"multi_az":       g.cat.Intn(2) == 0,
			"monthly_cost":   g.cat.MonthlyCost(400, 9000),
		})
	}

	for i := 0; i < p.EC2Instances; i++ {
		name := g.cat.EC2Name(i)
		roster.EC2Instances = append(roster.EC2Instances, name)
		nodes[graphstore.LabelEC2Instance] = append(nodes[graphstore.LabelEC2Instance], map[string]any{
			"name":          name,
			"instance_type": g.cat.EC2Type(),
			"region":        g.cat.Region(),
			"monthly_cost":  g.cat.MonthlyCost(60, 1200),
		})
	}

	for i := 0; i < p.LoadBalancers; i++ {
		name := g.cat.LoadBalancerName(i)
		roster.LoadBalancers = append(roster.LoadBalancers, name)
		nodes[graphstore.LabelLoadBalancer] = append(nodes[graphstore.LabelLoadBalancer], map[string]any{
			"name":         name,
			"region":       regions[i%len(regions)],
			"scheme":       "internet-facing",
			"monthly_cost": g.cat.MonthlyCost(30, 400),
		})
	}

	for i := 0; i < p.WebServices; i++ {
		name := g.cat.WebServiceName(i)
		roster.WebServices = append(roster.WebServices, name)
		nodes[graphstore.LabelWebService] = append(nodes[graphstore.LabelWebService], map[string]any{
			"name":         name,
			"tier":         g.cat.Tier(),
			"monthly_cost": g.cat.MonthlyCost(100, 1500),
		})
	}

	for i := 0; i < p.Applications; i++ {
		name := g.cat.ApplicationName(i)
		roster.Applications = append(roster.Applications, name)
		nodes[graphstore.LabelApplication] = append(nodes[graphstore.LabelApplication], map[string]any{
			"name":          name,
			"owner":         g.cat.Owner(),
			"business_unit": []string{"retail", "wholesale", "platform", "finance"}[g.cat.Intn(4)],
		})
	}

	for i := 0; i < p.ExternalServices; i++ {
		name := g.cat.ExternalName(i)
		roster.ExternalServices = append(roster.ExternalServices, name)
		nodes[graphstore.LabelExternalService] = append(nodes[graphstore.LabelExternalService], map[string]any{
			"name":     name,
			"endpoint": g.cat.Endpoint(),
		})
	}

	return roster, nodes
}

// buildRelationships wires the estate together. Every edge endpoint
// comes out of the roster, so the MATCH-by-name inserts always find
// their nodes.
func (g *TopologyGenerator) buildRelationships(p ScalePreset, r *Roster) []graphstore.RelationshipSpec {
	var specs []graphstore.RelationshipSpec

	deployed := graphstore.RelationshipSpec{
		Type:      graphstore.RelDeployedOn,
		FromLabel: graphstore.LabelService,
		ToLabel:   graphstore.LabelEKSCluster,
	}
	for _, svc := range r.Services {
		deployed.Rows = append(deployed.Rows, graphstore.RelationshipRow{
			From: svc,
			To:   r.Clusters[g.cat.Intn(len(r.Clusters))],
		})
	}
	specs = append(specs, deployed)

	depends := graphstore.RelationshipSpec{
		Type:      graphstore.RelDependsOn,
		FromLabel: graphstore.LabelService,
		ToLabel:   graphstore.LabelService,
	}
	for i, svc := range r.Services {
		seen := map[string]bool{svc: true}
		for n := 1 + g.cat.Intn(3); n > 0; n-- {
			target := r.Services[g.cat.Intn(len(r.Services))]
			if seen[target] {
				continue
			}
			seen[target] = true
			depends.Rows = append(depends.Rows, graphstore.RelationshipRow{
				From:  svc,
				To:    target,
				Props: map[string]any{"critical": i%4 == 0},
			})
			r.ServiceEdges = append(r.ServiceEdges, Edge{Source: svc, Target: target})
		}
	}
	specs = append(specs, depends)

	stores := graphstore.RelationshipSpec{
		Type:      graphstore.RelStoresIn,
		FromLabel: graphstore.LabelService,
		ToLabel:   graphstore.LabelRDSInstance,
	}
	for _, svc := range r.Services {
		if g.cat.Intn(10) < 4 {
			stores.Rows = append(stores.Rows, graphstore.RelationshipRow{
				From: svc,
				To:   r.RDSInstances[g.cat.Intn(len(r.RDSInstances))],
			})
		}
	}
	specs = append(specs, stores)

	runs := graphstore.RelationshipSpec{
		Type:      graphstore.RelRunsOn,
		FromLabel: graphstore.LabelEC2Instance,
		ToLabel:   graphstore.LabelEKSCluster,
	}
	for _, inst := range r.EC2Instances {
		runs.Rows = append(runs.Rows, graphstore.RelationshipRow{
			From: inst,
			To:   r.Clusters[g.cat.Intn(len(r.Clusters))],
		})
	}
	specs = append(specs, runs)

	routes := graphstore.RelationshipSpec{
		Type:      graphstore.RelRoutesTo,
		FromLabel: graphstore.LabelLoadBalancer,
		ToLabel:   graphstore.LabelWebService,
	}
	for i, web := range r.WebServices {
		routes.Rows = append(routes.Rows, graphstore.RelationshipRow{
			From: r.LoadBalancers[i%len(r.LoadBalancers)],
			To:   web,
		})
	}
	specs = append(specs, routes)

	connects := graphstore.RelationshipSpec{
		Type:      graphstore.RelConnectsTo,
		FromLabel: graphstore.LabelWebService,
		ToLabel:   graphstore.LabelService,
	}
	for _, web := range r.WebServices {
		for n := 1 + g.cat.Intn(2); n > 0; n-- {
			target := r.Services[g.cat.Intn(len(r.Services))]
			connects.Rows = append(connects.Rows, graphstore.RelationshipRow{From: web, To: target})
			r.ServiceEdges = append(r.ServiceEdges, Edge{Source: web, Target: target})
		}
	}
	specs = append(specs, connects)

	appDeps := graphstore.RelationshipSpec{
		Type:      graphstore.RelDependsOn,
		FromLabel: graphstore.LabelApplication,
		ToLabel:   graphstore.LabelService,
	}
	for _, app := range r.Applications {
		seen := map[string]bool{}
		for n := 1 + g.cat.Intn(3); n > 0; n-- {
			target := r.Services[g.cat.Intn(len(r.Services))]
			if seen[target] {
				continue
			}
			seen[target] = true
			appDeps.Rows = append(appDeps.Rows, graphstore.RelationshipRow{From: app, To: target})
		}
	}
	specs = append(specs, appDeps)

	external := graphstore.RelationshipSpec{
		Type:      graphstore.RelConnectsTo,
		FromLabel: graphstore.LabelService,
		ToLabel:   graphstore.LabelExternalService,
	}
	for _, svc := range r.Services {
		if g.cat.Intn(10) < 3 {
			external.Rows = append(external.Rows, graphstore.RelationshipRow{
				From: svc,
				To:   r.ExternalServices[g.cat.Intn(len(r.ExternalServices))],
			})
		}
	}
	specs = append(specs, external)

	return specs
}

// chunkRows splits node rows into insert batches.
func chunkRows(rows []map[string]any, size int) [][]map[string]any {
	if size <= 0 {
		size = 500
	}
	var out [][]map[string]any
	for start := 0; start < len(rows); start += size {
		end := start + size
		if end > len(rows) {
			end = len(rows)
		}
		out = append(out, rows[start:end])
	}
	return out
}

// chunkSpec splits one relationship spec into insert batches.
func chunkSpec(spec graphstore.RelationshipSpec, size int) []graphstore.RelationshipSpec {
	if size <= 0 {
		size = 500
	}
	var out []graphstore.RelationshipSpec
	for start := 0; start < len(spec.Rows); start += size {
		end := start + size
		if end > len(spec.Rows) {
			end = len(spec.Rows)
		}
		out = append(out, graphstore.RelationshipSpec{
			Type:      spec.Type,
			FromLabel: spec.FromLabel,
			ToLabel:   spec.ToLabel,
			Rows:      spec.Rows[start:end],
		})
	}
	return out
}

// Verify compares a generation summary against what the store reports.
// Used by the CLI after a seed run.
func Verify(ctx context.Context, graph *graphstore.Store, want graphstore.TopologySummary) error {
	got, err := graph.TopologySummary(ctx)
	if err != nil {
		return fmt.Errorf("could not read back the topology summary: %w", err)
	}
	if got.TotalNodes != want.TotalNodes {
		return fmt.Errorf("node count mismatch: generated %d, stored %d",
			want.TotalNodes, got.TotalNodes)
	}
	if got.TotalRelationships != want.TotalRelationships {
		return fmt.Errorf("relationship count mismatch: generated %d, stored %d",
			want.TotalRelationships, got.TotalRelationships)
	}
	return nil
}
