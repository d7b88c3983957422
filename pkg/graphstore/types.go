// Copyright (C) 2026 StrataView Systems (eng@strataview.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package graphstore

// Node labels for the synthetic AWS/Kubernetes estate. The seeder
// creates these, the gateway reads them.
const (
	LabelEKSCluster      = "EKSCluster"
	LabelService         = "Service"
	LabelRDSInstance     = "RDSInstance"
	LabelEC2Instance     = "EC2Instance"
	LabelLoadBalancer    = "LoadBalancer"
	LabelWebService      = "WebService"
	LabelApplication     = "Application"
	LabelExternalService = "ExternalService"
)

// Relationship types wiring the estate together.
const (
	RelDependsOn  = "DEPENDS_ON"
	RelConnectsTo = "CONNECTS_TO"
	RelDeployedOn = "DEPLOYED_ON"
	RelRoutesTo   = "ROUTES_TO"
	RelStoresIn   = "STORES_IN"
	RelRunsOn     = "RUNS_ON"
)

// AllLabels lists every node label that gets a uniqueness constraint.
var AllLabels = []string{
	LabelEKSCluster,
	LabelService,
	LabelRDSInstance,
	LabelEC2Instance,
	LabelLoadBalancer,
	LabelWebService,
	LabelApplication,
	LabelExternalService,
}

// RelationshipSpec is one batch of same-typed relationships for insert.
// From and To name the endpoint nodes by their unique name property.
type RelationshipSpec struct {
	Type      string
	FromLabel string
	ToLabel   string
	Rows      []RelationshipRow
}

// RelationshipRow is a single edge in a RelationshipSpec batch.
type RelationshipRow struct {
	From  string
	To    string
	Props map[string]any
}

// TopologySummary aggregates node and relationship counts by kind.
type TopologySummary struct {
	NodesByLabel        map[string]int64 `json:"nodes_by_label"`
	RelationshipsByType map[string]int64 `json:"relationships_by_type"`
	TotalNodes          int64            `json:"total_nodes"`
	TotalRelationships  int64            `json:"total_relationships"`
}

// EmptyTopologySummary is the fallback shape for a failed summary read.
func EmptyTopologySummary() TopologySummary {
	return TopologySummary{
		NodesByLabel:        map[string]int64{},
		RelationshipsByType: map[string]int64{},
	}
}

// Dependency is one downstream dependency of a service.
type Dependency struct {
	Name     string `json:"name"`
	Label    string `json:"label"`
	Tier     string `json:"tier,omitempty"`
	Critical bool   `json:"critical"`
}

// ImpactedEntity is a node inside a service's blast radius.
type ImpactedEntity struct {
	Name  string `json:"name"`
	Label string `json:"label"`
	Hops  int64  `json:"hops"`
}

// ClusterInfo summarizes one EKS cluster and its deployed services.
type ClusterInfo struct {
	Name     string `json:"name"`
	Region   string `json:"region"`
	Version  string `json:"version"`
	Services int64  `json:"services"`
}

// CostHotspot is one node ranked by synthetic monthly cost.
type CostHotspot struct {
	Name        string  `json:"name"`
	Label       string  `json:"label"`
	MonthlyCost float64 `json:"monthly_cost"`
}
