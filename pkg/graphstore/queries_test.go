// Copyright (C) 2026 StrataView Systems (eng@strataview.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package graphstore

import (
	"context"
	"errors"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopologySummary_AggregatesCounts(t *testing.T) {
	keys := []string{"label", "count"}
	relKeys := []string{"type", "count"}
	runner := &fakeRunner{
		results: []*neo4j.EagerResult{
			result(keys,
				record(keys, "Service", int64(120)),
				record(keys, "EKSCluster", int64(3)),
			),
			result(relKeys,
				record(relKeys, "DEPENDS_ON", int64(240)),
				record(relKeys, "DEPLOYED_ON", int64(120)),
			),
		},
	}
	store := NewWithRunner(runner, fastRetry())

	summary, err := store.TopologySummary(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(123), summary.TotalNodes)
	assert.Equal(t, int64(360), summary.TotalRelationships)
	assert.Equal(t, int64(120), summary.NodesByLabel["Service"])
	assert.Equal(t, int64(240), summary.RelationshipsByType["DEPENDS_ON"])
}

func TestTopologySummary_FallsBackEmptyAfterThreeAttempts(t *testing.T) {
	boom := errors.New("connection refused")
	runner := &fakeRunner{errs: []error{boom, boom, boom}}
	store := NewWithRunner(runner, fastRetry())

	summary, err := store.TopologySummary(context.Background())
	require.Error(t, err)

	assert.Equal(t, 3, runner.calls, "exactly three attempts, then fallback")
	assert.Equal(t, EmptyTopologySummary(), summary)
	assert.NotNil(t, summary.NodesByLabel, "fallback maps are usable, not nil")
}

func TestTopologySummary_RetriesThenSucceeds(t *testing.T) {
	keys := []string{"label", "count"}
	runner := &fakeRunner{
		errs: []error{errors.New("transient"), nil, nil},
		results: []*neo4j.EagerResult{
			nil,
			result(keys, record(keys, "Service", int64(5))),
			result([]string{"type", "count"}),
		},
	}
	store := NewWithRunner(runner, fastRetry())

	summary, err := store.TopologySummary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(5), summary.TotalNodes)
	assert.Equal(t, 3, runner.calls, "one failed attempt plus two queries on the retry")
}

func TestServiceDependencies_ReadsRecords(t *testing.T) {
	keys := []string{"name", "label", "tier", "critical"}
	runner := &fakeRunner{
		results: []*neo4j.EagerResult{result(keys,
			record(keys, "payments-db", "RDSInstance", "critical", true),
			record(keys, "session-cache", "ExternalService", "", false),
		)},
	}
	store := NewWithRunner(runner, fastRetry())

	deps, err := store.ServiceDependencies(context.Background(), "payments")
	require.NoError(t, err)

	require.Len(t, deps, 2)
	assert.Equal(t, Dependency{Name: "payments-db", Label: "RDSInstance", Tier: "critical", Critical: true}, deps[0])
	assert.Equal(t, "payments", runner.params[0]["name"], "service name is parameterized, never interpolated")
}

func TestServiceDependencies_RejectsInjection(t *testing.T) {
	runner := &fakeRunner{}
	store := NewWithRunner(runner, fastRetry())

	_, err := store.ServiceDependencies(context.Background(), "x'}) MATCH (n) DETACH DELETE n //")
	require.Error(t, err)
	assert.Zero(t, runner.calls)
}

func TestBlastRadius_ReturnsEmptySliceOnExhaustion(t *testing.T) {
	boom := errors.New("neo.TransientError")
	runner := &fakeRunner{errs: []error{boom, boom, boom}}
	store := NewWithRunner(runner, fastRetry())

	impacted, err := store.BlastRadius(context.Background(), "payments")
	require.Error(t, err)
	assert.NotNil(t, impacted)
	assert.Empty(t, impacted)
	assert.Equal(t, 3, runner.calls)
}

func TestBlastRadius_ReadsHops(t *testing.T) {
	keys := []string{"name", "label", "hops"}
	runner := &fakeRunner{
		results: []*neo4j.EagerResult{result(keys,
			record(keys, "checkout", "Service", int64(1)),
			record(keys, "storefront", "WebService", int64(2)),
		)},
	}
	store := NewWithRunner(runner, fastRetry())

	impacted, err := store.BlastRadius(context.Background(), "payments")
	require.NoError(t, err)
	require.Len(t, impacted, 2)
	assert.Equal(t, int64(2), impacted[1].Hops)
}

func TestClusterInventory_CountsServices(t *testing.T) {
	keys := []string{"name", "region", "version", "services"}
	runner := &fakeRunner{
		results: []*neo4j.EagerResult{result(keys,
			record(keys, "prod-east", "us-east-1", "1.29", int64(42)),
			record(keys, "prod-west", "us-west-2", "1.29", int64(38)),
		)},
	}
	store := NewWithRunner(runner, fastRetry())

	clusters, err := store.ClusterInventory(context.Background())
	require.NoError(t, err)
	require.Len(t, clusters, 2)
	assert.Equal(t, ClusterInfo{Name: "prod-east", Region: "us-east-1", Version: "1.29", Services: 42}, clusters[0])
}

func TestCostHotspots_DefaultsLimit(t *testing.T) {
	keys := []string{"name", "label", "monthly_cost"}
	runner := &fakeRunner{
		results: []*neo4j.EagerResult{result(keys,
			record(keys, "prod-east", "EKSCluster", 18432.50),
		)},
	}
	store := NewWithRunner(runner, fastRetry())

	hotspots, err := store.CostHotspots(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 10, runner.params[0]["limit"], "non-positive limits clamp to 10")
	require.Len(t, hotspots, 1)
	assert.InDelta(t, 18432.50, hotspots[0].MonthlyCost, 0.001)
}

func TestCostHotspots_CoercesIntegerCosts(t *testing.T) {
	keys := []string{"name", "label", "monthly_cost"}
	runner := &fakeRunner{
		results: []*neo4j.EagerResult{result(keys,
			record(keys, "orders-db", "RDSInstance", int64(900)),
		)},
	}
	store := NewWithRunner(runner, fastRetry())

	hotspots, err := store.CostHotspots(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, hotspots, 1)
	assert.InDelta(t, 900.0, hotspots[0].MonthlyCost, 0.001)
}
