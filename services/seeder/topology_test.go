// Copyright (C) 2026 StrataView Systems (eng@strataview.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package seeder

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strataview/strataview/pkg/config"
	"github.com/strataview/strataview/pkg/graphstore"
	"github.com/strataview/strataview/pkg/retry"
)

// countingRunner tallies the rows submitted through UNWIND batches.
type countingRunner struct {
	nodeRows int64
	relRows  int64
	queries  []string
}

func (c *countingRunner) Run(ctx context.Context, query string, params map[string]any) (*neo4j.EagerResult, error) {
	c.queries = append(c.queries, query)
	if rows, ok := params["rows"].([]map[string]any); ok {
		if strings.Contains(query, "CREATE (n:") {
			c.nodeRows += int64(len(rows))
		} else {
			c.relRows += int64(len(rows))
		}
	}
	return &neo4j.EagerResult{}, nil
}

func testSeederConfig(seed int64) config.SeederConfig {
	return config.SeederConfig{Scale: "demo", BatchSize: 25, Seed: seed, Days: 1}
}

func newTestTopologyGenerator(runner graphstore.Runner, seed int64) *TopologyGenerator {
	store := graphstore.NewWithRunner(runner, retry.DefaultConfig())
	return NewTopologyGenerator(store, testSeederConfig(seed), slog.Default())
}

func TestGenerate_SummaryMatchesSubmittedRows(t *testing.T) {
	runner := &countingRunner{}
	gen := newTestTopologyGenerator(runner, 42)

	summary, roster, err := gen.Generate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, runner.nodeRows, summary.TotalNodes,
		"summary node count must equal the rows submitted for insert")
	assert.Equal(t, runner.relRows, summary.TotalRelationships,
		"summary relationship count must equal the rows submitted for insert")
	assert.NotNil(t, roster)
}

func TestGenerate_MatchesPresetCounts(t *testing.T) {
	runner := &countingRunner{}
	gen := newTestTopologyGenerator(runner, 42)

	summary, roster, err := gen.Generate(context.Background())
	require.NoError(t, err)

	preset := PresetFor("demo")
	assert.Equal(t, int64(preset.Services), summary.NodesByLabel[graphstore.LabelService])
	assert.Equal(t, int64(preset.Clusters), summary.NodesByLabel[graphstore.LabelEKSCluster])
	assert.Equal(t, int64(preset.EC2Instances), summary.NodesByLabel[graphstore.LabelEC2Instance])
	assert.Len(t, roster.Services, preset.Services)

	// Every service lands on exactly one cluster.
	assert.Equal(t, int64(preset.Services), summary.RelationshipsByType[graphstore.RelDeployedOn])
}

func TestGenerate_WipesBeforeInserting(t *testing.T) {
	runner := &countingRunner{}
	gen := newTestTopologyGenerator(runner, 1)

	_, _, err := gen.Generate(context.Background())
	require.NoError(t, err)

	require.NotEmpty(t, runner.queries)
	assert.Contains(t, runner.queries[0], "DETACH DELETE",
		"every run starts from an empty graph")
	assert.Contains(t, runner.queries[1], "CREATE CONSTRAINT")
}

func TestGenerate_DeterministicForSeed(t *testing.T) {
	_, rosterA, err := newTestTopologyGenerator(&countingRunner{}, 7).Generate(context.Background())
	require.NoError(t, err)
	_, rosterB, err := newTestTopologyGenerator(&countingRunner{}, 7).Generate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, rosterA.Services, rosterB.Services)
	assert.Equal(t, rosterA.EC2Instances, rosterB.EC2Instances, "RNG-derived names repeat")
	assert.Equal(t, rosterA.ServiceEdges, rosterB.ServiceEdges, "edge wiring repeats")

	_, rosterC, err := newTestTopologyGenerator(&countingRunner{}, 8).Generate(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, rosterA.EC2Instances, rosterC.EC2Instances, "a different seed shifts the estate")
}

func TestGenerate_EdgeEndpointsComeFromRoster(t *testing.T) {
	runner := &countingRunner{}
	gen := newTestTopologyGenerator(runner, 3)

	_, roster, err := gen.Generate(context.Background())
	require.NoError(t, err)

	known := map[string]bool{}
	for _, pool := range [][]string{roster.Services, roster.WebServices} {
		for _, n := range pool {
			known[n] = true
		}
	}
	for _, e := range roster.ServiceEdges {
		assert.True(t, known[e.Source], "edge source %q not in roster", e.Source)
	}
}

func TestChunkRows_RespectsBatchSize(t *testing.T) {
	rows := make([]map[string]any, 120)
	batches := chunkRows(rows, 50)

	require.Len(t, batches, 3)
	assert.Len(t, batches[0], 50)
	assert.Len(t, batches[2], 20)

	assert.Len(t, chunkRows(rows, 0), 1, "non-positive size falls back to one default batch")
}

func TestPresetFor_UnknownScaleFallsBackToDemo(t *testing.T) {
	assert.Equal(t, presets["demo"], PresetFor("galactic"))
	assert.Equal(t, presets["enterprise"], PresetFor("enterprise"))
}

func TestPresetTotalsMatchAdvertisedScales(t *testing.T) {
	total := func(p ScalePreset) int {
		return p.Clusters + p.Services + p.RDSInstances + p.EC2Instances +
			p.LoadBalancers + p.WebServices + p.Applications + p.ExternalServices
	}

	assert.Equal(t, 600, total(presets["demo"]))
	assert.InDelta(t, 5000, total(presets["standard"]), 500)
	assert.InDelta(t, 50000, total(presets["enterprise"]), 2500)
}
