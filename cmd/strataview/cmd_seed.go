// Copyright (C) 2026 StrataView Systems (eng@strataview.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/strataview/strataview/pkg/config"
	"github.com/strataview/strataview/pkg/graphstore"
	"github.com/strataview/strataview/pkg/tsdb"
	"github.com/strataview/strataview/pkg/ux"
	"github.com/strataview/strataview/services/seeder"
)

var (
	seedScale string
	seedValue int64
	seedDays  int

	seedCmd = &cobra.Command{
		Use:   "seed",
		Short: "Generate the synthetic infrastructure estate",
		Long: `Wipes and regenerates the demo data: the AWS-style topology in
Neo4j and the metric history in TimescaleDB. Every run replaces the
previous estate; there is no incremental mode.`,
	}

	seedTopologyCmd = &cobra.Command{
		Use:   "topology",
		Short: "Seed the Neo4j topology (clusters, services, dependencies)",
		Run:   runSeedTopology,
	}

	seedMetricsCmd = &cobra.Command{
		Use:   "metrics",
		Short: "Backfill the TimescaleDB metric history for the current topology",
		Long: `Regenerates the topology first (the metric entities must match the
graph), then backfills the configured number of days of metrics.`,
		Run: runSeedMetrics,
	}

	seedAllCmd = &cobra.Command{
		Use:   "all",
		Short: "Seed the topology and the metric history in one run",
		Run:   runSeedMetrics,
	}
)

func init() {
	seedCmd.PersistentFlags().StringVar(&seedScale, "scale", "",
		"scale preset: demo, standard, or enterprise (default from config)")
	seedCmd.PersistentFlags().Int64Var(&seedValue, "seed", -1,
		"RNG seed for reproducible estates (default from config)")
	seedCmd.PersistentFlags().IntVar(&seedDays, "days", 0,
		"days of metric history to backfill (default from config)")

	seedCmd.AddCommand(seedTopologyCmd)
	seedCmd.AddCommand(seedMetricsCmd)
	seedCmd.AddCommand(seedAllCmd)
	rootCmd.AddCommand(seedCmd)
}

func runSeedTopology(cmd *cobra.Command, args []string) {
	graph := mustGraphStore()
	defer graph.Close(context.Background())

	summary, _, err := generateTopology(context.Background(), graph)
	if err != nil {
		ux.Error("Topology seed failed: " + err.Error())
		os.Exit(1)
	}
	printTopologySummary(summary)
}

func runSeedMetrics(cmd *cobra.Command, args []string) {
	graph := mustGraphStore()
	defer graph.Close(context.Background())

	ctx := context.Background()
	summary, roster, err := generateTopology(ctx, graph)
	if err != nil {
		ux.Error("Topology seed failed: " + err.Error())
		os.Exit(1)
	}
	printTopologySummary(summary)

	ts, err := tsdb.Open(cfg.Timescale.DSN)
	if err != nil {
		ux.Error("Could not open TimescaleDB: " + err.Error())
		os.Exit(1)
	}
	defer ts.Close()

	sc := cfg.Seeder
	applySeedFlags(&sc)

	spinner := ux.NewSpinner(fmt.Sprintf("Backfilling %d days of metrics...", sc.Days))
	spinner.Start()
	metrics, err := seeder.NewMetricsGenerator(ts, seeder.NewMirror(cfg.Influx), sc, slog.Default()).
		Generate(ctx, roster)
	if err != nil {
		spinner.StopWithError("Metrics backfill failed: " + err.Error())
		os.Exit(1)
	}
	spinner.StopWithSuccess(fmt.Sprintf("Backfilled %d metric rows", metrics.TotalRows))

	// Cross-check the summary against what actually landed.
	counts, err := ts.RowCounts(ctx)
	if err != nil {
		ux.Warning("Could not verify row counts: " + err.Error())
	} else {
		for table, want := range metrics.RowsByTable {
			if counts[table] != want {
				ux.Warning(fmt.Sprintf("%s: submitted %d rows, stored %d",
					table, want, counts[table]))
			}
		}
	}
	ux.Box("Metric rows by table", ux.CountTable(metrics.RowsByTable))
}

func generateTopology(ctx context.Context, graph *graphstore.Store) (graphstore.TopologySummary, *seeder.Roster, error) {
	sc := cfg.Seeder
	applySeedFlags(&sc)

	spinner := ux.NewSpinner(fmt.Sprintf("Generating the %s topology...", sc.Scale))
	spinner.Start()
	start := time.Now()

	summary, roster, err := seeder.NewTopologyGenerator(graph, sc, slog.Default()).Generate(ctx)
	if err != nil {
		spinner.StopWithError("generation failed")
		return summary, nil, err
	}
	if err := seeder.Verify(ctx, graph, summary); err != nil {
		spinner.StopWithError("verification failed")
		return summary, roster, err
	}
	spinner.StopWithSuccess(fmt.Sprintf("Topology seeded and verified in %s",
		time.Since(start).Round(time.Millisecond)))
	return summary, roster, nil
}

// applySeedFlags layers the command flags over the file config.
func applySeedFlags(sc *config.SeederConfig) {
	if seedScale != "" {
		sc.Scale = seedScale
	}
	if seedValue >= 0 {
		sc.Seed = seedValue
	}
	if seedDays > 0 {
		sc.Days = seedDays
	}
}

func printTopologySummary(summary graphstore.TopologySummary) {
	ux.Box("Nodes by label", ux.CountTable(summary.NodesByLabel))
	ux.Box("Relationships by type", ux.CountTable(summary.RelationshipsByType))
}

func mustGraphStore() *graphstore.Store {
	graph, err := graphstore.New(cfg.Neo4j.URI, cfg.Neo4j.Username,
		cfg.Neo4j.Password, cfg.Neo4j.Database)
	if err != nil {
		ux.Error("Could not connect to Neo4j: " + err.Error())
		os.Exit(1)
	}
	if err := graph.Verify(context.Background()); err != nil {
		ux.Error("Neo4j is unreachable: " + err.Error())
		os.Exit(1)
	}
	return graph
}
