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
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/strataview/strataview/pkg/cache"
	"github.com/strataview/strataview/pkg/graphstore"
	"github.com/strataview/strataview/pkg/tsdb"
	"github.com/strataview/strataview/pkg/ux"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check connectivity to the gateway and every backing store",
	Run:   runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	ux.Title("StrataView stack status")

	checkGateway(ctx)
	checkNeo4j(ctx)
	checkTimescale(ctx)
	checkRedis(ctx)
}

func checkGateway(ctx context.Context) {
	url := fmt.Sprintf("http://localhost:%d/health", cfg.Server.Port)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		ux.Error("gateway: " + err.Error())
		return
	}
	resp, err := (&http.Client{Timeout: 3 * time.Second}).Do(req)
	if err != nil {
		ux.Error("gateway: not responding on " + url)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		ux.Warning(fmt.Sprintf("gateway: unexpected status %d", resp.StatusCode))
		return
	}
	ux.Success("gateway: healthy on port " + fmt.Sprint(cfg.Server.Port))
}

func checkNeo4j(ctx context.Context) {
	graph, err := graphstore.New(cfg.Neo4j.URI, cfg.Neo4j.Username,
		cfg.Neo4j.Password, cfg.Neo4j.Database)
	if err != nil {
		ux.Error("neo4j: " + err.Error())
		return
	}
	defer graph.Close(context.Background())

	if err := graph.Verify(ctx); err != nil {
		ux.Error("neo4j: unreachable at " + cfg.Neo4j.URI)
		return
	}
	summary, err := graph.TopologySummary(ctx)
	if err != nil {
		ux.Warning("neo4j: connected but the summary query failed")
		return
	}
	ux.Success(fmt.Sprintf("neo4j: %d nodes, %d relationships",
		summary.TotalNodes, summary.TotalRelationships))
}

func checkTimescale(ctx context.Context) {
	ts, err := tsdb.Open(cfg.Timescale.DSN)
	if err != nil {
		ux.Error("timescale: " + err.Error())
		return
	}
	defer ts.Close()

	counts, err := ts.RowCounts(ctx)
	if err != nil {
		ux.Error("timescale: connected but the tables are missing (run `strataview seed all`)")
		return
	}
	var total int64
	for _, n := range counts {
		total += n
	}
	ux.Success(fmt.Sprintf("timescale: %d metric rows across %d tables", total, len(counts)))
}

func checkRedis(ctx context.Context) {
	c := cache.New(cfg.Redis.Addr, cfg.Redis.DB)
	probe := map[string]string{"probe": "status"}
	_ = c.SetJSON(ctx, "cli:probe", probe, 10*time.Second)

	var back map[string]string
	if err := c.GetJSON(ctx, "cli:probe", &back); err != nil {
		ux.Warning("redis: unreachable at " + cfg.Redis.Addr + " (payload caching disabled)")
		return
	}
	ux.Success("redis: responding at " + cfg.Redis.Addr)
}
