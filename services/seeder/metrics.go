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
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/strataview/strataview/pkg/config"
	"github.com/strataview/strataview/pkg/tsdb"
)

// MetricsSummary counts the rows submitted per table during a backfill.
type MetricsSummary struct {
	mu          sync.Mutex
	RowsByTable map[string]int64
	TotalRows   int64
}

func newMetricsSummary() *MetricsSummary {
	return &MetricsSummary{RowsByTable: map[string]int64{}}
}

func (m *MetricsSummary) add(table string, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RowsByTable[table] += int64(n)
	m.TotalRows += int64(n)
}

// MetricsGenerator backfills the time-series store for the estate the
// topology generator produced.
type MetricsGenerator struct {
	ts     *tsdb.Store
	mirror *Mirror
	cfg    config.SeederConfig
	log    *slog.Logger
}

// NewMetricsGenerator builds a generator. mirror may be nil; the live
// metrics mirror is optional.
func NewMetricsGenerator(ts *tsdb.Store, mirror *Mirror, cfg config.SeederConfig, log *slog.Logger) *MetricsGenerator {
	seedFaker(cfg.Seed)
	return &MetricsGenerator{ts: ts, mirror: mirror, cfg: cfg, log: log}
}

// Generate wipes the metric tables and backfills cfg.Days of history
// for every entity in the roster. The seven metric families run
// concurrently; each derives its own RNG from the seed so the output
// stays reproducible regardless of scheduling.
func (g *MetricsGenerator) Generate(ctx context.Context, roster *Roster) (*MetricsSummary, error) {
	if err := g.ts.Migrate(ctx); err != nil {
		return nil, err
	}
	if err := g.ts.Wipe(ctx); err != nil {
		return nil, err
	}

	summary := newMetricsSummary()
	end := time.Now().UTC().Truncate(time.Hour)
	start := end.AddDate(0, 0, -g.cfg.Days)

	g.log.Info("backfilling metrics",
		"days", g.cfg.Days, "entities", len(roster.Services)+len(roster.EC2Instances),
		"from", start, "to", end)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(4)

	eg.Go(func() error { return g.systemMetrics(egCtx, roster, start, end, summary) })
	eg.Go(func() error { return g.databaseMetrics(egCtx, roster, start, end, summary) })
	eg.Go(func() error { return g.networkMetrics(egCtx, roster, start, end, summary) })
	eg.Go(func() error { return g.costMetrics(egCtx, roster, start, end, summary) })
	eg.Go(func() error { return g.securityEvents(egCtx, roster, start, end, summary) })
	eg.Go(func() error { return g.businessMetrics(egCtx, roster, start, end, summary) })
	eg.Go(func() error { return g.incidents(egCtx, roster, start, end, summary) })

	if err := eg.Wait(); err != nil {
		return summary, err
	}

	g.log.Info("metrics backfilled", "rows", summary.TotalRows)
	return summary, nil
}

// family-specific seeds keep concurrent generation deterministic.
const (
	seedSystem = iota + 1
	seedDatabase
	seedNetwork
	seedCost
	seedSecurity
	seedBusiness
	seedIncident
)

func (g *MetricsGenerator) catalog(family int64) *Catalog {
	return NewCatalog(g.cfg.Seed*31 + family)
}

func (g *MetricsGenerator) systemMetrics(ctx context.Context, r *Roster, start, end time.Time, sum *MetricsSummary) error {
	cat := g.catalog(seedSystem)
	entities := make([]struct{ name, kind string }, 0, len(r.Services)+len(r.EC2Instances))
	for _, s := range r.Services {
		entities = append(entities, struct{ name, kind string }{s, "Service"})
	}
	for _, i := range r.EC2Instances {
		entities = append(entities, struct{ name, kind string }{i, "EC2Instance"})
	}

	var rows []tsdb.SystemMetric
	for t := start; t.Before(end); t = t.Add(30 * time.Minute) {
		load := diurnalLoad(t)
		for _, e := range entities {
			rows = append(rows, tsdb.SystemMetric{
				Time:        t,
				EntityName:  e.name,
				EntityType:  e.kind,
				CPUPercent:  clamp(load*60+cat.Float64()*25, 1, 99),
				MemPercent:  clamp(load*50+cat.Float64()*30, 5, 97),
				DiskPercent: clamp(35+cat.Float64()*30, 5, 95),
				NetInMbps:   load * cat.Float64() * 400,
				NetOutMbps:  load * cat.Float64() * 250,
			})
		}
		if err := g.flushSystem(ctx, &rows, sum, false); err != nil {
			return err
		}
	}
	if err := g.flushSystem(ctx, &rows, sum, true); err != nil {
		return err
	}

	if g.mirror != nil {
		if err := g.mirror.MirrorSystemWindow(ctx, r, end.Add(-2*time.Hour), end, cat); err != nil {
			// The mirror is advisory; a dead Influx must not fail the seed.
			g.log.Warn("live metrics mirror failed", "error", err)
		}
	}
	return nil
}

// flushSystem drains the row buffer once it is past one batch, or
// unconditionally on the final call.
func (g *MetricsGenerator) flushSystem(ctx context.Context, rows *[]tsdb.SystemMetric, sum *MetricsSummary, final bool) error {
	if len(*rows) == 0 || (!final && len(*rows) < 5000) {
		return nil
	}
	if err := g.ts.InsertBatch(ctx, *rows, g.cfg.BatchSize); err != nil {
		return fmt.Errorf("system metrics: %w", err)
	}
	sum.add(tsdb.SystemMetric{}.TableName(), len(*rows))
	*rows = (*rows)[:0]
	return nil
}

func (g *MetricsGenerator) databaseMetrics(ctx context.Context, r *Roster, start, end time.Time, sum *MetricsSummary) error {
	cat := g.catalog(seedDatabase)
	var rows []tsdb.DatabaseMetric
	for t := start; t.Before(end); t = t.Add(time.Hour) {
		load := diurnalLoad(t)
		for _, db := range r.RDSInstances {
			rows = append(rows, tsdb.DatabaseMetric{
				Time:            t,
				EntityName:      db,
				Connections:     int(load*80) + cat.Intn(40),
				QueryLatencyMs:  clamp(load*8+cat.Float64()*12, 0.2, 500),
				ReplicationLag:  cat.Float64() * 2,
				CacheHitRatio:   clamp(0.85+cat.Float64()*0.14, 0, 0.999),
				DeadTuplesRatio: cat.Float64() * 0.1,
			})
		}
	}
	if len(rows) == 0 {
		return nil
	}
	if err := g.ts.InsertBatch(ctx, rows, g.cfg.BatchSize); err != nil {
		return fmt.Errorf("database metrics: %w", err)
	}
	sum.add(tsdb.DatabaseMetric{}.TableName(), len(rows))
	return nil
}

func (g *MetricsGenerator) networkMetrics(ctx context.Context, r *Roster, start, end time.Time, sum *MetricsSummary) error {
	cat := g.catalog(seedNetwork)
	edges := r.ServiceEdges
	// Bound the per-hour row count at the enterprise scale.
	if len(edges) > 500 {
		edges = edges[:500]
	}

	var rows []tsdb.NetworkMetric
	for t := start; t.Before(end); t = t.Add(time.Hour) {
		for _, e := range edges {
			rows = append(rows, tsdb.NetworkMetric{
				Time:        t,
				SourceName:  e.Source,
				TargetName:  e.Target,
				LatencyMs:   clamp(1+cat.Float64()*40, 0.2, 800),
				PacketLoss:  cat.Float64() * 0.5,
				Throughput:  10 + cat.Float64()*900,
				ErrorRate:   cat.Float64() * 2,
				Retransmits: cat.Intn(200),
			})
		}
	}
	if len(rows) == 0 {
		return nil
	}
	if err := g.ts.InsertBatch(ctx, rows, g.cfg.BatchSize); err != nil {
		return fmt.Errorf("network metrics: %w", err)
	}
	sum.add(tsdb.NetworkMetric{}.TableName(), len(rows))
	return nil
}

func (g *MetricsGenerator) costMetrics(ctx context.Context, r *Roster, start, end time.Time, sum *MetricsSummary) error {
	cat := g.catalog(seedCost)
	type costEntity struct {
		name string
		tier string
		band float64
	}
	var entities []costEntity
	for _, c := range r.Clusters {
		entities = append(entities, costEntity{c, "critical", 900})
	}
	for _, s := range r.Services {
		entities = append(entities, costEntity{s, "standard", 80})
	}
	for _, d := range r.RDSInstances {
		entities = append(entities, costEntity{d, "critical", 250})
	}

	var rows []tsdb.CostMetric
	for t := start; t.Before(end); t = t.AddDate(0, 0, 1) {
		for _, e := range entities {
			util := clamp(0.3+cat.Float64()*0.6, 0, 1)
			cost := e.band * (0.7 + cat.Float64()*0.6)
			rows = append(rows, tsdb.CostMetric{
				Time:        t,
				EntityName:  e.name,
				ServiceTier: e.tier,
				CostUSD:     cost,
				WasteUSD:    cost * (1 - util) * 0.5,
				Utilization: util * 100,
			})
		}
	}
	if len(rows) == 0 {
		return nil
	}
	if err := g.ts.InsertBatch(ctx, rows, g.cfg.BatchSize); err != nil {
		return fmt.Errorf("cost metrics: %w", err)
	}
	sum.add(tsdb.CostMetric{}.TableName(), len(rows))
	return nil
}

func (g *MetricsGenerator) securityEvents(ctx context.Context, r *Roster, start, end time.Time, sum *MetricsSummary) error {
	cat := g.catalog(seedSecurity)
	eventTypes := []string{"port_scan", "brute_force", "anomalous_egress", "privilege_escalation", "malformed_request"}
	severities := []string{"low", "low", "medium", "medium", "high", "critical"}
	targets := append(append([]string{}, r.WebServices...), r.LoadBalancers...)
	if len(targets) == 0 {
		return nil
	}

	var rows []tsdb.SecurityEvent
	for t := start; t.Before(end); t = t.Add(time.Hour) {
		for n := cat.Intn(4); n > 0; n-- {
			sev := severities[cat.Intn(len(severities))]
			rows = append(rows, tsdb.SecurityEvent{
				Time:       t.Add(time.Duration(cat.Intn(3600)) * time.Second),
				EntityName: targets[cat.Intn(len(targets))],
				EventType:  eventTypes[cat.Intn(len(eventTypes))],
				Severity:   sev,
				SourceIP:   cat.SourceIP(),
				Blocked:    sev != "critical" || cat.Intn(2) == 0,
			})
		}
	}
	if len(rows) == 0 {
		return nil
	}
	if err := g.ts.InsertBatch(ctx, rows, g.cfg.BatchSize); err != nil {
		return fmt.Errorf("security events: %w", err)
	}
	sum.add(tsdb.SecurityEvent{}.TableName(), len(rows))
	return nil
}

func (g *MetricsGenerator) businessMetrics(ctx context.Context, r *Roster, start, end time.Time, sum *MetricsSummary) error {
	cat := g.catalog(seedBusiness)
	var rows []tsdb.BusinessValueMetric
	for t := start; t.Before(end); t = t.Add(30 * time.Minute) {
		load := diurnalLoad(t)
		for _, app := range r.Applications {
			tpm := load * (200 + cat.Float64()*1800)
			rows = append(rows, tsdb.BusinessValueMetric{
				Time:            t,
				EntityName:      app,
				TransactionsMin: tpm,
				RevenuePerMin:   tpm * (2 + cat.Float64()*18),
				ActiveUsers:     int(load * float64(500+cat.Intn(9500))),
				ConversionPct:   clamp(1.5+cat.Float64()*4, 0.1, 12),
			})
		}
	}
	if len(rows) == 0 {
		return nil
	}
	if err := g.ts.InsertBatch(ctx, rows, g.cfg.BatchSize); err != nil {
		return fmt.Errorf("business metrics: %w", err)
	}
	sum.add(tsdb.BusinessValueMetric{}.TableName(), len(rows))
	return nil
}

func (g *MetricsGenerator) incidents(ctx context.Context, r *Roster, start, end time.Time, sum *MetricsSummary) error {
	cat := g.catalog(seedIncident)
	severities := []string{"low", "medium", "medium", "high", "critical"}
	statuses := []string{"resolved", "resolved", "resolved", "open", "mitigating"}
	if len(r.Services) == 0 {
		return nil
	}

	var rows []tsdb.IncidentMetric
	id := 1000
	for t := start; t.Before(end); t = t.AddDate(0, 0, 1) {
		for n := cat.Intn(3); n > 0; n-- {
			id++
			rows = append(rows, tsdb.IncidentMetric{
				Time:        t.Add(time.Duration(cat.Intn(86400)) * time.Second),
				IncidentID:  fmt.Sprintf("INC-%d", id),
				EntityName:  r.Services[cat.Intn(len(r.Services))],
				Severity:    severities[cat.Intn(len(severities))],
				Status:      statuses[cat.Intn(len(statuses))],
				MTTRMinutes: 5 + cat.Float64()*240,
			})
		}
	}
	if len(rows) == 0 {
		return nil
	}
	if err := g.ts.InsertBatch(ctx, rows, g.cfg.BatchSize); err != nil {
		return fmt.Errorf("incidents: %w", err)
	}
	sum.add(tsdb.IncidentMetric{}.TableName(), len(rows))
	return nil
}

// diurnalLoad approximates a business-hours load curve in [0.25, 1].
func diurnalLoad(t time.Time) float64 {
	h := t.Hour()
	switch {
	case h >= 9 && h <= 17:
		return 1.0
	case h >= 6 && h < 9, h > 17 && h <= 21:
		return 0.6
	default:
		return 0.25
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
