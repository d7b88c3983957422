// Copyright (C) 2026 StrataView Systems (eng@strataview.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package tsdb

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/strataview/strataview/pkg/retry"
)

// testStore opens a throwaway sqlite database. The hypertable
// conversion fails there, which exercises the best-effort path.
func testStore(t *testing.T) *Store {
	t.Helper()
	db, err := gorm.Open(
		sqlite.Open(filepath.Join(t.TempDir(), "tsdb_test.db")),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)},
	)
	require.NoError(t, err)

	store := NewWithDB(db, retry.Config{Attempts: 3, Backoff: time.Millisecond})
	require.NoError(t, store.Migrate(context.Background()))
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestMigrate_CreatesAllTables(t *testing.T) {
	store := testStore(t)

	counts, err := store.RowCounts(context.Background())
	require.NoError(t, err)

	assert.Len(t, counts, 7)
	for table, n := range counts {
		assert.Zero(t, n, "table %s starts empty", table)
	}
}

func TestInsertBatch_RowCountsMatchSubmitted(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	rows := make([]SystemMetric, 0, 1200)
	for i := 0; i < 1200; i++ {
		rows = append(rows, SystemMetric{
			Time:       now.Add(-time.Duration(i) * time.Minute),
			EntityName: "payments",
			EntityType: "Service",
			CPUPercent: 40,
		})
	}
	require.NoError(t, store.InsertBatch(ctx, rows, 500))

	counts, err := store.RowCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1200), counts["system_metrics"],
		"every submitted row must land")
}

func TestWipe_EmptiesEveryTable(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, store.InsertBatch(ctx, []SystemMetric{
		{Time: now, EntityName: "a", EntityType: "Service"},
	}, 100))
	require.NoError(t, store.InsertBatch(ctx, []CostMetric{
		{Time: now, EntityName: "a", CostUSD: 10},
	}, 100))

	require.NoError(t, store.Wipe(ctx))

	counts, err := store.RowCounts(ctx)
	require.NoError(t, err)
	for table, n := range counts {
		assert.Zero(t, n, "table %s not wiped", table)
	}
}

func TestHealthSummary_Aggregates(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, store.InsertBatch(ctx, []SystemMetric{
		{Time: now, EntityName: "payments", EntityType: "Service", CPUPercent: 40, MemPercent: 50},
		{Time: now, EntityName: "checkout", EntityType: "Service", CPUPercent: 80, MemPercent: 70},
		{Time: now.Add(-48 * time.Hour), EntityName: "old", EntityType: "Service", CPUPercent: 100},
	}, 100))

	summary, err := store.HealthSummary(ctx, now.Add(-time.Hour))
	require.NoError(t, err)

	assert.InDelta(t, 60.0, summary.AvgCPUPercent, 0.001, "out-of-window samples excluded")
	assert.InDelta(t, 80.0, summary.MaxCPUPercent, 0.001)
	assert.Equal(t, int64(2), summary.SampledEntities)
}

func TestTopLatencyLinks_OrdersAndLimits(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, store.InsertBatch(ctx, []NetworkMetric{
		{Time: now, SourceName: "web", TargetName: "payments", LatencyMs: 12},
		{Time: now, SourceName: "web", TargetName: "payments", LatencyMs: 18},
		{Time: now, SourceName: "payments", TargetName: "payments-db", LatencyMs: 90},
	}, 100))

	links, err := store.TopLatencyLinks(ctx, now.Add(-time.Hour), 1)
	require.NoError(t, err)

	require.Len(t, links, 1)
	assert.Equal(t, "payments", links[0].SourceName)
	assert.InDelta(t, 90.0, links[0].AvgLatencyMs, 0.001)
}

func TestCostSummary_SumsWindow(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, store.InsertBatch(ctx, []CostMetric{
		{Time: now, EntityName: "prod-east", CostUSD: 100, WasteUSD: 20, Utilization: 60},
		{Time: now, EntityName: "prod-west", CostUSD: 50, WasteUSD: 5, Utilization: 80},
	}, 100))

	summary, err := store.CostSummary(ctx, now.Add(-time.Hour))
	require.NoError(t, err)
	assert.InDelta(t, 150.0, summary.TotalUSD, 0.001)
	assert.InDelta(t, 25.0, summary.WasteUSD, 0.001)
	assert.InDelta(t, 70.0, summary.AvgUtilization, 0.001)
}

func TestSecurityEventCounts_BucketsBySeverity(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, store.InsertBatch(ctx, []SecurityEvent{
		{Time: now, EntityName: "web", EventType: "port_scan", Severity: "low"},
		{Time: now, EntityName: "web", EventType: "brute_force", Severity: "high"},
		{Time: now, EntityName: "api", EventType: "brute_force", Severity: "high"},
	}, 100))

	slices, err := store.SecurityEventCounts(ctx, now.Add(-time.Hour))
	require.NoError(t, err)

	require.Len(t, slices, 2)
	assert.Equal(t, SeveritySlice{Severity: "high", Count: 2}, slices[0])
}

func TestOpenIncidents_ExcludesResolved(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, store.InsertBatch(ctx, []IncidentMetric{
		{Time: now, IncidentID: "INC-1", EntityName: "payments", Severity: "high", Status: "open"},
		{Time: now.Add(-time.Hour), IncidentID: "INC-2", EntityName: "web", Severity: "low", Status: "resolved"},
		{Time: now.Add(-2 * time.Hour), IncidentID: "INC-3", EntityName: "api", Severity: "medium", Status: "mitigating"},
	}, 100))

	incidents, err := store.OpenIncidents(ctx, 10)
	require.NoError(t, err)

	require.Len(t, incidents, 2)
	assert.Equal(t, "INC-1", incidents[0].IncidentID, "newest first")
}

func TestQueries_FallBackZeroedWhenDatabaseGone(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	require.NoError(t, store.Close())

	summary, err := store.HealthSummary(ctx, time.Now().Add(-time.Hour))
	require.Error(t, err)
	assert.Equal(t, HealthSummary{}, summary, "exhausted reads return the zero shape")

	links, err := store.TopLatencyLinks(ctx, time.Now().Add(-time.Hour), 5)
	require.Error(t, err)
	assert.NotNil(t, links)
	assert.Empty(t, links)
}
