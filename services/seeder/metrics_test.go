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
	"path/filepath"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/strataview/strataview/pkg/retry"
	"github.com/strataview/strataview/pkg/tsdb"
)

func testTSDB(t *testing.T) *tsdb.Store {
	t.Helper()
	db, err := gorm.Open(
		sqlite.Open(filepath.Join(t.TempDir(), "seeder_test.db")),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)},
	)
	require.NoError(t, err)
	store := tsdb.NewWithDB(db, retry.Config{Attempts: 3, Backoff: time.Millisecond})
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testRoster() *Roster {
	return &Roster{
		Clusters:     []string{"eks-us-east-1-01"},
		Services:     []string{"payments-api", "checkout-api", "search-svc"},
		RDSInstances: []string{"payments-db-01"},
		EC2Instances: []string{"i-0000aaaa", "i-0000bbbb"},
		WebServices:  []string{"web-payments-01"},
		Applications: []string{"app-payments-api"},
		ServiceEdges: []Edge{
			{Source: "payments-api", Target: "checkout-api"},
			{Source: "web-payments-01", Target: "payments-api"},
		},
	}
}

func TestMetricsGenerate_SummaryMatchesRowCounts(t *testing.T) {
	store := testTSDB(t)
	cfg := testSeederConfig(42)
	cfg.Days = 2
	gen := NewMetricsGenerator(store, nil, cfg, slog.Default())

	summary, err := gen.Generate(context.Background(), testRoster())
	require.NoError(t, err)
	require.Positive(t, summary.TotalRows)

	counts, err := store.RowCounts(context.Background())
	require.NoError(t, err)

	var stored int64
	for table, n := range counts {
		assert.Equal(t, summary.RowsByTable[table], n,
			"table %s: summary must match what landed", table)
		stored += n
	}
	assert.Equal(t, summary.TotalRows, stored)
}

func TestMetricsGenerate_CoversEveryFamily(t *testing.T) {
	store := testTSDB(t)
	cfg := testSeederConfig(42)
	cfg.Days = 3
	gen := NewMetricsGenerator(store, nil, cfg, slog.Default())

	summary, err := gen.Generate(context.Background(), testRoster())
	require.NoError(t, err)

	for _, table := range []string{
		"system_metrics", "database_metrics", "network_metrics",
		"cost_metrics", "business_value_metrics",
	} {
		assert.Positive(t, summary.RowsByTable[table], "no rows for %s", table)
	}
	// Security events and incidents are drawn per hour/day and may
	// legitimately be zero over a short window; they just must not be
	// negative or untracked.
	assert.GreaterOrEqual(t, summary.RowsByTable["security_events"], int64(0))
}

func TestMetricsGenerate_RerunReplacesData(t *testing.T) {
	store := testTSDB(t)
	cfg := testSeederConfig(7)
	gen := NewMetricsGenerator(store, nil, cfg, slog.Default())

	first, err := gen.Generate(context.Background(), testRoster())
	require.NoError(t, err)
	second, err := NewMetricsGenerator(store, nil, cfg, slog.Default()).
		Generate(context.Background(), testRoster())
	require.NoError(t, err)

	assert.Equal(t, first.RowsByTable, second.RowsByTable,
		"same seed, same roster, same backfill")

	counts, err := store.RowCounts(context.Background())
	require.NoError(t, err)
	var stored int64
	for _, n := range counts {
		stored += n
	}
	assert.Equal(t, second.TotalRows, stored, "reruns wipe before writing, never stack")
}

// recordingWriter captures mirrored points.
type recordingWriter struct {
	points []*write.Point
	err    error
}

func (r *recordingWriter) WritePoint(ctx context.Context, point ...*write.Point) error {
	if r.err != nil {
		return r.err
	}
	r.points = append(r.points, point...)
	return nil
}

func TestMirror_WritesRecentWindow(t *testing.T) {
	rec := &recordingWriter{}
	mirror := NewMirrorWithWriter(rec)

	end := time.Now().UTC().Truncate(time.Hour)
	err := mirror.MirrorSystemWindow(context.Background(), testRoster(), end.Add(-time.Hour), end, NewCatalog(1))
	require.NoError(t, err)

	// 12 five-minute slots for 3 services.
	assert.Len(t, rec.points, 36)
}

func TestMetricsGenerate_MirrorFailureDoesNotFailSeed(t *testing.T) {
	store := testTSDB(t)
	rec := &recordingWriter{err: assert.AnError}
	gen := NewMetricsGenerator(store, NewMirrorWithWriter(rec), testSeederConfig(42), slog.Default())

	_, err := gen.Generate(context.Background(), testRoster())
	assert.NoError(t, err, "the mirror is advisory")
}
