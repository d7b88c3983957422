// Copyright (C) 2026 StrataView Systems (eng@strataview.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package tsdb is the TimescaleDB metrics store.
//
// # Description
//
// GORM over the Postgres driver handles schema migration and batch
// inserts; the hypertable conversion is issued as raw SQL after
// AutoMigrate and is best-effort, so the same code runs against plain
// Postgres (or sqlite in tests) without the Timescale extension.
//
// Reads used by the gateway go through the shared retry wrapper and
// return zeroed aggregates on exhaustion. Writes used by the seeder
// propagate errors.
package tsdb

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/strataview/strataview/pkg/retry"
)

// Store wraps the metrics database.
type Store struct {
	db    *gorm.DB
	retry retry.Config
}

// Open connects to TimescaleDB with the given DSN.
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("could not open the metrics database: %w", err)
	}
	return &Store{db: db, retry: retry.DefaultConfig()}, nil
}

// NewWithDB builds a Store over an existing gorm handle. Used by tests.
func NewWithDB(db *gorm.DB, cfg retry.Config) *Store {
	return &Store{db: db, retry: cfg}
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Migrate creates the metric tables and converts each to a hypertable.
// The conversion fails on databases without the Timescale extension;
// that is logged and ignored so the demo also runs on plain Postgres.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(hypertables...); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	for _, table := range tableNames() {
		stmt := fmt.Sprintf(
			"SELECT create_hypertable('%s', 'time', if_not_exists => TRUE)", table)
		if err := s.db.WithContext(ctx).Exec(stmt).Error; err != nil {
			slog.Debug("hypertable conversion skipped",
				"table", table, "error", err)
		}
	}
	return nil
}

// Wipe truncates every metric table. The seeder calls this before a
// backfill so repeated runs don't stack data.
func (s *Store) Wipe(ctx context.Context) error {
	for _, model := range hypertables {
		if err := s.db.WithContext(ctx).Where("1 = 1").Delete(model).Error; err != nil {
			return fmt.Errorf("wipe failed: %w", err)
		}
	}
	return nil
}

// InsertBatch writes one slice of metric rows in chunks. rows must be a
// slice of one of the model types; batchSize bounds the per-statement
// row count.
func (s *Store) InsertBatch(ctx context.Context, rows any, batchSize int) error {
	if batchSize <= 0 {
		batchSize = 500
	}
	if err := s.db.WithContext(ctx).CreateInBatches(rows, batchSize).Error; err != nil {
		return fmt.Errorf("batch insert failed: %w", err)
	}
	return nil
}

// RowCounts returns the row count of every metric table. The seeder
// uses it to cross-check its summary against what actually landed.
func (s *Store) RowCounts(ctx context.Context) (map[string]int64, error) {
	counts := make(map[string]int64, len(hypertables))
	for i, model := range hypertables {
		var n int64
		if err := s.db.WithContext(ctx).Model(model).Count(&n).Error; err != nil {
			return nil, fmt.Errorf("count failed: %w", err)
		}
		counts[tableNames()[i]] = n
	}
	return counts, nil
}
