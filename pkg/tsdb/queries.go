// Copyright (C) 2026 StrataView Systems (eng@strataview.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package tsdb

import (
	"context"
	"time"

	"github.com/strataview/strataview/pkg/retry"
)

// HealthSummary aggregates resource usage over a window.
type HealthSummary struct {
	AvgCPUPercent   float64 `json:"avg_cpu_percent"`
	AvgMemPercent   float64 `json:"avg_mem_percent"`
	MaxCPUPercent   float64 `json:"max_cpu_percent"`
	SampledEntities int64   `json:"sampled_entities"`
}

// LinkLatency is one source/target edge ranked by average latency.
type LinkLatency struct {
	SourceName   string  `json:"source_name"`
	TargetName   string  `json:"target_name"`
	AvgLatencyMs float64 `json:"avg_latency_ms"`
	AvgLossPct   float64 `json:"avg_loss_pct"`
}

// CostSummary aggregates spend over a window.
type CostSummary struct {
	TotalUSD       float64 `json:"total_usd"`
	WasteUSD       float64 `json:"waste_usd"`
	AvgUtilization float64 `json:"avg_utilization_pct"`
}

// SeveritySlice is one severity bucket with its event count.
type SeveritySlice struct {
	Severity string `json:"severity"`
	Count    int64  `json:"count"`
}

// BusinessSummary aggregates the business KPI stream over a window.
type BusinessSummary struct {
	AvgTransactionsMin float64 `json:"avg_transactions_per_min"`
	RevenueUSD         float64 `json:"revenue_usd"`
	PeakActiveUsers    int64   `json:"peak_active_users"`
}

// HealthSummary averages system metrics since the window start.
func (s *Store) HealthSummary(ctx context.Context, since time.Time) (HealthSummary, error) {
	return retry.Do(ctx, s.retry, func(ctx context.Context) (HealthSummary, error) {
		var out HealthSummary
		err := s.db.WithContext(ctx).Model(&SystemMetric{}).
			Select("COALESCE(AVG(cpu_percent), 0) AS avg_cpu_percent, " +
				"COALESCE(AVG(mem_percent), 0) AS avg_mem_percent, " +
				"COALESCE(MAX(cpu_percent), 0) AS max_cpu_percent, " +
				"COUNT(DISTINCT entity_name) AS sampled_entities").
			Where("time >= ?", since).
			Scan(&out).Error
		return out, err
	}, HealthSummary{})
}

// TopLatencyLinks returns the worst network edges by average latency.
func (s *Store) TopLatencyLinks(ctx context.Context, since time.Time, limit int) ([]LinkLatency, error) {
	if limit <= 0 {
		limit = 10
	}
	return retry.Do(ctx, s.retry, func(ctx context.Context) ([]LinkLatency, error) {
		var out []LinkLatency
		err := s.db.WithContext(ctx).Model(&NetworkMetric{}).
			Select("source_name, target_name, "+
				"AVG(latency_ms) AS avg_latency_ms, AVG(packet_loss_pct) AS avg_loss_pct").
			Where("time >= ?", since).
			Group("source_name, target_name").
			Order("avg_latency_ms DESC").
			Limit(limit).
			Scan(&out).Error
		if out == nil {
			out = []LinkLatency{}
		}
		return out, err
	}, []LinkLatency{})
}

// CostSummary sums spend and waste since the window start.
func (s *Store) CostSummary(ctx context.Context, since time.Time) (CostSummary, error) {
	return retry.Do(ctx, s.retry, func(ctx context.Context) (CostSummary, error) {
		var out CostSummary
		err := s.db.WithContext(ctx).Model(&CostMetric{}).
			Select("COALESCE(SUM(cost_usd), 0) AS total_usd, " +
				"COALESCE(SUM(waste_usd), 0) AS waste_usd, " +
				"COALESCE(AVG(utilization_pct), 0) AS avg_utilization").
			Where("time >= ?", since).
			Scan(&out).Error
		return out, err
	}, CostSummary{})
}

// SecurityEventCounts buckets security events by severity.
func (s *Store) SecurityEventCounts(ctx context.Context, since time.Time) ([]SeveritySlice, error) {
	return retry.Do(ctx, s.retry, func(ctx context.Context) ([]SeveritySlice, error) {
		var out []SeveritySlice
		err := s.db.WithContext(ctx).Model(&SecurityEvent{}).
			Select("severity, COUNT(*) AS count").
			Where("time >= ?", since).
			Group("severity").
			Order("count DESC").
			Scan(&out).Error
		if out == nil {
			out = []SeveritySlice{}
		}
		return out, err
	}, []SeveritySlice{})
}

// BusinessSummary aggregates the business KPI stream since the window
// start.
func (s *Store) BusinessSummary(ctx context.Context, since time.Time) (BusinessSummary, error) {
	return retry.Do(ctx, s.retry, func(ctx context.Context) (BusinessSummary, error) {
		var out BusinessSummary
		err := s.db.WithContext(ctx).Model(&BusinessValueMetric{}).
			Select("COALESCE(AVG(transactions_per_min), 0) AS avg_transactions_min, " +
				"COALESCE(SUM(revenue_per_min), 0) AS revenue_usd, " +
				"COALESCE(MAX(active_users), 0) AS peak_active_users").
			Where("time >= ?", since).
			Scan(&out).Error
		return out, err
	}, BusinessSummary{})
}

// OpenIncidents returns unresolved incidents, newest first.
func (s *Store) OpenIncidents(ctx context.Context, limit int) ([]IncidentMetric, error) {
	if limit <= 0 {
		limit = 20
	}
	return retry.Do(ctx, s.retry, func(ctx context.Context) ([]IncidentMetric, error) {
		var out []IncidentMetric
		err := s.db.WithContext(ctx).
			Where("status <> ?", "resolved").
			Order("time DESC").
			Limit(limit).
			Find(&out).Error
		if out == nil {
			out = []IncidentMetric{}
		}
		return out, err
	}, []IncidentMetric{})
}
