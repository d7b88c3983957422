// Copyright (C) 2026 StrataView Systems (eng@strataview.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package tsdb

import "time"

// SystemMetric is one sample of host/pod level resource usage.
type SystemMetric struct {
	Time        time.Time `gorm:"column:time;not null;index" json:"time"`
	EntityName  string    `gorm:"column:entity_name;type:varchar(128);not null;index" json:"entity_name"`
	EntityType  string    `gorm:"column:entity_type;type:varchar(64);not null" json:"entity_type"`
	CPUPercent  float64   `gorm:"column:cpu_percent" json:"cpu_percent"`
	MemPercent  float64   `gorm:"column:mem_percent" json:"mem_percent"`
	DiskPercent float64   `gorm:"column:disk_percent" json:"disk_percent"`
	NetInMbps   float64   `gorm:"column:net_in_mbps" json:"net_in_mbps"`
	NetOutMbps  float64   `gorm:"column:net_out_mbps" json:"net_out_mbps"`
}

func (SystemMetric) TableName() string { return "system_metrics" }

// DatabaseMetric is one sample of database health.
type DatabaseMetric struct {
	Time            time.Time `gorm:"column:time;not null;index" json:"time"`
	EntityName      string    `gorm:"column:entity_name;type:varchar(128);not null;index" json:"entity_name"`
	Connections     int       `gorm:"column:connections" json:"connections"`
	QueryLatencyMs  float64   `gorm:"column:query_latency_ms" json:"query_latency_ms"`
	ReplicationLag  float64   `gorm:"column:replication_lag_s" json:"replication_lag_s"`
	CacheHitRatio   float64   `gorm:"column:cache_hit_ratio" json:"cache_hit_ratio"`
	DeadTuplesRatio float64   `gorm:"column:dead_tuples_ratio" json:"dead_tuples_ratio"`
}

func (DatabaseMetric) TableName() string { return "database_metrics" }

// NetworkMetric is one sample of edge/link health between entities.
type NetworkMetric struct {
	Time        time.Time `gorm:"column:time;not null;index" json:"time"`
	SourceName  string    `gorm:"column:source_name;type:varchar(128);not null;index" json:"source_name"`
	TargetName  string    `gorm:"column:target_name;type:varchar(128);not null" json:"target_name"`
	LatencyMs   float64   `gorm:"column:latency_ms" json:"latency_ms"`
	PacketLoss  float64   `gorm:"column:packet_loss_pct" json:"packet_loss_pct"`
	Throughput  float64   `gorm:"column:throughput_mbps" json:"throughput_mbps"`
	ErrorRate   float64   `gorm:"column:error_rate_pct" json:"error_rate_pct"`
	Retransmits int       `gorm:"column:retransmits" json:"retransmits"`
}

func (NetworkMetric) TableName() string { return "network_metrics" }

// CostMetric is one daily cost sample per entity.
type CostMetric struct {
	Time        time.Time `gorm:"column:time;not null;index" json:"time"`
	EntityName  string    `gorm:"column:entity_name;type:varchar(128);not null;index" json:"entity_name"`
	ServiceTier string    `gorm:"column:service_tier;type:varchar(32)" json:"service_tier"`
	CostUSD     float64   `gorm:"column:cost_usd" json:"cost_usd"`
	WasteUSD    float64   `gorm:"column:waste_usd" json:"waste_usd"`
	Utilization float64   `gorm:"column:utilization_pct" json:"utilization_pct"`
}

func (CostMetric) TableName() string { return "cost_metrics" }

// SecurityEvent is one synthetic security finding.
type SecurityEvent struct {
	Time       time.Time `gorm:"column:time;not null;index" json:"time"`
	EntityName string    `gorm:"column:entity_name;type:varchar(128);not null;index" json:"entity_name"`
	EventType  string    `gorm:"column:event_type;type:varchar(64);not null" json:"event_type"`
	Severity   string    `gorm:"column:severity;type:varchar(16);not null" json:"severity"`
	SourceIP   string    `gorm:"column:source_ip;type:varchar(45)" json:"source_ip"`
	Blocked    bool      `gorm:"column:blocked" json:"blocked"`
}

func (SecurityEvent) TableName() string { return "security_events" }

// BusinessValueMetric is one sample of business KPIs tied to an entity.
type BusinessValueMetric struct {
	Time            time.Time `gorm:"column:time;not null;index" json:"time"`
	EntityName      string    `gorm:"column:entity_name;type:varchar(128);not null;index" json:"entity_name"`
	TransactionsMin float64   `gorm:"column:transactions_per_min" json:"transactions_per_min"`
	RevenuePerMin   float64   `gorm:"column:revenue_per_min" json:"revenue_per_min"`
	ActiveUsers     int       `gorm:"column:active_users" json:"active_users"`
	ConversionPct   float64   `gorm:"column:conversion_pct" json:"conversion_pct"`
}

func (BusinessValueMetric) TableName() string { return "business_value_metrics" }

// IncidentMetric is one synthetic incident record.
type IncidentMetric struct {
	Time        time.Time `gorm:"column:time;not null;index" json:"time"`
	IncidentID  string    `gorm:"column:incident_id;type:varchar(64);not null;index" json:"incident_id"`
	EntityName  string    `gorm:"column:entity_name;type:varchar(128);not null" json:"entity_name"`
	Severity    string    `gorm:"column:severity;type:varchar(16);not null" json:"severity"`
	Status      string    `gorm:"column:status;type:varchar(16);not null" json:"status"`
	MTTRMinutes float64   `gorm:"column:mttr_minutes" json:"mttr_minutes"`
}

func (IncidentMetric) TableName() string { return "incident_metrics" }

// hypertables lists every model that gets a Timescale hypertable, keyed
// by table name. Ordinary Postgres (and the sqlite used in tests) just
// skips the conversion.
var hypertables = []any{
	&SystemMetric{},
	&DatabaseMetric{},
	&NetworkMetric{},
	&CostMetric{},
	&SecurityEvent{},
	&BusinessValueMetric{},
	&IncidentMetric{},
}

// tableNames returns the table name of every registered model.
func tableNames() []string {
	return []string{
		SystemMetric{}.TableName(),
		DatabaseMetric{}.TableName(),
		NetworkMetric{}.TableName(),
		CostMetric{}.TableName(),
		SecurityEvent{}.TableName(),
		BusinessValueMetric{}.TableName(),
		IncidentMetric{}.TableName(),
	}
}
