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
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/strataview/strataview/pkg/config"
)

// PointWriter is the slice of the Influx write API the mirror needs.
// api.WriteAPIBlocking satisfies it; tests supply a recorder.
type PointWriter interface {
	WritePoint(ctx context.Context, point ...*write.Point) error
}

// Mirror pushes a recent window of system metrics into InfluxDB so the
// gateway's live feed has fresh points to sample. It is entirely
// optional; the TimescaleDB backfill is the source of truth.
type Mirror struct {
	writer PointWriter
	close  func()
}

// NewMirror connects to the configured Influx instance. Returns nil
// when the mirror is not configured.
func NewMirror(cfg config.InfluxConfig) *Mirror {
	if !cfg.Enabled() {
		return nil
	}
	client := influxdb2.NewClient(cfg.URL, cfg.Token)
	return &Mirror{
		writer: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		close:  client.Close,
	}
}

// NewMirrorWithWriter builds a Mirror over an arbitrary PointWriter.
// Used by tests.
func NewMirrorWithWriter(w PointWriter) *Mirror {
	return &Mirror{writer: w}
}

// Close releases the underlying client.
func (m *Mirror) Close() {
	if m.close != nil {
		m.close()
	}
}

// MirrorSystemWindow writes five-minute system samples for every
// service between from and to.
func (m *Mirror) MirrorSystemWindow(ctx context.Context, r *Roster, from, to time.Time, cat *Catalog) error {
	var points []*write.Point
	for t := from; t.Before(to); t = t.Add(5 * time.Minute) {
		load := diurnalLoad(t)
		for _, svc := range r.Services {
			p := influxdb2.NewPoint(
				"system_metrics",
				map[string]string{"entity": svc, "entity_type": "Service"},
				map[string]interface{}{
					"cpu_percent": clamp(load*60+cat.Float64()*25, 1, 99),
					"mem_percent": clamp(load*50+cat.Float64()*30, 5, 97),
					"net_in_mbps": load * cat.Float64() * 400,
				},
				t,
			)
			points = append(points, p)
		}
	}
	if len(points) == 0 {
		return nil
	}
	if err := m.writer.WritePoint(ctx, points...); err != nil {
		return fmt.Errorf("mirror write failed: %w", err)
	}
	return nil
}
