// Copyright (C) 2026 StrataView Systems (eng@strataview.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package scenario

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"github.com/strataview/strataview/pkg/config"
	"github.com/strataview/strataview/services/gateway/datatypes"
)

// Sampler produces one batch of live metric points.
type Sampler interface {
	Sample(ctx context.Context) ([]datatypes.LiveSample, error)
}

// =============================================================================
// Random Sampler
// =============================================================================

// RandomSampler fabricates plausible live points. The default when no
// Influx mirror is configured, and the fallback when it fails.
type RandomSampler struct {
	entities []string
	rng      *rand.Rand
}

// NewRandomSampler builds a sampler over a fixed entity pool.
func NewRandomSampler(entities []string) *RandomSampler {
	if len(entities) == 0 {
		entities = []string{
			"payments-api", "checkout-api", "search-svc",
			"auth-api", "inventory-worker", "orders-gateway",
		}
	}
	return &RandomSampler{
		entities: entities,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Sample never fails; it draws fresh values for a handful of entities.
func (s *RandomSampler) Sample(ctx context.Context) ([]datatypes.LiveSample, error) {
	n := 3 + s.rng.Intn(3)
	if n > len(s.entities) {
		n = len(s.entities)
	}
	out := make([]datatypes.LiveSample, 0, n)
	for _, i := range s.rng.Perm(len(s.entities))[:n] {
		out = append(out, datatypes.LiveSample{
			Entity:     s.entities[i],
			CPUPercent: 20 + s.rng.Float64()*70,
			MemPercent: 30 + s.rng.Float64()*60,
			LatencyMs:  2 + s.rng.Float64()*80,
			Source:     "synthetic",
		})
	}
	return out, nil
}

// =============================================================================
// Influx Sampler
// =============================================================================

// InfluxSampler reads the freshest mirrored system metrics.
type InfluxSampler struct {
	query  api.QueryAPI
	bucket string
	close  func()
}

// NewInfluxSampler connects to the configured mirror. Returns nil when
// the mirror is not configured.
func NewInfluxSampler(cfg config.InfluxConfig) *InfluxSampler {
	if !cfg.Enabled() {
		return nil
	}
	client := influxdb2.NewClient(cfg.URL, cfg.Token)
	return &InfluxSampler{
		query:  client.QueryAPI(cfg.Org),
		bucket: cfg.Bucket,
		close:  client.Close,
	}
}

// Close releases the underlying client.
func (s *InfluxSampler) Close() {
	if s.close != nil {
		s.close()
	}
}

// Sample queries the last five minutes of mirrored points, one row per
// entity.
func (s *InfluxSampler) Sample(ctx context.Context) ([]datatypes.LiveSample, error) {
	flux := fmt.Sprintf(`
		from(bucket: "%s")
		  |> range(start: -5m)
		  |> filter(fn: (r) => r._measurement == "system_metrics")
		  |> pivot(rowKey:["_time"], columnKey: ["_field"], valueColumn: "_value")
		  |> group(columns: ["entity"])
		  |> last(column: "cpu_percent")
	`, s.bucket)

	result, err := s.query.Query(ctx, flux)
	if err != nil {
		return nil, fmt.Errorf("influx sample query failed: %w", err)
	}
	if result == nil {
		return nil, nil
	}

	var out []datatypes.LiveSample
	for result.Next() {
		record := result.Record()
		sample := datatypes.LiveSample{Source: "influx"}
		if v, ok := record.ValueByKey("entity").(string); ok {
			sample.Entity = v
		}
		if v, ok := record.ValueByKey("cpu_percent").(float64); ok {
			sample.CPUPercent = v
		}
		if v, ok := record.ValueByKey("mem_percent").(float64); ok {
			sample.MemPercent = v
		}
		out = append(out, sample)
	}
	if result.Err() != nil {
		return out, result.Err()
	}
	return out, nil
}

// =============================================================================
// Feed Loop
// =============================================================================

// LiveFeed pushes sampler batches to the hub on a ticker. When the
// primary sampler fails it falls back to the random one, so the
// dashboard animation never freezes.
type LiveFeed struct {
	hub      Broadcaster
	primary  Sampler
	fallback Sampler
	interval time.Duration
}

// NewLiveFeed builds a feed. primary may be nil; then only the random
// sampler runs.
func NewLiveFeed(hub Broadcaster, primary Sampler, interval time.Duration) *LiveFeed {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &LiveFeed{
		hub:      hub,
		primary:  primary,
		fallback: NewRandomSampler(nil),
		interval: interval,
	}
}

// Run ticks until the context ends.
func (f *LiveFeed) Run(ctx context.Context) {
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			f.push(ctx)
		}
	}
}

func (f *LiveFeed) push(ctx context.Context) {
	samples := f.sample(ctx)
	if len(samples) == 0 {
		return
	}
	f.hub.Broadcast(datatypes.WSMessage{
		Type:   datatypes.MessageTypeSample,
		Sample: samples,
	})
}

func (f *LiveFeed) sample(ctx context.Context) []datatypes.LiveSample {
	if f.primary != nil {
		samples, err := f.primary.Sample(ctx)
		if err == nil && len(samples) > 0 {
			return samples
		}
		if err != nil {
			slog.Debug("primary sampler failed, using synthetic samples", "error", err)
		}
	}
	samples, _ := f.fallback.Sample(ctx)
	return samples
}
