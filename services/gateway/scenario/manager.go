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
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/strataview/strataview/pkg/cache"
	"github.com/strataview/strataview/pkg/validation"
	"github.com/strataview/strataview/services/gateway/datatypes"
)

// stateKey is the cache key for the persisted run status.
const stateKey = "scenario:state"

// statePersistTTL keeps a stale run from resuming days later.
const statePersistTTL = 24 * time.Hour

// Manager owns the timeline registry and at most one active run.
type Manager struct {
	dir     string
	tick    time.Duration
	hub     Broadcaster
	cache   *cache.Cache
	onStep  func(scenarioID string)
	baseCtx context.Context

	mu        sync.Mutex
	timelines map[string]datatypes.Timeline
	active    *Runner
}

// ManagerOpts carries the optional manager hooks.
type ManagerOpts struct {
	// Cache persists run state across gateway restarts. May be nil.
	Cache *cache.Cache
	// OnStep observes broadcast steps (metrics). May be nil.
	OnStep func(scenarioID string)
	// BaseContext bounds the lifetime of every run. A run must outlive
	// the HTTP request that started it, so this is the application
	// context, not a request context. Defaults to context.Background().
	BaseContext context.Context
}

// NewManager loads every timeline under dir.
func NewManager(dir string, tick time.Duration, hub Broadcaster, opts ManagerOpts) (*Manager, error) {
	base := opts.BaseContext
	if base == nil {
		base = context.Background()
	}
	m := &Manager{
		dir:       dir,
		tick:      tick,
		hub:       hub,
		cache:     opts.Cache,
		onStep:    opts.OnStep,
		baseCtx:   base,
		timelines: map[string]datatypes.Timeline{},
	}
	if err := m.reload(); err != nil {
		return nil, err
	}
	return m, nil
}

// reload re-reads the scenarios directory. Invalid files are skipped
// with a warning so one bad edit can't take the demo down.
func (m *Manager) reload() error {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return fmt.Errorf("could not read the scenarios directory %q: %w", m.dir, err)
	}

	loaded := map[string]datatypes.Timeline{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || (!strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml")) {
			continue
		}
		tl, err := LoadTimeline(filepath.Join(m.dir, name))
		if err != nil {
			slog.Warn("skipping invalid timeline", "file", name, "error", err)
			continue
		}
		if _, dup := loaded[tl.ID]; dup {
			slog.Warn("skipping duplicate timeline id", "file", name, "id", tl.ID)
			continue
		}
		loaded[tl.ID] = tl
	}

	m.mu.Lock()
	m.timelines = loaded
	m.mu.Unlock()
	slog.Info("timelines loaded", "dir", m.dir, "count", len(loaded))
	return nil
}

// LoadTimeline parses and validates one YAML timeline file. The CLI's
// `scenario validate` command uses it directly for per-file reporting.
func LoadTimeline(path string) (datatypes.Timeline, error) {
	var tl datatypes.Timeline
	data, err := os.ReadFile(path)
	if err != nil {
		return tl, err
	}
	if err := yaml.Unmarshal(data, &tl); err != nil {
		return tl, fmt.Errorf("parse failed: %w", err)
	}
	if err := validation.ValidateScenarioID(tl.ID); err != nil {
		return tl, err
	}
	if err := tl.Validate(); err != nil {
		return tl, fmt.Errorf("timeline %q failed validation: %w", tl.ID, err)
	}
	return tl, nil
}

// Watch hot-reloads the directory on file changes. An active run keeps
// its own copy of the timeline; reloads only affect future runs.
func (m *Manager) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("could not create the scenarios watcher: %w", err)
	}
	if err := watcher.Add(m.dir); err != nil {
		watcher.Close()
		return fmt.Errorf("could not watch %q: %w", m.dir, err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
					continue
				}
				slog.Info("scenarios directory changed, reloading", "event", event.Op.String())
				if err := m.reload(); err != nil {
					slog.Error("timeline reload failed", "error", err)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				slog.Warn("scenarios watcher error", "error", err)
			}
		}
	}()
	return nil
}

// List returns every known timeline sorted by ID.
func (m *Manager) List() []datatypes.Timeline {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]datatypes.Timeline, 0, len(m.timelines))
	for _, tl := range m.timelines {
		out = append(out, tl)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Start begins a run of the given timeline. A persisted, unfinished
// run of the same scenario resumes at its saved step; anything else
// starts fresh. Only one run can be active at a time.
//
// ctx scopes only the persisted-state lookup; the run itself ticks on
// the manager's base context so it survives the start request.
func (m *Manager) Start(ctx context.Context, id string) (datatypes.RunStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tl, ok := m.timelines[id]
	if !ok {
		return datatypes.RunStatus{}, fmt.Errorf("unknown scenario %q", id)
	}
	if m.active != nil {
		if s := m.active.Status(); s.State != datatypes.StateStopped {
			return s, fmt.Errorf("scenario %q is already active", s.ScenarioID)
		}
	}

	opts := RunnerOpts{
		OnStep:  m.onStep,
		Persist: m.persistStatus,
	}
	if saved, ok := m.loadPersisted(ctx, id); ok {
		opts.StartIndex = saved.StepIndex
		slog.Info("resuming persisted scenario run", "scenario", id, "step", saved.StepIndex)
	}

	m.active = NewRunner(tl, m.tick, m.hub, opts)
	m.active.Start(m.baseCtx)
	return m.active.Status(), nil
}

// Status reports the active run for the given scenario.
func (m *Manager) Status(id string) (datatypes.RunStatus, error) {
	r, err := m.activeFor(id)
	if err != nil {
		return datatypes.RunStatus{}, err
	}
	return r.Status(), nil
}

// Pause freezes the active run.
func (m *Manager) Pause(id string) (datatypes.RunStatus, error) {
	r, err := m.activeFor(id)
	if err != nil {
		return datatypes.RunStatus{}, err
	}
	r.Pause()
	return r.Status(), nil
}

// Resume continues a paused run.
func (m *Manager) Resume(id string) (datatypes.RunStatus, error) {
	r, err := m.activeFor(id)
	if err != nil {
		return datatypes.RunStatus{}, err
	}
	r.Resume()
	return r.Status(), nil
}

// Stop terminates the active run.
func (m *Manager) Stop(id string) (datatypes.RunStatus, error) {
	r, err := m.activeFor(id)
	if err != nil {
		return datatypes.RunStatus{}, err
	}
	r.Stop()
	return r.Status(), nil
}

func (m *Manager) activeFor(id string) (*Runner, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil || m.active.timeline.ID != id {
		return nil, fmt.Errorf("no active run for scenario %q", id)
	}
	return m.active, nil
}

// persistStatus mirrors run state into the cache. Finished runs clear
// the key so the next start is fresh.
func (m *Manager) persistStatus(s datatypes.RunStatus) {
	if m.cache == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if s.State == datatypes.StateStopped {
		m.cache.Invalidate(ctx, stateKey)
		return
	}
	_ = m.cache.SetJSON(ctx, stateKey, s, statePersistTTL)
}

// loadPersisted returns a resumable saved status for the scenario.
func (m *Manager) loadPersisted(ctx context.Context, id string) (datatypes.RunStatus, bool) {
	if m.cache == nil {
		return datatypes.RunStatus{}, false
	}
	var saved datatypes.RunStatus
	if err := m.cache.GetJSON(ctx, stateKey, &saved); err != nil {
		return datatypes.RunStatus{}, false
	}
	if saved.ScenarioID != id || saved.State == datatypes.StateStopped {
		return datatypes.RunStatus{}, false
	}
	if saved.StepIndex >= saved.TotalSteps {
		return datatypes.RunStatus{}, false
	}
	return saved, true
}
