// Copyright (C) 2026 StrataView Systems (eng@strataview.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package scenario

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/strataview/strataview/services/gateway/datatypes"
)

// Broadcaster receives every runner event. *Hub satisfies it; tests
// use a recorder.
type Broadcaster interface {
	Broadcast(msg datatypes.WSMessage)
}

// Runner advances one timeline on a timer.
//
// The step index counts broadcast steps: it starts at zero, never
// decreases, and the run transitions to stopped the moment it reaches
// the step count. Pause freezes the index, resume continues, stop is
// terminal for the run.
type Runner struct {
	timeline datatypes.Timeline
	tick     time.Duration
	hub      Broadcaster
	onStep   func(scenarioID string)
	persist  func(datatypes.RunStatus)

	mu        sync.Mutex
	state     string
	stepIndex int
	startedAt time.Time
	updatedAt time.Time

	done     chan struct{}
	stopOnce sync.Once
}

// RunnerOpts carries the optional runner hooks.
type RunnerOpts struct {
	// StartIndex resumes a persisted run mid-timeline.
	StartIndex int
	// OnStep observes each broadcast step (metrics).
	OnStep func(scenarioID string)
	// Persist observes every status change (cache).
	Persist func(datatypes.RunStatus)
}

// NewRunner builds a runner in the running state. Call Start to begin
// ticking.
func NewRunner(timeline datatypes.Timeline, tick time.Duration, hub Broadcaster, opts RunnerOpts) *Runner {
	if opts.OnStep == nil {
		opts.OnStep = func(string) {}
	}
	if opts.Persist == nil {
		opts.Persist = func(datatypes.RunStatus) {}
	}
	start := opts.StartIndex
	if start < 0 {
		start = 0
	}
	if start > timeline.TotalSteps() {
		start = timeline.TotalSteps()
	}
	now := time.Now().UTC()
	return &Runner{
		timeline:  timeline,
		tick:      tick,
		hub:       hub,
		onStep:    opts.OnStep,
		persist:   opts.Persist,
		state:     datatypes.StateRunning,
		stepIndex: start,
		startedAt: now,
		updatedAt: now,
		done:      make(chan struct{}),
	}
}

// Start launches the tick loop. The first step broadcasts after one
// interval, not immediately; the demo host narrates the opening.
func (r *Runner) Start(ctx context.Context) {
	r.broadcastState()
	r.persist(r.Status())

	go func() {
		for {
			timer := time.NewTimer(r.nextDwell())
			select {
			case <-ctx.Done():
				timer.Stop()
				r.Stop()
				return
			case <-r.done:
				timer.Stop()
				return
			case <-timer.C:
				r.advance()
			}
		}
	}()
}

// nextDwell returns the wait before the upcoming step: the step's own
// dwell when set, the global tick otherwise.
func (r *Runner) nextDwell() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stepIndex < r.timeline.TotalSteps() {
		if d := r.timeline.Steps[r.stepIndex].Dwell.Std(); d > 0 {
			return d
		}
	}
	return r.tick
}

// advance broadcasts the next step. No-op while paused; transitions to
// stopped when the final step goes out.
func (r *Runner) advance() {
	r.mu.Lock()
	if r.state != datatypes.StateRunning || r.stepIndex >= r.timeline.TotalSteps() {
		r.mu.Unlock()
		return
	}
	step := r.timeline.Steps[r.stepIndex]
	r.stepIndex++
	index := r.stepIndex
	finished := r.stepIndex == r.timeline.TotalSteps()
	if finished {
		r.state = datatypes.StateStopped
	}
	r.updatedAt = time.Now().UTC()
	r.mu.Unlock()

	r.hub.Broadcast(datatypes.WSMessage{
		Type:       datatypes.MessageTypeStep,
		ScenarioID: r.timeline.ID,
		StepIndex:  index,
		TotalSteps: r.timeline.TotalSteps(),
		Step:       &step,
	})
	r.onStep(r.timeline.ID)
	slog.Info("scenario step broadcast",
		"scenario", r.timeline.ID, "step", index, "total", r.timeline.TotalSteps())

	if finished {
		r.broadcastState()
		r.stopOnce.Do(func() { close(r.done) })
	}
	r.persist(r.Status())
}

// Pause freezes the step index. Ticks while paused are ignored.
func (r *Runner) Pause() {
	r.mu.Lock()
	if r.state == datatypes.StateRunning {
		r.state = datatypes.StatePaused
		r.updatedAt = time.Now().UTC()
	}
	r.mu.Unlock()
	r.broadcastState()
	r.persist(r.Status())
}

// Resume continues a paused run.
func (r *Runner) Resume() {
	r.mu.Lock()
	if r.state == datatypes.StatePaused {
		r.state = datatypes.StateRunning
		r.updatedAt = time.Now().UTC()
	}
	r.mu.Unlock()
	r.broadcastState()
	r.persist(r.Status())
}

// Stop terminates the run. Terminal; a stopped run never advances
// again.
func (r *Runner) Stop() {
	r.mu.Lock()
	changed := r.state != datatypes.StateStopped
	r.state = datatypes.StateStopped
	r.updatedAt = time.Now().UTC()
	r.mu.Unlock()

	if changed {
		r.broadcastState()
	}
	r.stopOnce.Do(func() { close(r.done) })
	r.persist(r.Status())
}

// Done closes when the run reaches its end or is stopped.
func (r *Runner) Done() <-chan struct{} {
	return r.done
}

// Status snapshots the run.
func (r *Runner) Status() datatypes.RunStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return datatypes.RunStatus{
		ScenarioID: r.timeline.ID,
		State:      r.state,
		StepIndex:  r.stepIndex,
		TotalSteps: r.timeline.TotalSteps(),
		StartedAt:  r.startedAt,
		UpdatedAt:  r.updatedAt,
	}
}

func (r *Runner) broadcastState() {
	s := r.Status()
	r.hub.Broadcast(datatypes.WSMessage{
		Type:       datatypes.MessageTypeState,
		ScenarioID: s.ScenarioID,
		StepIndex:  s.StepIndex,
		TotalSteps: s.TotalSteps,
		State:      s.State,
	})
}
