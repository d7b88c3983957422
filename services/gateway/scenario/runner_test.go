// Copyright (C) 2026 StrataView Systems (eng@strataview.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package scenario

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strataview/strataview/pkg/config"
	"github.com/strataview/strataview/services/gateway/datatypes"
)

// recorder captures broadcasts in order.
type recorder struct {
	mu   sync.Mutex
	msgs []datatypes.WSMessage
}

func (r *recorder) Broadcast(msg datatypes.WSMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
}

func (r *recorder) steps() []datatypes.WSMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []datatypes.WSMessage
	for _, m := range r.msgs {
		if m.Type == datatypes.MessageTypeStep {
			out = append(out, m)
		}
	}
	return out
}

func testTimeline(steps int) datatypes.Timeline {
	tl := datatypes.Timeline{ID: "cost-spiral", Name: "Cost Spiral"}
	for i := 0; i < steps; i++ {
		tl.Steps = append(tl.Steps, datatypes.Step{Title: "step", SavingsUSD: float64(i) * 1000})
	}
	return tl
}

func TestRunner_AdvancesMonotonicallyAndStopsAtTotal(t *testing.T) {
	rec := &recorder{}
	r := NewRunner(testTimeline(3), 5*time.Millisecond, rec, RunnerOpts{})
	r.Start(context.Background())

	select {
	case <-r.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("run did not terminate")
	}

	status := r.Status()
	assert.Equal(t, datatypes.StateStopped, status.State, "reaching total_steps stops the run")
	assert.Equal(t, 3, status.StepIndex)

	steps := rec.steps()
	require.Len(t, steps, 3)
	for i, msg := range steps {
		assert.Equal(t, i+1, msg.StepIndex, "step indices are strictly increasing")
		assert.Equal(t, 3, msg.TotalSteps)
	}
}

func TestRunner_PauseFreezesIndex(t *testing.T) {
	rec := &recorder{}
	r := NewRunner(testTimeline(100), 5*time.Millisecond, rec, RunnerOpts{})
	r.Start(context.Background())

	require.Eventually(t, func() bool {
		return r.Status().StepIndex >= 2
	}, time.Second, time.Millisecond)

	r.Pause()
	frozen := r.Status().StepIndex
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, frozen, r.Status().StepIndex, "ticks while paused must not advance")
	assert.Equal(t, datatypes.StatePaused, r.Status().State)

	r.Resume()
	require.Eventually(t, func() bool {
		return r.Status().StepIndex > frozen
	}, time.Second, time.Millisecond, "resume continues from the frozen index")

	r.Stop()
}

func TestRunner_StopIsTerminal(t *testing.T) {
	rec := &recorder{}
	r := NewRunner(testTimeline(100), 5*time.Millisecond, rec, RunnerOpts{})
	r.Start(context.Background())

	r.Stop()
	stopped := r.Status().StepIndex
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, datatypes.StateStopped, r.Status().State)
	assert.Equal(t, stopped, r.Status().StepIndex, "a stopped run never advances")

	r.Resume()
	assert.Equal(t, datatypes.StateStopped, r.Status().State, "resume does not revive a stopped run")
}

func TestRunner_StartIndexClampedToTotal(t *testing.T) {
	rec := &recorder{}
	r := NewRunner(testTimeline(3), time.Millisecond, rec, RunnerOpts{StartIndex: 50})
	assert.Equal(t, 3, r.Status().StepIndex)

	r = NewRunner(testTimeline(3), time.Millisecond, rec, RunnerOpts{StartIndex: -2})
	assert.Equal(t, 0, r.Status().StepIndex)
}

func TestRunner_ResumesFromPersistedIndex(t *testing.T) {
	rec := &recorder{}
	r := NewRunner(testTimeline(4), 5*time.Millisecond, rec, RunnerOpts{StartIndex: 2})
	r.Start(context.Background())

	select {
	case <-r.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("run did not terminate")
	}

	steps := rec.steps()
	require.Len(t, steps, 2, "only the remaining steps broadcast")
	assert.Equal(t, 3, steps[0].StepIndex)
	assert.Equal(t, 4, steps[1].StepIndex)
}

func TestRunner_PerStepDwellOverridesTick(t *testing.T) {
	tl := testTimeline(2)
	tl.Steps[0].Dwell = config.Duration(time.Millisecond)

	rec := &recorder{}
	r := NewRunner(tl, time.Hour, rec, RunnerOpts{})
	r.Start(context.Background())

	require.Eventually(t, func() bool {
		return len(rec.steps()) == 1
	}, time.Second, time.Millisecond, "the first step uses its own dwell, not the hour tick")

	r.Stop()
}

func TestRunner_PersistHookSeesEveryTransition(t *testing.T) {
	var mu sync.Mutex
	var states []string
	persist := func(s datatypes.RunStatus) {
		mu.Lock()
		states = append(states, s.State)
		mu.Unlock()
	}

	rec := &recorder{}
	r := NewRunner(testTimeline(1), 5*time.Millisecond, rec, RunnerOpts{Persist: persist})
	r.Start(context.Background())

	select {
	case <-r.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("run did not terminate")
	}

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, states)
	assert.Equal(t, datatypes.StateRunning, states[0])
	assert.Equal(t, datatypes.StateStopped, states[len(states)-1])
}
