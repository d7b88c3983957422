// Copyright (C) 2026 StrataView Systems (eng@strataview.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package datatypes holds the wire types shared by the gateway
// handlers and the scenario orchestrator.
package datatypes

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/strataview/strataview/pkg/config"
)

var validate = validator.New()

// =============================================================================
// Scenario Timelines
// =============================================================================

// Step is one beat of a demo timeline. Dwell overrides the global tick
// interval for the step when set.
type Step struct {
	Title      string          `yaml:"title" json:"title" validate:"required"`
	Narration  string          `yaml:"narration" json:"narration"`
	Highlights []string        `yaml:"highlights" json:"highlights,omitempty"`
	SavingsUSD float64         `yaml:"savings_usd" json:"savings_usd,omitempty"`
	Dwell      config.Duration `yaml:"dwell" json:"-"`
}

// Timeline is one scripted demo scenario, loaded from a YAML file in
// the scenarios directory.
type Timeline struct {
	ID          string `yaml:"id" json:"id" validate:"required"`
	Name        string `yaml:"name" json:"name" validate:"required"`
	Description string `yaml:"description" json:"description"`
	Steps       []Step `yaml:"steps" json:"steps" validate:"min=1,dive"`
}

// Validate checks the structural constraints a timeline must satisfy
// before it can run: an id, a display name, and at least one titled
// step.
func (t Timeline) Validate() error {
	return validate.Struct(t)
}

// TotalSteps returns the number of steps in the timeline.
func (t Timeline) TotalSteps() int {
	return len(t.Steps)
}

// Run states. Stopped is terminal for a run; starting again creates a
// fresh run at step zero.
const (
	StateRunning = "running"
	StatePaused  = "paused"
	StateStopped = "stopped"
)

// RunStatus is the externally visible state of a scenario run.
type RunStatus struct {
	ScenarioID string    `json:"scenario_id"`
	State      string    `json:"state"`
	StepIndex  int       `json:"step_index"`
	TotalSteps int       `json:"total_steps"`
	StartedAt  time.Time `json:"started_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// =============================================================================
// WebSocket Messages
// =============================================================================

// Message types pushed over /api/demo/ws.
const (
	MessageTypeStep   = "scenario_step"
	MessageTypeState  = "scenario_state"
	MessageTypeSample = "live_sample"
)

// WSMessage is the envelope for every WebSocket broadcast.
type WSMessage struct {
	Type       string    `json:"type"`
	ScenarioID string    `json:"scenario_id,omitempty"`
	StepIndex  int       `json:"step_index,omitempty"`
	TotalSteps int       `json:"total_steps,omitempty"`
	State      string    `json:"state,omitempty"`
	Step       *Step     `json:"step,omitempty"`
	Sample     any       `json:"sample,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// LiveSample is one point of the live metric feed.
type LiveSample struct {
	Entity     string  `json:"entity"`
	CPUPercent float64 `json:"cpu_percent"`
	MemPercent float64 `json:"mem_percent"`
	LatencyMs  float64 `json:"latency_ms"`
	Source     string  `json:"source"`
}
