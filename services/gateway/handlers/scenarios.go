// Copyright (C) 2026 StrataView Systems (eng@strataview.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/strataview/strataview/pkg/validation"
	"github.com/strataview/strataview/services/gateway/datatypes"
	"github.com/strataview/strataview/services/gateway/scenario"
)

// Unlike the dashboard reads, the scenario endpoints DO return error
// statuses: a typo'd scenario id during rehearsal should be loud, not
// silently absorbed.

// ListScenarios returns every loaded timeline.
func ListScenarios(m *scenario.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"scenarios": m.List()})
	}
}

// StartScenario begins a run of :id.
func StartScenario(m *scenario.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if err := validation.ValidateScenarioID(id); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		status, err := m.Start(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "active": status})
			return
		}
		c.JSON(http.StatusOK, status)
	}
}

// ScenarioStatus reports the active run of :id.
func ScenarioStatus(m *scenario.Manager) gin.HandlerFunc {
	return scenarioOp(m.Status)
}

// PauseScenario freezes the active run of :id.
func PauseScenario(m *scenario.Manager) gin.HandlerFunc {
	return scenarioOp(m.Pause)
}

// ResumeScenario continues a paused run of :id.
func ResumeScenario(m *scenario.Manager) gin.HandlerFunc {
	return scenarioOp(m.Resume)
}

// StopScenario terminates the active run of :id.
func StopScenario(m *scenario.Manager) gin.HandlerFunc {
	return scenarioOp(m.Stop)
}

func scenarioOp(op func(id string) (datatypes.RunStatus, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if err := validation.ValidateScenarioID(id); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		status, err := op(id)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, status)
	}
}
