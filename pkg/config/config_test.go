// Copyright (C) 2026 StrataView Systems (eng@strataview.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "strataview.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFile_Defaults(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 9000\n")

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port, "file value wins")
	assert.Equal(t, "neo4j://localhost:7687", cfg.Neo4j.URI, "unset sections keep defaults")
	assert.Equal(t, "demo", cfg.Seeder.Scale)
	assert.Equal(t, 5*time.Second, cfg.Scenario.TickInterval.Std())
}

func TestLoadFile_EnvOverrides(t *testing.T) {
	path := writeConfig(t, "neo4j:\n  uri: neo4j://file-host:7687\n")

	t.Setenv("NEO4J_URI", "neo4j://env-host:7687")
	t.Setenv("GATEWAY_PORT", "12555")
	t.Setenv("GATEWAY_AUTH_TOKEN", "secret-token")

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "neo4j://env-host:7687", cfg.Neo4j.URI, "env beats file")
	assert.Equal(t, 12555, cfg.Server.Port)
	assert.Equal(t, "secret-token", cfg.Server.AuthToken)
}

func TestLoadFile_InvalidPort(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 99999\n")

	_, err := LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestLoadFile_InvalidScale(t *testing.T) {
	path := writeConfig(t, "seeder:\n  scale: galactic\n")

	_, err := LoadFile(path)
	require.Error(t, err)
}

func TestLoadFile_MissingFile(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadFile_DurationParsing(t *testing.T) {
	path := writeConfig(t, "scenario:\n  dir: scenarios\n  tick_interval: 2s\n")

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, cfg.Scenario.TickInterval.Std())

	_, err = LoadFile(writeConfig(t, "scenario:\n  tick_interval: banana\n"))
	require.Error(t, err)
}

func TestInfluxConfig_Enabled(t *testing.T) {
	assert.False(t, InfluxConfig{}.Enabled())
	assert.True(t, InfluxConfig{URL: "http://localhost:8086"}.Enabled())
}

func TestDefaultConfig_Validates(t *testing.T) {
	path := writeConfig(t, "")

	cfg, err := LoadFile(path)
	require.NoError(t, err, "the shipped default config must validate")
	assert.Equal(t, DefaultConfig(), cfg)
}
