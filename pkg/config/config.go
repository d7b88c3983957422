// Copyright (C) 2026 StrataView Systems (eng@strataview.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package config loads the shared StrataView configuration.
//
// Both binaries (the strataview CLI and the gateway service) read the
// same YAML file, so the loader lives in pkg/ rather than next to one
// of the commands. Environment variables override file values for the
// settings that differ per deployment (ports, DSNs, tokens).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML files can use "5s" / "2m" forms.
type Duration time.Duration

// UnmarshalYAML parses the usual time.ParseDuration forms.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML renders the duration in its string form.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// ServerConfig configures the gateway HTTP server.
type ServerConfig struct {
	Port      int    `yaml:"port" validate:"gt=0,lte=65535"`
	AuthToken string `yaml:"auth_token"`
	LogLevel  string `yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`
	LogDir    string `yaml:"log_dir"`
}

// Neo4jConfig configures the graph store connection.
type Neo4jConfig struct {
	URI      string `yaml:"uri" validate:"required"`
	Username string `yaml:"username" validate:"required"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// TimescaleConfig configures the time-series store connection.
type TimescaleConfig struct {
	DSN string `yaml:"dsn" validate:"required"`
}

// RedisConfig configures the payload cache.
type RedisConfig struct {
	Addr string `yaml:"addr" validate:"required"`
	DB   int    `yaml:"db" validate:"gte=0"`
}

// InfluxConfig configures the optional live-metrics mirror. All fields
// empty disables the mirror.
type InfluxConfig struct {
	URL    string `yaml:"url" validate:"omitempty,url"`
	Token  string `yaml:"token"`
	Org    string `yaml:"org"`
	Bucket string `yaml:"bucket"`
}

// Enabled reports whether the influx mirror is configured.
func (c InfluxConfig) Enabled() bool {
	return c.URL != ""
}

// SeederConfig configures the synthetic data generators.
type SeederConfig struct {
	Scale     string `yaml:"scale" validate:"omitempty,oneof=demo standard enterprise"`
	BatchSize int    `yaml:"batch_size" validate:"gt=0"`
	Seed      int64  `yaml:"seed"`
	Days      int    `yaml:"days" validate:"gt=0"`
}

// ScenarioConfig configures the demo scenario orchestrator.
type ScenarioConfig struct {
	Dir          string   `yaml:"dir" validate:"required"`
	TickInterval Duration `yaml:"tick_interval" validate:"gt=0"`
}

// Config is the root configuration document (strataview.yaml).
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Neo4j     Neo4jConfig     `yaml:"neo4j"`
	Timescale TimescaleConfig `yaml:"timescale"`
	Redis     RedisConfig     `yaml:"redis"`
	Influx    InfluxConfig    `yaml:"influx"`
	Seeder    SeederConfig    `yaml:"seeder"`
	Scenario  ScenarioConfig  `yaml:"scenario"`
}

// DefaultConfig returns the configuration written on first run. It
// points at a local docker-compose demo stack.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Port:     12480,
			LogLevel: "info",
		},
		Neo4j: Neo4jConfig{
			URI:      "neo4j://localhost:7687",
			Username: "neo4j",
			Password: "strataview",
			Database: "neo4j",
		},
		Timescale: TimescaleConfig{
			DSN: "host=localhost user=strataview password=strataview dbname=strataview port=5432 sslmode=disable",
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Seeder: SeederConfig{
			Scale:     "demo",
			BatchSize: 500,
			Days:      7,
		},
		Scenario: ScenarioConfig{
			Dir:          "scenarios",
			TickInterval: Duration(5 * time.Second),
		},
	}
}

var (
	// Global is the singleton instance populated by Load.
	Global Config
	once   sync.Once
)

// Load ensures the config is loaded into the Global variable exactly
// once. The path resolution order is:
//
//  1. STRATAVIEW_CONFIG environment variable
//  2. ./strataview.yaml
//  3. ~/.strataview/strataview.yaml (created on first run)
func Load() error {
	var err error
	once.Do(func() {
		Global, err = loadInternal()
	})
	return err
}

func loadInternal() (Config, error) {
	path, err := resolvePath()
	if err != nil {
		return Config{}, err
	}

	// create it if it doesn't exist
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Printf("First run detected, creating the config at %s\n", path)
		if err := writeDefault(path); err != nil {
			return Config{}, err
		}
	}

	return LoadFile(path)
}

// LoadFile reads, env-overrides, and validates a config file. Exposed
// for tests and for the CLI's --config flag.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read the config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse the config file: %w", err)
	}

	applyEnvOverrides(&cfg)

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func resolvePath() (string, error) {
	if p := os.Getenv("STRATAVIEW_CONFIG"); p != "" {
		return p, nil
	}
	if _, err := os.Stat("strataview.yaml"); err == nil {
		return "strataview.yaml", nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not find the user's home directory: %w", err)
	}
	return filepath.Join(home, ".strataview", "strataview.yaml"), nil
}

func writeDefault(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create the config directory: %w", err)
	}
	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// applyEnvOverrides layers deployment-specific env vars over the file
// values. Only settings that realistically differ between the laptop
// demo and the hosted demo get an override.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("GATEWAY_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("GATEWAY_AUTH_TOKEN"); v != "" {
		cfg.Server.AuthToken = v
	}
	if v := os.Getenv("NEO4J_URI"); v != "" {
		cfg.Neo4j.URI = v
	}
	if v := os.Getenv("NEO4J_USERNAME"); v != "" {
		cfg.Neo4j.Username = v
	}
	if v := os.Getenv("NEO4J_PASSWORD"); v != "" {
		cfg.Neo4j.Password = v
	}
	if v := os.Getenv("TIMESCALE_DSN"); v != "" {
		cfg.Timescale.DSN = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("INFLUXDB_URL"); v != "" {
		cfg.Influx.URL = v
	}
	if v := os.Getenv("INFLUXDB_TOKEN"); v != "" {
		cfg.Influx.Token = v
	}
	if v := os.Getenv("INFLUXDB_ORG"); v != "" {
		cfg.Influx.Org = v
	}
	if v := os.Getenv("INFLUXDB_BUCKET"); v != "" {
		cfg.Influx.Bucket = v
	}
	if v := os.Getenv("SCENARIO_DIR"); v != "" {
		cfg.Scenario.Dir = v
	}
}
