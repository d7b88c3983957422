// Copyright (C) 2026 StrataView Systems (eng@strataview.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package graphstore is the Neo4j query service.
//
// # Description
//
// The package wraps the official Neo4j Go driver behind a small Runner
// interface so the read queries can be tested without a database. All
// dashboard reads go through the shared retry wrapper (pkg/retry) and
// fall back to empty-shaped results on exhaustion; write paths used by
// the seeder propagate errors instead, because a failed seed run must
// be visible.
//
// # Lifecycle
//
// The demo lifecycle is deliberately crude: the seeder calls Wipe
// (MATCH (n) DETACH DELETE n), recreates the uniqueness constraints,
// and batch-inserts a fresh estate. There is no incremental update.
package graphstore

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/strataview/strataview/pkg/retry"
	"github.com/strataview/strataview/pkg/validation"
)

// Runner executes a Cypher query and returns a fully-buffered result.
// It abstracts the driver so queries can be tested with a fake.
type Runner interface {
	Run(ctx context.Context, query string, params map[string]any) (*neo4j.EagerResult, error)
}

// driverRunner is the production Runner backed by the official driver.
type driverRunner struct {
	driver   neo4j.DriverWithContext
	database string
}

// Run executes a query via neo4j.ExecuteQuery, which handles session
// and transaction management and buffers all records before returning.
func (r *driverRunner) Run(ctx context.Context, query string, params map[string]any) (*neo4j.EagerResult, error) {
	result, err := neo4j.ExecuteQuery(ctx, r.driver, query, params,
		neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithDatabase(r.database),
	)
	if err != nil {
		return nil, fmt.Errorf("error executing neo4j query: %w", err)
	}
	return result, nil
}

// Store is the graph query service used by the gateway and the seeder.
type Store struct {
	runner Runner
	driver neo4j.DriverWithContext // nil when constructed with NewWithRunner
	retry  retry.Config
}

// New connects to Neo4j and returns a ready Store.
//
// # Inputs
//
//   - uri: Bolt URI, e.g. "neo4j://localhost:7687".
//   - username, password: Basic auth credentials.
//   - database: Target database name ("neo4j" for community editions).
func New(uri, username, password, database string) (*Store, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("could not create Neo4j driver: %w", err)
	}
	return &Store{
		runner: &driverRunner{driver: driver, database: database},
		driver: driver,
		retry:  retry.DefaultConfig(),
	}, nil
}

// NewWithRunner builds a Store over an arbitrary Runner. Used by tests.
func NewWithRunner(runner Runner, cfg retry.Config) *Store {
	return &Store{runner: runner, retry: cfg}
}

// Verify checks connectivity to the database.
func (s *Store) Verify(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}
	return s.driver.VerifyConnectivity(ctx)
}

// Close releases the underlying driver.
func (s *Store) Close(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}
	return s.driver.Close(ctx)
}

// =============================================================================
// Write Path (seeder)
// =============================================================================

// EnsureConstraints creates the per-label uniqueness constraints on the
// name property. Idempotent via IF NOT EXISTS.
func (s *Store) EnsureConstraints(ctx context.Context) error {
	for _, label := range AllLabels {
		if err := validation.ValidateLabel(label); err != nil {
			return err
		}
		query := fmt.Sprintf(
			"CREATE CONSTRAINT %s_name_unique IF NOT EXISTS FOR (n:%s) REQUIRE n.name IS UNIQUE",
			toSnake(label), label,
		)
		if _, err := s.runner.Run(ctx, query, nil); err != nil {
			return fmt.Errorf("constraint for %s: %w", label, err)
		}
	}
	return nil
}

// Wipe deletes every node and relationship. The seeder calls this at
// the start of every run: generator creates it, demo reads it, next
// run deletes and recreates everything.
func (s *Store) Wipe(ctx context.Context) error {
	_, err := s.runner.Run(ctx, "MATCH (n) DETACH DELETE n", nil)
	if err != nil {
		return fmt.Errorf("wipe failed: %w", err)
	}
	return nil
}

// CreateNodes batch-inserts nodes of one label via UNWIND. Each row is
// the full property map for one node; every row must carry a "name".
func (s *Store) CreateNodes(ctx context.Context, label string, rows []map[string]any) error {
	if len(rows) == 0 {
		return nil
	}
	if err := validation.ValidateLabel(label); err != nil {
		return err
	}
	query := fmt.Sprintf("UNWIND $rows AS row CREATE (n:%s) SET n = row", label)
	if _, err := s.runner.Run(ctx, query, map[string]any{"rows": rows}); err != nil {
		return fmt.Errorf("create %s nodes: %w", label, err)
	}
	return nil
}

// CreateRelationships batch-inserts one RelationshipSpec via UNWIND,
// matching endpoints by their unique name property.
func (s *Store) CreateRelationships(ctx context.Context, spec RelationshipSpec) error {
	if len(spec.Rows) == 0 {
		return nil
	}
	for _, label := range []string{spec.Type, spec.FromLabel, spec.ToLabel} {
		if err := validation.ValidateLabel(label); err != nil {
			return err
		}
	}

	rows := make([]map[string]any, 0, len(spec.Rows))
	for _, r := range spec.Rows {
		props := r.Props
		if props == nil {
			props = map[string]any{}
		}
		rows = append(rows, map[string]any{"from": r.From, "to": r.To, "props": props})
	}

	query := fmt.Sprintf(
		"UNWIND $rows AS row "+
			"MATCH (a:%s {name: row.from}) "+
			"MATCH (b:%s {name: row.to}) "+
			"CREATE (a)-[r:%s]->(b) SET r += row.props",
		spec.FromLabel, spec.ToLabel, spec.Type,
	)
	if _, err := s.runner.Run(ctx, query, map[string]any{"rows": rows}); err != nil {
		return fmt.Errorf("create %s relationships: %w", spec.Type, err)
	}
	return nil
}

// toSnake converts a CamelCase label to snake_case for constraint names.
func toSnake(s string) string {
	out := make([]byte, 0, len(s)+4)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			// Treat runs of capitals (EKS, RDS) as one word.
			if i > 0 && !(s[i-1] >= 'A' && s[i-1] <= 'Z') {
				out = append(out, '_')
			}
			c += 'a' - 'A'
		}
		out = append(out, c)
	}
	return string(out)
}
