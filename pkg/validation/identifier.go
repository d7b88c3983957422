// Copyright (C) 2026 StrataView Systems (eng@strataview.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package validation provides input validation utilities for security-critical operations.
//
// This package contains validators for user-provided inputs that end up inside
// Cypher queries, Flux queries, or SQL statements. Using these validators
// prevents injection attacks when an identifier cannot be passed as a bound
// parameter (labels, measurement names, table names).
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// entityNamePattern matches valid infrastructure entity names.
// Allows: letters, digits, dots (checkout.api), hyphens, underscores.
// Max length: 120 characters (covers ARN-derived names).
var entityNamePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._\-]{0,119}$`)

// labelPattern matches Neo4j node labels and relationship types.
// Labels are code-defined but pass through one string-building layer,
// so they get the same guard.
var labelPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]{0,63}$`)

// scenarioIDPattern matches demo scenario identifiers (file-derived slugs).
var scenarioIDPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9\-]{0,63}$`)

// ValidateEntityName validates an infrastructure entity name before it is
// used in a query context.
//
// Valid names:
//   - 1-120 characters
//   - Letters and digits
//   - Dots (.) for service-style names like payments.api
//   - Hyphens and underscores
//
// Returns an error if the name is invalid.
//
// Example:
//
//	if err := validation.ValidateEntityName(service); err != nil {
//	    return nil, fmt.Errorf("invalid service name: %w", err)
//	}
func ValidateEntityName(name string) error {
	if name == "" {
		return fmt.Errorf("entity name cannot be empty")
	}
	if !entityNamePattern.MatchString(name) {
		return fmt.Errorf("invalid entity name: %q (must be 1-120 alphanumeric chars, dots, hyphens, or underscores)", name)
	}
	return nil
}

// ValidateLabel validates a Neo4j label or relationship type before it is
// interpolated into a Cypher string. Labels cannot be bound parameters in
// Cypher, so this is the only line of defense.
func ValidateLabel(label string) error {
	if label == "" {
		return fmt.Errorf("label cannot be empty")
	}
	if !labelPattern.MatchString(label) {
		return fmt.Errorf("invalid label: %q (must start with a letter, 1-64 alphanumeric or underscore chars)", label)
	}
	return nil
}

// ValidateScenarioID validates a demo scenario identifier.
// Scenario IDs come from filenames on disk and from HTTP path segments.
func ValidateScenarioID(id string) error {
	if id == "" {
		return fmt.Errorf("scenario id cannot be empty")
	}
	if !scenarioIDPattern.MatchString(id) {
		return fmt.Errorf("invalid scenario id: %q (must be a lowercase slug)", id)
	}
	return nil
}

// ValidateMeasurement validates an InfluxDB measurement name before it is
// interpolated into a Flux query string.
//
// Measurement names follow the same rules as entity names but additionally
// reject Flux quote and escape characters outright.
func ValidateMeasurement(measurement string) error {
	if strings.ContainsAny(measurement, `"'\`) {
		return fmt.Errorf("invalid measurement: %q (quotes and backslashes are not allowed)", measurement)
	}
	return ValidateEntityName(measurement)
}

// ValidateEntityNames validates multiple entity names.
// Returns an error listing all invalid names if any fail validation.
func ValidateEntityNames(names []string) error {
	var invalid []string
	for _, n := range names {
		if err := ValidateEntityName(n); err != nil {
			invalid = append(invalid, n)
		}
	}
	if len(invalid) > 0 {
		return fmt.Errorf("invalid entity names: %s", strings.Join(invalid, ", "))
	}
	return nil
}
