// Copyright (C) 2026 StrataView Systems (eng@strataview.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package seeder generates the synthetic estate: a plausible AWS
// topology into Neo4j and a metrics backfill into TimescaleDB. Given
// the same seed and scale, two runs produce identical names, counts,
// and relationships.
package seeder

import (
	"fmt"
	"math/rand"

	"github.com/bxcodec/faker/v3"
)

// Name pools. Composition order is deterministic so a fixed seed yields
// a fixed estate.
var (
	serviceDomains = []string{
		"payments", "checkout", "inventory", "catalog", "search",
		"auth", "billing", "shipping", "notifications", "recommendations",
		"pricing", "fraud", "ledger", "orders", "profiles",
		"sessions", "analytics", "ingest", "export", "audit",
	}
	serviceSuffixes = []string{"api", "svc", "worker", "gateway", "processor", "sync"}

	regions = []string{"us-east-1", "us-west-2", "eu-west-1", "eu-central-1", "ap-southeast-2"}

	ec2Types = []string{
		"m5.xlarge", "m5.2xlarge", "c5.2xlarge", "c5.4xlarge",
		"r5.xlarge", "r5.2xlarge", "t3.large",
	}
	rdsEngines  = []string{"postgres", "aurora-postgresql", "mysql"}
	eksVersions = []string{"1.28", "1.29", "1.30"}
	tiers       = []string{"critical", "standard", "standard", "internal"}

	externalVendors = []string{
		"stripe", "twilio", "sendgrid", "datadog", "auth0",
		"cloudflare", "segment", "launchdarkly", "pagerduty", "snowflake",
	}
)

// Catalog hands out deterministic names and properties. Not safe for
// concurrent use; the topology generator drives it from one goroutine.
type Catalog struct {
	rng *rand.Rand
}

// NewCatalog returns a catalog over a freshly seeded RNG.
func NewCatalog(seed int64) *Catalog {
	return &Catalog{rng: rand.New(rand.NewSource(seed))}
}

// seedFaker pins faker's global source. Called from the generator
// constructors, never from worker goroutines; faker's source is a
// package global.
func seedFaker(seed int64) {
	faker.SetRandomSource(rand.NewSource(seed))
}

// ServiceName returns the i-th service name. The first D*S names are
// unique domain-suffix pairs; past that an index keeps them unique.
func (c *Catalog) ServiceName(i int) string {
	d := len(serviceDomains)
	s := len(serviceSuffixes)
	name := fmt.Sprintf("%s-%s", serviceDomains[i%d], serviceSuffixes[(i/d)%s])
	if i >= d*s {
		name = fmt.Sprintf("%s-%02d", name, i/(d*s))
	}
	return name
}

// ClusterName returns the i-th EKS cluster name.
func (c *Catalog) ClusterName(i int) string {
	return fmt.Sprintf("eks-%s-%02d", regions[i%len(regions)], i/len(regions)+1)
}

// RDSName returns the i-th database instance name.
func (c *Catalog) RDSName(i int) string {
	return fmt.Sprintf("%s-db-%02d", serviceDomains[i%len(serviceDomains)], i/len(serviceDomains)+1)
}

// EC2Name returns the i-th instance name. The index keeps names unique
// even when the random half collides.
func (c *Catalog) EC2Name(i int) string {
	return fmt.Sprintf("i-%04x%08x", i, c.rng.Uint32())
}

// LoadBalancerName returns the i-th ALB name.
func (c *Catalog) LoadBalancerName(i int) string {
	return fmt.Sprintf("alb-%s-%02d", regions[i%len(regions)], i/len(regions)+1)
}

// WebServiceName returns the i-th public web frontend name.
func (c *Catalog) WebServiceName(i int) string {
	return fmt.Sprintf("web-%s-%02d", serviceDomains[i%len(serviceDomains)], i/len(serviceDomains)+1)
}

// ApplicationName returns the i-th business application name.
func (c *Catalog) ApplicationName(i int) string {
	return fmt.Sprintf("app-%s", c.ServiceName(i))
}

// ExternalName returns the i-th third-party dependency name.
func (c *Catalog) ExternalName(i int) string {
	v := externalVendors[i%len(externalVendors)]
	if i >= len(externalVendors) {
		return fmt.Sprintf("%s-%02d", v, i/len(externalVendors)+1)
	}
	return v
}

// Region picks a region.
func (c *Catalog) Region() string {
	return regions[c.rng.Intn(len(regions))]
}

// Tier picks a service tier, weighted toward standard.
func (c *Catalog) Tier() string {
	return tiers[c.rng.Intn(len(tiers))]
}

// EC2Type picks an instance type.
func (c *Catalog) EC2Type() string {
	return ec2Types[c.rng.Intn(len(ec2Types))]
}

// RDSEngine picks a database engine.
func (c *Catalog) RDSEngine() string {
	return rdsEngines[c.rng.Intn(len(rdsEngines))]
}

// EKSVersion picks a Kubernetes version.
func (c *Catalog) EKSVersion() string {
	return eksVersions[c.rng.Intn(len(eksVersions))]
}

// MonthlyCost draws a plausible monthly cost in the given band.
func (c *Catalog) MonthlyCost(min, max float64) float64 {
	return min + c.rng.Float64()*(max-min)
}

// Owner fabricates an owning team handle.
func (c *Catalog) Owner() string {
	return fmt.Sprintf("team-%s", faker.Username())
}

// Endpoint fabricates a vendor API endpoint.
func (c *Catalog) Endpoint() string {
	return fmt.Sprintf("https://api.%s", faker.DomainName())
}

// SourceIP fabricates an attacker address for security events.
func (c *Catalog) SourceIP() string {
	return faker.IPv4()
}

// Intn exposes the seeded RNG for structural draws (dependency counts,
// edge targets).
func (c *Catalog) Intn(n int) int {
	return c.rng.Intn(n)
}

// Float64 exposes the seeded RNG for metric value draws.
func (c *Catalog) Float64() float64 {
	return c.rng.Float64()
}
