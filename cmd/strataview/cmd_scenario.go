// Copyright (C) 2026 StrataView Systems (eng@strataview.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/strataview/strataview/pkg/ux"
	"github.com/strataview/strataview/services/gateway/scenario"
)

var (
	scenarioCmd = &cobra.Command{
		Use:   "scenario",
		Short: "Work with the demo scenario timelines",
	}

	scenarioValidateCmd = &cobra.Command{
		Use:   "validate [directory]",
		Short: "Validate every timeline YAML in the scenarios directory",
		Long: `Parses each timeline the way the gateway would and reports per-file
errors. The gateway skips invalid files silently at runtime; run this
before a demo to catch a bad edit while it is still cheap.`,
		Args: cobra.MaximumNArgs(1),
		Run:  runScenarioValidate,
	}
)

func init() {
	scenarioCmd.AddCommand(scenarioValidateCmd)
	rootCmd.AddCommand(scenarioCmd)
}

func runScenarioValidate(cmd *cobra.Command, args []string) {
	dir := cfg.Scenario.Dir
	if len(args) == 1 {
		dir = args[0]
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		ux.Error("Could not read the scenarios directory: " + err.Error())
		os.Exit(1)
	}

	ux.Title("Validating timelines in " + dir)
	var checked, failed int
	seen := map[string]string{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || (!strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml")) {
			continue
		}
		checked++

		tl, err := scenario.LoadTimeline(filepath.Join(dir, name))
		if err != nil {
			failed++
			ux.Error(fmt.Sprintf("%s: %v", name, err))
			continue
		}
		if prev, dup := seen[tl.ID]; dup {
			failed++
			ux.Error(fmt.Sprintf("%s: duplicate id %q (also in %s)", name, tl.ID, prev))
			continue
		}
		seen[tl.ID] = name
		ux.Success(fmt.Sprintf("%s: %q with %d steps", name, tl.Name, tl.TotalSteps()))
	}

	if checked == 0 {
		ux.Warning("No timeline files found")
		return
	}
	if failed > 0 {
		ux.Error(fmt.Sprintf("%d of %d timelines invalid", failed, checked))
		os.Exit(1)
	}
	ux.Success(fmt.Sprintf("All %d timelines valid", checked))
}
