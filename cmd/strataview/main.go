// Copyright (C) 2026 StrataView Systems (eng@strataview.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/strataview/strataview/pkg/config"
	"github.com/strataview/strataview/pkg/logging"
	"github.com/strataview/strataview/pkg/ux"
)

var (
	cfg config.Config

	configPath string
	plainOut   bool

	rootCmd = &cobra.Command{
		Use:   "strataview",
		Short: "A CLI to manage the StrataView demo backend",
		Long: `strataview seeds the synthetic infrastructure estate, validates
demo scenario timelines, and reports on the backing stores.`,
	}
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error executing command: %v", err)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"path to strataview.yaml (defaults to the standard lookup)")
	rootCmd.PersistentFlags().BoolVar(&plainOut, "plain", false,
		"plain text output (no colors or spinners)")

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if plainOut {
			ux.SetPlain(true)
		}

		var err error
		if configPath != "" {
			cfg, err = config.LoadFile(configPath)
		} else {
			err = config.Load()
			cfg = config.Global
		}
		if err != nil {
			ux.Error("Could not load the configuration: " + err.Error())
			os.Exit(1)
		}

		logging.New(logging.Config{
			Level:   logging.ParseLevel(cfg.Server.LogLevel),
			LogDir:  cfg.Server.LogDir,
			Service: "cli",
		}).Install()
	}
}
