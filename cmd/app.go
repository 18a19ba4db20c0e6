/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package cmd

import "github.com/urfave/cli/v3"

// NewApp returns the root command with every subcommand attached.
func NewApp() *cli.Command {
	return &cli.Command{
		Name:    "labx",
		Usage:   "labx - Lab report analysis",
		Version: Version,
		Flags:   globalFlags(),
		Before:  setupLogging,
		Commands: []*cli.Command{
			extractCommand(),
			analyseCommand(),
			serveCommand(),
			cacheCommand(),
		},
	}
}
