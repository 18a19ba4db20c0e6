/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package cmd

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/humaidq/labx/render"
)

func extractCommand() *cli.Command {
	return &cli.Command{
		Name:      "extract",
		Usage:     "Extract lab results from report images",
		ArgsUsage: "FILES|DIRS...",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "write the reports as JSON to this file instead of stdout",
			},
		},
		Action: extract,
	}
}

func extract(ctx context.Context, cmd *cli.Command) error {
	paths, err := expandInputs(cmd.Args().Slice())
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	rt, err := buildRuntime(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeRuntime(rt)

	reports, err := rt.pipeline.RunExtractOnly(ctx, paths)
	if err != nil {
		return err
	}

	out := cmd.Root().Writer
	errOut := cmd.Root().ErrWriter

	fmt.Fprintf(errOut, "Extracted %d report(s):\n%s\n", len(reports), render.ReportsSummary(reports))

	if path := cmd.String("output"); path != "" {
		if err := render.WriteJSONFile(path, reports); err != nil {
			return err
		}
		fmt.Fprintf(errOut, "Reports written to %s\n", path)
		return nil
	}

	return render.WriteJSON(out, reports)
}

func closeRuntime(rt *runtime) {
	if err := rt.Close(); err != nil {
		appLogger.Warn("Failed to close cache", "error", err)
	}
}
