/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/humaidq/labx/lab"
	"github.com/humaidq/labx/render"
)

func analyseCommand() *cli.Command {
	return &cli.Command{
		Name:      "analyse",
		Aliases:   []string{"analyze"},
		Usage:     "Extract, merge and analyse lab results across report images",
		ArgsUsage: "FILES|DIRS...",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "write the analysis as JSON to this file",
			},
			&cli.StringFlag{
				Name:  "html",
				Usage: "write a standalone HTML report with trend charts to this file",
			},
			&cli.StringFlag{
				Name:  "org",
				Usage: "write an org-mode report to this file",
			},
			&cli.BoolFlag{
				Name:  "no-summary",
				Usage: "skip the clinical summary",
			},
		},
		Action: analyse,
	}
}

func analyse(ctx context.Context, cmd *cli.Command) error {
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

	summary := !cmd.Bool("no-summary") && rt.pipeline.CanSummarize()

	analysis, err := rt.pipeline.RunFullPipeline(ctx, paths, summary)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.Root().Writer, render.AnalysisSummary(analysis))

	return writeAnalysisOutputs(cmd, analysis)
}

func writeAnalysisOutputs(cmd *cli.Command, analysis *lab.AnalysisReport) error {
	errOut := cmd.Root().ErrWriter

	if path := cmd.String("output"); path != "" {
		if err := render.WriteJSONFile(path, analysis); err != nil {
			return err
		}
		fmt.Fprintf(errOut, "Analysis written to %s\n", path)
	}

	if path := cmd.String("org"); path != "" {
		if err := os.WriteFile(path, []byte(render.AnalysisOrg(analysis)), 0o600); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		fmt.Fprintf(errOut, "Org report written to %s\n", path)
	}

	if path := cmd.String("html"); path != "" {
		doc, err := render.AnalysisHTML(analysis)
		if err != nil {
			return err
		}
		if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		fmt.Fprintf(errOut, "HTML report written to %s\n", path)
	}

	return nil
}
