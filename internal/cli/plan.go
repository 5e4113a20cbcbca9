// Copyright 2026 Marcelo Cantos
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/marcelocantos/pipesh/internal/pipeline"
)

func newPlanCmd(app *App, flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "plan LINE...",
		Short: "Show how a line would be wired without running it",
		Long: `Parses LINE (the arguments joined with spaces) and prints, for every
stage, where its standard input comes from and where its standard output
goes. Nothing is opened or executed. Quote the line so your shell does not
interpret | < and > itself.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			cfg, err := loadConfig(app, *flags)
			if err != nil {
				return err
			}
			p, err := pipeline.Parse(strings.Join(args, " "), cfg.PipelineOptions())
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), pipeline.BuildPlan(p))
			return nil
		},
	}
}
