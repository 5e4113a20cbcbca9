// Copyright 2026 Marcelo Cantos
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/marcelocantos/pipesh/internal/history"
)

func newHistoryCmd(app *App, flags *rootFlags) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect the execution history",
	}

	verifyCmd := &cobra.Command{
		Use:   "verify",
		Short: "Check the integrity of the history hash chain",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			cfg, err := loadConfig(app, *flags)
			if err != nil {
				return err
			}
			if err := history.Verify(app.Fs, cfg.History.Path); err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "history verification FAILED: %v\n", err)
				return &ExitError{Code: StatusFatal}
			}
			fmt.Fprintln(cmd.OutOrStdout(), "history integrity verified")
			return nil
		},
	}

	var n int
	showCmd := &cobra.Command{
		Use:     "show",
		Aliases: []string{"tail"},
		Short:   "Print the most recent history entries",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			cfg, err := loadConfig(app, *flags)
			if err != nil {
				return err
			}
			entries, err := history.Tail(app.Fs, cfg.History.Path, n)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no history entries")
				return nil
			}
			for _, e := range entries {
				writeEntry(cmd.OutOrStdout(), e)
			}
			return nil
		},
	}
	showCmd.Flags().IntVarP(&n, "lines", "n", 20, "number of entries to show")

	historyCmd.AddCommand(verifyCmd, showCmd)
	return historyCmd
}

func writeEntry(w io.Writer, e history.Entry) {
	statuses := make([]string, len(e.Statuses))
	for i, s := range e.Statuses {
		statuses[i] = fmt.Sprint(s)
	}
	// A bang after the sequence number marks a failed line.
	mark := " "
	if e.Failed() {
		mark = "!"
	}
	fmt.Fprintf(w, "%5d%s %s  [%s]  %s\n", e.Seq, mark, e.Time.Local().Format(time.DateTime), strings.Join(statuses, " "), e.Line)
	if e.Error != "" {
		fmt.Fprintf(w, "       error: %s\n", e.Error)
	}
}
