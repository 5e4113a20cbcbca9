// Copyright 2026 Marcelo Cantos
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/marcelocantos/pipesh/internal/config"
	"github.com/marcelocantos/pipesh/internal/history"
	"github.com/marcelocantos/pipesh/internal/pipeline"
)

// App carries the process-level resources the commands run against.
type App struct {
	Fs      afero.Fs // config and history storage
	Stdin   *os.File
	Stdout  *os.File
	Stderr  *os.File
	Dir     string // working directory for stages; empty means the process's
	Version string
}

// ExitError carries an exit status out of a command. It has already been
// reported, so it prints nothing.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

type rootFlags struct {
	configPath string
	recover    bool
	noHistory  bool
	command    string
	oneShot    bool // -c was given, even if empty
}

// NewRootCmd builds the pipesh command tree.
func NewRootCmd(app *App) *cobra.Command {
	var flags rootFlags

	root := &cobra.Command{
		Use:   "pipesh",
		Short: "A line-oriented pipeline interpreter",
		Long: `pipesh reads one line at a time, runs it as a pipeline of external
programs connected with |, applies < > and >> redirections, and waits for
every stage before prompting again. exit or quit leaves the interpreter.`,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			flags.oneShot = cmd.Flags().Changed("command")
			cfg, err := loadConfig(app, flags)
			if err != nil {
				return err
			}
			return runInterpreter(cmd.Context(), app, cfg, flags)
		},
	}
	root.SetIn(app.Stdin)
	root.SetOut(app.Stdout)
	root.SetErr(app.Stderr)

	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default ~/.config/pipesh/config.yaml)")
	root.Flags().BoolVar(&flags.recover, "recover", false, "abandon only the current line when a pipe or process cannot be created")
	root.Flags().BoolVar(&flags.noHistory, "no-history", false, "do not record executed lines")
	root.Flags().StringVarP(&flags.command, "command", "c", "", "run a single line and exit with its status")

	root.AddCommand(
		newPlanCmd(app, &flags),
		newHistoryCmd(app, &flags),
		newVersionCmd(app),
	)
	return root
}

// Execute runs the command tree with args and returns the process exit
// status.
func Execute(ctx context.Context, app *App, args []string) int {
	root := NewRootCmd(app)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return StatusOK
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	newDiagnostics(app.Stderr, shouldColor(config.ColorAuto, app.Stderr)).report(err)
	return StatusFatal
}

func loadConfig(app *App, flags rootFlags) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if flags.configPath != "" {
		cfg, err = config.LoadFrom(app.Fs, flags.configPath)
	} else {
		cfg, err = config.Load(app.Fs)
	}
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if flags.recover {
		cfg.Policy.RecoverLaunchFailures = true
	}
	if flags.noHistory {
		cfg.History.Enabled = false
	}
	return cfg, nil
}

func runInterpreter(ctx context.Context, app *App, cfg *config.Config, flags rootFlags) error {
	diag := newDiagnostics(app.Stderr, shouldColor(cfg.Color, app.Stderr))

	in := &Interpreter{
		Executor: &pipeline.Executor{
			Launcher: &pipeline.Launcher{Dir: app.Dir, Stderr: app.Stderr},
			Stdin:    app.Stdin,
			Stdout:   app.Stdout,
			Diag:     diag.report,
		},
		Options: cfg.PipelineOptions(),
		Recover: cfg.Policy.RecoverLaunchFailures,
		diag:    diag,
	}

	if cfg.History.Enabled {
		logger, err := history.NewLogger(app.Fs, cfg.History.Path)
		if err != nil {
			// Continue without history.
			diag.report(fmt.Errorf("history: %w", err))
		} else {
			in.History = logger
		}
	}

	var status int
	if flags.oneShot {
		status, _ = in.RunLine(ctx, flags.command)
	} else {
		reader, err := NewLineReader(cfg.Prompt, app.Stdin, app.Stdout, app.Stderr)
		if err != nil {
			return fmt.Errorf("input: %w", err)
		}
		defer reader.Close()
		in.Reader = reader
		status = in.Run(ctx)
	}

	if status != StatusOK {
		return &ExitError{Code: status}
	}
	return nil
}
