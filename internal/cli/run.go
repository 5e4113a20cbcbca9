// Copyright 2026 Marcelo Cantos
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"time"

	"github.com/marcelocantos/pipesh/internal/history"
	"github.com/marcelocantos/pipesh/internal/pipeline"
)

// Interpreter exit statuses.
const (
	StatusOK     = 0
	StatusFatal  = 1   // creation failure, argument overflow, or end of input
	StatusSyntax = 2   // malformed line (one-shot mode only)
	StatusExit   = 255 // exit or quit
)

// Interpreter is the read loop: it reads a line, runs it as a pipeline and
// waits for every stage before reading the next.
type Interpreter struct {
	Reader   LineReader
	Executor *pipeline.Executor
	Options  pipeline.Options

	// Recover abandons only the current line when a pipe or process cannot
	// be created or a command has too many arguments. Otherwise those end
	// the interpreter.
	Recover bool

	History *history.Logger // nil disables history
	diag    *diagnostics
}

// Run reads and executes lines until exit, a fatal failure, or end of input.
func (in *Interpreter) Run(ctx context.Context) int {
	for {
		line, err := in.Reader.Readline()
		if errors.Is(err, io.EOF) {
			return StatusFatal
		}
		if err != nil {
			in.report(err)
			return StatusFatal
		}
		if status, exit := in.RunLine(ctx, line); exit {
			return status
		}
	}
}

// RunLine executes one line. It returns the line's status (the last
// stage's exit status once the pipeline has run) and whether the
// interpreter should stop with that status.
func (in *Interpreter) RunLine(ctx context.Context, line string) (status int, exit bool) {
	start := time.Now()

	p, err := pipeline.Parse(line, in.Options)
	if errors.Is(err, pipeline.ErrEmptyLine) {
		return StatusOK, false
	}
	if err != nil {
		in.logHistory(strings.TrimSpace(line), nil, nil, err, time.Since(start))
		return in.resolveError(err)
	}

	// Reserved words end the interpreter before anything is created.
	if p.WantsExit() {
		return StatusExit, true
	}

	res, err := in.Executor.Execute(ctx, p)
	var statuses []int
	if res != nil {
		statuses = res.Statuses()
	}
	in.logHistory(p.Line, p.Names(), statuses, err, time.Since(start))
	if err != nil {
		return in.resolveError(err)
	}
	return statuses[len(statuses)-1], false
}

// resolveError reports a line-level failure and decides whether it ends
// the interpreter. Stage-local failures never reach here; the executor
// has already reported them.
func (in *Interpreter) resolveError(err error) (status int, exit bool) {
	in.report(err)

	var parseErr *pipeline.ParseError
	if errors.As(err, &parseErr) {
		return StatusSyntax, false
	}
	var capErr *pipeline.CapacityError
	if errors.As(err, &capErr) {
		return StatusFatal, capErr.Fatal() && !in.Recover
	}
	var createErr *pipeline.CreationError
	if errors.As(err, &createErr) {
		return StatusFatal, !in.Recover
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return StatusFatal, true
	}
	return StatusFatal, false
}

func (in *Interpreter) report(err error) {
	if in.diag == nil {
		in.diag = newDiagnostics(os.Stderr, false)
	}
	in.diag.report(err)
}

func (in *Interpreter) logHistory(line string, programs []string, statuses []int, err error, duration time.Duration) {
	if in.History == nil {
		return
	}
	var errMsg string
	if err != nil {
		errMsg = err.Error()
	}
	cwd := in.Executor.Launcher.Dir
	if cwd == "" {
		cwd, _ = os.Getwd()
	}
	// Best-effort history logging: don't fail the line if history fails.
	_ = in.History.Log(line, programs, statuses, errMsg, duration, cwd)
}
