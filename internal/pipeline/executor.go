// Copyright 2026 Marcelo Cantos
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// StageStatus is what the interpreter learns about one stage.
type StageStatus struct {
	Index  int
	Name   string
	Pid    int  // 0 if the stage never ran
	Ran    bool // a process was created
	Status int  // exit status; for stages that never ran, see StageError.Status
	Err    error
}

// Result describes one completed pipeline execution.
type Result struct {
	Stages       []StageStatus
	PipesCreated int
	HelperErrs   []error
}

// Statuses returns the exit status of every stage, in order.
func (r *Result) Statuses() []int {
	out := make([]int, len(r.Stages))
	for i, s := range r.Stages {
		out[i] = s.Status
	}
	return out
}

// Executor runs pipelines as chains of OS processes.
type Executor struct {
	Launcher *Launcher
	Stdin    *os.File
	Stdout   *os.File

	// Diag reports stage-local failures. Nil writes them to the launcher's
	// stderr.
	Diag func(err error)

	newPipe  func() (r, w *os.File, err error)
	openFile func(name string, flag int, perm os.FileMode) (*os.File, error)
}

// Execute launches every stage of p left to right, then waits for all of
// them. It returns only once nothing it launched is still running.
//
// Stage-local failures (missing program, unreadable redirect) are
// reported through Diag and recorded in the result; the other stages run
// regardless. Failure to create a pipe or a process returns a
// *CreationError after the stages already launched have been reaped.
func (e *Executor) Execute(ctx context.Context, p *Pipeline) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	plan := BuildPlan(p)
	res := &Result{Stages: make([]StageStatus, len(plan.Stages))}
	for k, st := range plan.Stages {
		res.Stages[k] = StageStatus{Index: k, Name: st.Args[0]}
	}
	sup := &Supervisor{}

	var abort error
	var prevRead *os.File
	for k, st := range plan.Stages {
		if err := ctx.Err(); err != nil {
			abort = err
			break
		}

		var nextRead, nextWrite *os.File
		if k < plan.Pipes {
			r, w, err := e.pipe()
			if err != nil {
				abort = &CreationError{Op: "pipe", Stage: k, Err: err}
				break
			}
			sup.Own(r, w)
			res.PipesCreated++
			nextRead, nextWrite = r, w
		}

		proc, err := e.launchStage(sup, st, prevRead, nextWrite)
		prevRead = nextRead

		var stageErr *StageError
		switch {
		case errors.As(err, &stageErr):
			res.Stages[k].Err = stageErr
			res.Stages[k].Status = stageErr.Status()
			e.diag(stageErr)
		case err != nil:
			abort = err
		default:
			sup.Track(k, proc)
			res.Stages[k].Ran = true
			res.Stages[k].Pid = proc.Pid
		}
		if abort != nil {
			break
		}
	}

	exits, helperErrs := sup.Wait()
	for _, x := range exits {
		res.Stages[x.Stage].Status = x.Status
		if x.Err != nil {
			res.Stages[x.Stage].Err = x.Err
		}
	}
	res.HelperErrs = helperErrs
	for _, herr := range helperErrs {
		e.diag(fmt.Errorf("tee: %w", herr))
	}
	return res, abort
}

// launchStage binds one stage's descriptors and starts it. in is the read
// end of the previous pipe and out the write end of the next one; either
// may be nil. Whatever happens, the parent holds neither afterwards,
// except out when a fan-out helper has taken it over.
func (e *Executor) launchStage(sup *Supervisor, st StagePlan, in, out *os.File) (*os.Process, error) {
	var handoff []*os.File
	defer func() { sup.Close(handoff...) }()
	handoff = append(handoff, in, out)

	stdin := orDefault(e.Stdin, os.Stdin)
	switch st.Stdin.Kind {
	case FromPipe:
		stdin = in
	case FromFile:
		f, err := e.open(st.Stdin.Path, os.O_RDONLY, 0)
		if err != nil {
			return nil, fileError(st.Index, st.Stdin.Path, err)
		}
		sup.Own(f)
		handoff = append(handoff, f)
		stdin = f
	}

	stdout := orDefault(e.Stdout, os.Stdout)
	switch st.Stdout.Kind {
	case ToPipe:
		stdout = out
	case ToFile, ToTee:
		f, err := e.open(st.Stdout.Path, outputFlags(st.Stdout.Mode), outputPerm)
		if err != nil {
			return nil, fileError(st.Index, st.Stdout.Path, err)
		}
		sup.Own(f)
		handoff = append(handoff, f)
		stdout = f
	}

	if st.Stdout.Kind == ToTee {
		r, w, err := e.pipe()
		if err != nil {
			return nil, &CreationError{Op: "pipe", Stage: st.Index, Err: err}
		}
		sup.Own(r, w)
		handoff = append(handoff, w)

		file := stdout
		sup.Disown(r, file, out)
		sup.Go(func() error { return tee(r, file, out) })
		stdout = w
	}

	return e.Launcher.Launch(st.Index, st.Args, stdin, stdout)
}

func (e *Executor) pipe() (*os.File, *os.File, error) {
	if e.newPipe != nil {
		return e.newPipe()
	}
	return os.Pipe()
}

// open opens a redirect target. Relative names are taken from the
// launcher's working directory, which is where the stage itself runs.
func (e *Executor) open(name string, flag int, perm os.FileMode) (*os.File, error) {
	if e.Launcher.Dir != "" && !filepath.IsAbs(name) {
		name = filepath.Join(e.Launcher.Dir, name)
	}
	if e.openFile != nil {
		return e.openFile(name, flag, perm)
	}
	return os.OpenFile(name, flag, perm)
}

func (e *Executor) diag(err error) {
	if e.Diag != nil {
		e.Diag(err)
		return
	}
	w := e.Launcher.Stderr
	if w == nil {
		w = os.Stderr
	}
	fmt.Fprintf(w, "pipesh: %v\n", err)
}

func orDefault(f, def *os.File) *os.File {
	if f == nil {
		return def
	}
	return f
}

func fileError(stage int, path string, err error) *StageError {
	var pe *fs.PathError
	if errors.As(err, &pe) {
		err = pe.Err
	}
	return &StageError{Kind: FileAccessFailure, Stage: stage, Name: path, Err: err}
}
