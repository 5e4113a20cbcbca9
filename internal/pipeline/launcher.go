// Copyright 2026 Marcelo Cantos
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"errors"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
)

var errNotExecutable = errors.New("permission denied")

// Launcher creates one OS process per stage with its standard descriptors
// bound explicitly. Every other descriptor the interpreter holds is
// close-on-exec, so the child inherits exactly stdin, stdout and stderr.
type Launcher struct {
	Dir    string   // working directory; empty means the interpreter's
	Env    []string // environment; nil means the interpreter's
	Stderr *os.File // stderr of every child

	lookPath     func(file string) (string, error)
	startProcess func(name string, argv []string, attr *os.ProcAttr) (*os.Process, error)
}

// Resolve locates the program for argv[0] the way a shell does: names with
// a slash are used directly (relative to Dir), others are searched for in
// PATH.
func (l *Launcher) Resolve(stage int, name string) (string, error) {
	lookPath := l.lookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	file := name
	if l.Dir != "" && strings.Contains(name, "/") && !filepath.IsAbs(name) {
		file = filepath.Join(l.Dir, name)
	}
	path, err := lookPath(file)
	switch {
	case err == nil:
		return path, nil
	case errors.Is(err, exec.ErrDot):
		// "." in PATH is honoured like any other shell.
		return path, nil
	case errors.Is(err, fs.ErrPermission):
		return "", &StageError{Kind: ProgramNotFound, Stage: stage, Name: name, Err: errNotExecutable}
	default:
		return "", &StageError{Kind: ProgramNotFound, Stage: stage, Name: name, Err: err}
	}
}

// Launch starts argv with the given stdin and stdout. The caller keeps
// ownership of both descriptors and must close its copies afterwards.
//
// A program that cannot be found or executed yields a *StageError; any
// other failure of the platform spawn primitive yields a *CreationError.
func (l *Launcher) Launch(stage int, argv []string, stdin, stdout *os.File) (*os.Process, error) {
	path, err := l.Resolve(stage, argv[0])
	if err != nil {
		return nil, err
	}

	stderr := l.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}
	start := l.startProcess
	if start == nil {
		start = os.StartProcess
	}

	proc, err := start(path, argv, &os.ProcAttr{
		Dir:   l.Dir,
		Env:   l.Env,
		Files: []*os.File{stdin, stdout, stderr},
	})
	if err != nil {
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return nil, &StageError{Kind: ProgramNotFound, Stage: stage, Name: argv[0], Err: err}
		case errors.Is(err, fs.ErrPermission), errors.Is(err, syscall.ENOEXEC):
			return nil, &StageError{Kind: ProgramNotFound, Stage: stage, Name: argv[0], Err: errNotExecutable}
		default:
			return nil, &CreationError{Op: "spawn", Stage: stage, Err: err}
		}
	}
	return proc, nil
}

// outputFlags returns the open flags for a redirected stdout file.
func outputFlags(mode OutputMode) int {
	if mode == OutputAppend {
		return os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}
	return os.O_CREATE | os.O_WRONLY | os.O_TRUNC
}

// outputPerm is the creation mode of redirected files before umask.
const outputPerm = 0666
