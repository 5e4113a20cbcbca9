// Copyright 2026 Marcelo Cantos
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"errors"
	"fmt"
)

// ErrEmptyLine is returned by Parse for a line with no commands at all.
var ErrEmptyLine = errors.New("no commands")

// ParseError reports a malformed pipeline. It is detected before any
// process exists and aborts only the current line.
type ParseError struct {
	Segment int // 0-based segment index, -1 if not segment specific
	Msg     string
}

func (e *ParseError) Error() string {
	if e.Segment < 0 {
		return "syntax error: " + e.Msg
	}
	return fmt.Sprintf("syntax error in command %d: %s", e.Segment+1, e.Msg)
}

// Bounded collections a CapacityError can name.
const (
	LimitArguments = "arguments"
	LimitCommands  = "commands"
	LimitLineBytes = "line bytes"
)

// CapacityError reports that a bounded collection exceeded its ceiling.
// Only LimitArguments ends the interpreter under the reference policy.
type CapacityError struct {
	What  string // one of the Limit constants
	Limit int
	Got   int
}

// Fatal reports whether the failure ends the interpreter under the
// reference policy.
func (e *CapacityError) Fatal() bool {
	return e.What == LimitArguments
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("too many %s: %d exceeds limit of %d", e.What, e.Got, e.Limit)
}

// CreationError reports that the platform could not create a pipe or a
// process. Under the reference policy it ends the interpreter.
type CreationError struct {
	Op    string // "pipe" or "spawn"
	Stage int
	Err   error
}

func (e *CreationError) Error() string {
	return fmt.Sprintf("%s failed for command %d: %v", e.Op, e.Stage+1, e.Err)
}

func (e *CreationError) Unwrap() error { return e.Err }

// StageErrorKind classifies failures confined to a single stage.
type StageErrorKind int

const (
	FileAccessFailure StageErrorKind = iota // a redirection target could not be opened
	ProgramNotFound                         // the program could not be located or executed
)

func (k StageErrorKind) String() string {
	switch k {
	case FileAccessFailure:
		return "file access failure"
	case ProgramNotFound:
		return "program not found"
	default:
		return fmt.Sprintf("stage error(%d)", int(k))
	}
}

// StageError is a launch-time failure local to one stage. Siblings keep
// running; the stage is recorded with a non-zero status.
type StageError struct {
	Kind  StageErrorKind
	Stage int
	Name  string // program name or file path
	Err   error
}

func (e *StageError) Error() string {
	switch {
	case e.Kind == ProgramNotFound && errors.Is(e.Err, errNotExecutable):
		return fmt.Sprintf("%s: cannot execute: %v", e.Name, e.Err)
	case e.Kind == ProgramNotFound:
		return fmt.Sprintf("%s: command not found", e.Name)
	default:
		return fmt.Sprintf("%s: %v", e.Name, e.Err)
	}
}

func (e *StageError) Unwrap() error { return e.Err }

// Status is the exit status recorded for a stage that never ran.
func (e *StageError) Status() int {
	if e.Kind == ProgramNotFound {
		if errors.Is(e.Err, errNotExecutable) {
			return 126
		}
		return 127
	}
	return 1
}
