// Copyright 2026 Marcelo Cantos
// SPDX-License-Identifier: Apache-2.0

package pipeline

// Operators recognised on a command line. They must stand alone as tokens.
const (
	OpPipe      = "|"  // stdout → stdin of the next segment
	OpRedirIn   = "<"  // stdin from file
	OpRedirOut  = ">"  // stdout to file, truncating
	OpAppendOut = ">>" // stdout to file, appending
)

// Reserved command names. They terminate the interpreter and are never
// launched as programs.
const (
	CmdExit = "exit"
	CmdQuit = "quit"
)

// Default ceilings: 20 arguments per command, 20 commands per line, and
// one stdio buffer (BUFSIZ) per line.
const (
	DefaultMaxArgs      = 20
	DefaultMaxSegments  = 20
	DefaultMaxLineBytes = 8192
)

// OutputMode says how a redirected stdout file is opened.
type OutputMode int

const (
	OutputNone     OutputMode = iota // stdout not redirected
	OutputTruncate                   // >  create or truncate
	OutputAppend                     // >> create or append
)

func (m OutputMode) String() string {
	switch m {
	case OutputTruncate:
		return "truncate"
	case OutputAppend:
		return "append"
	default:
		return "none"
	}
}

// Redirection is the per-segment redirection intent. In and Out are
// independent; Mode is OutputNone exactly when Out is empty.
type Redirection struct {
	In   string     // file path for stdin, empty if none
	Out  string     // file path for stdout, empty if none
	Mode OutputMode // how Out is opened
}

// Segment is one command of a pipeline.
type Segment struct {
	Args     []string // Args[0] is the program; operators already stripped
	Redirect Redirection
}

// Name returns the program name.
func (s Segment) Name() string {
	if len(s.Args) == 0 {
		return ""
	}
	return s.Args[0]
}

// Pipeline is the ordered chain of segments parsed from one input line.
type Pipeline struct {
	Line     string
	Segments []Segment
}

// WantsExit reports whether any segment invokes a reserved terminate
// command. The interpreter checks this before any process is created.
func (p *Pipeline) WantsExit() bool {
	for _, seg := range p.Segments {
		switch seg.Name() {
		case CmdExit, CmdQuit:
			return true
		}
	}
	return false
}

// Names returns the program name of every segment, in order.
func (p *Pipeline) Names() []string {
	names := make([]string, len(p.Segments))
	for i, seg := range p.Segments {
		names[i] = seg.Name()
	}
	return names
}
