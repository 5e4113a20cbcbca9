// Copyright 2026 Marcelo Cantos
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"fmt"
	"strings"
)

// SourceKind says where a stage's stdin comes from.
type SourceKind int

const (
	FromInherit SourceKind = iota // the interpreter's own stdin
	FromPipe                      // read end of the previous pipe
	FromFile                      // a redirected file
)

// SinkKind says where a stage's stdout goes.
type SinkKind int

const (
	ToInherit SinkKind = iota // the interpreter's own stdout
	ToPipe                    // write end of the next pipe
	ToFile                    // a redirected file
	ToTee                     // a redirected file and the next pipe
)

// Source is a stage's stdin binding.
type Source struct {
	Kind SourceKind
	Pipe int    // pipe index for FromPipe
	Path string // file for FromFile
}

func (s Source) String() string {
	switch s.Kind {
	case FromPipe:
		return fmt.Sprintf("pipe %d", s.Pipe)
	case FromFile:
		return "file " + s.Path
	default:
		return "inherit"
	}
}

// Sink is a stage's stdout binding.
type Sink struct {
	Kind SinkKind
	Pipe int // pipe index for ToPipe and ToTee
	Path string
	Mode OutputMode
}

func (s Sink) String() string {
	switch s.Kind {
	case ToPipe:
		return fmt.Sprintf("pipe %d", s.Pipe)
	case ToFile:
		return fmt.Sprintf("file %s (%s)", s.Path, s.Mode)
	case ToTee:
		return fmt.Sprintf("file %s (%s) + pipe %d", s.Path, s.Mode, s.Pipe)
	default:
		return "inherit"
	}
}

// StagePlan is the descriptor plan for one segment.
type StagePlan struct {
	Index  int
	Args   []string
	Stdin  Source
	Stdout Sink

	// ClosesPipe is the index of a previous pipe whose read end this stage
	// does not consume because stdin is redirected from a file, or -1.
	ClosesPipe int
}

// Plan is the full descriptor plan of a pipeline.
type Plan struct {
	Stages []StagePlan
	Pipes  int // always len(Stages)-1
}

// BuildPlan decides, for every segment, where stdin comes from and where
// stdout goes. Pipe k connects stage k to stage k+1. Explicit redirection
// takes precedence over the pipe; an interior stage with output
// redirection tees into both its file and the next pipe.
func BuildPlan(p *Pipeline) *Plan {
	n := len(p.Segments)
	plan := &Plan{Stages: make([]StagePlan, n)}
	if n > 0 {
		plan.Pipes = n - 1
	}

	for k, seg := range p.Segments {
		st := StagePlan{Index: k, Args: seg.Args, ClosesPipe: -1}

		switch {
		case seg.Redirect.In != "":
			st.Stdin = Source{Kind: FromFile, Path: seg.Redirect.In}
			if k > 0 {
				st.ClosesPipe = k - 1
			}
		case k > 0:
			st.Stdin = Source{Kind: FromPipe, Pipe: k - 1}
		default:
			st.Stdin = Source{Kind: FromInherit}
		}

		last := k == n-1
		switch {
		case seg.Redirect.Out != "" && last:
			st.Stdout = Sink{Kind: ToFile, Path: seg.Redirect.Out, Mode: seg.Redirect.Mode}
		case seg.Redirect.Out != "":
			st.Stdout = Sink{Kind: ToTee, Pipe: k, Path: seg.Redirect.Out, Mode: seg.Redirect.Mode}
		case !last:
			st.Stdout = Sink{Kind: ToPipe, Pipe: k}
		default:
			st.Stdout = Sink{Kind: ToInherit}
		}

		plan.Stages[k] = st
	}
	return plan
}

// String renders the plan one stage per block.
func (p *Plan) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "pipes: %d\n", p.Pipes)
	for _, st := range p.Stages {
		fmt.Fprintf(&b, "stage %d: %s\n", st.Index, strings.Join(st.Args, " "))
		fmt.Fprintf(&b, "  stdin:  %s\n", st.Stdin)
		if st.ClosesPipe >= 0 {
			fmt.Fprintf(&b, "          (pipe %d discarded)\n", st.ClosesPipe)
		}
		fmt.Fprintf(&b, "  stdout: %s\n", st.Stdout)
	}
	return b.String()
}
