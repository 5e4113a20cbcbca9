// Copyright 2026 Marcelo Cantos
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"github.com/anmitsu/go-shlex"
)

// WordSplitter splits one segment into argument tokens.
type WordSplitter func(segment string) ([]string, error)

// Options bounds and configures parsing. Zero fields take the defaults.
type Options struct {
	MaxArgs      int
	MaxSegments  int
	MaxLineBytes int
	Split        WordSplitter // nil means Fields
}

func (o Options) withDefaults() Options {
	if o.MaxArgs <= 0 {
		o.MaxArgs = DefaultMaxArgs
	}
	if o.MaxSegments <= 0 {
		o.MaxSegments = DefaultMaxSegments
	}
	if o.MaxLineBytes <= 0 {
		o.MaxLineBytes = DefaultMaxLineBytes
	}
	if o.Split == nil {
		o.Split = func(s string) ([]string, error) { return Fields(s), nil }
	}
	return o
}

const blanks = " \t\r\n"

// Fields splits a segment on runs of space, tab and newline.
func Fields(segment string) []string {
	return strings.FieldsFunc(segment, func(r rune) bool {
		return strings.ContainsRune(blanks, r)
	})
}

// ShellWords splits a segment honouring POSIX quoting and escapes.
// Redirection operators are recognized on the resulting words, so a
// quoted '>' is still an operator. A literal | cannot be quoted either;
// the line is split on it before any word splitting.
func ShellWords(segment string) ([]string, error) {
	words, err := shlex.Split(segment, true)
	if err != nil {
		return nil, err
	}
	return words, nil
}

// SplitSegments splits a raw line on the pipe operator and trims each
// segment. A blank line yields ErrEmptyLine; an empty segment between,
// before or after pipes is a ParseError.
func SplitSegments(line string) ([]string, error) {
	if strings.Trim(line, blanks) == "" {
		return nil, ErrEmptyLine
	}
	parts := strings.Split(line, OpPipe)
	for i, part := range parts {
		parts[i] = strings.Trim(part, blanks)
		if parts[i] == "" {
			return nil, &ParseError{Segment: i, Msg: fmt.Sprintf("empty command near %q", OpPipe)}
		}
	}
	return parts, nil
}

// Parse turns a raw line into a Pipeline with redirections resolved.
// No process is touched.
func Parse(line string, opts Options) (*Pipeline, error) {
	opts = opts.withDefaults()

	if len(line) > opts.MaxLineBytes {
		return nil, &CapacityError{What: LimitLineBytes, Limit: opts.MaxLineBytes, Got: len(line)}
	}

	parts, err := SplitSegments(line)
	if err != nil {
		return nil, err
	}
	if len(parts) > opts.MaxSegments {
		return nil, &CapacityError{What: LimitCommands, Limit: opts.MaxSegments, Got: len(parts)}
	}

	p := &Pipeline{
		Line:     strings.Trim(line, blanks),
		Segments: make([]Segment, 0, len(parts)),
	}
	for i, part := range parts {
		tokens, err := opts.Split(part)
		if err != nil {
			return nil, &ParseError{Segment: i, Msg: err.Error()}
		}
		if len(tokens) == 0 {
			return nil, &ParseError{Segment: i, Msg: "empty command"}
		}
		if len(tokens) > opts.MaxArgs {
			return nil, &CapacityError{What: LimitArguments, Limit: opts.MaxArgs, Got: len(tokens)}
		}

		args, redir, err := ResolveRedirects(tokens)
		if err != nil {
			var pe *ParseError
			if errors.As(err, &pe) {
				pe.Segment = i
			}
			return nil, err
		}
		p.Segments = append(p.Segments, Segment{Args: args, Redirect: redir})
	}
	return p, nil
}
