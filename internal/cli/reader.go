// Copyright 2026 Marcelo Cantos
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/abiosoft/readline"
	"github.com/mattn/go-isatty"
)

// LineReader yields one input line per call, printing the prompt first.
// It returns io.EOF when the input is exhausted.
type LineReader interface {
	Readline() (string, error)
	Close() error
}

// prompter reads lines from a non-terminal source such as a file or pipe.
// Lines are returned whole, however long; the parser applies the
// configured byte limit.
type prompter struct {
	prompt string
	w      io.Writer
	r      *bufio.Reader
}

func newPrompter(prompt string, w io.Writer, r io.Reader) *prompter {
	return &prompter{prompt: prompt, w: w, r: bufio.NewReader(r)}
}

func (p *prompter) Readline() (string, error) {
	fmt.Fprint(p.w, p.prompt)
	line, err := p.r.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r"), nil
}

func (p *prompter) Close() error { return nil }

// terminal reads lines with editing from an interactive terminal.
type terminal struct {
	rl *readline.Instance
}

func newTerminal(prompt string, stdin, stdout, stderr *os.File) (*terminal, error) {
	cfg := &readline.Config{
		Prompt: prompt,
		Stdin:  readline.NewCancelableStdin(stdin),
		Stdout: stdout,
		Stderr: stderr,
		FuncIsTerminal: func() bool {
			return true
		},
	}
	if err := cfg.Init(); err != nil {
		return nil, err
	}
	rl, err := readline.NewEx(cfg)
	if err != nil {
		return nil, err
	}
	return &terminal{rl: rl}, nil
}

// Readline treats an interrupt as an abandoned line, so the caller simply
// prompts again.
func (t *terminal) Readline() (string, error) {
	line, err := t.rl.Readline()
	if err == readline.ErrInterrupt {
		return "", nil
	}
	return line, err
}

func (t *terminal) Close() error { return t.rl.Close() }

// NewLineReader picks line editing when stdin is a terminal and a plain
// buffered reader otherwise.
func NewLineReader(prompt string, stdin, stdout, stderr *os.File) (LineReader, error) {
	if isTerminal(stdin) {
		return newTerminal(prompt, stdin, stdout, stderr)
	}
	return newPrompter(prompt, stdout, stdin), nil
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
