// Copyright 2026 Marcelo Cantos
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcelocantos/pipesh/internal/pipeline"
)

func TestResolveError(t *testing.T) {
	creation := &pipeline.CreationError{Op: "spawn", Stage: 1, Err: errors.New("resource temporarily unavailable")}
	capacity := &pipeline.CapacityError{What: pipeline.LimitArguments, Limit: 20, Got: 21}
	longLine := &pipeline.CapacityError{What: pipeline.LimitLineBytes, Limit: 8192, Got: 9000}
	commands := &pipeline.CapacityError{What: pipeline.LimitCommands, Limit: 20, Got: 21}
	parse := &pipeline.ParseError{Segment: 0, Msg: "empty command"}

	cases := []struct {
		name    string
		err     error
		recover bool
		status  int
		exit    bool
	}{
		{"creation reference", creation, false, StatusFatal, true},
		{"creation hardened", creation, true, StatusFatal, false},
		{"capacity reference", capacity, false, StatusFatal, true},
		{"capacity hardened", capacity, true, StatusFatal, false},
		{"line bytes", longLine, false, StatusFatal, false},
		{"commands", commands, false, StatusFatal, false},
		{"cancelled", context.Canceled, true, StatusFatal, true},
		{"parse", parse, false, StatusSyntax, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var buf bytes.Buffer
			in := &Interpreter{Recover: c.recover, diag: newDiagnostics(&buf, false)}

			status, exit := in.resolveError(c.err)
			assert.Equal(t, c.status, status)
			assert.Equal(t, c.exit, exit)
			assert.Equal(t, "pipesh: "+c.err.Error()+"\n", buf.String())
		})
	}
}

func TestPrompter(t *testing.T) {
	var out bytes.Buffer
	p := newPrompter("> ", &out, strings.NewReader("one\ntwo\r\nthree"))

	for _, want := range []string{"one", "two", "three"} {
		line, err := p.Readline()
		require.NoError(t, err)
		assert.Equal(t, want, line)
	}
	_, err := p.Readline()
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, "> > > > ", out.String())
}

func TestPrompterLongLine(t *testing.T) {
	long := strings.Repeat("x", 4<<20)
	p := newPrompter("", io.Discard, strings.NewReader(long+"\nnext\n"))

	line, err := p.Readline()
	require.NoError(t, err)
	assert.Len(t, line, len(long))

	line, err = p.Readline()
	require.NoError(t, err)
	assert.Equal(t, "next", line)
}

func TestDiagnosticsColor(t *testing.T) {
	var plain, colored bytes.Buffer
	newDiagnostics(&plain, false).report(errors.New("boom"))
	newDiagnostics(&colored, true).report(errors.New("boom"))

	assert.Equal(t, "pipesh: boom\n", plain.String())
	assert.Contains(t, colored.String(), "\x1b[31m")
	assert.Contains(t, colored.String(), "pipesh: boom")
}

func TestShouldColor(t *testing.T) {
	assert.True(t, shouldColor("always", nil))
	assert.False(t, shouldColor("never", nil))
	assert.False(t, shouldColor("auto", nil))
}
