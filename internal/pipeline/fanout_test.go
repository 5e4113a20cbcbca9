// Copyright 2026 Marcelo Cantos
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sink is an io.WriteCloser that can be told to fail after n writes.
type sink struct {
	bytes.Buffer
	failAfter int
	err       error
	writes    int
	closed    bool
}

func (s *sink) Write(p []byte) (int, error) {
	if s.err != nil && s.writes >= s.failAfter {
		return 0, s.err
	}
	s.writes++
	return s.Buffer.Write(p)
}

func (s *sink) Close() error {
	s.closed = true
	return nil
}

type source struct {
	io.Reader
	closed bool
}

func (s *source) Close() error {
	s.closed = true
	return nil
}

func TestFanoutWritesEveryDestination(t *testing.T) {
	a, b := &sink{}, &sink{}
	f := newFanout(a, b)

	n, err := f.Write([]byte("chunk"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "chunk", a.String())
	assert.Equal(t, "chunk", b.String())
}

func TestFanoutDropsFailedDestination(t *testing.T) {
	bad := &sink{err: errors.New("disk full"), failAfter: 1}
	good := &sink{}
	f := newFanout(bad, good)

	for _, chunk := range []string{"one ", "two ", "three"} {
		_, err := f.Write([]byte(chunk))
		require.NoError(t, err)
	}
	assert.Equal(t, "one ", bad.String())
	assert.Equal(t, "one two three", good.String())
	assert.Equal(t, 1, bad.writes, "a dropped destination is not retried")
}

func TestFanoutFailsWhenNoneLeft(t *testing.T) {
	boom := errors.New("boom")
	f := newFanout(&sink{err: boom}, &sink{err: syscall.EPIPE})

	_, err := f.Write([]byte("x"))
	assert.ErrorIs(t, err, boom)
}

func TestTeeCopiesAndCloses(t *testing.T) {
	src := &source{Reader: strings.NewReader(strings.Repeat("line\n", 1000))}
	a, b := &sink{}, &sink{}

	require.NoError(t, tee(src, a, b))
	assert.Equal(t, 5000, a.Len())
	assert.Equal(t, a.String(), b.String())
	assert.True(t, src.closed)
	assert.True(t, a.closed)
	assert.True(t, b.closed)
}

func TestTeeIgnoresBrokenPipe(t *testing.T) {
	src := &source{Reader: strings.NewReader("data")}
	file := &sink{}
	downstream := &sink{err: syscall.EPIPE}

	assert.NoError(t, tee(src, file, downstream))
	assert.Equal(t, "data", file.String())
	assert.True(t, downstream.closed)
}

func TestTeeReportsOtherWriteErrors(t *testing.T) {
	src := &source{Reader: strings.NewReader("data")}
	full := errors.New("no space left on device")

	err := tee(src, &sink{err: full}, &sink{})
	assert.ErrorIs(t, err, full)
	assert.True(t, src.closed)
}
