// Copyright 2026 Marcelo Cantos
// SPDX-License-Identifier: Apache-2.0

package history

import (
	"errors"
	"testing"
	"time"

	"github.com/spf13/afero"
)

const testPath = "/state/pipesh/history.jsonl"

func logN(t *testing.T, l *Logger, lines ...string) {
	t.Helper()
	for i, line := range lines {
		err := l.Log(line, []string{"cat", "wc"}, []int{0, 0}, "", time.Duration(i)*time.Millisecond, "/tmp")
		if err != nil {
			t.Fatalf("log entry %d: %v", i, err)
		}
	}
}

func TestLogAndVerify(t *testing.T) {
	fs := afero.NewMemMapFs()
	logger, err := NewLogger(fs, testPath)
	if err != nil {
		t.Fatal(err)
	}

	logN(t, logger, "a", "b", "c", "d", "e")

	if err := Verify(fs, testPath); err != nil {
		t.Fatalf("verify failed: %v", err)
	}
}

func TestVerifyDetectsTampering(t *testing.T) {
	fs := afero.NewMemMapFs()
	logger, err := NewLogger(fs, testPath)
	if err != nil {
		t.Fatal(err)
	}
	logN(t, logger, "cat notes.txt", "sort < in.txt", "ls | wc -l")

	data, err := afero.ReadFile(fs, testPath)
	if err != nil {
		t.Fatal(err)
	}
	mid := len(data) / 2
	if data[mid] == 'a' {
		data[mid] = 'b'
	} else {
		data[mid] = 'a'
	}
	if err := afero.WriteFile(fs, testPath, data, 0600); err != nil {
		t.Fatal(err)
	}

	var ce *ChainError
	if err := Verify(fs, testPath); !errors.As(err, &ce) {
		t.Fatalf("expected ChainError, got %v", err)
	}
}

func TestVerifyDetectsSequenceGap(t *testing.T) {
	fs := afero.NewMemMapFs()
	logger, err := NewLogger(fs, testPath)
	if err != nil {
		t.Fatal(err)
	}
	logN(t, logger, "1", "2", "3", "4", "5")

	data, err := afero.ReadFile(fs, testPath)
	if err != nil {
		t.Fatal(err)
	}
	lines := splitLines(data)
	remaining := append(lines[:2], lines[3:]...)
	var newData []byte
	for _, line := range remaining {
		newData = append(newData, line...)
		newData = append(newData, '\n')
	}
	if err := afero.WriteFile(fs, testPath, newData, 0600); err != nil {
		t.Fatal(err)
	}

	var ce *ChainError
	if err := Verify(fs, testPath); !errors.As(err, &ce) || ce.Line != 3 {
		t.Fatalf("expected ChainError at line 3, got %v", err)
	}
}

func TestVerifyEmptyHistory(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, testPath, nil, 0600); err != nil {
		t.Fatal(err)
	}
	if err := Verify(fs, testPath); err != nil {
		t.Fatalf("empty history should be valid: %v", err)
	}
}

func TestVerifyMissingHistory(t *testing.T) {
	var ce *ChainError
	err := Verify(afero.NewMemMapFs(), testPath)
	if err == nil || errors.As(err, &ce) {
		t.Fatalf("expected a read error, got %v", err)
	}
}

func TestLoggerResumesChain(t *testing.T) {
	fs := afero.NewMemMapFs()
	logger1, err := NewLogger(fs, testPath)
	if err != nil {
		t.Fatal(err)
	}
	logN(t, logger1, "first", "second")

	// A new logger, as after an interpreter restart.
	logger2, err := NewLogger(fs, testPath)
	if err != nil {
		t.Fatal(err)
	}
	logN(t, logger2, "third")

	if err := Verify(fs, testPath); err != nil {
		t.Fatalf("chain should be valid after restart: %v", err)
	}

	entries, err := Tail(fs, testPath, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[2].Seq != 3 || entries[2].Line != "third" {
		t.Errorf("unexpected last entry: %+v", entries[2])
	}
}

func TestTailLimits(t *testing.T) {
	fs := afero.NewMemMapFs()
	logger, err := NewLogger(fs, testPath)
	if err != nil {
		t.Fatal(err)
	}
	logN(t, logger, "a", "b", "c")

	entries, err := Tail(fs, testPath, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 || entries[0].Line != "b" || entries[1].Line != "c" {
		t.Fatalf("unexpected tail: %+v", entries)
	}
}

func TestEntryFailed(t *testing.T) {
	cases := []struct {
		entry Entry
		want  bool
	}{
		{Entry{Statuses: []int{0, 0}}, false},
		{Entry{Statuses: []int{0, 127}}, true},
		{Entry{Error: "spawn failed"}, true},
	}
	for _, c := range cases {
		if got := c.entry.Failed(); got != c.want {
			t.Errorf("%+v: Failed() = %v, want %v", c.entry, got, c.want)
		}
	}
}
