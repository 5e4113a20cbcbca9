// Copyright 2026 Marcelo Cantos
// SPDX-License-Identifier: Apache-2.0

package history

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/afero"
)

// ChainError describes the first place a history file's hash chain breaks.
type ChainError struct {
	Line int
	Msg  string
}

func (e *ChainError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

// Verify reads the history and checks the hash chain integrity.
// Returns nil if the chain is valid, a *ChainError at the first violation,
// or the read error.
func Verify(fs afero.Fs, path string) error {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return fmt.Errorf("read history: %w", err)
	}

	expectedPrev := genesisHash()
	var prevSeq uint64

	for i, line := range splitLines(data) {
		var entry Entry
		if err := json.Unmarshal(line, &entry); err != nil {
			return &ChainError{Line: i + 1, Msg: fmt.Sprintf("invalid JSON: %v", err)}
		}
		if entry.Seq != prevSeq+1 {
			return &ChainError{Line: i + 1, Msg: fmt.Sprintf("sequence gap: expected %d, got %d", prevSeq+1, entry.Seq)}
		}
		if entry.PrevHash != expectedPrev {
			return &ChainError{Line: i + 1, Msg: fmt.Sprintf("prev_hash mismatch: expected %s, got %s", short(expectedPrev), short(entry.PrevHash))}
		}
		if computed := computeHash(entry); entry.Hash != computed {
			return &ChainError{Line: i + 1, Msg: fmt.Sprintf("hash mismatch: expected %s, got %s", short(computed), short(entry.Hash))}
		}
		expectedPrev = entry.Hash
		prevSeq = entry.Seq
	}
	return nil
}

// Tail returns the last n entries from the history.
func Tail(fs afero.Fs, path string, n int) ([]Entry, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}

	lines := splitLines(data)
	if n < 0 || n > len(lines) {
		n = len(lines)
	}

	entries := make([]Entry, 0, n)
	for _, line := range lines[len(lines)-n:] {
		var entry Entry
		if err := json.Unmarshal(line, &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func short(hash string) string {
	if len(hash) > 16 {
		return hash[:16] + "..."
	}
	return hash
}
