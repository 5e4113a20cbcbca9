// Copyright 2026 Marcelo Cantos
// SPDX-License-Identifier: Apache-2.0

package history

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/afero"
)

const genesisInput = "pipesh-genesis"

// Logger is an append-only, hash-chained execution history writer.
type Logger struct {
	mu       sync.Mutex
	fs       afero.Fs
	path     string
	seq      uint64
	prevHash string
}

// NewLogger opens or creates a history file at the given path.
// It reads the last entry to resume the hash chain.
func NewLogger(fs afero.Fs, path string) (*Logger, error) {
	if err := fs.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}

	l := &Logger{
		fs:       fs,
		path:     path,
		prevHash: genesisHash(),
	}

	// Read existing history to find last entry.
	if data, err := afero.ReadFile(fs, path); err == nil && len(data) > 0 {
		lines := splitLines(data)
		if len(lines) > 0 {
			var last Entry
			if err := json.Unmarshal(lines[len(lines)-1], &last); err == nil {
				l.seq = last.Seq
				l.prevHash = last.Hash
			}
		}
	}

	return l, nil
}

// Log appends an entry for one executed line.
func (l *Logger) Log(line string, programs []string, statuses []int, errMsg string, duration time.Duration, cwd string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry := Entry{
		Seq:      l.seq + 1,
		Time:     time.Now().UTC(),
		PrevHash: l.prevHash,
		Line:     line,
		Programs: programs,
		Statuses: statuses,
		Error:    errMsg,
		Duration: float64(duration.Microseconds()) / 1000.0,
		Cwd:      cwd,
	}
	entry.Hash = computeHash(entry)

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal history entry: %w", err)
	}
	data = append(data, '\n')

	f, err := l.fs.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("write history entry: %w", err)
	}

	// Advance the chain only once the entry is on disk.
	l.seq = entry.Seq
	l.prevHash = entry.Hash
	return nil
}

func genesisHash() string {
	h := sha256.Sum256([]byte(genesisInput))
	return fmt.Sprintf("%x", h)
}

func computeHash(e Entry) string {
	e.Hash = ""
	data, _ := json.Marshal(e)
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h)
}

func splitLines(data []byte) [][]byte {
	var lines [][]byte
	start := 0
	for i, b := range data {
		if b == '\n' {
			if i > start {
				lines = append(lines, data[start:i])
			}
			start = i + 1
		}
	}
	if start < len(data) {
		lines = append(lines, data[start:])
	}
	return lines
}
