// Copyright 2026 Marcelo Cantos
// SPDX-License-Identifier: Apache-2.0

package history

import "time"

// Entry represents one executed line.
type Entry struct {
	Seq      uint64    `json:"seq"`
	Time     time.Time `json:"ts"`
	PrevHash string    `json:"prev_hash"`
	Line     string    `json:"line"`            // the line as typed, trimmed
	Programs []string  `json:"programs"`        // argv[0] of each stage
	Statuses []int     `json:"statuses"`        // exit status of each stage
	Error    string    `json:"error,omitempty"` // line-level failure, if any
	Duration float64   `json:"duration_ms"`     // execution time in milliseconds
	Cwd      string    `json:"cwd"`             // working directory
	Hash     string    `json:"hash"`            // SHA-256 of this entry (with hash field empty)
}

// Failed reports whether the line failed as a whole or any stage exited
// non-zero.
func (e *Entry) Failed() bool {
	if e.Error != "" {
		return true
	}
	for _, s := range e.Statuses {
		if s != 0 {
			return true
		}
	}
	return false
}
