// Copyright 2026 Marcelo Cantos
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"io"
	"os"

	"github.com/fatih/color"

	"github.com/marcelocantos/pipesh/internal/config"
)

// diagnostics writes one-line "pipesh: ..." messages to stderr.
type diagnostics struct {
	w   io.Writer
	red *color.Color
}

func newDiagnostics(w io.Writer, colored bool) *diagnostics {
	red := color.New(color.FgRed)
	if colored {
		red.EnableColor()
	} else {
		red.DisableColor()
	}
	return &diagnostics{w: w, red: red}
}

func (d *diagnostics) report(err error) {
	d.red.Fprintf(d.w, "pipesh: %v\n", err)
}

// shouldColor resolves a color mode against the stream it applies to.
func shouldColor(mode string, f *os.File) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	default:
		return f != nil && isTerminal(f)
	}
}
