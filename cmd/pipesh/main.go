// Copyright 2026 Marcelo Cantos
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"os"

	"github.com/spf13/afero"

	"github.com/marcelocantos/pipesh/internal/cli"
)

var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	app := &cli.App{
		Fs:      afero.NewOsFs(),
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Version: version,
	}
	return cli.Execute(context.Background(), app, os.Args[1:])
}
