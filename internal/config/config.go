// Copyright 2026 Marcelo Cantos
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/marcelocantos/pipesh/internal/pipeline"
)

//go:embed default.yaml
var defaultConfigData []byte

// Tokenizer names.
const (
	TokenizerFields = "fields"
	TokenizerShlex  = "shlex"
)

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config holds the global pipesh configuration.
type Config struct {
	Prompt    string        `yaml:"prompt"`
	Tokenizer string        `yaml:"tokenizer" validate:"oneof=fields shlex"`
	Color     string        `yaml:"color" validate:"oneof=auto always never"`
	Limits    LimitsConfig  `yaml:"limits"`
	Policy    PolicyConfig  `yaml:"policy"`
	History   HistoryConfig `yaml:"history"`
}

// LimitsConfig bounds what a single line may ask for.
type LimitsConfig struct {
	MaxArgs      int `yaml:"max_args" validate:"gte=1"`
	MaxSegments  int `yaml:"max_segments" validate:"gte=1"`
	MaxLineBytes int `yaml:"max_line_bytes" validate:"gte=2"`
}

// PolicyConfig controls how launch failures are treated.
type PolicyConfig struct {
	// RecoverLaunchFailures abandons only the current line when a pipe or
	// process cannot be created, or a command has too many arguments,
	// instead of ending the interpreter.
	RecoverLaunchFailures bool `yaml:"recover_launch_failures"`
}

// HistoryConfig controls the execution history.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path" validate:"required_if=Enabled true"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	cfg := &Config{}
	if err := decode(defaultConfigData, cfg); err != nil {
		panic(err)
	}
	cfg.History.Path = expandHome(cfg.History.Path)
	return cfg
}

// Load reads the config from the standard location (~/.config/pipesh/config.yaml).
// If the file doesn't exist, returns the default config.
func Load(fs afero.Fs) (*Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(fs, path)
}

// LoadFrom reads the config from the given path. Keys the file omits keep
// their default values; unknown keys are an error.
func LoadFrom(fs afero.Fs, path string) (*Config, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := decode(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.History.Path = expandHome(cfg.History.Path)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate the configuration for basic semantic errors. Fields are named
// by their yaml keys.
func (c *Config) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
	})
	return validate.Struct(c)
}

// PipelineOptions returns the parser options the configuration selects.
func (c *Config) PipelineOptions() pipeline.Options {
	opts := pipeline.Options{
		MaxArgs:      c.Limits.MaxArgs,
		MaxSegments:  c.Limits.MaxSegments,
		MaxLineBytes: c.Limits.MaxLineBytes,
	}
	if c.Tokenizer == TokenizerShlex {
		opts.Split = pipeline.ShellWords
	}
	return opts
}

// ConfigPath returns the standard config file path.
func ConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "pipesh", "config.yaml")
}

func decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// expandHome expands a leading ~ to the user's home directory.
func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
