// Copyright 2026 The Seedstream Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides optional defaults loading for seedstream.
//
// Defaults are loaded from a single YAML file specified by:
//   - SEEDSTREAM_CONFIG environment variable, or
//   - --config flag passed to the command
//
// There are no fallbacks or automatic discovery; if neither is set,
// built-in defaults apply. Command-line flags always override file
// values. This keeps every run's configuration deterministic and
// auditable.
package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// EnvVar is the environment variable naming the defaults file.
const EnvVar = "SEEDSTREAM_CONFIG"

// Config holds default values for the flags users most often repeat.
// All fields are optional; the zero value means "use the built-in
// default".
type Config struct {
	// ChunkSize is the default chunk payload size as a human-readable
	// size string ("32KiB", "1MB").
	ChunkSize string `yaml:"chunk_size"`

	// Jobs is the default worker count. Zero means "number of CPUs".
	Jobs int `yaml:"jobs"`

	// Progress enables or disables the progress bar by default. Nil
	// means "show when stderr is a terminal".
	Progress *bool `yaml:"progress"`
}

// Load reads the defaults file. The explicit path (from --config)
// wins over SEEDSTREAM_CONFIG. When neither is set, returns a zero
// Config and no error. A path that is set but unreadable or invalid
// is always an error: a requested config that doesn't apply must
// never be silently ignored.
func Load(explicitPath string) (Config, error) {
	path := explicitPath
	if path == "" {
		path = os.Getenv(EnvVar)
	}
	if path == "" {
		return Config{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if cfg.Jobs < 0 {
		return Config{}, fmt.Errorf("config file %s: jobs must not be negative (got %d)", path, cfg.Jobs)
	}
	return cfg, nil
}
