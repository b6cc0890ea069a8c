// Copyright 2026 The Seedstream Authors
// SPDX-License-Identifier: Apache-2.0

// Command seedstream generates and validates deterministic
// pseudo-random streams for storage and transport integrity testing.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/seedstream-io/seedstream/cmd/seedstream/cli"
	"github.com/seedstream-io/seedstream/cmd/seedstream/commands"
	"github.com/seedstream-io/seedstream/lib/stream"
)

// Exit codes. Scripts drive retry and alerting off these, so each
// failure class keeps a stable number.
const (
	exitOK         = 0
	exitCorruption = 1
	exitFormat     = 2
	exitUsage      = 3
	exitIO         = 4
)

func main() {
	root := commands.NewRootCommand()
	err := root.Execute(os.Args[1:])
	if err == nil {
		os.Exit(exitOK)
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(classify(err))
}

// classify maps an error to its exit code. Anything outside the known
// taxonomy is treated as an I/O failure, the catch-all for the
// environment misbehaving rather than the stream or the invocation.
func classify(err error) int {
	var corruption *stream.CorruptionError
	if errors.As(err, &corruption) {
		return exitCorruption
	}
	var format *stream.FormatError
	if errors.As(err, &format) {
		return exitFormat
	}
	var config *stream.ConfigError
	if errors.As(err, &config) {
		return exitUsage
	}
	var usage *cli.UsageError
	if errors.As(err, &usage) {
		return exitUsage
	}
	return exitIO
}
