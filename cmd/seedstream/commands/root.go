// Copyright 2026 The Seedstream Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands defines the seedstream command tree.
package commands

import (
	"fmt"
	"os"

	"github.com/seedstream-io/seedstream/cmd/seedstream/cli"
	"github.com/seedstream-io/seedstream/lib/version"
)

// NewRootCommand builds the top-level seedstream command.
func NewRootCommand() *cli.Command {
	root := &cli.Command{
		Name:    "seedstream",
		Summary: "Deterministic pseudo-random stream generator and validator",
		Description: `seedstream expands a small seed into an arbitrarily large stream of
pseudo-random data, framed into checksummed chunks behind a
self-describing header. A stream written today can be validated later,
or on another machine, from nothing but the stream itself. That makes
it a portable integrity probe for disks, filesystems, and transports.`,
		Subcommands: []*cli.Command{
			newGenerateCommand(),
			newValidateCommand(),
			newVersionCommand(),
		},
	}
	root.Run = func(args []string) error {
		for _, arg := range args {
			if arg == "--version" {
				fmt.Println(version.Info())
				return nil
			}
		}
		root.PrintHelp(os.Stderr)
		if len(args) == 0 {
			return &cli.UsageError{Message: "subcommand required"}
		}
		return &cli.UsageError{Message: fmt.Sprintf("unknown flag %q", args[0])}
	}
	return root
}

func newVersionCommand() *cli.Command {
	return &cli.Command{
		Name:    "version",
		Summary: "Print version information",
		Usage:   "seedstream version",
		Run: func(args []string) error {
			fmt.Println(version.Full())
			return nil
		},
	}
}
