// Copyright 2026 The Seedstream Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"errors"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func TestExecuteDispatchesSubcommand(t *testing.T) {
	ran := false
	root := &Command{
		Name: "seedstream",
		Subcommands: []*Command{
			{
				Name: "generate",
				Run: func(args []string) error {
					ran = true
					return nil
				},
			},
		},
	}

	if err := root.Execute([]string{"generate"}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !ran {
		t.Error("subcommand Run was not called")
	}
}

func TestExecuteDispatchesAlias(t *testing.T) {
	ran := false
	root := &Command{
		Name: "seedstream",
		Subcommands: []*Command{
			{
				Name:    "generate",
				Aliases: []string{"write"},
				Run: func(args []string) error {
					ran = true
					return nil
				},
			},
		},
	}

	if err := root.Execute([]string{"write"}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !ran {
		t.Error("alias did not dispatch to subcommand")
	}
}

func TestExecuteUnknownCommand(t *testing.T) {
	root := &Command{
		Name:        "seedstream",
		Subcommands: []*Command{{Name: "generate"}},
	}

	err := root.Execute([]string{"bogus"})
	var usageErr *UsageError
	if !errors.As(err, &usageErr) {
		t.Fatalf("Execute = %v, want *UsageError", err)
	}
	if !strings.Contains(usageErr.Message, "bogus") {
		t.Errorf("message %q does not name the unknown command", usageErr.Message)
	}
}

func TestExecutePassesRemainingArgs(t *testing.T) {
	var got []string
	cmd := &Command{
		Name: "generate",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("generate", pflag.ContinueOnError)
			flagSet.String("size", "", "")
			return flagSet
		},
		Run: func(args []string) error {
			got = args
			return nil
		},
	}

	if err := cmd.Execute([]string{"--size", "1MiB", "/dev/null"}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(got) != 1 || got[0] != "/dev/null" {
		t.Errorf("positional args = %v, want [/dev/null]", got)
	}
}

// --help anywhere in the args is a help request, not a usage error,
// and must short-circuit Run.
func TestExecuteHelpAfterFlags(t *testing.T) {
	cmd := &Command{
		Name: "generate",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("generate", pflag.ContinueOnError)
			flagSet.String("size", "", "")
			return flagSet
		},
		Run: func(args []string) error {
			return errors.New("Run executed on a help request")
		},
	}

	if err := cmd.Execute([]string{"--size", "1MiB", "--help"}); err != nil {
		t.Fatalf("Execute = %v, want nil", err)
	}
}

func TestExecuteBadFlag(t *testing.T) {
	cmd := &Command{
		Name: "generate",
		Flags: func() *pflag.FlagSet {
			return pflag.NewFlagSet("generate", pflag.ContinueOnError)
		},
		Run: func(args []string) error { return nil },
	}

	err := cmd.Execute([]string{"--nonsense"})
	var usageErr *UsageError
	if !errors.As(err, &usageErr) {
		t.Fatalf("Execute = %v, want *UsageError", err)
	}
}

func TestPrintHelpListsSubcommandsNotAliases(t *testing.T) {
	root := &Command{
		Name: "seedstream",
		Subcommands: []*Command{
			{Name: "generate", Aliases: []string{"write"}, Summary: "Generate a stream"},
			{Name: "validate", Aliases: []string{"read"}, Summary: "Validate a stream"},
		},
	}

	var out strings.Builder
	root.PrintHelp(&out)
	help := out.String()

	for _, want := range []string{"generate", "validate", "Generate a stream"} {
		if !strings.Contains(help, want) {
			t.Errorf("help output missing %q", want)
		}
	}
	if strings.Contains(help, "write") {
		t.Errorf("help output lists alias %q:\n%s", "write", help)
	}
}

func TestFullName(t *testing.T) {
	root := &Command{Name: "seedstream"}
	sub := &Command{Name: "generate", parent: root}
	if got := sub.fullName(); got != "seedstream generate" {
		t.Errorf("fullName = %q, want %q", got, "seedstream generate")
	}
}
