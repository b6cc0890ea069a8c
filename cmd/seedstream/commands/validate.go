// Copyright 2026 The Seedstream Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/seedstream-io/seedstream/cmd/seedstream/cli"
	"github.com/seedstream-io/seedstream/lib/config"
	"github.com/seedstream-io/seedstream/lib/stream"
)

type validateOptions struct {
	jobs       int
	noProgress bool
	verbose    bool
	configPath string
}

func newValidateCommand() *cli.Command {
	options := &validateOptions{}

	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"read"},
		Summary: "Validate a previously generated stream",
		Description: `Read a stream from PATH (or stdin when PATH is absent), decode its
embedded header, regenerate every chunk from the recorded seed, and
compare byte for byte. The first mismatch, checksum failure, or
truncation is reported with its chunk index and byte offset.`,
		Usage: "seedstream validate [flags] [PATH]",
		Examples: []cli.Example{
			{
				Description: "Validate a previously filled device",
				Command:     "seedstream validate /dev/sdb",
			},
			{
				Description: "Validate a stream arriving over a pipe",
				Command:     "ssh source seedstream generate --size 64MiB | seedstream validate",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("validate", pflag.ContinueOnError)
			flagSet.IntVar(&options.jobs, "jobs", 0,
				"number of worker goroutines (0 = number of CPUs)")
			flagSet.BoolVar(&options.noProgress, "no-progress", false,
				"disable the progress display")
			flagSet.BoolVarP(&options.verbose, "verbose", "v", false,
				"enable debug logging")
			flagSet.StringVar(&options.configPath, "config", "",
				"path to a defaults file (overrides $"+config.EnvVar+")")
			return flagSet
		},
		Run: func(args []string) error {
			return runValidate(options, args)
		},
	}
}

func runValidate(options *validateOptions, args []string) error {
	if len(args) > 1 {
		return &cli.UsageError{Message: fmt.Sprintf("expected at most one PATH argument, got %d", len(args))}
	}

	logger := cli.NewLogger(options.verbose)

	defaults, err := config.Load(options.configPath)
	if err != nil {
		return &cli.UsageError{Message: fmt.Sprintf("loading config: %v", err)}
	}
	jobs := options.jobs
	if jobs == 0 {
		jobs = defaults.Jobs
	}

	var source io.Reader = os.Stdin
	sourceName := "stdin"
	if len(args) == 1 {
		file, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening %s: %w", args[0], err)
		}
		defer file.Close()
		source = file
		sourceName = args[0]
	}

	engineOptions := stream.ValidateOptions{Workers: jobs}

	var bar *progressBar
	if progressEnabled(options.noProgress, defaults.Progress) {
		bar = newProgressBar(0)
		engineOptions.Progress = bar.Update
	}
	engineOptions.OnHeader = func(header stream.Header) {
		logger.Debug("stream header",
			"seed", hex.EncodeToString(header.Seed),
			"chunk_size", header.ChunkPayloadSize,
			"total_size", header.TotalSize)
		if bar != nil {
			if plan, err := stream.NewPlan(header.TotalSize, header.ChunkPayloadSize); err == nil {
				bar.SetTotal(int64(stream.HeaderSize(len(header.Seed))) + int64(plan.OnStreamSize()))
			}
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	start := time.Now()
	validated, err := stream.Validate(ctx, source, engineOptions)
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		return err
	}

	elapsed := time.Since(start)
	logger.Info("stream valid",
		"source", sourceName,
		"bytes", validated,
		"duration", elapsed.Round(time.Millisecond).String(),
		"throughput", throughput(validated, elapsed))
	return nil
}
