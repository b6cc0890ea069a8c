// Copyright 2026 The Seedstream Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"

	"github.com/seedstream-io/seedstream/cmd/seedstream/cli"
	"github.com/seedstream-io/seedstream/lib/config"
	"github.com/seedstream-io/seedstream/lib/devsize"
	"github.com/seedstream-io/seedstream/lib/stream"
)

type generateOptions struct {
	size       string
	seed       string
	jobs       int
	chunkSize  string
	noProgress bool
	verbose    bool
	configPath string
}

func newGenerateCommand() *cli.Command {
	options := &generateOptions{}

	return &cli.Command{
		Name:    "generate",
		Aliases: []string{"write"},
		Summary: "Generate a checksummed pseudo-random stream",
		Description: `Expand a seed into a deterministic stream of checksummed chunks and
write it to PATH, or to stdout when PATH is absent.

The stream begins with a self-describing header, so a later validate
run needs no parameters beyond the stream itself. When PATH names an
existing file or block device and --size is absent, the stream is
sized to fill the target exactly.`,
		Usage: "seedstream generate [flags] [PATH]",
		Examples: []cli.Example{
			{
				Description: "Fill a scratch file with 1 GiB of verifiable data",
				Command:     "seedstream generate --size 1GiB /mnt/scratch/fill.bin",
			},
			{
				Description: "Fill a block device end to end with a fixed seed",
				Command:     "seedstream generate --seed deadbeef /dev/sdb",
			},
			{
				Description: "Stream to another host for remote validation",
				Command:     "seedstream generate --size 64MiB | ssh target seedstream validate",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("generate", pflag.ContinueOnError)
			flagSet.StringVar(&options.size, "size", "",
				"total payload size to generate (e.g. 1GiB); required unless PATH exists")
			flagSet.StringVar(&options.seed, "seed", "",
				"hex-encoded seed; a random seed is generated and echoed when absent")
			flagSet.IntVar(&options.jobs, "jobs", 0,
				"number of worker goroutines (0 = number of CPUs)")
			flagSet.StringVar(&options.chunkSize, "chunk-size", "",
				"chunk payload size (default 32KiB)")
			flagSet.BoolVar(&options.noProgress, "no-progress", false,
				"disable the progress display")
			flagSet.BoolVarP(&options.verbose, "verbose", "v", false,
				"enable debug logging")
			flagSet.StringVar(&options.configPath, "config", "",
				"path to a defaults file (overrides $"+config.EnvVar+")")
			return flagSet
		},
		Run: func(args []string) error {
			return runGenerate(options, args)
		},
	}
}

func runGenerate(options *generateOptions, args []string) error {
	if len(args) > 1 {
		return &cli.UsageError{Message: fmt.Sprintf("expected at most one PATH argument, got %d", len(args))}
	}

	logger := cli.NewLogger(options.verbose)

	defaults, err := config.Load(options.configPath)
	if err != nil {
		return &cli.UsageError{Message: fmt.Sprintf("loading config: %v", err)}
	}

	chunkSize, err := resolveChunkSize(options.chunkSize, defaults)
	if err != nil {
		return err
	}
	jobs := options.jobs
	if jobs == 0 {
		jobs = defaults.Jobs
	}

	seed, err := resolveSeed(options.seed)
	if err != nil {
		return err
	}
	if options.seed == "" {
		// Without the seed the stream cannot be regenerated, so a
		// generated one must be surfaced, not just used.
		logger.Info("generated random seed", "seed", hex.EncodeToString(seed))
	}

	var path string
	if len(args) == 1 {
		path = args[0]
	}

	totalSize, err := resolveTotalSize(options.size, path, seed, chunkSize)
	if err != nil {
		return err
	}
	logger.Debug("generation parameters",
		"total_size", totalSize,
		"chunk_size", chunkSize,
		"jobs", jobs,
		"target", targetName(path))

	sink, closeSink, err := openSink(path)
	if err != nil {
		return err
	}

	job := stream.Job{
		Seed:             seed,
		TotalSize:        totalSize,
		ChunkPayloadSize: chunkSize,
		Workers:          jobs,
	}

	var progress stream.ProgressFunc
	var bar *progressBar
	if progressEnabled(options.noProgress, defaults.Progress) {
		plan, planErr := stream.NewPlan(totalSize, chunkSize)
		if planErr != nil {
			return planErr
		}
		bar = newProgressBar(int64(stream.HeaderSize(len(seed))) + int64(plan.OnStreamSize()))
		progress = bar.Update
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	start := time.Now()
	written, err := stream.Generate(ctx, job, sink, progress)
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		closeSink()
		return err
	}
	if err := closeSink(); err != nil {
		return fmt.Errorf("closing %s: %w", targetName(path), err)
	}

	elapsed := time.Since(start)
	logger.Info("stream written",
		"target", targetName(path),
		"bytes", written,
		"payload_bytes", totalSize,
		"duration", elapsed.Round(time.Millisecond).String(),
		"throughput", throughput(written, elapsed))
	return nil
}

// resolveChunkSize applies flag > config file > built-in default and
// parses the human-readable size.
func resolveChunkSize(flagValue string, defaults config.Config) (uint64, error) {
	value := flagValue
	if value == "" {
		value = defaults.ChunkSize
	}
	if value == "" {
		return stream.DefaultChunkPayloadSize, nil
	}
	size, err := humanize.ParseBytes(value)
	if err != nil {
		return 0, &cli.UsageError{Message: fmt.Sprintf("invalid chunk size %q: %v", value, err)}
	}
	if size == 0 {
		return 0, &cli.UsageError{Message: "chunk size must be positive"}
	}
	return size, nil
}

// resolveSeed decodes a hex seed, or draws a random one when empty.
func resolveSeed(hexSeed string) ([]byte, error) {
	if hexSeed == "" {
		return stream.RandomSeed()
	}
	seed, err := hex.DecodeString(hexSeed)
	if err != nil {
		return nil, &cli.UsageError{Message: fmt.Sprintf("invalid seed %q: %v", hexSeed, err)}
	}
	if len(seed) == 0 {
		return nil, &cli.UsageError{Message: "seed must not be empty"}
	}
	return seed, nil
}

// resolveTotalSize determines the payload size: an explicit --size
// wins; otherwise an existing target's capacity is discovered and the
// largest stream that fits it is computed.
func resolveTotalSize(sizeFlag, path string, seed []byte, chunkSize uint64) (uint64, error) {
	if sizeFlag != "" {
		size, err := humanize.ParseBytes(sizeFlag)
		if err != nil {
			return 0, &cli.UsageError{Message: fmt.Sprintf("invalid size %q: %v", sizeFlag, err)}
		}
		return size, nil
	}
	if path == "" {
		return 0, &cli.UsageError{Message: "--size is required when writing to stdout"}
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return 0, &cli.UsageError{Message: fmt.Sprintf("--size is required: %s does not exist", path)}
		}
		return 0, fmt.Errorf("stat %s: %w", path, err)
	}
	capacity, err := devsize.Size(path)
	if err != nil {
		if errors.Is(err, devsize.ErrUnsupportedType) {
			return 0, &cli.UsageError{Message: err.Error()}
		}
		return 0, fmt.Errorf("discovering size of %s: %w", path, err)
	}
	return stream.FitTotalSize(capacity, len(seed), chunkSize)
}

// openSink opens the output target. Stdout is used when path is empty.
// Regular files (new or existing) are truncated so the file ends up
// exactly header plus stream; devices are written in place.
func openSink(path string) (io.Writer, func() error, error) {
	if path == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	flags := os.O_WRONLY | os.O_CREATE
	if info, err := os.Stat(path); err != nil || info.Mode().IsRegular() {
		flags |= os.O_TRUNC
	}
	file, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return file, file.Close, nil
}

func targetName(path string) string {
	if path == "" {
		return "stdout"
	}
	return path
}

func throughput(bytes int64, elapsed time.Duration) string {
	seconds := elapsed.Seconds()
	if seconds <= 0 {
		return "n/a"
	}
	return humanize.IBytes(uint64(float64(bytes)/seconds)) + "/s"
}
