// Copyright 2026 The Seedstream Authors
// SPDX-License-Identifier: Apache-2.0

package stream

import (
	"crypto/rand"
	"fmt"
	"runtime"
)

// DefaultChunkPayloadSize is the chunk payload size used when the
// caller does not specify one. 32 KiB keeps per-chunk CRC overhead
// around 0.01% while giving the scheduler enough chunks to spread
// across workers even for small streams.
const DefaultChunkPayloadSize = 32 * 1024

// RandomSeedLength is the length of seeds generated by [RandomSeed].
const RandomSeedLength = 16

// Job is the immutable configuration of one generate run. The seed,
// total size, and chunk payload size fully determine the output
// bytes; the worker count affects only wall-clock time.
type Job struct {
	// Seed is the sole source of entropy, an opaque byte sequence.
	// Identical seed (with identical sizes) means identical stream,
	// forever. Must be 1..65535 bytes; the header stores its length
	// as a uint16.
	Seed []byte

	// TotalSize is the total logical payload size in bytes, the sum
	// of all chunk payload lengths. The on-stream size is larger:
	// header plus one 4-byte checksum per chunk.
	TotalSize uint64

	// ChunkPayloadSize is the payload bytes per chunk, excluding the
	// checksum. Every chunk carries exactly this much payload except
	// possibly the last.
	ChunkPayloadSize uint64

	// Workers is the parallel worker count. Zero means "use the
	// number of CPUs". One degenerates to fully sequential
	// processing; output is byte-identical either way.
	Workers int
}

// validate checks the stream-determining parameters. Returns a
// ConfigError describing the first problem found.
func (j Job) validate() error {
	if len(j.Seed) == 0 {
		return &ConfigError{Reason: "seed is empty"}
	}
	if len(j.Seed) > maxSeedLength {
		return &ConfigError{Reason: fmt.Sprintf("seed is %d bytes, maximum is %d", len(j.Seed), maxSeedLength)}
	}
	if j.TotalSize == 0 {
		return &ConfigError{Reason: "total size is zero"}
	}
	if j.TotalSize > maxTotalSize {
		return &ConfigError{Reason: fmt.Sprintf("total size %d exceeds the maximum %d", j.TotalSize, uint64(maxTotalSize))}
	}
	if j.ChunkPayloadSize == 0 {
		return &ConfigError{Reason: "chunk payload size is zero"}
	}
	if j.ChunkPayloadSize > maxChunkPayloadSize {
		return &ConfigError{Reason: fmt.Sprintf("chunk payload size %d exceeds the maximum %d", j.ChunkPayloadSize, uint64(maxChunkPayloadSize))}
	}
	return nil
}

// resolveWorkers maps the "zero means CPU count" convention to a
// concrete pool size.
func resolveWorkers(workers int) int {
	if workers < 1 {
		return runtime.NumCPU()
	}
	return workers
}

// RandomSeed returns a fresh seed from the operating system's
// entropy source. Callers that generate a seed on the user's behalf
// must echo it back; without the seed the stream can never be
// validated.
func RandomSeed() ([]byte, error) {
	seed := make([]byte, RandomSeedLength)
	if _, err := rand.Read(seed); err != nil {
		return nil, fmt.Errorf("generating random seed: %w", err)
	}
	return seed, nil
}

// FitTotalSize returns the largest total logical size whose on-stream
// representation (header plus framed chunks) fits in capacity bytes.
// Used when generating onto a fixed-size target such as a block
// device. Returns a ConfigError when even a single payload byte does
// not fit.
func FitTotalSize(capacity uint64, seedLength int, chunkPayloadSize uint64) (uint64, error) {
	if chunkPayloadSize == 0 {
		return 0, &ConfigError{Reason: "chunk payload size is zero"}
	}
	headerSize := uint64(HeaderSize(seedLength))
	if capacity <= headerSize {
		return 0, &ConfigError{Reason: fmt.Sprintf("target capacity %d cannot hold the %d-byte stream header", capacity, headerSize)}
	}
	usable := capacity - headerSize

	frameSize := chunkPayloadSize + ChecksumSize
	fullChunks := usable / frameSize
	remainder := usable % frameSize

	total := fullChunks * chunkPayloadSize
	if remainder > ChecksumSize {
		// Room for a framed tail chunk.
		total += remainder - ChecksumSize
	}
	if total == 0 {
		return 0, &ConfigError{Reason: fmt.Sprintf("target capacity %d is too small for any chunk", capacity)}
	}
	return total, nil
}
