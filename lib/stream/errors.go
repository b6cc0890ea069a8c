// Copyright 2026 The Seedstream Authors
// SPDX-License-Identifier: Apache-2.0

package stream

import "fmt"

// ConfigError reports invalid job parameters: a zero total size, a
// zero chunk payload size, an empty or oversized seed. It is detected
// before any chunk work starts and is never retried.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "invalid configuration: " + e.Reason
}

// FormatError reports a stream whose header is missing, truncated,
// or carries an unrecognized magic marker or version. Validation
// fails with a FormatError before any chunk comparison begins.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return "invalid stream format: " + e.Reason
}

// CorruptionError reports the first point where a validated stream
// diverges from the bytes regenerated from its header. Offset is the
// absolute byte offset in the stream (header included), ChunkIndex
// the chunk containing it. Regeneration is deterministic, so the
// engine never retries; rereading would produce the same result.
type CorruptionError struct {
	ChunkIndex uint64
	Offset     int64

	// Truncated is true when the source ended before the chunk's
	// framed bytes could be read, rather than differing in content.
	Truncated bool
}

func (e *CorruptionError) Error() string {
	if e.Truncated {
		return fmt.Sprintf("stream truncated in chunk %d at offset %d", e.ChunkIndex, e.Offset)
	}
	return fmt.Sprintf("corruption in chunk %d: stream differs from expected bytes at offset %d", e.ChunkIndex, e.Offset)
}
