// Copyright 2026 The Seedstream Authors
// SPDX-License-Identifier: Apache-2.0

// Package stream implements the deterministic parallel stream engine:
// seed-to-bytes expansion, chunk framing with per-chunk integrity
// checksums, and the scheduling discipline that makes the output
// byte-identical for any worker count.
//
// # Stream format
//
// A stream is a self-describing header followed by framed chunks:
//
//	header ‖ chunk₀ ‖ chunk₁ ‖ … ‖ chunkₙ₋₁
//
// The header (see [Header]) carries the seed, the chunk payload size,
// and the total logical size, everything needed to regenerate the
// stream. Each chunk is its payload immediately followed by a 4-byte
// little-endian CRC32C of the payload. All chunks carry the full
// configured payload size except possibly the last, which carries the
// remainder.
//
// # Determinism
//
// Chunk payloads are derived independently: the global seed and the
// chunk index are mixed through a BLAKE3 key derivation, and the
// resulting per-chunk state is expanded with the BLAKE3 XOF. Any
// worker can therefore compute chunk i without computing chunks
// 0..i-1, which is what makes the output independent of worker count
// and completion order. This per-chunk derivation is the one
// non-negotiable invariant of the engine.
//
// # Entry points
//
// [Generate] writes a stream to a sink. [Validate] reads a stream
// from a source, reconstructs the expected bytes from the embedded
// header, and compares. Both run the same fan-out/fan-in pipeline:
// a partitioner feeds chunk descriptors to a fixed pool of workers,
// and an ordered emitter reassembles completed chunks in strict
// index order before touching the sink or source.
package stream
