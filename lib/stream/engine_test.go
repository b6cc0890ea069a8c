// Copyright 2026 The Seedstream Authors
// SPDX-License-Identifier: Apache-2.0

package stream

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"testing"
)

func mustGenerate(t *testing.T, job Job) []byte {
	t.Helper()
	var sink bytes.Buffer
	written, err := Generate(context.Background(), job, &sink, nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if written != int64(sink.Len()) {
		t.Fatalf("Generate reported %d bytes, sink holds %d", written, sink.Len())
	}
	return sink.Bytes()
}

// A 1 MiB stream in 64 KiB chunks from a fixed seed: one worker and
// four workers must produce byte-identical output, 16 chunks each.
func TestGenerateDeterministicAcrossWorkerCounts(t *testing.T) {
	seed, err := hex.DecodeString("1a234e5678")
	if err != nil {
		t.Fatalf("decoding seed: %v", err)
	}
	base := Job{Seed: seed, TotalSize: 1 << 20, ChunkPayloadSize: 65536}

	sequential := base
	sequential.Workers = 1
	parallel := base
	parallel.Workers = 4

	first := mustGenerate(t, sequential)
	second := mustGenerate(t, parallel)
	if !bytes.Equal(first, second) {
		t.Fatal("worker counts 1 and 4 produced different streams")
	}

	plan, _ := NewPlan(base.TotalSize, base.ChunkPayloadSize)
	if got := plan.NumChunks(); got != 16 {
		t.Errorf("NumChunks() = %d, want 16", got)
	}
	wantSize := HeaderSize(len(seed)) + int(plan.OnStreamSize())
	if len(first) != wantSize {
		t.Errorf("stream size = %d, want %d", len(first), wantSize)
	}
}

func TestGenerateValidateRoundTrip(t *testing.T) {
	for _, test := range []struct {
		name string
		job  Job
	}{
		{"even division", Job{Seed: []byte("round-trip"), TotalSize: 4096, ChunkPayloadSize: 512, Workers: 3}},
		{"tail chunk", Job{Seed: []byte("tail"), TotalSize: 100, ChunkPayloadSize: 64, Workers: 2}},
		{"single chunk", Job{Seed: []byte("one"), TotalSize: 33, ChunkPayloadSize: 512}},
		{"one byte", Job{Seed: []byte{0xFF}, TotalSize: 1, ChunkPayloadSize: 64, Workers: 8}},
	} {
		t.Run(test.name, func(t *testing.T) {
			encoded := mustGenerate(t, test.job)

			validated, err := Validate(context.Background(), bytes.NewReader(encoded), ValidateOptions{Workers: 4})
			if err != nil {
				t.Fatalf("Validate: %v", err)
			}
			if validated != int64(len(encoded)) {
				t.Errorf("validated %d bytes, want %d", validated, len(encoded))
			}
		})
	}
}

func TestGenerateStreamLayout(t *testing.T) {
	job := Job{Seed: []byte("layout"), TotalSize: 100, ChunkPayloadSize: 64, Workers: 2}
	encoded := mustGenerate(t, job)

	header, err := DecodeHeaderFrom(bytes.NewReader(encoded))
	if err != nil {
		t.Fatalf("DecodeHeaderFrom: %v", err)
	}
	if !bytes.Equal(header.Seed, job.Seed) {
		t.Errorf("header seed = %x, want %x", header.Seed, job.Seed)
	}

	// header ‖ chunk₀(64+4) ‖ chunk₁(36+4), each chunk independently
	// recomputable.
	body := encoded[header.EncodedSize():]
	if len(body) != 108 {
		t.Fatalf("chunk area = %d bytes, want 108", len(body))
	}
	chunk0 := body[:68]
	chunk1 := body[68:]
	if !bytes.Equal(chunk0[:64], Expand(job.Seed, 0, 64)) {
		t.Error("chunk 0 payload does not match independent expansion")
	}
	if !bytes.Equal(chunk1[:36], Expand(job.Seed, 1, 36)) {
		t.Error("chunk 1 payload does not match independent expansion")
	}
	if !CheckFrame(chunk0) || !CheckFrame(chunk1) {
		t.Error("chunk frames fail their own checksums")
	}
}

func TestGenerateInvalidJob(t *testing.T) {
	var sink bytes.Buffer
	_, err := Generate(context.Background(), Job{Seed: []byte("x"), TotalSize: 0, ChunkPayloadSize: 64}, &sink, nil)
	var configErr *ConfigError
	if !errors.As(err, &configErr) {
		t.Fatalf("Generate = %v, want ConfigError", err)
	}
	if sink.Len() != 0 {
		t.Errorf("Generate wrote %d bytes before rejecting the job", sink.Len())
	}
}

// Flipping a single payload bit in chunk 3 must surface as a
// CorruptionError naming chunk 3 and the flipped byte's offset.
func TestValidateDetectsCorruption(t *testing.T) {
	job := Job{Seed: []byte("corrupt-me"), TotalSize: 8 * 64, ChunkPayloadSize: 64, Workers: 4}
	encoded := mustGenerate(t, job)

	headerSize := HeaderSize(len(job.Seed))
	frameSize := 64 + ChecksumSize
	flipOffset := headerSize + 3*frameSize + 17
	corrupted := append([]byte(nil), encoded...)
	corrupted[flipOffset] ^= 0x04

	_, err := Validate(context.Background(), bytes.NewReader(corrupted), ValidateOptions{Workers: 4})
	var corruptionErr *CorruptionError
	if !errors.As(err, &corruptionErr) {
		t.Fatalf("Validate = %v, want CorruptionError", err)
	}
	if corruptionErr.ChunkIndex != 3 {
		t.Errorf("ChunkIndex = %d, want 3", corruptionErr.ChunkIndex)
	}
	if corruptionErr.Offset != int64(flipOffset) {
		t.Errorf("Offset = %d, want %d", corruptionErr.Offset, flipOffset)
	}
	if corruptionErr.Truncated {
		t.Error("Truncated = true for an in-place bit flip")
	}
}

func TestValidateDetectsChecksumCorruption(t *testing.T) {
	job := Job{Seed: []byte("trailer"), TotalSize: 4 * 64, ChunkPayloadSize: 64}
	encoded := mustGenerate(t, job)

	// Flip a bit inside chunk 2's checksum trailer.
	headerSize := HeaderSize(len(job.Seed))
	frameSize := 64 + ChecksumSize
	flipOffset := headerSize + 2*frameSize + 64 + 1
	corrupted := append([]byte(nil), encoded...)
	corrupted[flipOffset] ^= 0x80

	_, err := Validate(context.Background(), bytes.NewReader(corrupted), ValidateOptions{})
	var corruptionErr *CorruptionError
	if !errors.As(err, &corruptionErr) {
		t.Fatalf("Validate = %v, want CorruptionError", err)
	}
	if corruptionErr.ChunkIndex != 2 {
		t.Errorf("ChunkIndex = %d, want 2", corruptionErr.ChunkIndex)
	}
}

func TestValidateDetectsTruncation(t *testing.T) {
	job := Job{Seed: []byte("short"), TotalSize: 4 * 64, ChunkPayloadSize: 64}
	encoded := mustGenerate(t, job)

	// Cut the stream in the middle of chunk 2.
	headerSize := HeaderSize(len(job.Seed))
	frameSize := 64 + ChecksumSize
	cut := headerSize + 2*frameSize + 10

	_, err := Validate(context.Background(), bytes.NewReader(encoded[:cut]), ValidateOptions{})
	var corruptionErr *CorruptionError
	if !errors.As(err, &corruptionErr) {
		t.Fatalf("Validate = %v, want CorruptionError", err)
	}
	if corruptionErr.ChunkIndex != 2 {
		t.Errorf("ChunkIndex = %d, want 2", corruptionErr.ChunkIndex)
	}
	if !corruptionErr.Truncated {
		t.Error("Truncated = false for a cut-off stream")
	}
}

func TestValidateTruncatedHeader(t *testing.T) {
	job := Job{Seed: []byte("header"), TotalSize: 64, ChunkPayloadSize: 64}
	encoded := mustGenerate(t, job)

	headerSize := HeaderSize(len(job.Seed))
	_, err := Validate(context.Background(), bytes.NewReader(encoded[:headerSize/2]), ValidateOptions{})
	var formatErr *FormatError
	if !errors.As(err, &formatErr) {
		t.Fatalf("Validate = %v, want FormatError", err)
	}
}

// Size fields damaged in flight (magic and version intact) must fail
// as a format error before any buffer is sized from them; a value
// like 2^63 once drove make([]byte, ...) into a panic.
func TestValidateDamagedSizeFields(t *testing.T) {
	job := Job{Seed: []byte("size"), TotalSize: 100, ChunkPayloadSize: 64}
	encoded := mustGenerate(t, job)
	chunkSizeField := headerPrefixSize + len(job.Seed)
	totalSizeField := chunkSizeField + 8

	for _, test := range []struct {
		name   string
		offset int
		value  uint64
	}{
		{"chunk size high bit", chunkSizeField, 1 << 63},
		{"chunk size just above cap", chunkSizeField, maxChunkPayloadSize + 1},
		{"total size all ones", totalSizeField, ^uint64(0)},
	} {
		t.Run(test.name, func(t *testing.T) {
			corrupted := append([]byte(nil), encoded...)
			binary.LittleEndian.PutUint64(corrupted[test.offset:], test.value)

			_, err := Validate(context.Background(), bytes.NewReader(corrupted), ValidateOptions{})
			var formatErr *FormatError
			if !errors.As(err, &formatErr) {
				t.Fatalf("Validate = %v, want FormatError", err)
			}
		})
	}
}

// Both size fields at the uint64 maximum once wrapped the chunk count
// to zero, so a header with no body at all validated as success.
func TestValidateMaxSizeFieldsRejected(t *testing.T) {
	header := Header{Seed: []byte("max"), ChunkPayloadSize: ^uint64(0), TotalSize: ^uint64(0)}

	validated, err := Validate(context.Background(), bytes.NewReader(header.Encode()), ValidateOptions{})
	var formatErr *FormatError
	if !errors.As(err, &formatErr) {
		t.Fatalf("Validate = %v, want FormatError", err)
	}
	if validated != 0 {
		t.Errorf("validated = %d bytes of an unusable stream", validated)
	}
}

func TestValidateForeignStream(t *testing.T) {
	_, err := Validate(context.Background(), bytes.NewReader(bytes.Repeat([]byte("junk"), 32)), ValidateOptions{})
	var formatErr *FormatError
	if !errors.As(err, &formatErr) {
		t.Fatalf("Validate = %v, want FormatError", err)
	}
}

func TestValidateOnHeader(t *testing.T) {
	job := Job{Seed: []byte("observe"), TotalSize: 100, ChunkPayloadSize: 64}
	encoded := mustGenerate(t, job)

	var seen *Header
	_, err := Validate(context.Background(), bytes.NewReader(encoded), ValidateOptions{
		OnHeader: func(h Header) { seen = &h },
	})
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if seen == nil {
		t.Fatal("OnHeader was never called")
	}
	if seen.TotalSize != job.TotalSize || seen.ChunkPayloadSize != job.ChunkPayloadSize {
		t.Errorf("OnHeader saw {total %d, chunk %d}, want {%d, %d}",
			seen.TotalSize, seen.ChunkPayloadSize, job.TotalSize, job.ChunkPayloadSize)
	}
}

// failAfterWriter fails every write after the first n bytes.
type failAfterWriter struct {
	remaining int
}

func (w *failAfterWriter) Write(p []byte) (int, error) {
	if len(p) > w.remaining {
		n := w.remaining
		w.remaining = 0
		return n, fmt.Errorf("disk full")
	}
	w.remaining -= len(p)
	return len(p), nil
}

func TestGenerateSinkFailureAborts(t *testing.T) {
	job := Job{Seed: []byte("enospc"), TotalSize: 64 * 64, ChunkPayloadSize: 64, Workers: 4}

	// Room for the header and a few chunks, then failure.
	sink := &failAfterWriter{remaining: HeaderSize(len(job.Seed)) + 3*(64+ChecksumSize)}
	written, err := Generate(context.Background(), job, sink, nil)
	if err == nil {
		t.Fatal("Generate succeeded against a failing sink")
	}
	var corruptionErr *CorruptionError
	var formatErr *FormatError
	if errors.As(err, &corruptionErr) || errors.As(err, &formatErr) {
		t.Fatalf("Generate = %v, want a plain wrapped I/O error", err)
	}
	wantWritten := int64(HeaderSize(len(job.Seed)) + 3*(64+ChecksumSize))
	if written != wantWritten {
		t.Errorf("written = %d, want %d", written, wantWritten)
	}
}

func TestGenerateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var sink bytes.Buffer
	job := Job{Seed: []byte("cancel"), TotalSize: 1 << 20, ChunkPayloadSize: 1024, Workers: 2}
	_, err := Generate(ctx, job, &sink, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Generate = %v, want context.Canceled", err)
	}
}

func TestGenerateProgressMonotonic(t *testing.T) {
	job := Job{Seed: []byte("progress"), TotalSize: 100, ChunkPayloadSize: 64, Workers: 2}

	var reports []int64
	var sink bytes.Buffer
	written, err := Generate(context.Background(), job, &sink, func(n int64) {
		reports = append(reports, n)
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(reports) == 0 {
		t.Fatal("no progress reports")
	}
	for i := 1; i < len(reports); i++ {
		if reports[i] <= reports[i-1] {
			t.Fatalf("progress not strictly increasing: %v", reports)
		}
	}
	if final := reports[len(reports)-1]; final != written {
		t.Errorf("final progress = %d, want %d", final, written)
	}
}
