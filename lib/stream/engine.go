// Copyright 2026 The Seedstream Authors
// SPDX-License-Identifier: Apache-2.0

package stream

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
)

// completedChunk is a framed chunk tagged with its descriptor,
// deposited by a worker into the completion channel in whatever order
// the worker finishes.
type completedChunk struct {
	descriptor Descriptor
	frame      []byte
}

// Generate writes a complete stream (header followed by framed
// chunks in index order) to sink, and returns the number of bytes
// written. The output is fully determined by job's seed and sizes:
// any worker count produces byte-identical bytes.
//
// On a sink write failure the run aborts, sibling workers are
// cancelled, and the partially written output is left as-is (the
// caller owns cleanup). The returned byte count then reflects what
// was actually written.
func Generate(ctx context.Context, job Job, sink io.Writer, progress ProgressFunc) (int64, error) {
	if err := job.validate(); err != nil {
		return 0, err
	}
	plan, err := NewPlan(job.TotalSize, job.ChunkPayloadSize)
	if err != nil {
		return 0, err
	}

	header := Header{
		Seed:             job.Seed,
		ChunkPayloadSize: job.ChunkPayloadSize,
		TotalSize:        job.TotalSize,
	}
	var written int64
	if _, err := sink.Write(header.Encode()); err != nil {
		return written, fmt.Errorf("writing stream header: %w", err)
	}
	written += int64(header.EncodedSize())
	if progress != nil {
		progress(written)
	}

	err = runPipeline(ctx, job.Seed, resolveWorkers(job.Workers), plan, func(descriptor Descriptor, frame []byte) error {
		if _, err := sink.Write(frame); err != nil {
			return fmt.Errorf("writing chunk %d: %w", descriptor.Index, err)
		}
		written += int64(len(frame))
		if progress != nil {
			progress(written)
		}
		return nil
	})
	return written, err
}

// ValidateOptions configures a validate run. All stream parameters
// come from the embedded header; only execution knobs live here.
type ValidateOptions struct {
	// Workers is the parallel worker count; zero means "use the
	// number of CPUs".
	Workers int

	// Progress receives bytes-validated updates. May be nil.
	Progress ProgressFunc

	// OnHeader, when non-nil, is called once with the decoded stream
	// header before any chunk work begins. Callers use it to learn
	// the stream's size for progress display or logging.
	OnHeader func(Header)
}

// Validate reads a stream from source, reconstructs the expected
// bytes from the self-describing header, and compares byte-for-byte.
// Returns the number of stream bytes validated (header included) on
// success.
//
// A missing, truncated, or unrecognized header fails with a
// FormatError before any chunk work. The first divergence fails with
// a CorruptionError carrying the chunk index and absolute byte
// offset; later chunks are not evaluated, though already-dispatched
// regeneration work may complete and is discarded.
func Validate(ctx context.Context, source io.Reader, options ValidateOptions) (int64, error) {
	header, err := DecodeHeaderFrom(source)
	if err != nil {
		return 0, err
	}
	if options.OnHeader != nil {
		options.OnHeader(header)
	}

	plan, err := NewPlan(header.TotalSize, header.ChunkPayloadSize)
	if err != nil {
		// Header.check rejects zero sizes, so the plan cannot fail;
		// keep the error path anyway rather than ignore it.
		return 0, err
	}

	headerSize := int64(header.EncodedSize())
	fullFrameSize := int64(header.ChunkPayloadSize) + ChecksumSize
	validated := headerSize
	if options.Progress != nil {
		options.Progress(validated)
	}

	// Reused across chunks: the emitter is strictly sequential.
	streamed := make([]byte, fullFrameSize)

	err = runPipeline(ctx, header.Seed, resolveWorkers(options.Workers), plan, func(descriptor Descriptor, expected []byte) error {
		chunkStart := headerSize + int64(descriptor.Index)*fullFrameSize
		got := streamed[:len(expected)]
		if n, err := io.ReadFull(source, got); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return &CorruptionError{
					ChunkIndex: descriptor.Index,
					Offset:     chunkStart + int64(n),
					Truncated:  true,
				}
			}
			return fmt.Errorf("reading chunk %d: %w", descriptor.Index, err)
		}
		if !bytes.Equal(got, expected) {
			return &CorruptionError{
				ChunkIndex: descriptor.Index,
				Offset:     chunkStart + int64(firstDifference(got, expected)),
			}
		}
		validated += int64(len(expected))
		if options.Progress != nil {
			options.Progress(validated)
		}
		return nil
	})
	if err != nil {
		return validated, err
	}
	return validated, nil
}

// firstDifference returns the index of the first byte where a and b
// differ. Callers only invoke it on equal-length slices known to
// differ somewhere.
func firstDifference(a, b []byte) int {
	for i := range a {
		if a[i] != b[i] {
			return i
		}
	}
	return len(a)
}

// runPipeline is the parallel executor plus ordered emitter shared by
// Generate and Validate. A producer goroutine feeds the plan's
// descriptors to a fixed pool of workers over a shared channel; each
// worker independently expands and frames its chunks and deposits
// them, keyed by index, into a completion channel. The emitter,
// running on the caller's goroutine, buffers early arrivals in an
// index-keyed map and calls emit strictly in index order.
//
// Workers never communicate with each other; the only shared state is
// the two channels. The first emit error (or context cancellation)
// stops the run: the context is cancelled, in-flight work drains into
// the garbage collector, and the error is returned unmasked.
func runPipeline(ctx context.Context, seed []byte, workers int, plan Plan, emit func(Descriptor, []byte) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	descriptors := make(chan Descriptor, workers)
	go func() {
		defer close(descriptors)
		for i := uint64(0); i < plan.NumChunks(); i++ {
			select {
			case descriptors <- plan.Descriptor(i):
			case <-ctx.Done():
				return
			}
		}
	}()

	// Buffer a little beyond the worker count so a slow emitter does
	// not immediately stall the pool.
	results := make(chan completedChunk, 2*workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for descriptor := range descriptors {
				frame := make([]byte, descriptor.PayloadLength+ChecksumSize)
				ExpandInto(seed, descriptor.Index, frame[:descriptor.PayloadLength])
				SealFrame(frame)
				select {
				case results <- completedChunk{descriptor: descriptor, frame: frame}:
				case <-ctx.Done():
					return
				}
			}
		}()
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	pending := make(map[uint64]completedChunk)
	nextIndex := uint64(0)
	for nextIndex < plan.NumChunks() {
		chunk, ok := <-results
		if !ok {
			// Workers stopped before all chunks were emitted; only
			// cancellation can cause this.
			if err := ctx.Err(); err != nil {
				return err
			}
			return fmt.Errorf("chunk pipeline stopped after %d of %d chunks", nextIndex, plan.NumChunks())
		}
		pending[chunk.descriptor.Index] = chunk

		// Drain contiguously from the next expected index.
		for {
			ready, ok := pending[nextIndex]
			if !ok {
				break
			}
			delete(pending, nextIndex)
			if err := emit(ready.descriptor, ready.frame); err != nil {
				cancel()
				return err
			}
			nextIndex++
		}
	}
	return nil
}
