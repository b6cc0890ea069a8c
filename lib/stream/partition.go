// Copyright 2026 The Seedstream Authors
// SPDX-License-Identifier: Apache-2.0

package stream

// Descriptor identifies one chunk's position in the logical stream:
// its dense 0-based index, its payload's byte offset in the logical
// (header-less, checksum-less) stream, and its payload length.
type Descriptor struct {
	Index         uint64
	Offset        uint64
	PayloadLength int
}

// Plan divides a total logical size into an ordered, dense sequence
// of chunk descriptors. Every chunk carries the full payload size
// except possibly the last, which carries the remainder. Plans are
// value types: partitioning the same inputs always yields the same
// descriptors, so a plan can be recomputed freely (validation rebuilds
// the generate-time plan from the header alone).
type Plan struct {
	totalSize        uint64
	chunkPayloadSize uint64
}

// NewPlan builds a partitioning plan. Returns a ConfigError when
// either size is zero.
func NewPlan(totalSize, chunkPayloadSize uint64) (Plan, error) {
	if totalSize == 0 {
		return Plan{}, &ConfigError{Reason: "total size is zero"}
	}
	if chunkPayloadSize == 0 {
		return Plan{}, &ConfigError{Reason: "chunk payload size is zero"}
	}
	return Plan{totalSize: totalSize, chunkPayloadSize: chunkPayloadSize}, nil
}

// NumChunks returns ceil(totalSize / chunkPayloadSize). Division plus
// a remainder increment rather than the add-then-divide form, which
// wraps for totals near the uint64 limit.
func (p Plan) NumChunks() uint64 {
	n := p.totalSize / p.chunkPayloadSize
	if p.totalSize%p.chunkPayloadSize != 0 {
		n++
	}
	return n
}

// Descriptor returns the descriptor of chunk i. Panics if i is out of
// range; the engine only ever asks for indices below NumChunks.
func (p Plan) Descriptor(i uint64) Descriptor {
	if i >= p.NumChunks() {
		panic("stream: chunk index out of range")
	}
	offset := i * p.chunkPayloadSize
	length := p.chunkPayloadSize
	if remaining := p.totalSize - offset; remaining < length {
		length = remaining
	}
	return Descriptor{Index: i, Offset: offset, PayloadLength: int(length)}
}

// FrameSize returns the on-stream size of chunk i: payload plus
// checksum trailer.
func (p Plan) FrameSize(i uint64) int {
	return p.Descriptor(i).PayloadLength + ChecksumSize
}

// OnStreamSize returns the total on-stream size of all framed chunks,
// excluding the header: totalSize plus one checksum per chunk.
func (p Plan) OnStreamSize() uint64 {
	return p.totalSize + p.NumChunks()*ChecksumSize
}
