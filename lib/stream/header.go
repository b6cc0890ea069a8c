// Copyright 2026 The Seedstream Authors
// SPDX-License-Identifier: Apache-2.0

package stream

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Stream header format constants. All multi-byte integers in the
// header (and in chunk checksum trailers) are little-endian.
const (
	// headerMagic identifies a seedstream stream.
	headerMagic = "SDSM"

	// headerVersion is the current format version. Bumped when the
	// layout or the expansion function changes incompatibly.
	headerVersion = 1

	// headerPrefixSize covers the fields before the variable-length
	// seed: magic(4) + version(2) + seedLength(2).
	headerPrefixSize = 8

	// headerSuffixSize covers the fields after the seed:
	// chunkPayloadSize(8) + totalSize(8).
	headerSuffixSize = 16

	// maxSeedLength is the largest seed the header can carry; its
	// length field is a uint16.
	maxSeedLength = 1<<16 - 1

	// maxChunkPayloadSize bounds the per-chunk payload. Validation
	// allocates one frame buffer of this size from header bytes, so
	// the bound is what keeps a damaged size field from demanding an
	// absurd allocation.
	maxChunkPayloadSize = 1 << 30

	// maxTotalSize bounds the logical stream size so offset and byte
	// count arithmetic stays within int64.
	maxTotalSize = 1 << 62
)

// Header is the fixed-layout metadata block written at stream offset
// 0, before any chunk. Its content fully determines the expected byte
// sequence of the rest of the stream: validation needs no state
// beyond the header itself.
//
// Layout:
//
//	magic marker       4 bytes
//	format version     2 bytes
//	seed length        2 bytes
//	seed bytes         variable
//	chunk payload size 8 bytes
//	total logical size 8 bytes
type Header struct {
	Seed             []byte
	ChunkPayloadSize uint64
	TotalSize        uint64
}

// HeaderSize returns the encoded header size for a seed of the given
// length.
func HeaderSize(seedLength int) int {
	return headerPrefixSize + seedLength + headerSuffixSize
}

// EncodedSize returns the encoded size of this header.
func (h Header) EncodedSize() int {
	return HeaderSize(len(h.Seed))
}

// Encode serializes the header to its on-stream byte form.
// Panics if the seed does not fit the uint16 length field; [Job]
// validation rejects such seeds before a header is ever built.
func (h Header) Encode() []byte {
	if len(h.Seed) > maxSeedLength {
		panic(fmt.Sprintf("stream: header seed is %d bytes, maximum is %d", len(h.Seed), maxSeedLength))
	}

	buffer := make([]byte, h.EncodedSize())
	copy(buffer[0:4], headerMagic)
	binary.LittleEndian.PutUint16(buffer[4:6], headerVersion)
	binary.LittleEndian.PutUint16(buffer[6:8], uint16(len(h.Seed)))
	copy(buffer[headerPrefixSize:], h.Seed)

	suffix := buffer[headerPrefixSize+len(h.Seed):]
	binary.LittleEndian.PutUint64(suffix[0:8], h.ChunkPayloadSize)
	binary.LittleEndian.PutUint64(suffix[8:16], h.TotalSize)
	return buffer
}

// DecodeHeader parses a header from the start of data. Returns a
// FormatError on a bad magic marker, unsupported version, truncated
// input, or nonsensical parameters.
func DecodeHeader(data []byte) (Header, error) {
	if len(data) < headerPrefixSize {
		return Header{}, &FormatError{Reason: fmt.Sprintf("header truncated: %d bytes, need at least %d", len(data), headerPrefixSize)}
	}

	magic := string(data[0:4])
	if magic != headerMagic {
		return Header{}, &FormatError{Reason: fmt.Sprintf("bad magic marker %q, want %q", magic, headerMagic)}
	}

	version := binary.LittleEndian.Uint16(data[4:6])
	if version != headerVersion {
		return Header{}, &FormatError{Reason: fmt.Sprintf("unsupported format version %d (this build supports %d)", version, headerVersion)}
	}

	seedLength := int(binary.LittleEndian.Uint16(data[6:8]))
	if len(data) < HeaderSize(seedLength) {
		return Header{}, &FormatError{Reason: fmt.Sprintf("header truncated: %d bytes, need %d for a %d-byte seed", len(data), HeaderSize(seedLength), seedLength)}
	}

	header := Header{
		Seed: append([]byte(nil), data[headerPrefixSize:headerPrefixSize+seedLength]...),
	}
	suffix := data[headerPrefixSize+seedLength:]
	header.ChunkPayloadSize = binary.LittleEndian.Uint64(suffix[0:8])
	header.TotalSize = binary.LittleEndian.Uint64(suffix[8:16])

	if err := header.check(); err != nil {
		return Header{}, err
	}
	return header, nil
}

// DecodeHeaderFrom reads and parses a header from r, consuming
// exactly the header's bytes. A short read is a FormatError: the
// stream cannot even describe itself.
func DecodeHeaderFrom(r io.Reader) (Header, error) {
	prefix := make([]byte, headerPrefixSize)
	if _, err := io.ReadFull(r, prefix); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return Header{}, &FormatError{Reason: "stream ends inside the header"}
		}
		return Header{}, fmt.Errorf("reading stream header: %w", err)
	}

	// Reject a foreign or future stream before trusting its seed
	// length field.
	if magic := string(prefix[0:4]); magic != headerMagic {
		return Header{}, &FormatError{Reason: fmt.Sprintf("bad magic marker %q, want %q", magic, headerMagic)}
	}
	if version := binary.LittleEndian.Uint16(prefix[4:6]); version != headerVersion {
		return Header{}, &FormatError{Reason: fmt.Sprintf("unsupported format version %d (this build supports %d)", version, headerVersion)}
	}

	seedLength := int(binary.LittleEndian.Uint16(prefix[6:8]))
	rest := make([]byte, seedLength+headerSuffixSize)
	if _, err := io.ReadFull(r, rest); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return Header{}, &FormatError{Reason: "stream ends inside the header"}
		}
		return Header{}, fmt.Errorf("reading stream header: %w", err)
	}

	return DecodeHeader(append(prefix, rest...))
}

// check validates the decoded parameter fields. A structurally intact
// header with impossible parameters is still a format error: no
// stream could have been generated from it. The upper bounds matter
// as much as the zero checks; a corrupted size field must fail here,
// before anything sizes a buffer or a loop from it.
func (h Header) check() error {
	if len(h.Seed) == 0 {
		return &FormatError{Reason: "header seed is empty"}
	}
	if h.ChunkPayloadSize == 0 {
		return &FormatError{Reason: "header chunk payload size is zero"}
	}
	if h.ChunkPayloadSize > maxChunkPayloadSize {
		return &FormatError{Reason: fmt.Sprintf("header chunk payload size %d exceeds the maximum %d", h.ChunkPayloadSize, uint64(maxChunkPayloadSize))}
	}
	if h.TotalSize == 0 {
		return &FormatError{Reason: "header total size is zero"}
	}
	if h.TotalSize > maxTotalSize {
		return &FormatError{Reason: fmt.Sprintf("header total size %d exceeds the maximum %d", h.TotalSize, uint64(maxTotalSize))}
	}
	return nil
}
