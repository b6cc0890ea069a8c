// Copyright 2026 The Seedstream Authors
// SPDX-License-Identifier: Apache-2.0

package stream

import (
	"encoding/binary"

	"github.com/zeebo/blake3"
)

// expandContext is the BLAKE3 key-derivation context string for chunk
// payload expansion. It is a protocol constant: changing it changes
// every byte of every stream. The format follows the BLAKE3 context
// convention: application name, date, purpose.
const expandContext = "seedstream 2026-08-24 chunk payload expansion"

// ExpandInto fills payload with the deterministic pseudo-random bytes
// of the chunk at the given index. The global seed and the chunk
// index are mixed through a BLAKE3 key derivation and the result is
// read from the BLAKE3 XOF, so each chunk is an independent
// sub-stream: computing chunk i requires no state from any other
// chunk. Pure and safe for concurrent use with distinct payload
// buffers.
func ExpandInto(seed []byte, index uint64, payload []byte) {
	hasher := blake3.NewDeriveKey(expandContext)
	hasher.Write(seed)

	var indexBytes [8]byte
	binary.LittleEndian.PutUint64(indexBytes[:], index)
	hasher.Write(indexBytes[:])

	// The XOF reader never returns an error and always fills the
	// buffer completely.
	hasher.Digest().Read(payload)
}

// Expand is the allocating form of [ExpandInto].
func Expand(seed []byte, index uint64, length int) []byte {
	payload := make([]byte, length)
	ExpandInto(seed, index, payload)
	return payload
}
