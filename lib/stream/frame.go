// Copyright 2026 The Seedstream Authors
// SPDX-License-Identifier: Apache-2.0

package stream

import (
	"encoding/binary"
	"hash/crc32"
)

// ChecksumSize is the size of the per-chunk integrity checksum
// appended to every chunk payload.
const ChecksumSize = 4

// castagnoliTable is the CRC32C (Castagnoli) table for chunk
// checksums. CRC32C detects corruption; it is not a security
// mechanism.
var castagnoliTable = crc32.MakeTable(crc32.Castagnoli)

// Checksum computes the CRC32C of a chunk payload.
func Checksum(payload []byte) uint32 {
	return crc32.Checksum(payload, castagnoliTable)
}

// SealFrame computes the checksum of frame's payload (everything
// before the trailing [ChecksumSize] bytes) and writes it into the
// trailer as little-endian. The frame is then in its on-stream form.
// Panics if the frame is too short to hold a trailer.
func SealFrame(frame []byte) {
	payload := frame[:len(frame)-ChecksumSize]
	binary.LittleEndian.PutUint32(frame[len(frame)-ChecksumSize:], Checksum(payload))
}

// CheckFrame reports whether frame's trailer matches the checksum of
// its payload.
func CheckFrame(frame []byte) bool {
	if len(frame) < ChecksumSize {
		return false
	}
	payload := frame[:len(frame)-ChecksumSize]
	stored := binary.LittleEndian.Uint32(frame[len(frame)-ChecksumSize:])
	return stored == Checksum(payload)
}
