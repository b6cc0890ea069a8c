// Copyright 2026 The Seedstream Authors
// SPDX-License-Identifier: Apache-2.0

//go:build darwin

package devsize

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// deviceSize returns the media size of a disk device as block size
// times block count, the Darwin equivalent of Linux's BLKGETSIZE64.
func deviceSize(path string) (uint64, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening device %s: %w", path, err)
	}
	defer file.Close()

	fd := int(file.Fd())
	blockSize, err := unix.IoctlGetUint32(fd, unix.DKIOCGETBLOCKSIZE)
	if err != nil {
		return 0, fmt.Errorf("querying block size of device %s: %w", path, err)
	}
	blockCount, err := unix.IoctlGetInt(fd, unix.DKIOCGETBLOCKCOUNT)
	if err != nil {
		return 0, fmt.Errorf("querying block count of device %s: %w", path, err)
	}
	return uint64(blockSize) * uint64(blockCount), nil
}
