// Copyright 2026 The Seedstream Authors
// SPDX-License-Identifier: Apache-2.0

//go:build linux

package devsize

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// deviceSize returns the media size of a block device via the
// BLKGETSIZE64 ioctl.
func deviceSize(path string) (uint64, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening device %s: %w", path, err)
	}
	defer file.Close()

	size, err := unix.IoctlGetInt(int(file.Fd()), unix.BLKGETSIZE64)
	if err != nil {
		return 0, fmt.Errorf("querying size of device %s: %w", path, err)
	}
	return uint64(size), nil
}
