// Copyright 2026 The Seedstream Authors
// SPDX-License-Identifier: Apache-2.0

// Package devsize discovers the usable byte size of a generate or
// validate target. Regular files report their length; block and
// character devices report their media size through the platform
// ioctl. Anything else (directories, sockets, pipes) is rejected:
// a stream needs a seekable, sized target.
package devsize

import (
	"errors"
	"fmt"
	"os"
)

// ErrUnsupportedType marks a target that is neither a regular file
// nor a device. Callers match it with errors.Is to treat the failure
// as a caller mistake rather than an I/O fault.
var ErrUnsupportedType = errors.New("unsupported file type")

// Size returns the byte size of the file or device at path.
func Size(path string) (uint64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("inspecting %s: %w", path, err)
	}

	mode := info.Mode()
	switch {
	case mode.IsRegular():
		return uint64(info.Size()), nil
	case mode&os.ModeDevice != 0:
		// Covers both block devices and character devices (some
		// platforms expose raw disks as character devices).
		return deviceSize(path)
	default:
		return 0, fmt.Errorf("%s: %w %v (need a regular file or device)", path, ErrUnsupportedType, mode.Type())
	}
}
