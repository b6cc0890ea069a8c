// Copyright 2026 The Seedstream Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !linux && !darwin

package devsize

import "fmt"

func deviceSize(path string) (uint64, error) {
	return 0, fmt.Errorf("device size discovery is not supported on this platform (%s)", path)
}
