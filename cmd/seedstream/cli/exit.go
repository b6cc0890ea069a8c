// Copyright 2026 The Seedstream Authors
// SPDX-License-Identifier: Apache-2.0

package cli

// UsageError reports a problem with how the command was invoked:
// an unknown subcommand, a bad flag, a malformed argument. The main
// function maps it to the configuration exit code, alongside invalid
// job parameters: both mean the run never started.
type UsageError struct {
	Message string
}

func (e *UsageError) Error() string {
	return e.Message
}
