// Copyright 2026 The Seedstream Authors
// SPDX-License-Identifier: Apache-2.0

package stream

// ProgressFunc receives the total number of stream bytes processed so
// far (header included). The engine calls it from the ordered emitter
// after each chunk is acted on, so values are strictly increasing and
// the final call carries the full on-stream size. The engine has no
// opinion on display; callers throttle and render as they see fit.
// A nil ProgressFunc disables reporting.
type ProgressFunc func(bytesProcessed int64)
