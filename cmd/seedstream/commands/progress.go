// Copyright 2026 The Seedstream Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// redrawInterval caps the progress redraw rate so the bar never
// dominates a fast run's CPU budget.
const redrawInterval = 100 * time.Millisecond

// progressBar renders a single-line progress display on stderr. It is
// safe to update from the engine's emitter goroutine while a ticker
// goroutine redraws. The total may arrive late (validation learns it
// from the stream header), in which case the bar shows bytes and
// throughput without a percentage until then.
type progressBar struct {
	output  *termenv.Output
	start   time.Time
	current atomic.Int64
	total   atomic.Int64

	stop     chan struct{}
	finished sync.WaitGroup
}

// progressEnabled reports whether a live bar makes sense: stderr is a
// terminal and neither the flag nor the config file turned it off.
func progressEnabled(noProgressFlag bool, configProgress *bool) bool {
	if noProgressFlag {
		return false
	}
	if configProgress != nil && !*configProgress {
		return false
	}
	return term.IsTerminal(int(os.Stderr.Fd()))
}

// newProgressBar starts the redraw loop. total may be zero when the
// final size is not yet known.
func newProgressBar(total int64) *progressBar {
	bar := &progressBar{
		output: termenv.NewOutput(os.Stderr),
		start:  time.Now(),
		stop:   make(chan struct{}),
	}
	bar.total.Store(total)

	bar.finished.Add(1)
	go func() {
		defer bar.finished.Done()
		ticker := time.NewTicker(redrawInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				bar.render()
			case <-bar.stop:
				return
			}
		}
	}()
	return bar
}

// Update records the running byte count. Matches stream.ProgressFunc.
func (b *progressBar) Update(bytesProcessed int64) {
	b.current.Store(bytesProcessed)
}

// SetTotal supplies the expected final byte count once it is known.
func (b *progressBar) SetTotal(total int64) {
	b.total.Store(total)
}

// Finish stops the redraw loop and clears the progress line.
func (b *progressBar) Finish() {
	close(b.stop)
	b.finished.Wait()
	b.output.ClearLine()
	fmt.Fprint(os.Stderr, "\r")
}

func (b *progressBar) render() {
	current := b.current.Load()
	total := b.total.Load()
	elapsed := time.Since(b.start)

	rate := ""
	if seconds := elapsed.Seconds(); seconds > 0.5 {
		rate = humanize.IBytes(uint64(float64(current)/seconds)) + "/s"
	}

	var line string
	if total > 0 {
		percent := current * 100 / total
		if percent > 100 {
			percent = 100
		}
		bar := b.output.String(renderTrack(percent)).Foreground(termenv.ANSICyan)
		line = fmt.Sprintf("\r%s %3d%%  %s / %s  %s",
			bar, percent,
			humanize.IBytes(uint64(current)), humanize.IBytes(uint64(total)),
			rate)
	} else {
		line = fmt.Sprintf("\r%s  %s", humanize.IBytes(uint64(current)), rate)
	}

	b.output.ClearLine()
	fmt.Fprint(os.Stderr, line)
}

// renderTrack draws the fixed-width bar body for a 0-100 percentage.
func renderTrack(percent int64) string {
	const width = 30
	filled := int(percent) * width / 100
	var track strings.Builder
	track.WriteByte('[')
	for i := 0; i < width; i++ {
		switch {
		case i < filled:
			track.WriteByte('=')
		case i == filled:
			track.WriteByte('>')
		default:
			track.WriteByte(' ')
		}
	}
	track.WriteByte(']')
	return track.String()
}
