// Package progress renders parse and analysis progress on stderr.
package progress

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/schollz/progressbar/v3"

	"github.com/panbanda/oometrics/pkg/metric"
)

// Tracker wraps a progress bar for file processing.
type Tracker struct {
	bar   *progressbar.ProgressBar
	label string
	w     io.Writer
}

// NewSpinner creates a spinner for operations with unknown total count.
func NewSpinner(label string) *Tracker {
	return newSpinner(os.Stderr, label)
}

func newSpinner(w io.Writer, label string) *Tracker {
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetWidth(20),
		progressbar.OptionSetDescription(label),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)
	return &Tracker{bar: bar, label: label, w: w}
}

// NewTracker creates a progress bar with the given label and total count.
func NewTracker(label string, total int) *Tracker {
	return NewTrackerTo(os.Stderr, label, total)
}

// NewTrackerTo creates a progress bar that renders to w.
func NewTrackerTo(w io.Writer, label string, total int) *Tracker {
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetDescription(label),
		progressbar.OptionUseANSICodes(true),
		progressbar.OptionSetElapsedTime(false),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
	return &Tracker{bar: bar, label: label, w: w}
}

// Tick increments the progress by 1. Safe for concurrent use.
func (t *Tracker) Tick() {
	_ = t.bar.Add(1)
}

// Set moves the bar to n.
func (t *Tracker) Set(n int) {
	_ = t.bar.Set(n)
}

// Current returns the number of completed steps.
func (t *Tracker) Current() int64 {
	return t.bar.State().CurrentNum
}

// FinishSuccess clears the bar completely (no output).
func (t *Tracker) FinishSuccess() {
	_ = t.bar.Finish()
	_ = t.bar.Clear()
}

// FinishSkipped clears the bar and prints a skip message.
func (t *Tracker) FinishSkipped(reason string) {
	_ = t.bar.Finish()
	_ = t.bar.Clear()
	fmt.Fprintf(t.w, "  %s skipped (%s)\n", t.label, reason)
}

// FinishError clears the bar and prints an error message.
func (t *Tracker) FinishError(err error) {
	_ = t.bar.Finish()
	_ = t.bar.Clear()
	fmt.Fprintf(t.w, "  %s error: %v\n", t.label, err)
}

// Levels shows one bar per construct level while the engine runs. Report
// matches the engine's progress callback.
type Levels struct {
	mu      sync.Mutex
	w       io.Writer
	level   metric.Level
	current *Tracker
	done    int
}

// NewLevels creates a level tracker rendering to w, or stderr when w is nil.
func NewLevels(w io.Writer) *Levels {
	if w == nil {
		w = os.Stderr
	}
	return &Levels{w: w}
}

// Report records that done of total constructs at level have finished.
// Reports may arrive out of order from concurrent workers.
func (l *Levels) Report(level metric.Level, done, total int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.current == nil || level != l.level {
		if l.current != nil {
			l.current.FinishSuccess()
		}
		l.level = level
		l.done = 0
		l.current = NewTrackerTo(l.w, "Computing "+level.String()+" metrics", total)
	}
	if done > l.done {
		l.done = done
		l.current.Set(done)
	}
}

// Finish clears the active bar.
func (l *Levels) Finish() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.current != nil {
		l.current.FinishSuccess()
		l.current = nil
	}
}
