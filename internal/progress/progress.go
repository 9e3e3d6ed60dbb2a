// Package progress reports per-row import progress to the operator.
package progress

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"
)

// Reporter receives progress from the import loop. Implementations must not
// fail; progress is cosmetic.
type Reporter interface {
	// Channel is called before the first row of a channel.
	Channel(label string, total int)
	// Row is called after each message is written. index is 0-based.
	Row(label string, index, total int)
	// Done is called once after the last channel.
	Done()
}

// New returns a Terminal reporter when f is a terminal and a Log reporter
// otherwise.
func New(f *os.File, logger *slog.Logger) Reporter {
	if term.IsTerminal(int(f.Fd())) {
		return NewTerminal(f)
	}
	return &Log{logger: logger}
}

// Terminal rewrites a single status line in place.
type Terminal struct {
	w       io.Writer
	written bool
}

func NewTerminal(w io.Writer) *Terminal {
	return &Terminal{w: w}
}

func (t *Terminal) Channel(string, int) {}

func (t *Terminal) Row(label string, index, total int) {
	fmt.Fprintf(t.w, "\r>> Exporting C#%s (%d/%d)%s", label, index, total, strings.Repeat(" ", 10))
	t.written = true
}

func (t *Terminal) Done() {
	if t.written {
		fmt.Fprintln(t.w)
	}
}

// Log writes progress as structured log lines. Rows are logged at debug level.
type Log struct {
	logger *slog.Logger
}

func NewLog(logger *slog.Logger) *Log {
	return &Log{logger: logger}
}

func (l *Log) Channel(label string, total int) {
	l.logger.Info("exporting channel", "channel", label, "messages", total)
}

func (l *Log) Row(label string, index, total int) {
	l.logger.Debug("exported message", "channel", label, "index", index, "total", total)
}

func (l *Log) Done() {}

// Multi fans progress out to several reporters.
type Multi []Reporter

func (m Multi) Channel(label string, total int) {
	for _, r := range m {
		r.Channel(label, total)
	}
}

func (m Multi) Row(label string, index, total int) {
	for _, r := range m {
		r.Row(label, index, total)
	}
}

func (m Multi) Done() {
	for _, r := range m {
		r.Done()
	}
}

// Snapshot is the latest position recorded by a Tracker.
type Snapshot struct {
	Channel           string    `json:"channel"`
	Index             int       `json:"index"`
	Total             int       `json:"total"`
	ChannelsStarted   int       `json:"channels_started"`
	MessagesProcessed int       `json:"messages_processed"`
	Finished          bool      `json:"finished"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Tracker keeps the latest progress so it can be read from another goroutine.
type Tracker struct {
	mu   sync.Mutex
	snap Snapshot
}

func (t *Tracker) Channel(label string, total int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.snap.Channel = label
	t.snap.Index = 0
	t.snap.Total = total
	t.snap.ChannelsStarted++
	t.snap.UpdatedAt = time.Now().UTC()
}

func (t *Tracker) Row(label string, index, total int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.snap.Channel = label
	t.snap.Index = index
	t.snap.Total = total
	t.snap.MessagesProcessed++
	t.snap.UpdatedAt = time.Now().UTC()
}

func (t *Tracker) Done() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.snap.Finished = true
	t.snap.UpdatedAt = time.Now().UTC()
}

func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snap
}
