// Package cli implements the overflow command-line interface.
//
// The commands run scenarios through the fitting engine, show it live in
// the terminal, render its internal queues and serve it over HTTP. The CLI
// is built using cobra and logs through charmbracelet/log.
//
// # Commands
//
//   - fit: Run a scenario file or built-in preset and print the partition
//   - scenarios: List and export the built-in presets
//   - demo: Interactive toolbar that overflows with the terminal width
//   - heap: Debug tool rendering the eviction and restore heaps
//   - serve: Run the HTTP fitting service
//   - cache: Manage the result cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which
// includes one line per fitting pass. The logger is attached to the command
// context and retrieved with loggerFromContext.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a logger with "HH:MM:SS.ms" timestamps (e.g. "14:32:01.45")
// that writes to w and filters below level.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs the completion of an operation with its elapsed time.
// It is meant for sequential use by a single goroutine.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg at info level with the given key-value pairs and the elapsed
// time rounded to the nearest microsecond, e.g.
//
//	14:32:01.45 INFO fit complete scenario=dom-order visible=4 elapsed=212µs
func (p *progress) done(msg string, keyvals ...any) {
	keyvals = append(keyvals, "elapsed", time.Since(p.start).Round(time.Microsecond))
	p.logger.Info(msg, keyvals...)
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger returns a copy of ctx carrying l.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger attached by withLogger, or
// log.Default() so commands always have one.
func loggerFromContext(ctx context.Context) *log.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
			return l
		}
	}
	return log.Default()
}
