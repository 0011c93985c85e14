// Package cli implements the dialogtree command-line interface.
//
// Every editing command opens a session on the configured store, applies one
// change and exits; the change is saved before the process ends. The shell
// command keeps a single session open across many commands, which is what
// makes undo and redo meaningful. The CLI is built using cobra and logs
// through charmbracelet/log.
//
// # Commands
//
// The main commands are:
//   - character, node: create, edit, recolor, move and delete
//   - connect, label, branch, interrupt: edit the options between nodes
//   - path, show: inspect a dialogue
//   - export, import: JSON, DOT, SVG, PDF and PNG files
//   - shell: interactive session with undo and redo
//   - browse: terminal browser with path highlighting
//   - serve: HTTP API for a browser front-end
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context so the editor and server log through the
// same handler.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs how long an operation took when it is done.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time, e.g. "Rendered svg (1.234s)".
func (p *progress) done(msg string) {
	p.logger.Debugf("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx, or log.Default() when
// none is attached.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
