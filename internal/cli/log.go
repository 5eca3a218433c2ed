// Package cli implements the schedsvg command-line interface.
//
// The commands load a schedule and a style file, render one SVG sheet per
// (date, room) group and manage the artifact cache. The CLI is built using
// cobra and logs through charmbracelet/log.
//
// # Commands
//
// The main commands are:
//   - build: Render every group and write sheets plus meta.json
//   - groups: List dates, rooms and groups without rendering
//   - style: Write a starter style file or check an existing one
//   - serve: Serve the output directory, optionally rebuilding on a schedule
//   - cache: Manage the artifact cache
//
// # Logging
//
// The root command owns --verbose (-v), which switches to debug level before
// any subcommand runs. The logger travels in the command context, and steps
// report completion as key/value lines with their duration.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// timeFormat stamps each log line with wall-clock time to the centisecond.
const timeFormat = "15:04:05.00"

// newLogger returns the per-invocation logger. Debug lines (cache hits,
// per-file writes, unresolved speakers) appear only at LogDebug.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      timeFormat,
		Level:           level,
	})
}

// levelFor maps the --verbose flag to a log level.
func levelFor(verbose bool) log.Level {
	if verbose {
		return LogDebug
	}
	return LogInfo
}

// progress times one step of a command (loading the schedule, writing the
// output directory) and logs it once finished.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg at info level with keyvals and a "took" field rounded to the
// millisecond, e.g. "loaded schedule sessions=412 origin=schedule.json took=18ms".
func (p *progress) done(msg string, keyvals ...any) {
	keyvals = append(keyvals, "took", time.Since(p.start).Round(time.Millisecond))
	p.logger.Info(msg, keyvals...)
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger attaches l to ctx for the command's helpers.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger stored by withLogger, or log.Default()
// for helpers called outside a command (tests, the rebuild scheduler).
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
