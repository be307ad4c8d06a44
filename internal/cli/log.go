// Package cli implements the stagegraph command-line interface.
//
// The commands wrap the diagram pipeline: a workflow document is built into
// a graph state, its links are routed, and the result is rendered or shown
// interactively. Results are cached by content hash in the backend selected
// by the configuration file.
//
// # Commands
//
// The main commands are:
//   - build: Build the graph state of a workflow and write it as JSON
//   - route: Route the links of a workflow, optionally against measured boxes
//   - render: Generate SVG, DOT, PNG, PDF or JSON output
//   - view: Explore a workflow in the terminal
//   - serve: Serve the pipeline over HTTP
//   - cache: Manage the result cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging and --quiet
// (-q) for errors only. Loggers travel through context.Context so the
// pipeline stages can report progress.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"k8s.io/utils/clock"
)

// newLogger returns a logger that stamps lines as "15:04:05.00".
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs the completion of an operation with its elapsed time.
type progress struct {
	logger *log.Logger
	clock  clock.PassiveClock
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return newProgressWithClock(l, clock.RealClock{})
}

func newProgressWithClock(l *log.Logger, clk clock.PassiveClock) *progress {
	return &progress{logger: l, clock: clk, start: clk.Now()}
}

// done logs msg along with the elapsed time, e.g. "Built 12 nodes (4ms)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, p.clock.Since(p.start).Round(time.Millisecond))
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
