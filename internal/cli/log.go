// Package cli implements the squaremap command-line interface.
//
// The commands scan directory trees, compute squarified treemap layouts and
// render them to files, the terminal or an HTTP endpoint. Every command goes
// through a [pipeline.Runner], so results are cached between invocations.
//
// # Commands
//
//   - scan: Walk a directory and write its aggregated size tree
//   - verify: Check the aggregation invariants of a tree
//   - layout / visualize: Compute a layout, then draw it
//   - render: Scan, lay out and draw in one step
//   - view: Browse a treemap interactively in the terminal
//   - serve: Serve treemaps over HTTP
//   - cache: Inspect or clear the local cache
//
// # Configuration
//
// Defaults are read from $XDG_CONFIG_HOME/squaremap/config.toml (or the file
// named by --config). Flags given on the command line win over the file.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// reports pipeline and cache events.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger returns a logger writing to w at level, with short timestamps
// such as "14:32:01.45".
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress times one stage of a command.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg at info level with the given key/value pairs and the time
// elapsed since newProgress, rounded to the millisecond.
func (p *progress) done(msg string, keyvals ...any) {
	keyvals = append(keyvals, "elapsed", p.elapsed())
	p.logger.Info(msg, keyvals...)
}

func (p *progress) elapsed() time.Duration {
	return time.Since(p.start).Round(time.Millisecond)
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger attaches l to ctx for loggerFromContext.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger attached to ctx, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
