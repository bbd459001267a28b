// Package cli implements the blockpress command-line interface.
//
// # Commands
//
//   - render: render a document for the email or page context
//   - finalize: run the trusted pass over a stored page fragment
//   - blocks: list block types, or pick one interactively
//   - new: create a block instance with the type's defaults
//   - inspect: summarize a document, show one block, or draw its outline
//   - serve: run the HTTP API
//   - cache, config: manage the render cache and configuration file
//
// # Logging
//
// Commands log through charmbracelet/log to stderr. Blocks a context
// cannot render are reported as they are skipped:
//
//	WARN skipping block type=poll id=b7 reason=unknown-type
//
// Document problems and stage timings also carry doc and context fields.
// --verbose (-v) enables debug output and caller reporting.
package cli

import (
	"context"
	"io"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates the CLI logger writing to w.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
		ReportCaller:    level <= log.DebugLevel,
	})
}

// documentName is how logs and spinners refer to an input path.
func documentName(input string) string {
	if input == "-" || input == "" {
		return "stdin"
	}
	return filepath.Base(input)
}

// documentLogger scopes l to one document render.
func documentLogger(l *log.Logger, input, renderCtx string) *log.Logger {
	name := documentName(input)
	if renderCtx == "" {
		return l.With("doc", name)
	}
	return l.With("doc", name, "context", renderCtx)
}

// stageTimer logs how long each pipeline stage of a command took.
type stageTimer struct {
	logger *log.Logger
	start  time.Time
}

func startStage(l *log.Logger) *stageTimer {
	return &stageTimer{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time and any extra key/value pairs.
func (t *stageTimer) done(msg string, keyvals ...any) {
	keyvals = append(keyvals, "elapsed", time.Since(t.start).Round(time.Millisecond))
	t.logger.Info(msg, keyvals...)
}

type loggerKey struct{}

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// loggerFromContext returns the logger attached by the root command, or
// log.Default when none is attached.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
