// Package cli implements the archdraw command-line interface.
//
// This package provides commands for rendering architecture records as
// draw.io documents, merging and reconstructing existing documents,
// previewing the containment hierarchy, serving the HTTP API, and managing
// the local cache. The CLI is built using cobra and supports verbose logging
// via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - render: Lay out records and write a .drawio document
//   - layout: Compute element rectangles as JSON
//   - merge: Compose two documents side by side
//   - reconstruct: Recover records from a document
//   - preview: Graphviz view of the containment hierarchy
//   - serve: HTTP API
//   - cache: Manage the layout and document cache
//
// # Configuration
//
// Defaults are read from $XDG_CONFIG_HOME/archdraw/config.toml when present.
// Flags override config values.
//
// # Example
//
//	import "github.com/matzehuels/archdraw/internal/cli"
//
//	func main() {
//	    c := cli.New(os.Stderr, cli.LogInfo)
//	    if err := c.RootCommand().ExecuteContext(ctx); err != nil {
//	        os.Exit(1)
//	    }
//	}
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/archdraw/pkg/pipeline"
)

// newLogger returns the CLI logger. Timestamps read like 14:32:01.45.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress times a command and the pipeline stages it runs through.
// Not safe for concurrent use.
type progress struct {
	logger *log.Logger
	start  time.Time
	last   time.Time
	stage  pipeline.Stage
}

func newProgress(l *log.Logger) *progress {
	now := time.Now()
	return &progress{logger: l, start: now, last: now}
}

// onStage logs at debug level how long the previous stage took and what
// the next one starts with. It has the signature of pipeline.Options.OnStage.
func (p *progress) onStage(ev pipeline.StageEvent) {
	now := time.Now()
	if p.stage != "" {
		p.logger.Debug("stage done", "stage", p.stage, "took", now.Sub(p.last).Round(time.Millisecond))
	}
	p.logger.Debug("stage",
		"stage", ev.Stage,
		"elements", ev.Elements,
		"connections", ev.Connections,
		"crossings", ev.Crossings,
		"cells", ev.Cells)
	p.stage, p.last = ev.Stage, now
}

// done logs msg at info level with keyvals and the total elapsed time.
func (p *progress) done(msg string, keyvals ...any) {
	keyvals = append(keyvals, "duration", time.Since(p.start).Round(time.Millisecond))
	p.logger.Info(msg, keyvals...)
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger attaches l to ctx for the command handlers.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger attached by withLogger, or
// log.Default when the command ran without the root pre-run.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
