package logger

import (
	"io"
	"log/slog"
	"os"

	"github.com/getsentry/sentry-go"
	slogmulti "github.com/samber/slog-multi"
	slogsentry "github.com/samber/slog-sentry/v2"
)

// Log is the global logger instance
var Log *slog.Logger

// Options controls how the global logger is built.
type Options struct {
	Development bool   // text output at debug level instead of JSON at info
	SentryDSN   string // errors are also sent to Sentry when set
	Environment string
	Release     string
}

// Init initializes the global logger and sets it as the slog default.
func Init(opts Options) {
	Log = New(os.Stdout, opts)
	slog.SetDefault(Log)
}

// New builds a logger writing to w. Every record carries the app env and version.
func New(w io.Writer, opts Options) *slog.Logger {
	var handlers []slog.Handler

	// Base handler for stdout (always enabled)
	if opts.Development {
		handlers = append(handlers, slog.NewTextHandler(w, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	} else {
		handlers = append(handlers, slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	}

	// Optional Sentry handler (sends errors only)
	if opts.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              opts.SentryDSN,
			Environment:      opts.Environment,
			Release:          opts.Release,
			TracesSampleRate: 1.0,
		})
		if err == nil {
			handlers = append(handlers, slogsentry.Option{
				Level: slog.LevelError,
			}.NewSentryHandler())
		}
	}

	// Use multi-handler if we have multiple, otherwise use single
	var handler slog.Handler
	if len(handlers) > 1 {
		handler = slogmulti.Fanout(handlers...)
	} else {
		handler = handlers[0]
	}

	return slog.New(handler).With("env", opts.Environment, "version", opts.Release)
}
