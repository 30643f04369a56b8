package logging

import (
	"io"
	stdlog "log"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Options controls logger construction
type Options struct {
	Level   string
	Pretty  bool
	Service string
	Out     io.Writer
}

// New builds a zerolog logger. Unknown levels fall back to info. Pretty
// output is meant for local runs; Lambda gets JSON lines so CloudWatch can
// index the fields.
func New(opts Options) zerolog.Logger {
	level := zerolog.InfoLevel
	if l, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(opts.Level))); err == nil && l != zerolog.NoLevel {
		level = l
	}

	w := opts.Out
	if w == nil {
		w = os.Stdout
	}
	if opts.Pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}

	ctx := zerolog.New(w).Level(level).With().Timestamp()
	if opts.Service != "" {
		ctx = ctx.Str("service", opts.Service)
	}
	return ctx.Logger()
}

// Init builds the process logger and points the stdlib log package at it,
// so libraries that use log.Printf end up in the same stream.
func Init(opts Options) zerolog.Logger {
	logger := New(opts)
	stdlog.SetFlags(0)
	stdlog.SetOutput(logger)
	return logger
}
