// Package vxlog carries the zerolog logger through a context and renders log events for the console.
package vxlog

import (
	"context"
	"io"
	"sync/atomic"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type logKey struct{}

// Log returns the logger attached to ctx or the global logger if there is none
func Log(ctx context.Context) *zerolog.Logger {
	logger := ctx.Value(logKey{})
	if logger == nil {
		return &log.Logger
	}

	return logger.(*zerolog.Logger)
}

// WithLogger attaches the given logger to the context
func WithLogger(ctx context.Context, logger *zerolog.Logger) context.Context {
	return context.WithValue(ctx, logKey{}, logger)
}

// New creates a logger writing either raw JSON lines or colored console messages to out
func New(out io.Writer, level zerolog.Level, json bool) zerolog.Logger {
	if !json {
		out = NewConsoleWriter(out)
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

var trace int32

// SetTrace toggles stack traces for logged errors and the raw event dump of the console writer
func SetTrace(enabled bool) {
	var value int32
	if enabled {
		value = 1
	}
	atomic.StoreInt32(&trace, value)
}

// TraceEnabled reports whether SetTrace(true) was called
func TraceEnabled() bool {
	return atomic.LoadInt32(&trace) == 1
}

func init() {
	zerolog.ErrorMarshalFunc = func(err error) interface{} {
		return eris.ToString(err, TraceEnabled())
	}
}
