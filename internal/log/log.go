// Package log provides the structured, per-component sub-logger every
// other package logs through, rather than reaching for the global zerolog
// logger directly.
package log

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// base is the process-wide root logger; New derives scoped children from
// it and is the only thing other packages should call.
var base = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).With().Timestamp().Logger()

// Logger is a component-scoped zerolog.Logger; the type alias keeps callers
// from needing to import zerolog themselves for routine logging.
type Logger = zerolog.Logger

// New returns a logger tagged with component, e.g. "orderbook", "account".
func New(component string) Logger {
	return base.With().Str("component", component).Logger()
}

// WithExchange further scopes a logger to a single venue connection.
func WithExchange(l Logger, exchange string) Logger {
	return l.With().Str("exchange", exchange).Logger()
}

// SetOutput redirects the root logger to w as plain JSON output. Loggers
// already returned by New keep writing to the previous destination.
func SetOutput(w io.Writer) {
	base = zerolog.New(w).With().Timestamp().Logger()
}

// SetLevel adjusts the process-wide minimum log level.
func SetLevel(level zerolog.Level) {
	zerolog.SetGlobalLevel(level)
}
