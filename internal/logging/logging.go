// Package logging configures the global zerolog logger for taskcanvas.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var debugEnabled bool

// Init sends human-readable logs to stderr, at debug level when debug is set.
func Init(debug bool) {
	Setup(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}, debug)
}

// Setup points the global logger at out.
func Setup(out io.Writer, debug bool) {
	debugEnabled = debug
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = zerolog.New(out).With().Timestamp().Logger()
}

// DebugEnabled reports whether debug logging is enabled.
func DebugEnabled() bool {
	return debugEnabled
}

// Component returns a child of the global logger tagged with a component name.
func Component(name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}
