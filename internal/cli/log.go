package cli

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger returns the diagnostic logger written to w: info level by
// default, debug level when debug is set.
func NewLogger(w io.Writer, debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}

	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}).
		Level(level).
		With().
		Timestamp().
		Logger()
}
