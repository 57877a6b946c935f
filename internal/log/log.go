// Package log configures structured logging for datadash using log/slog.
package log

import (
	"io"
	"log/slog"
	"os"
)

// Setup configures the default slog logger based on verbosity flags.
//
//   - quiet mode:  only WARN and ERROR messages
//   - normal mode: INFO and above
//   - debug mode:  DEBUG and above
//
// Output is written to stderr using slog.TextHandler.
func Setup(debug, quiet bool) {
	SetupWriter(os.Stderr, debug, quiet)
}

// SetupWriter is Setup with an explicit destination.
func SetupWriter(w io.Writer, debug, quiet bool) {
	var level slog.Level
	switch {
	case quiet:
		level = slog.LevelWarn
	case debug:
		level = slog.LevelDebug
	default:
		level = slog.LevelInfo
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}
