// Package logging provides the process logger.
package logging

import (
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	"golang.org/x/term"
)

var level = new(slog.LevelVar)

var logger = slog.New(newHandler(os.Stderr))

// newHandler picks a colorized handler on terminals and plain text otherwise.
func newHandler(w *os.File) slog.Handler {
	if term.IsTerminal(int(w.Fd())) {
		return tint.NewHandler(w, &tint.Options{Level: level})
	}
	return slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
}

// Logger returns the process logger.
func Logger() *slog.Logger {
	return logger
}

// SetLevel adjusts the minimum level for subsequent log output.
func SetLevel(l slog.Level) {
	level.Set(l)
}
