package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/opscart/azure-vm-rightsizer/pkg/config"
)

// NewLogger creates the process logger from the config. Logs go to stderr so
// that reports written to stdout stay machine readable.
func NewLogger(cfg *config.Config) zerolog.Logger {
	return New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
}

// New creates a logger writing to w. format is "json" or "console"; an
// unparsable level falls back to info.
func New(w io.Writer, level, format string) zerolog.Logger {
	if format != "json" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: !isTerminal(w)}
	}

	logger := zerolog.New(w).With().
		Timestamp().
		Str("service", "vm-rightsizer").
		Logger()

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	return logger.Level(lvl)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
