package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// New builds a logger writing to w at the named level (debug, info, warn,
// error). An empty level means info.
func New(w io.Writer, level string) (*log.Logger, error) {
	lvl := log.InfoLevel
	if strings.TrimSpace(level) != "" {
		parsed, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
		if err != nil {
			return nil, fmt.Errorf("log level %q: %w", level, err)
		}
		lvl = parsed
	}

	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Level:           lvl,
	}), nil
}

// Stderr builds a logger on os.Stderr, falling back to info level when the
// level is not recognised.
func Stderr(level string) *log.Logger {
	logger, err := New(os.Stderr, level)
	if err != nil {
		logger, _ = New(os.Stderr, "")
		logger.Warn("Unknown log level, using info", "level", level)
	}
	return logger
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}
