// Package logger builds the slog loggers used across the application.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Config holds the logger configuration.
type Config struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// NewLogger initializes a new slog logger based on the provided configuration.
// A nil output selects the destination named by cfg.Output.
func NewLogger(cfg Config, output io.Writer) *slog.Logger {
	if output == nil {
		output = resolveOutput(cfg.Output)
	}

	level := new(slog.Level)
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = new(slog.Level)
	}

	var handler slog.Handler
	switch cfg.Format {
	case "json":
		handler = slog.NewJSONHandler(output, &slog.HandlerOptions{Level: level})
	case "actions":
		// The Actions runner already timestamps every line.
		handler = slog.NewTextHandler(output, &slog.HandlerOptions{
			Level:       level,
			ReplaceAttr: dropTime,
		})
	default:
		handler = slog.NewTextHandler(output, &slog.HandlerOptions{Level: level})
	}

	return slog.New(handler)
}

// Group writes a GitHub Actions log group header and returns the function that
// closes it.
func Group(w io.Writer, name string) func() {
	if w == nil {
		w = os.Stdout
	}
	_, _ = fmt.Fprintf(w, "::group::%s\n", name)
	return func() {
		_, _ = fmt.Fprintln(w, "::endgroup::")
	}
}

func resolveOutput(name string) io.Writer {
	switch name {
	case "stderr":
		return os.Stderr
	case "file":
		file, err := os.OpenFile("lint-warden.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
		if err != nil {
			fmt.Printf("Failed to open log file: %v\n", err)
			return os.Stdout
		}
		return file
	default:
		return os.Stdout
	}
}

func dropTime(groups []string, a slog.Attr) slog.Attr {
	if len(groups) == 0 && a.Key == slog.TimeKey {
		return slog.Attr{}
	}
	return a
}
