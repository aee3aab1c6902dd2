package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/sevigo/lint-warden/internal/jobs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	os.Exit(exitCode(err))
}

// exitCode maps a command error to the process exit status. Offenses exit
// with the configured failure code; anything else is a plain failure.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var findings *jobs.FindingsError
	if errors.As(err, &findings) {
		return findings.ExitCode
	}
	slog.Error("lint-warden failed", "error", err)
	return 1
}
