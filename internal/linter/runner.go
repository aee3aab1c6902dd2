package linter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/sevigo/lint-warden/internal/core"
)

// Source produces findings for a set of repository-relative files.
type Source interface {
	Run(ctx context.Context, dir string, paths, extraArgs []string) ([]core.Finding, error)
}

// execFunc runs a command in dir and returns its separated output streams.
type execFunc func(ctx context.Context, dir, name string, args ...string) (stdout, stderr []byte, err error)

// Runner invokes the linter as a subprocess.
type Runner struct {
	command []string
	logger  *slog.Logger
	exec    execFunc
}

// NewRunner creates a Runner for command, which may carry a prefix such as
// "bundle exec erb_lint".
func NewRunner(command string, logger *slog.Logger) *Runner {
	return &Runner{
		command: strings.Fields(command),
		logger:  logger,
		exec:    runCommand,
	}
}

// Run lints paths inside dir. An empty path list skips the invocation.
// The linter exits non-zero whenever it reports offenses, so the exit status
// only matters when the output cannot be parsed.
func (r *Runner) Run(ctx context.Context, dir string, paths, extraArgs []string) ([]core.Finding, error) {
	if len(paths) == 0 {
		r.logger.Info("No changed files to lint, skipping linter")
		return []core.Finding{}, nil
	}
	if len(r.command) == 0 {
		return nil, fmt.Errorf("linter command is empty")
	}

	args := append([]string{}, r.command[1:]...)
	args = append(args, paths...)
	args = append(args, "--format", "json")
	args = append(args, extraArgs...)

	r.logger.Info("Running linter", "command", r.command[0], "args", strings.Join(args, " "))
	stdout, stderr, runErr := r.exec(ctx, dir, r.command[0], args...)

	var exitErr *exec.ExitError
	if runErr != nil && !errors.As(runErr, &exitErr) {
		return nil, fmt.Errorf("failed to start linter %q: %w", r.command[0], runErr)
	}

	findings, err := ParseReport(stdout)
	if err != nil {
		if msg := strings.TrimSpace(string(stderr)); msg != "" {
			err = fmt.Errorf("%w (stderr: %s)", err, msg)
		}
		if runErr != nil {
			err = fmt.Errorf("%w (linter exited: %v)", err, runErr)
		}
		return nil, err
	}

	r.logger.Info("Linter finished", "files", len(paths), "findings", len(findings))
	return findings, nil
}

func runCommand(ctx context.Context, dir, name string, args ...string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}
