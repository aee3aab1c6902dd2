package linter

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedCall struct {
	dir  string
	name string
	args []string
}

func newTestRunner(command string, stdout, stderr string, err error) (*Runner, *[]recordedCall) {
	var calls []recordedCall
	r := NewRunner(command, slog.New(slog.NewTextHandler(io.Discard, nil)))
	r.exec = func(_ context.Context, dir, name string, args ...string) ([]byte, []byte, error) {
		calls = append(calls, recordedCall{dir: dir, name: name, args: args})
		return []byte(stdout), []byte(stderr), err
	}
	return r, &calls
}

// exitError produces a real *exec.ExitError with a non-zero status.
func exitError(t *testing.T) error {
	t.Helper()
	err := exec.Command("sh", "-c", "exit 1").Run()
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		t.Skip("cannot produce an exit error on this platform")
	}
	return err
}

func TestRunner_SkipsEmptyInput(t *testing.T) {
	r, calls := newTestRunner("erb_lint", "", "", nil)

	findings, err := r.Run(context.Background(), "/repo", nil, nil)
	require.NoError(t, err)
	assert.Empty(t, findings)
	assert.Empty(t, *calls)
}

func TestRunner_BuildsCommandLine(t *testing.T) {
	r, calls := newTestRunner("bundle exec erb_lint", `{"files": []}`, "", nil)

	_, err := r.Run(context.Background(), "/repo", []string{"a.erb", "b.erb"}, []string{"--enable-all-linters"})
	require.NoError(t, err)
	require.Len(t, *calls, 1)

	call := (*calls)[0]
	assert.Equal(t, "/repo", call.dir)
	assert.Equal(t, "bundle", call.name)
	assert.Equal(t, []string{"exec", "erb_lint", "a.erb", "b.erb", "--format", "json", "--enable-all-linters"}, call.args)
}

func TestRunner_NonZeroExitWithReport(t *testing.T) {
	r, _ := newTestRunner("erb_lint", sampleReport, "", exitError(t))

	findings, err := r.Run(context.Background(), "/repo", []string{"app/views/a.html.erb"}, nil)
	require.NoError(t, err)
	assert.Len(t, findings, 3)
}

func TestRunner_MalformedOutputIsFatal(t *testing.T) {
	r, _ := newTestRunner("erb_lint", "undefined method `foo'", "boom", exitError(t))

	_, err := r.Run(context.Background(), "/repo", []string{"a.erb"}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedReport))
	assert.Contains(t, err.Error(), "boom")
}

func TestRunner_MissingBinary(t *testing.T) {
	r, _ := newTestRunner("erb_lint", "", "", exec.ErrNotFound)

	_, err := r.Run(context.Background(), "/repo", []string{"a.erb"}, nil)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrMalformedReport))
}
