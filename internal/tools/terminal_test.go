package tools

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestExecCapturesStdout(t *testing.T) {
	term := &Terminal{Timeout: 5 * time.Second}
	res, err := term.Exec(context.Background(), "echo", "hello")
	require.NoError(t, err)
	require.Equal(t, 0, res.ExitCode)
	require.Equal(t, "hello", strings.TrimSpace(res.Stdout))
}

func TestExecNonZeroExitIsResult(t *testing.T) {
	term := &Terminal{Timeout: 5 * time.Second}
	res, err := term.Exec(context.Background(), "sh", "-c", "echo oops >&2; exit 3")
	require.NoError(t, err)
	require.Equal(t, 3, res.ExitCode)
	require.Contains(t, res.Stderr, "oops")
}

func TestExecMissingBinary(t *testing.T) {
	term := &Terminal{Timeout: 5 * time.Second}
	res, err := term.Exec(context.Background(), "definitely-not-a-binary-xyz")
	require.Error(t, err)
	require.Equal(t, -1, res.ExitCode)
}

func TestExecTimeout(t *testing.T) {
	term := &Terminal{Timeout: 100 * time.Millisecond}
	_, err := term.Exec(context.Background(), "sleep", "5")
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrTimeout))
}

func TestExecWorkingDir(t *testing.T) {
	dir := t.TempDir()
	term := &Terminal{WorkingDir: dir, Timeout: 5 * time.Second}
	res, err := term.Exec(context.Background(), "pwd")
	require.NoError(t, err)
	require.Equal(t, dir, strings.TrimSpace(res.Stdout))
}
