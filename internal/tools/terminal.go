package tools

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// Terminal executes commands in a working directory with a wall-clock timeout.
type Terminal struct {
	WorkingDir string
	Timeout    time.Duration
}

// ExecResult carries output and status code.
type ExecResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// ErrTimeout is returned when a command exceeds the configured timeout.
var ErrTimeout = errors.New("command timed out")

// Exec runs a command and captures its output. A non-zero exit status is
// reported through ExitCode, not through the error return; the error is
// reserved for spawn failures and timeouts.
func (t *Terminal) Exec(ctx context.Context, command string, args ...string) (ExecResult, error) {
	if command == "" {
		return ExecResult{}, fmt.Errorf("command is required")
	}

	timeout := t.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, command, args...)
	if t.WorkingDir != "" {
		cmd.Dir = t.WorkingDir
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	res := ExecResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err == nil {
		return res, nil
	}

	if ctx.Err() == context.DeadlineExceeded {
		res.ExitCode = -1
		return res, fmt.Errorf("%w after %s", ErrTimeout, timeout)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		// The command ran to completion; its exit status is a result,
		// not an execution error.
		return res, nil
	}

	res.ExitCode = -1
	return res, err
}
