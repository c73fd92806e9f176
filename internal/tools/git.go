package tools

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"

	"go.uber.org/zap"
)

// Git provides the version-control mutations used by the convergence loop.
// Every method shells out to git (or gh) in WorkingDir.
type Git struct {
	WorkingDir string
	Remote     string
	Logger     *zap.Logger
}

// CreateBranch creates and checks out a new branch.
func (g *Git) CreateBranch(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("branch name is required")
	}
	out, err := g.run([]string{"checkout", "-b", name}, "")
	if err != nil {
		return fmt.Errorf("create branch %s: %s: %w", name, strings.TrimSpace(out), err)
	}
	return nil
}

// CanApply dry-runs the patch with git apply --check. Tool invocation
// errors report as false so callers treat validation failure uniformly.
func (g *Git) CanApply(diffText string) bool {
	_, err := g.run([]string{"apply", "--check", "-"}, diffText)
	return err == nil
}

// Apply applies the patch to the working tree.
func (g *Git) Apply(diffText string) error {
	out, err := g.run([]string{"apply", "-"}, diffText)
	if err != nil {
		return fmt.Errorf("apply patch: %s: %w", strings.TrimSpace(out), err)
	}
	return nil
}

// Commit stages all changes and commits with the given message.
func (g *Git) Commit(message string) error {
	if out, err := g.run([]string{"add", "-A"}, ""); err != nil {
		return fmt.Errorf("stage changes: %s: %w", strings.TrimSpace(out), err)
	}
	out, err := g.run([]string{"commit", "-m", message}, "")
	if err != nil {
		return fmt.Errorf("commit: %s: %w", strings.TrimSpace(out), err)
	}
	return nil
}

// Push pushes the branch to the configured remote.
func (g *Git) Push(branch string) error {
	remote := g.Remote
	if remote == "" {
		remote = "origin"
	}
	out, err := g.run([]string{"push", "-u", remote, branch}, "")
	if err != nil {
		return fmt.Errorf("push %s: %s: %w", branch, strings.TrimSpace(out), err)
	}
	return nil
}

// OpenPR opens a pull request via the GitHub CLI. Returns false on any
// failure; PR creation is best-effort and never aborts the loop.
func (g *Git) OpenPR(title, body string) bool {
	cmd := exec.Command("gh", "pr", "create", "--title", title, "--body", body)
	if g.WorkingDir != "" {
		cmd.Dir = g.WorkingDir
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if g.Logger != nil {
			g.Logger.Warn("pr creation failed",
				zap.String("stderr", strings.TrimSpace(stderr.String())),
				zap.Error(err))
		}
		return false
	}
	if g.Logger != nil {
		g.Logger.Info("pr created", zap.String("url", strings.TrimSpace(stdout.String())))
	}
	return true
}

// FormatLintResult reports the outcome of a format/lint check.
type FormatLintResult struct {
	Passed bool
	Detail string
}

// CheckFormatAndLint runs black --check and flake8 against a file. The
// check is available to callers but the convergence loop does not gate on
// it; see the loop for where patches are accepted.
func (g *Git) CheckFormatAndLint(path string) FormatLintResult {
	for _, tool := range [][]string{
		{"black", "--check", path},
		{"flake8", path},
	} {
		cmd := exec.Command(tool[0], tool[1:]...)
		if g.WorkingDir != "" {
			cmd.Dir = g.WorkingDir
		}
		var combined bytes.Buffer
		cmd.Stdout = &combined
		cmd.Stderr = &combined

		if err := cmd.Run(); err != nil {
			return FormatLintResult{
				Passed: false,
				Detail: strings.TrimSpace(combined.String()),
			}
		}
	}
	return FormatLintResult{Passed: true}
}

func (g *Git) run(args []string, input string) (string, error) {
	cmd := exec.Command("git", args...)
	if g.WorkingDir != "" {
		cmd.Dir = g.WorkingDir
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if input != "" {
		cmd.Stdin = strings.NewReader(input)
	}

	if err := cmd.Run(); err != nil {
		return stderr.String(), err
	}
	return stdout.String(), nil
}
