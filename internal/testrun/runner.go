package testrun

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/rhythmatician/dev-agent/internal/patchutil"
	"github.com/rhythmatician/dev-agent/internal/tools"
)

// Executor runs a command and reports its captured output. It is
// satisfied by *tools.Terminal.
type Executor interface {
	Exec(ctx context.Context, name string, args ...string) (tools.ExecResult, error)
}

// Runner executes the configured test command in a target repository and
// classifies the result.
type Runner struct {
	Exec         Executor
	Command      string
	RepoDir      string
	SkipPrecheck bool
	Logger       *zap.Logger
}

// Run performs a syntax pre-check over the repository's Python files,
// then executes the test command and classifies its output.
func (r *Runner) Run(ctx context.Context) (Outcome, error) {
	if !r.SkipPrecheck {
		if out, found := r.precheck(ctx); found {
			return Classify(RawResult{ExitCode: 2, Stdout: out}), nil
		}
	}

	cmd := strings.TrimSpace(r.Command)
	if cmd == "" {
		cmd = "pytest"
	}
	tokens := rewriteCommand(cmd)
	res, err := r.Exec.Exec(ctx, tokens[0], tokens[1:]...)
	if err != nil {
		msg := fmt.Sprintf("Error running command '%s': %v", cmd, err)
		if r.Logger != nil {
			r.Logger.Warn("test command failed to run", zap.String("command", cmd), zap.Error(err))
		}
		return Classify(RawResult{ExitCode: 1, Stdout: msg}), nil
	}
	return Classify(RawResult{ExitCode: res.ExitCode, Stdout: res.Stdout, Stderr: res.Stderr}), nil
}

// precheck parses every Python file under RepoDir and reports the first
// syntax error as synthetic pytest-style discovery output. Catching these
// before invoking pytest gives the generator a precise file and line.
func (r *Runner) precheck(ctx context.Context) (string, bool) {
	root := r.RepoDir
	if root == "" {
		root = "."
	}
	var result string
	var found bool
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || found {
			return filepath.SkipAll
		}
		if d.IsDir() {
			switch d.Name() {
			case ".git", "venv", ".venv", "__pycache__", "node_modules":
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(d.Name(), ".py") {
			return nil
		}
		src, rerr := os.ReadFile(path)
		if rerr != nil {
			return nil
		}
		if issue := patchutil.CheckPython(ctx, src); issue != nil {
			rel, relErr := filepath.Rel(root, path)
			if relErr != nil {
				rel = path
			}
			result = fmt.Sprintf("%s:%d: SyntaxError: %s", rel, issue.Line, issue.Message)
			found = true
			return filepath.SkipAll
		}
		return nil
	})
	return result, found
}

// rewriteCommand tokenizes the configured test command, respecting
// quoting. A bare pytest invocation becomes python -m pytest so the
// target repo's interpreter resolves the package, with verbose output
// forced so per-test FAILED markers appear; other runners pass through
// untouched.
func rewriteCommand(cmd string) []string {
	tokens := tokenize(cmd)
	if len(tokens) > 0 && tokens[0] == "pytest" {
		tokens = append([]string{"python", "-m", "pytest"}, tokens[1:]...)
		verbose := false
		for _, tok := range tokens {
			if tok == "-v" || tok == "--verbose" {
				verbose = true
				break
			}
		}
		if !verbose {
			tokens = append(tokens, "-v")
		}
	}
	return tokens
}

// tokenize splits a command line on whitespace while respecting single
// and double quotes. Quotes are stripped from the resulting tokens.
func tokenize(s string) []string {
	var tokens []string
	var cur strings.Builder
	var quote rune
	inToken := false
	for _, ch := range s {
		switch {
		case quote != 0:
			if ch == quote {
				quote = 0
			} else {
				cur.WriteRune(ch)
			}
		case ch == '\'' || ch == '"':
			quote = ch
			inToken = true
		case ch == ' ' || ch == '\t':
			if inToken {
				tokens = append(tokens, cur.String())
				cur.Reset()
				inToken = false
			}
		default:
			cur.WriteRune(ch)
			inToken = true
		}
	}
	if inToken {
		tokens = append(tokens, cur.String())
	}
	return tokens
}
