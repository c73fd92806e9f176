package generate

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/rhythmatician/dev-agent/internal/llm"
	"github.com/rhythmatician/dev-agent/internal/patchutil"
)

const (
	defaultMaxRetries  = 2
	defaultMaxTokens   = 1024
	defaultTemperature = 0.2
)

var (
	// ErrSourceUnavailable reports that the failing file could not be read
	// and the generator is configured to require full file context.
	ErrSourceUnavailable = errors.New("source unavailable")
	// ErrNoPatchNeeded reports that the model judged the code already
	// correct.
	ErrNoPatchNeeded = errors.New("no patch needed")
)

// FailureContext carries everything the generator needs about one failure.
type FailureContext struct {
	TestName    string
	FilePath    string
	ErrorOutput string
	// Discovery marks collection-phase failures (syntax or import
	// errors) which use a different prompt shape.
	Discovery bool
	// History holds diffs from earlier loop iterations, oldest first.
	History []string
}

// Candidate is a generated patch awaiting validation.
type Candidate struct {
	DiffText   string
	Confidence float64
}

// Generator produces patch candidates from an LLM backend. Candidates are
// syntax-checked in memory before being returned; syntactically broken
// responses trigger a bounded retry with a corrective prompt.
type Generator struct {
	Registry       *llm.Registry
	Backend        string
	Model          string
	RepoDir        string
	MaxRetries     int
	RequireContext bool
	Logger         *zap.Logger
}

// Generate produces a validated patch candidate for the failure.
func (g *Generator) Generate(ctx context.Context, fc FailureContext) (Candidate, error) {
	provider, err := g.Registry.Resolve(g.Backend)
	if err != nil {
		return Candidate{}, fmt.Errorf("resolve backend: %w", err)
	}

	source, readErr := g.readSource(fc.FilePath)
	if readErr != nil {
		if g.RequireContext {
			return Candidate{}, fmt.Errorf("%w: %s", ErrSourceUnavailable, fc.FilePath)
		}
		// No file context means the in-memory syntax check has nothing
		// to apply against, so skip the retry loop.
		if g.Logger != nil {
			g.Logger.Warn("generating without file context",
				zap.String("file", fc.FilePath), zap.Error(readErr))
		}
		diff, cerr := g.complete(ctx, provider, g.buildPrompt(fc, ""))
		if cerr != nil {
			return Candidate{}, cerr
		}
		return Candidate{DiffText: diff}, nil
	}

	maxRetries := g.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	basePrompt := g.buildPrompt(fc, source)
	prompt := basePrompt
	var lastDiff string

	for attempt := 0; attempt <= maxRetries; attempt++ {
		diff, cerr := g.complete(ctx, provider, prompt)
		if cerr != nil {
			if errors.Is(cerr, ErrNoPatchNeeded) {
				return Candidate{}, cerr
			}
			if attempt == maxRetries {
				return Candidate{}, fmt.Errorf("generate patch: %w", cerr)
			}
			continue
		}

		patched := patchutil.ApplyUnified(source, diff)
		if patchutil.ValidPython(ctx, []byte(patched)) {
			return Candidate{DiffText: diff}, nil
		}
		if g.Logger != nil {
			g.Logger.Debug("candidate failed syntax check",
				zap.String("test", fc.TestName), zap.Int("attempt", attempt))
		}
		lastDiff = diff
		prompt = syntaxRetryPrompt(basePrompt, lastDiff)
	}
	return Candidate{}, fmt.Errorf("no syntactically valid patch after %d attempts", maxRetries+1)
}

func (g *Generator) complete(ctx context.Context, provider llm.Provider, prompt string) (string, error) {
	resp, err := provider.Complete(ctx, llm.Request{
		Model:       g.Model,
		Prompt:      prompt,
		MaxTokens:   defaultMaxTokens,
		Temperature: defaultTemperature,
	})
	if err != nil {
		return "", err
	}
	content := strings.TrimSpace(resp.Content)
	if strings.Contains(content, "NO_PATCH_NEEDED") {
		return "", ErrNoPatchNeeded
	}
	if content == "" {
		return "", errors.New("empty completion")
	}
	return content, nil
}

func (g *Generator) buildPrompt(fc FailureContext, source string) string {
	history := strings.Join(fc.History, "\n\n")
	if fc.Discovery {
		return discoveryErrorPrompt(fc.ErrorOutput, fc.FilePath, source, history)
	}
	return testFailurePrompt(fc.TestName, fc.FilePath, fc.ErrorOutput, source, history)
}

func (g *Generator) readSource(relPath string) (string, error) {
	if relPath == "" {
		return "", errors.New("no file path in failure")
	}
	path := relPath
	if g.RepoDir != "" && !filepath.IsAbs(relPath) {
		path = filepath.Join(g.RepoDir, relPath)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
