package generate

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rhythmatician/dev-agent/internal/llm"
	"github.com/rhythmatician/dev-agent/internal/llm/mock"
)

const sourceFile = `def add(a, b):
    return a - b
`

const validDiff = `--- a/calc.py
+++ b/calc.py
@@ -1,2 +1,2 @@
 def add(a, b):
-    return a - b
+    return a + b
`

const brokenDiff = `--- a/calc.py
+++ b/calc.py
@@ -1,2 +1,2 @@
 def add(a, b):
-    return a - b
+    return a + b)
`

func newGenerator(t *testing.T, provider llm.Provider) (*Generator, string) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "calc.py"), []byte(sourceFile), 0o644))

	reg := llm.NewRegistry()
	reg.RegisterProvider(provider.Name(), provider)
	return &Generator{
		Registry: reg,
		Backend:  provider.Name(),
		Model:    "codellama",
		RepoDir:  dir,
	}, dir
}

func TestGenerateValidPatchFirstTry(t *testing.T) {
	p := &mock.Provider{NameValue: "mock", Responses: []string{validDiff}}
	g, _ := newGenerator(t, p)

	cand, err := g.Generate(context.Background(), FailureContext{
		TestName:    "test_add",
		FilePath:    "calc.py",
		ErrorOutput: "assert 0 == 2",
	})
	require.NoError(t, err)
	require.Equal(t, validDiff, cand.DiffText)
	require.Len(t, p.Calls, 1)
	require.Contains(t, p.Calls[0].Prompt, "Test: test_add")
	require.Contains(t, p.Calls[0].Prompt, "return a - b")
	require.Contains(t, p.Calls[0].Prompt, "None")
}

func TestGenerateRetriesOnSyntaxError(t *testing.T) {
	p := &mock.Provider{NameValue: "mock", Responses: []string{brokenDiff, validDiff}}
	g, _ := newGenerator(t, p)

	cand, err := g.Generate(context.Background(), FailureContext{
		TestName: "test_add",
		FilePath: "calc.py",
	})
	require.NoError(t, err)
	require.Equal(t, validDiff, cand.DiffText)
	require.Len(t, p.Calls, 2)
	require.Contains(t, p.Calls[1].Prompt, "previous patch had syntax errors")
	require.Contains(t, p.Calls[1].Prompt, brokenDiff)
}

func TestGenerateExhaustsRetries(t *testing.T) {
	p := &mock.Provider{NameValue: "mock", Responses: []string{brokenDiff}}
	g, _ := newGenerator(t, p)

	_, err := g.Generate(context.Background(), FailureContext{
		TestName: "test_add",
		FilePath: "calc.py",
	})
	require.Error(t, err)
	require.Len(t, p.Calls, 3)
}

func TestGenerateMissingSourceFallsBack(t *testing.T) {
	p := &mock.Provider{NameValue: "mock", Responses: []string{validDiff}}
	g, _ := newGenerator(t, p)

	cand, err := g.Generate(context.Background(), FailureContext{
		TestName: "test_add",
		FilePath: "missing.py",
	})
	require.NoError(t, err)
	require.Equal(t, validDiff, cand.DiffText)
	require.Len(t, p.Calls, 1)
}

func TestGenerateMissingSourceRequireContext(t *testing.T) {
	p := &mock.Provider{NameValue: "mock", Responses: []string{validDiff}}
	g, _ := newGenerator(t, p)
	g.RequireContext = true

	_, err := g.Generate(context.Background(), FailureContext{
		TestName: "test_add",
		FilePath: "missing.py",
	})
	require.ErrorIs(t, err, ErrSourceUnavailable)
	require.Empty(t, p.Calls)
}

func TestGenerateNoPatchNeeded(t *testing.T) {
	p := &mock.Provider{NameValue: "mock", Responses: []string{"NO_PATCH_NEEDED"}}
	g, _ := newGenerator(t, p)

	_, err := g.Generate(context.Background(), FailureContext{
		TestName: "test_add",
		FilePath: "calc.py",
	})
	require.ErrorIs(t, err, ErrNoPatchNeeded)
}

func TestGenerateDiscoveryPrompt(t *testing.T) {
	p := &mock.Provider{NameValue: "mock", Responses: []string{validDiff}}
	g, _ := newGenerator(t, p)

	_, err := g.Generate(context.Background(), FailureContext{
		FilePath:    "calc.py",
		ErrorOutput: "calc.py:1: SyntaxError: invalid syntax",
		Discovery:   true,
	})
	require.NoError(t, err)
	require.Contains(t, p.Calls[0].Prompt, "Pytest failed during discovery")
}

func TestGenerateUnknownBackend(t *testing.T) {
	g := &Generator{Registry: llm.NewRegistry(), Backend: "nope"}
	_, err := g.Generate(context.Background(), FailureContext{})
	require.Error(t, err)
}

func TestGeneratePropagatesProviderError(t *testing.T) {
	p := &mock.Provider{
		NameValue: "mock",
		CompleteFn: func(ctx context.Context, req llm.Request) (llm.Response, error) {
			return llm.Response{}, errors.New("backend down")
		},
	}
	g, _ := newGenerator(t, p)

	_, err := g.Generate(context.Background(), FailureContext{
		TestName: "test_add",
		FilePath: "calc.py",
	})
	require.Error(t, err)
}
