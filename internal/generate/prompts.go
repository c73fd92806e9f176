package generate

import "fmt"

// Prompt templates rendered for the patch-generating model. Semantics are
// tuned for local code models: always demand a unified diff, surface full
// file context when available, and carry prior attempts so the model can
// avoid repeating them.

const discoveryErrorTemplate = `Pytest failed during discovery with this error:
%s

Task:
1. Fix the above syntax/import issue in %s.
2. Do not change any other files.
3. Return a unified diff only.

Previous attempts to fix ` + "`%s`" + `:
%s

Context from %s:
%s

Instructions:
- Ensure the patch compiles without syntax errors
- Follow black formatting and flake8 linting standards
- Only change what's still broken
- If no changes are needed, respond with "NO_PATCH_NEEDED"

Generate a unified diff patch:`

const testFailureTemplate = `Test failure detected:

Test: %s
File: %s
Error: %s

Previous attempts to fix ` + "`%s`" + `:
%s

Full context from %s:
%s

Task:
1. Analyze the test failure and identify the root cause
2. Generate a minimal unified diff patch to fix the issue
3. Ensure the patch compiles without syntax errors
4. Follow black formatting and flake8 linting standards
5. Only change what's necessary to fix the failing test

If no changes are needed, respond with "NO_PATCH_NEEDED"

Generate a unified diff patch:`

const syntaxRetryTemplate = `%s

IMPORTANT: Your previous patch had syntax errors.
Please ensure the patch compiles without syntax errors.

Previous invalid patch:
%s

Generate a corrected unified diff patch:`

const lintRetryTemplate = `%s

IMPORTANT: Your patch broke formatting or linting.
Please adjust so that it passes ` + "`black` and `flake8`" + ` without changing style elsewhere.

Format/lint errors:
%s

Previous patch that failed checks:
%s

Generate a corrected unified diff patch:`

func discoveryErrorPrompt(errorExcerpt, filePath, fullContext, patchHistory string) string {
	if patchHistory == "" {
		patchHistory = "None"
	}
	return fmt.Sprintf(discoveryErrorTemplate, errorExcerpt, filePath, filePath, patchHistory, filePath, fullContext)
}

func testFailurePrompt(testName, filePath, errorOutput, fullContext, patchHistory string) string {
	if patchHistory == "" {
		patchHistory = "None"
	}
	return fmt.Sprintf(testFailureTemplate, testName, filePath, errorOutput, filePath, patchHistory, filePath, fullContext)
}

func syntaxRetryPrompt(originalPrompt, previousPatch string) string {
	return fmt.Sprintf(syntaxRetryTemplate, originalPrompt, previousPatch)
}

func lintRetryPrompt(originalPrompt, lintErrors, previousPatch string) string {
	return fmt.Sprintf(lintRetryTemplate, originalPrompt, lintErrors, previousPatch)
}
