package patchutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCheckPythonValidSource(t *testing.T) {
	src := []byte("def f():\n    return 1\n")
	require.Nil(t, CheckPython(context.Background(), src))
	require.True(t, ValidPython(context.Background(), src))
}

func TestCheckPythonUnbalancedParens(t *testing.T) {
	src := []byte("def f(:\n    return 1\n")
	issue := CheckPython(context.Background(), src)
	require.NotNil(t, issue)
	require.Equal(t, 1, issue.Line)
	require.Contains(t, issue.Error(), "SyntaxError")
}

func TestCheckPythonReportsLaterLine(t *testing.T) {
	src := []byte("x = 1\ny = 2\nz = ((1\n")
	issue := CheckPython(context.Background(), src)
	require.NotNil(t, issue)
	require.GreaterOrEqual(t, issue.Line, 3)
}

func TestValidPythonAfterPatchApplication(t *testing.T) {
	original := "def f():\n    return 1\n"
	good := "@@ -1,2 +1,2 @@\n def f():\n-    return 1\n+    return 2\n"
	bad := "@@ -1,2 +1,2 @@\n def f():\n-    return 1\n+    return ((1\n"

	require.True(t, ValidPython(context.Background(), []byte(ApplyUnified(original, good))))
	require.False(t, ValidPython(context.Background(), []byte(ApplyUnified(original, bad))))
}
