package patchutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const exampleSource = "def example_function():\n    return 1\n\n\ndef untouched():\n    return 3\n"

const exampleDiff = `diff --git a/example.py b/example.py
index 1234567..abcdefg 100644
--- a/example.py
+++ b/example.py
@@ -1,2 +1,2 @@
 def example_function():
-    return 1
+    return 2
`

func TestApplyUnifiedSingleHunk(t *testing.T) {
	got := ApplyUnified(exampleSource, exampleDiff)
	want := "def example_function():\n    return 2\n\n\ndef untouched():\n    return 3\n"
	require.Equal(t, want, got)
}

func TestApplyUnifiedBareHunk(t *testing.T) {
	diff := "@@ -1,2 +1,2 @@\n def example_function():\n-    return 1\n+    return 2\n"
	got := ApplyUnified(exampleSource, diff)
	require.Contains(t, got, "return 2")
	require.NotContains(t, got, "return 1")
	require.Contains(t, got, "def untouched():")
}

func TestApplyUnifiedNoHunkHeaderReturnsOriginal(t *testing.T) {
	require.Equal(t, exampleSource, ApplyUnified(exampleSource, "this is not a diff"))
	require.Equal(t, exampleSource, ApplyUnified(exampleSource, ""))
}

func TestApplyUnifiedHunkBeyondStart(t *testing.T) {
	diff := `--- a/example.py
+++ b/example.py
@@ -5,2 +5,2 @@
 def untouched():
-    return 3
+    return 4
`
	got := ApplyUnified(exampleSource, diff)
	want := "def example_function():\n    return 1\n\n\ndef untouched():\n    return 4\n"
	require.Equal(t, want, got)
}

func TestApplyUnifiedMultiHunk(t *testing.T) {
	diff := `--- a/example.py
+++ b/example.py
@@ -1,2 +1,2 @@
 def example_function():
-    return 1
+    return 2
@@ -5,2 +5,2 @@
 def untouched():
-    return 3
+    return 4
`
	got := ApplyUnified(exampleSource, diff)
	require.Contains(t, got, "return 2")
	require.Contains(t, got, "return 4")
	require.NotContains(t, got, "return 1")
	require.NotContains(t, got, "return 3")
}

func TestApplyUnifiedAdditionOnly(t *testing.T) {
	diff := "@@ -1,1 +1,2 @@\n def example_function():\n+    # fixed\n"
	got := ApplyUnified("def example_function():\n    return 1\n", diff)
	want := "def example_function():\n    # fixed\n    return 1\n"
	require.Equal(t, want, got)
}
