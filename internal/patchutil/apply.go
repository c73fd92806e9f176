// Package patchutil provides in-memory unified-diff application and
// syntax validation for generated patches.
package patchutil

import (
	"strings"

	"github.com/sourcegraph/go-diff/diff"
)

// ApplyUnified applies a unified diff to original purely in memory and
// returns the modified source. Diffs with no recognizable hunk return the
// original unchanged; downstream validation then judges the unmodified
// source rather than failing here.
func ApplyUnified(original, diffText string) string {
	hunks := parseHunks(diffText)
	if len(hunks) == 0 {
		return original
	}

	hadNewline := strings.HasSuffix(original, "\n")
	trimmed := strings.TrimSuffix(original, "\n")

	var lines []string
	if trimmed != "" || hadNewline {
		lines = strings.Split(trimmed, "\n")
	}

	out := make([]string, 0, len(lines))
	idx := 0

	for _, h := range hunks {
		start := int(h.OrigStartLine) - 1
		if start < idx {
			start = idx
		}
		if start > len(lines) {
			start = len(lines)
		}
		out = append(out, lines[idx:start]...)
		idx = start

		for _, bodyLine := range strings.Split(string(h.Body), "\n") {
			if bodyLine == "" {
				continue
			}
			switch bodyLine[0] {
			case ' ':
				if idx < len(lines) {
					out = append(out, lines[idx])
					idx++
				}
			case '-':
				if idx < len(lines) {
					idx++
				}
			case '+':
				out = append(out, bodyLine[1:])
			case '\\':
				// "\ No newline at end of file" marker
			}
		}
	}

	out = append(out, lines[idx:]...)

	result := strings.Join(out, "\n")
	if hadNewline && result != "" {
		result += "\n"
	}
	return result
}

// parseHunks extracts hunks from diff text, tolerating both full file diffs
// (with ---/+++ headers) and bare hunk fragments.
func parseHunks(diffText string) []*diff.Hunk {
	b := []byte(diffText)

	if fd, err := diff.ParseFileDiff(b); err == nil && len(fd.Hunks) > 0 {
		return fd.Hunks
	}

	// Bare hunks: skip any preamble before the first @@ line.
	if i := firstHunkOffset(diffText); i >= 0 {
		if hunks, err := diff.ParseHunks([]byte(diffText[i:])); err == nil {
			return hunks
		}
	}
	return nil
}

func firstHunkOffset(diffText string) int {
	offset := 0
	for _, line := range strings.SplitAfter(diffText, "\n") {
		if strings.HasPrefix(line, "@@") {
			return offset
		}
		offset += len(line)
	}
	return -1
}
