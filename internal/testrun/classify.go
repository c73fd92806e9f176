package testrun

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	syntaxErrRe = regexp.MustCompile(`(\S+\.py):(\d+): SyntaxError: (.+)`)
	importErrRe = regexp.MustCompile(`ImportError while importing test module '([^']+)'`)
	importMsgRe = regexp.MustCompile(`(ModuleNotFoundError|ImportError): (.+)`)
	failedRe    = regexp.MustCompile(`(?m)^FAILED (\S+?)::(\S+)`)
)

// Classify maps a raw test run onto its outcome. Exit code 5 means pytest
// collected no tests, which counts as a pass for the convergence loop.
func Classify(raw RawResult) Outcome {
	output := raw.Combined()

	if raw.ExitCode == 0 || raw.ExitCode == 5 {
		return Outcome{Kind: Passed, RawOutput: output}
	}

	if m := syntaxErrRe.FindStringSubmatch(output); m != nil {
		return Outcome{
			Kind:      DiscoveryError,
			RawOutput: output,
			File:      m[1],
			Message:   fmt.Sprintf("SyntaxError: %s (line %s)", m[3], m[2]),
		}
	}

	if m := importErrRe.FindStringSubmatch(output); m != nil {
		msg := "Import error during test discovery"
		if inner := importMsgRe.FindStringSubmatch(output); inner != nil {
			msg = fmt.Sprintf("%s: %s", inner[1], inner[2])
		}
		return Outcome{
			Kind:      DiscoveryError,
			RawOutput: output,
			File:      m[1],
			Message:   msg,
		}
	}

	if failures := parseFailures(output); len(failures) > 0 {
		return Outcome{Kind: Failures, RawOutput: output, Failures: failures}
	}

	// Non-zero exit with no recognizable markers. Synthesize a single
	// failure carrying the full output so the caller still has context
	// to act on.
	return Outcome{
		Kind:      Failures,
		RawOutput: output,
		Failures: []Failure{{
			TestName:    "unknown",
			FilePath:    "unknown",
			ErrorOutput: output,
		}},
	}
}

// parseFailures extracts FAILED markers from verbose pytest output. Each
// failure's excerpt runs from its FAILED line to the next FAILED marker
// or summary separator line.
func parseFailures(output string) []Failure {
	lines := strings.Split(output, "\n")
	var failures []Failure
	for i, line := range lines {
		m := failedRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		excerpt := []string{line}
		for _, next := range lines[i+1:] {
			if failedRe.MatchString(next) || strings.HasPrefix(next, "=") {
				break
			}
			excerpt = append(excerpt, next)
		}
		failures = append(failures, Failure{
			TestName:    m[2],
			FilePath:    m[1],
			ErrorOutput: strings.TrimSpace(strings.Join(excerpt, "\n")),
		})
	}
	return failures
}
