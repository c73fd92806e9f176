package metrics

import (
	"fmt"
	"sort"
	"strings"
)

// Report renders a human-readable summary of the collection.
func Report(c Collection) string {
	s := c.Summarize()

	lines := []string{
		"=================================================",
		"            Dev Agent Metrics Report              ",
		"=================================================",
		fmt.Sprintf("Total Tests: %d", s.TotalTests),
		fmt.Sprintf("Success Rate: %.1f%%", s.SuccessRate*100),
		fmt.Sprintf("Successful Patches: %d", s.SuccessfulPatches),
		fmt.Sprintf("Failed Patches: %d", s.FailedPatches),
		fmt.Sprintf("Total Iterations: %d", s.TotalIterations),
		fmt.Sprintf("Average Iterations: %.1f", s.AvgIterations),
		fmt.Sprintf("Average Duration: %.1fms", s.AvgDurationMS),
		"",
		"Backend Performance:",
		"-------------------------------------------------",
	}

	names := make([]string, 0, len(s.Backends))
	for name := range s.Backends {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		b := s.Backends[name]
		lines = append(lines,
			fmt.Sprintf("  %s:", name),
			fmt.Sprintf("    Tests: %d", b.Tests),
			fmt.Sprintf("    Success Rate: %.1f%%", b.SuccessRate*100),
			fmt.Sprintf("    Average Iterations: %.1f", b.AvgIterations),
			fmt.Sprintf("    Average Duration: %.1fms", b.AvgDurationMS),
			"",
		)
	}

	lines = append(lines, "=================================================")
	return strings.Join(lines, "\n")
}
