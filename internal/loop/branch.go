package loop

import (
	"fmt"
	"strings"
)

// BranchName derives a git branch name for a fix attempt. Characters the
// test identifier carries that are unsafe in ref names are each replaced
// with an underscore, so "tests/test_calc.py::test_add" becomes
// "tests_test_calc_py__test_add". Iterations after the first get a
// numeric suffix so each attempt lands on its own branch.
func BranchName(prefix, testName string, iteration int) string {
	var b strings.Builder
	for _, ch := range testName {
		if ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z' ||
			ch >= '0' && ch <= '9' || ch == '_' || ch == '-' {
			b.WriteRune(ch)
		} else {
			b.WriteByte('_')
		}
	}
	name := strings.Trim(b.String(), "_-")
	if prefix != "" {
		name = prefix + "_" + name
	}
	if iteration > 0 {
		name = fmt.Sprintf("%s_%d", name, iteration+1)
	}
	return name
}
