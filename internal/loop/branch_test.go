package loop

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBranchName(t *testing.T) {
	cases := []struct {
		test string
		iter int
		want string
	}{
		{"test_add", 0, "dev-agent/fix_test_add"},
		{"test_add", 1, "dev-agent/fix_test_add_2"},
		{"test_add", 4, "dev-agent/fix_test_add_5"},
		{"tests/test_calc.py::test_add", 0, "dev-agent/fix_tests_test_calc_py__test_add"},
		{"test add (slow)", 0, "dev-agent/fix_test_add__slow"},
		{"::weird::", 0, "dev-agent/fix_weird"},
	}
	for _, tc := range cases {
		got := BranchName("dev-agent/fix", tc.test, tc.iter)
		require.Equal(t, tc.want, got, "test %q iter %d", tc.test, tc.iter)
	}
}

func TestBranchNameNoPrefix(t *testing.T) {
	require.Equal(t, "test_add", BranchName("", "test_add", 0))
}
