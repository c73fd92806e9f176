package testrun

// RawResult is the unprocessed outcome of a test command invocation.
type RawResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Combined returns stdout and stderr joined for pattern scanning.
func (r RawResult) Combined() string {
	if r.Stdout == "" {
		return r.Stderr
	}
	if r.Stderr == "" {
		return r.Stdout
	}
	return r.Stdout + "\n" + r.Stderr
}

// Failure is a single failing test extracted from pytest output.
type Failure struct {
	TestName    string
	FilePath    string
	ErrorOutput string
}

// OutcomeKind discriminates the classification of a test run.
type OutcomeKind int

const (
	// Passed means the suite succeeded, including the "no tests
	// collected" exit which pytest reports as code 5.
	Passed OutcomeKind = iota
	// DiscoveryError means pytest could not collect tests at all:
	// a syntax error or an import failure during collection.
	DiscoveryError
	// Failures means one or more individual tests failed.
	Failures
)

// Outcome is the classified result of one test run.
type Outcome struct {
	Kind      OutcomeKind
	RawOutput string

	// Populated for DiscoveryError.
	File    string
	Message string

	// Populated for Failures.
	Failures []Failure
}
