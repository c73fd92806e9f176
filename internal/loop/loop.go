package loop

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/rhythmatician/dev-agent/internal/generate"
	"github.com/rhythmatician/dev-agent/internal/metrics"
	"github.com/rhythmatician/dev-agent/internal/observability"
	"github.com/rhythmatician/dev-agent/internal/testrun"
)

// State is the terminal state of a convergence run.
type State int

const (
	// NothingToDo means the suite already passed before any fix attempt.
	NothingToDo State = iota
	// Converged means a generated fix made the suite pass.
	Converged
	// Exhausted means the iteration budget ran out with tests still failing.
	Exhausted
	// Aborted means the run stopped on an unrecoverable step failure.
	Aborted
)

func (s State) String() string {
	switch s {
	case NothingToDo:
		return "nothing-to-do"
	case Converged:
		return "converged"
	case Exhausted:
		return "exhausted"
	case Aborted:
		return "aborted"
	}
	return "unknown"
}

// AbortReason narrows an Aborted state to the step that failed.
type AbortReason int

const (
	AbortNone AbortReason = iota
	AbortGeneration
	AbortBranch
	AbortValidation
	AbortApplication
	AbortCommit
	AbortTestRun
	AbortAnomaly
)

func (r AbortReason) String() string {
	switch r {
	case AbortGeneration:
		return "generation"
	case AbortBranch:
		return "branch"
	case AbortValidation:
		return "validation"
	case AbortApplication:
		return "application"
	case AbortCommit:
		return "commit"
	case AbortTestRun:
		return "test-run"
	case AbortAnomaly:
		return "anomaly"
	}
	return "none"
}

// Result summarizes a finished convergence run.
type Result struct {
	State      State
	Reason     AbortReason
	TestName   string
	Iterations int
	Branch     string
	Duration   time.Duration
	Err        error
}

// ExitCode maps the result onto the process exit code contract:
// 0 for a passing suite, 1 for budget exhaustion and step anomalies,
// 2 for patch validation or application failures.
func (r Result) ExitCode() int {
	switch r.State {
	case NothingToDo, Converged:
		return 0
	case Aborted:
		if r.Reason == AbortValidation || r.Reason == AbortApplication {
			return 2
		}
		return 1
	default:
		return 1
	}
}

// TestRunner executes and classifies one test run.
type TestRunner interface {
	Run(ctx context.Context) (testrun.Outcome, error)
}

// PatchGenerator produces a patch candidate for a failure.
type PatchGenerator interface {
	Generate(ctx context.Context, fc generate.FailureContext) (generate.Candidate, error)
}

// VCS is the git surface the loop mutates through.
type VCS interface {
	CreateBranch(name string) error
	CanApply(diffText string) bool
	Apply(diffText string) error
	Commit(message string) error
	Push(branch string) error
	OpenPR(title, body string) bool
}

// MetricsSink persists one patch record per finished run. *metrics.Store
// satisfies it.
type MetricsSink interface {
	Append(metrics.PatchRecord) error
}

// Loop drives the run-classify-generate-apply cycle until the suite
// passes, the budget runs out, or a step fails unrecoverably.
type Loop struct {
	Tests         TestRunner
	Generator     PatchGenerator
	VCS           VCS
	MaxIterations int
	BranchPrefix  string
	AutoPR        bool
	Backend       string
	Model         string
	Sink          MetricsSink
	Obs           *observability.Metrics
	Logger        *zap.Logger
}

// Run executes the convergence loop. Each iteration starts with a test
// run; the run that observes a green suite also terminates the loop, so a
// budget of N allows exactly N generation attempts.
func (l *Loop) Run(ctx context.Context) Result {
	start := time.Now()
	logger := l.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var (
		history  []string
		lastName string
		branch   string
		applied  int
	)

	finish := func(res Result) Result {
		res.Duration = time.Since(start)
		res.Iterations = applied
		res.TestName = lastName
		res.Branch = branch
		l.record(res)
		return res
	}

	for iter := 0; ; iter++ {
		outcome, err := l.Tests.Run(ctx)
		if err != nil {
			return finish(Result{State: Aborted, Reason: AbortTestRun, Err: err})
		}
		l.Obs.RecordTestRun(outcomeLabel(outcome.Kind))

		if outcome.Kind == testrun.Passed {
			if applied == 0 {
				logger.Info("no test failures detected")
				return finish(Result{State: NothingToDo})
			}
			logger.Info("suite green after fix",
				zap.String("test", lastName), zap.Int("iterations", applied))
			if err := l.VCS.Push(branch); err != nil {
				logger.Warn("push failed", zap.String("branch", branch), zap.Error(err))
			} else if l.AutoPR {
				title := commitMessage(lastName)
				body := fmt.Sprintf("Automated fix for %s after %d iteration(s) using %s/%s.",
					lastName, applied, l.Backend, l.Model)
				if !l.VCS.OpenPR(title, body) {
					logger.Warn("pr creation failed", zap.String("branch", branch))
				}
			}
			return finish(Result{State: Converged})
		}

		if iter == l.MaxIterations {
			logger.Warn("iteration budget exhausted",
				zap.Int("max_iterations", l.MaxIterations), zap.String("test", lastName))
			return finish(Result{State: Exhausted})
		}

		if outcome.Kind == testrun.Failures && len(outcome.Failures) == 0 {
			return finish(Result{State: Aborted, Reason: AbortAnomaly,
				Err: fmt.Errorf("no failures detected on non-passing run")})
		}

		fc, display, refName := failureContext(outcome)
		fc.History = history
		lastName = display

		cand, genErr := l.Generator.Generate(ctx, fc)
		l.Obs.RecordGeneration(l.Backend, l.Model, genErr == nil)
		if genErr != nil {
			logger.Error("patch generation failed",
				zap.String("test", display), zap.Error(genErr))
			return finish(Result{State: Aborted, Reason: AbortGeneration, Err: genErr})
		}

		branch = BranchName(l.BranchPrefix, refName, iter)
		if err := l.VCS.CreateBranch(branch); err != nil {
			logger.Error("branch creation failed",
				zap.String("branch", branch), zap.Error(err))
			return finish(Result{State: Aborted, Reason: AbortBranch, Err: err})
		}

		if !l.VCS.CanApply(cand.DiffText) {
			l.Obs.RecordPatchOutcome("rejected")
			logger.Error("patch failed validation", zap.String("test", display))
			return finish(Result{State: Aborted, Reason: AbortValidation,
				Err: fmt.Errorf("patch for %s failed validation", display)})
		}
		if err := l.VCS.Apply(cand.DiffText); err != nil {
			l.Obs.RecordPatchOutcome("apply-failed")
			logger.Error("patch application failed",
				zap.String("test", display), zap.Error(err))
			return finish(Result{State: Aborted, Reason: AbortApplication, Err: err})
		}
		l.Obs.RecordPatchOutcome("applied")

		if err := l.VCS.Commit(commitMessage(display)); err != nil {
			logger.Error("commit failed", zap.Error(err))
			return finish(Result{State: Aborted, Reason: AbortCommit, Err: err})
		}

		applied++
		history = append(history, cand.DiffText)
		logger.Info("fix applied",
			zap.String("test", display), zap.String("branch", branch), zap.Int("iteration", iter+1))
	}
}

func (l *Loop) record(res Result) {
	duration := res.Duration
	success := res.State == Converged || res.State == NothingToDo
	l.Obs.RecordLoopRun(res.State.String(), res.Iterations, duration)
	if l.Sink == nil || res.State == NothingToDo {
		return
	}
	name := res.TestName
	if name == "" {
		name = "unknown"
	}
	rec := metrics.PatchRecord{
		TestName:   name,
		LLMBackend: l.Backend,
		ModelName:  l.Model,
		Iterations: res.Iterations,
		Success:    success,
		DurationMS: duration.Milliseconds(),
	}
	if err := l.Sink.Append(rec); err != nil && l.Logger != nil {
		l.Logger.Warn("metrics append failed", zap.Error(err))
	}
}

func commitMessage(testName string) string {
	return "TDD: fix " + testName
}

// failureContext maps a failing outcome to generator input plus the names
// used for commits and branches. Discovery errors target the file itself;
// test failures target the first reported failure.
func failureContext(outcome testrun.Outcome) (fc generate.FailureContext, display, refName string) {
	if outcome.Kind == testrun.DiscoveryError {
		fc = generate.FailureContext{
			FilePath:    outcome.File,
			ErrorOutput: outcome.Message,
			Discovery:   true,
		}
		return fc, outcome.File, outcome.File
	}
	f := outcome.Failures[0]
	fc = generate.FailureContext{
		TestName:    f.TestName,
		FilePath:    f.FilePath,
		ErrorOutput: f.ErrorOutput,
	}
	return fc, f.TestName, f.TestName
}

func outcomeLabel(kind testrun.OutcomeKind) string {
	switch kind {
	case testrun.Passed:
		return "passed"
	case testrun.DiscoveryError:
		return "discovery-error"
	case testrun.Failures:
		return "failures"
	}
	return "unknown"
}
