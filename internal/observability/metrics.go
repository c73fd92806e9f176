package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the fix loop and supervisor.
type Metrics struct {
	registry       *prometheus.Registry
	LoopRuns       *prometheus.CounterVec
	LoopDuration   *prometheus.HistogramVec
	LoopIterations *prometheus.HistogramVec
	TestRuns       *prometheus.CounterVec
	Generations    *prometheus.CounterVec
	PatchOutcomes  *prometheus.CounterVec
	Subtasks       *prometheus.CounterVec
}

// NewMetrics constructs a metrics registry with loop collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()

	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "devagent_loop_runs_total",
		Help: "Convergence loop completions by final state",
	}, []string{"state"})

	durs := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "devagent_loop_duration_seconds",
		Help:    "Convergence loop duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"state"})

	iters := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "devagent_loop_iterations",
		Help:    "Iterations consumed per loop run",
		Buckets: []float64{1, 2, 3, 5, 8, 13},
	}, []string{"state"})

	testRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "devagent_test_runs_total",
		Help: "Test suite executions by classified outcome",
	}, []string{"outcome"})

	gens := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "devagent_generations_total",
		Help: "Patch generation attempts by backend, model and result",
	}, []string{"backend", "model", "result"})

	patches := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "devagent_patch_outcomes_total",
		Help: "Patch validation/application outcomes",
	}, []string{"outcome"})

	subtasks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "devagent_supervisor_subtasks_total",
		Help: "Supervisor subtask completions by result",
	}, []string{"result"})

	reg.MustRegister(runs, durs, iters, testRuns, gens, patches, subtasks)

	return &Metrics{
		registry:       reg,
		LoopRuns:       runs,
		LoopDuration:   durs,
		LoopIterations: iters,
		TestRuns:       testRuns,
		Generations:    gens,
		PatchOutcomes:  patches,
		Subtasks:       subtasks,
	}
}

// Registry returns the underlying Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordLoopRun records a completed loop with its final state.
func (m *Metrics) RecordLoopRun(state string, iterations int, duration time.Duration) {
	if m == nil {
		return
	}
	if state == "" {
		state = "unknown"
	}
	m.LoopRuns.WithLabelValues(state).Inc()
	m.LoopDuration.WithLabelValues(state).Observe(duration.Seconds())
	m.LoopIterations.WithLabelValues(state).Observe(float64(iterations))
}

// RecordTestRun records one classified test suite execution.
func (m *Metrics) RecordTestRun(outcome string) {
	if m == nil {
		return
	}
	m.TestRuns.WithLabelValues(outcome).Inc()
}

// RecordGeneration records a patch generation attempt.
func (m *Metrics) RecordGeneration(backend, model string, success bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !success {
		result = "error"
	}
	if backend == "" {
		backend = "unknown"
	}
	if model == "" {
		model = "unknown"
	}
	m.Generations.WithLabelValues(backend, model, result).Inc()
}

// RecordPatchOutcome records a validation or application outcome.
func (m *Metrics) RecordPatchOutcome(outcome string) {
	if m == nil {
		return
	}
	m.PatchOutcomes.WithLabelValues(outcome).Inc()
}

// RecordSubtask records a supervisor subtask result.
func (m *Metrics) RecordSubtask(result string) {
	if m == nil {
		return
	}
	m.Subtasks.WithLabelValues(result).Inc()
}
