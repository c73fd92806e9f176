package metrics

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// PatchRecord captures one convergence attempt for a single test.
type PatchRecord struct {
	TestName   string `json:"test_name"`
	LLMBackend string `json:"llm_backend"`
	ModelName  string `json:"model_name"`
	Iterations int    `json:"iterations"`
	Success    bool   `json:"success"`
	DurationMS int64  `json:"duration_ms"`
}

// Collection is the on-disk document: every patch attempt ever recorded.
type Collection struct {
	PatchResults []PatchRecord `json:"patch_results"`
}

// Summary aggregates a collection for reporting.
type Summary struct {
	TotalTests        int
	SuccessfulPatches int
	FailedPatches     int
	SuccessRate       float64
	TotalIterations   int
	AvgIterations     float64
	AvgDurationMS     float64
	Backends          map[string]BackendStats
}

// BackendStats aggregates records sharing an LLM backend.
type BackendStats struct {
	Tests         int
	Success       int
	SuccessRate   float64
	AvgIterations float64
	AvgDurationMS float64
}

// Summarize computes aggregate statistics over the collection.
func (c Collection) Summarize() Summary {
	s := Summary{Backends: map[string]BackendStats{}}
	s.TotalTests = len(c.PatchResults)
	if s.TotalTests == 0 {
		return s
	}

	var totalDuration int64
	backendIters := map[string]int{}
	backendDur := map[string]int64{}
	for _, r := range c.PatchResults {
		s.TotalIterations += r.Iterations
		totalDuration += r.DurationMS
		if r.Success {
			s.SuccessfulPatches++
		} else {
			s.FailedPatches++
		}
		b := s.Backends[r.LLMBackend]
		b.Tests++
		if r.Success {
			b.Success++
		}
		backendIters[r.LLMBackend] += r.Iterations
		backendDur[r.LLMBackend] += r.DurationMS
		s.Backends[r.LLMBackend] = b
	}

	n := float64(s.TotalTests)
	s.SuccessRate = float64(s.SuccessfulPatches) / n
	s.AvgIterations = float64(s.TotalIterations) / n
	s.AvgDurationMS = float64(totalDuration) / n
	for name, b := range s.Backends {
		t := float64(b.Tests)
		b.SuccessRate = float64(b.Success) / t
		b.AvgIterations = float64(backendIters[name]) / t
		b.AvgDurationMS = float64(backendDur[name]) / t
		s.Backends[name] = b
	}
	return s
}

// Store persists patch records as a JSON document.
type Store struct {
	Path string
}

// NewStore returns a store at the given path, or the default
// ~/.dev-agent/metrics.json when path is empty.
func NewStore(path string) (*Store, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		path = filepath.Join(home, ".dev-agent", "metrics.json")
	}
	return &Store{Path: path}, nil
}

// Load reads the full collection. A missing or corrupt file yields an
// empty collection rather than an error so a bad metrics file never
// blocks a fix run.
func (s *Store) Load() Collection {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return Collection{}
	}
	var c Collection
	if err := json.Unmarshal(data, &c); err != nil {
		return Collection{}
	}
	return c
}

// Append adds a record and rewrites the document in full.
func (s *Store) Append(record PatchRecord) error {
	c := s.Load()
	c.PatchResults = append(c.PatchResults, record)
	return s.Save(c)
}

// Save writes the collection to disk, creating parent directories.
func (s *Store) Save(c Collection) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return fmt.Errorf("create metrics dir: %w", err)
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encode metrics: %w", err)
	}
	if err := os.WriteFile(s.Path, data, 0o644); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}
