package cli

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/rhythmatician/dev-agent/internal/config"
	"github.com/rhythmatician/dev-agent/internal/generate"
	"github.com/rhythmatician/dev-agent/internal/llm"
	"github.com/rhythmatician/dev-agent/internal/llm/providers/ollama"
	"github.com/rhythmatician/dev-agent/internal/llm/providers/openaicompat"
	"github.com/rhythmatician/dev-agent/internal/loop"
	"github.com/rhythmatician/dev-agent/internal/metrics"
	"github.com/rhythmatician/dev-agent/internal/observability"
	"github.com/rhythmatician/dev-agent/internal/testrun"
	"github.com/rhythmatician/dev-agent/internal/tools"
)

const (
	defaultOllamaURL   = "http://localhost:11434"
	defaultLlamaCppURL = "http://localhost:8080"
)

// buildRegistry wires every known backend so any agent role can select
// one. The llama.cpp server and OpenAI both speak the OpenAI chat API.
func buildRegistry(cfg *config.Config) *llm.Registry {
	timeout := time.Duration(cfg.LLM.TimeoutSeconds) * time.Second

	ollamaURL := cfg.LLM.BaseURL
	if ollamaURL == "" {
		ollamaURL = defaultOllamaURL
	}
	llamaURL := cfg.LLM.BaseURL
	if llamaURL == "" {
		llamaURL = defaultLlamaCppURL
	}

	reg := llm.NewRegistry()
	reg.RegisterProvider("llama-cpp", openaicompat.NewProvider("llama-cpp", llamaURL, cfg.LLM.APIKey, timeout))
	reg.RegisterProvider("ollama", ollama.NewProvider("ollama", ollamaURL, timeout))
	reg.RegisterProvider("openai", openaicompat.NewProvider("openai", cfg.LLM.BaseURL, cfg.LLM.APIKey, timeout))
	return reg
}

// resolveBackend picks the backend and model for the fixing agent: the
// explicit agents.dev_agent role wins, otherwise both derive from
// llm.model_path.
func resolveBackend(cfg *config.Config) (backend, model string) {
	backend, model = generate.ParseModelPath(cfg.LLM.ModelPath)
	if cfg.Agents.DevAgent.Backend != "" {
		backend = cfg.Agents.DevAgent.Backend
		model = cfg.Agents.DevAgent.Model
	}
	return backend, model
}

// buildLoop assembles the full fix pipeline for one target repository.
func buildLoop(cfg *config.Config, logger *zap.Logger, obs *observability.Metrics, repoDir string) (*loop.Loop, error) {
	backend, model := resolveBackend(cfg)

	term := &tools.Terminal{
		WorkingDir: repoDir,
		Timeout:    time.Duration(cfg.Test.TimeoutSeconds) * time.Second,
	}
	runner := &testrun.Runner{
		Exec:    term,
		Command: cfg.TestCommand,
		RepoDir: repoDir,
		Logger:  logger,
	}
	gen := &generate.Generator{
		Registry:       buildRegistry(cfg),
		Backend:        backend,
		Model:          model,
		RepoDir:        repoDir,
		RequireContext: cfg.LLM.RequireContext,
		Logger:         logger,
	}
	git := &tools.Git{
		WorkingDir: repoDir,
		Remote:     cfg.Git.Remote,
		Logger:     logger,
	}

	var sink loop.MetricsSink
	if cfg.Metrics.Enabled {
		store, err := metrics.NewStore(cfg.Metrics.StoragePath)
		if err != nil {
			return nil, fmt.Errorf("metrics store: %w", err)
		}
		sink = store
	}

	return &loop.Loop{
		Tests:         runner,
		Generator:     gen,
		VCS:           git,
		MaxIterations: cfg.MaxIterations,
		BranchPrefix:  cfg.Git.BranchPrefix,
		AutoPR:        cfg.Git.AutoPR,
		Backend:       backend,
		Model:         model,
		Sink:          sink,
		Obs:           obs,
		Logger:        logger,
	}, nil
}
