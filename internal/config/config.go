package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config describes the top-level dev-agent configuration loaded from YAML and ENV.
type Config struct {
	MaxIterations int              `mapstructure:"max_iterations"`
	TestCommand   string           `mapstructure:"test_command"`
	Test          TestConfig       `mapstructure:"test"`
	Git           GitConfig        `mapstructure:"git"`
	LLM           LLMConfig        `mapstructure:"llm"`
	Metrics       MetricsConfig    `mapstructure:"metrics"`
	Supervisor    SupervisorConfig `mapstructure:"supervisor"`
	Agents        AgentsConfig     `mapstructure:"agents"`
	Logging       LoggingConfig    `mapstructure:"logging"`
}

// TestConfig controls test execution behaviour.
type TestConfig struct {
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

// GitConfig controls branch naming and remote interaction.
type GitConfig struct {
	BranchPrefix string `mapstructure:"branch_prefix"`
	Remote       string `mapstructure:"remote"`
	AutoPR       bool   `mapstructure:"auto_pr"`
}

// LLMConfig addresses the patch-generation backend.
//
// ModelPath is either "<backend>:<model-or-path>" or a bare model path,
// in which case the llama-cpp backend is assumed.
type LLMConfig struct {
	ModelPath      string `mapstructure:"model_path"`
	BaseURL        string `mapstructure:"base_url"`
	APIKey         string `mapstructure:"api_key"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	RequireContext bool   `mapstructure:"require_context"`
}

// MetricsConfig controls iteration-record persistence and the optional
// Prometheus listener.
type MetricsConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	StoragePath string `mapstructure:"storage_path"`
	ListenAddr  string `mapstructure:"listen_addr"`
}

// SupervisorConfig controls subtask sequencing.
type SupervisorConfig struct {
	MaxRetries int `mapstructure:"max_retries"`
}

// AgentRoleConfig binds an agent role to a backend and model.
type AgentRoleConfig struct {
	Backend string `mapstructure:"backend"`
	Model   string `mapstructure:"model"`
}

// AgentsConfig carries per-role backend assignments.
type AgentsConfig struct {
	Supervisor AgentRoleConfig `mapstructure:"supervisor"`
	DevAgent   AgentRoleConfig `mapstructure:"dev_agent"`
}

// LoggingConfig controls logger behaviour.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // console or json
}

// Load reads configuration from the provided path or defaults to configs/config.yaml.
// Environment variables override file values (prefix: DEVAGENT_, dots replaced
// with underscores).
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("DEVAGENT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("configs")
	} else {
		v.SetConfigFile(path)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) && path == "" {
			v.SetConfigName("config.example")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read config: %w", err)
			}
		} else {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults populates sensible defaults for optional fields.
func setDefaults(v *viper.Viper) {
	v.SetDefault("max_iterations", 5)
	v.SetDefault("test_command", "pytest --maxfail=1")

	v.SetDefault("test.timeout_seconds", 30)

	v.SetDefault("git.branch_prefix", "dev-agent/fix")
	v.SetDefault("git.remote", "origin")
	v.SetDefault("git.auto_pr", false)

	v.SetDefault("llm.model_path", "")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.timeout_seconds", 120)
	v.SetDefault("llm.require_context", false)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.storage_path", "")
	v.SetDefault("metrics.listen_addr", "")

	v.SetDefault("supervisor.max_retries", 2)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// knownBackends are the recognized patch-generation backend identifiers.
var knownBackends = map[string]struct{}{
	"ollama":    {},
	"llama-cpp": {},
	"openai":    {},
}

// Validate performs basic sanity checks on configuration values.
func (c *Config) Validate() error {
	if c.MaxIterations <= 0 {
		return errors.New("max_iterations must be > 0")
	}

	if strings.TrimSpace(c.TestCommand) == "" {
		return errors.New("test_command must be set")
	}

	if c.Test.TimeoutSeconds <= 0 {
		return errors.New("test.timeout_seconds must be > 0")
	}

	if strings.TrimSpace(c.Git.BranchPrefix) == "" {
		return errors.New("git.branch_prefix must be set")
	}

	if strings.TrimSpace(c.Git.Remote) == "" {
		return errors.New("git.remote must be set")
	}

	if strings.TrimSpace(c.LLM.ModelPath) == "" {
		return errors.New("llm.model_path must be set")
	}

	if c.LLM.TimeoutSeconds <= 0 {
		return errors.New("llm.timeout_seconds must be > 0")
	}

	if c.Supervisor.MaxRetries < 0 {
		return errors.New("supervisor.max_retries must be >= 0")
	}

	for role, rc := range map[string]AgentRoleConfig{
		"agents.supervisor": c.Agents.Supervisor,
		"agents.dev_agent":  c.Agents.DevAgent,
	} {
		if strings.TrimSpace(rc.Backend) == "" {
			continue
		}
		if _, ok := knownBackends[rc.Backend]; !ok {
			return fmt.Errorf("%s.backend %q is not a known backend", role, rc.Backend)
		}
		if strings.TrimSpace(rc.Model) == "" {
			return fmt.Errorf("%s.model must be set when backend is set", role)
		}
	}

	return nil
}
