package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rhythmatician/dev-agent/internal/config"
	"github.com/rhythmatician/dev-agent/internal/logging"
	"github.com/rhythmatician/dev-agent/internal/loop"
	"github.com/rhythmatician/dev-agent/internal/observability"
	"github.com/rhythmatician/dev-agent/internal/supervisor"
)

// NewRunCmd splits a story into subtasks and drives one fix loop per
// subtask.
func NewRunCmd(opts *Options) *cobra.Command {
	var story string
	var repoDir string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Break a story into subtasks and fix each one",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			logger, err := logging.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck // best-effort

			obs := observability.NewMetrics()
			stopMetrics := startMetricsListener(cfg, logger, obs)
			defer stopMetrics()

			sup := &supervisor.Supervisor{
				Agent:      &loopAgent{cfg: cfg, logger: logger, obs: obs, repoDir: repoDir},
				MaxRetries: cfg.Supervisor.MaxRetries,
				Out:        cmd.OutOrStdout(),
				Obs:        obs,
				Logger:     logger,
			}

			code, err := sup.Run(cmd.Context(), story, dryRun)
			if err != nil {
				return &exitCodeError{code: code, msg: err.Error()}
			}
			if code != 0 {
				return &exitCodeError{code: code, msg: "supervisor run rejected"}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&story, "story", "", "Feature description to break down into subtasks")
	cmd.Flags().StringVar(&repoDir, "repo", ".", "Path to the target repository")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show the plan without executing")
	_ = cmd.MarkFlagRequired("story")
	return cmd
}

// loopAgent runs the fix pipeline in-process for each subtask.
type loopAgent struct {
	cfg     *config.Config
	logger  *zap.Logger
	obs     *observability.Metrics
	repoDir string
}

func (a *loopAgent) RunSubtask(ctx context.Context, description string) (supervisor.AgentResult, error) {
	a.logger.Info("running fix loop for subtask", zap.String("description", description))

	l, err := buildLoop(a.cfg, a.logger, a.obs, a.repoDir)
	if err != nil {
		return supervisor.AgentResult{}, err
	}
	res := l.Run(ctx)

	ar := supervisor.AgentResult{ExitCode: res.ExitCode()}
	if res.State == loop.NothingToDo {
		ar.Stderr = "No test failures detected"
	} else if res.Err != nil {
		ar.Stderr = res.Err.Error()
	}
	return ar, nil
}

// startMetricsListener exposes the Prometheus registry over HTTP when
// metrics.listen_addr is set. The returned func shuts the server down.
func startMetricsListener(cfg *config.Config, logger *zap.Logger, obs *observability.Metrics) func() {
	if cfg.Metrics.ListenAddr == "" {
		return func() {}
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(obs.Registry(), promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: cfg.Metrics.ListenAddr, Handler: mux}

	go func() {
		logger.Info("metrics listener started", zap.String("addr", cfg.Metrics.ListenAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics listener stopped", zap.Error(err))
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Warn("metrics listener shutdown", zap.Error(err))
		}
	}
}
