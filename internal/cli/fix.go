package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rhythmatician/dev-agent/internal/logging"
	"github.com/rhythmatician/dev-agent/internal/loop"
	"github.com/rhythmatician/dev-agent/internal/observability"
)

// NewFixCmd runs one convergence loop against a target repository.
func NewFixCmd(opts *Options) *cobra.Command {
	var repoDir string
	var story string

	cmd := &cobra.Command{
		Use:   "fix",
		Short: "Run tests and iterate LLM patches until they pass",
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

			if story != "" {
				logger.Info("starting fix run", zap.String("story", story))
			}

			l, err := buildLoop(cfg, logger, observability.NewMetrics(), repoDir)
			if err != nil {
				return err
			}

			res := l.Run(cmd.Context())
			return resultError(res)
		},
	}

	cmd.Flags().StringVar(&repoDir, "repo", ".", "Path to the target repository")
	cmd.Flags().StringVar(&story, "story", "", "Description of the change being attempted (informational)")
	return cmd
}

// resultError maps a loop result onto the process exit contract.
func resultError(res loop.Result) error {
	switch res.State {
	case loop.NothingToDo:
		fmt.Println("No test failures detected")
		return nil
	case loop.Converged:
		fmt.Printf("Converged: %s fixed after %d iteration(s) on %s\n",
			res.TestName, res.Iterations, res.Branch)
		return nil
	case loop.Exhausted:
		return &exitCodeError{
			code: res.ExitCode(),
			msg:  fmt.Sprintf("iteration budget exhausted without fixing %s", res.TestName),
		}
	default:
		msg := fmt.Sprintf("aborted at %s step", res.Reason)
		if res.Err != nil {
			msg = fmt.Sprintf("%s: %v", msg, res.Err)
		}
		return &exitCodeError{code: res.ExitCode(), msg: msg}
	}
}
