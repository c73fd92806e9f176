package cli

import (
	"fmt"
	"os/exec"

	"github.com/spf13/cobra"
)

// NewDoctorCmd returns a health-check command validating config and environment.
func NewDoctorCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Validate configuration and environment",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}

			backend, model := resolveBackend(cfg)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config OK. Backend: %s, model: %s\n", backend, model)
			fmt.Fprintf(out, "Test command: %q, max iterations: %d\n", cfg.TestCommand, cfg.MaxIterations)
			fmt.Fprintf(out, "Metrics enabled: %v, auto PR: %v\n", cfg.Metrics.Enabled, cfg.Git.AutoPR)

			for _, tool := range []string{"git", "python", "gh"} {
				if _, lerr := exec.LookPath(tool); lerr != nil {
					fmt.Fprintf(out, "warning: %s not found in PATH\n", tool)
				}
			}
			return nil
		},
	}
}
