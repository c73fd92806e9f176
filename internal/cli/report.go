package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rhythmatician/dev-agent/internal/metrics"
)

// NewReportCmd prints aggregate statistics over recorded patch attempts.
func NewReportCmd(opts *Options) *cobra.Command {
	var storagePath string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show recorded patch metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := storagePath
			if path == "" {
				cfg, err := loadConfig(opts)
				if err == nil {
					path = cfg.Metrics.StoragePath
				}
			}
			store, err := metrics.NewStore(path)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), metrics.Report(store.Load()))
			return nil
		},
	}

	cmd.Flags().StringVar(&storagePath, "metrics-file", "", "Path to the metrics JSON file (default: ~/.dev-agent/metrics.json)")
	return cmd
}
