package cmd

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"ecomfunnel/analytics"
	"ecomfunnel/config"
	"ecomfunnel/eventlog"
	"ecomfunnel/logger"
	"ecomfunnel/report"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run the funnel analyses and write the four CSV reports",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup(cmd)
		if err != nil {
			return err
		}
		defer log.Sync()

		if dir, _ := cmd.Flags().GetString("output-dir"); dir != "" {
			cfg.Output.Directory = dir
		}
		if cmd.Flags().Changed("strict-sessions") {
			cfg.Analysis.StrictSessions, _ = cmd.Flags().GetBool("strict-sessions")
		}

		res, err := analyze(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}
		return report.WriteAll(cfg.Output, res, log)
	},
}

func init() {
	analyzeCmd.Flags().String("output-dir", "", "Directory for the report files (overrides output.directory)")
	analyzeCmd.Flags().Bool("strict-sessions", false, "Fail when a session carries more than one user")
}

// analyze loads the configured event log and runs every analysis over it.
func analyze(ctx context.Context, cfg *config.Config, log *logger.Logger) (*analytics.Results, error) {
	if cfg.Input.Path == "" {
		return nil, errors.New("input.path is required")
	}

	events, err := eventlog.Load(cfg.Input.Path)
	if err != nil {
		log.Error("Error reading event log", "path", cfg.Input.Path, "error", err)
		return nil, err
	}
	log.Info("Event log loaded", "path", cfg.Input.Path, "events", len(events))

	return analytics.Run(ctx, events, analytics.Options{StrictSessions: cfg.Analysis.StrictSessions}, log)
}
