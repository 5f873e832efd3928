package cmd

import (
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"ecomfunnel/config"
	"ecomfunnel/logger"
)

var rootCmd = &cobra.Command{
	Use:           "ecomfunnel",
	Short:         "Clickstream funnel analytics",
	Long:          "ecomfunnel reads an e-commerce event log, reconstructs session journeys and writes funnel, entry page, product-only and anomaly reports.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a config file (yaml, json or toml)")
	rootCmd.PersistentFlags().String("input", "", "Path to the event log CSV (overrides input.path)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(tokenCmd)
}

// setup loads configuration, applies flag overrides and builds a logger
// tagged with a per-invocation run id.
func setup(cmd *cobra.Command) (*config.Config, *logger.Logger, error) {
	file, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(file)
	if err != nil {
		return nil, nil, err
	}

	if p, _ := cmd.Flags().GetString("input"); p != "" {
		cfg.Input.Path = p
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.App.LogLevel = lvl
	}

	log, err := logger.New(cfg.App.Environment, cfg.App.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log.With("run_id", uuid.NewString(), "command", cmd.Name()), nil
}
