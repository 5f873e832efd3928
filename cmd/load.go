package cmd

import (
	"github.com/spf13/cobra"

	"ecomfunnel/store"
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Bulk load the event log into a database table",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup(cmd)
		if err != nil {
			return err
		}
		defer log.Sync()

		if d, _ := cmd.Flags().GetString("driver"); d != "" {
			cfg.Loader.Driver = d
		}
		if n, _ := cmd.Flags().GetInt("chunk-size"); n != 0 {
			cfg.Loader.ChunkSize = n
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		ctx := cmd.Context()
		sink, err := store.OpenSink(ctx, cfg.Loader, log)
		if err != nil {
			log.Error("Error connecting to database", "driver", cfg.Loader.Driver, "error", err)
			return err
		}

		_, err = store.NewBulkLoader(sink, cfg.Loader.ChunkSize, log).Import(ctx, cfg.Input.Path)
		return err
	},
}

func init() {
	loadCmd.Flags().String("driver", "", "Target database: mysql, postgres or clickhouse (overrides loader.driver)")
	loadCmd.Flags().Int("chunk-size", 0, "Rows per insert transaction (overrides loader.chunksize)")
}
