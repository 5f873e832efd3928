package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"ecomfunnel/utils"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a bearer token for the report API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup(cmd)
		if err != nil {
			return err
		}
		defer log.Sync()

		subject, _ := cmd.Flags().GetString("subject")
		ttl, _ := cmd.Flags().GetDuration("ttl")

		token, err := utils.GenerateJWT([]byte(cfg.Server.JWTSecret), subject, ttl)
		if err != nil {
			return err
		}
		log.Debug("Token issued", "subject", subject, "ttl", ttl.String())
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().String("subject", "dashboard", "Token subject")
	tokenCmd.Flags().Duration("ttl", 24*time.Hour, "Token lifetime")
}
