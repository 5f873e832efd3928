package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"ecomfunnel/handlers"
	"ecomfunnel/middleware"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Analyze the event log and serve the reports over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup(cmd)
		if err != nil {
			return err
		}
		defer log.Sync()

		if p, _ := cmd.Flags().GetString("port"); p != "" {
			cfg.Server.Port = p
		}
		if cfg.Server.JWTSecret == "" && cfg.Server.APIKey == "" {
			return errors.New("server.jwtsecret or server.apikey must be set")
		}

		res, err := analyze(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}

		if cfg.Server.GinMode == gin.ReleaseMode {
			gin.SetMode(gin.ReleaseMode)
		}

		router := handlers.NewRouter(handlers.NewReportHandlers(res), middleware.AuthConfig{
			APIKey:    cfg.Server.APIKey,
			JWTSecret: []byte(cfg.Server.JWTSecret),
			Log:       log,
		}, cfg.Server.AllowedOrigin)

		srv := &http.Server{
			Addr:    ":" + cfg.Server.Port,
			Handler: router,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			log.Info("Report API starting", "addr", srv.Addr, "sessions", len(res.Journeys))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			if err != nil {
				log.Error("Report API failed to start", "error", err)
				return err
			}
			return nil
		case <-ctx.Done():
		}

		log.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("Server forced to shutdown", "error", err)
			return err
		}
		log.Info("Server exiting")
		return nil
	},
}

func init() {
	serveCmd.Flags().String("port", "", "Listen port (overrides server.port)")
}
