package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ai-gateway/chat-relay/internal/config"
	"github.com/ai-gateway/chat-relay/internal/logging"
	"github.com/ai-gateway/chat-relay/internal/observability"
	"github.com/ai-gateway/chat-relay/internal/server"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "gateway",
		Short:        "Relay browser chat requests to the upstream completion API",
		SilenceUsage: true,
		RunE:         runServe,
	}
	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Start the HTTP server",
			RunE:  runServe,
		},
		&cobra.Command{
			Use:   "config",
			Short: "Print the effective configuration with secrets redacted",
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, err := config.Load()
				if err != nil {
					return err
				}
				return cfg.Redacted().WriteYAML(cmd.OutOrStdout())
			},
		},
	)
	return root
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logging.New(cfg.Log, os.Stderr)

	for _, w := range cfg.Validate() {
		log.Warn().Msg(w)
	}
	checkCredential(cfg, log)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.TelemetryURL != "" {
		tp, err := observability.Setup(ctx, cfg.TelemetryURL)
		if err != nil {
			log.Error().Err(err).Msg("tracing disabled")
		} else {
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = tp.Shutdown(shutdownCtx)
			}()
		}
	}

	if !cfg.Diagnostic() {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := server.New(cfg, log)
	if err := srv.Start(ctx); err != nil {
		log.Error().Err(err).Msg("server error")
		return err
	}
	log.Info().Msg("server stopped")
	return nil
}

// checkCredential logs the startup credential check. A missing or malformed
// key does not stop the server: health keeps answering and every chat
// request fails with a configuration error.
func checkCredential(cfg *config.Config, log zerolog.Logger) {
	if err := cfg.CheckCredential(); err != nil {
		log.Warn().Err(err).Msg("upstream credential unusable; chat requests will fail until it is fixed")
	} else if cfg.RequiresCredential() {
		log.Info().Msg("upstream credential configured")
	}
	if cfg.Diagnostic() {
		log.Debug().
			Bool("api_key_exists", cfg.APIKey != "").
			Int("api_key_length", len(cfg.APIKey)).
			Str("api_key_prefix", cfg.CredentialPrefixHint()).
			Str("node_env", cfg.Env).
			Msg("credential diagnostics")
	}
}
