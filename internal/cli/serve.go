package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"hrintake/internal/auth"
	"hrintake/internal/observability"
	"hrintake/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server for the application form and review dashboard",
	Long: `Start an HTTP server that runs application form sessions and the review dashboard
on top of the intake API.

Available endpoints:
- POST /api/wizard/sessions: Start an application form session
- POST /api/wizard/sessions/{id}/actions: Edit the application
- POST /api/wizard/sessions/{id}/submit: Validate and submit the application
- POST /api/admin/login: Obtain a dashboard token
- GET  /api/dashboard/applications: List submitted applications
- GET  /api/options/details, /api/options/salary, /api/options/steps: Form choices
- GET  /health: Health check endpoint
- GET  /stats: Server statistics and rate limiting info

TLS Configuration:
- Use --tls-mode to set TLS mode: disabled, server
- Use --cert-file and --key-file for TLS certificates`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringP("port", "p", "", "Port to listen on (default from config)")
	serveCmd.Flags().String("host", "", "Host to bind to (default from config)")
	serveCmd.Flags().String("tls-mode", "", "TLS mode: disabled, server (overrides config)")
	serveCmd.Flags().String("cert-file", "", "Server certificate file (PEM, overrides config)")
	serveCmd.Flags().String("key-file", "", "Server private key file (PEM, overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	overrides := map[string]*string{
		"port":      &cfg.Server.Port,
		"host":      &cfg.Server.Host,
		"tls-mode":  &cfg.Server.TLS.Mode,
		"cert-file": &cfg.Server.TLS.CertFile,
		"key-file":  &cfg.Server.TLS.KeyFile,
	}
	for name, target := range overrides {
		if cmd.Flags().Changed(name) {
			*target, _ = cmd.Flags().GetString(name)
		}
	}

	if err := cfg.ValidateTLSConfig(); err != nil {
		return fmt.Errorf("invalid TLS configuration: %w", err)
	}

	om, err := observability.NewObservabilityManager(observability.GetObservabilityConfig(cfg, Version), cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := om.Shutdown(ctx); err != nil {
			logger.LogError(err, "Failed to shut down observability")
		}
	}()

	client, err := newAPIClient(cfg, logger, om)
	if err != nil {
		return err
	}
	gate, err := auth.NewGate(cfg.Admin, logger)
	if err != nil {
		return err
	}
	if !gate.Configured() {
		logger.Warn("Admin credentials not configured, dashboard login is disabled")
	}

	srv, err := server.NewServer(cfg, server.ServerConfigFrom(cfg, Version), server.Dependencies{
		Backend:       client,
		Gate:          gate,
		Observability: om,
	}, logger)
	if err != nil {
		return err
	}
	return srv.Start(cmd.Context())
}
