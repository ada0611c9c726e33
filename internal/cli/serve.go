package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"aaronromeo.com/inboxpilot/internal/config"
	"aaronromeo.com/inboxpilot/pkg/base"
	"aaronromeo.com/inboxpilot/pkg/utils"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
		defer stop()

		otelShutdown, err := utils.SetupOTelSDK(ctx, telemetryConfig(cfg.Telemetry))
		if err != nil {
			return err
		}

		logger := utils.NewLogger(cmd.OutOrStdout(), cfg.Log.Level, cfg.Telemetry.Enabled())
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			if err := otelShutdown(shutdownCtx); err != nil {
				logger.Error("Telemetry shutdown failed", slog.String("error", err.Error()))
			}
		}()

		logger.InfoContext(ctx, "Starting server",
			slog.String("service", base.ServiceName),
			slog.String("version", base.ServiceVersion),
			slog.String("addr", cfg.Server.ListenAddr))

		srv, err := newServer(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer srv.Close()

		listenErr := make(chan error, 1)
		go func() {
			listenErr <- srv.app.Listen(cfg.Server.ListenAddr)
		}()

		select {
		case err = <-listenErr:
			return err
		case <-ctx.Done():
		}

		logger.Info("Shutting down server")
		if err = srv.app.ShutdownWithTimeout(cfg.Server.ShutdownTimeout); err != nil {
			logger.Error("Server shutdown failed", slog.String("error", err.Error()))
		}
		return err
	},
}

func telemetryConfig(t config.Telemetry) utils.TelemetryConfig {
	return utils.TelemetryConfig{
		Endpoint:        t.Endpoint,
		MetricsEndpoint: t.MetricsEndpoint,
		Headers:         t.Headers,
		Insecure:        t.Insecure,
		Stdout:          t.Stdout,
	}
}
