package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gkobilansky/sigcalc/internal/metrics"
	"github.com/gkobilansky/sigcalc/internal/server"
	"github.com/gkobilansky/sigcalc/internal/stats"
	"github.com/gkobilansky/sigcalc/internal/store"
)

func newServeCmd(a *app) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Start the sigcalc HTTP server.

The server provides:
  - Calculator page at /
  - JSON API at /api/calculate-significance
  - Sample datasets at /api/samples
  - Health check and Prometheus metrics

Example:
  sigcalc serve --port 8080`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("port") {
				a.cfg.Server.Port = port
			}
			return a.serve(cmd.Context())
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 8080, "port to listen on (overrides config)")
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	return a.withStore(func(s store.Store) error {
		srv := server.New(s, server.Config{
			Port:              a.cfg.Server.Port,
			AdminToken:        a.cfg.Server.AdminToken,
			AllowedOrigins:    a.cfg.Server.AllowedOrigins,
			Locale:            a.locale(),
			DefaultConfidence: stats.ConfidenceLevel(a.cfg.DefaultConfidence),
			TokenFile:         tokenFilePath(a.cfg.DBPath),
			Logger:            a.logger,
			Metrics:           metrics.New(true),
		})

		ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()
		return srv.ListenAndServe(ctx)
	})
}
