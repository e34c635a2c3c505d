package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hlop3z/sqlfixture/internal/httpapi"
)

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Long: `Connect every configured database and serve them over HTTP.

Endpoints:
  GET  /health                    Ping every database
  GET  /databases                 List connected databases
  POST /databases/{name}/execute  Execute {"sql": "..."} and return its value`,
		Example: `  sqlfix serve --addr :8080
  curl -d '{"sql":"SELECT 1"}' localhost:8080/databases/testdb1/execute`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger := newLogger(cfg)
			fx, err := newFixture(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer fx.Close()

			return httpapi.Serve(ctx, addr, httpapi.NewHandler(fx, logger), logger)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "Address to listen on")

	return cmd
}
