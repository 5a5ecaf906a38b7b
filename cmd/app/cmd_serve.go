package main

import (
	"fmt"

	"PerfScope/internal/di"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the backtest HTTP API",
	Long: `Start the HTTP API. Endpoints:
  GET  /api/backtest?tickers=SPY,QQQ&start=2015-01-01&end=2025-01-01
  POST /api/backtest
  GET  /healthz
  GET  /metrics`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	app, cleanup, err := di.InitializeApp(cfg)
	if err != nil {
		return fmt.Errorf("app initialization failed: %w", err)
	}
	defer cleanup()

	return app.Run()
}
