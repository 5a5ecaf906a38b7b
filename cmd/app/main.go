package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

// rootCmd is the base command for the PerfScope CLI.
var rootCmd = &cobra.Command{
	Use:   "perfscope",
	Short: "PerfScope historical performance analytics",
	Long: `PerfScope downloads daily closing prices and reports historical
performance for each ticker: CAGR, annualized volatility, maximum drawdown
and its recovery, annual and monthly returns, and monthly seasonality.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config/config.yaml", "config file path (defaults are used when the file is missing)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
