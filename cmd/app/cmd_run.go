package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"PerfScope/internal/di"
	"PerfScope/internal/usecase"
	"PerfScope/pkg/config"
	xutil "PerfScope/pkg/util"

	"github.com/spf13/cobra"
)

var (
	runTickers string
	runStart   string
	runEnd     string
	runSeries  bool
	runPretty  bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one backtest and print the JSON result",
	Long: `Run a single backtest batch and write the result as JSON to stdout.
Skipped tickers are listed under "warnings" and logged.

Examples:
  perfscope run
  perfscope run --tickers "SPY, QQQ, ^GSPC" --start 2015-01-01 --end 2025-01-01
  perfscope run --tickers AAPL --series --pretty`,
	RunE: runBacktest,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runTickers, "tickers", "SPY", "comma or space separated tickers")
	runCmd.Flags().StringVar(&runStart, "start", "", "start date YYYY-MM-DD (default: end minus 10 years)")
	runCmd.Flags().StringVar(&runEnd, "end", "", "end date YYYY-MM-DD, exclusive (default: today)")
	runCmd.Flags().BoolVar(&runSeries, "series", false, "include price and drawdown series")
	runCmd.Flags().BoolVar(&runPretty, "pretty", false, "indent JSON output")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	start, end, err := resolveRange(runStart, runEnd, time.Now())
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	app, cleanup, err := di.InitializeApp(cfg)
	if err != nil {
		return fmt.Errorf("app initialization failed: %w", err)
	}
	defer cleanup()

	res, err := app.Backtest(cmd.Context(), usecase.BatchRequest{
		Tickers:       []string{runTickers},
		Start:         start,
		End:           end,
		IncludeSeries: runSeries,
	})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	if runPretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(res)
}

func resolveRange(startRaw, endRaw string, now time.Time) (time.Time, time.Time, error) {
	defStart, defEnd := xutil.DefaultRange(now)
	end, err := xutil.ParseDateDefault(endRaw, defEnd)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("--end: %w", err)
	}
	if startRaw == "" {
		if endRaw == "" {
			return defStart, end, nil
		}
		return end.AddDate(-10, 0, 0), end, nil
	}
	start, err := xutil.ParseDate(startRaw)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("--start: %w", err)
	}
	return start, end, nil
}

func loadConfig() (*config.Config, error) {
	path := configPath
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) && !rootCmd.PersistentFlags().Changed("config") {
		path = ""
	}
	cfg, err := config.LoadWithEnv(path)
	if err != nil {
		return nil, fmt.Errorf("config load failed: %w", err)
	}
	return cfg, nil
}
