package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

// refreshCmd represents the refresh command
var refreshCmd = &cobra.Command{
	Use:   "refresh [ticker...]",
	Short: "Recompute several tickers on a worker pool",
	Long: `Runs the full pipeline for each ticker and writes both series to the
results store when one is configured. Requests to the regulator stay
under the process-wide rate gate regardless of the worker count.

Example:
  go run ./cmd/fundscope refresh AAPL MSFT NVDA
  go run ./cmd/fundscope refresh AAPL MSFT --workers 2`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRefresh,
}

var refreshWorkers int

func init() {
	rootCmd.AddCommand(refreshCmd)

	refreshCmd.Flags().IntVar(&refreshWorkers, "workers", 0, "concurrent tickers (default $WORKERS)")
}

func runRefresh(cmd *cobra.Command, args []string) error {
	a, err := newApp(true)
	if err != nil {
		return err
	}
	defer a.Close()

	workers := refreshWorkers
	if workers <= 0 {
		workers = a.cfg.Workers
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	PrintHeader("Refresh", fmt.Sprintf("%d tickers, %d workers", len(args), workers))
	start := time.Now()

	failed := 0
	for _, res := range a.runner.RunBatch(ctx, args, workers) {
		if res.Error != nil {
			failed++
			fmt.Printf("❌ %-8s %v\n", res.Ticker, res.Error)
			continue
		}
		r := res.Result
		fmt.Printf("✅ %-8s %d years, %d quarters, %d ratio days, coverage %.0f%%\n",
			r.Ticker, len(r.Annual), len(r.Quarters), len(r.Ratios), r.Coverage.Score*100)
	}

	PrintSeparator()
	fmt.Printf("Done in %s\n", time.Since(start).Round(time.Millisecond))
	if failed > 0 {
		return fmt.Errorf("%d of %d tickers failed", failed, len(args))
	}
	return nil
}
