package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	envOverride string
	verbose     bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "fundscope",
	Short: "fundscope - normalized fundamentals from regulatory XBRL filings",
	Long: `fundscope Unified CLI

Turns a filer's raw XBRL facts into an annual statement series and a
daily valuation-ratio series (P/E, EV/EBITDA, P/B, P/S, leverage).

Usage:
  go run ./cmd/fundscope [command]

Examples:
  go run ./cmd/fundscope financials AAPL
  go run ./cmd/fundscope ratios MSFT --from 2024-01-01
  go run ./cmd/fundscope api
  go run ./cmd/fundscope scheduler start
  go run ./cmd/fundscope test-db`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envOverride, "env", "", "environment override (development|staging|production|test)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}
