package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/fundscope/pkg/config"
	"github.com/wonny/fundscope/pkg/logger"
)

// testLoggerCmd represents the test-logger command
var testLoggerCmd = &cobra.Command{
	Use:   "test-logger",
	Short: "Exercise the structured logger",
	Long: `Prints sample lines in each log format.

This command shows:
- JSON and console formats
- module-tagged structured fields
- error context

Example:
  go run ./cmd/fundscope test-logger`,
	RunE: runTestLogger,
}

func init() {
	rootCmd.AddCommand(testLoggerCmd)
}

func runTestLogger(cmd *cobra.Command, args []string) error {
	fmt.Println("=== fundscope Logger Test ===")

	fmt.Println("1. JSON Format (Production)")
	PrintSeparator()
	log := logger.New(&config.Config{Env: "production", LogLevel: "info", LogFormat: "json"})
	log.Info("Service started")
	log.Warn("Facts document larger than usual")
	fmt.Println()

	fmt.Println("2. Console Format (Development)")
	PrintSeparator()
	log = logger.New(&config.Config{Env: "development", LogLevel: "debug", LogFormat: "console"})
	log.Debug("Isolating quarters")
	log.Info("Directory loaded")
	fmt.Println()

	fmt.Println("3. Structured Logging with Fields")
	PrintSeparator()
	log = logger.New(&config.Config{Env: "production", LogLevel: "info", LogFormat: "json"})
	log.WithModule("quarter").
		WithFields(map[string]interface{}{
			"ticker":  "AAPL",
			"anchors": 15,
			"run_id":  "00000000-0000-0000-0000-000000000000",
		}).
		Info("Quarters isolated")
	fmt.Println()

	fmt.Println("4. Error Logging")
	PrintSeparator()
	log.WithModule("sec").
		WithError(errors.New("fetch https://data.sec.gov/...: 503 Service Unavailable")).
		WithField("cik", "0000320193").
		Error("Facts fetch failed")
	fmt.Println()

	PrintSuccess("All logger tests completed!")
	return nil
}
