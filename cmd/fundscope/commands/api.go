package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/fundscope/internal/api"
	"github.com/wonny/fundscope/internal/api/handlers"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the HTTP API server",
	Long: `Starts the REST API server.

Series are served from the results store when a fresh copy exists
(RESULT_TTL, default 24h) and recomputed otherwise.

Endpoints:
  GET  /health                    - Health check
  GET  /api/financials/{ticker}   - Annual financial-statement series
  GET  /api/ratios/{ticker}       - Daily ratio series (?from=&to=)

Example:
  go run ./cmd/fundscope api
  go run ./cmd/fundscope api --port 8080`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (default $PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== fundscope API Server ===")

	a, err := newApp(true)
	if err != nil {
		return err
	}
	defer a.Close()

	if apiPort != "" {
		a.cfg.Port = apiPort
	}

	var db api.Pinger
	if a.db != nil {
		db = a.db
	}

	fundamentals := handlers.NewFundamentalsHandler(a.runner, a.log)
	router := api.NewRouter(fundamentals, db, a.log)
	server := api.New(a.cfg, a.log, router)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("\n✅ Server running on http://localhost:%s\n", a.cfg.Port)
	fmt.Println("\nAvailable endpoints:")
	fmt.Println("  GET  /health")
	fmt.Println("  GET  /api/financials/{ticker}")
	fmt.Println("  GET  /api/ratios/{ticker}")
	fmt.Println("\nPress Ctrl+C to stop")

	if err := server.Run(ctx); err != nil {
		return err
	}

	a.log.Info("Server stopped")
	return nil
}
