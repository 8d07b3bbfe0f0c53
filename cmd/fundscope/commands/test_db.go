package commands

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/fundscope/pkg/config"
	"github.com/wonny/fundscope/pkg/database"
)

// testDBCmd represents the test-db command
var testDBCmd = &cobra.Command{
	Use:   "test-db",
	Short: "Test the results database connection",
	Long: `Tests the database connection and shows pool statistics.

This command:
- loads DATABASE_URL from config
- opens a pool and pings it
- applies pending migrations (--migrate)
- prints connection pool statistics

Example:
  go run ./cmd/fundscope test-db
  go run ./cmd/fundscope test-db --migrate`,
	RunE: runTestDB,
}

var testDBMigrate bool

func init() {
	rootCmd.AddCommand(testDBCmd)

	testDBCmd.Flags().BoolVar(&testDBMigrate, "migrate", false, "apply pending migrations")
}

func runTestDB(cmd *cobra.Command, args []string) error {
	fmt.Println("=== fundscope Database Connection Test ===")

	fmt.Println("Loading configuration...")
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("❌ Failed to load config: %w", err)
	}
	if !cfg.StoreEnabled() {
		return fmt.Errorf("❌ DATABASE_URL is not set")
	}
	fmt.Printf("✅ Config loaded (ENV: %s)\n", cfg.Env)
	fmt.Printf("   Database URL: %s\n\n", maskPassword(cfg.Database.URL))

	fmt.Println("Connecting to database...")
	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("❌ Failed to connect to database: %w", err)
	}
	defer db.Close()
	fmt.Println("✅ Database connection established")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if testDBMigrate {
		fmt.Println("Applying migrations...")
		if err := db.Migrate(ctx); err != nil {
			return fmt.Errorf("❌ Migration failed: %w", err)
		}
		fmt.Println("✅ Schema up to date")
	}

	fmt.Println("Getting health status...")
	status, err := db.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("❌ Health check failed: %w", err)
	}

	fmt.Println("✅ Health Check Results:")
	fmt.Printf("   Latency: %v\n", status.Latency)
	fmt.Printf("   Schema Version: %d\n\n", status.SchemaVersion)

	fmt.Println("📊 Connection Pool Statistics:")
	fmt.Printf("   Max Connections: %d\n", status.MaxConns)
	fmt.Printf("   Total Connections: %d\n", status.TotalConns)
	fmt.Printf("   Idle Connections: %d\n", status.IdleConns)
	fmt.Println("\n✅ All tests passed!")
	return nil
}

// maskPassword hides the password in a database URL for display
func maskPassword(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	pw, ok := u.User.Password()
	if !ok {
		return raw
	}
	return strings.Replace(raw, ":"+pw+"@", ":***@", 1)
}
