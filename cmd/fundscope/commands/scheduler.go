package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/fundscope/internal/scheduler"
	"github.com/wonny/fundscope/internal/scheduler/jobs"
)

// results untouched for this long are dropped by the purge job
const resultRetention = 30 * 24 * time.Hour

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Scheduled watchlist refresh",
	Long: `Starts the scheduler or manages its jobs.

Subcommands:
  start   - start the scheduler daemon
  list    - list registered jobs
  run     - run one job now and wait for it

Example:
  go run ./cmd/fundscope scheduler start
  go run ./cmd/fundscope scheduler list
  go run ./cmd/fundscope scheduler run fundamentals_refresh`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "Start the scheduler",
		Long: `Starts the scheduler and registers every job.

Registered jobs:
- fundamentals_refresh: recompute the watchlist (WATCHLIST_PATH), schedule from the file
- results_purge: Sundays 03:00, drop stored series older than 30 days (store only)

Stop with Ctrl+C.`,
		RunE: runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "List registered jobs",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "Run one job now",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
}

func runScheduler(cmd *cobra.Command, args []string) error {
	fmt.Println("=== fundscope Scheduler ===")

	a, sched, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer a.Close()

	sched.Start()

	fmt.Println("\n✅ Scheduler started successfully")
	printJobs(sched)
	fmt.Println("\nPress Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down scheduler...")
	sched.Stop()
	fmt.Println("Scheduler stopped")

	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	a, sched, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer a.Close()

	printJobs(sched)
	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]

	a, sched, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer a.Close()

	fmt.Printf("Running job: %s\n", jobName)
	result, err := sched.RunJob(jobName)
	if err != nil {
		return fmt.Errorf("run job: %w", err)
	}

	if !result.Success {
		return fmt.Errorf("job %s failed after %d attempts: %s", jobName, result.Attempts, result.Error)
	}
	PrintSuccess(fmt.Sprintf("Job %s completed in %s", jobName, result.Duration.Round(time.Millisecond)))
	return nil
}

func printJobs(sched *scheduler.Scheduler) {
	fmt.Println("\nRegistered jobs:")
	for name, st := range sched.GetJobStats() {
		fmt.Printf("  - %s (%s)\n", name, st.Schedule)
	}
}

// initScheduler wires the app and registers jobs
func initScheduler() (*app, *scheduler.Scheduler, error) {
	a, err := newApp(true)
	if err != nil {
		return nil, nil, err
	}

	wl, err := jobs.LoadWatchlist(a.cfg.WatchlistPath)
	if err != nil {
		a.Close()
		return nil, nil, err
	}

	if a.store == nil {
		a.log.Warn("DATABASE_URL not set; refresh results only warm the caches")
	}

	sched := scheduler.New(a.log)

	if err := sched.AddJob(jobs.NewRefreshJob(a.runner, wl, a.cfg.Workers, a.log)); err != nil {
		a.Close()
		return nil, nil, err
	}

	if a.store != nil {
		if err := sched.AddJob(jobs.NewPurgeJob(a.store, resultRetention, a.log)); err != nil {
			a.Close()
			return nil, nil, err
		}
	}

	return a, sched, nil
}
