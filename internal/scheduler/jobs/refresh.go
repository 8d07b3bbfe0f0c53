package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/semaphore"

	"github.com/wonny/fundscope/internal/pipeline"
	"github.com/wonny/fundscope/pkg/httputil"
	"github.com/wonny/fundscope/pkg/logger"
)

// TickerRunner runs the pipeline for one ticker
type TickerRunner interface {
	Run(ctx context.Context, ticker string) (*pipeline.Result, error)
}

// RefreshJob recomputes every watchlist ticker and writes the results to the
// store. Throttled or failing upstream responses are retried per ticker.
type RefreshJob struct {
	runner    TickerRunner
	watchlist *Watchlist
	workers   int
	retries   uint64
	backoff   time.Duration
	logger    *logger.Logger
}

// NewRefreshJob creates a refresh job. workers applies when the watchlist
// does not set its own.
func NewRefreshJob(runner TickerRunner, wl *Watchlist, workers int, log *logger.Logger) *RefreshJob {
	if wl.Workers > 0 {
		workers = wl.Workers
	}
	if workers < 1 {
		workers = 1
	}
	return &RefreshJob{
		runner:    runner,
		watchlist: wl,
		workers:   workers,
		retries:   3,
		backoff:   2 * time.Second,
		logger:    logger.OrNop(log).WithField("job", "fundamentals_refresh"),
	}
}

// WithBackoff overrides the per-ticker retry policy
func (j *RefreshJob) WithBackoff(retries uint64, base time.Duration) *RefreshJob {
	j.retries = retries
	j.backoff = base
	return j
}

// Name returns the job name
func (j *RefreshJob) Name() string {
	return "fundamentals_refresh"
}

// Schedule returns the cron schedule
func (j *RefreshJob) Schedule() string {
	return j.watchlist.Schedule
}

// Run refreshes all tickers. It fails only when every ticker failed, which
// points at the upstream or the store rather than at one filer.
func (j *RefreshJob) Run(ctx context.Context) error {
	tickers := j.watchlist.Tickers
	j.logger.WithFields(map[string]interface{}{
		"tickers": len(tickers),
		"workers": j.workers,
	}).Info("Starting watchlist refresh")

	sem := semaphore.NewWeighted(int64(j.workers))
	errs := make([]error, len(tickers))
	var wg sync.WaitGroup

	for i, ticker := range tickers {
		if err := sem.Acquire(ctx, 1); err != nil {
			errs[i] = fmt.Errorf("%s: %w", ticker, err)
			continue
		}
		wg.Add(1)
		go func(i int, ticker string) {
			defer wg.Done()
			defer sem.Release(1)
			errs[i] = j.refresh(ctx, ticker)
		}(i, ticker)
	}
	wg.Wait()

	var failed []error
	for _, err := range errs {
		if err != nil {
			failed = append(failed, err)
		}
	}

	j.logger.WithFields(map[string]interface{}{
		"success": len(tickers) - len(failed),
		"failed":  len(failed),
	}).Info("Watchlist refresh completed")

	if len(failed) > 0 && len(failed) == len(tickers) {
		return fmt.Errorf("all %d tickers failed: %w", len(tickers), errors.Join(failed...))
	}
	return nil
}

func (j *RefreshJob) refresh(ctx context.Context, ticker string) error {
	b := retry.WithMaxRetries(j.retries, retry.NewExponential(j.backoff))
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		_, err := j.runner.Run(ctx, ticker)
		if Retryable(err) {
			j.logger.WithError(err).WithField("ticker", ticker).Debug("Retrying ticker")
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		j.logger.WithError(err).WithField("ticker", ticker).Warn("Ticker refresh failed")
		return fmt.Errorf("%s: %w", ticker, err)
	}
	return nil
}

// Retryable reports whether err is an upstream response worth retrying
// (5xx or 429)
func Retryable(err error) bool {
	var fe *httputil.FetchError
	return errors.As(err, &fe) && fe.Retryable()
}
