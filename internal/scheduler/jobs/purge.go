package jobs

import (
	"context"
	"time"

	"github.com/wonny/fundscope/pkg/logger"
)

// Purger deletes stored series computed before a cutoff
type Purger interface {
	Purge(ctx context.Context, cutoff time.Time) (int64, error)
}

// PurgeJob drops stored series that no refresh has touched for a while,
// typically tickers removed from the watchlist
type PurgeJob struct {
	store     Purger
	retention time.Duration
	now       func() time.Time
	logger    *logger.Logger
}

// NewPurgeJob creates a purge job
func NewPurgeJob(store Purger, retention time.Duration, log *logger.Logger) *PurgeJob {
	return &PurgeJob{
		store:     store,
		retention: retention,
		now:       time.Now,
		logger:    logger.OrNop(log).WithField("job", "results_purge"),
	}
}

// Name returns the job name
func (j *PurgeJob) Name() string {
	return "results_purge"
}

// Schedule returns the cron schedule (Sundays 03:00)
func (j *PurgeJob) Schedule() string {
	return "0 0 3 * * 0"
}

// Run executes the purge
func (j *PurgeJob) Run(ctx context.Context) error {
	cutoff := j.now().Add(-j.retention)

	count, err := j.store.Purge(ctx, cutoff)
	if err != nil {
		return err
	}

	if count > 0 {
		j.logger.WithFields(map[string]interface{}{
			"removed": count,
			"cutoff":  cutoff.Format(time.RFC3339),
		}).Info("Purged stale results")
	}

	return nil
}
