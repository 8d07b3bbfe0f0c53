package pipeline

import (
	"context"
	"sync"
)

// BatchResult is the outcome for one ticker of a batch
type BatchResult struct {
	Ticker string
	Result *Result
	Error  error
}

// RunBatch runs the pipeline for every ticker on a bounded worker pool.
// Results come back in input order.
func (r *Runner) RunBatch(ctx context.Context, tickers []string, workers int) []BatchResult {
	if workers < 1 {
		workers = 1
	}

	r.logger.WithFields(map[string]interface{}{
		"tickers": len(tickers),
		"workers": workers,
	}).Info("Starting batch run")

	type job struct {
		index  int
		ticker string
	}

	results := make([]BatchResult, len(tickers))
	jobCh := make(chan job, len(tickers))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for j := range jobCh {
				results[j.index] = r.runOne(ctx, workerID, j.ticker)
			}
		}(i)
	}

	for i, t := range tickers {
		jobCh <- job{index: i, ticker: t}
	}
	close(jobCh)
	wg.Wait()

	success, failed := 0, 0
	for _, res := range results {
		if res.Error != nil {
			failed++
		} else {
			success++
		}
	}

	r.logger.WithFields(map[string]interface{}{
		"success": success,
		"failed":  failed,
		"total":   len(results),
	}).Info("Batch run completed")

	return results
}

func (r *Runner) runOne(ctx context.Context, workerID int, ticker string) BatchResult {
	select {
	case <-ctx.Done():
		return BatchResult{Ticker: ticker, Error: ctx.Err()}
	default:
	}

	res, err := r.Run(ctx, ticker)
	if err != nil {
		r.logger.WithError(err).WithFields(map[string]interface{}{
			"worker": workerID,
			"ticker": ticker,
		}).Error("Pipeline run failed")
	}
	return BatchResult{Ticker: ticker, Result: res, Error: err}
}
