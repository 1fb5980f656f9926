package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/supersignal/internal/contracts"
	"github.com/wonny/supersignal/internal/risk"
	"github.com/wonny/supersignal/pkg/logger"
)

// Screener runs a batch; *batch.Coordinator implements it
type Screener interface {
	Screen(ctx context.Context, tickers []string, th risk.Thresholds) (*contracts.BatchResult, error)
}

// WarmCacheJob screens the watchlist so API requests find provider data cached
type WarmCacheJob struct {
	screener   Screener
	tickers    []string
	thresholds risk.Thresholds
	schedule   string
	logger     *logger.Logger
}

// NewWarmCacheJob creates a new warm-up job
func NewWarmCacheJob(s Screener, tickers []string, th risk.Thresholds, schedule string, log *logger.Logger) *WarmCacheJob {
	return &WarmCacheJob{
		screener:   s,
		tickers:    tickers,
		thresholds: th,
		schedule:   schedule,
		logger:     log.Module("warm_cache"),
	}
}

// Name returns the job name
func (j *WarmCacheJob) Name() string {
	return "warm_cache"
}

// Schedule returns the cron schedule
func (j *WarmCacheJob) Schedule() string {
	return j.schedule
}

// Run screens the watchlist. Only a batch without a single report counts as a failure.
func (j *WarmCacheJob) Run(ctx context.Context) error {
	res, err := j.screener.Screen(ctx, j.tickers, j.thresholds)
	if err != nil {
		return fmt.Errorf("warm cache: %w", err)
	}

	failed := 0
	for _, r := range res.Results {
		if !r.OK() {
			failed++
		}
	}

	j.logger.WithFields(map[string]interface{}{
		"run_id":  res.RunID,
		"tickers": len(res.Results),
		"failed":  failed,
		"outcome": string(res.Outcome),
	}).Info("Watchlist screened")

	if res.Outcome == contracts.OutcomeAllFailed {
		return fmt.Errorf("warm cache: all %d tickers failed", len(res.Results))
	}
	return nil
}
