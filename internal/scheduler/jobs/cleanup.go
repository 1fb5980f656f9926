package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/supersignal/pkg/logger"
)

// Purger drops expired cache entries; the memory and postgres stores implement it
type Purger interface {
	Purge(ctx context.Context) (int64, error)
}

// CacheCleanupJob removes expired provider data from the cache
type CacheCleanupJob struct {
	store  Purger
	logger *logger.Logger
}

// NewCacheCleanupJob creates a new cache cleanup job
func NewCacheCleanupJob(store Purger, log *logger.Logger) *CacheCleanupJob {
	return &CacheCleanupJob{
		store:  store,
		logger: log.Module("cache_cleanup"),
	}
}

// Name returns the job name
func (j *CacheCleanupJob) Name() string {
	return "cache_cleanup"
}

// Schedule returns the cron schedule (every 5 minutes)
func (j *CacheCleanupJob) Schedule() string {
	return "0 */5 * * * *" // Every 5 minutes
}

// Run executes the cache cleanup
func (j *CacheCleanupJob) Run(ctx context.Context) error {
	j.logger.Debug("Starting scheduled cache cleanup")

	count, err := j.store.Purge(ctx)
	if err != nil {
		return fmt.Errorf("cache cleanup: %w", err)
	}

	if count > 0 {
		j.logger.WithField("removed", count).Info("Cache cleanup completed")
	}

	return nil
}
