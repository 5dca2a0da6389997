package jobs

import (
	"context"

	"github.com/wonny/tradestats/internal/pricefeed"
	"github.com/wonny/tradestats/pkg/logger"
)

// PriceCacheSweepJob cleans stale quotes from cache
type PriceCacheSweepJob struct {
	cache    *pricefeed.Cache
	schedule string
	logger   *logger.Logger
}

// NewPriceCacheSweepJob creates a new quote cache sweep job
func NewPriceCacheSweepJob(cache *pricefeed.Cache, schedule string, log *logger.Logger) *PriceCacheSweepJob {
	if schedule == "" {
		schedule = "0 * * * * *"
	}
	return &PriceCacheSweepJob{
		cache:    cache,
		schedule: schedule,
		logger:   log,
	}
}

// Name returns the job name
func (j *PriceCacheSweepJob) Name() string {
	return "price_cache_sweep"
}

// Schedule returns the cron schedule
func (j *PriceCacheSweepJob) Schedule() string {
	return j.schedule
}

// Run executes the cache cleanup
func (j *PriceCacheSweepJob) Run(ctx context.Context) error {
	if count := j.cache.CleanStale(); count > 0 {
		j.logger.WithField("removed", count).Debug("Quote cache sweep completed")
	}
	return nil
}
