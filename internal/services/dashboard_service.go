package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"bikeshare/internal/cache"
	"bikeshare/internal/core"
	"bikeshare/internal/dataset"
	"bikeshare/internal/log"
	"bikeshare/internal/metrics"
)

// DashboardOptions tunes the result cache.
type DashboardOptions struct {
	CacheSize int
	CacheTTL  time.Duration
}

// DashboardService turns a date range into a rendered dashboard over a
// read-only dataset.
type DashboardService struct {
	dataset *dataset.Dataset
	cache   *cache.LRUCache[string, *core.Dashboard]
	group   singleflight.Group
	logger  *log.StructuredLogger

	// build is replaced in tests.
	build func([]core.UsageRecord, core.DateRange) *core.Dashboard
}

func NewDashboardService(ds *dataset.Dataset, opts DashboardOptions) *DashboardService {
	if opts.CacheSize <= 0 {
		opts.CacheSize = 128
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 10 * time.Minute
	}
	metrics.RecordDataset(ds.Len(), ds.LoadedAt())
	return &DashboardService{
		dataset: ds,
		cache:   cache.NewLRUCache[string, *core.Dashboard](opts.CacheSize, opts.CacheTTL),
		logger:  log.NewStructuredLogger(log.ForComponent(log.ComponentDashboard)),
		build:   core.BuildDashboard,
	}
}

// Dataset returns the dataset the service renders from.
func (s *DashboardService) Dataset() *dataset.Dataset {
	return s.dataset
}

// Cache exposes the result cache so it can be registered for cleanup.
func (s *DashboardService) Cache() *cache.LRUCache[string, *core.Dashboard] {
	return s.cache
}

// DefaultRange spans the whole dataset.
func (s *DashboardService) DefaultRange() core.DateRange {
	return s.dataset.DefaultRange()
}

// Render clamps r to the dataset bounds and returns the dashboard for it.
// Results are cached per range and concurrent requests for the same range
// share one computation. The returned value must not be modified.
func (s *DashboardService) Render(ctx context.Context, r core.DateRange) (*core.Dashboard, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("render dashboard: %w", err)
	}

	r = s.dataset.Clamp(r)
	key := r.Key()
	start := time.Now()

	if d, ok := s.cache.Get(key); ok {
		metrics.DashboardCacheHits.Inc()
		s.logger.LogDashboardRendered(ctx, d.Start, d.End, d.Summary.Records, true, time.Since(start).Milliseconds())
		return d, nil
	}
	metrics.DashboardCacheMisses.Inc()

	v, err, _ := s.group.Do(key, func() (any, error) {
		// Shared by every caller of key, so no single caller's ctx applies.
		if d, ok := s.cache.Get(key); ok {
			return d, nil
		}
		computeStart := time.Now()
		d := s.build(s.dataset.Records(), r)
		metrics.DashboardRenderDuration.Observe(time.Since(computeStart).Seconds())
		metrics.FilteredRecords.Observe(float64(d.Summary.Records))

		s.cache.Set(key, d)
		metrics.DashboardCacheEntries.Set(float64(s.cache.Size()))
		return d, nil
	})
	if err != nil {
		return nil, fmt.Errorf("render dashboard %s: %w", r, err)
	}

	d := v.(*core.Dashboard)
	s.logger.LogDashboardRendered(ctx, d.Start, d.End, d.Summary.Records, false, time.Since(start).Milliseconds())
	return d, nil
}
