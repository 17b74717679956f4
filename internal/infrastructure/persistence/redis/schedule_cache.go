package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/szgmu-hub/schedule-hub/internal/domain/schedule"
)

// ══════════════════════════════════════════════════════════════════════════════
// SCHEDULE CACHE
// ══════════════════════════════════════════════════════════════════════════════

// ScheduleCache implements schedule.Cache on top of Redis. One cached entry
// per subgroup and semester window; a cache miss is (nil, nil), not an error.
type ScheduleCache struct {
	cache *Cache
	ttl   time.Duration
}

// NewScheduleCache creates a new ScheduleCache. A non-positive ttl falls back
// to TTLSchedule.
func NewScheduleCache(cache *Cache, ttl time.Duration) *ScheduleCache {
	if ttl <= 0 {
		ttl = TTLSchedule
	}
	return &ScheduleCache{cache: cache, ttl: ttl}
}

// ScheduleKey generates the cache key of a subgroup's schedule in a window.
func ScheduleKey(subgroup string, window schedule.SemesterWindow) string {
	return fmt.Sprintf("%s%s:%s:%s", PrefixSchedule, subgroup, window.AcademicYear, window.Season)
}

// Get returns the cached schedule, or (nil, nil) on a miss.
func (c *ScheduleCache) Get(ctx context.Context, subgroup string, window schedule.SemesterWindow) (*schedule.UnifiedSchedule, error) {
	var cached schedule.UnifiedSchedule
	err := c.cache.Get(ctx, ScheduleKey(subgroup, window), &cached)
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cached schedule: %w", err)
	}
	return &cached, nil
}

// Set stores a schedule for the window. A non-positive ttl uses the cache
// default.
func (c *ScheduleCache) Set(ctx context.Context, s *schedule.UnifiedSchedule, window schedule.SemesterWindow, ttl time.Duration) error {
	if s == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = c.ttl
	}
	key := ScheduleKey(s.Subgroup.String(), window)
	if err := c.cache.Set(ctx, key, s, ttl); err != nil {
		return fmt.Errorf("cache schedule: %w", err)
	}
	return nil
}

// Invalidate drops the cached schedule of a subgroup in the window.
func (c *ScheduleCache) Invalidate(ctx context.Context, subgroup string, window schedule.SemesterWindow) error {
	return c.cache.Delete(ctx, ScheduleKey(subgroup, window))
}

// InvalidateAll drops every cached schedule of a subgroup across windows.
// Used when a subgroup profile changes its search parameters.
func (c *ScheduleCache) InvalidateAll(ctx context.Context, subgroup string) error {
	return c.cache.DeleteByPattern(ctx, PrefixSchedule+subgroup+":*")
}
