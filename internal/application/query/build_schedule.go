// Package query contains read operations (CQRS - Queries).
// Queries assemble schedules for callers without changing stored state;
// the only side effect they allow themselves is filling the cache.
package query

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/szgmu-hub/schedule-hub/internal/domain/schedule"
	"github.com/szgmu-hub/schedule-hub/internal/domain/shared"
	"github.com/szgmu-hub/schedule-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// BUILD SCHEDULE QUERY
// Assembles the unified schedule of one subgroup for the active semester:
// cache first, then live feeds, then the last stored snapshot as a fallback
// when the university API is unavailable.
// ══════════════════════════════════════════════════════════════════════════════

// BuildScheduleQuery contains the parameters of a schedule request.
type BuildScheduleQuery struct {
	// Subgroup is the raw subgroup name; it is canonicalized before use.
	Subgroup string

	// Window overrides semester detection when set. When nil the window is
	// derived from the current Moscow date.
	Window *schedule.SemesterWindow

	// SkipCache forces a live rebuild even when a cached schedule exists.
	SkipCache bool
}

// Validate validates the query.
func (q BuildScheduleQuery) Validate() error {
	if _, err := shared.NewSubgroup(q.Subgroup); err != nil {
		return shared.WrapError("query", "BuildSchedule", shared.ErrInvalidInput, "subgroup", err)
	}
	return nil
}

// BuildScheduleResult contains the assembled schedule and its provenance.
type BuildScheduleResult struct {
	// Schedule is the unified schedule. Never nil on success; may be empty
	// when the university has not published feeds for the window yet.
	Schedule *schedule.UnifiedSchedule

	// Window is the semester window the schedule was built for.
	Window schedule.SemesterWindow

	// FromCache reports that the schedule was served from the cache.
	FromCache bool

	// Stale reports that live feeds were unreachable and the schedule was
	// restored from the last stored snapshot.
	Stale bool
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// BuildScheduleHandler handles BuildScheduleQuery.
type BuildScheduleHandler struct {
	groups    schedule.GroupRepository
	feeds     schedule.FeedProvider
	snapshots schedule.SnapshotRepository
	cache     schedule.Cache
	merger    *schedule.Merger

	cacheTTL time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

// NewBuildScheduleHandler creates a new BuildScheduleHandler. The cache and
// the snapshot repository are optional; a nil cache disables caching and a
// nil snapshot repository disables the stale fallback.
func NewBuildScheduleHandler(
	groups schedule.GroupRepository,
	feeds schedule.FeedProvider,
	snapshots schedule.SnapshotRepository,
	cache schedule.Cache,
	merger *schedule.Merger,
	cacheTTL time.Duration,
	logger *slog.Logger,
) *BuildScheduleHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &BuildScheduleHandler{
		groups:    groups,
		feeds:     feeds,
		snapshots: snapshots,
		cache:     cache,
		merger:    merger,
		cacheTTL:  cacheTTL,
		now:       timeutil.Now,
		logger:    logger.With(slog.String("component", "build_schedule")),
	}
}

// Handle executes the query.
func (h *BuildScheduleHandler) Handle(ctx context.Context, q BuildScheduleQuery) (*BuildScheduleResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	subgroup, _ := shared.NewSubgroup(q.Subgroup)

	window := schedule.CurrentWindow(h.now())
	if q.Window != nil {
		window = *q.Window
	}

	if !q.SkipCache && h.cache != nil {
		cached, err := h.cache.Get(ctx, subgroup.String(), window)
		if err != nil {
			h.logger.Warn("cache lookup failed", slog.String("subgroup", subgroup.String()), slog.Any("error", err))
		}
		if cached != nil {
			return &BuildScheduleResult{Schedule: cached, Window: window, FromCache: true}, nil
		}
	}

	unified, err := h.buildLive(ctx, subgroup, window)
	if err != nil {
		return h.fallbackToSnapshot(ctx, subgroup, window, err)
	}

	if h.cache != nil {
		if err := h.cache.Set(ctx, unified, window, h.cacheTTL); err != nil {
			h.logger.Warn("cache store failed", slog.String("subgroup", subgroup.String()), slog.Any("error", err))
		}
	}

	return &BuildScheduleResult{Schedule: unified, Window: window}, nil
}

// buildLive fetches the feeds for the subgroup's profile and merges them.
func (h *BuildScheduleHandler) buildLive(ctx context.Context, subgroup shared.Subgroup, window schedule.SemesterWindow) (*schedule.UnifiedSchedule, error) {
	profile, err := h.loadProfile(ctx, subgroup)
	if err != nil {
		return nil, err
	}

	sources, err := h.feeds.FetchFeeds(ctx, profile.FeedFilter(window))
	if err != nil {
		return nil, fmt.Errorf("build_schedule: fetch feeds: %w", err)
	}

	unified, err := h.merger.Merge(sources, subgroup.String(), window.Start)
	if err != nil {
		return nil, fmt.Errorf("build_schedule: merge: %w", err)
	}
	return unified, nil
}

// loadProfile resolves the stored group profile. An unregistered subgroup is
// served with a minimal profile: the upstream filter then narrows only by
// semester and the merge narrows by subgroup.
func (h *BuildScheduleHandler) loadProfile(ctx context.Context, subgroup shared.Subgroup) (*schedule.GroupProfile, error) {
	profile, err := h.groups.GetBySubgroup(ctx, subgroup.String())
	if err == nil {
		return profile, nil
	}
	if errors.Is(err, shared.ErrNotFound) {
		h.logger.Debug("no stored profile, using minimal filter", slog.String("subgroup", subgroup.String()))
		return &schedule.GroupProfile{Subgroup: subgroup}, nil
	}
	return nil, fmt.Errorf("build_schedule: load profile: %w", err)
}

// fallbackToSnapshot serves the last stored snapshot when live feeds are
// unreachable. The original fetch error is returned when no snapshot exists.
func (h *BuildScheduleHandler) fallbackToSnapshot(
	ctx context.Context,
	subgroup shared.Subgroup,
	window schedule.SemesterWindow,
	fetchErr error,
) (*BuildScheduleResult, error) {
	if h.snapshots == nil {
		return nil, fetchErr
	}

	snapshot, err := h.snapshots.Latest(ctx, subgroup.String())
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			h.logger.Warn("snapshot fallback failed", slog.String("subgroup", subgroup.String()), slog.Any("error", err))
		}
		return nil, fetchErr
	}

	h.logger.Warn("serving stale schedule from snapshot",
		slog.String("subgroup", subgroup.String()),
		slog.Time("taken_at", snapshot.TakenAt),
		slog.Any("error", fetchErr))

	return &BuildScheduleResult{
		Schedule: &schedule.UnifiedSchedule{
			Subgroup:      snapshot.Subgroup,
			SemesterStart: window.Start,
			Lessons:       snapshot.Lessons,
		},
		Window: window,
		Stale:  true,
	}, nil
}
