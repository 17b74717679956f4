// Package command contains write operations (CQRS - Commands).
// Commands re-fetch upstream feeds, store schedule snapshots and keep the
// cache in step with what was stored.
package command

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
// REFRESH GROUP COMMAND
// Rebuilds the schedule of one subgroup from live feeds, stores an immutable
// snapshot and replaces the cached schedule. The worker runs this on a cron
// schedule; the CLI runs it on demand.
// ══════════════════════════════════════════════════════════════════════════════

// RefreshGroupCommand contains the data needed to refresh a subgroup.
type RefreshGroupCommand struct {
	// Subgroup is the raw subgroup name; it is canonicalized before use.
	Subgroup string

	// Window overrides semester detection when set.
	Window *schedule.SemesterWindow
}

// Validate validates the command.
func (c RefreshGroupCommand) Validate() error {
	if _, err := shared.NewSubgroup(c.Subgroup); err != nil {
		return shared.WrapError("command", "RefreshGroup", shared.ErrInvalidInput, "subgroup", err)
	}
	return nil
}

// RefreshGroupResult contains the result of a refresh.
type RefreshGroupResult struct {
	// Snapshot is the stored snapshot. Nil when the rebuilt schedule was
	// empty: empty schedules are not persisted.
	Snapshot *schedule.ScheduleSnapshot

	// LessonCount is the number of lessons in the rebuilt schedule.
	LessonCount int

	// SkippedCount is the number of raw records the merge skipped.
	SkippedCount int
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// RefreshGroupHandler handles RefreshGroupCommand.
type RefreshGroupHandler struct {
	groups    schedule.GroupRepository
	feeds     schedule.FeedProvider
	snapshots schedule.SnapshotRepository
	cache     schedule.Cache
	merger    *schedule.Merger

	cacheTTL time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

// NewRefreshGroupHandler creates a new RefreshGroupHandler. The cache is
// optional.
func NewRefreshGroupHandler(
	groups schedule.GroupRepository,
	feeds schedule.FeedProvider,
	snapshots schedule.SnapshotRepository,
	cache schedule.Cache,
	merger *schedule.Merger,
	cacheTTL time.Duration,
	logger *slog.Logger,
) *RefreshGroupHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RefreshGroupHandler{
		groups:    groups,
		feeds:     feeds,
		snapshots: snapshots,
		cache:     cache,
		merger:    merger,
		cacheTTL:  cacheTTL,
		now:       timeutil.Now,
		logger:    logger.With(slog.String("component", "refresh_group")),
	}
}

// Handle executes the refresh command.
func (h *RefreshGroupHandler) Handle(ctx context.Context, cmd RefreshGroupCommand) (*RefreshGroupResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	subgroup, _ := shared.NewSubgroup(cmd.Subgroup)

	window := schedule.CurrentWindow(h.now())
	if cmd.Window != nil {
		window = *cmd.Window
	}

	profile, err := h.loadProfile(ctx, subgroup)
	if err != nil {
		return nil, err
	}

	sources, err := h.feeds.FetchFeeds(ctx, profile.FeedFilter(window))
	if err != nil {
		return nil, fmt.Errorf("refresh_group: fetch feeds: %w", err)
	}

	unified, err := h.merger.Merge(sources, subgroup.String(), window.Start)
	if err != nil {
		return nil, fmt.Errorf("refresh_group: merge: %w", err)
	}

	result := &RefreshGroupResult{
		LessonCount:  len(unified.Lessons),
		SkippedCount: len(unified.Skips),
	}

	if unified.IsEmpty() {
		// Nothing published for the window: keep the previous snapshot and
		// drop the cached schedule so readers see the empty state.
		h.logger.Info("rebuilt schedule is empty, snapshot kept",
			slog.String("subgroup", subgroup.String()))
		h.invalidateCache(ctx, subgroup, window)
		return result, nil
	}

	snapshot := &schedule.ScheduleSnapshot{
		Subgroup:     subgroup,
		Season:       window.Season,
		AcademicYear: window.AcademicYear,
		TakenAt:      h.now(),
		Lessons:      unified.Lessons,
		SkippedCount: len(unified.Skips),
	}
	if err := h.snapshots.Save(ctx, snapshot); err != nil {
		return nil, fmt.Errorf("refresh_group: save snapshot: %w", err)
	}
	result.Snapshot = snapshot

	if h.cache != nil {
		if err := h.cache.Set(ctx, unified, window, h.cacheTTL); err != nil {
			h.logger.Warn("cache store failed",
				slog.String("subgroup", subgroup.String()), slog.Any("error", err))
		}
	}

	h.logger.Info("subgroup refreshed",
		slog.String("subgroup", subgroup.String()),
		slog.Int("lessons", result.LessonCount),
		slog.Int("skipped", result.SkippedCount))
	return result, nil
}

func (h *RefreshGroupHandler) loadProfile(ctx context.Context, subgroup shared.Subgroup) (*schedule.GroupProfile, error) {
	profile, err := h.groups.GetBySubgroup(ctx, subgroup.String())
	if err == nil {
		return profile, nil
	}
	if errors.Is(err, shared.ErrNotFound) {
		return &schedule.GroupProfile{Subgroup: subgroup}, nil
	}
	return nil, fmt.Errorf("refresh_group: load profile: %w", err)
}

func (h *RefreshGroupHandler) invalidateCache(ctx context.Context, subgroup shared.Subgroup, window schedule.SemesterWindow) {
	if h.cache == nil {
		return
	}
	if err := h.cache.Invalidate(ctx, subgroup.String(), window); err != nil {
		h.logger.Warn("cache invalidation failed",
			slog.String("subgroup", subgroup.String()), slog.Any("error", err))
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// BULK REFRESH COMMAND
// ══════════════════════════════════════════════════════════════════════════════

// RefreshAllGroupsCommand triggers a refresh of every registered subgroup.
type RefreshAllGroupsCommand struct {
	// Window overrides semester detection for the whole run.
	Window *schedule.SemesterWindow

	// Concurrency controls how many subgroups refresh in parallel.
	Concurrency int
}

// RefreshAllGroupsResult contains the result of a bulk refresh.
type RefreshAllGroupsResult struct {
	// TotalGroups is the count of registered subgroups.
	TotalGroups int

	// RefreshedCount is the count of subgroups whose snapshot was replaced.
	RefreshedCount int

	// FailedCount is the count of subgroups that failed to refresh.
	FailedCount int

	// Errors contains refresh errors by subgroup.
	Errors map[string]error

	// Duration is the total run duration.
	Duration time.Duration
}

// RefreshAllGroupsHandler handles bulk refreshes.
type RefreshAllGroupsHandler struct {
	groups         schedule.GroupRepository
	refreshHandler *RefreshGroupHandler
	logger         *slog.Logger
}

// NewRefreshAllGroupsHandler creates a new bulk refresh handler.
func NewRefreshAllGroupsHandler(
	groups schedule.GroupRepository,
	refreshHandler *RefreshGroupHandler,
	logger *slog.Logger,
) *RefreshAllGroupsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RefreshAllGroupsHandler{
		groups:         groups,
		refreshHandler: refreshHandler,
		logger:         logger.With(slog.String("component", "refresh_all")),
	}
}

// Handle executes the bulk refresh command.
func (h *RefreshAllGroupsHandler) Handle(ctx context.Context, cmd RefreshAllGroupsCommand) (*RefreshAllGroupsResult, error) {
	started := time.Now()
	result := &RefreshAllGroupsResult{Errors: make(map[string]error)}

	profiles, err := h.groups.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("refresh_all: list groups: %w", err)
	}
	result.TotalGroups = len(profiles)

	concurrency := cmd.Concurrency
	if concurrency <= 0 {
		concurrency = 3
	}
	sem := make(chan struct{}, concurrency)

	type refreshItem struct {
		subgroup  string
		refreshed bool
		err       error
	}
	results := make(chan refreshItem, len(profiles))

	for _, profile := range profiles {
		sem <- struct{}{}

		go func(p *schedule.GroupProfile) {
			defer func() { <-sem }()

			res, refreshErr := h.refreshHandler.Handle(ctx, RefreshGroupCommand{
				Subgroup: p.Subgroup.String(),
				Window:   cmd.Window,
			})
			if refreshErr != nil {
				results <- refreshItem{p.Subgroup.String(), false, refreshErr}
				return
			}
			results <- refreshItem{p.Subgroup.String(), res.Snapshot != nil, nil}
		}(profile)
	}

	for range profiles {
		r := <-results
		if r.err != nil {
			result.FailedCount++
			result.Errors[r.subgroup] = r.err
		} else if r.refreshed {
			result.RefreshedCount++
		}
	}

	result.Duration = time.Since(started)
	h.logger.Info("bulk refresh finished",
		slog.Int("total", result.TotalGroups),
		slog.Int("refreshed", result.RefreshedCount),
		slog.Int("failed", result.FailedCount),
		slog.Duration("duration", result.Duration))
	return result, nil
}
