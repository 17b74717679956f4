package query

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/szgmu-hub/schedule-hub/internal/domain/schedule"
	"github.com/szgmu-hub/schedule-hub/internal/domain/shared"
	"github.com/szgmu-hub/schedule-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// FAKES
// ══════════════════════════════════════════════════════════════════════════════

type fakeGroups struct {
	profiles map[string]*schedule.GroupProfile
	err      error
}

func (f *fakeGroups) Save(_ context.Context, p *schedule.GroupProfile) error {
	if f.profiles == nil {
		f.profiles = make(map[string]*schedule.GroupProfile)
	}
	f.profiles[p.Subgroup.String()] = p
	return nil
}

func (f *fakeGroups) GetBySubgroup(_ context.Context, subgroup string) (*schedule.GroupProfile, error) {
	if f.err != nil {
		return nil, f.err
	}
	if p, ok := f.profiles[subgroup]; ok {
		return p, nil
	}
	return nil, shared.ErrNotFound
}

func (f *fakeGroups) List(_ context.Context) ([]*schedule.GroupProfile, error) {
	var all []*schedule.GroupProfile
	for _, p := range f.profiles {
		all = append(all, p)
	}
	return all, nil
}

type fakeFeeds struct {
	sources    [][]schedule.RawRecord
	err        error
	calls      int
	lastFilter schedule.FeedFilter
}

func (f *fakeFeeds) FetchFeeds(_ context.Context, filter schedule.FeedFilter) ([][]schedule.RawRecord, error) {
	f.calls++
	f.lastFilter = filter
	if f.err != nil {
		return nil, f.err
	}
	return f.sources, nil
}

type fakeSnapshots struct {
	latest *schedule.ScheduleSnapshot
	saved  []*schedule.ScheduleSnapshot
}

func (f *fakeSnapshots) Save(_ context.Context, s *schedule.ScheduleSnapshot) error {
	f.saved = append(f.saved, s)
	return nil
}

func (f *fakeSnapshots) Latest(_ context.Context, _ string) (*schedule.ScheduleSnapshot, error) {
	if f.latest == nil {
		return nil, shared.ErrNotFound
	}
	return f.latest, nil
}

type fakeCache struct {
	stored map[string]*schedule.UnifiedSchedule
	getErr error
	sets   int
}

func cacheKey(subgroup string, w schedule.SemesterWindow) string {
	return subgroup + "|" + w.AcademicYear.String() + "|" + w.Season.String()
}

func (f *fakeCache) Get(_ context.Context, subgroup string, w schedule.SemesterWindow) (*schedule.UnifiedSchedule, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.stored[cacheKey(subgroup, w)], nil
}

func (f *fakeCache) Set(_ context.Context, s *schedule.UnifiedSchedule, w schedule.SemesterWindow, _ time.Duration) error {
	if f.stored == nil {
		f.stored = make(map[string]*schedule.UnifiedSchedule)
	}
	f.stored[cacheKey(s.Subgroup.String(), w)] = s
	f.sets++
	return nil
}

func (f *fakeCache) Invalidate(_ context.Context, subgroup string, w schedule.SemesterWindow) error {
	delete(f.stored, cacheKey(subgroup, w))
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// FIXTURES
// ══════════════════════════════════════════════════════════════════════════════

func testWindow() *schedule.SemesterWindow {
	w := schedule.AutumnWindow(2025)
	return &w
}

func testMerger() *schedule.Merger {
	normalizer := schedule.NewNormalizer(schedule.DefaultRingTable(), schedule.DefaultTypeClassifier())
	return schedule.NewMerger(normalizer)
}

func lectureRecord(subject, sourceID string) schedule.RawRecord {
	return schedule.RawRecord{
		Subject:    subject,
		LessonType: "лекционного",
		Teacher:    "Иванов И.И.",
		Room:       "ауд. 5",
		PairTime:   "9.00-10.35",
		WeekNumber: 1,
		DayName:    "Понедельник",
		Subgroup:   "103а",
		SourceID:   sourceID,
	}
}

func newHandler(groups *fakeGroups, feeds *fakeFeeds, snapshots *fakeSnapshots, cache *fakeCache) *BuildScheduleHandler {
	var c schedule.Cache
	if cache != nil {
		c = cache
	}
	var s schedule.SnapshotRepository
	if snapshots != nil {
		s = snapshots
	}
	return NewBuildScheduleHandler(groups, feeds, s, c, testMerger(), time.Minute, nil)
}

// ══════════════════════════════════════════════════════════════════════════════
// TESTS
// ══════════════════════════════════════════════════════════════════════════════

func TestBuildSchedule_LiveBuild(t *testing.T) {
	feeds := &fakeFeeds{sources: [][]schedule.RawRecord{{lectureRecord("Анатомия", "118")}}}
	cache := &fakeCache{}
	handler := newHandler(&fakeGroups{}, feeds, nil, cache)

	result, err := handler.Handle(context.Background(), BuildScheduleQuery{
		Subgroup: " 103а ",
		Window:   testWindow(),
	})
	require.NoError(t, err)

	require.Len(t, result.Schedule.Lessons, 1)
	assert.Equal(t, "Анатомия", result.Schedule.Lessons[0].Subject)
	assert.Equal(t, shared.Subgroup("103А"), result.Schedule.Subgroup)
	assert.False(t, result.FromCache)
	assert.False(t, result.Stale)
	assert.Equal(t, 1, cache.sets)
}

func TestBuildSchedule_CacheHit(t *testing.T) {
	window := testWindow()
	cached := &schedule.UnifiedSchedule{Subgroup: shared.Subgroup("103А")}
	cache := &fakeCache{stored: map[string]*schedule.UnifiedSchedule{
		cacheKey("103А", *window): cached,
	}}
	feeds := &fakeFeeds{}
	handler := newHandler(&fakeGroups{}, feeds, nil, cache)

	result, err := handler.Handle(context.Background(), BuildScheduleQuery{Subgroup: "103а", Window: window})
	require.NoError(t, err)

	assert.True(t, result.FromCache)
	assert.Same(t, cached, result.Schedule)
	assert.Zero(t, feeds.calls, "cache hit must not reach the feeds")
}

func TestBuildSchedule_SkipCache(t *testing.T) {
	window := testWindow()
	cache := &fakeCache{stored: map[string]*schedule.UnifiedSchedule{
		cacheKey("103А", *window): {Subgroup: shared.Subgroup("103А")},
	}}
	feeds := &fakeFeeds{sources: [][]schedule.RawRecord{{lectureRecord("Анатомия", "118")}}}
	handler := newHandler(&fakeGroups{}, feeds, nil, cache)

	result, err := handler.Handle(context.Background(), BuildScheduleQuery{
		Subgroup:  "103а",
		Window:    window,
		SkipCache: true,
	})
	require.NoError(t, err)

	assert.False(t, result.FromCache)
	assert.Equal(t, 1, feeds.calls)
}

func TestBuildSchedule_StoredProfileNarrowsFilter(t *testing.T) {
	window := testWindow()
	groups := &fakeGroups{profiles: map[string]*schedule.GroupProfile{
		"103А": {
			Subgroup:     shared.Subgroup("103А"),
			Speciality:   "лечебное дело",
			CourseNumber: "1",
		},
	}}
	feeds := &fakeFeeds{}
	handler := newHandler(groups, feeds, nil, nil)

	_, err := handler.Handle(context.Background(), BuildScheduleQuery{Subgroup: "103а", Window: window})
	require.NoError(t, err)

	assert.Equal(t, []string{"лечебное дело"}, feeds.lastFilter.Speciality)
	assert.Equal(t, []string{"1"}, feeds.lastFilter.CourseNumber)
	assert.Equal(t, []string{"2025/2026"}, feeds.lastFilter.AcademicYear)
	assert.Equal(t, []string{"осенний"}, feeds.lastFilter.Semester)
}

func TestBuildSchedule_SnapshotFallback(t *testing.T) {
	window := testWindow()
	snapshots := &fakeSnapshots{latest: &schedule.ScheduleSnapshot{
		Subgroup: shared.Subgroup("103А"),
		TakenAt:  timeutil.Date(2025, 9, 1),
		Lessons: []schedule.Lesson{
			{Subject: "Анатомия", Type: schedule.TypeLecture, Subgroup: shared.Subgroup("103А")},
		},
	}}
	feeds := &fakeFeeds{err: errors.New("connection refused")}
	handler := newHandler(&fakeGroups{}, feeds, snapshots, nil)

	result, err := handler.Handle(context.Background(), BuildScheduleQuery{Subgroup: "103а", Window: window})
	require.NoError(t, err)

	assert.True(t, result.Stale)
	require.Len(t, result.Schedule.Lessons, 1)
	assert.Equal(t, "Анатомия", result.Schedule.Lessons[0].Subject)
}

func TestBuildSchedule_FetchErrorWithoutSnapshot(t *testing.T) {
	fetchErr := errors.New("connection refused")
	feeds := &fakeFeeds{err: fetchErr}
	handler := newHandler(&fakeGroups{}, feeds, &fakeSnapshots{}, nil)

	_, err := handler.Handle(context.Background(), BuildScheduleQuery{Subgroup: "103а", Window: testWindow()})
	assert.ErrorIs(t, err, fetchErr)
}

func TestBuildSchedule_BlankSubgroup(t *testing.T) {
	handler := newHandler(&fakeGroups{}, &fakeFeeds{}, nil, nil)

	_, err := handler.Handle(context.Background(), BuildScheduleQuery{Subgroup: "   "})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestBuildSchedule_EmptyFeedsIsNotAnError(t *testing.T) {
	handler := newHandler(&fakeGroups{}, &fakeFeeds{}, nil, nil)

	result, err := handler.Handle(context.Background(), BuildScheduleQuery{Subgroup: "103а", Window: testWindow()})
	require.NoError(t, err)
	assert.True(t, result.Schedule.IsEmpty())
}
