package command

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/szgmu-hub/schedule-hub/internal/domain/schedule"
	"github.com/szgmu-hub/schedule-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// FAKES
// ══════════════════════════════════════════════════════════════════════════════

type fakeGroups struct {
	profiles map[string]*schedule.GroupProfile
	saved    []*schedule.GroupProfile
}

func (f *fakeGroups) Save(_ context.Context, p *schedule.GroupProfile) error {
	if f.profiles == nil {
		f.profiles = make(map[string]*schedule.GroupProfile)
	}
	f.profiles[p.Subgroup.String()] = p
	f.saved = append(f.saved, p)
	return nil
}

func (f *fakeGroups) GetBySubgroup(_ context.Context, subgroup string) (*schedule.GroupProfile, error) {
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
	sources [][]schedule.RawRecord
	err     error
}

func (f *fakeFeeds) FetchFeeds(_ context.Context, _ schedule.FeedFilter) ([][]schedule.RawRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.sources, nil
}

type fakeSnapshots struct {
	saved []*schedule.ScheduleSnapshot
	err   error
}

func (f *fakeSnapshots) Save(_ context.Context, s *schedule.ScheduleSnapshot) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, s)
	return nil
}

func (f *fakeSnapshots) Latest(_ context.Context, _ string) (*schedule.ScheduleSnapshot, error) {
	if len(f.saved) == 0 {
		return nil, shared.ErrNotFound
	}
	return f.saved[len(f.saved)-1], nil
}

type fakeCache struct {
	stored        map[string]*schedule.UnifiedSchedule
	invalidations int
}

func cacheKey(subgroup string, w schedule.SemesterWindow) string {
	return subgroup + "|" + w.AcademicYear.String() + "|" + w.Season.String()
}

func (f *fakeCache) Get(_ context.Context, subgroup string, w schedule.SemesterWindow) (*schedule.UnifiedSchedule, error) {
	return f.stored[cacheKey(subgroup, w)], nil
}

func (f *fakeCache) Set(_ context.Context, s *schedule.UnifiedSchedule, w schedule.SemesterWindow, _ time.Duration) error {
	if f.stored == nil {
		f.stored = make(map[string]*schedule.UnifiedSchedule)
	}
	f.stored[cacheKey(s.Subgroup.String(), w)] = s
	return nil
}

func (f *fakeCache) Invalidate(_ context.Context, subgroup string, w schedule.SemesterWindow) error {
	f.invalidations++
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

func seminarRecord(subject, sourceID string) schedule.RawRecord {
	return schedule.RawRecord{
		Subject:    subject,
		LessonType: "семинарского",
		PairTime:   "10.45-12.15",
		WeekNumber: 2,
		DayName:    "вт",
		Subgroup:   "103а",
		SourceID:   sourceID,
	}
}

func newRefreshHandler(groups *fakeGroups, feeds *fakeFeeds, snapshots *fakeSnapshots, cache *fakeCache) *RefreshGroupHandler {
	var c schedule.Cache
	if cache != nil {
		c = cache
	}
	return NewRefreshGroupHandler(groups, feeds, snapshots, c, testMerger(), time.Minute, nil)
}

// ══════════════════════════════════════════════════════════════════════════════
// TESTS
// ══════════════════════════════════════════════════════════════════════════════

func TestRefreshGroup_StoresSnapshotAndCache(t *testing.T) {
	window := testWindow()
	snapshots := &fakeSnapshots{}
	cache := &fakeCache{}
	feeds := &fakeFeeds{sources: [][]schedule.RawRecord{{seminarRecord("Гистология", "205")}}}
	handler := newRefreshHandler(&fakeGroups{}, feeds, snapshots, cache)

	result, err := handler.Handle(context.Background(), RefreshGroupCommand{Subgroup: "103а", Window: window})
	require.NoError(t, err)

	require.NotNil(t, result.Snapshot)
	assert.Equal(t, 1, result.LessonCount)
	assert.Zero(t, result.SkippedCount)

	require.Len(t, snapshots.saved, 1)
	saved := snapshots.saved[0]
	assert.Equal(t, shared.Subgroup("103А"), saved.Subgroup)
	assert.Equal(t, schedule.SeasonAutumn, saved.Season)
	assert.Equal(t, shared.AcademicYear("2025/2026"), saved.AcademicYear)
	require.Len(t, saved.Lessons, 1)
	assert.Equal(t, "Гистология", saved.Lessons[0].Subject)

	cached, err := cache.Get(context.Background(), "103А", *window)
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Len(t, cached.Lessons, 1)
}

func TestRefreshGroup_EmptyScheduleKeepsSnapshot(t *testing.T) {
	window := testWindow()
	snapshots := &fakeSnapshots{}
	cache := &fakeCache{stored: map[string]*schedule.UnifiedSchedule{
		cacheKey("103А", *window): {Subgroup: shared.Subgroup("103А")},
	}}
	handler := newRefreshHandler(&fakeGroups{}, &fakeFeeds{}, snapshots, cache)

	result, err := handler.Handle(context.Background(), RefreshGroupCommand{Subgroup: "103а", Window: window})
	require.NoError(t, err)

	assert.Nil(t, result.Snapshot)
	assert.Empty(t, snapshots.saved)
	assert.Equal(t, 1, cache.invalidations, "stale cache entry must be dropped")
}

func TestRefreshGroup_FetchErrorPropagates(t *testing.T) {
	fetchErr := errors.New("upstream down")
	handler := newRefreshHandler(&fakeGroups{}, &fakeFeeds{err: fetchErr}, &fakeSnapshots{}, nil)

	_, err := handler.Handle(context.Background(), RefreshGroupCommand{Subgroup: "103а", Window: testWindow()})
	assert.ErrorIs(t, err, fetchErr)
}

func TestRefreshGroup_SnapshotSaveErrorPropagates(t *testing.T) {
	saveErr := errors.New("db down")
	feeds := &fakeFeeds{sources: [][]schedule.RawRecord{{seminarRecord("Гистология", "205")}}}
	handler := newRefreshHandler(&fakeGroups{}, feeds, &fakeSnapshots{err: saveErr}, nil)

	_, err := handler.Handle(context.Background(), RefreshGroupCommand{Subgroup: "103а", Window: testWindow()})
	assert.ErrorIs(t, err, saveErr)
}

func TestRefreshGroup_BlankSubgroup(t *testing.T) {
	handler := newRefreshHandler(&fakeGroups{}, &fakeFeeds{}, &fakeSnapshots{}, nil)

	_, err := handler.Handle(context.Background(), RefreshGroupCommand{Subgroup: ""})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestRefreshAllGroups(t *testing.T) {
	groups := &fakeGroups{profiles: map[string]*schedule.GroupProfile{
		"103А": {Subgroup: shared.Subgroup("103А")},
		"204Б": {Subgroup: shared.Subgroup("204Б")},
	}}
	feeds := &fakeFeeds{sources: [][]schedule.RawRecord{{seminarRecord("Гистология", "205")}}}
	refresh := newRefreshHandler(groups, feeds, &fakeSnapshots{}, nil)
	handler := NewRefreshAllGroupsHandler(groups, refresh, nil)

	result, err := handler.Handle(context.Background(), RefreshAllGroupsCommand{Window: testWindow(), Concurrency: 2})
	require.NoError(t, err)

	assert.Equal(t, 2, result.TotalGroups)
	// Only 103А has lessons in the feed; 204Б rebuilds empty and keeps its
	// previous snapshot.
	assert.Equal(t, 1, result.RefreshedCount)
	assert.Zero(t, result.FailedCount)
	assert.Empty(t, result.Errors)
}

func TestRegisterGroup_CreatesAndUpdates(t *testing.T) {
	groups := &fakeGroups{}
	handler := NewRegisterGroupHandler(groups, nil)

	created, err := handler.Handle(context.Background(), RegisterGroupCommand{
		Subgroup:     " 103а ",
		Speciality:   "лечебное дело",
		CourseNumber: "1",
	})
	require.NoError(t, err)
	assert.True(t, created.Created)
	assert.Equal(t, shared.Subgroup("103А"), created.Profile.Subgroup)

	// Second registration updates in place.
	groups.profiles["103А"].ID = "existing-id"
	updated, err := handler.Handle(context.Background(), RegisterGroupCommand{
		Subgroup:   "103А",
		Speciality: "педиатрия",
	})
	require.NoError(t, err)
	assert.False(t, updated.Created)
	assert.Equal(t, "existing-id", updated.Profile.ID)
	assert.Equal(t, "педиатрия", updated.Profile.Speciality)
}
