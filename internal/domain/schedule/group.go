package schedule

import (
	"time"

	"github.com/szgmu-hub/schedule-hub/internal/domain/shared"
)

// GroupProfile - сохранённый профиль подгруппы: параметры, по которым в API
// университета ищутся её ленты расписания.
type GroupProfile struct {
	ID           string // UUID
	Subgroup     shared.Subgroup
	Speciality   string // например "31.05.01 лечебное дело"
	CourseNumber string
	GroupStream  string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// FeedFilter собирает upstream-фильтр поиска лент для профиля в заданном
// окне семестра.
func (g GroupProfile) FeedFilter(window SemesterWindow) FeedFilter {
	filter := FeedFilter{
		AcademicYear: []string{window.AcademicYear.String()},
		Semester:     []string{window.Season.UpstreamLabel()},
	}
	if g.Speciality != "" {
		filter.Speciality = []string{g.Speciality}
	}
	if g.CourseNumber != "" {
		filter.CourseNumber = []string{g.CourseNumber}
	}
	if g.GroupStream != "" {
		filter.GroupStream = []string{g.GroupStream}
	}
	return filter
}

// ScheduleSnapshot - сохранённый результат одного объединения: моментальный
// снимок расписания подгруппы на момент TakenAt. Снимки неизменяемы; новое
// обновление создаёт новый снимок.
type ScheduleSnapshot struct {
	ID           string // UUID
	Subgroup     shared.Subgroup
	Season       Season
	AcademicYear shared.AcademicYear
	TakenAt      time.Time
	Lessons      []Lesson
	SkippedCount int
}
