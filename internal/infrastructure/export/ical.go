// Package export renders unified subgroup schedules into distributable
// artifacts: iCalendar feeds for calendar apps and styled XLSX workbooks
// for printing. Exporters are read-only consumers of the merged schedule.
package export

import (
	"fmt"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"github.com/szgmu-hub/schedule-hub/internal/domain/schedule"
	"github.com/szgmu-hub/schedule-hub/internal/domain/shared"
	"github.com/szgmu-hub/schedule-hub/pkg/timeutil"
)

// calendarProductID identifies generated calendars in the PRODID property.
const calendarProductID = "-//Schedule Hub//SZGMU Schedule//RU"

// ICalExporter serializes a unified schedule into an iCalendar (RFC 5545)
// document with one VEVENT per lesson. Event UIDs are deterministic, so
// re-importing a regenerated feed updates events instead of duplicating them.
type ICalExporter struct {
	now func() time.Time
}

// NewICalExporter creates an exporter using Moscow wall-clock time for
// DTSTAMP/CREATED properties.
func NewICalExporter() *ICalExporter {
	return &ICalExporter{now: timeutil.Now}
}

// Export renders the schedule as an iCalendar document. An empty schedule
// produces a valid calendar with zero events.
func (e *ICalExporter) Export(s *schedule.UnifiedSchedule) ([]byte, error) {
	if s == nil {
		return nil, shared.NewDomainError("export", "Export", shared.ErrInvalidInput, "nil schedule")
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(calendarProductID)
	cal.SetXWRCalName(fmt.Sprintf("Расписание %s", s.Subgroup))

	stamp := e.now()
	for _, lesson := range s.Lessons {
		event := cal.AddEvent(eventUID(s.Subgroup, lesson))
		event.SetDtStampTime(stamp)
		event.SetCreatedTime(stamp)
		event.SetStartAt(timeutil.ToMoscow(lesson.StartAt()))
		event.SetEndAt(timeutil.ToMoscow(lesson.EndAt()))
		event.SetSummary(lesson.Title())
		if lesson.Room != "" {
			event.SetLocation(lesson.Room)
		}
		if lesson.Teacher != "" {
			event.SetDescription("Преподаватель: " + lesson.Teacher)
		}
		event.SetProperty(ical.ComponentPropertyCategories, strings.Join(eventCategories(lesson.Type), ","))
	}

	return []byte(cal.Serialize()), nil
}

// eventUID derives a stable UID from the lesson identity. The same lesson in
// a regenerated feed keeps its UID across exports.
func eventUID(subgroup shared.Subgroup, lesson schedule.Lesson) string {
	key := fmt.Sprintf("%s|%s|%s|%d|%s",
		subgroup,
		lesson.Date.Format("2006-01-02"),
		lesson.Slot.Category,
		lesson.Slot.Sequence,
		lesson.Subject,
	)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(key)).String() + "@schedule-hub"
}

func eventCategories(t schedule.LessonType) []string {
	var kind string
	switch t {
	case schedule.TypeLecture:
		kind = "Lecture"
	case schedule.TypeSeminar:
		kind = "Seminar"
	case schedule.TypePractice:
		kind = "Practice"
	case schedule.TypeExam:
		kind = "Exam"
	default:
		kind = "Class"
	}
	return []string{kind, "SZGMU"}
}
