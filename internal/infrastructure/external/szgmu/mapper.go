package szgmu

import (
	"strconv"
	"strings"

	"github.com/szgmu-hub/schedule-hub/internal/domain/schedule"
)

// ══════════════════════════════════════════════════════════════════════════════
// MAPPER - DTO to domain transformations
// ══════════════════════════════════════════════════════════════════════════════

// Mapper translates upstream DTOs into domain records. This is the
// anti-corruption layer: the loosely-typed upstream shape stops here and
// only schedule.RawRecord crosses into the domain.
type Mapper struct{}

// NewMapper creates a new Mapper instance.
func NewMapper() *Mapper {
	return &Mapper{}
}

// RecordsFromSchedule converts one feed into raw records. The feed id becomes
// the SourceID of every record; if two feeds disagree about the same lesson,
// the merger keeps the record from the smaller SourceID.
func (m *Mapper) RecordsFromSchedule(scheduleID int64, dto *ScheduleDTO) []schedule.RawRecord {
	if dto == nil {
		return nil
	}

	sourceID := strconv.FormatInt(scheduleID, 10)
	records := make([]schedule.RawRecord, 0, len(dto.Lessons))
	for _, lesson := range dto.Lessons {
		records = append(records, schedule.RawRecord{
			Subject:      strings.TrimSpace(lesson.SubjectName),
			LessonType:   strings.TrimSpace(lesson.LessonType),
			Teacher:      strings.TrimSpace(lesson.LectorName),
			Room:         roomFromLesson(lesson),
			PairTime:     strings.TrimSpace(lesson.PairTime),
			WeekNumber:   lesson.WeekNumber,
			DayName:      strings.TrimSpace(lesson.DayName),
			Subgroup:     strings.TrimSpace(lesson.Subgroup),
			SourceID:     sourceID,
			AcademicYear: strings.TrimSpace(lesson.AcademicYear),
			Semester:     strings.TrimSpace(lesson.Semester),
		})
	}
	return records
}

// FilterToRequest converts a domain feed filter into the findAll request body.
// Nil slices become empty lists: the upstream rejects null filter fields.
func (m *Mapper) FilterToRequest(filter schedule.FeedFilter) FindAllRequestDTO {
	return FindAllRequestDTO{
		GroupStream:  emptyIfNil(filter.GroupStream),
		Speciality:   emptyIfNil(filter.Speciality),
		CourseNumber: emptyIfNil(filter.CourseNumber),
		AcademicYear: emptyIfNil(filter.AcademicYear),
		LessonType:   emptyIfNil(filter.LessonType),
		Semester:     emptyIfNil(filter.Semester),
	}
}

// roomFromLesson prefers the auditory number and falls back to the location
// address: off-campus lessons often carry only the address.
func roomFromLesson(lesson LessonDTO) string {
	if room := strings.TrimSpace(lesson.AuditoryNumber); room != "" {
		return room
	}
	return strings.TrimSpace(lesson.LocationAddr)
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
