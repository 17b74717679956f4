// Package szgmu implements the client for the university scheduling service
// (frsview.szgmu.ru). The service publishes Excel-derived schedule feeds:
// findAll searches feed headers by filter, findById loads the lessons of one
// feed.
package szgmu

import (
	"encoding/json"
	"fmt"
)

// ══════════════════════════════════════════════════════════════════════════════
// REQUEST DTOs
// ══════════════════════════════════════════════════════════════════════════════

// FindAllRequestDTO is the POST body of /api/xlsxSchedule/findAll/0.
// Every field is a list; empty lists mean "no filter on this dimension".
type FindAllRequestDTO struct {
	GroupStream  []string `json:"groupStream"`
	Speciality   []string `json:"speciality"`
	CourseNumber []string `json:"courseNumber"`
	AcademicYear []string `json:"academicYear"`
	LessonType   []string `json:"lessonType"`
	Semester     []string `json:"semester"`
}

// ══════════════════════════════════════════════════════════════════════════════
// RESPONSE DTOs
// ══════════════════════════════════════════════════════════════════════════════

// FindAllResponseDTO is the paged response of findAll.
type FindAllResponseDTO struct {
	Content       []ScheduleSummaryDTO `json:"content"`
	TotalElements int                  `json:"totalElements"`
	TotalPages    int                  `json:"totalPages"`
}

// ScheduleSummaryDTO is one feed header in the findAll listing.
type ScheduleSummaryDTO struct {
	ID       int64  `json:"id"`
	FileName string `json:"fileName"`
	StatusID int    `json:"statusId"`
}

// ScheduleDTO is the response of /api/xlsxSchedule/findById.
type ScheduleDTO struct {
	FileName            string      `json:"fileName"`
	FormType            string      `json:"formType"`
	UpdateTime          string      `json:"updateTime"`
	StatusID            int         `json:"statusId"`
	IsUploadedFromExcel bool        `json:"isUploadedFromExcel"`
	Lessons             []LessonDTO `json:"scheduleLessonDtoList"`
}

// LessonDTO is one lesson row inside a feed. The upstream embeds feed-level
// attributes (academicYear, semester, fileName) into every row.
type LessonDTO struct {
	ID             int64           `json:"id"`
	ScheduleID     int64           `json:"scheduleId"`
	SubjectName    string          `json:"subjectName"`
	LessonType     string          `json:"lessonType"`
	LectorName     string          `json:"lectorName"`
	AuditoryNumber string          `json:"auditoryNumber"`
	LocationAddr   string          `json:"locationAddress"`
	PairTime       string          `json:"pairTime"`
	WeekNumber     int             `json:"weekNumber"`
	DayName        string          `json:"dayName"`
	Subgroup       string          `json:"subgroup"`
	StudyGroup     string          `json:"studyGroup"`
	GroupStream    string          `json:"groupStream"`
	GroupTypeName  string          `json:"groupTypeName"`
	Speciality     string          `json:"speciality"`
	CourseNumber   json.RawMessage `json:"courseNumber"`
	DepartmentName string          `json:"departmentName"`
	AcademicYear   string          `json:"academicYear"`
	Semester       string          `json:"semester"`
}

// APIErrorDTO is an error body returned by the upstream on 4xx/5xx.
type APIErrorDTO struct {
	Status  int    `json:"status"`
	Code    string `json:"error"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *APIErrorDTO) Error() string {
	return fmt.Sprintf("szgmu api error (status %d): %s", e.Status, e.Message)
}
