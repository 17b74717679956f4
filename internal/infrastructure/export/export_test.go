package export

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/szgmu-hub/schedule-hub/internal/domain/schedule"
	"github.com/szgmu-hub/schedule-hub/internal/domain/shared"
	"github.com/szgmu-hub/schedule-hub/pkg/timeutil"
)

func testSchedule(t *testing.T) *schedule.UnifiedSchedule {
	t.Helper()

	lectureSlot := schedule.TimeSlot{
		Category: schedule.CategoryLecture,
		Sequence: 0,
		Start:    shared.Clock(9, 0),
		End:      shared.Clock(10, 30),
	}
	seminarSlot := schedule.TimeSlot{
		Category: schedule.CategorySeminar,
		Sequence: 1,
		Start:    shared.Clock(11, 10),
		End:      shared.Clock(12, 40),
	}

	return &schedule.UnifiedSchedule{
		Subgroup:      shared.Subgroup("103А"),
		SemesterStart: timeutil.Date(2025, 9, 1),
		Lessons: []schedule.Lesson{
			{
				Subject:  "Анатомия",
				Type:     schedule.TypeLecture,
				Teacher:  "Иванов И.И.",
				Room:     "ауд. 5",
				Subgroup: shared.Subgroup("103А"),
				Week:     1,
				Day:      shared.Monday,
				Date:     timeutil.Date(2025, 9, 1),
				Slot:     lectureSlot,
			},
			{
				Subject:  "Гистология",
				Type:     schedule.TypeSeminar,
				Subgroup: shared.Subgroup("103А"),
				Week:     1,
				Day:      shared.Monday,
				Date:     timeutil.Date(2025, 9, 1),
				Slot:     seminarSlot,
			},
			{
				Subject:  "Биохимия",
				Type:     schedule.TypeSeminar,
				Teacher:  "Петрова А.А.",
				Subgroup: shared.Subgroup("103А"),
				Week:     2,
				Day:      shared.Tuesday,
				Date:     timeutil.Date(2025, 9, 9),
				Slot:     seminarSlot,
			},
		},
	}
}

func TestICalExporter_Export(t *testing.T) {
	body, err := NewICalExporter().Export(testSchedule(t))
	require.NoError(t, err)

	text := string(body)
	assert.Contains(t, text, "BEGIN:VCALENDAR")
	assert.Contains(t, text, "END:VCALENDAR")
	assert.Equal(t, 3, strings.Count(text, "BEGIN:VEVENT"))
	assert.Contains(t, text, "№1 Л Анатомия")
	assert.Contains(t, text, "№2 С Гистология")
	assert.Contains(t, text, "ауд. 5")
	assert.Contains(t, text, "Преподаватель: Петрова А.А.")
	assert.Contains(t, text, "Seminar,SZGMU")
	// 09:00 Moscow is 06:00 UTC.
	assert.Contains(t, text, "DTSTART:20250901T060000Z")
}

func TestICalExporter_DeterministicUIDs(t *testing.T) {
	s := testSchedule(t)
	first, err := NewICalExporter().Export(s)
	require.NoError(t, err)
	second, err := NewICalExporter().Export(s)
	require.NoError(t, err)

	assert.Equal(t, extractUIDs(string(first)), extractUIDs(string(second)))
	assert.Len(t, extractUIDs(string(first)), 3)
}

func TestICalExporter_NilSchedule(t *testing.T) {
	_, err := NewICalExporter().Export(nil)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func extractUIDs(text string) []string {
	var uids []string
	for _, line := range strings.Split(text, "\r\n") {
		if strings.HasPrefix(line, "UID:") {
			uids = append(uids, line)
		}
	}
	return uids
}

func TestExcelExporter_Export(t *testing.T) {
	f, err := NewExcelExporter().Export(testSchedule(t))
	require.NoError(t, err)
	defer f.Close()

	title, err := f.GetCellValue(sheetName, "A1")
	require.NoError(t, err)
	assert.Contains(t, title, "103А")

	header, err := f.GetCellValue(sheetName, "G2")
	require.NoError(t, err)
	assert.Equal(t, "Subject", header)

	// Row 3 is the first lesson of week 1.
	week, err := f.GetCellValue(sheetName, "A3")
	require.NoError(t, err)
	assert.Equal(t, "1", week)

	date, err := f.GetCellValue(sheetName, "B3")
	require.NoError(t, err)
	assert.Equal(t, "01.09.2025", date)

	day, err := f.GetCellValue(sheetName, "C3")
	require.NoError(t, err)
	assert.Equal(t, "Понедельник", day)

	timeRange, err := f.GetCellValue(sheetName, "E3")
	require.NoError(t, err)
	assert.Equal(t, "09:00-10:30", timeRange)

	kind, err := f.GetCellValue(sheetName, "F4")
	require.NoError(t, err)
	assert.Equal(t, "С", kind)

	subject, err := f.GetCellValue(sheetName, "G5")
	require.NoError(t, err)
	assert.Equal(t, "Биохимия", subject)
}

func TestExcelExporter_MergesDayCells(t *testing.T) {
	f, err := NewExcelExporter().Export(testSchedule(t))
	require.NoError(t, err)
	defer f.Close()

	merged, err := f.GetMergeCells(sheetName)
	require.NoError(t, err)

	var ranges []string
	for _, cell := range merged {
		ranges = append(ranges, cell.GetStartAxis()+":"+cell.GetEndAxis())
	}
	// Monday of week 1 holds two lessons in rows 3-4.
	assert.Contains(t, ranges, "B3:B4")
	assert.Contains(t, ranges, "C3:C4")
	assert.Contains(t, ranges, "A3:A4")
	assert.Contains(t, ranges, "A1:G1")
}

func TestFileWriter_WriteAll(t *testing.T) {
	dir := t.TempDir()
	writer := NewFileWriter(dir, nil)

	paths, err := writer.WriteAll(testSchedule(t))
	require.NoError(t, err)
	require.Len(t, paths, 2)

	assert.Equal(t, filepath.Join(dir, "103А.ics"), paths[0])
	assert.Equal(t, filepath.Join(dir, "103А.xlsx"), paths[1])
	for _, path := range paths {
		assert.FileExists(t, path)
	}
}

func TestFileWriter_EmptySchedule(t *testing.T) {
	writer := NewFileWriter(t.TempDir(), nil)

	paths, err := writer.WriteAll(&schedule.UnifiedSchedule{Subgroup: shared.Subgroup("103А")})
	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "103А", sanitizeName(" 103А "))
	assert.Equal(t, "a_b", sanitizeName("a/b"))
	assert.Equal(t, "schedule", sanitizeName("  "))
}
